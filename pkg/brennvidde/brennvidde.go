// Package brennvidde analyzes the focal length and aperture usage of a photo
// library and renders the result as a stacked bar chart.
package brennvidde

// Config holds configuration for an analysis run.
type Config struct {
	// OutDir is the directory chart files are written into.
	OutDir string

	// NoCrop disables crop factor correction, treating every camera as full
	// frame.
	NoCrop bool

	// NoBucket charts the raw aperture values instead of snapping them onto
	// the canonical buckets.
	NoBucket bool

	WriteCSV  bool
	WriteHTML bool

	// Native forces the built-in EXIF decoder even when exiftool is installed.
	Native bool

	// CropRules overrides DefaultCropRules when non-nil.
	CropRules []CropRule

	// Source is the metadata backend shared across roots. The caller owns it;
	// when nil, each Analyze call opens and closes one of its own.
	Source MetadataSource
}

func (c *Config) cropRules() []CropRule {
	if c.CropRules != nil {
		return c.CropRules
	}
	return DefaultCropRules
}
