package brennvidde

import (
	"math"
	"strings"
)

// CropRule maps a camera family, identified by substring match against the
// EXIF Make and Model tags, to its sensor crop factor. Rules are checked in
// order and the first match wins.
type CropRule struct {
	MakeSub  string
	ModelSub string
	Factor   float64
}

// DefaultCropRules covers the camera families known to record native rather
// than 35mm-equivalent focal lengths. Everything else is treated as full
// frame, a known approximation.
var DefaultCropRules = []CropRule{
	{MakeSub: "Canon", ModelSub: "EOS M", Factor: 1.6},
	{MakeSub: "FUJIFILM", ModelSub: "X-T", Factor: 1.5},
}

func cropFactor(mk, model string, rules []CropRule) float64 {
	for _, r := range rules {
		if strings.Contains(mk, r.MakeSub) && strings.Contains(model, r.ModelSub) {
			return r.Factor
		}
	}
	return 1.0
}

// Observation is one validated (focal length, aperture) reading from a single
// photo. FocalLength is in 35mm-equivalent millimeters.
type Observation struct {
	FocalLength int
	Aperture    float64
}

// Focal lengths are clamped to this range so that one fisheye or wildlife
// shot cannot stretch the chart axis.
const (
	minFocal = 15
	maxFocal = 200
)

func clampFocal(f int) int {
	if f < minFocal {
		return minFocal
	}
	if f > maxFocal {
		return maxFocal
	}
	return f
}

// Extract derives an Observation from one photo's raw metadata. ok is false
// when either a usable focal length or aperture is missing; partial readings
// are discarded whole.
func Extract(md RawMetadata, c *Config) (Observation, bool) {
	factor := 1.0
	if !c.NoCrop {
		factor = cropFactor(stringVal(md["Make"]), stringVal(md["Model"]), c.cropRules())
	}

	focal, ok := focalLength(md, factor)
	if !ok {
		return Observation{}, false
	}

	fnum, ok := numeric(md["FNumber"])
	if !ok || fnum <= 0 {
		return Observation{}, false
	}

	return Observation{
		FocalLength: clampFocal(focal),
		Aperture:    round1(fnum * factor),
	}, true
}

// focalLength prefers the 35mm-equivalent tag when present and non-zero, and
// otherwise scales the native focal length by the crop factor.
func focalLength(md RawMetadata, factor float64) (int, bool) {
	if eq, ok := numeric(md["FocalLengthIn35mmFilm"]); ok && eq > 0 {
		return int(math.Round(eq)), true
	}
	raw, ok := numeric(md["FocalLength"])
	if !ok || raw <= 0 {
		return 0, false
	}
	return int(math.Round(raw * factor)), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
