package brennvidde

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"
)

// Result is the outcome of analyzing one library root.
type Result struct {
	Root  string
	Table FrequencyTable

	Dirs       []string // every directory visited, for watch mode
	Files      int      // regular files walked
	Candidates int      // files that looked like photos
	Failures   int      // candidates whose metadata could not be read
}

// Analyze scans one library root and aggregates its observations.
func Analyze(c *Config, root string) (*Result, error) {
	klog.Infof("analyzing %s ...", root)

	src := c.Source
	if src == nil {
		s := NewSource(c.Native)
		defer func() {
			if err := s.Close(); err != nil {
				klog.Errorf("close metadata source: %v", err)
			}
		}()
		src = s
	}

	r, err := Scan(root, src, c)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	klog.Infof("%s: %d observations from %d candidates (%d unreadable)",
		root, r.Table.Total(), r.Candidates, r.Failures)
	return r, nil
}

// Render writes the chart artifacts for one analyzed root into c.OutDir. A
// root that yielded no observations is reported and produces no files.
func Render(c *Config, r *Result) error {
	if r.Table.Total() == 0 {
		klog.Warningf("no valid focal length data found in %s", r.Root)
		return nil
	}

	bt := r.Table.Bucketize()
	if c.NoBucket {
		bt = r.Table.Dense()
	}

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	base := filepath.Join(c.OutDir, folderName(r.Root)+"_analysis")

	if err := WriteChart(bt, base+".png"); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	klog.Infof("wrote %s.png", base)

	if c.WriteHTML {
		if err := WriteReport(bt, folderName(r.Root), base+".html"); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		klog.Infof("wrote %s.html", base)
	}

	if c.WriteCSV {
		if err := WriteCSV(bt, base+".csv"); err != nil {
			return fmt.Errorf("csv: %w", err)
		}
		klog.Infof("wrote %s.csv", base)
	}

	return nil
}

// folderName is the chart name prefix for a root: the base name of its
// absolute path, so that "." still yields a real directory name.
func folderName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}
