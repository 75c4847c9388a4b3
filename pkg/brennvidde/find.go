package brennvidde

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// candidate reports whether a file name looks like a photo worth reading: a
// .jpg or .jpeg extension, case-insensitive, and not a macOS "._" resource
// fork shadow.
func candidate(name string) bool {
	if strings.HasPrefix(name, "._") {
		return false
	}
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".jpg") || strings.HasSuffix(n, ".jpeg")
}

// Scan walks root and folds every readable candidate photo into a frequency
// table. Files that cannot be read or that lack usable metadata are logged
// and skipped; they never abort the scan.
func Scan(root string, src MetadataSource, c *Config) (*Result, error) {
	r := &Result{Root: root, Table: FrequencyTable{}}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				r.Dirs = append(r.Dirs, path)
				return nil
			}
			if !de.IsRegular() {
				return nil
			}
			r.Files++

			if !candidate(filepath.Base(path)) {
				return nil
			}
			r.Candidates++

			md, err := src.ReadMetadata(path)
			if err != nil {
				klog.Errorf("read %s: %v", path, err)
				r.Failures++
				return nil
			}

			o, ok := Extract(md, c)
			if !ok {
				klog.V(1).Infof("no focal length or aperture in %s", path)
				return nil
			}

			klog.V(2).Infof("%s: %dmm f/%.1f", path, o.FocalLength, o.Aperture)
			r.Table.Add(o)
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			klog.Errorf("walk %s: %v", path, err)
			return godirwalk.SkipNode
		},
		Unsorted: true, // aggregation is order independent
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}

	return r, nil
}
