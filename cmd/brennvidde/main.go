// brennvidde charts the focal length and aperture habits of a photo library.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"k8s.io/klog/v2"

	"github.com/fsnotify/fsnotify"
	brennvidde "github.com/tstromberg/brennvidde/pkg/brennvidde"
)

var (
	outDir    = flag.String("out", ".", "directory to write charts into")
	noCrop    = flag.Bool("no-crop", false, "disable crop factor correction")
	noBucket  = flag.Bool("no-bucket", false, "chart raw apertures instead of the canonical buckets")
	writeCSV  = flag.Bool("csv", false, "also write the aggregated counts as CSV")
	writeHTML = flag.Bool("html", false, "also write an HTML report")
	native    = flag.Bool("native", false, "use the built-in EXIF decoder instead of exiftool")
	watchFlag = flag.Bool("watch", false, "watch the photo dirs and re-chart on changes")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) == 0 {
		klog.Exitf("usage: %s [flags] <photo dir> [<photo dir> ...]", filepath.Base(os.Args[0]))
	}

	// One metadata source serves every root, watch re-analysis included.
	src := brennvidde.NewSource(*native)
	defer func() {
		if err := src.Close(); err != nil {
			klog.Errorf("close metadata source: %v", err)
		}
	}()

	c := &brennvidde.Config{
		OutDir:    *outDir,
		NoCrop:    *noCrop,
		NoBucket:  *noBucket,
		WriteCSV:  *writeCSV,
		WriteHTML: *writeHTML,
		Native:    *native,
		Source:    src,
	}

	rs := []*brennvidde.Result{}
	for _, root := range flag.Args() {
		r, err := brennvidde.Analyze(c, root)
		if err != nil {
			// One bad root must not sink the batch.
			klog.Errorf("analyze %s failed: %v", root, err)
			continue
		}

		if err := brennvidde.Render(c, r); err != nil {
			klog.Errorf("render %s failed: %v", root, err)
			continue
		}
		rs = append(rs, r)
	}

	if *watchFlag {
		if err := watch(c, rs); err != nil {
			klog.Exitf("watch failed: %v", err)
		}
	}
}

// watch re-analyzes a root whenever something under it changes. It returns
// once the event stream closes.
func watch(c *brennvidde.Config, rs []*brennvidde.Result) error {
	wt, err := newWatcher(c, rs)
	if err != nil {
		return err
	}
	defer wt.Close()
	return wt.run()
}

// watcher maps filesystem change events back to the analysis root that owns
// them.
type watcher struct {
	w     *fsnotify.Watcher
	c     *brennvidde.Config
	owner map[string]string // watched dir to owning root
}

func newWatcher(c *brennvidde.Config, rs []*brennvidde.Result) (*watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	wt := &watcher{w: w, c: c, owner: map[string]string{}}

	// fsnotify watches are not recursive, so register every directory the
	// scans saw.
	for _, r := range rs {
		dirs := slices.Clone(r.Dirs)
		slices.Sort(dirs)
		dirs = slices.Compact(dirs)
		for _, d := range dirs {
			wt.add(d, r.Root)
		}
	}

	klog.Infof("watching %d dirs ...", len(wt.owner))
	return wt, nil
}

func (wt *watcher) add(dir, root string) {
	if err := wt.w.Add(dir); err != nil {
		klog.Errorf("watch %s: %v", dir, err)
		return
	}
	wt.owner[dir] = root
}

func (wt *watcher) Close() error {
	return wt.w.Close()
}

func (wt *watcher) run() error {
	for {
		select {
		case event, ok := <-wt.w.Events:
			if !ok {
				return nil
			}
			wt.handle(event)
		case err, ok := <-wt.w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// handle re-runs the analysis for the root owning the changed path.
func (wt *watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	root := wt.owner[filepath.Dir(event.Name)]
	if root == "" {
		return
	}

	klog.Infof("%s changed, re-analyzing %s", event.Name, root)
	r, err := brennvidde.Analyze(wt.c, root)
	if err != nil {
		klog.Errorf("analyze %s failed: %v", root, err)
		return
	}
	if err := brennvidde.Render(wt.c, r); err != nil {
		klog.Errorf("render %s failed: %v", root, err)
		return
	}

	// Pick up directories created since the last scan.
	for _, d := range r.Dirs {
		if wt.owner[d] == "" {
			wt.add(d, root)
		}
	}
}
