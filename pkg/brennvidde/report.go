package brennvidde

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// bucketHex mirrors bucketPalette for the HTML report.
var bucketHex = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728",
	"#9467bd", "#8c564b", "#e377c2", "#7f7f7f",
}

// WriteReport renders the same stacked series as WriteChart into a standalone
// HTML file at path.
func WriteReport(t *BucketedTable, title, path string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Focal Length & Aperture Distribution",
			Subtitle: title,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Focal Length (35mm Equivalent)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Number of Photos"}),
	)

	xs := make([]string, len(t.Focals))
	for i, f := range t.Focals {
		xs[i] = strconv.Itoa(f)
	}
	bar.SetXAxis(xs)

	for j, a := range t.Apertures {
		data := make([]opts.BarData, len(t.Focals))
		for i := range t.Focals {
			data[i] = opts.BarData{Value: t.Counts[i][j]}
		}
		bar.AddSeries(apertureLabel(a), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: bucketHex[j%len(bucketHex)]}),
			charts.WithBarChartOpts(opts.BarChart{Stack: "aperture"}),
		)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bar.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render: %w", err)
	}
	return f.Close()
}
