package brennvidde

import (
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// bucketPalette binds each aperture column, in order, to a fixed color (the
// matplotlib default cycle), so the same bucket always gets the same color no
// matter which library is charted.
var bucketPalette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}, // f/1.4
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}, // f/2
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}, // f/2.8
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, // f/4
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}, // f/5.6
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff}, // f/8
	color.RGBA{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff}, // f/11
	color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}, // f/16
}

// focalTicks is the fixed x axis tick set, common focal lengths only.
var focalTicks = []int{15, 20, 24, 28, 35, 50, 85, 100, 135, 200}

type focalTicker struct{}

func (focalTicker) Ticks(min, max float64) []plot.Tick {
	ts := make([]plot.Tick, 0, len(focalTicks))
	for _, v := range focalTicks {
		if float64(v) < min || float64(v) > max {
			continue
		}
		ts = append(ts, plot.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ts
}

// barWidth is the drawn bar width, in x axis millimeters.
const barWidth = 3.0

// barSeg is one stacked segment: an x center and the y span it covers.
type barSeg struct {
	x      float64
	y0, y1 float64
}

// barStack draws the segments one aperture contributes across all focal
// lengths, as flat rectangles on a numeric x axis. plotter.BarChart is close
// but keys bars off categorical positions, and the axis here must stay in
// real millimeters so the fixed ticks line up.
type barStack struct {
	segs []barSeg
	col  color.Color
}

// Plot implements plot.Plotter.
func (b *barStack) Plot(cnv draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&cnv)
	for _, s := range b.segs {
		pts := []vg.Point{
			{X: trX(s.x - barWidth/2), Y: trY(s.y0)},
			{X: trX(s.x - barWidth/2), Y: trY(s.y1)},
			{X: trX(s.x + barWidth/2), Y: trY(s.y1)},
			{X: trX(s.x + barWidth/2), Y: trY(s.y0)},
		}
		cnv.FillPolygon(b.col, cnv.ClipPolygonXY(pts))
	}
}

// DataRange implements plot.DataRanger. An empty stack returns an inverted
// range so it cannot disturb the axis bounds.
func (b *barStack) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, s := range b.segs {
		xmin = math.Min(xmin, s.x-barWidth)
		xmax = math.Max(xmax, s.x+barWidth)
		ymin = math.Min(ymin, s.y0)
		ymax = math.Max(ymax, s.y1)
	}
	return xmin, xmax, ymin, ymax
}

// Thumbnail implements plot.Thumbnailer for the legend swatches.
func (b *barStack) Thumbnail(cnv *draw.Canvas) {
	pts := []vg.Point{
		{X: cnv.Min.X, Y: cnv.Min.Y},
		{X: cnv.Min.X, Y: cnv.Max.Y},
		{X: cnv.Max.X, Y: cnv.Max.Y},
		{X: cnv.Max.X, Y: cnv.Min.Y},
	}
	cnv.FillPolygon(b.col, pts)
}

// WriteChart renders a bucketed table as a stacked bar PNG at path.
func WriteChart(t *BucketedTable, path string) error {
	p := plot.New()
	p.Title.Text = "Focal Length & Aperture Distribution"
	p.X.Label.Text = "Focal Length (35mm Equivalent)"
	p.Y.Label.Text = "Number of Photos"
	p.X.Tick.Marker = focalTicker{}
	p.X.Min = minFocal - 5
	p.X.Max = maxFocal + 5
	p.Y.Min = 0
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	// Running stack height per focal length.
	base := make([]float64, len(t.Focals))
	for j, a := range t.Apertures {
		bars := &barStack{col: bucketPalette[j%len(bucketPalette)]}
		for i, f := range t.Focals {
			n := t.Counts[i][j]
			if n == 0 {
				continue
			}
			seg := barSeg{x: float64(f), y0: base[i], y1: base[i] + float64(n)}
			base[i] = seg.y1
			bars.segs = append(bars.segs, seg)
		}
		p.Add(bars)
		p.Legend.Add(apertureLabel(a), bars)
	}

	return p.Save(12*vg.Inch, 6*vg.Inch, path)
}

// apertureLabel formats an aperture the way photographers write them: f/2
// rather than f/2.0.
func apertureLabel(a float64) string {
	return "f/" + strconv.FormatFloat(a, 'f', -1, 64)
}
