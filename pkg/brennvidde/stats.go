package brennvidde

import (
	"math"
	"sort"
)

// FrequencyTable counts observations, keyed by focal length and then by
// aperture.
type FrequencyTable map[int]map[float64]int

// Add records one observation. Inner maps are created on first use.
func (t FrequencyTable) Add(o Observation) {
	m := t[o.FocalLength]
	if m == nil {
		m = map[float64]int{}
		t[o.FocalLength] = m
	}
	m[o.Aperture]++
}

// Total is the number of observations recorded.
func (t FrequencyTable) Total() int {
	n := 0
	for _, m := range t {
		for _, c := range m {
			n += c
		}
	}
	return n
}

// focalLengths returns the focal lengths present, ascending.
func (t FrequencyTable) focalLengths() []int {
	fs := make([]int, 0, len(t))
	for f := range t {
		fs = append(fs, f)
	}
	sort.Ints(fs)
	return fs
}

// apertures returns every aperture present anywhere in the table, ascending.
func (t FrequencyTable) apertures() []float64 {
	seen := map[float64]bool{}
	for _, m := range t {
		for a := range m {
			seen[a] = true
		}
	}
	as := make([]float64, 0, len(seen))
	for a := range seen {
		as = append(as, a)
	}
	sort.Float64s(as)
	return as
}

// ApertureBuckets is the fixed scale raw apertures snap onto for presentation,
// ordered wide to narrow. Keeping the scale constant keeps charts comparable
// across libraries.
var ApertureBuckets = []float64{1.4, 2.0, 2.8, 4.0, 5.6, 8.0, 11.0, 16.0}

// Bucket snaps a raw aperture onto the nearest entry of ApertureBuckets. A
// value exactly between two buckets snaps to the smaller one.
func Bucket(a float64) float64 {
	best := ApertureBuckets[0]
	for _, b := range ApertureBuckets[1:] {
		if math.Abs(a-b) < math.Abs(a-best) {
			best = b
		}
	}
	return best
}

// BucketedTable is the dense rectangle handed to rendering: one row per focal
// length present, one column per aperture, zero-filled.
type BucketedTable struct {
	Focals    []int     // ascending
	Apertures []float64 // canonical buckets, or the observed raw values
	Counts    [][]int   // Counts[i][j] is the count for Focals[i] at Apertures[j]
}

// Total is the number of observations in the table.
func (bt *BucketedTable) Total() int {
	n := 0
	for _, row := range bt.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Bucketize folds the table's raw apertures onto the canonical buckets.
// Several raw apertures may collapse into one bucket; their counts sum. Every
// focal length reports every bucket so rendering can assume a rectangle.
func (t FrequencyTable) Bucketize() *BucketedTable {
	return t.layout(append([]float64(nil), ApertureBuckets...), Bucket)
}

// Dense lays the raw table out rectangularly without bucketing, one column
// per aperture observed anywhere in the table.
func (t FrequencyTable) Dense() *BucketedTable {
	return t.layout(t.apertures(), func(a float64) float64 { return a })
}

func (t FrequencyTable) layout(cols []float64, snap func(float64) float64) *BucketedTable {
	idx := make(map[float64]int, len(cols))
	for j, a := range cols {
		idx[a] = j
	}

	bt := &BucketedTable{Focals: t.focalLengths(), Apertures: cols}
	for _, f := range bt.Focals {
		row := make([]int, len(cols))
		for a, n := range t[f] {
			row[idx[snap(a)]] += n
		}
		bt.Counts = append(bt.Counts, row)
	}
	return bt
}
