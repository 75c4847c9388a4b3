package brennvidde

import (
	"encoding/csv"
	"os"
	"strconv"
)

// WriteCSV dumps a bucketed table as CSV at path: one row per focal length,
// one column per aperture.
func WriteCSV(t *BucketedTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	header := make([]string, 0, len(t.Apertures)+1)
	header = append(header, "focal_mm")
	for _, a := range t.Apertures {
		header = append(header, apertureLabel(a))
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}

	for i, focal := range t.Focals {
		row := make([]string, 0, len(t.Apertures)+1)
		row = append(row, strconv.Itoa(focal))
		for j := range t.Apertures {
			row = append(row, strconv.Itoa(t.Counts[i][j]))
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
