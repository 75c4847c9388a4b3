package brennvidde

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
	"k8s.io/klog/v2"
)

// RawMetadata is a flat mapping of tag names to untyped values, as read from a
// photo's embedded metadata block. Values arrive in whatever shape the backend
// emits: JSON numbers, textual rationals ("28/10"), or unit-suffixed strings
// ("32.0 mm").
type RawMetadata map[string]any

// MetadataSource reads the embedded metadata block of a single photo.
type MetadataSource interface {
	ReadMetadata(path string) (RawMetadata, error)
	Close() error
}

// NewSource picks a metadata backend: exiftool when available, the native Go
// decoder otherwise or when forced.
func NewSource(native bool) MetadataSource {
	if native {
		return &NativeSource{}
	}
	s, err := NewExiftoolSource()
	if err != nil {
		klog.Warningf("exiftool unavailable, using native EXIF decoder: %v", err)
		return &NativeSource{}
	}
	return s
}

// ExiftoolSource reads metadata through a persistent exiftool process.
type ExiftoolSource struct {
	et *exiftool.Exiftool
}

func NewExiftoolSource() (*ExiftoolSource, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	return &ExiftoolSource{et: et}, nil
}

func (s *ExiftoolSource) ReadMetadata(path string) (RawMetadata, error) {
	fms := s.et.ExtractMetadata(path)
	fm := fms[0]
	if fm.Err != nil {
		return nil, fmt.Errorf("extract metadata: %w", fm.Err)
	}
	return RawMetadata(fm.Fields), nil
}

func (s *ExiftoolSource) Close() error {
	return s.et.Close()
}

// NativeSource reads metadata with a pure Go EXIF decoder, pulling only the
// tags the extractor cares about. It keeps the tool usable on hosts without an
// exiftool binary.
type NativeSource struct{}

func (s *NativeSource) ReadMetadata(path string) (RawMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode exif: %w", err)
	}

	md := RawMetadata{}
	for _, name := range []exif.FieldName{exif.Make, exif.Model} {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		if v, err := tag.StringVal(); err == nil {
			md[string(name)] = v
		}
	}
	if tag, err := x.Get(exif.FocalLengthIn35mmFilm); err == nil {
		if v, err := tag.Int(0); err == nil {
			md[string(exif.FocalLengthIn35mmFilm)] = int64(v)
		}
	}
	for _, name := range []exif.FieldName{exif.FocalLength, exif.FNumber} {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		if num, den, err := tag.Rat2(0); err == nil {
			md[string(name)] = fmt.Sprintf("%d/%d", num, den)
		}
	}
	return md, nil
}

func (s *NativeSource) Close() error {
	return nil
}

// numeric coerces a raw tag value to a finite float64, accepting the numeric
// types the exiftool JSON stream produces as well as textual rationals and
// values with trailing units. exiftool prints corrupt rationals as "inf" and
// "nan", which ParseFloat happily accepts, so every branch funnels through a
// single finiteness check.
func numeric(v any) (float64, bool) {
	var f float64
	switch v := v.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if fields := strings.Fields(s); len(fields) > 0 {
			s = fields[0]
		}
		if num, den, ok := strings.Cut(s, "/"); ok {
			n, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, false
			}
			d, err := strconv.ParseFloat(den, 64)
			if err != nil || d == 0 {
				return 0, false
			}
			f = n / d
		} else {
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, false
			}
			f = parsed
		}
	default:
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func stringVal(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
