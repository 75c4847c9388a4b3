package brennvidde

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", float64(2.8), 2.8, true},
		{"float32", float32(4), 4, true},
		{"int", 50, 50, true},
		{"int64", int64(50), 50, true},
		{"decimal string", "5.6", 5.6, true},
		{"rational string", "28/10", 2.8, true},
		{"whole rational", "32/1", 32, true},
		{"unit suffix", "32.0 mm", 32, true},
		{"padded string", "  2.8  ", 2.8, true},
		{"zero denominator", "1/0", 0, false},
		{"words", "wide open", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"inf string", "inf", 0, false},
		{"negative inf", "-Inf", 0, false},
		{"nan string", "NaN", 0, false},
		{"inf with unit", "inf mm", 0, false},
		{"inf rational", "inf/1", 0, false},
		{"overflowing rational", "1e308/1e-5", 0, false},
		{"inf float64", math.Inf(1), 0, false},
		{"nan float64", math.NaN(), 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := numeric(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Errorf("numeric(%v) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

// EXIF tags the fixture builder knows how to write.
const (
	tagMake    = 0x010F
	tagModel   = 0x0110
	tagExifIFD = 0x8769
	tagFNumber = 0x829D
	tagFocal   = 0x920A
	tagFocal35 = 0xA405
)

// tiffFixture describes a minimal EXIF block. Nil fields are left out of the
// generated IFDs entirely.
type tiffFixture struct {
	camMake string
	model   string
	focal   *[2]uint32 // rational
	fnumber *[2]uint32 // rational
	focal35 *uint16
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: 2, count: uint32(len(b)), value: b}
}

func rationalEntry(tag uint16, num, den uint32) ifdEntry {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, num)
	binary.LittleEndian.PutUint32(b[4:], den)
	return ifdEntry{tag: tag, typ: 5, count: 1, value: b}
}

func shortEntry(tag uint16, v uint16) ifdEntry {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return ifdEntry{tag: tag, typ: 3, count: 1, value: b}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return ifdEntry{tag: tag, typ: 4, count: 1, value: b}
}

func ifdSize(entries int) uint32 {
	return uint32(2 + entries*12 + 4)
}

// buildTIFF serializes a fixture as a little-endian TIFF byte stream with the
// tags split across IFD0 and the Exif sub-IFD, the way cameras write them.
func buildTIFF(fix tiffFixture) []byte {
	var ifd0, sub []ifdEntry
	if fix.camMake != "" {
		ifd0 = append(ifd0, asciiEntry(tagMake, fix.camMake))
	}
	if fix.model != "" {
		ifd0 = append(ifd0, asciiEntry(tagModel, fix.model))
	}
	if fix.fnumber != nil {
		sub = append(sub, rationalEntry(tagFNumber, fix.fnumber[0], fix.fnumber[1]))
	}
	if fix.focal != nil {
		sub = append(sub, rationalEntry(tagFocal, fix.focal[0], fix.focal[1]))
	}
	if fix.focal35 != nil {
		sub = append(sub, shortEntry(tagFocal35, *fix.focal35))
	}

	subOff := 8 + ifdSize(len(ifd0)+1)
	dataOff := subOff + ifdSize(len(sub))
	ifd0 = append(ifd0, longEntry(tagExifIFD, subOff))

	// Values wider than the 4 byte inline slot move to the data area and
	// leave an absolute offset behind.
	var data bytes.Buffer
	spill := func(entries []ifdEntry) {
		for i := range entries {
			if len(entries[i].value) <= 4 {
				continue
			}
			off := make([]byte, 4)
			binary.LittleEndian.PutUint32(off, dataOff+uint32(data.Len()))
			data.Write(entries[i].value)
			entries[i].value = off
		}
	}
	spill(ifd0)
	spill(sub)

	buf := &bytes.Buffer{}
	buf.WriteString("II")
	binary.Write(buf, binary.LittleEndian, uint16(42))
	binary.Write(buf, binary.LittleEndian, uint32(8))
	writeIFD(buf, ifd0)
	writeIFD(buf, sub)
	buf.Write(data.Bytes())
	return buf.Bytes()
}

func writeIFD(buf *bytes.Buffer, entries []ifdEntry) {
	binary.Write(buf, binary.LittleEndian, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(buf, binary.LittleEndian, e.tag)
		binary.Write(buf, binary.LittleEndian, e.typ)
		binary.Write(buf, binary.LittleEndian, e.count)
		v := make([]byte, 4)
		copy(v, e.value)
		buf.Write(v)
	}
	binary.Write(buf, binary.LittleEndian, uint32(0))
}

func writePhoto(t *testing.T, dir, name string, fix tiffFixture) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buildTIFF(fix), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestNativeSource(t *testing.T) {
	path := writePhoto(t, t.TempDir(), "IMG_0001.jpg", tiffFixture{
		camMake: "Canon",
		model:   "Canon EOS M50",
		focal:   &[2]uint32{32, 1},
		fnumber: &[2]uint32{2, 1},
	})

	md, err := (&NativeSource{}).ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	if got := stringVal(md["Make"]); got != "Canon" {
		t.Errorf("Make = %q, want Canon", got)
	}
	if got := stringVal(md["Model"]); got != "Canon EOS M50" {
		t.Errorf("Model = %q, want Canon EOS M50", got)
	}
	if v, ok := numeric(md["FocalLength"]); !ok || v != 32 {
		t.Errorf("FocalLength = %v (ok=%v), want 32", v, ok)
	}
	if v, ok := numeric(md["FNumber"]); !ok || v != 2 {
		t.Errorf("FNumber = %v (ok=%v), want 2", v, ok)
	}
	if _, present := md["FocalLengthIn35mmFilm"]; present {
		t.Error("FocalLengthIn35mmFilm present, want absent")
	}

	o, ok := Extract(md, &Config{})
	if !ok {
		t.Fatal("Extract() ok = false, want true")
	}
	want := Observation{FocalLength: 51, Aperture: 3.2}
	if o != want {
		t.Errorf("Extract() = %+v, want %+v", o, want)
	}
}

func TestNativeSourcePrefers35mm(t *testing.T) {
	f35 := uint16(50)
	path := writePhoto(t, t.TempDir(), "IMG_0002.jpg", tiffFixture{
		focal:   &[2]uint32{32, 1},
		fnumber: &[2]uint32{28, 10},
		focal35: &f35,
	})

	md, err := (&NativeSource{}).ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	o, ok := Extract(md, &Config{})
	if !ok {
		t.Fatal("Extract() ok = false, want true")
	}
	want := Observation{FocalLength: 50, Aperture: 2.8}
	if o != want {
		t.Errorf("Extract() = %+v, want %+v", o, want)
	}
}

func TestNativeSourceIncomplete(t *testing.T) {
	// An aperture alone is not an observation.
	path := writePhoto(t, t.TempDir(), "IMG_0003.jpg", tiffFixture{
		fnumber: &[2]uint32{28, 10},
	})

	md, err := (&NativeSource{}).ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	if _, ok := Extract(md, &Config{}); ok {
		t.Error("Extract() ok = true, want false")
	}
}

func TestNativeSourceNotAPhoto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readme.jpg")
	if err := os.WriteFile(path, []byte("not actually a photo"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&NativeSource{}).ReadMetadata(path); err == nil {
		t.Error("ReadMetadata() error = nil, want decode failure")
	}
}

func TestNativeSourceMissingFile(t *testing.T) {
	if _, err := (&NativeSource{}).ReadMetadata(filepath.Join(t.TempDir(), "gone.jpg")); err == nil {
		t.Error("ReadMetadata() error = nil, want open failure")
	}
}
