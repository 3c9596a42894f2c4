package export

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"png": FormatPNG, ".PNG": FormatPNG,
		"jpg": FormatJPEG, "jpeg": FormatJPEG,
		"heic": FormatHEIC, "pdf": FormatPDF,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("bmp"); err == nil {
		t.Fatal("ParseFormat(bmp) should fail")
	}
}

func TestExportPNGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := (FileExporter{}).Export(testImage(), path, Options{Format: FormatPNG}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode exported png: %v", err)
	}
	if decoded.Bounds().Dx() != 20 || decoded.Bounds().Dy() != 10 {
		t.Fatalf("exported bounds = %v", decoded.Bounds())
	}
}

func TestExportJPEGAndPDF(t *testing.T) {
	dir := t.TempDir()
	if err := (FileExporter{}).Export(testImage(), filepath.Join(dir, "shot.jpg"), Options{Format: FormatJPEG, Quality: 0.8}); err != nil {
		t.Fatalf("jpeg export: %v", err)
	}
	if err := (FileExporter{}).Export(testImage(), filepath.Join(dir, "shot.pdf"), Options{Format: FormatPDF}); err != nil {
		t.Fatalf("pdf export: %v", err)
	}
}

func TestExportHEICUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.heic")
	err := (FileExporter{}).Export(testImage(), path, Options{Format: FormatHEIC})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("heic export err = %v, want ErrUnsupportedFormat", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("failed export must not leave a file behind")
	}
}

func TestExportInvalidLocation(t *testing.T) {
	err := (FileExporter{}).Export(testImage(), "/no/such/dir/shot.png", Options{Format: FormatPNG})
	if !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("err = %v, want ErrInvalidLocation", err)
	}
	if err := (FileExporter{}).Export(testImage(), "", Options{Format: FormatPNG}); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("empty path err = %v", err)
	}
}

func TestExportWithShadowGrowsCanvas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadow.png")
	if err := (FileExporter{}).Export(testImage(), path, Options{Format: FormatPNG, Shadow: true}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() <= 20 {
		t.Fatalf("shadow should expand the canvas, got %v", decoded.Bounds())
	}
}
