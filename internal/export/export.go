// Package export writes flattened screenshots to files. PNG and JPEG use
// the stdlib encoders; PDF wraps the bitmap in a single-page document. HEIC
// is accepted at the API surface but fails with ErrUnsupportedFormat since
// no encoder is available.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/snaplate/internal/render"
)

// Format selects the output encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatHEIC
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatHEIC:
		return "heic"
	case FormatPDF:
		return "pdf"
	}
	return "unknown"
}

// ParseFormat resolves a user-supplied format name or file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "heic", "heif":
		return FormatHEIC, nil
	case "pdf":
		return FormatPDF, nil
	}
	return 0, fmt.Errorf("unknown format %q", name)
}

// Typed failure kinds. Callers match with errors.Is; the wrapped error
// carries the underlying detail.
var (
	ErrInvalidLocation   = errors.New("export: invalid destination")
	ErrEncodingFailed    = errors.New("export: encoding failed")
	ErrUnsupportedFormat = errors.New("export: unsupported format")
)

// Options configures one export.
type Options struct {
	Format Format
	// Quality in 0..1; meaningful only for lossy formats. Zero means the
	// encoder default.
	Quality float64
	// Shadow composites a drop shadow behind the bitmap before encoding.
	Shadow bool
}

// FileExporter writes images to the local filesystem.
type FileExporter struct{}

// Export encodes img per opts and writes it to path. The file is written
// whole-or-not-at-all: encoding happens into memory first so a codec
// failure never leaves a truncated file behind.
func (FileExporter) Export(img image.Image, path string, opts Options) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidLocation)
	}
	if dir := filepath.Dir(path); dir != "." {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("%w: directory %s", ErrInvalidLocation, dir)
		}
	}
	if opts.Shadow {
		img = withShadow(img)
	}

	var buf bytes.Buffer
	if err := encode(&buf, img, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	return nil
}

func encode(buf *bytes.Buffer, img image.Image, opts Options) error {
	switch opts.Format {
	case FormatPNG:
		if err := png.Encode(buf, img); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
		}
	case FormatJPEG:
		quality := jpeg.DefaultQuality
		if opts.Quality > 0 {
			quality = int(opts.Quality * 100)
			if quality > 100 {
				quality = 100
			}
		}
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
		}
	case FormatPDF:
		if err := encodePDF(buf, img); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
		}
	case FormatHEIC:
		return fmt.Errorf("%w: no HEIC encoder available", ErrUnsupportedFormat)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, opts.Format)
	}
	return nil
}

// encodePDF embeds the bitmap as a full-bleed single page sized to the
// image at 96 DPI.
func encodePDF(buf *bytes.Buffer, img image.Image) error {
	b := img.Bounds()
	const mmPerPixel = 25.4 / 96
	w := float64(b.Dx()) * mmPerPixel
	h := float64(b.Dy()) * mmPerPixel

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.AddPage()

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return err
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("screenshot", opt, &pngBuf)
	pdf.ImageOptions("screenshot", 0, 0, w, h, false, opt, 0, "")
	return pdf.Output(buf)
}

func withShadow(img image.Image) image.Image {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		return img
	}
	return render.ApplyShadow(rgba, render.DefaultShadowOptions()).Image
}
