package capture

import (
	"fmt"
	"image"

	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/geom"
	"github.com/kbinani/screenshot"
)

// portableScreenshot grabs the whole virtual desktop without going through
// a desktop portal. Works on X11, Windows and macOS; fails on pure Wayland.
func portableScreenshot() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	bounds := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		bounds = bounds.Union(screenshot.GetDisplayBounds(i))
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture desktop: %w", err)
	}
	return img, nil
}

// portableDisplays builds the display list from the framebuffer bounds when
// no richer source (RandR) is available. Names are synthetic and the
// primary flag goes to display 0.
func portableDisplays() ([]document.Display, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	displays := make([]document.Display, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		displays = append(displays, document.Display{
			ID:          i,
			Name:        fmt.Sprintf("display-%d", i),
			Frame:       geom.XYWH(float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy())),
			ScaleFactor: 1,
			Primary:     i == 0,
		})
	}
	return displays, nil
}
