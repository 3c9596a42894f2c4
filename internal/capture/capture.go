// Package capture produces screenshot frames for the editor. On Linux it
// asks the XDG desktop portal for the pixels and RandR for the display
// layout; everywhere else (and when the portal is unavailable) it falls back
// to a direct framebuffer grab.
package capture

import (
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"
	"time"

	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/geom"
)

// Options tunes a capture request.
type Options struct {
	IncludeCursor bool
}

// Frame is one captured screenshot plus its provenance.
type Frame struct {
	Bitmap     *image.RGBA
	CapturedAt time.Time
	Display    document.Display
}

// Document wraps the frame into a fresh editing document.
func (f Frame) Document() document.Screenshot {
	return document.New(f.Bitmap, f.CapturedAt, f.Display)
}

// Overridable in tests.
var (
	portalScreenshotFn   = portalScreenshot
	portableScreenshotFn = portableScreenshot
	listDisplaysFn       = listDisplays
	now                  = time.Now
)

// Screen captures the desktop. A non-empty selector crops the result to the
// matching display; otherwise the whole virtual desktop is returned.
func Screen(selector string, opts Options) (Frame, error) {
	img, err := desktopScreenshot(opts)
	if err != nil {
		return Frame{}, err
	}
	at := now()
	if selector == "" {
		return Frame{
			Bitmap:     img,
			CapturedAt: at,
			Display:    virtualDisplay(img),
		}, nil
	}
	displays, err := Displays()
	if err != nil {
		return Frame{}, err
	}
	display, err := FindDisplay(displays, selector)
	if err != nil {
		return Frame{}, err
	}
	cropped, err := cropToRect(img, displayRect(display))
	if err != nil {
		return Frame{}, fmt.Errorf("crop to display %q: %w", display.Name, err)
	}
	return Frame{Bitmap: cropped, CapturedAt: at, Display: display}, nil
}

// Region lets the user pick a region interactively through the portal.
// There is no portable fallback: only the portal can run the picker, so
// portal errors are returned as-is.
func Region(opts Options) (Frame, error) {
	img, err := portalScreenshotFn(true, opts)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Bitmap: img, CapturedAt: now(), Display: virtualDisplay(img)}, nil
}

// RegionRect captures a fixed rectangle in global screen coordinates.
func RegionRect(rect image.Rectangle, opts Options) (Frame, error) {
	if rect.Empty() {
		return Frame{}, fmt.Errorf("region is empty")
	}
	img, err := desktopScreenshot(opts)
	if err != nil {
		return Frame{}, err
	}
	cropped, err := cropToRect(img, rect)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Bitmap: cropped, CapturedAt: now(), Display: virtualDisplay(cropped)}, nil
}

// desktopScreenshot prefers the portal and falls back to the direct grab
// when the desktop has no portal to offer.
func desktopScreenshot(opts Options) (*image.RGBA, error) {
	img, err := portalScreenshotFn(false, opts)
	if err == nil {
		return img, nil
	}
	if !isPortalUnsupportedError(err) {
		return nil, err
	}
	img, fallbackErr := portableScreenshotFn()
	if fallbackErr != nil {
		return nil, fmt.Errorf("portal screenshot: %v; direct fallback: %w", err, fallbackErr)
	}
	return img, nil
}

// Displays enumerates the attached displays.
func Displays() ([]document.Display, error) {
	return listDisplaysFn()
}

// FindDisplay resolves a selector — "primary", an index like "1" or "#1",
// or a name substring — against the display list.
func FindDisplay(displays []document.Display, selector string) (document.Display, error) {
	if len(displays) == 0 {
		return document.Display{}, fmt.Errorf("no displays available")
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	if sel == "" {
		return displays[0], nil
	}
	if sel == "primary" {
		for _, d := range displays {
			if d.Primary {
				return d, nil
			}
		}
		return displays[0], nil
	}
	sel = strings.TrimPrefix(sel, "#")
	if idx, err := strconv.Atoi(sel); err == nil {
		for _, d := range displays {
			if d.ID == idx {
				return d, nil
			}
		}
		return document.Display{}, fmt.Errorf("display index %d out of range", idx)
	}
	for _, d := range displays {
		if strings.Contains(strings.ToLower(d.Name), sel) {
			return d, nil
		}
	}
	return document.Display{}, fmt.Errorf("display %q not found", selector)
}

func virtualDisplay(img *image.RGBA) document.Display {
	b := img.Bounds()
	return document.Display{
		ID:          -1,
		Name:        "desktop",
		Frame:       geom.XYWH(float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy())),
		ScaleFactor: 1,
	}
}

func displayRect(d document.Display) image.Rectangle {
	return image.Rect(
		int(d.Frame.X),
		int(d.Frame.Y),
		int(d.Frame.X+d.Frame.Width),
		int(d.Frame.Y+d.Frame.Height),
	)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
