package capture

import (
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/geom"
)

func stubHooks(t *testing.T) {
	t.Helper()
	prevPortal := portalScreenshotFn
	prevPortable := portableScreenshotFn
	prevDisplays := listDisplaysFn
	prevNow := now
	t.Cleanup(func() {
		portalScreenshotFn = prevPortal
		portableScreenshotFn = prevPortable
		listDisplaysFn = prevDisplays
		now = prevNow
	})
}

func solidDesktop(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestScreenWholeDesktop(t *testing.T) {
	stubHooks(t)
	want := solidDesktop(800, 600)
	at := time.Unix(1700000000, 0)
	portalScreenshotFn = func(interactive bool, _ Options) (*image.RGBA, error) {
		if interactive {
			t.Fatal("whole-desktop capture must not be interactive")
		}
		return want, nil
	}
	now = func() time.Time { return at }

	frame, err := Screen("", Options{})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	if frame.Bitmap != want {
		t.Fatal("frame should carry the portal bitmap")
	}
	if !frame.CapturedAt.Equal(at) {
		t.Fatalf("CapturedAt = %v", frame.CapturedAt)
	}
	if frame.Display.ID != -1 || frame.Display.Name != "desktop" {
		t.Fatalf("display = %+v", frame.Display)
	}
}

func TestScreenFallsBackWhenPortalUnsupported(t *testing.T) {
	stubHooks(t)
	portalScreenshotFn = func(bool, Options) (*image.RGBA, error) {
		return nil, &dbus.Error{Name: "org.freedesktop.portal.Error.NotSupported"}
	}
	want := solidDesktop(640, 480)
	called := false
	portableScreenshotFn = func() (*image.RGBA, error) {
		called = true
		return want, nil
	}

	frame, err := Screen("", Options{})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	if !called {
		t.Fatal("expected direct-grab fallback")
	}
	if frame.Bitmap != want {
		t.Fatal("expected the fallback bitmap")
	}
}

func TestScreenTransientPortalErrorNotRetried(t *testing.T) {
	stubHooks(t)
	portalErr := errors.New("portal screenshot: response missing image data")
	portalScreenshotFn = func(bool, Options) (*image.RGBA, error) {
		return nil, portalErr
	}
	portableScreenshotFn = func() (*image.RGBA, error) {
		t.Fatal("transient portal failure must not fall back")
		return nil, nil
	}

	if _, err := Screen("", Options{}); !errors.Is(err, portalErr) {
		t.Fatalf("Screen = %v, want portal error", err)
	}
}

func TestScreenFallbackFailure(t *testing.T) {
	stubHooks(t)
	portalScreenshotFn = func(bool, Options) (*image.RGBA, error) {
		return nil, &dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}
	}
	portableScreenshotFn = func() (*image.RGBA, error) {
		return nil, errors.New("no framebuffer")
	}
	_, err := Screen("", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "direct fallback") {
		t.Fatalf("error should name both paths: %v", err)
	}
}

func TestScreenCropsToSelectedDisplay(t *testing.T) {
	stubHooks(t)
	portalScreenshotFn = func(bool, Options) (*image.RGBA, error) {
		return solidDesktop(1000, 400), nil
	}
	listDisplaysFn = func() ([]document.Display, error) {
		return []document.Display{
			{ID: 0, Name: "eDP-1", Frame: geom.XYWH(0, 0, 600, 400), Primary: true},
			{ID: 1, Name: "HDMI-1", Frame: geom.XYWH(600, 0, 400, 400)},
		}, nil
	}

	frame, err := Screen("HDMI-1", Options{})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	b := frame.Bitmap.Bounds()
	if b.Dx() != 400 || b.Dy() != 400 {
		t.Fatalf("cropped to %dx%d", b.Dx(), b.Dy())
	}
	if frame.Display.Name != "HDMI-1" {
		t.Fatalf("display = %+v", frame.Display)
	}
}

func TestRegionInteractiveNoFallback(t *testing.T) {
	stubHooks(t)
	portalErr := &dbus.Error{Name: "org.freedesktop.portal.Error.NotSupported"}
	portalScreenshotFn = func(interactive bool, _ Options) (*image.RGBA, error) {
		if !interactive {
			t.Fatal("Region must request the interactive picker")
		}
		return nil, portalErr
	}
	portableScreenshotFn = func() (*image.RGBA, error) {
		t.Fatal("interactive capture has no portable fallback")
		return nil, nil
	}
	var dbusErr *dbus.Error
	if _, err := Region(Options{}); !errors.As(err, &dbusErr) {
		t.Fatalf("Region = %v, want the portal error", err)
	}
}

func TestRegionRect(t *testing.T) {
	stubHooks(t)
	portalScreenshotFn = func(bool, Options) (*image.RGBA, error) {
		return solidDesktop(800, 600), nil
	}

	frame, err := RegionRect(image.Rect(100, 100, 300, 250), Options{})
	if err != nil {
		t.Fatalf("RegionRect: %v", err)
	}
	b := frame.Bitmap.Bounds()
	if b.Dx() != 200 || b.Dy() != 150 {
		t.Fatalf("cropped to %dx%d", b.Dx(), b.Dy())
	}

	if _, err := RegionRect(image.Rectangle{}, Options{}); err == nil {
		t.Fatal("empty rect should be rejected")
	}
	if _, err := RegionRect(image.Rect(900, 900, 950, 950), Options{}); err == nil {
		t.Fatal("off-screen rect should be rejected")
	}
}

func TestFindDisplay(t *testing.T) {
	displays := []document.Display{
		{ID: 0, Name: "eDP-1"},
		{ID: 1, Name: "HDMI-1", Primary: true},
	}
	tests := []struct {
		selector string
		wantID   int
		wantErr  bool
	}{
		{selector: "", wantID: 0},
		{selector: "primary", wantID: 1},
		{selector: "1", wantID: 1},
		{selector: "#0", wantID: 0},
		{selector: "hdmi", wantID: 1},
		{selector: "5", wantErr: true},
		{selector: "DP-3", wantErr: true},
	}
	for _, tc := range tests {
		got, err := FindDisplay(displays, tc.selector)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("FindDisplay(%q): expected error", tc.selector)
			}
			continue
		}
		if err != nil {
			t.Fatalf("FindDisplay(%q): %v", tc.selector, err)
		}
		if got.ID != tc.wantID {
			t.Fatalf("FindDisplay(%q) = %d, want %d", tc.selector, got.ID, tc.wantID)
		}
	}
	if _, err := FindDisplay(nil, "primary"); err == nil {
		t.Fatal("empty display list should error")
	}
}

func TestFrameDocument(t *testing.T) {
	frame := Frame{
		Bitmap:     solidDesktop(100, 80),
		CapturedAt: time.Unix(1700000000, 0),
		Display:    document.Display{ID: 2, Name: "HDMI-1"},
	}
	doc := frame.Document()
	if doc.Width() != 100 || doc.Height() != 80 {
		t.Fatalf("document %dx%d", doc.Width(), doc.Height())
	}
	if doc.Display.Name != "HDMI-1" || !doc.CapturedAt.Equal(frame.CapturedAt) {
		t.Fatalf("document metadata = %+v", doc)
	}
	if len(doc.Annotations) != 0 {
		t.Fatal("fresh document should have no annotations")
	}
}
