package editor

import (
	"image"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/config"
	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/export"
	"github.com/example/snaplate/internal/geom"
	"github.com/example/snaplate/internal/session"
)

func testDoc() document.Screenshot {
	return document.New(image.NewRGBA(image.Rect(0, 0, 400, 300)), time.Now(), document.Display{})
}

func TestFitZoomClamps(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	if z := fitZoom(img, 2000, 2000); z != 1 {
		t.Fatalf("fitZoom on a small image = %v, want 1", z)
	}
	big := image.NewRGBA(image.Rect(0, 0, 4000, 100))
	z := fitZoom(big, toolbarWidth+400, 500)
	if z != 0.1 {
		t.Fatalf("fitZoom on a wide image = %v, want 0.1", z)
	}
}

func TestImageRectAnchoredBesideToolbar(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	r := imageRect(img, 800, 600, 2)
	want := image.Rect(toolbarWidth, 0, toolbarWidth+400, 200)
	if r != want {
		t.Fatalf("imageRect = %v, want %v", r, want)
	}
}

func TestToViewRect(t *testing.T) {
	base := image.Rect(50, 0, 450, 300)
	got := toViewRect(base, 2, geom.XYWH(10, 20, 30, 40))
	want := image.Rect(70, 40, 130, 120)
	if got != want {
		t.Fatalf("toViewRect = %v, want %v", got, want)
	}
}

func TestCurrentToolIndex(t *testing.T) {
	sess := session.New(testDoc())
	if idx := currentToolIndex(sess); idx != 0 {
		t.Fatalf("no tool selected: index = %d, want 0", idx)
	}
	sess.SelectTool(annotation.KindArrow)
	idx := currentToolIndex(sess)
	if toolSpecs[idx].kind != annotation.KindArrow {
		t.Fatalf("arrow selected: index = %d (%s)", idx, toolSpecs[idx].label)
	}
	sess.EnterCropMode()
	idx = currentToolIndex(sess)
	if !toolSpecs[idx].crop {
		t.Fatalf("crop mode: index = %d (%s)", idx, toolSpecs[idx].label)
	}
}

func TestStatusLabel(t *testing.T) {
	sess := session.New(testDoc())
	if got := statusLabel(sess); got != "select" {
		t.Fatalf("default status = %q", got)
	}
	sess.SelectTool(annotation.KindRectangle)
	if got := statusLabel(sess); got != "rectangle" {
		t.Fatalf("rectangle status = %q", got)
	}
	sess.SelectTool(annotation.KindText)
	sess.PointerDown(geom.Pt(10, 10))
	sess.PointerUp(geom.Pt(10, 10))
	if got := statusLabel(sess); !strings.HasPrefix(got, "text") {
		t.Fatalf("awaiting-text status = %q", got)
	}
}

func TestHandleEscapeCascade(t *testing.T) {
	e := New(testDoc())
	sess := session.New(testDoc())

	// Pending crop rect clears first, crop mode second.
	sess.EnterCropMode()
	sess.PointerDown(geom.Pt(10, 10))
	sess.PointerMove(geom.Pt(80, 80))
	sess.PointerUp(geom.Pt(80, 80))
	if _, ok := sess.PendingCrop(); !ok {
		t.Fatal("expected a pending crop rect")
	}
	e.handleEscape(sess)
	if _, ok := sess.PendingCrop(); ok {
		t.Fatal("escape should clear the pending rect")
	}
	if !sess.CropMode() {
		t.Fatal("first escape should stay in crop mode")
	}
	e.handleEscape(sess)
	if sess.CropMode() {
		t.Fatal("second escape should leave crop mode")
	}

	// With nothing pending, escape drops the selection.
	sess.SelectTool(annotation.KindRectangle)
	sess.PointerDown(geom.Pt(10, 10))
	sess.PointerMove(geom.Pt(60, 60))
	sess.PointerUp(geom.Pt(60, 60))
	sess.SelectAnnotation(0)
	e.handleEscape(sess)
	if _, ok := sess.SelectedAnnotation(); ok {
		t.Fatal("escape should deselect")
	}
}

func TestDefaultSavePath(t *testing.T) {
	cfg := config.New()
	cfg.SaveDir = t.TempDir()
	cfg.Export.Format = "jpeg"
	e := New(testDoc(), WithConfig(cfg))
	path := e.defaultSavePath()
	if filepath.Dir(path) != cfg.SaveDir {
		t.Fatalf("save path %q not under %q", path, cfg.SaveDir)
	}
	if filepath.Ext(path) != ".jpeg" {
		t.Fatalf("save path %q should carry the configured extension", path)
	}
}

func TestExportOptions(t *testing.T) {
	cfg := config.New()
	cfg.Export.Format = "pdf"
	cfg.Export.Quality = 0.7
	cfg.Export.Shadow = true
	e := New(testDoc(), WithConfig(cfg))
	opts := e.exportOptions()
	if opts.Format != export.FormatPDF || opts.Quality != 0.7 || !opts.Shadow {
		t.Fatalf("exportOptions = %+v", opts)
	}

	cfg.Export.Format = "bogus"
	if opts := e.exportOptions(); opts.Format != export.FormatPNG {
		t.Fatalf("unknown format should fall back to png, got %v", opts.Format)
	}
}

func TestSnapshotCapturesPreview(t *testing.T) {
	e := New(testDoc())
	sess := session.New(testDoc())
	sess.SelectTool(annotation.KindRectangle)
	sess.PointerDown(geom.Pt(10, 10))
	sess.PointerMove(geom.Pt(90, 70))

	st := e.snapshot(sess, 800, 600, 1, -1, "", "", time.Time{})
	if !st.hasRect {
		t.Fatal("snapshot should carry the rectangle preview")
	}
	want := geom.XYWH(10, 10, 80, 60)
	if st.previewRect != want {
		t.Fatalf("preview rect = %v, want %v", st.previewRect, want)
	}
	sess.PointerUp(geom.Pt(90, 70))

	st = e.snapshot(sess, 800, 600, 1, -1, "", "", time.Time{})
	if st.hasRect {
		t.Fatal("no gesture in progress, preview should be empty")
	}

	sess.SelectAnnotation(0)
	st = e.snapshot(sess, 800, 600, 1, -1, "", "", time.Time{})
	if !st.hasSelected {
		t.Fatal("selection should be carried into the snapshot")
	}
	base := imageRect(sess.Document().Bitmap, 800, 600, 1)
	if wantSel := toViewRect(base, 1, want); st.selected != wantSel {
		t.Fatalf("selected rect = %v, want %v", st.selected, wantSel)
	}
}

func TestSnapshotTextState(t *testing.T) {
	e := New(testDoc())
	sess := session.New(testDoc())
	sess.SelectTool(annotation.KindText)
	sess.PointerDown(geom.Pt(42, 24))
	sess.PointerUp(geom.Pt(42, 24))

	st := e.snapshot(sess, 800, 600, 1, -1, "hello", "", time.Time{})
	if !st.textActive {
		t.Fatal("snapshot should reflect the pending text anchor")
	}
	if st.textInput != "hello" {
		t.Fatalf("text input = %q", st.textInput)
	}
	if st.textPos != geom.Pt(42, 24) {
		t.Fatalf("text anchor = %v", st.textPos)
	}
}
