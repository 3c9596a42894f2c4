package main

import (
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/snaplate/internal/capture"
	"github.com/example/snaplate/internal/config"
	"github.com/example/snaplate/internal/document"
)

func stubFrame() capture.Frame {
	return capture.Frame{
		Bitmap:     image.NewRGBA(image.Rect(0, 0, 8, 8)),
		CapturedAt: time.Now(),
		Display:    document.Display{Name: "stub"},
	}
}

func TestSnapshotRunCaptureError(t *testing.T) {
	original := captureScreenFn
	sentinel := errors.New("boom")
	captureScreenFn = func(string, capture.Options) (capture.Frame, error) { return capture.Frame{}, sentinel }
	t.Cleanup(func() { captureScreenFn = original })

	cmd := &snapshotCmd{mode: "screen", stdout: true}
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestSnapshotWritesFile(t *testing.T) {
	original := captureScreenFn
	captureScreenFn = func(string, capture.Options) (capture.Frame, error) { return stubFrame(), nil }
	t.Cleanup(func() { captureScreenFn = original })

	out := filepath.Join(t.TempDir(), "shot.png")
	cmd, err := parseSnapshotCmd([]string{"-output", out, "screen"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := loadImage(out)
	if err != nil {
		t.Fatalf("reading the written capture: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("written capture bounds = %v", img.Bounds())
	}
}

func TestParseSnapshotRejectsStdoutWithClipboard(t *testing.T) {
	_, err := parseSnapshotCmd([]string{"-stdout", "-to-clipboard", "screen"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "-stdout cannot be used with -to-clipboard") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseSnapshotModeOperand(t *testing.T) {
	cmd, err := parseSnapshotCmd([]string{"screen", "primary"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.mode != "screen" || cmd.display != "primary" {
		t.Fatalf("mode = %q, display = %q", cmd.mode, cmd.display)
	}

	cmd, err = parseSnapshotCmd([]string{"region", "0,0,100,50"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.region != "0,0,100,50" {
		t.Fatalf("region = %q", cmd.region)
	}

	if _, err := parseSnapshotCmd([]string{"window"}, nil); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("10, 20, 110, 80")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r != image.Rect(10, 20, 110, 80) {
		t.Fatalf("rect = %v", r)
	}
	if _, err := parseRect("1,2,3"); err == nil {
		t.Fatalf("short rect should fail")
	}
	if _, err := parseRect("a,b,c,d"); err == nil {
		t.Fatalf("non-numeric rect should fail")
	}
}

func TestParseEditSources(t *testing.T) {
	cmd, err := parseEditCmd(nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.source != "screen" {
		t.Fatalf("default source = %q", cmd.source)
	}

	cmd, err = parseEditCmd([]string{"-input", "shot.png"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.source != "file" {
		t.Fatalf("-input should imply the file source, got %q", cmd.source)
	}

	if _, err := parseEditCmd([]string{"file"}, nil); err == nil {
		t.Fatalf("file source without a path should fail")
	}
}

func TestParseExportDerivesOutput(t *testing.T) {
	r := &root{config: config.New()}
	cmd, err := parseExportCmd([]string{"-format", "jpeg", "shot.png"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.output != "shot.jpeg" {
		t.Fatalf("output = %q", cmd.output)
	}

	cmd, err = parseExportCmd([]string{"shot.png", "out.pdf"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.format != "pdf" {
		t.Fatalf("format from extension = %q", cmd.format)
	}

	if _, err := parseExportCmd(nil, r); err == nil {
		t.Fatalf("missing input should fail")
	}
}

func TestParseOCRTargetDefault(t *testing.T) {
	cfg := config.New()
	cfg.Engines.TargetLanguage = "de"
	r := &root{config: cfg}
	cmd, err := parseOCRCmd([]string{"shot.png"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.input != "shot.png" {
		t.Fatalf("input = %q", cmd.input)
	}
	if cmd.target != "de" {
		t.Fatalf("target = %q", cmd.target)
	}
}

func TestUsageErrorListsFlags(t *testing.T) {
	cmd, err := parseSnapshotCmd([]string{"screen"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	msg := (&UsageError{of: cmd}).Error()
	if !strings.Contains(msg, "snaplate snapshot") {
		t.Fatalf("usage should name the command:\n%s", msg)
	}
	if !strings.Contains(msg, "-output") {
		t.Fatalf("usage should list flags:\n%s", msg)
	}
}
