package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/example/snaplate/internal/capture"
	"github.com/example/snaplate/internal/clipboard"
	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/editor"
	"github.com/example/snaplate/internal/export"
	"github.com/example/snaplate/internal/session"
)

type editCmd struct {
	source        string
	display       string
	region        string
	input         string
	output        string
	includeCursor bool
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet { return e.fs }

func (e *editCmd) Program() string { return "snaplate edit" }

func (e *editCmd) Synopsis() string {
	return "snaplate edit [flags] [screen|region|file|clipboard]"
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.display, "display", "", "target display selector for screen captures")
	fs.StringVar(&e.region, "region", "", "capture rectangle x0,y0,x1,y1; empty opens the interactive picker")
	fs.StringVar(&e.input, "input", "", "open this image file instead of capturing")
	fs.StringVar(&e.output, "output", "", "save to this file path; empty picks a timestamped name")
	fs.BoolVar(&e.includeCursor, "include-cursor", false, "embed the cursor in captures when supported")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	e.source = "screen"
	if fs.NArg() > 0 {
		e.source = strings.ToLower(strings.TrimSpace(fs.Arg(0)))
	}
	if e.input != "" {
		e.source = "file"
	}
	switch e.source {
	case "screen", "region", "file", "clipboard":
	default:
		return nil, &UsageError{of: e}
	}
	if e.source == "file" && e.input == "" {
		if fs.NArg() > 1 {
			e.input = fs.Arg(1)
		} else {
			return nil, fmt.Errorf("edit file: an -input path is required")
		}
	}
	return e, nil
}

func (e *editCmd) Run() error {
	doc, detail, err := e.document()
	if err != nil {
		return err
	}
	e.notifyCapture(detail, doc.Bitmap)

	engine, translator := e.root.engines()
	ed := editor.New(doc,
		editor.WithConfig(e.root.config),
		editor.WithNotifier(e.root.notifier),
		editor.WithOutput(e.output),
		editor.WithCollaborators(session.Collaborators{
			Clipboard:  clipboard.Sink{},
			Exporter:   export.FileExporter{},
			OCR:        engine,
			Translator: translator,
		}),
	)
	ed.Run()
	return nil
}

func (e *editCmd) document() (document.Screenshot, string, error) {
	opts := capture.Options{IncludeCursor: e.includeCursor}
	switch e.source {
	case "screen":
		frame, err := captureScreenFn(e.display, opts)
		if err != nil {
			return document.Screenshot{}, "", fmt.Errorf("failed to capture screen: %w", err)
		}
		return frame.Document(), "screen", nil
	case "region":
		if strings.TrimSpace(e.region) == "" {
			frame, err := captureRegionFn(opts)
			if err != nil {
				return document.Screenshot{}, "", fmt.Errorf("failed to capture region: %w", err)
			}
			return frame.Document(), "region", nil
		}
		rect, err := parseRect(e.region)
		if err != nil {
			return document.Screenshot{}, "", err
		}
		frame, err := captureRegionRectFn(rect, opts)
		if err != nil {
			return document.Screenshot{}, "", fmt.Errorf("failed to capture region: %w", err)
		}
		return frame.Document(), "region", nil
	case "file":
		img, err := loadImage(e.input)
		if err != nil {
			return document.Screenshot{}, "", err
		}
		return document.New(img, time.Now(), document.Display{}), e.input, nil
	case "clipboard":
		img, err := clipboard.ReadImage()
		if err != nil {
			return document.Screenshot{}, "", fmt.Errorf("read clipboard image: %w", err)
		}
		rgba := toRGBA(img)
		return document.New(rgba, time.Now(), document.Display{}), "clipboard", nil
	}
	return document.Screenshot{}, "", fmt.Errorf("unsupported edit source %q", e.source)
}

func loadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
