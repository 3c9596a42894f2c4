package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/snaplate/internal/capture"
	"github.com/example/snaplate/internal/clipboard"
	"github.com/example/snaplate/internal/render"
)

// Capture entry points as variables so tests can stub them out.
var (
	captureScreenFn     = capture.Screen
	captureRegionFn     = capture.Region
	captureRegionRectFn = capture.RegionRect
)

type snapshotCmd struct {
	output        string
	stdout        bool
	toClipboard   bool
	mode          string
	display       string
	region        string
	includeCursor bool
	shadow        bool
	shadowRadius  int
	shadowOffset  string
	shadowPoint   image.Point
	shadowOpacity float64
	*root
	fs *flag.FlagSet
}

func (s *snapshotCmd) FlagSet() *flag.FlagSet { return s.fs }

func (s *snapshotCmd) Program() string { return "snaplate snapshot" }

func (s *snapshotCmd) Synopsis() string {
	return "snaplate snapshot [flags] <screen|region> [selector]"
}

func parseSnapshotCmd(args []string, r *root) (*snapshotCmd, error) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	s := &snapshotCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	defaults := render.DefaultShadowOptions()
	fs.StringVar(&s.output, "output", "screenshot.png", "write the capture to this file path")
	fs.StringVar(&s.mode, "mode", "", "capture mode: screen or region")
	fs.StringVar(&s.display, "display", "", "target display selector for screen captures")
	fs.StringVar(&s.region, "region", "", "capture rectangle x0,y0,x1,y1; empty opens the interactive picker")
	fs.BoolVar(&s.stdout, "stdout", false, "write PNG data to stdout")
	fs.BoolVar(&s.toClipboard, "to-clipboard", false, "copy the capture to the clipboard")
	fs.BoolVar(&s.includeCursor, "include-cursor", false, "embed the cursor in captures when supported")
	fs.BoolVar(&s.shadow, "shadow", false, "apply a drop shadow to the captured image")
	fs.IntVar(&s.shadowRadius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&s.shadowOffset, "shadow-offset", formatOffset(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&s.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	pt, err := parseOffset(s.shadowOffset)
	if err != nil {
		return nil, err
	}
	s.shadowPoint = pt
	if s.toClipboard && s.stdout {
		return nil, fmt.Errorf("-stdout cannot be used with -to-clipboard")
	}
	operands := fs.Args()
	if strings.TrimSpace(s.mode) == "" {
		if len(operands) == 0 {
			return nil, &UsageError{of: s}
		}
		s.mode = strings.ToLower(strings.TrimSpace(operands[0]))
		operands = operands[1:]
	} else {
		s.mode = strings.ToLower(strings.TrimSpace(s.mode))
	}
	switch s.mode {
	case "screen", "region":
	default:
		return nil, &UsageError{of: s}
	}
	if len(operands) > 0 {
		arg := strings.TrimSpace(strings.Join(operands, " "))
		switch s.mode {
		case "screen":
			if s.display == "" {
				s.display = arg
			}
		case "region":
			if s.region == "" {
				s.region = arg
			}
		}
	}
	return s, nil
}

func (s *snapshotCmd) Run() error {
	frame, err := s.capture()
	if err != nil {
		return fmt.Errorf("failed to capture %s: %w", s.mode, err)
	}
	img := frame.Bitmap
	if s.shadow {
		res := render.ApplyShadow(img, s.shadowOptions())
		img = res.Image
	}
	detail := s.describeCapture()
	s.notifyCapture(detail, img)
	if s.toClipboard {
		if err := (clipboard.Sink{}).WriteImage(img); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", detail)
		s.notifyCopy(detail)
		return nil
	}
	var w io.Writer
	if s.stdout {
		w = os.Stdout
	} else {
		f, err := os.Create(s.output)
		if err != nil {
			return fmt.Errorf("create output %q: %w", s.output, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				log.Printf("close %s: %v", s.output, cerr)
			}
		}()
		w = f
	}
	if err := png.Encode(w, img); err != nil {
		if s.stdout {
			return fmt.Errorf("write PNG to stdout: %w", err)
		}
		return fmt.Errorf("write PNG to %q: %w", s.output, err)
	}
	if s.stdout {
		fmt.Fprintln(os.Stderr, "wrote PNG data to stdout")
		return nil
	}
	saved := s.output
	if abs, err := filepath.Abs(s.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	s.notifySave(saved)
	return nil
}

func (s *snapshotCmd) capture() (capture.Frame, error) {
	opts := capture.Options{IncludeCursor: s.includeCursor}
	switch s.mode {
	case "screen":
		return captureScreenFn(s.display, opts)
	case "region":
		if strings.TrimSpace(s.region) == "" {
			return captureRegionFn(opts)
		}
		rect, err := parseRect(s.region)
		if err != nil {
			return capture.Frame{}, err
		}
		return captureRegionRectFn(rect, opts)
	}
	return capture.Frame{}, fmt.Errorf("unsupported capture mode %q", s.mode)
}

func (s *snapshotCmd) describeCapture() string {
	switch s.mode {
	case "screen":
		if t := strings.TrimSpace(s.display); t != "" {
			return fmt.Sprintf("screen %s", t)
		}
		return "screen"
	case "region":
		if t := strings.TrimSpace(s.region); t != "" {
			return fmt.Sprintf("region %s", t)
		}
		return "region"
	}
	return s.mode
}

func (s *snapshotCmd) shadowOptions() render.ShadowOptions {
	opts := render.DefaultShadowOptions()
	opts.Radius = s.shadowRadius
	opts.Offset = s.shadowPoint
	opts.Opacity = s.shadowOpacity
	return opts
}

func parseRect(value string) (image.Rectangle, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rectangle %q must be x0,y0,x1,y1", value)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rectangle %q: %w", value, err)
		}
		nums[i] = n
	}
	return image.Rect(nums[0], nums[1], nums[2], nums[3]), nil
}

func parseOffset(value string) (image.Point, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("offset %q must be dx,dy", value)
	}
	dx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return image.Point{}, fmt.Errorf("offset %q: %w", value, err)
	}
	dy, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Point{}, fmt.Errorf("offset %q: %w", value, err)
	}
	return image.Pt(dx, dy), nil
}

func formatOffset(p image.Point) string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}
