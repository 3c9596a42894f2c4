// Package ocr defines the text-recognition boundary. The editing core only
// depends on the Engine interface and the Region result shape; the concrete
// client lives in vision.go.
package ocr

import (
	"context"
	"image"

	"github.com/example/snaplate/internal/geom"
)

// Region is one recognized run of text. Box is normalized to 0..1 on both
// axes relative to the submitted bitmap, origin top-left, y-down. Boxes are
// stored verbatim; consumers clamp defensively when converting to pixels.
type Region struct {
	Text string
	Box  geom.Rect
}

// Engine recognizes text in a bitmap. Implementations are long-running and
// must honour ctx cancellation; callers issue at most one request at a time
// per session.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, languageHint string) ([]Region, error)
}
