// Package document defines the Screenshot value: a captured bitmap plus its
// metadata and the ordered list of committed annotations. Every edit returns
// a new Screenshot; the underlying bitmap is shared between revisions until
// an operation (crop) actually produces new pixels, which keeps undo
// snapshots cheap.
package document

import (
	"errors"
	"image"
	"image/draw"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/geom"
	"github.com/example/snaplate/internal/ocr"
)

// MinCropSize is the smallest width/height a crop may produce, in pixels.
// Anything smaller is treated as an accidental click, not a crop request.
const MinCropSize = 10

// ErrCropTooSmall is returned when the clamped crop region falls below
// MinCropSize in either dimension.
var ErrCropTooSmall = errors.New("crop region smaller than minimum size")

// Display describes the screen a frame was captured from.
type Display struct {
	ID          int
	Name        string
	Frame       geom.Rect
	ScaleFactor float64
	Primary     bool
}

// Screenshot is the editing document. It is a value; the mutating-looking
// methods return a replacement and leave the receiver untouched. The
// annotation list order is z-order: first entry drawn first, later entries
// render on top.
type Screenshot struct {
	ID          string
	Bitmap      *image.RGBA
	CapturedAt  time.Time
	Display     Display
	Annotations []annotation.Annotation
	TextRegions []ocr.Region
	// Path is set once the document has been exported to a file.
	Path string
}

// New wraps a captured bitmap into a fresh document.
func New(bitmap *image.RGBA, capturedAt time.Time, display Display) Screenshot {
	return Screenshot{
		ID:         uuid.NewString(),
		Bitmap:     bitmap,
		CapturedAt: capturedAt,
		Display:    display,
	}
}

// Width returns the bitmap width in pixels.
func (s Screenshot) Width() int {
	if s.Bitmap == nil {
		return 0
	}
	return s.Bitmap.Bounds().Dx()
}

// Height returns the bitmap height in pixels.
func (s Screenshot) Height() int {
	if s.Bitmap == nil {
		return 0
	}
	return s.Bitmap.Bounds().Dy()
}

// Adding appends a to the committed list, on top of the existing z-order.
func (s Screenshot) Adding(a annotation.Annotation) Screenshot {
	anns := make([]annotation.Annotation, len(s.Annotations), len(s.Annotations)+1)
	copy(anns, s.Annotations)
	s.Annotations = append(anns, a)
	return s
}

// RemovingAnnotationAt removes the entry at idx. An out-of-range index is a
// logged no-op; only session-internal indices reach this path.
func (s Screenshot) RemovingAnnotationAt(idx int) Screenshot {
	if idx < 0 || idx >= len(s.Annotations) {
		log.Printf("document: remove annotation index %d out of range (have %d)", idx, len(s.Annotations))
		return s
	}
	anns := make([]annotation.Annotation, 0, len(s.Annotations)-1)
	anns = append(anns, s.Annotations[:idx]...)
	anns = append(anns, s.Annotations[idx+1:]...)
	s.Annotations = anns
	return s
}

// ReplacingAnnotationAt swaps the entry at idx for a, preserving z-order.
// Used for style edits and live drag updates. Out-of-range is a logged
// no-op.
func (s Screenshot) ReplacingAnnotationAt(idx int, a annotation.Annotation) Screenshot {
	if idx < 0 || idx >= len(s.Annotations) {
		log.Printf("document: replace annotation index %d out of range (have %d)", idx, len(s.Annotations))
		return s
	}
	anns := make([]annotation.Annotation, len(s.Annotations))
	copy(anns, s.Annotations)
	anns[idx] = a
	s.Annotations = anns
	return s
}

// Cropping clamps r to the bitmap and produces a new document containing
// only that region. The annotation list of the result is cleared: committed
// annotations are defined in the original bitmap's coordinate space and are
// not transposed across a crop; undoing the crop restores them. Fails with
// ErrCropTooSmall when the clamped region is under MinCropSize in either
// dimension.
func (s Screenshot) Cropping(r geom.Rect) (Screenshot, error) {
	clamped := r.Clamp(float64(s.Width()), float64(s.Height()))
	if clamped.Width < MinCropSize || clamped.Height < MinCropSize {
		return Screenshot{}, ErrCropTooSmall
	}
	rect := image.Rect(int(clamped.X), int(clamped.Y), int(clamped.X+clamped.Width), int(clamped.Y+clamped.Height))
	s.Bitmap = cropBitmap(s.Bitmap, rect)
	s.Annotations = nil
	s.TextRegions = nil
	return s, nil
}

// WithTextRegions attaches OCR results to the document. The regions are
// stored verbatim; their normalized boxes are clamped only when projected
// into pixel space.
func (s Screenshot) WithTextRegions(regions []ocr.Region) Screenshot {
	s.TextRegions = regions
	return s
}

// WithPath records the file the document was exported to.
func (s Screenshot) WithPath(path string) Screenshot {
	s.Path = path
	return s
}

// RegionBounds projects a stored OCR region's normalized box into the
// document's pixel space.
func (s Screenshot) RegionBounds(r ocr.Region) geom.Rect {
	return r.Box.Denormalize(float64(s.Width()), float64(s.Height()))
}

// Equal reports whether two documents are the same revision: identical
// bitmap (by identity, not pixels), identical annotation lists and
// metadata. Undo/redo snapshots share bitmaps, so pointer identity is the
// correct comparison.
func Equal(a, b Screenshot) bool {
	if a.ID != b.ID || a.Bitmap != b.Bitmap || !a.CapturedAt.Equal(b.CapturedAt) {
		return false
	}
	if a.Display != b.Display || a.Path != b.Path {
		return false
	}
	if len(a.Annotations) != len(b.Annotations) || len(a.TextRegions) != len(b.TextRegions) {
		return false
	}
	for i := range a.Annotations {
		if !annotationEqual(a.Annotations[i], b.Annotations[i]) {
			return false
		}
	}
	for i := range a.TextRegions {
		if a.TextRegions[i] != b.TextRegions[i] {
			return false
		}
	}
	return true
}

func annotationEqual(a, b annotation.Annotation) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case annotation.Rectangle:
		return av == b.(annotation.Rectangle)
	case annotation.Arrow:
		return av == b.(annotation.Arrow)
	case annotation.Text:
		return av == b.(annotation.Text)
	case annotation.Freehand:
		bv := b.(annotation.Freehand)
		if av.Style != bv.Style || len(av.Points) != len(bv.Points) {
			return false
		}
		for i := range av.Points {
			if av.Points[i] != bv.Points[i] {
				return false
			}
		}
		return true
	}
	return false
}

// cropBitmap returns a copy of rect from img rebased to a zero origin.
func cropBitmap(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	src := rect.Intersect(img.Bounds())
	if !src.Empty() {
		draw.Draw(out, src.Sub(rect.Min), img, src.Min, draw.Src)
	}
	return out
}
