package tool

import (
	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/geom"
)

// RectangleTool captures a two-corner drag and produces a Rectangle
// annotation. Style and Filled are supplied by the editing session before
// the gesture completes.
type RectangleTool struct {
	Style  annotation.Style
	Filled bool

	active bool
	start  geom.Point
	cur    geom.Point
}

func (t *RectangleTool) Kind() annotation.Kind { return annotation.KindRectangle }

func (t *RectangleTool) Begin(p geom.Point) {
	t.active = true
	t.start = p
	t.cur = p
}

func (t *RectangleTool) Continue(p geom.Point) {
	if !t.active {
		return
	}
	t.cur = p
}

// End returns the rectangle even when it has zero size; discarding trivially
// small rects is a caller policy, not the tool's.
func (t *RectangleTool) End(p geom.Point) annotation.Annotation {
	if !t.active {
		return nil
	}
	t.cur = p
	rect := geom.NormalizedRect(t.start, t.cur)
	t.active = false
	return annotation.Rectangle{Rect: rect, Style: t.Style, Filled: t.Filled}
}

func (t *RectangleTool) Cancel() { t.active = false }

func (t *RectangleTool) Active() bool { return t.active }

// Preview returns the rect the gesture currently spans, for live overlay
// drawing while the drag is in progress.
func (t *RectangleTool) Preview() (geom.Rect, bool) {
	if !t.active {
		return geom.Rect{}, false
	}
	return geom.NormalizedRect(t.start, t.cur), true
}
