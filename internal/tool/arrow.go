package tool

import (
	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/geom"
)

// ArrowTool captures a start-to-end drag and produces an Arrow annotation.
type ArrowTool struct {
	Style annotation.Style

	active bool
	start  geom.Point
	end    geom.Point
}

func (t *ArrowTool) Kind() annotation.Kind { return annotation.KindArrow }

func (t *ArrowTool) Begin(p geom.Point) {
	t.active = true
	t.start = p
	t.end = p
}

func (t *ArrowTool) Continue(p geom.Point) {
	if !t.active {
		return
	}
	t.end = p
}

// End returns the arrow unconditionally. A zero-length arrow renders a
// degenerate head; rejecting it would need a length threshold the tool
// should not own.
func (t *ArrowTool) End(p geom.Point) annotation.Annotation {
	if !t.active {
		return nil
	}
	t.end = p
	t.active = false
	return annotation.Arrow{Start: t.start, End: t.end, Style: t.Style}
}

func (t *ArrowTool) Cancel() { t.active = false }

func (t *ArrowTool) Active() bool { return t.active }

// Preview returns the current start and end points for overlay drawing.
func (t *ArrowTool) Preview() (start, end geom.Point, ok bool) {
	if !t.active {
		return geom.Point{}, geom.Point{}, false
	}
	return t.start, t.end, true
}
