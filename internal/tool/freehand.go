package tool

import (
	"math"

	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/geom"
)

// minSampleDistance drops pointer samples closer than one pixel to the
// previous point so a held-still pointer does not grow the stroke unbounded.
const minSampleDistance = 1.0

// FreehandTool accumulates pointer samples into a polyline. A gesture that
// never moved (a single tap) produces no annotation.
type FreehandTool struct {
	Style annotation.Style

	active bool
	points []geom.Point
}

func (t *FreehandTool) Kind() annotation.Kind { return annotation.KindFreehand }

func (t *FreehandTool) Begin(p geom.Point) {
	t.active = true
	t.points = []geom.Point{p}
}

func (t *FreehandTool) Continue(p geom.Point) {
	if !t.active {
		return
	}
	t.append(p)
}

// End returns the stroke, or nil if fewer than two distinct points were
// sampled.
func (t *FreehandTool) End(p geom.Point) annotation.Annotation {
	if !t.active {
		return nil
	}
	t.append(p)
	pts := t.points
	t.active = false
	t.points = nil
	if len(pts) < 2 {
		return nil
	}
	return annotation.Freehand{Points: pts, Style: t.Style}
}

func (t *FreehandTool) Cancel() {
	t.active = false
	t.points = nil
}

func (t *FreehandTool) Active() bool { return t.active }

// Points returns the in-progress samples for live preview drawing.
func (t *FreehandTool) Points() []geom.Point {
	if !t.active {
		return nil
	}
	return t.points
}

func (t *FreehandTool) append(p geom.Point) {
	last := t.points[len(t.points)-1]
	if math.Hypot(p.X-last.X, p.Y-last.Y) < minSampleDistance {
		return
	}
	t.points = append(t.points, p)
}
