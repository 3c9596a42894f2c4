// Package tool implements the gesture state machines that turn pointer
// input into candidate annotations. Every tool follows the same four-call
// protocol: Begin starts a gesture, Continue updates it, End finishes it and
// returns the produced annotation (or nil for a degenerate gesture), Cancel
// discards it. Calls arriving in an invalid order are silently ignored;
// pointer event delivery across a GUI boundary cannot be fully trusted, so
// the tools never panic on out-of-order input.
package tool

import (
	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/geom"
)

// Tool is the begin/continue/end/cancel gesture lifecycle shared by all
// annotation kinds. A tool is Idle until Begin and returns to Idle on every
// End or Cancel, whatever the outcome.
type Tool interface {
	Kind() annotation.Kind
	Begin(p geom.Point)
	Continue(p geom.Point)
	// End finishes the gesture and returns the committed-candidate
	// annotation, or nil when the gesture produced nothing.
	End(p geom.Point) annotation.Annotation
	Cancel()
	// Active reports whether a gesture is in progress.
	Active() bool
}

// ForKind returns a fresh tool for the given annotation kind.
func ForKind(k annotation.Kind) Tool {
	switch k {
	case annotation.KindRectangle:
		return &RectangleTool{}
	case annotation.KindFreehand:
		return &FreehandTool{}
	case annotation.KindArrow:
		return &ArrowTool{}
	case annotation.KindText:
		return &TextTool{}
	}
	return nil
}
