package tool

import (
	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/geom"
)

// TextTool records the anchor for a text label. Unlike the drag tools its
// completion is decoupled from pointer-up: End always returns nil and leaves
// the anchor pending; the editing session produces the Text annotation later
// when the external text input is submitted. The session copies the anchor
// into its own state so it survives the tool selection changing away and
// back.
type TextTool struct {
	Style annotation.TextStyle

	active  bool
	pending bool
	anchor  geom.Point
}

func (t *TextTool) Kind() annotation.Kind { return annotation.KindText }

func (t *TextTool) Begin(p geom.Point) {
	t.active = true
	t.pending = true
	t.anchor = p
}

// Continue repositions the pending anchor while the pointer is still down.
func (t *TextTool) Continue(p geom.Point) {
	if !t.active {
		return
	}
	t.anchor = p
}

// End never produces an annotation; the text content is not known yet.
func (t *TextTool) End(p geom.Point) annotation.Annotation {
	if !t.active {
		return nil
	}
	t.anchor = p
	t.active = false
	return nil
}

func (t *TextTool) Cancel() {
	t.active = false
	t.pending = false
}

func (t *TextTool) Active() bool { return t.active }

// PendingAnchor returns the anchor left behind by the last gesture, if any.
func (t *TextTool) PendingAnchor() (geom.Point, bool) {
	if !t.pending {
		return geom.Point{}, false
	}
	return t.anchor, true
}

// ClearPending discards the pending anchor once the session has taken it.
func (t *TextTool) ClearPending() { t.pending = false }
