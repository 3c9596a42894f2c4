// Package session implements the editing session: the single-threaded
// controller that owns the current document, the active tool, selection and
// drag state, the crop sub-session and the undo/redo stacks. All methods
// must be called from the one goroutine that owns the session; results from
// asynchronous collaborators are marshalled back onto that goroutine through
// the configured dispatch function.
package session

import (
	"errors"
	"image/color"
	"log"

	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/geom"
	"github.com/example/snaplate/internal/ocr"
	"github.com/example/snaplate/internal/tool"
	"github.com/example/snaplate/internal/translate"
)

const (
	// maxUndoDepth bounds the undo stack; the oldest snapshot is dropped
	// when a new edit would exceed it.
	maxUndoDepth = 50
	// hitPadding expands every annotation's bounds during hit-testing so
	// thin strokes and arrows are easier to grab.
	hitPadding = 10
)

var (
	// ErrBusy is returned when a request overlaps an in-flight request to
	// the same collaborator kind. Requests are rejected, never queued, so a
	// stale result can never overwrite a newer one.
	ErrBusy = errors.New("session: request already in flight")
	// ErrClosed is returned for operations on a dismissed session.
	ErrClosed = errors.New("session: closed")
	// ErrNoCollaborator is returned when the needed external service was
	// not injected.
	ErrNoCollaborator = errors.New("session: collaborator not configured")
)

type dragState struct {
	origin   geom.Point
	original annotation.Annotation
}

// Session coordinates tool dispatch, selection, drag, crop and undo/redo
// over one document.
type Session struct {
	doc document.Screenshot

	activeTool tool.Tool
	selected   int // index into doc.Annotations, -1 when none
	drag       *dragState

	cropMode bool
	cropDrag *cropDrag
	cropRect *geom.Rect

	awaitingText bool
	textAnchor   geom.Point

	undoStack []document.Screenshot
	redoStack []document.Screenshot

	stroke    annotation.Style
	textStyle annotation.TextStyle
	filled    bool

	onChange func()
	onError  func(error)
	dispatch func(func())

	collab       Collaborators
	translations []string

	ocrBusy       bool
	translateBusy bool
	exportBusy    bool
	closed        bool
}

// Option configures a Session during creation.
type Option func(*Session)

// WithCollaborators injects the external services the session may call.
func WithCollaborators(c Collaborators) Option {
	return func(s *Session) { s.collab = c }
}

// WithChangeListener registers a callback invoked after every committed
// document mutation, on the session's owning goroutine.
func WithChangeListener(fn func()) Option {
	return func(s *Session) { s.onChange = fn }
}

// WithErrorListener registers a callback for user-facing failures from
// collaborators. Errors never alter the document.
func WithErrorListener(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

// WithDispatch sets the function that schedules a closure onto the
// session's owning goroutine. The default runs the closure inline, which is
// only correct for single-goroutine callers such as tests.
func WithDispatch(fn func(func())) Option {
	return func(s *Session) { s.dispatch = fn }
}

// WithStrokeStyle sets the initial stroke style for new annotations.
func WithStrokeStyle(st annotation.Style) Option {
	return func(s *Session) { s.stroke = st }
}

// WithTextStyle sets the initial text style for new text annotations.
func WithTextStyle(st annotation.TextStyle) Option {
	return func(s *Session) { s.textStyle = st }
}

// New creates a session editing doc.
func New(doc document.Screenshot, opts ...Option) *Session {
	s := &Session{
		doc:      doc,
		selected: -1,
		stroke:   annotation.Style{Color: color.RGBA{R: 255, A: 255}, Width: 2},
		textStyle: annotation.TextStyle{
			Color:      color.RGBA{R: 255, A: 255},
			FontSize:   16,
			FontFamily: "Go Regular",
		},
		dispatch: func(fn func()) { fn() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Document returns the current document revision.
func (s *Session) Document() document.Screenshot { return s.doc }

// StrokeStyle returns the style applied to new shape annotations.
func (s *Session) StrokeStyle() annotation.Style { return s.stroke }

// TextStyle returns the style applied to new text annotations.
func (s *Session) TextStyle() annotation.TextStyle { return s.textStyle }

// SetStrokeColor adjusts the color used for subsequently drawn annotations.
func (s *Session) SetStrokeColor(c color.RGBA) {
	s.stroke.Color = c
	s.textStyle.Color = c
}

// SetStrokeWidth adjusts the width used for subsequently drawn annotations.
func (s *Session) SetStrokeWidth(w float64) {
	if w > 0 {
		s.stroke.Width = w
	}
}

// SetFontSize adjusts the font size for subsequently placed text.
func (s *Session) SetFontSize(sz float64) {
	if sz > 0 {
		s.textStyle.FontSize = sz
	}
}

// SetFilled toggles whether new rectangles are filled.
func (s *Session) SetFilled(filled bool) { s.filled = filled }

// SelectTool activates the drawing tool for kind, clearing any selection
// and leaving crop mode. A pending text anchor survives the switch.
func (s *Session) SelectTool(kind annotation.Kind) {
	if s.closed {
		return
	}
	s.cancelActiveGesture()
	s.leaveCropMode()
	s.selected = -1
	s.drag = nil
	s.activeTool = tool.ForKind(kind)
	s.applyToolStyle()
}

// SelectedTool reports the active tool kind, if any.
func (s *Session) SelectedTool() (annotation.Kind, bool) {
	if s.activeTool == nil {
		return 0, false
	}
	return s.activeTool.Kind(), true
}

// ClearTool deactivates the current tool, cancelling any gesture in
// progress.
func (s *Session) ClearTool() {
	s.cancelActiveGesture()
	s.activeTool = nil
}

// SelectedAnnotation reports the selected annotation index, if any.
func (s *Session) SelectedAnnotation() (int, bool) {
	if s.selected < 0 {
		return 0, false
	}
	return s.selected, true
}

// SelectAnnotation selects the annotation at idx, deactivating any tool.
// An out-of-range index deselects.
func (s *Session) SelectAnnotation(idx int) {
	if s.closed {
		return
	}
	s.cancelActiveGesture()
	s.activeTool = nil
	s.drag = nil
	if idx < 0 || idx >= len(s.doc.Annotations) {
		s.selected = -1
		return
	}
	s.selected = idx
}

// Deselect clears the annotation selection.
func (s *Session) Deselect() {
	s.selected = -1
	s.drag = nil
}

// HitTest scans the committed annotations top-most first and returns the
// index of the first one whose padded bounds contain p.
func (s *Session) HitTest(p geom.Point) (int, bool) {
	for i := len(s.doc.Annotations) - 1; i >= 0; i-- {
		if s.doc.Annotations[i].Bounds().Inset(-hitPadding).Contains(p) {
			return i, true
		}
	}
	return 0, false
}

// PointerDown routes a press to the crop sub-session, the active tool, or
// selection + drag, in that priority order.
func (s *Session) PointerDown(p geom.Point) {
	if s.closed {
		return
	}
	if s.cropMode {
		s.cropPointerDown(p)
		return
	}
	if s.activeTool != nil {
		if tt, ok := s.activeTool.(*tool.TextTool); ok && s.awaitingText {
			// A second press while awaiting input repositions the pending
			// anchor rather than starting a new gesture.
			tt.Begin(p)
			s.textAnchor = p
			s.notifyChange()
			return
		}
		s.applyToolStyle()
		s.activeTool.Begin(p)
		return
	}
	if idx, ok := s.HitTest(p); ok {
		s.SelectAnnotation(idx)
		s.BeginDrag(p)
		return
	}
	s.Deselect()
}

// PointerMove routes pointer motion while the button is held.
func (s *Session) PointerMove(p geom.Point) {
	if s.closed {
		return
	}
	if s.cropMode {
		s.cropPointerMove(p)
		return
	}
	if s.activeTool != nil && s.activeTool.Active() {
		s.activeTool.Continue(p)
		return
	}
	if s.drag != nil {
		s.ContinueDrag(p)
	}
}

// PointerUp completes the gesture started by PointerDown.
func (s *Session) PointerUp(p geom.Point) {
	if s.closed {
		return
	}
	if s.cropMode {
		s.cropPointerUp(p)
		return
	}
	if s.activeTool != nil && s.activeTool.Active() {
		produced := s.activeTool.End(p)
		if produced != nil {
			s.commit(s.doc.Adding(produced))
			return
		}
		if tt, ok := s.activeTool.(*tool.TextTool); ok {
			if anchor, pending := tt.PendingAnchor(); pending {
				tt.ClearPending()
				s.awaitingText = true
				s.textAnchor = anchor
				s.notifyChange()
			}
		}
		return
	}
	if s.drag != nil {
		s.EndDrag()
	}
}

// CancelGesture aborts any in-progress tool gesture, drag or pending crop
// rect without touching the document. Bound to escape in the editor.
func (s *Session) CancelGesture() {
	if s.cropMode {
		s.cropDrag = nil
		s.cropRect = nil
		s.notifyChange()
		return
	}
	if s.awaitingText {
		s.awaitingText = false
		s.notifyChange()
	}
	s.cancelActiveGesture()
	if s.drag != nil {
		// Restore the pre-drag document; the undo entry pushed at
		// drag-begin is consumed by the rollback.
		if n := len(s.undoStack); n > 0 {
			s.doc = s.undoStack[n-1]
			s.undoStack = s.undoStack[:n-1]
		}
		s.drag = nil
		s.notifyChange()
	}
}

// AwaitingText reports whether the session is waiting for text input for a
// placed anchor.
func (s *Session) AwaitingText() (geom.Point, bool) {
	return s.textAnchor, s.awaitingText
}

// CommitText completes a pending text annotation. Empty content discards
// the anchor without creating anything.
func (s *Session) CommitText(content string) {
	if s.closed || !s.awaitingText {
		return
	}
	s.awaitingText = false
	if content == "" {
		s.notifyChange()
		return
	}
	s.commit(s.doc.Adding(annotation.Text{
		Position: s.textAnchor,
		Style:    s.textStyle,
		Content:  content,
	}))
}

// BeginDrag starts moving the selected annotation. The pre-drag document is
// pushed onto the undo stack here, once, so the whole gesture is one undo
// entry no matter how many motion updates follow.
func (s *Session) BeginDrag(p geom.Point) {
	if s.closed || s.selected < 0 || s.selected >= len(s.doc.Annotations) {
		return
	}
	s.pushUndo()
	s.drag = &dragState{origin: p, original: s.doc.Annotations[s.selected]}
}

// ContinueDrag applies the accumulated delta to a copy of the original
// annotation and writes it into the live document without touching the undo
// stack.
func (s *Session) ContinueDrag(p geom.Point) {
	if s.drag == nil || s.selected < 0 {
		return
	}
	delta := p.Sub(s.drag.origin)
	s.doc = s.doc.ReplacingAnnotationAt(s.selected, s.drag.original.Translated(delta))
	s.notifyChange()
}

// EndDrag clears the drag bookkeeping. The document already holds the final
// position from the last ContinueDrag.
func (s *Session) EndDrag() { s.drag = nil }

// Dragging reports whether an annotation drag is in progress.
func (s *Session) Dragging() bool { return s.drag != nil }

// UpdateColor recolors the selected annotation.
func (s *Session) UpdateColor(c color.RGBA) {
	s.mutateSelected(func(a annotation.Annotation) (annotation.Annotation, bool) {
		switch v := a.(type) {
		case annotation.Rectangle:
			v.Style.Color = c
			return v, true
		case annotation.Freehand:
			v.Style.Color = c
			return v, true
		case annotation.Arrow:
			v.Style.Color = c
			return v, true
		case annotation.Text:
			v.Style.Color = c
			return v, true
		}
		return a, false
	})
}

// UpdateStrokeWidth changes the stroke width of the selected annotation.
// A no-op for text, which has no stroke.
func (s *Session) UpdateStrokeWidth(w float64) {
	if w <= 0 {
		return
	}
	s.mutateSelected(func(a annotation.Annotation) (annotation.Annotation, bool) {
		switch v := a.(type) {
		case annotation.Rectangle:
			v.Style.Width = w
			return v, true
		case annotation.Freehand:
			v.Style.Width = w
			return v, true
		case annotation.Arrow:
			v.Style.Width = w
			return v, true
		}
		return a, false
	})
}

// UpdateFontSize changes the font size of the selected text annotation.
func (s *Session) UpdateFontSize(sz float64) {
	if sz <= 0 {
		return
	}
	s.mutateSelected(func(a annotation.Annotation) (annotation.Annotation, bool) {
		if v, ok := a.(annotation.Text); ok {
			v.Style.FontSize = sz
			return v, true
		}
		return a, false
	})
}

// UpdateFilled toggles the fill flag of the selected rectangle.
func (s *Session) UpdateFilled(filled bool) {
	s.mutateSelected(func(a annotation.Annotation) (annotation.Annotation, bool) {
		if v, ok := a.(annotation.Rectangle); ok {
			v.Filled = filled
			return v, true
		}
		return a, false
	})
}

// DeleteSelected removes the selected annotation and clears the selection.
func (s *Session) DeleteSelected() {
	if s.closed || s.selected < 0 || s.selected >= len(s.doc.Annotations) {
		return
	}
	idx := s.selected
	s.selected = -1
	s.drag = nil
	s.commit(s.doc.RemovingAnnotationAt(idx))
}

// Undo restores the previous document revision; a no-op when the stack is
// empty.
func (s *Session) Undo() {
	if s.closed || len(s.undoStack) == 0 {
		return
	}
	n := len(s.undoStack)
	prev := s.undoStack[n-1]
	s.undoStack = s.undoStack[:n-1]
	s.redoStack = append(s.redoStack, s.doc)
	s.doc = prev
	s.clampSelection()
	s.notifyChange()
}

// Redo reverses the most recent Undo; a no-op when the stack is empty.
func (s *Session) Redo() {
	if s.closed || len(s.redoStack) == 0 {
		return
	}
	n := len(s.redoStack)
	next := s.redoStack[n-1]
	s.redoStack = s.redoStack[:n-1]
	s.undoStack = append(s.undoStack, s.doc)
	s.doc = next
	s.clampSelection()
	s.notifyChange()
}

// CanUndo reports whether Undo would change the document.
func (s *Session) CanUndo() bool { return len(s.undoStack) > 0 }

// CanRedo reports whether Redo would change the document.
func (s *Session) CanRedo() bool { return len(s.redoStack) > 0 }

// Translations returns the last translation batch, parallel to the
// document's text regions. Nil when nothing has been translated.
func (s *Session) Translations() []string { return s.translations }

// Close invalidates the session: subsequent operations are no-ops and any
// late-arriving asynchronous result is silently dropped.
func (s *Session) Close() {
	s.closed = true
	s.cancelActiveGesture()
	s.drag = nil
	s.cropDrag = nil
	s.cropRect = nil
}

// Closed reports whether the session has been dismissed.
func (s *Session) Closed() bool { return s.closed }

// commit records the pre-edit document on the undo stack, adopts next and
// clears the redo stack. Every committed mutation funnels through here so
// the two stacks can never both grow in one transition.
func (s *Session) commit(next document.Screenshot) {
	s.pushUndo()
	s.doc = next
	s.notifyChange()
}

func (s *Session) pushUndo() {
	if len(s.undoStack) >= maxUndoDepth {
		copy(s.undoStack, s.undoStack[1:])
		s.undoStack = s.undoStack[:maxUndoDepth-1]
	}
	s.undoStack = append(s.undoStack, s.doc)
	s.redoStack = nil
}

func (s *Session) mutateSelected(fn func(annotation.Annotation) (annotation.Annotation, bool)) {
	if s.closed || s.selected < 0 || s.selected >= len(s.doc.Annotations) {
		return
	}
	updated, ok := fn(s.doc.Annotations[s.selected])
	if !ok {
		return
	}
	s.commit(s.doc.ReplacingAnnotationAt(s.selected, updated))
}

func (s *Session) cancelActiveGesture() {
	if s.activeTool != nil && s.activeTool.Active() {
		s.activeTool.Cancel()
	}
}

func (s *Session) applyToolStyle() {
	switch t := s.activeTool.(type) {
	case *tool.RectangleTool:
		t.Style = s.stroke
		t.Filled = s.filled
	case *tool.FreehandTool:
		t.Style = s.stroke
	case *tool.ArrowTool:
		t.Style = s.stroke
	case *tool.TextTool:
		t.Style = s.textStyle
	}
}

// clampSelection drops a selection index that no longer exists after an
// undo/redo replaced the annotation list.
func (s *Session) clampSelection() {
	if s.selected >= len(s.doc.Annotations) {
		s.selected = -1
		s.drag = nil
	}
}

func (s *Session) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Session) reportError(err error) {
	if err == nil {
		return
	}
	log.Printf("session: %v", err)
	if s.onError != nil {
		s.onError(err)
	}
}

// ActiveTool exposes the live tool for preview rendering in the editor.
func (s *Session) ActiveTool() tool.Tool { return s.activeTool }

// Collaborators bundles the injected external services.
type Collaborators struct {
	Clipboard  ClipboardSink
	Exporter   Exporter
	OCR        ocr.Engine
	Translator translate.Translator
}
