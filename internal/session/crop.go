package session

import (
	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/geom"
)

// cropDrag tracks the two-point drag that defines a crop region.
type cropDrag struct {
	origin geom.Point
}

// EnterCropMode switches the session into crop selection, clearing any
// active tool and selection; the three states are mutually exclusive.
func (s *Session) EnterCropMode() {
	if s.closed {
		return
	}
	s.cancelActiveGesture()
	s.activeTool = nil
	s.selected = -1
	s.drag = nil
	s.cropMode = true
	s.cropRect = nil
	s.notifyChange()
}

// CropMode reports whether crop selection is active.
func (s *Session) CropMode() bool { return s.cropMode }

// PendingCrop returns the selected crop rect, if one is pending.
func (s *Session) PendingCrop() (geom.Rect, bool) {
	if s.cropRect == nil {
		return geom.Rect{}, false
	}
	return *s.cropRect, true
}

func (s *Session) cropPointerDown(p geom.Point) {
	s.cropDrag = &cropDrag{origin: p}
	r := geom.NormalizedRect(p, p)
	s.cropRect = &r
	s.notifyChange()
}

func (s *Session) cropPointerMove(p geom.Point) {
	if s.cropDrag == nil {
		return
	}
	r := geom.NormalizedRect(s.cropDrag.origin, p)
	s.cropRect = &r
	s.notifyChange()
}

// cropPointerUp finalizes the drag. A region under the document's minimum
// crop size is treated as an accidental click: the pending rect is
// discarded and crop mode stays active.
func (s *Session) cropPointerUp(p geom.Point) {
	if s.cropDrag == nil {
		return
	}
	r := geom.NormalizedRect(s.cropDrag.origin, p)
	s.cropDrag = nil
	if r.Width < document.MinCropSize || r.Height < document.MinCropSize {
		s.cropRect = nil
		s.notifyChange()
		return
	}
	s.cropRect = &r
	s.notifyChange()
}

// ApplyCrop crops the document to the pending rect. On success the pre-crop
// document goes onto the undo stack, the cropped document becomes current
// and crop mode ends. On failure the error is surfaced, the pending rect is
// cleared and crop mode stays active so the user can try again.
func (s *Session) ApplyCrop() error {
	if s.closed || !s.cropMode || s.cropRect == nil {
		return nil
	}
	cropped, err := s.doc.Cropping(*s.cropRect)
	s.cropRect = nil
	if err != nil {
		s.reportError(err)
		s.notifyChange()
		return err
	}
	s.cropMode = false
	s.translations = nil
	s.commit(cropped)
	return nil
}

// CancelCrop leaves crop mode without modifying the document.
func (s *Session) CancelCrop() {
	if !s.cropMode {
		return
	}
	s.leaveCropMode()
	s.notifyChange()
}

func (s *Session) leaveCropMode() {
	s.cropMode = false
	s.cropDrag = nil
	s.cropRect = nil
}
