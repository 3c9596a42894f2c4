package session

import (
	"context"
	"fmt"
	"image"

	"github.com/example/snaplate/internal/export"
)

// ClipboardSink receives the flattened bitmap. Failures are surfaced to the
// user; the session never retries on its own.
type ClipboardSink interface {
	WriteImage(img image.Image) error
}

// Exporter writes the flattened bitmap to a file.
type Exporter interface {
	Export(img image.Image, path string, opts export.Options) error
}

// CopyToClipboard flattens the current document and hands it to the
// clipboard sink. Synchronous: a clipboard write completes within one UI
// turn.
func (s *Session) CopyToClipboard() error {
	if s.closed {
		return ErrClosed
	}
	if s.collab.Clipboard == nil {
		return ErrNoCollaborator
	}
	if err := s.collab.Clipboard.WriteImage(s.doc.Flatten()); err != nil {
		err = fmt.Errorf("copy to clipboard: %w", err)
		s.reportError(err)
		return err
	}
	return nil
}

// RecognizeText submits the raw bitmap (without annotations) to the OCR
// engine. At most one OCR request is in flight per session; an overlapping
// request is rejected with ErrBusy, not queued. The result is applied as a
// single document update on the owning goroutine, and dropped if the
// session was closed in the meantime.
func (s *Session) RecognizeText(ctx context.Context, languageHint string) error {
	if s.closed {
		return ErrClosed
	}
	if s.collab.OCR == nil {
		return ErrNoCollaborator
	}
	if s.ocrBusy {
		return ErrBusy
	}
	s.ocrBusy = true
	bitmap := s.doc.Bitmap
	go func() {
		regions, err := s.collab.OCR.Recognize(ctx, bitmap, languageHint)
		s.dispatch(func() {
			s.ocrBusy = false
			if s.closed {
				return
			}
			if err != nil {
				s.reportError(fmt.Errorf("recognize text: %w", err))
				return
			}
			s.doc = s.doc.WithTextRegions(regions)
			s.translations = nil
			s.notifyChange()
		})
	}()
	return nil
}

// OCRBusy reports whether an OCR request is in flight.
func (s *Session) OCRBusy() bool { return s.ocrBusy }

// TranslateRegions sends the recognized text to the translation engine.
// Per-item failures come back as empty strings; only transport failures are
// surfaced. Overlapping requests are rejected with ErrBusy.
func (s *Session) TranslateRegions(ctx context.Context, targetLanguage string) error {
	if s.closed {
		return ErrClosed
	}
	if s.collab.Translator == nil {
		return ErrNoCollaborator
	}
	if s.translateBusy {
		return ErrBusy
	}
	if len(s.doc.TextRegions) == 0 {
		return nil
	}
	s.translateBusy = true
	texts := make([]string, len(s.doc.TextRegions))
	for i, r := range s.doc.TextRegions {
		texts[i] = r.Text
	}
	docID := s.doc.ID
	go func() {
		translated, err := s.collab.Translator.Translate(ctx, texts, targetLanguage)
		s.dispatch(func() {
			s.translateBusy = false
			if s.closed || s.doc.ID != docID {
				// The document was replaced (new capture) while the request
				// was in flight; the batch no longer lines up.
				return
			}
			if err != nil {
				s.reportError(fmt.Errorf("translate: %w", err))
				return
			}
			s.translations = translated
			s.notifyChange()
		})
	}()
	return nil
}

// TranslateBusy reports whether a translation request is in flight.
func (s *Session) TranslateBusy() bool { return s.translateBusy }

// ExportTo flattens the document and writes it to path. One export at a
// time; on success the document records its persisted path. A failed export
// leaves the document untouched.
func (s *Session) ExportTo(path string, opts export.Options) error {
	if s.closed {
		return ErrClosed
	}
	if s.collab.Exporter == nil {
		return ErrNoCollaborator
	}
	if s.exportBusy {
		return ErrBusy
	}
	s.exportBusy = true
	flat := s.doc.Flatten()
	go func() {
		err := s.collab.Exporter.Export(flat, path, opts)
		s.dispatch(func() {
			s.exportBusy = false
			if s.closed {
				return
			}
			if err != nil {
				s.reportError(fmt.Errorf("export %s: %w", path, err))
				return
			}
			s.doc = s.doc.WithPath(path)
			s.notifyChange()
		})
	}()
	return nil
}

// ExportBusy reports whether an export is in flight.
func (s *Session) ExportBusy() bool { return s.exportBusy }
