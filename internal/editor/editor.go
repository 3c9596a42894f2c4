// Package editor hosts the windowed annotation UI. A single shiny window
// drives a session.Session: pointer and key events become session calls on
// the event loop goroutine, async results are marshaled back in as window
// events, and every committed edit schedules a repaint. Frame drawing runs
// on a separate goroutine with a cancelable context so a slow frame never
// blocks input.
package editor

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/config"
	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/export"
	"github.com/example/snaplate/internal/geom"
	"github.com/example/snaplate/internal/notify"
	"github.com/example/snaplate/internal/session"
	"github.com/example/snaplate/internal/tool"
)

// Editor owns one document-editing window.
type Editor struct {
	doc      document.Screenshot
	cfg      *config.Config
	collab   session.Collaborators
	notifier *notify.Notifier
	output   string

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithConfig sets the configuration used for styles, export and engines.
func WithConfig(cfg *config.Config) Option { return func(e *Editor) { e.cfg = cfg } }

// WithCollaborators injects the services reachable from the window:
// clipboard, exporter, OCR and translation.
func WithCollaborators(c session.Collaborators) Option {
	return func(e *Editor) { e.collab = c }
}

// WithNotifier sets the desktop notifier. A nil notifier is silent.
func WithNotifier(n *notify.Notifier) Option { return func(e *Editor) { e.notifier = n } }

// WithOutput sets the file path used when saving. Empty means a timestamped
// file in the configured save directory.
func WithOutput(path string) Option { return func(e *Editor) { e.output = path } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(e *Editor) { e.onClose = fn } }

// New creates an editor for doc.
func New(doc document.Screenshot, opts ...Option) *Editor {
	e := &Editor{doc: doc}
	for _, o := range opts {
		o(e)
	}
	if e.cfg == nil {
		e.cfg = config.New()
	}
	return e
}

// Run executes the UI loop using shiny's driver. It blocks until the
// window closes.
func (e *Editor) Run() { driver.Main(e.main) }

func (e *Editor) notifyClose() {
	e.closeOnce.Do(func() {
		if e.onClose != nil {
			e.onClose()
		}
	})
}

// sessionFunc carries an async session result back onto the event loop
// goroutine through the window's event queue.
type sessionFunc struct{ fn func() }

type keyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

func (e *Editor) main(scr screen.Screen) {
	// Widen the toolbar so every button label fits without clipping.
	d := &font.Drawer{Face: basicfont.Face7x13}
	for _, spec := range toolSpecs {
		if w := d.MeasureString(spec.label).Ceil() + 8; w > toolbarWidth {
			toolbarWidth = w
		}
	}

	width := e.doc.Width() + toolbarWidth
	height := e.doc.Height() + bottomHeight
	w, err := scr.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "Snaplate"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer e.notifyClose()

	var message string
	var messageUntil time.Time
	var textInput string
	var mouseDown bool
	var lastSaved string

	toast := func(msg string) {
		message = msg
		log.Print(msg)
		messageUntil = time.Now().Add(2 * time.Second)
	}

	sess := session.New(e.doc,
		session.WithCollaborators(e.collab),
		session.WithStrokeStyle(annotation.Style{
			Color: e.cfg.Editor.StrokeColor,
			Width: e.cfg.Editor.StrokeWidth,
		}),
		session.WithTextStyle(annotation.TextStyle{
			Color:    e.cfg.Editor.StrokeColor,
			FontSize: e.cfg.Editor.FontSize,
		}),
		session.WithDispatch(func(fn func()) { w.Send(sessionFunc{fn: fn}) }),
		session.WithChangeListener(func() { w.Send(paint.Event{}) }),
		session.WithErrorListener(func(err error) {
			toast(err.Error())
			w.Send(paint.Event{})
		}),
	)
	sess.SetFilled(e.cfg.Editor.Filled)
	defer sess.Close()

	zoom := fitZoom(e.doc.Bitmap, width, height)
	hoverTool := -1

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, scr, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()
	cancelPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	actions := map[string]func(){}
	keyboardAction := map[keyShortcut]string{}
	register := func(name string, keys []keyShortcut, fn func()) {
		actions[name] = fn
		for _, sc := range keys {
			keyboardAction[sc] = name
		}
	}
	handleShortcut := func(action string) {
		if fn, ok := actions[action]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	register("undo", []keyShortcut{{Rune: 'z', Modifiers: key.ModControl}}, func() {
		sess.Undo()
	})
	register("redo", []keyShortcut{
		{Rune: 'y', Modifiers: key.ModControl},
		{Rune: 'z', Modifiers: key.ModControl | key.ModShift},
	}, func() {
		sess.Redo()
	})
	register("copy", []keyShortcut{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		if err := sess.CopyToClipboard(); err != nil {
			toast(fmt.Sprintf("copy: %v", err))
			return
		}
		toast("image copied to clipboard")
		e.notifier.Copy("annotated screenshot")
	})
	register("save", []keyShortcut{{Rune: 's', Modifiers: key.ModControl}}, func() {
		path := e.output
		if path == "" {
			path = e.defaultSavePath()
		}
		opts := e.exportOptions()
		if err := sess.ExportTo(path, opts); err != nil {
			toast(fmt.Sprintf("save: %v", err))
			return
		}
		toast(fmt.Sprintf("saving %s", path))
	})
	register("ocr", []keyShortcut{{Rune: 'o', Modifiers: key.ModControl}}, func() {
		if err := sess.RecognizeText(context.Background(), e.cfg.Engines.LanguageHint); err != nil {
			toast(fmt.Sprintf("ocr: %v", err))
			return
		}
		toast("recognizing text")
	})
	register("translate", []keyShortcut{{Rune: 't', Modifiers: key.ModControl}}, func() {
		if err := sess.TranslateRegions(context.Background(), e.cfg.Engines.TargetLanguage); err != nil {
			toast(fmt.Sprintf("translate: %v", err))
			return
		}
		toast(fmt.Sprintf("translating to %s", e.cfg.Engines.TargetLanguage))
	})

	activateTool := func(idx int) {
		spec := toolSpecs[idx]
		switch {
		case spec.crop:
			sess.EnterCropMode()
		case spec.kind < 0:
			sess.ClearTool()
		default:
			sess.SelectTool(spec.kind)
		}
	}

	for {
		ev := w.NextEvent()
		switch ev := ev.(type) {
		case sessionFunc:
			ev.fn()

		case lifecycle.Event:
			if ev.To == lifecycle.StageDead {
				cancelPaint()
				return
			}

		case size.Event:
			width = ev.WidthPx
			height = ev.HeightPx
			w.Send(paint.Event{})

		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()

			if p := sess.Document().Path; p != "" && p != lastSaved {
				lastSaved = p
				toast(fmt.Sprintf("saved %s", p))
				e.notifier.Save(p)
			}

			st := e.snapshot(sess, width, height, zoom, hoverTool, textInput, message, messageUntil)
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}

		case mouse.Event:
			if message != "" && time.Now().Before(messageUntil) && ev.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
				continue
			}
			if int(ev.Y) >= height-bottomHeight {
				continue
			}
			if int(ev.X) < toolbarWidth {
				idx := int(ev.Y) / buttonHeight
				if idx >= 0 && idx < len(toolSpecs) {
					if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
						activateTool(idx)
						w.Send(paint.Event{})
					}
					if hoverTool != idx {
						hoverTool = idx
						w.Send(paint.Event{})
					}
				} else if hoverTool != -1 {
					hoverTool = -1
					w.Send(paint.Event{})
				}
				continue
			}
			if hoverTool != -1 {
				hoverTool = -1
				w.Send(paint.Event{})
			}

			base := imageRect(sess.Document().Bitmap, width, height, zoom)
			p := geom.Pt(
				(float64(ev.X)-float64(base.Min.X))/zoom,
				(float64(ev.Y)-float64(base.Min.Y))/zoom,
			)
			switch {
			case ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress:
				mouseDown = true
				sess.PointerDown(p)
				w.Send(paint.Event{})
			case ev.Direction == mouse.DirNone && mouseDown:
				sess.PointerMove(p)
				w.Send(paint.Event{})
			case ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirRelease:
				mouseDown = false
				sess.PointerUp(p)
				if _, ok := sess.AwaitingText(); ok {
					textInput = ""
				}
				w.Send(paint.Event{})
			}

		case key.Event:
			if ev.Direction != key.DirPress {
				continue
			}
			if _, awaiting := sess.AwaitingText(); awaiting {
				switch ev.Code {
				case key.CodeReturnEnter:
					sess.CommitText(textInput)
					textInput = ""
					w.Send(paint.Event{})
					continue
				case key.CodeEscape:
					sess.CommitText("")
					textInput = ""
					w.Send(paint.Event{})
					continue
				case key.CodeDeleteBackspace:
					if len(textInput) > 0 {
						textInput = textInput[:len(textInput)-1]
						w.Send(paint.Event{})
					}
					continue
				}
				if ev.Rune > 0 && ev.Modifiers&key.ModControl == 0 {
					textInput += string(ev.Rune)
					w.Send(paint.Event{})
				}
				continue
			}

			switch ev.Code {
			case key.CodeReturnEnter:
				if sess.CropMode() {
					if err := sess.ApplyCrop(); err == nil {
						zoom = fitZoom(sess.Document().Bitmap, width, height)
					}
					w.Send(paint.Event{})
				}
				continue
			case key.CodeEscape:
				e.handleEscape(sess)
				w.Send(paint.Event{})
				continue
			case key.CodeDeleteForward, key.CodeDeleteBackspace:
				sess.DeleteSelected()
				w.Send(paint.Event{})
				continue
			}

			ks := keyShortcut{Rune: unicode.ToLower(ev.Rune), Code: ev.Code, Modifiers: ev.Modifiers}
			if action, ok := keyboardAction[ks]; ok {
				handleShortcut(action)
				continue
			}

			switch ev.Rune {
			case 'm', 'M':
				sess.ClearTool()
				w.Send(paint.Event{})
			case 'x', 'X':
				sess.SelectTool(annotation.KindRectangle)
				w.Send(paint.Event{})
			case 'd', 'D':
				sess.SelectTool(annotation.KindFreehand)
				w.Send(paint.Event{})
			case 'a', 'A':
				sess.SelectTool(annotation.KindArrow)
				w.Send(paint.Event{})
			case 't', 'T':
				sess.SelectTool(annotation.KindText)
				w.Send(paint.Event{})
			case 'c', 'C':
				sess.EnterCropMode()
				w.Send(paint.Event{})
			case '+', '=':
				zoom *= 1.25
				w.Send(paint.Event{})
			case '-', '_':
				zoom /= 1.25
				if zoom < 0.05 {
					zoom = 0.05
				}
				w.Send(paint.Event{})
			case '0':
				zoom = fitZoom(sess.Document().Bitmap, width, height)
				w.Send(paint.Event{})
			case 'q', 'Q':
				cancelPaint()
				return
			}
		}
	}
}

// handleEscape unwinds the most specific pending state first: an in-flight
// gesture or pending crop rect, then crop mode itself, then the selection.
func (e *Editor) handleEscape(sess *session.Session) {
	if sess.CropMode() {
		if _, ok := sess.PendingCrop(); ok {
			sess.CancelGesture()
			return
		}
		sess.CancelCrop()
		return
	}
	if sess.Dragging() || activeGesture(sess) {
		sess.CancelGesture()
		return
	}
	sess.Deselect()
}

func activeGesture(sess *session.Session) bool {
	t := sess.ActiveTool()
	return t != nil && t.Active()
}

func (e *Editor) defaultSavePath() string {
	dir := e.cfg.SaveDir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	ext := e.cfg.Export.Format
	if ext == "" {
		ext = "png"
	}
	name := fmt.Sprintf("snaplate-%s.%s", time.Now().Format("20060102-150405"), ext)
	return filepath.Join(dir, name)
}

func (e *Editor) exportOptions() export.Options {
	format, err := export.ParseFormat(e.cfg.Export.Format)
	if err != nil {
		format = export.FormatPNG
	}
	return export.Options{
		Format:  format,
		Quality: e.cfg.Export.Quality,
		Shadow:  e.cfg.Export.Shadow,
	}
}

// snapshot captures everything the next frame needs by value so the paint
// goroutine never reads live session state.
func (e *Editor) snapshot(sess *session.Session, width, height int, zoom float64, hoverTool int, textInput, message string, messageUntil time.Time) paintState {
	doc := sess.Document()
	st := paintState{
		width:        width,
		height:       height,
		doc:          doc,
		zoom:         zoom,
		toolIdx:      currentToolIndex(sess),
		hoverTool:    hoverTool,
		cropMode:     sess.CropMode(),
		previewStyle: sess.StrokeStyle(),
		translations: sess.Translations(),
		message:      message,
		messageUntil: messageUntil,
		status:       statusLabel(sess),
	}

	base := imageRect(doc.Bitmap, width, height, zoom)
	if idx, ok := sess.SelectedAnnotation(); ok && idx < len(doc.Annotations) {
		st.selected = toViewRect(base, zoom, doc.Annotations[idx].Bounds())
		st.hasSelected = true
	}
	if r, ok := sess.PendingCrop(); ok {
		st.cropRect = r
		st.hasCropRect = true
	}
	switch t := sess.ActiveTool().(type) {
	case *tool.RectangleTool:
		if r, ok := t.Preview(); ok {
			st.previewRect = r
			st.hasRect = true
		}
	case *tool.ArrowTool:
		if from, to, ok := t.Preview(); ok {
			st.previewStart = from
			st.previewEnd = to
			st.hasLine = true
		}
	case *tool.FreehandTool:
		if t.Active() {
			st.previewPoints = t.Points()
		}
	}
	if pos, ok := sess.AwaitingText(); ok {
		st.textActive = true
		st.textInput = textInput
		st.textPos = pos
		st.textStyle = sess.TextStyle()
	}
	return st
}

func currentToolIndex(sess *session.Session) int {
	if sess.CropMode() {
		for i, spec := range toolSpecs {
			if spec.crop {
				return i
			}
		}
	}
	if kind, ok := sess.SelectedTool(); ok {
		for i, spec := range toolSpecs {
			if !spec.crop && spec.kind == kind {
				return i
			}
		}
	}
	return 0
}

func statusLabel(sess *session.Session) string {
	label := "select"
	if sess.CropMode() {
		label = "crop (enter applies, esc cancels)"
	} else if kind, ok := sess.SelectedTool(); ok {
		label = kind.String()
	}
	if _, ok := sess.AwaitingText(); ok {
		label = "text (type, enter commits)"
	}
	switch {
	case sess.OCRBusy():
		label += "  recognizing..."
	case sess.TranslateBusy():
		label += "  translating..."
	case sess.ExportBusy():
		label += "  exporting..."
	}
	return label
}
