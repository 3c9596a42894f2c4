// Package annotation defines the closed set of markup variants a user can
// draw over a captured bitmap. Values are immutable once committed to a
// document; edits produce replacement values via the With/Translate helpers.
package annotation

import (
	"image/color"

	"github.com/example/snaplate/internal/geom"
)

// Kind identifies an annotation variant.
type Kind int

const (
	KindRectangle Kind = iota
	KindFreehand
	KindArrow
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindFreehand:
		return "freehand"
	case KindArrow:
		return "arrow"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Style carries the stroke attributes shared by Rectangle, Freehand and
// Arrow. Width is always positive.
type Style struct {
	Color color.RGBA
	Width float64
}

// TextStyle extends Style with font attributes for Text annotations.
type TextStyle struct {
	Color      color.RGBA
	FontSize   float64
	FontFamily string
}

// Annotation is the closed union of markup variants. The concrete types are
// Rectangle, Freehand, Arrow and Text; dispatch is a type switch, not open
// polymorphism.
type Annotation interface {
	Kind() Kind
	// Bounds returns the axis-aligned bounding box of the annotation in
	// image-pixel space.
	Bounds() geom.Rect
	// Translated returns a copy moved by d. The receiver is unchanged.
	Translated(d geom.Point) Annotation
}

// Rectangle is an axis-aligned outlined or filled box.
type Rectangle struct {
	Rect   geom.Rect
	Style  Style
	Filled bool
}

func (r Rectangle) Kind() Kind        { return KindRectangle }
func (r Rectangle) Bounds() geom.Rect { return r.Rect }

func (r Rectangle) Translated(d geom.Point) Annotation {
	r.Rect = r.Rect.Translate(d)
	return r
}

// Freehand is an ordered polyline of pointer samples.
type Freehand struct {
	Points []geom.Point
	Style  Style
}

func (f Freehand) Kind() Kind { return KindFreehand }

func (f Freehand) Bounds() geom.Rect {
	if len(f.Points) == 0 {
		return geom.Rect{}
	}
	b := geom.Rect{X: f.Points[0].X, Y: f.Points[0].Y}
	for _, p := range f.Points[1:] {
		b = b.Union(geom.Rect{X: p.X, Y: p.Y})
	}
	return b
}

func (f Freehand) Translated(d geom.Point) Annotation {
	pts := make([]geom.Point, len(f.Points))
	for i, p := range f.Points {
		pts[i] = p.Add(d)
	}
	f.Points = pts
	return f
}

// Arrow points from Start to End; the head is drawn at End. A zero-length
// arrow is a valid value and renders a degenerate head.
type Arrow struct {
	Start, End geom.Point
	Style      Style
}

func (a Arrow) Kind() Kind { return KindArrow }

func (a Arrow) Bounds() geom.Rect {
	return geom.NormalizedRect(a.Start, a.End)
}

func (a Arrow) Translated(d geom.Point) Annotation {
	a.Start = a.Start.Add(d)
	a.End = a.End.Add(d)
	return a
}

// Text is a label anchored at its top-left corner. Content may be empty in
// tool scratch state but never in a committed document.
type Text struct {
	Position geom.Point
	Style    TextStyle
	Content  string
}

func (t Text) Kind() Kind { return KindText }

// Bounds approximates the rendered extent from the font metrics; exact
// measurement belongs to the rendering layer.
func (t Text) Bounds() geom.Rect {
	w := float64(len([]rune(t.Content))) * t.Style.FontSize * 0.6
	h := t.Style.FontSize * 1.2
	return geom.Rect{X: t.Position.X, Y: t.Position.Y, Width: w, Height: h}
}

func (t Text) Translated(d geom.Point) Annotation {
	t.Position = t.Position.Add(d)
	return t
}

// Anchor returns the point drags operate on: the bounds origin for shape
// variants and the text position for labels.
func Anchor(a Annotation) geom.Point {
	if t, ok := a.(Text); ok {
		return t.Position
	}
	return a.Bounds().Origin()
}
