// Package geom provides the coordinate primitives shared by the document
// model and the annotation tools. All values are expressed in image-pixel
// space: origin at the top-left of the bitmap, y increasing downward. Any
// other space (screen coordinates with y-up, view coordinates scaled by a
// zoom factor, normalized OCR boxes) is converted at the boundary and never
// stored.
package geom

import (
	"fmt"
	"math"
)

// Point is a location in image-pixel space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p with both components multiplied by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Rect is an axis-aligned rectangle in image-pixel space. Width and Height
// are non-negative for every rect produced by this package.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// XYWH is shorthand for Rect{x, y, w, h}.
func XYWH(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// NormalizedRect builds a rectangle from two arbitrary corner points,
// normalizing negative extents. from == to yields a zero-size rect, which
// callers treat as a no-op rather than an error.
func NormalizedRect(from, to Point) Rect {
	return Rect{
		X:      math.Min(from.X, to.X),
		Y:      math.Min(from.Y, to.Y),
		Width:  math.Abs(to.X - from.X),
		Height: math.Abs(to.Y - from.Y),
	}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.X + r.Width, r.Y + r.Height} }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r (inclusive of all edges).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Inset shrinks the rect by d on every side; a negative d grows it. The
// result is re-normalized so it never reports a negative extent.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
	if out.Width < 0 {
		out.X += out.Width / 2
		out.Width = 0
	}
	if out.Height < 0 {
		out.Y += out.Height / 2
		out.Height = 0
	}
	return out
}

// Translate returns the rect moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// Scale multiplies every component by f. Used only at the UI boundary when
// mapping between view and image coordinates.
func (r Rect) Scale(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, Width: r.Width * f, Height: r.Height * f}
}

// Union returns the smallest rect containing both r and s. A zero-size rect
// still contributes its origin.
func (r Rect) Union(s Rect) Rect {
	x0 := math.Min(r.X, s.X)
	y0 := math.Min(r.Y, s.Y)
	x1 := math.Max(r.X+r.Width, s.X+s.Width)
	y1 := math.Max(r.Y+r.Height, s.Y+s.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Clamp restricts r to the area [0,0,width,height]. The origin is raised to
// zero and the extent trimmed so the rect never reaches past the bounds.
func (r Rect) Clamp(width, height float64) Rect {
	x0 := math.Max(r.X, 0)
	y0 := math.Max(r.Y, 0)
	x1 := math.Min(r.X+r.Width, width)
	y1 := math.Min(r.Y+r.Height, height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// FlipY converts the rect between y-down and y-up conventions relative to a
// reference height. The conversion is its own inverse, so every external
// boundary that disagrees with the document's y-down convention performs
// exactly one flip on the way in and one on the way out.
func (r Rect) FlipY(referenceHeight float64) Rect {
	return Rect{
		X:      r.X,
		Y:      referenceHeight - r.Y - r.Height,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Denormalize maps a rect with 0..1 components (an OCR bounding box) into
// pixel space and clamps it to the bitmap, discarding any out-of-range
// portion rather than rejecting the box.
func (r Rect) Denormalize(width, height float64) Rect {
	return Rect{
		X:      r.X * width,
		Y:      r.Y * height,
		Width:  r.Width * width,
		Height: r.Height * height,
	}.Clamp(width, height)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}
