package annotation

import (
	"image/color"
	"testing"

	"github.com/example/snaplate/internal/geom"
)

var red = Style{Color: color.RGBA{255, 0, 0, 255}, Width: 2}

func TestFreehandBounds(t *testing.T) {
	f := Freehand{Points: []geom.Point{geom.Pt(10, 40), geom.Pt(30, 20), geom.Pt(25, 50)}, Style: red}
	if got := f.Bounds(); got != geom.XYWH(10, 20, 20, 30) {
		t.Fatalf("Bounds = %v", got)
	}
	if got := (Freehand{}).Bounds(); !got.Empty() {
		t.Fatalf("empty freehand bounds = %v", got)
	}
}

func TestArrowBoundsReversed(t *testing.T) {
	a := Arrow{Start: geom.Pt(50, 10), End: geom.Pt(20, 60), Style: red}
	if got := a.Bounds(); got != geom.XYWH(20, 10, 30, 50) {
		t.Fatalf("Bounds = %v", got)
	}
}

func TestTranslatedDoesNotMutate(t *testing.T) {
	orig := Freehand{Points: []geom.Point{geom.Pt(1, 1), geom.Pt(2, 2)}, Style: red}
	moved := orig.Translated(geom.Pt(10, 10)).(Freehand)
	if orig.Points[0] != geom.Pt(1, 1) {
		t.Fatalf("Translated mutated the receiver: %v", orig.Points[0])
	}
	if moved.Points[0] != geom.Pt(11, 11) || moved.Points[1] != geom.Pt(12, 12) {
		t.Fatalf("Translated points = %v", moved.Points)
	}
}

func TestAnchor(t *testing.T) {
	r := Rectangle{Rect: geom.XYWH(5, 6, 10, 10), Style: red}
	if got := Anchor(r); got != geom.Pt(5, 6) {
		t.Fatalf("rectangle anchor = %v", got)
	}
	txt := Text{Position: geom.Pt(7, 8), Style: TextStyle{FontSize: 16}, Content: "hi"}
	if got := Anchor(txt); got != geom.Pt(7, 8) {
		t.Fatalf("text anchor = %v", got)
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{KindRectangle: "rectangle", KindFreehand: "freehand", KindArrow: "arrow", KindText: "text"}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), k.String(), want)
		}
	}
}
