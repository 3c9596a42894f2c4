package document

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/geom"
)

func TestFlattenLeavesDocumentUntouched(t *testing.T) {
	doc := New(image.NewRGBA(image.Rect(0, 0, 50, 50)), time.Now(), Display{})
	doc = doc.Adding(annotation.Rectangle{
		Rect:   geom.XYWH(10, 10, 20, 20),
		Style:  annotation.Style{Color: color.RGBA{255, 0, 0, 255}, Width: 1},
		Filled: true,
	})
	flat := doc.Flatten()
	if flat == doc.Bitmap {
		t.Fatal("Flatten must not alias the document bitmap")
	}
	if got := flat.RGBAAt(15, 15); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("filled rect pixel = %v", got)
	}
	if got := doc.Bitmap.RGBAAt(15, 15); got != (color.RGBA{}) {
		t.Fatalf("document bitmap was painted: %v", got)
	}
	// Outside the rect stays untouched.
	if got := flat.RGBAAt(40, 40); got != (color.RGBA{}) {
		t.Fatalf("pixel outside annotation = %v", got)
	}
}

func TestFlattenZOrder(t *testing.T) {
	doc := New(image.NewRGBA(image.Rect(0, 0, 30, 30)), time.Now(), Display{})
	red := annotation.Style{Color: color.RGBA{255, 0, 0, 255}, Width: 1}
	blue := annotation.Style{Color: color.RGBA{0, 0, 255, 255}, Width: 1}
	doc = doc.Adding(annotation.Rectangle{Rect: geom.XYWH(5, 5, 10, 10), Style: red, Filled: true})
	doc = doc.Adding(annotation.Rectangle{Rect: geom.XYWH(5, 5, 10, 10), Style: blue, Filled: true})
	flat := doc.Flatten()
	if got := flat.RGBAAt(10, 10); got != (color.RGBA{0, 0, 255, 255}) {
		t.Fatalf("later annotation should win: %v", got)
	}
}

func TestFlattenFreehandAndArrow(t *testing.T) {
	doc := New(image.NewRGBA(image.Rect(0, 0, 40, 40)), time.Now(), Display{})
	st := annotation.Style{Color: color.RGBA{0, 255, 0, 255}, Width: 1}
	doc = doc.Adding(annotation.Freehand{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}, Style: st})
	doc = doc.Adding(annotation.Arrow{Start: geom.Pt(0, 20), End: geom.Pt(20, 20), Style: st})
	flat := doc.Flatten()
	if got := flat.RGBAAt(5, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("freehand pixel = %v", got)
	}
	if got := flat.RGBAAt(10, 20); got != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("arrow shaft pixel = %v", got)
	}
}

func TestFlattenText(t *testing.T) {
	doc := New(image.NewRGBA(image.Rect(0, 0, 100, 40)), time.Now(), Display{})
	doc = doc.Adding(annotation.Text{
		Position: geom.Pt(2, 2),
		Style:    annotation.TextStyle{Color: color.RGBA{0, 0, 0, 255}, FontSize: 16},
		Content:  "Hi",
	})
	flat := doc.Flatten()
	painted := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			if flat.RGBAAt(x, y).A != 0 {
				painted++
			}
		}
	}
	if painted == 0 {
		t.Fatal("text annotation rendered no pixels")
	}
}

func TestMeasureText(t *testing.T) {
	w, h, baseline, err := MeasureText("Hello", 16)
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	if w <= 0 || h <= 0 || baseline <= 0 || baseline > h {
		t.Fatalf("implausible metrics: w=%d h=%d baseline=%d", w, h, baseline)
	}
}
