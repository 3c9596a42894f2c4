package geom

import "testing"

func TestNormalizedRect(t *testing.T) {
	cases := []struct {
		name     string
		from, to Point
		want     Rect
	}{
		{"forward", Pt(10, 20), Pt(30, 60), XYWH(10, 20, 20, 40)},
		{"reversed", Pt(30, 60), Pt(10, 20), XYWH(10, 20, 20, 40)},
		{"mixed", Pt(30, 20), Pt(10, 60), XYWH(10, 20, 20, 40)},
		{"degenerate", Pt(5, 5), Pt(5, 5), XYWH(5, 5, 0, 0)},
	}
	for _, tc := range cases {
		if got := NormalizedRect(tc.from, tc.to); got != tc.want {
			t.Errorf("%s: NormalizedRect(%v, %v) = %v, want %v", tc.name, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRectClamp(t *testing.T) {
	r := XYWH(-10, -10, 50, 50).Clamp(100, 100)
	if r != XYWH(0, 0, 40, 40) {
		t.Fatalf("clamp negative origin: got %v", r)
	}
	r = XYWH(80, 90, 50, 50).Clamp(100, 100)
	if r != XYWH(80, 90, 20, 10) {
		t.Fatalf("clamp overflowing extent: got %v", r)
	}
	r = XYWH(200, 200, 10, 10).Clamp(100, 100)
	if !r.Empty() {
		t.Fatalf("clamp fully outside should be empty, got %v", r)
	}
}

func TestFlipYRoundTrip(t *testing.T) {
	r := XYWH(10, 20, 30, 40)
	flipped := r.FlipY(200)
	if flipped != XYWH(10, 140, 30, 40) {
		t.Fatalf("FlipY = %v", flipped)
	}
	if back := flipped.FlipY(200); back != r {
		t.Fatalf("FlipY not involutive: %v", back)
	}
}

func TestDenormalize(t *testing.T) {
	box := XYWH(0.25, 0.5, 0.5, 0.25).Denormalize(200, 100)
	if box != XYWH(50, 50, 100, 25) {
		t.Fatalf("Denormalize = %v", box)
	}
	// Defensive clamp on boxes that stray outside 0..1.
	box = XYWH(0.9, 0.9, 0.5, 0.5).Denormalize(100, 100)
	if box != XYWH(90, 90, 10, 10) {
		t.Fatalf("Denormalize out-of-range = %v", box)
	}
}

func TestRectContains(t *testing.T) {
	r := XYWH(10, 10, 20, 20)
	for _, p := range []Point{Pt(10, 10), Pt(30, 30), Pt(20, 15)} {
		if !r.Contains(p) {
			t.Errorf("%v should contain %v", r, p)
		}
	}
	for _, p := range []Point{Pt(9.9, 10), Pt(30.1, 30), Pt(20, 31)} {
		if r.Contains(p) {
			t.Errorf("%v should not contain %v", r, p)
		}
	}
}

func TestInsetNegativeGrows(t *testing.T) {
	r := XYWH(10, 10, 20, 20).Inset(-10)
	if r != XYWH(0, 0, 40, 40) {
		t.Fatalf("Inset(-10) = %v", r)
	}
	r = XYWH(10, 10, 4, 4).Inset(10)
	if !r.Empty() {
		t.Fatalf("over-inset should collapse to empty, got %v", r)
	}
}

func TestUnion(t *testing.T) {
	got := XYWH(0, 0, 10, 10).Union(XYWH(20, 20, 5, 5))
	if got != XYWH(0, 0, 25, 25) {
		t.Fatalf("Union = %v", got)
	}
}
