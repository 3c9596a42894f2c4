package document

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/snaplate/internal/annotation"
)

var (
	fontOnce    sync.Once
	regularFont *opentype.Font
	fontErr     error
	faceCache   sync.Map // map[float64]font.Face
)

func faceForSize(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		regularFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	if size <= 0 {
		size = 12
	}
	if face, ok := faceCache.Load(size); ok {
		return face.(font.Face), nil
	}
	face, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faceCache.Store(size, face)
	return face, nil
}

// MeasureText returns the rendered extent of text at the given point size
// and the baseline offset from the top.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	d := &font.Drawer{Face: face}
	width = d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline = metrics.Ascent.Ceil()
	height = baseline + metrics.Descent.Ceil()
	return
}

// Flatten composites the committed annotations over a copy of the bitmap,
// in list order so later entries render on top. The document itself is
// unchanged; the result is what export and clipboard consume.
func (s Screenshot) Flatten() *image.RGBA {
	out := image.NewRGBA(s.Bitmap.Bounds())
	draw.Draw(out, out.Bounds(), s.Bitmap, s.Bitmap.Bounds().Min, draw.Src)
	for _, a := range s.Annotations {
		renderAnnotation(out, a)
	}
	return out
}

func renderAnnotation(dst *image.RGBA, a annotation.Annotation) {
	switch v := a.(type) {
	case annotation.Rectangle:
		rect := image.Rect(
			int(math.Round(v.Rect.X)),
			int(math.Round(v.Rect.Y)),
			int(math.Round(v.Rect.X+v.Rect.Width)),
			int(math.Round(v.Rect.Y+v.Rect.Height)),
		)
		if v.Filled {
			fillRect(dst, rect, v.Style.Color)
			return
		}
		drawRectOutline(dst, rect, v.Style.Color, int(v.Style.Width))
	case annotation.Freehand:
		for i := 1; i < len(v.Points); i++ {
			p0 := v.Points[i-1]
			p1 := v.Points[i]
			drawLine(dst,
				int(math.Round(p0.X)), int(math.Round(p0.Y)),
				int(math.Round(p1.X)), int(math.Round(p1.Y)),
				v.Style.Color, int(v.Style.Width))
		}
	case annotation.Arrow:
		drawArrowShape(dst,
			int(math.Round(v.Start.X)), int(math.Round(v.Start.Y)),
			int(math.Round(v.End.X)), int(math.Round(v.End.Y)),
			v.Style.Color, int(v.Style.Width))
	case annotation.Text:
		if err := renderText(dst, v); err != nil {
			log.Printf("document: render text annotation: %v", err)
		}
	}
}

func renderText(dst *image.RGBA, t annotation.Text) error {
	face, err := faceForSize(t.Style.FontSize)
	if err != nil {
		return fmt.Errorf("text face: %w", err)
	}
	baseline := int(math.Round(t.Position.Y)) + face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(t.Style.Color),
		Face: face,
		Dot:  fixed.P(int(math.Round(t.Position.X)), baseline),
	}
	d.DrawString(t.Content)
	return nil
}
