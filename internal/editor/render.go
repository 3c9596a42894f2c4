package editor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/exp/shiny/screen"

	"github.com/example/snaplate/internal/annotation"
	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/geom"
)

const (
	bottomHeight = 24
	buttonHeight = 24
	handleSize   = 8
)

var toolbarWidth = 48

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var checkerLight = color.RGBA{220, 220, 220, 255}
var checkerDark = color.RGBA{192, 192, 192, 255}

var selectionDash = color.RGBA{30, 120, 255, 255}
var regionDash = color.RGBA{80, 80, 220, 255}
var cropShade = color.RGBA{0, 0, 0, 110}

var messageFace font.Face
var parsedFont *opentype.Font

var (
	faceMu    sync.Mutex
	faceCache = map[float64]font.Face{}
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	parsedFont = f
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// caretFace returns a cached face for the given pixel size, used to echo
// text while it is being typed. Sizes are quantized to whole pixels to keep
// the cache small across zoom levels.
func caretFace(size float64) font.Face {
	sz := float64(int(size))
	if sz < 6 {
		sz = 6
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if face, ok := faceCache[sz]; ok {
		return face
	}
	face, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{Size: sz, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	faceCache[sz] = face
	return face
}

func fitZoom(img *image.RGBA, winW, winH int) float64 {
	availW := winW - toolbarWidth
	availH := winH - bottomHeight
	zx := float64(availW) / float64(img.Bounds().Dx())
	zy := float64(availH) / float64(img.Bounds().Dy())
	z := zx
	if zy < zx {
		z = zy
	}
	if z > 1 {
		z = 1
	}
	if z < 0.05 {
		z = 0.05
	}
	return z
}

// imageRect returns the destination rectangle for drawing the bitmap. It
// anchors the canvas origin beside the toolbar instead of centering it so
// the image position stays stable when the window resizes.
func imageRect(img *image.RGBA, winW, winH int, zoom float64) image.Rectangle {
	w := int(float64(img.Bounds().Dx()) * zoom)
	h := int(float64(img.Bounds().Dy()) * zoom)
	return image.Rect(toolbarWidth, 0, toolbarWidth+w, h)
}

func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

var backdropCache *image.RGBA

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, checkerLight, checkerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	if length < 0 {
		length = -length
	}
	for i := 0; i <= length; i += dash * 2 {
		for j := 0; j < dash && i+j <= length; j++ {
			if horiz {
				for t := 0; t < thickness; t++ {
					if x0 < x1 {
						img.Set(x0+i+j, y0+t, c1)
					} else {
						img.Set(x0-i-j, y0+t, c1)
					}
				}
			} else {
				for t := 0; t < thickness; t++ {
					if y0 < y1 {
						img.Set(x0+t, y0+i+j, c1)
					} else {
						img.Set(x0+t, y0-i-j, c1)
					}
				}
			}
		}
		for j := 0; j < dash && i+dash+j <= length; j++ {
			if horiz {
				for t := 0; t < thickness; t++ {
					if x0 < x1 {
						img.Set(x0+i+dash+j, y0+t, c2)
					} else {
						img.Set(x0-i-dash-j, y0+t, c2)
					}
				}
			} else {
				for t := 0; t < thickness; t++ {
					if y0 < y1 {
						img.Set(x0+t, y0+i+dash+j, c2)
					} else {
						img.Set(x0+t, y0-i-dash-j, c2)
					}
				}
			}
		}
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thickness int, c1, c2 color.Color) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Min.Y, rect.Max.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Max.Y, rect.Min.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Min.X, rect.Max.Y, rect.Min.X, rect.Min.Y, dash, thickness, c1, c2)
}

func drawOutline(img *image.RGBA, rect image.Rectangle, col color.Color) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.Set(x, rect.Min.Y, col)
		img.Set(x, rect.Max.Y-1, col)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.Set(rect.Min.X, y, col)
		img.Set(rect.Max.X-1, y, col)
	}
}

func drawThinLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	e := dx - dy
	for {
		img.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x0 += sx
		}
		if e2 < dx {
			e += dx
			y0 += sy
		}
	}
}

func handleRects(rect image.Rectangle) []image.Rectangle {
	hs := handleSize / 2
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	return []image.Rectangle{
		image.Rect(rect.Min.X-hs, rect.Min.Y-hs, rect.Min.X+hs, rect.Min.Y+hs),
		image.Rect(cx-hs, rect.Min.Y-hs, cx+hs, rect.Min.Y+hs),
		image.Rect(rect.Max.X-hs, rect.Min.Y-hs, rect.Max.X+hs, rect.Min.Y+hs),
		image.Rect(rect.Max.X-hs, cy-hs, rect.Max.X+hs, cy+hs),
		image.Rect(rect.Max.X-hs, rect.Max.Y-hs, rect.Max.X+hs, rect.Max.Y+hs),
		image.Rect(cx-hs, rect.Max.Y-hs, cx+hs, rect.Max.Y+hs),
		image.Rect(rect.Min.X-hs, rect.Max.Y-hs, rect.Min.X+hs, rect.Max.Y+hs),
		image.Rect(rect.Min.X-hs, cy-hs, rect.Min.X+hs, cy+hs),
	}
}

// toolSpec describes one toolbar entry. Crop is not an annotation tool but
// shares the toolbar.
type toolSpec struct {
	label string
	kind  annotation.Kind
	crop  bool
}

var toolSpecs = []toolSpec{
	{label: "M:Select", kind: -1},
	{label: "X:Rect", kind: annotation.KindRectangle},
	{label: "D:Draw", kind: annotation.KindFreehand},
	{label: "A:Arrow", kind: annotation.KindArrow},
	{label: "T:Text", kind: annotation.KindText},
	{label: "C:Crop", kind: -1, crop: true},
}

// paintState is a value snapshot of everything drawFrame needs, taken on
// the event loop goroutine so the paint goroutine never touches live state.
type paintState struct {
	width, height int
	doc           document.Screenshot
	zoom          float64

	toolIdx   int
	hoverTool int

	selected    image.Rectangle
	hasSelected bool

	cropMode    bool
	cropRect    geom.Rect
	hasCropRect bool

	previewRect   geom.Rect
	hasRect       bool
	previewStart  geom.Point
	previewEnd    geom.Point
	hasLine       bool
	previewPoints []geom.Point
	previewStyle  annotation.Style

	textActive bool
	textInput  string
	textPos    geom.Point
	textStyle  annotation.TextStyle

	translations []string

	message      string
	messageUntil time.Time

	status string
}

// toView converts an image-space point to window coordinates.
func toView(dst image.Rectangle, zoom float64, p geom.Point) image.Point {
	return image.Pt(
		dst.Min.X+int(p.X*zoom),
		dst.Min.Y+int(p.Y*zoom),
	)
}

func toViewRect(dst image.Rectangle, zoom float64, r geom.Rect) image.Rectangle {
	min := toView(dst, zoom, r.Origin())
	max := toView(dst, zoom, r.Max())
	return image.Rectangle{Min: min, Max: max}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{X: st.width, Y: st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA())
	if ctx.Err() != nil {
		return
	}

	flat := st.doc.Flatten()
	dst := imageRect(flat, st.width, st.height, st.zoom)
	xdraw.NearestNeighbor.Scale(b.RGBA(), dst, flat, flat.Bounds(), draw.Over, nil)
	if ctx.Err() != nil {
		return
	}

	drawRegions(b.RGBA(), st, dst)
	if ctx.Err() != nil {
		return
	}

	drawPreview(b.RGBA(), st, dst)
	if ctx.Err() != nil {
		return
	}

	if st.hasSelected {
		sel := st.selected.Inset(-2)
		drawDashedRect(b.RGBA(), sel, 4, 1, selectionDash, color.White)
		for _, hr := range handleRects(sel) {
			draw.Draw(b.RGBA(), hr, &image.Uniform{color.White}, image.Point{}, draw.Src)
			drawOutline(b.RGBA(), hr, selectionDash)
		}
	}
	if ctx.Err() != nil {
		return
	}

	if st.cropMode {
		drawCropOverlay(b.RGBA(), st, dst)
	}
	if ctx.Err() != nil {
		return
	}

	if st.textActive {
		face := caretFace(st.textStyle.FontSize * st.zoom)
		p := toView(dst, st.zoom, st.textPos)
		d := &font.Drawer{Dst: b.RGBA(), Src: image.NewUniform(st.textStyle.Color), Face: face}
		d.Dot = fixed.P(p.X, p.Y)
		d.DrawString(st.textInput + "|")
	}
	if ctx.Err() != nil {
		return
	}

	drawToolbar(b.RGBA(), st)
	drawStatusBar(b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d := &font.Drawer{Dst: b.RGBA(), Src: image.Black, Face: messageFace}
		wmsg := d.MeasureString(st.message).Ceil()
		ascent := messageFace.Metrics().Ascent.Ceil()
		descent := messageFace.Metrics().Descent.Ceil()
		px := (st.width - wmsg) / 2
		py := (st.height-ascent-descent)/2 + ascent
		rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
		draw.Draw(b.RGBA(), rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
		drawOutline(b.RGBA(), rect, color.Black)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// drawPreview renders the in-progress gesture of the active tool.
func drawPreview(dst *image.RGBA, st paintState, base image.Rectangle) {
	col := st.previewStyle.Color
	switch {
	case st.hasRect:
		drawDashedRect(dst, toViewRect(base, st.zoom, st.previewRect), 4, 1, col, color.White)
	case st.hasLine:
		p0 := toView(base, st.zoom, st.previewStart)
		p1 := toView(base, st.zoom, st.previewEnd)
		drawThinLine(dst, p0.X, p0.Y, p1.X, p1.Y, col)
	case len(st.previewPoints) > 1:
		prev := toView(base, st.zoom, st.previewPoints[0])
		for _, p := range st.previewPoints[1:] {
			cur := toView(base, st.zoom, p)
			drawThinLine(dst, prev.X, prev.Y, cur.X, cur.Y, col)
			prev = cur
		}
	}
}

// drawRegions outlines recognized text regions and, when translations are
// present, overlays the translated strings on top of their source boxes.
func drawRegions(dst *image.RGBA, st paintState, base image.Rectangle) {
	if len(st.doc.TextRegions) == 0 {
		return
	}
	for i, reg := range st.doc.TextRegions {
		r := toViewRect(base, st.zoom, st.doc.RegionBounds(reg))
		drawDashedRect(dst, r, 3, 1, regionDash, color.White)
		if i >= len(st.translations) || st.translations[i] == "" {
			continue
		}
		d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
		tw := d.MeasureString(st.translations[i]).Ceil()
		back := image.Rect(r.Min.X, r.Min.Y, r.Min.X+tw+4, r.Min.Y+15)
		draw.Draw(dst, back, &image.Uniform{color.RGBA{255, 255, 255, 235}}, image.Point{}, draw.Over)
		d.Dot = fixed.P(r.Min.X+2, r.Min.Y+11)
		d.DrawString(st.translations[i])
	}
}

// drawCropOverlay dims everything outside the pending crop rect and draws
// the rect with resize handles. With no pending rect the whole canvas is
// dimmed as a cue that crop mode is armed.
func drawCropOverlay(dst *image.RGBA, st paintState, base image.Rectangle) {
	shade := &image.Uniform{cropShade}
	if !st.hasCropRect {
		draw.Draw(dst, base, shade, image.Point{}, draw.Over)
		return
	}
	sel := toViewRect(base, st.zoom, st.cropRect)
	draw.Draw(dst, image.Rect(base.Min.X, base.Min.Y, base.Max.X, sel.Min.Y), shade, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(base.Min.X, sel.Max.Y, base.Max.X, base.Max.Y), shade, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(base.Min.X, sel.Min.Y, sel.Min.X, sel.Max.Y), shade, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(sel.Max.X, sel.Min.Y, base.Max.X, sel.Max.Y), shade, image.Point{}, draw.Over)
	drawDashedRect(dst, sel, 4, 2, color.White, color.Black)
	for _, hr := range handleRects(sel) {
		draw.Draw(dst, hr, &image.Uniform{color.White}, image.Point{}, draw.Src)
		drawOutline(dst, hr, color.Black)
	}
}

func drawToolbar(dst *image.RGBA, st paintState) {
	bar := image.Rect(0, 0, toolbarWidth, st.height)
	draw.Draw(dst, bar, &image.Uniform{color.RGBA{240, 240, 240, 255}}, image.Point{}, draw.Src)
	for i, spec := range toolSpecs {
		r := image.Rect(0, i*buttonHeight, toolbarWidth, (i+1)*buttonHeight)
		bg := color.RGBA{240, 240, 240, 255}
		if i == st.toolIdx {
			bg = color.RGBA{180, 205, 255, 255}
		} else if i == st.hoverTool {
			bg = color.RGBA{215, 215, 215, 255}
		}
		draw.Draw(dst, r, &image.Uniform{bg}, image.Point{}, draw.Src)
		drawOutline(dst, r, color.RGBA{160, 160, 160, 255})
		d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
		d.Dot = fixed.P(r.Min.X+4, r.Min.Y+16)
		d.DrawString(spec.label)
	}
}

func drawStatusBar(dst *image.RGBA, st paintState) {
	bar := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{color.RGBA{240, 240, 240, 255}}, image.Point{}, draw.Src)
	drawOutline(dst, bar, color.RGBA{160, 160, 160, 255})
	label := fmt.Sprintf("%s  zoom %d%%", st.status, int(st.zoom*100))
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
	d.Dot = fixed.P(4, st.height-bottomHeight+16)
	d.DrawString(label)
}
