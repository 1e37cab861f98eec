package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/cardboard/board"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Raster is a software board.Surface backed by an *image.RGBA. It is what
// tests and the snapshot tool paint on.
type Raster struct {
	img  *image.RGBA
	clip image.Rectangle
	bg   color.Color
	face font.Face
}

func NewRaster(w, h int, bg color.Color) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r := &Raster{img: img, clip: img.Rect, bg: bg, face: basicfont.Face7x13}
	r.Clear(img.Rect)
	return r
}

// Image returns the backing image. It is shared, not copied.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (int, int) {
	return r.img.Rect.Dx(), r.img.Rect.Dy()
}

func (r *Raster) target() *image.RGBA {
	return r.img.SubImage(r.clip).(*image.RGBA)
}

func (r *Raster) Clear(rect image.Rectangle) {
	draw.Draw(r.img, rect.Intersect(r.clip), image.NewUniform(r.bg), image.Point{}, draw.Src)
}

func (r *Raster) Clip(rect image.Rectangle) board.Surface {
	c := *r
	c.clip = r.clip.Intersect(rect)
	return &c
}

func (r *Raster) FillRect(bb cp.BB, c color.Color) {
	dst := board.Snap(bb).Intersect(r.clip)
	if dst.Empty() {
		return
	}
	draw.Draw(r.img, dst, image.NewUniform(c), image.Point{}, draw.Over)
}

// DrawImage scales img into bb. ApproxBiLinear computes every destination
// pixel on its own, so the result does not depend on the clip.
func (r *Raster) DrawImage(img image.Image, bb cp.BB) {
	dst := board.Snap(bb)
	if dst.Intersect(r.clip).Empty() {
		return
	}
	xdraw.ApproxBiLinear.Scale(r.target(), dst, img, img.Bounds(), xdraw.Over, nil)
}

func (r *Raster) DrawText(s string, cx, cy float64, c color.Color) {
	d := &font.Drawer{Dst: r.target(), Src: image.NewUniform(c), Face: r.face}
	w := d.MeasureString(s).Round()
	m := r.face.Metrics()
	x := int(math.Floor(cx+0.5)) - w/2
	y := int(math.Floor(cy+0.5)) + (m.Ascent.Round()-m.Descent.Round())/2
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}
