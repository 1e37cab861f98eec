package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/cardboard/board"
	"golang.org/x/image/font/basicfont"
)

// Screen is a board.Surface backed by an offscreen *ebiten.Image. The game
// blits it to the window every frame; only repaints change it.
type Screen struct {
	img    *ebiten.Image
	shared *screenShared
}

type screenShared struct {
	bg      color.Color
	pixel   *ebiten.Image
	face    text.Face
	uploads *textureCache[*ebiten.Image]
}

func NewScreen(w, h int, bg color.Color) *Screen {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	s := &Screen{
		img: ebiten.NewImage(w, h),
		shared: &screenShared{
			bg:      bg,
			pixel:   pixel,
			face:    text.NewGoXFace(basicfont.Face7x13),
			uploads: newTextureCache(func(e *ebiten.Image) { e.Deallocate() }),
		},
	}
	s.img.Fill(bg)
	return s
}

// Image is the offscreen canvas.
func (s *Screen) Image() *ebiten.Image { return s.img }

func (s *Screen) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Screen) sub(r image.Rectangle) *ebiten.Image {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return nil
	}
	return s.img.SubImage(r).(*ebiten.Image)
}

func (s *Screen) Clear(r image.Rectangle) {
	if sub := s.sub(r); sub != nil {
		sub.Fill(s.shared.bg)
	}
}

func (s *Screen) Clip(r image.Rectangle) board.Surface {
	sub := s.sub(r)
	if sub == nil {
		sub = s.img.SubImage(image.Rectangle{}).(*ebiten.Image)
	}
	return &Screen{img: sub, shared: s.shared}
}

func (s *Screen) FillRect(bb cp.BB, c color.Color) {
	r := board.Snap(bb)
	if r.Empty() {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Dx()), float64(r.Dy()))
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorScale.ScaleWithColor(c)
	s.img.DrawImage(s.shared.pixel, op)
}

func (s *Screen) upload(img image.Image) *ebiten.Image {
	if e, ok := img.(*ebiten.Image); ok {
		return e
	}
	return s.shared.uploads.get(img, func(img image.Image) *ebiten.Image {
		return ebiten.NewImageFromImage(img)
	})
}

// Retain frees the textures of images no card in cards shows anymore.
func (s *Screen) Retain(cards []*board.Card) {
	if n := s.shared.uploads.retain(liveImages(cards)); n > 0 {
		logger.Debug("released textures", "count", n, "kept", s.shared.uploads.len())
	}
}

func (s *Screen) DrawImage(img image.Image, bb cp.BB) {
	r := board.Snap(bb)
	src := s.upload(img)
	sb := src.Bounds()
	if r.Empty() || sb.Empty() {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Dx())/float64(sb.Dx()), float64(r.Dy())/float64(sb.Dy()))
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.Filter = ebiten.FilterLinear
	s.img.DrawImage(src, op)
}

func (s *Screen) DrawText(str string, cx, cy float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(math.Floor(cx+0.5), math.Floor(cy+0.5))
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(c)
	text.Draw(s.img, str, s.shared.face, op)
}
