package board

import (
	"crypto/rand"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/oklog/ulid/v2"
)

// Image is a card's image reference. Pixels stays nil until the image has
// been loaded; cards draw the placeholder in the meantime.
type Image struct {
	Src    string
	Pixels image.Image
}

// Ready reports whether the image can be painted.
func (i *Image) Ready() bool { return i != nil && i.Pixels != nil }

type Button int

const (
	ButtonNone Button = iota
	ButtonDuplicate
	ButtonRemove
	ButtonExpand
)

func (b Button) String() string {
	switch b {
	case ButtonDuplicate:
		return "duplicate"
	case ButtonRemove:
		return "remove"
	case ButtonExpand:
		return "expand"
	default:
		return "none"
	}
}

var (
	stampMu   sync.Mutex
	lastStamp time.Time
)

// stamp returns a strictly increasing timestamp so creation order is total
// even when the wall clock is coarse.
func stamp() time.Time {
	stampMu.Lock()
	defer stampMu.Unlock()
	now := time.Now().UTC()
	if !now.After(lastStamp) {
		now = lastStamp.Add(time.Nanosecond)
	}
	lastStamp = now
	return now
}

func newID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), rand.Reader)
}

// Card is one placed image with its prompt.
type Card struct {
	ID ulid.ULID

	X, Y         float64
	W, H         float64
	ImageSize    float64
	ButtonHeight float64

	Image    *Image
	Prompt   string
	Created  time.Time
	Selected bool

	style *Style
}

// NewCard creates an unselected card at (x, y) with a pending image.
func NewCard(x, y float64, style *Style) *Card {
	c := &Card{
		ID:      newID(),
		X:       x,
		Y:       y,
		Image:   &Image{},
		Created: stamp(),
	}
	c.setStyle(style)
	return c
}

func (c *Card) setStyle(style *Style) {
	if style == nil {
		style = DefaultStyle()
	}
	c.style = style
	c.W = style.Width()
	c.H = style.Height()
	c.ImageSize = style.ImageSize
	c.ButtonHeight = style.ButtonHeight
}

// Bounds is the card rectangle.
func (c *Card) Bounds() cp.BB { return rectOf(c.X, c.Y, c.W, c.H) }

// PaintBounds is the card rectangle grown by the style padding; everything
// Draw touches lies inside it.
func (c *Card) PaintBounds() cp.BB { return pad(c.Bounds(), c.style.Padding) }

// IsInside reports whether (px, py) lies in the closed card rectangle.
func (c *Card) IsInside(px, py float64) bool {
	return contains(c.Bounds(), px, py)
}

// overlayRect is the button overlay in card-local coordinates.
func (c *Card) overlayRect() cp.BB {
	w := c.W * c.style.OverlayWidth
	h := c.ButtonHeight * c.style.OverlayHeight
	x := c.W - w - c.style.OverlayInset
	y := c.ImageSize - h - c.style.OverlayInset
	return rectOf(x, y, w, h)
}

// ButtonAt resolves which overlay button, if any, is under (px, py).
func (c *Card) ButtonAt(px, py float64) Button {
	lx, ly := px-c.X, py-c.Y
	o := c.overlayRect()
	if !contains(o, lx, ly) {
		return ButtonNone
	}
	third := (o.R - o.L) / 3
	switch {
	case lx < o.L+third:
		return ButtonDuplicate
	case lx < o.L+2*third:
		return ButtonRemove
	default:
		return ButtonExpand
	}
}

// Clone returns a copy offset by the style's clone offset, sharing the image
// reference and prompt but with its own identity and creation time.
func (c *Card) Clone() *Card {
	d := c.style.CloneOffset
	n := NewCard(c.X+d, c.Y+d, c.style)
	n.Image = c.Image
	n.Prompt = c.Prompt
	return n
}

func (c *Card) SetSelected(selected bool) { c.Selected = selected }

// Draw paints the card. It never mutates the card.
func (c *Card) Draw(s Surface) {
	st := c.style
	b := c.Bounds()

	if c.Selected {
		// glow rings fade outwards, then a 3px accent border
		r, g, bl, _ := st.Accent.RGBA()
		for i := st.Glow; i >= 1; i-- {
			a := uint8(0x60 * (st.Glow - i + 1) / (st.Glow + 1))
			glow := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: a}
			strokeRect(s, pad(b, i), 1, glow)
		}
		s.FillRect(pad(b, 1), st.Accent)
		s.FillRect(pad(b, -2), st.CardFill)
	} else {
		s.FillRect(b, st.Border)
		s.FillRect(pad(b, -1), st.CardFill)
	}

	inner := s.Clip(Snap(b))
	imgBB := rectOf(c.X, c.Y, c.ImageSize, c.ImageSize)
	if c.Image.Ready() {
		inner.DrawImage(c.Image.Pixels, imgBB)
	} else {
		inner.FillRect(imgBB, st.Placeholder)
	}

	o := c.overlayRect()
	o = rectOf(c.X+o.L, c.Y+o.B, o.R-o.L, o.T-o.B)
	inner.FillRect(o, st.OverlayFill)
	third := (o.R - o.L) / 3
	cy := (o.B + o.T) / 2
	for i, glyph := range st.Glyphs {
		cx := o.L + third*float64(i) + third/2
		inner.DrawText(glyph, cx, cy, st.GlyphColor)
	}
}

func strokeRect(s Surface, bb cp.BB, w float64, c color.Color) {
	s.FillRect(cp.BB{L: bb.L, B: bb.B, R: bb.R, T: bb.B + w}, c)
	s.FillRect(cp.BB{L: bb.L, B: bb.T - w, R: bb.R, T: bb.T}, c)
	s.FillRect(cp.BB{L: bb.L, B: bb.B + w, R: bb.L + w, T: bb.T - w}, c)
	s.FillRect(cp.BB{L: bb.R - w, B: bb.B + w, R: bb.R, T: bb.T - w}, c)
}
