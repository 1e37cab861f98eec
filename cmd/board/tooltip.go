package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// tooltip shows the prompt of the card under the pointer. It is drawn on the
// window, never on the canvas, so it does not dirty any card.
type tooltip struct {
	face    text.Face
	text    string
	x, y    float64
	visible bool
}

func newTooltip(face text.Face) *tooltip {
	return &tooltip{face: face}
}

func (t *tooltip) Show(s string, x, y float64) {
	t.text = s
	t.x, t.y = x, y
	t.visible = true
}

func (t *tooltip) Hide() { t.visible = false }

const tooltipPad = 6

// Draw renders the tooltip below and to the right of the pointer, kept
// inside dst. offsetY is where the canvas starts in the window.
func (t *tooltip) Draw(dst *ebiten.Image, offsetY float64) {
	if !t.visible || t.text == "" {
		return
	}
	w, h := text.Measure(t.text, t.face, t.face.Metrics().HAscent+t.face.Metrics().HDescent)
	w += 2 * tooltipPad
	h += 2 * tooltipPad

	x := t.x + 12
	y := t.y + offsetY + 16
	b := dst.Bounds()
	if x+w > float64(b.Max.X) {
		x = float64(b.Max.X) - w
	}
	if y+h > float64(b.Max.Y) {
		y = t.y + offsetY - h - 4
	}

	vector.FillRect(dst, float32(x), float32(y), float32(w), float32(h), color.RGBA{32, 32, 32, 230}, false)
	vector.StrokeRect(dst, float32(x), float32(y), float32(w), float32(h), 1, color.RGBA{200, 200, 200, 255}, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(x+tooltipPad, y+tooltipPad)
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(dst, t.text, t.face, op)
}
