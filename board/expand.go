package board

import (
	"context"
	"fmt"
)

// expandSlots is the placement order for variations 1..4.
var expandSlots = [4]struct {
	name   string
	dx, dy float64
}{
	{"top", 0, -1},
	{"bottom", 0, 1},
	{"left", -1, 0},
	{"right", 1, 0},
}

// Expand asks for four variations of src's prompt and surrounds src with a
// card for each: top, bottom, left, right. The cards appear as placeholders
// as soon as the variations arrive; each image is generated independently.
func (b *Board) Expand(src *Card) {
	if b.gen == nil {
		b.logger.Warn("expand without a generator", "card", src.ID)
		return
	}

	prompt := src.Prompt
	// used only if src is gone by the time the variations arrive
	x, y, w, h := src.X, src.Y, src.W, src.H
	b.async(func(ctx context.Context) func() {
		vars, err := b.gen.PromptVariations(ctx, prompt)
		if err == nil && len(vars) < 5 {
			err = fmt.Errorf("board: expand: got %d variations, need 5", len(vars))
		}
		if err != nil {
			return func() {
				b.logger.Error("prompt variations", "card", src.ID, "prompt", prompt, "err", err)
				b.notifier.Notify("could not expand card")
			}
		}
		return func() {
			// the source may have been dragged while the variations were
			// in flight
			if b.attached(src) {
				x, y, w, h = src.X, src.Y, src.W, src.H
			}
			b.placeExpansion(x, y, w, h, vars[1:5])
		}
	})
}

func (b *Board) placeExpansion(x, y, w, h float64, vars []string) {
	m := b.style.ExpandMargin
	added := make([]*Card, len(expandSlots))
	for i, s := range expandSlots {
		c := NewCard(x+s.dx*(w+m), y+s.dy*(h+m), b.style)
		added[i] = c
		b.cards = append(b.cards, c)
	}
	b.painter.Repaint(b.cards)

	for i, c := range added {
		variation := vars[i]
		b.logger.Debug("expand", "slot", expandSlots[i].name, "card", c.ID, "prompt", variation)
		b.async(func(ctx context.Context) func() {
			img, err := b.gen.GenerateImage(ctx, variation)
			if err != nil {
				return func() {
					b.logger.Error("generate image", "card", c.ID, "prompt", variation, "err", err)
				}
			}
			return func() {
				if b.setImage(c, img, variation) {
					b.Save()
				}
			}
		})
	}
	b.Save()
}
