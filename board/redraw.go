package board

import (
	"image"

	"github.com/jakecoffman/cp"
	"github.com/oklog/ulid/v2"
)

// Redrawer paints cards onto a surface, either the whole canvas or only the
// region a dragged card has dirtied.
type Redrawer struct {
	surface Surface

	// Incremental enables dirty-region repaints; when false every request
	// becomes a full repaint.
	Incremental bool

	last map[ulid.ULID]cp.BB
}

func NewRedrawer(s Surface) *Redrawer {
	return &Redrawer{
		surface:     s,
		Incremental: true,
		last:        make(map[ulid.ULID]cp.BB),
	}
}

// SetSurface swaps the target, e.g. after a resize. The next request is
// always a full repaint.
func (r *Redrawer) SetSurface(s Surface) {
	r.surface = s
	clear(r.last)
}

// Repaint clears the whole surface and paints every card bottom to top.
func (r *Redrawer) Repaint(cards []*Card) {
	w, h := r.surface.Size()
	r.surface.Clear(image.Rect(0, 0, w, h))
	clear(r.last)
	for _, c := range cards {
		c.Draw(r.surface)
		r.last[c.ID] = c.Bounds()
	}
}

// RepaintMoved repaints the area touched by moved between its last painted
// position and its current one.
func (r *Redrawer) RepaintMoved(cards []*Card, moved *Card) {
	prev, ok := r.last[moved.ID]
	if !r.Incremental || !ok {
		r.Repaint(cards)
		return
	}

	dirty := pad(prev.Merge(moved.Bounds()), moved.style.Padding)
	w, h := r.surface.Size()
	rect := SnapOut(dirty).Intersect(image.Rect(0, 0, w, h))
	if rect.Empty() {
		r.last[moved.ID] = moved.Bounds()
		return
	}
	r.surface.Clear(rect)

	clipped := r.surface.Clip(rect)
	for _, i := range Closure(cards, dirty) {
		cards[i].Draw(clipped)
		r.last[cards[i].ID] = cards[i].Bounds()
	}
	r.last[moved.ID] = moved.Bounds()
}

// Closure returns, in sequence order, the indices of every card whose padded
// bounds reach dirty, plus every card transitively overlapping one of those.
func Closure(cards []*Card, dirty cp.BB) []int {
	in := make([]bool, len(cards))
	work := make([]int, 0, len(cards))
	for i, c := range cards {
		if c.PaintBounds().Intersects(dirty) {
			in[i] = true
			work = append(work, i)
		}
	}
	for len(work) > 0 {
		cur := cards[work[len(work)-1]].PaintBounds()
		work = work[:len(work)-1]
		for j, c := range cards {
			if in[j] || !c.PaintBounds().Intersects(cur) {
				continue
			}
			in[j] = true
			work = append(work, j)
		}
	}

	out := make([]int, 0, len(cards))
	for i, ok := range in {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
