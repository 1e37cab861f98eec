package board

import (
	"sort"
)

// Pack lays cards out in rows from the bottom-left corner of the canvas,
// oldest first. Rows grow rightwards and stack upwards. Only positions are
// changed; the slice order (and so the z-order) is left alone.
func Pack(cards []*Card, canvasW, canvasH, margin, sideMargin float64) {
	if len(cards) == 0 {
		return
	}

	order := make([]*Card, len(cards))
	copy(order, cards)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Created.Before(order[j].Created)
	})

	x := sideMargin
	y := canvasH - order[0].H - sideMargin
	for _, c := range order {
		c.X, c.Y = x, y
		x += c.W + margin
		if x+c.W > canvasW {
			x = sideMargin
			y -= c.H + margin
		}
	}
}
