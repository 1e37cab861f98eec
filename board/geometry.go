package board

import (
	"image"
	"math"

	"github.com/jakecoffman/cp"
)

// Rectangles use cp.BB with canvas coordinates: L/B are the minimum x/y
// (top-left on screen) and R/T the maximum. All edges are inclusive.

func rectOf(x, y, w, h float64) cp.BB {
	return cp.BB{L: x, B: y, R: x + w, T: y + h}
}

func pad(bb cp.BB, p float64) cp.BB {
	return cp.BB{L: bb.L - p, B: bb.B - p, R: bb.R + p, T: bb.T + p}
}

func contains(bb cp.BB, x, y float64) bool {
	return bb.ContainsVect(cp.Vector{X: x, Y: y})
}

// SnapOut returns the smallest pixel rectangle covering bb.
func SnapOut(bb cp.BB) image.Rectangle {
	return image.Rect(
		int(math.Floor(bb.L)),
		int(math.Floor(bb.B)),
		int(math.Ceil(bb.R)),
		int(math.Ceil(bb.T)),
	)
}

// Snap rounds each edge of bb to the nearest pixel boundary. Surfaces use it
// so a shape covers the same pixels no matter how the target is clipped.
func Snap(bb cp.BB) image.Rectangle {
	round := func(v float64) int { return int(math.Floor(v + 0.5)) }
	return image.Rect(round(bb.L), round(bb.B), round(bb.R), round(bb.T))
}
