package board_test

import (
	"testing"

	"github.com/milk9111/cardboard/board"
)

func TestPackRows(t *testing.T) {
	st := board.DefaultStyle()
	// room for three 144px cards per row
	canvasW, canvasH := 480.0, 600.0
	cards := make([]*board.Card, 7)
	for i := range cards {
		cards[i] = board.NewCard(float64(i*7), float64(i*3), st)
	}
	// shuffle the sequence so creation order differs from z-order
	seq := []*board.Card{cards[4], cards[0], cards[6], cards[2], cards[1], cards[5], cards[3]}
	before := append([]*board.Card(nil), seq...)

	board.Pack(seq, canvasW, canvasH, 10, 10)

	for i := range seq {
		if seq[i] != before[i] {
			t.Fatalf("Pack changed the sequence at %d", i)
		}
	}

	rowY := []float64{600 - 144 - 10, 600 - 144 - 10 - 154, 600 - 144 - 10 - 308}
	for i, c := range cards {
		wantX := 10 + float64(i%3)*154
		wantY := rowY[i/3]
		if c.X != wantX || c.Y != wantY {
			t.Fatalf("card %d at (%v,%v), want (%v,%v)", i, c.X, c.Y, wantX, wantY)
		}
	}
}

func TestPackDeterministicAndDisjoint(t *testing.T) {
	cases := []struct {
		name    string
		n       int
		canvasW float64
	}{
		{"single_column", 5, 144 + 20},
		{"wide", 12, 1000},
		{"odd_width", 9, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cards := make([]*board.Card, tc.n)
			for i := range cards {
				cards[i] = board.NewCard(0, 0, nil)
			}
			board.Pack(cards, tc.canvasW, 800, 10, 10)
			first := make([][2]float64, len(cards))
			for i, c := range cards {
				first[i] = [2]float64{c.X, c.Y}
			}

			board.Pack(cards, tc.canvasW, 800, 10, 10)
			for i, c := range cards {
				if c.X != first[i][0] || c.Y != first[i][1] {
					t.Fatalf("card %d moved on the second pack", i)
				}
			}

			for i := range cards {
				for j := i + 1; j < len(cards); j++ {
					if cards[i].Bounds().Intersects(cards[j].Bounds()) {
						t.Fatalf("cards %d and %d overlap after packing", i, j)
					}
				}
			}
		})
	}
}

func TestPackStableForEqualStamps(t *testing.T) {
	a := board.NewCard(0, 0, nil)
	b := board.NewCard(0, 0, nil)
	b.Created = a.Created

	board.Pack([]*board.Card{b, a}, 1000, 400, 10, 10)
	if b.X >= a.X {
		t.Fatalf("equal stamps should keep sequence order: b.X=%v a.X=%v", b.X, a.X)
	}
}

func TestRearrangeRepaintsAndPersists(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 4; i++ {
		h.b.Add(float64(i*40), 0)
	}
	full := h.painter.full
	h.b.Rearrange()
	h.wait(t)
	if h.painter.full != full+1 {
		t.Fatalf("expected one full repaint")
	}
	if h.persister.count() != 1 {
		t.Fatalf("expected a save after rearrange, got %d", h.persister.count())
	}
	if c := h.b.Cards()[0]; c.X != 10 || c.Y != 600-c.H-10 {
		t.Fatalf("oldest card at (%v,%v)", c.X, c.Y)
	}
}
