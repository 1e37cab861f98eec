package board_test

import (
	"testing"

	"github.com/milk9111/cardboard/board"
)

func TestCardIsInsideClosed(t *testing.T) {
	c := board.NewCard(10, 20, nil)
	cases := []struct {
		name   string
		x, y   float64
		inside bool
	}{
		{"top_left_corner", 10, 20, true},
		{"bottom_right_corner", 10 + c.W, 20 + c.H, true},
		{"center", 10 + c.W/2, 20 + c.H/2, true},
		{"left_of", 9.999, 30, false},
		{"below", 30, 20 + c.H + 0.001, false},
		{"above", 30, 19, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.IsInside(tc.x, tc.y); got != tc.inside {
				t.Fatalf("IsInside(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.inside)
			}
		})
	}
}

func TestCardButtonAtThirds(t *testing.T) {
	st := board.DefaultStyle()
	c := board.NewCard(0, 0, st)

	// overlay in card-local coordinates
	w := c.W * st.OverlayWidth
	h := c.ButtonHeight * st.OverlayHeight
	left := c.W - w - st.OverlayInset
	top := c.ImageSize - h - st.OverlayInset
	third := ((left + w) - left) / 3
	midY := top + h/2

	cases := []struct {
		name string
		x, y float64
		want board.Button
	}{
		{"left_edge", left, midY, board.ButtonDuplicate},
		{"first_third", left + third/2, midY, board.ButtonDuplicate},
		{"first_boundary", left + third, midY, board.ButtonRemove},
		{"middle", left + 1.5*third, midY, board.ButtonRemove},
		{"second_boundary", left + 2*third, midY, board.ButtonExpand},
		{"right_edge", left + w, midY, board.ButtonExpand},
		{"top_edge", left + 1, top, board.ButtonDuplicate},
		{"bottom_edge", left + w - 1, top + h, board.ButtonExpand},
		{"left_of_overlay", left - 0.5, midY, board.ButtonNone},
		{"right_of_overlay", left + w + 0.5, midY, board.ButtonNone},
		{"above_overlay", left + third, top - 0.5, board.ButtonNone},
		{"image_center", c.W / 2, c.ImageSize / 2, board.ButtonNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.ButtonAt(tc.x, tc.y); got != tc.want {
				t.Fatalf("ButtonAt(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}

	// moved cards resolve in their own local space
	c.X, c.Y = 250, -40
	if got := c.ButtonAt(250+left+third/2, -40+midY); got != board.ButtonDuplicate {
		t.Fatalf("moved card ButtonAt = %v, want duplicate", got)
	}
}

func TestCardClone(t *testing.T) {
	st := board.DefaultStyle()
	c := board.NewCard(40, 60, st)
	c.Prompt = "a cat"
	c.SetSelected(true)

	n := c.Clone()
	if n.X != c.X+st.CloneOffset || n.Y != c.Y+st.CloneOffset {
		t.Fatalf("clone at (%v,%v), want (%v,%v)", n.X, n.Y, c.X+st.CloneOffset, c.Y+st.CloneOffset)
	}
	if n.Prompt != c.Prompt {
		t.Fatalf("clone prompt = %q", n.Prompt)
	}
	if n.Image != c.Image {
		t.Fatalf("clone should share the image reference")
	}
	if !n.Created.After(c.Created) {
		t.Fatalf("clone created %v not after %v", n.Created, c.Created)
	}
	if n.Selected {
		t.Fatalf("clone should not be selected")
	}
	if n.ID == c.ID {
		t.Fatalf("clone reuses the source id")
	}
}

func TestCreationStampsIncrease(t *testing.T) {
	prev := board.NewCard(0, 0, nil)
	for i := 0; i < 1000; i++ {
		c := board.NewCard(0, 0, nil)
		if !c.Created.After(prev.Created) {
			t.Fatalf("stamp %d not increasing: %v then %v", i, prev.Created, c.Created)
		}
		prev = c
	}
}

func TestStyleValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*board.Style)
		ok     bool
	}{
		{"default", func(*board.Style) {}, true},
		{"zero_image", func(s *board.Style) { s.ImageSize = 0 }, false},
		{"padding_below_glow", func(s *board.Style) { s.Padding = s.Glow + 1 }, false},
		{"overlay_too_wide", func(s *board.Style) { s.OverlayWidth = 1.5 }, false},
		{"negative_strip", func(s *board.Style) { s.StripHeight = -1 }, false},
		{"with_strip", func(s *board.Style) { s.StripHeight = 24 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := board.DefaultStyle()
			tc.mutate(s)
			err := s.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
