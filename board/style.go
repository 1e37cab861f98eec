package board

import (
	"fmt"
	"image/color"
)

// Style holds the layout constants and colors shared by every card on a board.
// Cards keep a pointer to it, so Draw and ButtonAt always agree on the overlay.
type Style struct {
	ImageSize    float64
	ButtonHeight float64
	StripHeight  float64

	// Overlay geometry: fractions of the card width and of ButtonHeight, plus
	// an inset from the right and bottom edges of the image region.
	OverlayWidth  float64
	OverlayHeight float64
	OverlayInset  float64

	CloneOffset  float64
	ExpandMargin float64

	Margin     float64
	SideMargin float64

	// Glow is how far the selection glow reaches outside the card bounds.
	// Padding is added around dirty boxes and must cover the glow.
	Glow    float64
	Padding float64

	DefaultX float64
	DefaultY float64

	Glyphs [3]string

	Background  color.Color
	CardFill    color.Color
	Border      color.Color
	Accent      color.Color
	OverlayFill color.Color
	GlyphColor  color.Color
	Placeholder color.Color
}

// DefaultStyle mirrors the last visual iteration of the board.
func DefaultStyle() *Style {
	return &Style{
		ImageSize:     144,
		ButtonHeight:  18,
		OverlayWidth:  0.4,
		OverlayHeight: 0.8,
		OverlayInset:  5,
		CloneOffset:   20,
		ExpandMargin:  10,
		Margin:        10,
		SideMargin:    10,
		Glow:          6,
		Padding:       10,
		DefaultX:      100,
		DefaultY:      100,
		Glyphs:        [3]string{"+", "-", "!"},
		Background:    color.RGBA{0xf4, 0xf4, 0xf4, 0xff},
		CardFill:      color.White,
		Border:        color.Black,
		Accent:        color.RGBA{0x00, 0x7a, 0xff, 0xff},
		OverlayFill:   color.RGBA{0, 0, 0, 0x80},
		GlyphColor:    color.White,
		Placeholder:   color.RGBA{0xc8, 0xc8, 0xd2, 0xff},
	}
}

// Width is the card width for this style.
func (s *Style) Width() float64 { return s.ImageSize }

// Height is the card height: the image square plus the optional strip.
func (s *Style) Height() float64 { return s.ImageSize + s.StripHeight }

// Validate reports the first inconsistent setting.
func (s *Style) Validate() error {
	switch {
	case s.ImageSize <= 0:
		return fmt.Errorf("board: style: image size must be positive, got %v", s.ImageSize)
	case s.StripHeight < 0:
		return fmt.Errorf("board: style: strip height must not be negative, got %v", s.StripHeight)
	case s.OverlayWidth <= 0 || s.OverlayWidth > 1:
		return fmt.Errorf("board: style: overlay width fraction out of range: %v", s.OverlayWidth)
	case s.OverlayHeight <= 0 || s.OverlayHeight*s.ButtonHeight > s.ImageSize:
		return fmt.Errorf("board: style: overlay height does not fit the image: %v", s.OverlayHeight)
	case s.OverlayInset < 0 || s.OverlayInset+s.OverlayWidth*s.ImageSize > s.ImageSize:
		return fmt.Errorf("board: style: overlay inset does not fit the image: %v", s.OverlayInset)
	case s.Glow < 0:
		return fmt.Errorf("board: style: glow must not be negative, got %v", s.Glow)
	case s.Padding < s.Glow+2:
		return fmt.Errorf("board: style: padding %v must be at least glow+2 (%v)", s.Padding, s.Glow+2)
	}
	return nil
}
