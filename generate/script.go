package generate

import (
	"context"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/cardboard/board"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

//go:embed scripts/*.tengo
var scriptsFS embed.FS

const defaultScript = "scripts/variations.tengo"

// LoadScript returns the script at path, or the embedded default when path
// is empty.
func LoadScript(path string) ([]byte, error) {
	if path == "" {
		return scriptsFS.ReadFile(defaultScript)
	}
	return os.ReadFile(path)
}

// Script is an offline Generator. A tengo script derives the variations and
// a tint from the prompt; images are flat swatches with the prompt written on
// them.
type Script struct {
	compiled *tengo.Compiled
	images   *ImageDir
	size     int
}

func NewScript(src []byte, images *ImageDir, size int) (*Script, error) {
	s := tengo.NewScript(src)
	_ = s.Add("prompt", "")
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("generate: compile script: %w", err)
	}
	if size <= 0 {
		size = 256
	}
	return &Script{compiled: compiled, images: images, size: size}, nil
}

type scriptResult struct {
	variations []string
	tint       color.RGBA
}

func (s *Script) run(ctx context.Context, prompt string) (*scriptResult, error) {
	// Compiled is not safe for concurrent runs
	c := s.compiled.Clone()
	if err := c.Set("prompt", prompt); err != nil {
		return nil, err
	}
	if err := c.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("generate: run script: %w", err)
	}

	res := &scriptResult{tint: color.RGBA{0x80, 0x80, 0x80, 0xff}}
	if c.IsDefined("variations") {
		for _, v := range c.Get("variations").Array() {
			if str, ok := v.(string); ok && strings.TrimSpace(str) != "" {
				res.variations = append(res.variations, strings.TrimSpace(str))
			}
		}
	}
	if c.IsDefined("tint") {
		if t := c.Get("tint").Array(); len(t) == 3 {
			rgb := [3]uint8{}
			for i, v := range t {
				if n, ok := v.(int64); ok {
					rgb[i] = uint8(n)
				}
			}
			res.tint = color.RGBA{rgb[0], rgb[1], rgb[2], 0xff}
		}
	}
	return res, nil
}

func (s *Script) PromptVariations(ctx context.Context, prompt string) ([]string, error) {
	res, err := s.run(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(res.variations) < variationCount {
		return nil, fmt.Errorf("%w: script returned %d", ErrTooFewVariations, len(res.variations))
	}
	return append([]string{prompt}, res.variations[:variationCount]...), nil
}

func (s *Script) GenerateImage(ctx context.Context, prompt string) (*board.Image, error) {
	res, err := s.run(ctx, prompt)
	if err != nil {
		return nil, err
	}
	img := swatch(s.size, res.tint, prompt)
	out, err := s.images.Save(img)
	if err != nil {
		return nil, err
	}
	logger.Debug("rendered swatch", "prompt", prompt, "src", out.Src)
	return out, nil
}

// swatch fills a square with a vertical gradient of tint and writes the
// prompt on it, wrapped to the width.
func swatch(size int, tint color.RGBA, prompt string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		k := 0.6 + 0.4*float64(y)/float64(size)
		row := color.RGBA{uint8(float64(tint.R) * k), uint8(float64(tint.G) * k), uint8(float64(tint.B) * k), 0xff}
		draw.Draw(img, image.Rect(0, y, size, y+1), image.NewUniform(row), image.Point{}, draw.Src)
	}

	ink := color.White
	if int(tint.R)+int(tint.G)+int(tint.B) > 3*0xa0 {
		ink = color.Black
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: basicfont.Face7x13}
	y := 20
	for _, line := range wrap(d, prompt, size-16) {
		d.Dot = fixed.P(8, y)
		d.DrawString(line)
		y += 15
		if y > size-4 {
			break
		}
	}
	return img
}

func wrap(d *font.Drawer, s string, width int) []string {
	var lines []string
	cur := ""
	for _, w := range strings.Fields(s) {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if cur != "" && d.MeasureString(next).Ceil() > width {
			lines = append(lines, cur)
			next = w
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
