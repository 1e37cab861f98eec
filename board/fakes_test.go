package board_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/milk9111/cardboard/board"
	"github.com/milk9111/cardboard/project"
)

type countingPainter struct {
	full  int
	moved int

	// lastSelected is the card flagged as selected during the last full
	// repaint.
	lastSelected *board.Card
}

func (p *countingPainter) Repaint(cards []*board.Card) {
	p.full++
	p.lastSelected = nil
	for _, c := range cards {
		if c.Selected {
			p.lastSelected = c
		}
	}
}

func (p *countingPainter) RepaintMoved([]*board.Card, *board.Card) { p.moved++ }

var errBackend = errors.New("backend unavailable")

type fakeGenerator struct {
	variations []string
	varErr     error
	varHold    chan struct{}

	mu     sync.Mutex
	fail   map[string]bool
	hold   chan struct{}
	called []string
}

func (g *fakeGenerator) PromptVariations(ctx context.Context, prompt string) ([]string, error) {
	if g.varHold != nil {
		select {
		case <-g.varHold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.varErr != nil {
		return nil, g.varErr
	}
	return g.variations, nil
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, prompt string) (*board.Image, error) {
	g.mu.Lock()
	g.called = append(g.called, prompt)
	fail := g.fail[prompt]
	hold := g.hold
	g.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errBackend
	}
	return &board.Image{Src: "images/" + prompt + ".png", Pixels: swatch(8, 8)}, nil
}

type fakePersister struct {
	mu    sync.Mutex
	err   error
	saves [][]project.Card
}

func (p *fakePersister) Save(ctx context.Context, id string, cards []project.Card) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, cards)
	return p.err
}

func (p *fakePersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func (p *fakePersister) last() []project.Card {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saves) == 0 {
		return nil
	}
	return p.saves[len(p.saves)-1]
}

// gatedPersister holds its first save until gate is closed.
type gatedPersister struct {
	fakePersister
	gate chan struct{}
	once sync.Once
}

func (p *gatedPersister) Save(ctx context.Context, id string, cards []project.Card) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.fakePersister.Save(ctx, id, cards)
}

type fakeLoader struct {
	project *project.Project
	err     error
}

func (l *fakeLoader) Load(ctx context.Context, id string) (*project.Project, error) {
	return l.project, l.err
}

type fakeImages struct{}

func (fakeImages) Open(ctx context.Context, src string) (image.Image, error) {
	return swatch(4, 4), nil
}

type fakeTooltip struct {
	text    string
	visible bool
}

func (t *fakeTooltip) Show(text string, x, y float64) { t.text, t.visible = text, true }
func (t *fakeTooltip) Hide()                         { t.text, t.visible = "", false }

type fakeNotifier struct{ msgs []string }

func (n *fakeNotifier) Notify(msg string) { n.msgs = append(n.msgs, msg) }

func swatch(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 0x80, 0xff})
		}
	}
	return img
}
