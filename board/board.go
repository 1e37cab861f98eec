package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/milk9111/cardboard/project"
	"github.com/oklog/ulid/v2"
)

var ErrNoSelection = errors.New("board: no card selected")

// Options wires a Board to its collaborators. Any nil collaborator disables
// the behavior that needs it.
type Options struct {
	Style     *Style
	Painter   Painter
	Generator Generator
	Persister Persister
	Loader    Loader
	Images    ImageSource
	Tooltip   Tooltip
	Notifier  Notifier

	// ProjectID names the project the board persists to.
	ProjectID string

	// Canvas size used by Rearrange.
	Width, Height float64

	Logger *log.Logger
}

// Board owns the ordered card sequence. Index 0 is painted first, the last
// card is on top and wins hit tests.
//
// Every method must be called from the same goroutine (the UI goroutine).
// Background work posts its results to a queue that RunPending drains there.
type Board struct {
	cards []*Card

	selected ulid.ULID
	dragging ulid.ULID
	dragDX   float64
	dragDY   float64

	style     *Style
	painter   Painter
	gen       Generator
	persister Persister
	loader    Loader
	images    ImageSource
	tooltip   Tooltip
	notifier  Notifier

	projectID string
	width     float64
	height    float64

	// saving is set while a snapshot is being written; pendingSave holds the
	// newest snapshot taken meanwhile.
	saving      bool
	pendingSave []project.Card
	hasPending  bool

	logger *log.Logger

	tasks  chan func()
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func New(opts Options) *Board {
	b := &Board{
		style:     opts.Style,
		painter:   opts.Painter,
		gen:       opts.Generator,
		persister: opts.Persister,
		loader:    opts.Loader,
		images:    opts.Images,
		tooltip:   opts.Tooltip,
		notifier:  opts.Notifier,
		projectID: opts.ProjectID,
		width:     opts.Width,
		height:    opts.Height,
		logger:    opts.Logger,
		tasks:     make(chan func(), 64),
	}
	if b.style == nil {
		b.style = DefaultStyle()
	}
	if b.painter == nil {
		b.painter = nopPainter{}
	}
	if b.tooltip == nil {
		b.tooltip = nopTooltip{}
	}
	if b.notifier == nil {
		b.notifier = nopNotifier{}
	}
	if b.logger == nil {
		b.logger = log.WithPrefix("board")
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	return b
}

// Cards returns the card sequence. Callers must not modify the slice.
func (b *Board) Cards() []*Card { return b.cards }

func (b *Board) Len() int { return len(b.cards) }

func (b *Board) Style() *Style { return b.style }

func (b *Board) ProjectID() string { return b.projectID }

// Selected returns the selected card or nil.
func (b *Board) Selected() *Card { return b.lookup(b.selected) }

// Dragging returns the card being dragged or nil.
func (b *Board) Dragging() *Card { return b.lookup(b.dragging) }

func (b *Board) lookup(id ulid.ULID) *Card {
	if id == (ulid.ULID{}) {
		return nil
	}
	if i := b.index(id); i >= 0 {
		return b.cards[i]
	}
	return nil
}

func (b *Board) index(id ulid.ULID) int {
	return slices.IndexFunc(b.cards, func(c *Card) bool { return c.ID == id })
}

func (b *Board) attached(c *Card) bool {
	return c != nil && b.index(c.ID) >= 0
}

// SetCanvasSize updates the size Rearrange packs into.
func (b *Board) SetCanvasSize(w, h float64) {
	b.width, b.height = w, h
}

// Add places a new card at (x, y) on top of the others.
func (b *Board) Add(x, y float64) *Card {
	c := NewCard(x, y, b.style)
	b.cards = append(b.cards, c)
	b.painter.Repaint(b.cards)
	return c
}

// Select marks c as the selected card, clearing the previous one.
func (b *Board) Select(c *Card) {
	if prev := b.Selected(); prev != nil {
		prev.SetSelected(false)
	}
	b.selected = ulid.ULID{}
	if c == nil {
		return
	}
	c.SetSelected(true)
	b.selected = c.ID
}

// hit returns the index of the topmost card containing (x, y), or -1.
func (b *Board) hit(x, y float64) int {
	for i := len(b.cards) - 1; i >= 0; i-- {
		if b.cards[i].IsInside(x, y) {
			return i
		}
	}
	return -1
}

// PointerDown handles a press at canvas position (x, y).
func (b *Board) PointerDown(x, y float64) {
	i := b.hit(x, y)
	if i < 0 {
		return
	}
	c := b.cards[i]
	b.Select(c)

	switch c.ButtonAt(x, y) {
	case ButtonDuplicate:
		b.Duplicate(c)
	case ButtonRemove:
		b.Remove(c)
	case ButtonExpand:
		b.painter.Repaint(b.cards)
		b.Expand(c)
	default:
		b.dragging = c.ID
		b.dragDX = x - c.X
		b.dragDY = y - c.Y
		b.cards = append(slices.Delete(b.cards, i, i+1), c)
		b.painter.Repaint(b.cards)
	}
}

// PointerMove drags the active card and updates the hover tooltip.
func (b *Board) PointerMove(x, y float64) {
	if c := b.Dragging(); c != nil {
		c.X = x - b.dragDX
		c.Y = y - b.dragDY
		b.painter.RepaintMoved(b.cards, c)
	}

	if i := b.hit(x, y); i >= 0 && b.cards[i].Prompt != "" {
		b.tooltip.Show(b.cards[i].Prompt, x, y)
	} else {
		b.tooltip.Hide()
	}
}

// PointerUp ends a drag. The selection is kept.
func (b *Board) PointerUp() {
	b.dragging = ulid.ULID{}
	b.Save()
}

// PointerLeave behaves like PointerUp when the pointer exits the canvas.
func (b *Board) PointerLeave() {
	b.dragging = ulid.ULID{}
	b.tooltip.Hide()
	b.Save()
}

// Duplicate puts a clone of c on top of the board.
func (b *Board) Duplicate(c *Card) *Card {
	n := c.Clone()
	b.cards = append(b.cards, n)
	b.painter.Repaint(b.cards)
	b.Save()
	return n
}

// Remove deletes c and drops any selection or drag that pointed at it.
func (b *Board) Remove(c *Card) {
	i := b.index(c.ID)
	if i < 0 {
		return
	}
	b.cards = slices.Delete(b.cards, i, i+1)
	if b.selected == c.ID {
		b.selected = ulid.ULID{}
	}
	if b.dragging == c.ID {
		b.dragging = ulid.ULID{}
	}
	c.SetSelected(false)
	b.painter.Repaint(b.cards)
	b.Save()
}

// RemoveSelected removes the selected card.
func (b *Board) RemoveSelected() error {
	c := b.Selected()
	if c == nil {
		return ErrNoSelection
	}
	b.Remove(c)
	return nil
}

// Rearrange packs every card from the bottom-left corner, oldest first.
func (b *Board) Rearrange() {
	Pack(b.cards, b.width, b.height, b.style.Margin, b.style.SideMargin)
	b.painter.Repaint(b.cards)
	b.Save()
}

// ApplyStyle switches every card to style and repaints.
func (b *Board) ApplyStyle(style *Style) error {
	if err := style.Validate(); err != nil {
		return err
	}
	b.style = style
	for _, c := range b.cards {
		c.setStyle(style)
	}
	b.painter.Repaint(b.cards)
	return nil
}

// GeneratePrompt asks the generator for an image of text and puts it on the
// card that is selected now.
func (b *Board) GeneratePrompt(text string) error {
	if text == "" {
		return nil
	}
	c := b.Selected()
	if c == nil {
		b.logger.Warn("no card selected to update", "prompt", text)
		return ErrNoSelection
	}
	if b.gen == nil {
		return fmt.Errorf("board: generate: no generator configured")
	}

	b.async(func(ctx context.Context) func() {
		img, err := b.gen.GenerateImage(ctx, text)
		if err != nil {
			return func() {
				b.logger.Error("generate image", "card", c.ID, "prompt", text, "err", err)
				b.notifier.Notify("image generation failed")
			}
		}
		return func() {
			if b.setImage(c, img, text) {
				b.Save()
			}
		}
	})
	return nil
}

// setImage applies a generated image. It reports false when c has left the
// board in the meantime.
func (b *Board) setImage(c *Card, img *Image, prompt string) bool {
	if !b.attached(c) {
		b.logger.Debug("dropping image for removed card", "card", c.ID)
		return false
	}
	c.Image = img
	c.Prompt = prompt
	if !img.Ready() && img.Src != "" {
		b.loadImage(img)
	}
	b.painter.Repaint(b.cards)
	return true
}

// loadImage fetches the pixels for img in the background.
func (b *Board) loadImage(img *Image) {
	if b.images == nil {
		return
	}
	src := img.Src
	b.async(func(ctx context.Context) func() {
		px, err := b.images.Open(ctx, src)
		if err != nil {
			return func() {
				b.logger.Error("load image", "src", src, "err", err)
			}
		}
		return func() {
			if img.Src != src {
				return
			}
			img.Pixels = px
			b.painter.Repaint(b.cards)
		}
	})
}

// Load replaces the board with the stored project. A project that does not
// exist yet, or an unusable id, starts the board with one default card. Any
// other error also falls back to the default card and is returned.
func (b *Board) Load(ctx context.Context) error {
	b.cards = nil
	b.selected = ulid.ULID{}
	b.dragging = ulid.ULID{}

	var (
		p   *project.Project
		err error
	)
	if b.loader == nil {
		err = project.ErrNotFound
	} else {
		p, err = b.loader.Load(ctx, b.projectID)
	}
	switch {
	case errors.Is(err, project.ErrNotFound), errors.Is(err, project.ErrInvalidID):
		b.logger.Info("starting new project", "project", b.projectID)
		b.addDefault()
		return nil
	case err != nil:
		b.logger.Error("load project", "project", b.projectID, "err", err)
		b.notifier.Notify("could not load project")
		b.addDefault()
		return err
	}

	for _, rec := range p.Cards {
		c := NewCard(rec.X, rec.Y, b.style)
		c.Prompt = rec.Prompt
		if !rec.CreationDate.IsZero() {
			c.Created = rec.CreationDate
		}
		if rec.ImageSrc != "" {
			c.Image = &Image{Src: rec.ImageSrc}
			b.loadImage(c.Image)
		}
		b.cards = append(b.cards, c)
	}
	if n := len(b.cards); n > 0 {
		b.Select(b.cards[n-1])
	}
	b.logger.Info("loaded project", "project", b.projectID, "cards", len(b.cards))
	b.painter.Repaint(b.cards)
	return nil
}

// addDefault starts the board with one selected card at the default position.
func (b *Board) addDefault() {
	c := NewCard(b.style.DefaultX, b.style.DefaultY, b.style)
	b.cards = append(b.cards, c)
	b.Select(c)
	b.painter.Repaint(b.cards)
}

// Snapshot returns the stored form of every card in sequence order.
func (b *Board) Snapshot() []project.Card {
	out := make([]project.Card, 0, len(b.cards))
	for _, c := range b.cards {
		rec := project.Card{
			X:            c.X,
			Y:            c.Y,
			Prompt:       c.Prompt,
			CreationDate: c.Created,
		}
		if c.Image != nil {
			rec.ImageSrc = c.Image.Src
		}
		out = append(out, rec)
	}
	return out
}

// Save persists a snapshot in the background. Failures are logged and
// reported through the notifier; the board itself is never affected.
//
// At most one write is in flight. Snapshots taken while it runs replace each
// other and the newest is written once it finishes, so the store never ends
// up behind the board.
func (b *Board) Save() {
	if b.persister == nil || b.projectID == "" {
		return
	}
	b.pendingSave = b.Snapshot()
	b.hasPending = true
	if !b.saving {
		b.flushSave()
	}
}

func (b *Board) flushSave() {
	id := b.projectID
	snap := b.pendingSave
	b.pendingSave, b.hasPending = nil, false
	b.saving = true
	b.async(func(ctx context.Context) func() {
		err := b.persister.Save(ctx, id, snap)
		return func() {
			b.saving = false
			if err != nil {
				b.logger.Error("save project", "project", id, "err", err)
				b.notifier.Notify("saving failed, changes are kept in memory")
			}
			if b.hasPending {
				b.flushSave()
			}
		}
	})
}

// async runs work on a new goroutine. The continuation it returns, if any,
// is queued for RunPending.
func (b *Board) async(work func(ctx context.Context) func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if next := work(b.ctx); next != nil {
			b.post(next)
		}
	}()
}

// post queues fn for the UI goroutine. The task holds the wait group until
// it has run so Wait also covers work the continuation starts.
func (b *Board) post(fn func()) {
	b.wg.Add(1)
	select {
	case b.tasks <- fn:
	case <-b.ctx.Done():
		b.wg.Done()
	}
}

func (b *Board) run(fn func()) {
	defer b.wg.Done()
	fn()
}

// RunPending runs every queued continuation and reports how many ran.
func (b *Board) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-b.tasks:
			b.run(fn)
			n++
		default:
			return n
		}
	}
}

// Wait runs continuations until no background work is left or ctx ends.
func (b *Board) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	for {
		select {
		case fn := <-b.tasks:
			b.run(fn)
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels outstanding background work. Queued continuations are
// dropped.
func (b *Board) Close() {
	b.cancel()
}
