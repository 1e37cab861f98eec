package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/cardboard/board"
	"github.com/milk9111/cardboard/config"
	"github.com/milk9111/cardboard/generate"
	"github.com/milk9111/cardboard/project"
	"github.com/milk9111/cardboard/render"
	"golang.design/x/clipboard"
)

// promptDebounce is how long the prompt input must stay unchanged before the
// typed text is sent to the generator.
const promptDebounce = 500 * time.Millisecond

type Game struct {
	cfg    *config.Config
	logger *log.Logger

	board   *board.Board
	redraw  *board.Redrawer
	canvas  *render.Screen
	ui      *ebitenui.UI
	toolbar *Toolbar
	tooltip *tooltip
	watcher *config.Watcher

	clipboardOK bool

	outW, outH int

	pointerIn     bool
	lastMX        int
	lastMY        int
	pending       string
	pendingAt     time.Time
	lastSubmitted string
}

func NewGame(cfg *config.Config, configPath string, store project.Store, id string) (*Game, error) {
	gen, err := generate.New(cfg.Generator, cfg.Store.ImagesDir)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:    cfg,
		logger: log.WithPrefix("game"),
		lastMX: -1,
		lastMY: -1,
	}

	g.canvas = render.NewScreen(cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.Background.Color)
	g.redraw = board.NewRedrawer(g.canvas)
	g.redraw.Incremental = cfg.Redraw.Incremental

	g.ui, g.toolbar = buildUI(toolbarActions{
		onRearrange:     func() { g.board.Rearrange() },
		onSave:          g.save,
		onPromptChanged: g.promptChanged,
		onPromptSubmit:  g.submitPrompt,
	})
	g.tooltip = newTooltip(loadFace(13))

	g.board = board.New(board.Options{
		Style:     cfg.Style(),
		Painter:   canvasPainter{g},
		Generator: gen,
		Persister: store,
		Loader:    store,
		Images:    render.NewImages(cfg.Store.ImagesDir),
		Tooltip:   g.tooltip,
		Notifier:  g.toolbar,
		ProjectID: id,
		Width:     float64(cfg.Canvas.Width),
		Height:    float64(cfg.Canvas.Height),
	})
	if err := g.board.Load(context.Background()); err != nil {
		g.logger.Warn("project could not be loaded, starting empty", "project", id, "err", err)
	}

	if err := clipboard.Init(); err != nil {
		g.logger.Warn("clipboard unavailable", "err", err)
	} else {
		g.clipboardOK = true
	}

	if configPath != "" {
		w, err := config.Watch(configPath)
		if err != nil {
			g.logger.Warn("config will not be reloaded", "path", configPath, "err", err)
		} else {
			g.watcher = w
		}
	}

	return g, nil
}

// Close stops background work and waits briefly for pending saves.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.board.Wait(ctx); err != nil {
		g.logger.Warn("background work still running on exit", "err", err)
	}
	g.board.Close()
}

func (g *Game) Update() error {
	g.board.RunPending()
	g.applyResize()
	g.pollConfig()

	// If the user is typing in the prompt, suppress hotkeys.
	typing := false
	if fw := g.ui.GetFocusedWidget(); fw != nil {
		if _, ok := fw.(*widget.TextInput); ok {
			typing = true
		}
	}
	if !typing {
		g.hotkeys()
	}

	g.ui.Update()
	g.pointer()
	g.flushPrompt()
	return nil
}

func ctrlPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func (g *Game) hotkeys() {
	ctrl := ctrlPressed()

	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if err := g.board.RemoveSelected(); err != nil {
			g.logger.Debug("nothing to remove", "err", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && !ctrl {
		g.board.Rearrange()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) && ctrl {
		g.save()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && ctrl {
		g.copyPrompt()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) && ctrl {
		g.pastePrompt()
	}
}

func (g *Game) save() {
	g.board.Save()
	g.toolbar.Notify("saved " + g.board.ProjectID())
}

func (g *Game) copyPrompt() {
	c := g.board.Selected()
	if !g.clipboardOK || c == nil || c.Prompt == "" {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(c.Prompt))
	g.toolbar.Notify("prompt copied")
}

func (g *Game) pastePrompt() {
	if !g.clipboardOK {
		return
	}
	s := strings.TrimSpace(string(clipboard.Read(clipboard.FmtText)))
	if s == "" {
		return
	}
	g.toolbar.SetPromptText(s)
	g.submitPrompt(s)
}

func (g *Game) promptChanged(text string) {
	g.pending = strings.TrimSpace(text)
	g.pendingAt = time.Now()
}

func (g *Game) flushPrompt() {
	if g.pending == "" || time.Since(g.pendingAt) < promptDebounce {
		return
	}
	text := g.pending
	g.pending = ""
	if text == g.lastSubmitted {
		return
	}
	g.submitPrompt(text)
}

// submitPrompt sends text to the selected card straight away.
func (g *Game) submitPrompt(text string) {
	text = strings.TrimSpace(text)
	g.pending = ""
	if text == "" {
		return
	}
	g.lastSubmitted = text
	err := g.board.GeneratePrompt(text)
	switch {
	case errors.Is(err, board.ErrNoSelection):
		g.toolbar.Notify("select a card first")
	case err != nil:
		g.logger.Error("generate", "prompt", text, "err", err)
		g.toolbar.Notify(err.Error())
	default:
		g.toolbar.Notify("generating...")
	}
}

// pointer translates window mouse state into board pointer events. The
// canvas starts below the toolbar.
func (g *Game) pointer() {
	mx, my := ebiten.CursorPosition()
	w, h := g.canvas.Size()
	x, y := float64(mx), float64(my-toolbarHeight)

	inside := mx >= 0 && mx < w && my >= toolbarHeight && my-toolbarHeight < h
	if !inside {
		if g.pointerIn {
			g.pointerIn = false
			g.board.PointerLeave()
		}
		return
	}
	g.pointerIn = true

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.board.PointerDown(x, y)
	}
	if mx != g.lastMX || my != g.lastMY {
		g.lastMX, g.lastMY = mx, my
		g.board.PointerMove(x, y)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.board.PointerUp()
	}
}

func (g *Game) pollConfig() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg := <-g.watcher.Configs:
		style := cfg.Style()
		if err := style.Validate(); err != nil {
			g.logger.Error("apply style", "err", err)
			g.toolbar.Notify("config rejected: " + err.Error())
			return
		}
		g.cfg = cfg
		log.SetLevel(cfg.LogLevel())
		g.redraw.Incremental = cfg.Redraw.Incremental
		w, h := g.canvas.Size()
		g.newCanvas(w, h)
		if err := g.board.ApplyStyle(style); err != nil {
			// keep the fresh canvas painted
			canvasPainter{g}.Repaint(g.board.Cards())
			g.logger.Error("apply style", "err", err)
			return
		}
		g.logger.Info("config reloaded")
		g.toolbar.Notify("config reloaded")
	case err := <-g.watcher.Errors:
		g.logger.Error("reload config", "err", err)
		g.toolbar.Notify("config error, keeping previous settings")
	default:
	}
}

// newCanvas replaces the offscreen canvas. The caller repaints.
func (g *Game) newCanvas(w, h int) {
	old := g.canvas
	g.canvas = render.NewScreen(w, h, g.cfg.Canvas.Background.Color)
	g.redraw.SetSurface(g.canvas)
	g.board.SetCanvasSize(float64(w), float64(h))
	old.Retain(nil)
	old.Image().Deallocate()
}

// canvasPainter repaints through the redrawer and frees textures of images
// that left the board after every full repaint.
type canvasPainter struct{ g *Game }

func (p canvasPainter) Repaint(cards []*board.Card) {
	p.g.redraw.Repaint(cards)
	p.g.canvas.Retain(cards)
}

func (p canvasPainter) RepaintMoved(cards []*board.Card, moved *board.Card) {
	p.g.redraw.RepaintMoved(cards, moved)
}

func (g *Game) applyResize() {
	w, h := g.outW, g.outH-toolbarHeight
	if w <= 0 || h <= 0 {
		return
	}
	if cw, ch := g.canvas.Size(); cw == w && ch == h {
		return
	}
	g.logger.Debug("resize canvas", "w", w, "h", h)
	g.newCanvas(w, h)
	canvasPainter{g}.Repaint(g.board.Cards())
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.Canvas.Background.Color)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, toolbarHeight)
	screen.DrawImage(g.canvas.Image(), op)

	g.ui.Draw(screen)
	g.tooltip.Draw(screen, toolbarHeight)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outW, g.outH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
