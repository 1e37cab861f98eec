package board

import (
	"context"
	"image"
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/cardboard/project"
)

// Surface is the drawing target cards paint onto. Coordinates are canvas
// pixels; implementations snap float rectangles with Snap.
type Surface interface {
	Size() (w, h int)
	// Clear resets r to the background color.
	Clear(r image.Rectangle)
	// Clip returns a surface that only touches pixels inside r.
	Clip(r image.Rectangle) Surface
	FillRect(bb cp.BB, c color.Color)
	// DrawImage scales img into bb.
	DrawImage(img image.Image, bb cp.BB)
	// DrawText draws s centered on (cx, cy).
	DrawText(s string, cx, cy float64, c color.Color)
}

// Painter receives repaint requests from the board.
type Painter interface {
	Repaint(cards []*Card)
	RepaintMoved(cards []*Card, moved *Card)
}

// Generator produces images and prompt variations.
type Generator interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
	// PromptVariations returns at least five entries; index 0 is the source
	// prompt.
	PromptVariations(ctx context.Context, prompt string) ([]string, error)
}

// Persister stores a snapshot of the board under a project id.
type Persister interface {
	Save(ctx context.Context, id string, cards []project.Card) error
}

// Loader reads a stored project; it returns project.ErrNotFound when the
// project does not exist.
type Loader interface {
	Load(ctx context.Context, id string) (*project.Project, error)
}

// ImageSource resolves a stored image reference into pixels.
type ImageSource interface {
	Open(ctx context.Context, src string) (image.Image, error)
}

type Tooltip interface {
	Show(text string, x, y float64)
	Hide()
}

// Notifier surfaces non-blocking messages to the user.
type Notifier interface {
	Notify(msg string)
}

type nopPainter struct{}

func (nopPainter) Repaint([]*Card)              {}
func (nopPainter) RepaintMoved([]*Card, *Card) {}

type nopTooltip struct{}

func (nopTooltip) Show(string, float64, float64) {}
func (nopTooltip) Hide()                         {}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}
