package render

import (
	"image"

	"github.com/charmbracelet/log"
	"github.com/milk9111/cardboard/board"
)

var logger = log.WithPrefix("render")

// textureCache maps decoded images to their uploaded form. Entries live until
// retain is called without them.
type textureCache[T any] struct {
	entries map[image.Image]T
	release func(T)
}

func newTextureCache[T any](release func(T)) *textureCache[T] {
	return &textureCache[T]{entries: make(map[image.Image]T), release: release}
}

func (c *textureCache[T]) get(img image.Image, upload func(image.Image) T) T {
	if t, ok := c.entries[img]; ok {
		return t
	}
	t := upload(img)
	c.entries[img] = t
	return t
}

// retain releases every entry whose image is not in live and reports how
// many were dropped.
func (c *textureCache[T]) retain(live map[image.Image]bool) int {
	n := 0
	for img, t := range c.entries {
		if live[img] {
			continue
		}
		if c.release != nil {
			c.release(t)
		}
		delete(c.entries, img)
		n++
	}
	return n
}

func (c *textureCache[T]) len() int { return len(c.entries) }

// liveImages is the set of pixels currently shown by cards.
func liveImages(cards []*board.Card) map[image.Image]bool {
	live := make(map[image.Image]bool, len(cards))
	for _, c := range cards {
		if c.Image.Ready() {
			live[c.Image.Pixels] = true
		}
	}
	return live
}
