package render

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
)

// Images resolves card image references ("images/<name>.png") against a
// directory and caches the decoded pixels by reference.
type Images struct {
	dir string

	mu    sync.Mutex
	cache map[string]image.Image
}

func NewImages(dir string) *Images {
	return &Images{dir: dir, cache: make(map[string]image.Image)}
}

// Register stores img under src, e.g. right after it was generated.
func (l *Images) Register(src string, img image.Image) {
	if src == "" || img == nil {
		return
	}
	l.mu.Lock()
	l.cache[src] = img
	l.mu.Unlock()
}

func (l *Images) cached(src string) image.Image {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache[src]
}

// Open returns the pixels for src, reading them from disk on first use.
func (l *Images) Open(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("render: empty image reference")
	}
	if img := l.cached(src); img != nil {
		return img, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := cleanImagePath(src)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, p := range l.candidates(rel) {
		f, err := os.Open(p)
		if err != nil {
			lastErr = err
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("render: decode %s: %w", p, err)
		}
		l.Register(src, img)
		return img, nil
	}
	return nil, fmt.Errorf("render: open image %s: %w", src, lastErr)
}

func (l *Images) candidates(rel string) []string {
	return []string{
		filepath.Join(l.dir, filepath.FromSlash(rel)),
		filepath.Join(l.dir, path.Base(rel)),
	}
}

// cleanImagePath strips the URL-ish prefixes stored references carry and
// returns a slash path relative to the images directory. References that
// would leave the directory are rejected.
func cleanImagePath(src string) (string, error) {
	s := strings.ReplaceAll(src, "\\", "/")
	s = strings.TrimPrefix(s, "/")
	if after, ok := strings.CutPrefix(s, "images/"); ok {
		s = after
	}
	s = path.Clean(s)
	if s == "." || s == ".." || strings.HasPrefix(s, "../") || path.IsAbs(s) || filepath.VolumeName(s) != "" {
		return "", fmt.Errorf("render: image reference %q outside the images directory", src)
	}
	return s, nil
}
