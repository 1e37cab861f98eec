package generate

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/milk9111/cardboard/board"
	"github.com/oklog/ulid/v2"
	_ "golang.org/x/image/webp"
)

// ImageDir writes generated images to a directory under unique names.
type ImageDir struct {
	dir string
}

func NewImageDir(dir string) (*ImageDir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("generate: create image dir: %w", err)
	}
	return &ImageDir{dir: dir}, nil
}

func (d *ImageDir) Dir() string { return d.dir }

func (d *ImageDir) name(ext string) string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String() + ext
}

// SaveBytes stores encoded image data as returned by a backend.
func (d *ImageDir) SaveBytes(data []byte) (*board.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("generate: decode image: %w", err)
	}
	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	name := d.name(ext)
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0644); err != nil {
		return nil, fmt.Errorf("generate: write %s: %w", name, err)
	}
	return &board.Image{Src: "images/" + name, Pixels: img}, nil
}

// Save encodes img as PNG.
func (d *ImageDir) Save(img image.Image) (*board.Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("generate: encode png: %w", err)
	}
	name := d.name(".png")
	if err := os.WriteFile(filepath.Join(d.dir, name), buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("generate: write %s: %w", name, err)
	}
	return &board.Image{Src: "images/" + name, Pixels: img}, nil
}
