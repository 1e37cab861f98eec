// Command snapshot renders a stored project to a PNG without opening a window.
package main

import (
	"context"
	"flag"
	"image/png"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/cardboard/board"
	"github.com/milk9111/cardboard/config"
	"github.com/milk9111/cardboard/project"
	"github.com/milk9111/cardboard/render"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overriding the defaults")
	projectID := flag.String("project", "", "project id to render")
	out := flag.String("o", "board.png", "output PNG path")
	rearrange := flag.Bool("rearrange", false, "pack the cards before rendering")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to wait for images to load")
	flag.Parse()

	if *projectID == "" {
		log.Fatal("-project is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	log.SetLevel(cfg.LogLevel())

	store, err := project.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		log.Fatal("open store", "err", err)
	}
	defer store.Close()

	raster := render.NewRaster(cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.Background.Color)
	redraw := board.NewRedrawer(raster)
	b := board.New(board.Options{
		Style:     cfg.Style(),
		Painter:   redraw,
		Loader:    store,
		Images:    render.NewImages(cfg.Store.ImagesDir),
		ProjectID: *projectID,
		Width:     float64(cfg.Canvas.Width),
		Height:    float64(cfg.Canvas.Height),
	})
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := b.Load(ctx); err != nil {
		log.Fatal("load project", "project", *projectID, "err", err)
	}
	if err := b.Wait(ctx); err != nil {
		log.Warn("some images did not load in time", "err", err)
	}
	if *rearrange {
		b.Rearrange()
	}
	// selection glow is UI state, not part of the picture
	b.Select(nil)
	redraw.Repaint(b.Cards())

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal("create output", "err", err)
	}
	defer f.Close()
	if err := png.Encode(f, raster.Image()); err != nil {
		log.Fatal("encode", "err", err)
	}
	log.Info("wrote snapshot", "project", *projectID, "cards", b.Len(), "path", *out)
}
