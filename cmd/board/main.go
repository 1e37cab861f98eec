package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/cardboard/config"
	"github.com/milk9111/cardboard/project"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overriding the defaults")
	projectID := flag.String("project", "", "project id to open (a new id is generated when empty)")
	list := flag.Bool("list", false, "list stored projects and exit")
	remove := flag.String("delete", "", "delete a stored project and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	log.SetLevel(cfg.LogLevel())
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	store, err := project.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		log.Fatal("open store", "err", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case *list:
		projects, err := store.List(ctx)
		if err != nil {
			log.Fatal("list projects", "err", err)
		}
		for _, p := range projects {
			fmt.Printf("%s\t%s\n", p.ID, p.Modified.Local().Format("2006-01-02 15:04:05"))
		}
		return
	case *remove != "":
		if err := store.Delete(ctx, *remove); err != nil {
			log.Error("delete project", "project", *remove, "err", err)
			os.Exit(1)
		}
		log.Info("deleted project", "project", *remove)
		return
	}

	id := *projectID
	if id == "" {
		id = uuid.NewString()
		log.Info("new project", "project", id)
	}

	game, err := NewGame(cfg, *configPath, store, id)
	if err != nil {
		log.Fatal("start", "err", err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Canvas.Width, cfg.Canvas.Height+toolbarHeight)
	ebiten.SetWindowTitle("cardboard - " + id)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
