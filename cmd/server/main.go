package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/cardboard/config"
	"github.com/milk9111/cardboard/generate"
	"github.com/milk9111/cardboard/project"
	"github.com/milk9111/cardboard/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overriding the defaults")
	addr := flag.String("addr", "", "listen address (defaults to server.addr from the config)")
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
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := project.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		log.Error("open store", "err", err)
		return 1
	}
	defer store.Close()

	gen, err := generate.New(cfg.Generator, cfg.Store.ImagesDir)
	if err != nil {
		log.Error("generator", "err", err)
		return 1
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(gen, store, cfg.Store.ImagesDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdown)
	}()

	log.Info("listening", "addr", cfg.Server.Addr, "backend", cfg.Generator.Backend, "store", cfg.Store.Driver)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve", "err", err)
		return 1
	}
	return 0
}
