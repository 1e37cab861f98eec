// Package config loads the board's YAML configuration.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/cardboard/board"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Canvas    CanvasConfig    `yaml:"canvas"`
	Card      CardConfig      `yaml:"card"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Layout    LayoutConfig    `yaml:"layout"`
	Redraw    RedrawConfig    `yaml:"redraw"`
	Generator GeneratorConfig `yaml:"generator"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

type CanvasConfig struct {
	Width      int   `yaml:"width"`
	Height     int   `yaml:"height"`
	Background Color `yaml:"background"`
}

type CardConfig struct {
	ImageSize    float64 `yaml:"image_size"`
	ButtonHeight float64 `yaml:"button_height"`
	StripHeight  float64 `yaml:"strip_height"`
	CloneOffset  float64 `yaml:"clone_offset"`
	ExpandMargin float64 `yaml:"expand_margin"`
	DefaultX     float64 `yaml:"default_x"`
	DefaultY     float64 `yaml:"default_y"`
	Fill         Color   `yaml:"fill"`
	Border       Color   `yaml:"border"`
	Accent       Color   `yaml:"accent"`
	Placeholder  Color   `yaml:"placeholder"`
}

type OverlayConfig struct {
	Width      float64  `yaml:"width"`
	Height     float64  `yaml:"height"`
	Inset      float64  `yaml:"inset"`
	Fill       Color    `yaml:"fill"`
	GlyphColor Color    `yaml:"glyph_color"`
	Glyphs     []string `yaml:"glyphs"`
}

type LayoutConfig struct {
	Margin     float64 `yaml:"margin"`
	SideMargin float64 `yaml:"side_margin"`
}

type RedrawConfig struct {
	Incremental bool    `yaml:"incremental"`
	Glow        float64 `yaml:"glow"`
	Padding     float64 `yaml:"padding"`
}

type GeneratorConfig struct {
	// Backend is "script" (offline) or "openai".
	Backend         string        `yaml:"backend"`
	Script          string        `yaml:"script"`
	ImageSize       int           `yaml:"image_size"`
	ChatModel       string        `yaml:"chat_model"`
	ImageModel      string        `yaml:"image_model"`
	ImageResolution string        `yaml:"image_resolution"`
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "file".
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	ImagesDir string `yaml:"images_dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the embedded configuration.
func Default() *Config {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		panic(fmt.Sprintf("config: embedded default: %v", err))
	}
	return &c
}

// Load reads path over the embedded defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("config: canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	case len(c.Overlay.Glyphs) != 3:
		return fmt.Errorf("config: overlay needs exactly 3 glyphs, got %d", len(c.Overlay.Glyphs))
	}
	switch c.Generator.Backend {
	case "script", "openai":
	default:
		return fmt.Errorf("config: unknown generator backend %q", c.Generator.Backend)
	}
	switch c.Store.Driver {
	case "sqlite", "file":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	if err := c.Style().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LogLevel is the configured level, info when unset or invalid.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Style builds the board style described by the card, overlay, layout and
// redraw sections.
func (c *Config) Style() *board.Style {
	s := &board.Style{
		ImageSize:     c.Card.ImageSize,
		ButtonHeight:  c.Card.ButtonHeight,
		StripHeight:   c.Card.StripHeight,
		OverlayWidth:  c.Overlay.Width,
		OverlayHeight: c.Overlay.Height,
		OverlayInset:  c.Overlay.Inset,
		CloneOffset:   c.Card.CloneOffset,
		ExpandMargin:  c.Card.ExpandMargin,
		Margin:        c.Layout.Margin,
		SideMargin:    c.Layout.SideMargin,
		Glow:          c.Redraw.Glow,
		Padding:       c.Redraw.Padding,
		DefaultX:      c.Card.DefaultX,
		DefaultY:      c.Card.DefaultY,
		Background:    c.Canvas.Background.Color,
		CardFill:      c.Card.Fill.Color,
		Border:        c.Card.Border.Color,
		Accent:        c.Card.Accent.Color,
		OverlayFill:   c.Overlay.Fill.Color,
		GlyphColor:    c.Overlay.GlyphColor.Color,
		Placeholder:   c.Card.Placeholder.Color,
	}
	copy(s.Glyphs[:], c.Overlay.Glyphs)
	return s
}
