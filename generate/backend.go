package generate

import (
	"fmt"
	"os"

	"github.com/milk9111/cardboard/board"
	"github.com/milk9111/cardboard/config"
)

// New builds the generator selected by cfg. Images are written to dir.
func New(cfg config.GeneratorConfig, dir string) (board.Generator, error) {
	images, err := NewImageDir(dir)
	if err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			logger.Warn("OPENAI_API_KEY is not set")
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:     key,
			BaseURL:    cfg.BaseURL,
			ChatModel:  cfg.ChatModel,
			ImageModel: cfg.ImageModel,
			ImageSize:  cfg.ImageResolution,
			Timeout:    cfg.Timeout,
		}, images), nil
	case "script", "":
		src, err := LoadScript(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("generate: load script: %w", err)
		}
		return NewScript(src, images, cfg.ImageSize)
	default:
		return nil, fmt.Errorf("generate: unknown backend %q", cfg.Backend)
	}
}
