package generate

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/milk9111/cardboard/board"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig selects the models used by OpenAI.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	ImageModel string
	ImageSize  string
	Timeout    time.Duration
}

// OpenAI generates variations with a chat completion and images with the
// images endpoint.
type OpenAI struct {
	client     openai.Client
	chatModel  string
	imageModel string
	imageSize  string
	images     *ImageDir
}

func NewOpenAI(cfg OpenAIConfig, images *ImageDir) *OpenAI {
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = string(openai.ImageModelDallE3)
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = string(openai.ImageGenerateParamsSize1024x1024)
	}

	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &OpenAI{
		client:     openai.NewClient(opts...),
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		imageSize:  cfg.ImageSize,
		images:     images,
	}
}

func (o *OpenAI) PromptVariations(ctx context.Context, prompt string) ([]string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate: variations: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generate: variations: empty response")
	}
	logger.Debug("variations", "prompt", prompt, "tokens", resp.Usage.TotalTokens)
	return ParseVariations(resp.Choices[0].Message.Content, prompt)
}

func (o *OpenAI) GenerateImage(ctx context.Context, prompt string) (*board.Image, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(o.imageModel),
		Size:   openai.ImageGenerateParamsSize(o.imageSize),
		N:      openai.Int(1),
	}
	// gpt-image models always answer with base64 and reject the parameter
	if strings.HasPrefix(o.imageModel, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := o.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("generate: image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("generate: image: no image data in response")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("generate: image: decode base64: %w", err)
	}
	img, err := o.images.SaveBytes(data)
	if err != nil {
		return nil, err
	}
	logger.Info("generated image", "prompt", prompt, "src", img.Src)
	return img, nil
}
