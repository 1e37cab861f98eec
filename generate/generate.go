// Package generate turns prompts into card images and prompt variations.
package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/milk9111/cardboard/board"
)

var ErrTooFewVariations = errors.New("generate: too few variations")

var logger = log.WithPrefix("generate")

var (
	_ board.Generator = (*OpenAI)(nil)
	_ board.Generator = (*Script)(nil)
)

const variationCount = 4

const systemPrompt = "You are a creative assistant. Your task is to generate four distinct and creative variations for an image prompt, " +
	"each with a different twist in content or style. Your output must be a valid JSON object with exactly four keys: " +
	"'1', '2', '3', '4'. Do not output any additional text."

func userPrompt(prompt string) string {
	return fmt.Sprintf("Original prompt: %s\n\nPlease provide the JSON object with the variations.", prompt)
}

var fence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParseVariations reads a model reply holding a JSON object keyed "1".."4"
// (optionally inside a markdown fence) and returns prompt followed by the
// four variations.
func ParseVariations(text, prompt string) ([]string, error) {
	text = strings.TrimSpace(text)
	if m := fence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var obj map[string]string
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("generate: parse variations: %w", err)
	}
	out := make([]string, 0, variationCount+1)
	out = append(out, prompt)
	for i := 1; i <= variationCount; i++ {
		v := strings.TrimSpace(obj[strconv.Itoa(i)])
		if v == "" {
			return nil, fmt.Errorf("%w: missing variation %d", ErrTooFewVariations, i)
		}
		out = append(out, v)
	}
	return out, nil
}

// Keyed returns variations 1..4 as the JSON object the HTTP API serves.
func Keyed(variations []string) (map[string]string, error) {
	if len(variations) < variationCount+1 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewVariations, len(variations))
	}
	out := make(map[string]string, variationCount)
	for i := 1; i <= variationCount; i++ {
		out[strconv.Itoa(i)] = variations[i]
	}
	return out, nil
}
