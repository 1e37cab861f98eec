package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milk9111/cardboard/config"
)

func TestParseVariations(t *testing.T) {
	plain := `{"1": "a cat in space", "2": "a cat in water", "3": "a cat at night", "4": "a cat in a hat"}`
	cases := []struct {
		name string
		text string
		ok   bool
	}{
		{"plain", plain, true},
		{"fenced", "```json\n" + plain + "\n```", true},
		{"fenced_no_lang", "Here you go:\n```\n" + plain + "\n```\nEnjoy", true},
		{"padded", "\n\n  " + plain + "  \n", true},
		{"missing_key", `{"1": "a", "2": "b", "3": "c"}`, false},
		{"blank_value", `{"1": "a", "2": "b", "3": "c", "4": "  "}`, false},
		{"not_json", "sorry, I can't do that", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVariations(tc.text, "a cat")
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVariations: %v", err)
			}
			want := []string{"a cat", "a cat in space", "a cat in water", "a cat at night", "a cat in a hat"}
			if strings.Join(got, "|") != strings.Join(want, "|") {
				t.Fatalf("got %q, want %q", got, want)
			}
		})
	}

	if _, err := ParseVariations(`{"1": "a"}`, "x"); !errors.Is(err, ErrTooFewVariations) {
		t.Fatalf("expected ErrTooFewVariations, got %v", err)
	}
}

func TestKeyed(t *testing.T) {
	m, err := Keyed([]string{"p", "a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("Keyed: %v", err)
	}
	if m["1"] != "a" || m["4"] != "d" || len(m) != 4 {
		t.Fatalf("unexpected map %v", m)
	}
	if _, err := Keyed([]string{"p"}); !errors.Is(err, ErrTooFewVariations) {
		t.Fatalf("expected ErrTooFewVariations, got %v", err)
	}
}

func newScript(t *testing.T, src []byte) (*Script, *ImageDir) {
	t.Helper()
	dir, err := NewImageDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageDir: %v", err)
	}
	s, err := NewScript(src, dir, 64)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	return s, dir
}

func TestScriptVariations(t *testing.T) {
	src, err := LoadScript("")
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	s, _ := newScript(t, src)
	ctx := context.Background()

	first, err := s.PromptVariations(ctx, "a cat")
	if err != nil {
		t.Fatalf("PromptVariations: %v", err)
	}
	if len(first) != 5 || first[0] != "a cat" {
		t.Fatalf("unexpected variations %q", first)
	}
	seen := map[string]bool{}
	for _, v := range first[1:] {
		if !strings.HasPrefix(v, "a cat ") {
			t.Fatalf("variation %q does not extend the prompt", v)
		}
		if seen[v] {
			t.Fatalf("duplicate variation %q", v)
		}
		seen[v] = true
	}

	again, err := s.PromptVariations(ctx, "a cat")
	if err != nil {
		t.Fatalf("PromptVariations: %v", err)
	}
	if strings.Join(first, "|") != strings.Join(again, "|") {
		t.Fatalf("variations not deterministic: %q vs %q", first, again)
	}
}

func TestScriptTooFewVariations(t *testing.T) {
	s, _ := newScript(t, []byte(`variations := [prompt + "!"]`))
	if _, err := s.PromptVariations(context.Background(), "x"); !errors.Is(err, ErrTooFewVariations) {
		t.Fatalf("expected ErrTooFewVariations, got %v", err)
	}
}

func TestScriptCompileError(t *testing.T) {
	dir, _ := NewImageDir(t.TempDir())
	if _, err := NewScript([]byte(`variations := [`), dir, 64); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestScriptGenerateImage(t *testing.T) {
	src, _ := LoadScript("")
	s, dir := newScript(t, src)

	img, err := s.GenerateImage(context.Background(), "a very long prompt about a cat that needs wrapping")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if !img.Ready() {
		t.Fatalf("image has no pixels")
	}
	if !strings.HasPrefix(img.Src, "images/") || !strings.HasSuffix(img.Src, ".png") {
		t.Fatalf("unexpected src %q", img.Src)
	}
	path := filepath.Join(dir.Dir(), strings.TrimPrefix(img.Src, "images/"))
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("image not written: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Fatalf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestOpenAI(t *testing.T) {
	var pix bytes.Buffer
	if err := png.Encode(&pix, image.NewRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("encode: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			if req["model"] != "gpt-4o" {
				t.Errorf("chat model = %v", req["model"])
			}
			content := "```json\n{\"1\":\"one\",\"2\":\"two\",\"3\":\"three\",\"4\":\"four\"}\n```"
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "gpt-4o",
				"choices": []any{map[string]any{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				}},
			})
		case strings.HasSuffix(r.URL.Path, "/images/generations"):
			if req["response_format"] != "b64_json" {
				t.Errorf("response_format = %v", req["response_format"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"created": 1,
				"data":    []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString(pix.Bytes())}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir, err := NewImageDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageDir: %v", err)
	}
	o := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/"}, dir)
	ctx := context.Background()

	vars, err := o.PromptVariations(ctx, "a cat")
	if err != nil {
		t.Fatalf("PromptVariations: %v", err)
	}
	if strings.Join(vars, ",") != "a cat,one,two,three,four" {
		t.Fatalf("unexpected variations %q", vars)
	}

	img, err := o.GenerateImage(ctx, "a cat")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if img.Pixels.Bounds().Dx() != 3 || !strings.HasSuffix(img.Src, ".png") {
		t.Fatalf("unexpected image %q %v", img.Src, img.Pixels.Bounds())
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default().Generator
	cfg.Backend = "script"
	g, err := New(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := g.(*Script); !ok {
		t.Fatalf("expected *Script, got %T", g)
	}

	cfg.Backend = "carrier-pigeon"
	if _, err := New(cfg, t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
