package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milk9111/cardboard/board"
	"github.com/milk9111/cardboard/project"
)

type stubGenerator struct {
	err error
}

func (g stubGenerator) PromptVariations(ctx context.Context, prompt string) ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []string{prompt, prompt + " 1", prompt + " 2", prompt + " 3", prompt + " 4"}, nil
}

func (g stubGenerator) GenerateImage(ctx context.Context, prompt string) (*board.Image, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &board.Image{Src: "images/abc.png", Pixels: image.NewRGBA(image.Rect(0, 0, 1, 1))}, nil
}

func newTestServer(t *testing.T, gen board.Generator) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := project.OpenDir(filepath.Join(dir, "projects"))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	images := filepath.Join(dir, "images")
	if err := os.MkdirAll(images, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	srv := httptest.NewServer(New(gen, store, images))
	t.Cleanup(srv.Close)
	return srv, images
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestGenerateEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, stubGenerator{})

	cases := []struct {
		name   string
		path   string
		body   string
		status int
		key    string
		want   string
	}{
		{"variations", "/generate_variations", `{"prompt":"a cat"}`, http.StatusOK, "4", "a cat 4"},
		{"variations_empty", "/generate_variations", `{"prompt":""}`, http.StatusBadRequest, "error", "Prompt is required"},
		{"variations_bad_json", "/generate_variations", `{`, http.StatusBadRequest, "error", "Prompt is required"},
		{"image", "/generate_image", `{"prompt":"a cat"}`, http.StatusOK, "image", "abc.png"},
		{"image_empty", "/generate_image", `{}`, http.StatusBadRequest, "error", "Prompt is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+tc.path, tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if body[tc.key] != tc.want {
				t.Fatalf("%s = %v, want %q", tc.key, body[tc.key], tc.want)
			}
		})
	}
}

func TestGeneratorFailure(t *testing.T) {
	srv, _ := newTestServer(t, stubGenerator{err: errors.New("quota")})
	resp, body := do(t, http.MethodPost, srv.URL+"/generate_variations", `{"prompt":"a cat"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body["error"].(string), "quota") {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestProjectEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, stubGenerator{})

	resp, _ := do(t, http.MethodGet, srv.URL+"/load?id=board", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("load missing: status = %d", resp.StatusCode)
	}

	save := `{"id":"board","cards":[{"x":1,"y":2,"imageSrc":"","prompt":"a cat","creationDate":"2025-01-01T00:00:00Z"}]}`
	resp, _ = do(t, http.MethodPost, srv.URL+"/save", save)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: status = %d", resp.StatusCode)
	}

	resp, body := do(t, http.MethodGet, srv.URL+"/load?id=board", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load: status = %d", resp.StatusCode)
	}
	cards := body["cards"].([]any)
	if len(cards) != 1 || cards[0].(map[string]any)["prompt"] != "a cat" {
		t.Fatalf("unexpected cards %v", cards)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/list", nil)
	lresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list []project.Summary
	if err := json.NewDecoder(lresp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	lresp.Body.Close()
	if len(list) != 1 || list[0].ID != "board" {
		t.Fatalf("unexpected list %+v", list)
	}

	resp, body = do(t, http.MethodDelete, srv.URL+"/delete?id=board", "")
	if resp.StatusCode != http.StatusOK || body["message"] != "Project deleted" {
		t.Fatalf("delete: %d %v", resp.StatusCode, body)
	}
	resp, body = do(t, http.MethodDelete, srv.URL+"/delete?id=board", "")
	if resp.StatusCode != http.StatusNotFound || body["error"] == nil {
		t.Fatalf("delete missing: %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/save", `{"id":"../x","cards":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("save invalid id: status = %d", resp.StatusCode)
	}
}

func TestServesImages(t *testing.T) {
	srv, images := newTestServer(t, stubGenerator{})
	if err := os.WriteFile(filepath.Join(images, "abc.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := http.Get(srv.URL + "/images/abc.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
