package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Dir stores each project as <id>.json inside a directory.
type Dir struct {
	root string
}

// OpenDir creates root if needed.
func OpenDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("project: create %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Close() error { return nil }

func (d *Dir) path(id string) string {
	return filepath.Join(d.root, id+".json")
}

func (d *Dir) Save(_ context.Context, id string, cards []Card) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if cards == nil {
		cards = []Card{}
	}
	p := Project{ID: id, Modified: time.Now().UTC(), Cards: cards}

	tmp, err := os.CreateTemp(d.root, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("project: save %s: %w", id, err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("project: save %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("project: save %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), d.path(id)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("project: save %s: %w", id, err)
	}
	return nil
}

func (d *Dir) Load(_ context.Context, id string) (*Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(d.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("project: load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("project: load %s: %w", id, err)
	}

	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("project: load %s: %w", id, err)
	}
	p.ID = id
	return &p, nil
}

func (d *Dir) List(_ context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}

	out := []Summary{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(d.root, name))
		if err != nil {
			return nil, fmt.Errorf("project: list: %w", err)
		}
		var s Summary
		if err := json.Unmarshal(b, &s); err != nil {
			// skip files that are not projects
			continue
		}
		s.ID = strings.TrimSuffix(name, ".json")
		out = append(out, s)
	}
	sortSummaries(out)
	return out, nil
}

func (d *Dir) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	err := os.Remove(d.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("project: delete %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("project: delete %s: %w", id, err)
	}
	return nil
}

func sortSummaries(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Modified.After(s[j].Modified)
	})
}
