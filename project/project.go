package project

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrInvalidID = errors.New("invalid project id")
)

// Card is the stored form of a board card.
type Card struct {
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	ImageSrc     string    `json:"imageSrc"`
	Prompt       string    `json:"prompt"`
	CreationDate time.Time `json:"creationDate"`
}

// Project is a saved board.
type Project struct {
	ID       string    `json:"id"`
	Modified time.Time `json:"modified"`
	Cards    []Card    `json:"cards"`
}

// Summary is what List returns for each project.
type Summary struct {
	ID       string    `json:"id"`
	Modified time.Time `json:"modified"`
}

// Store persists projects by id.
type Store interface {
	Save(ctx context.Context, id string, cards []Card) error
	Load(ctx context.Context, id string) (*Project, error)
	// List returns every project, most recently modified first.
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateID rejects ids that could not be used as a file name.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Open returns the store for driver ("sqlite" or "file") rooted at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return OpenSQLite(path)
	case "file":
		return OpenDir(path)
	default:
		return nil, fmt.Errorf("project: unknown store driver %q", driver)
	}
}
