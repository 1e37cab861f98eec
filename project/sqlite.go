package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite keeps every project as one row holding its cards as JSON.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("project: open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("project: set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			modified TEXT NOT NULL,
			cards TEXT NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("project: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(ctx context.Context, id string, cards []Card) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if cards == nil {
		cards = []Card{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("project: encode %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, modified, cards)
		 VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			modified = excluded.modified,
			cards = excluded.cards`,
		id,
		time.Now().UTC().Format(time.RFC3339Nano),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("project: save %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, id string) (*Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var modified, data string
	err := s.db.QueryRowContext(ctx,
		"SELECT modified, cards FROM projects WHERE id = ?", id,
	).Scan(&modified, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project: load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("project: load %s: %w", id, err)
	}

	p := &Project{ID: id}
	if p.Modified, err = time.Parse(time.RFC3339Nano, modified); err != nil {
		return nil, fmt.Errorf("project: load %s: parse modified: %w", id, err)
	}
	if err := json.Unmarshal([]byte(data), &p.Cards); err != nil {
		return nil, fmt.Errorf("project: load %s: decode cards: %w", id, err)
	}
	return p, nil
}

func (s *SQLite) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, modified FROM projects")
	if err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var id, modified string
		if err := rows.Scan(&id, &modified); err != nil {
			return nil, fmt.Errorf("project: list: scan: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, modified)
		if err != nil {
			return nil, fmt.Errorf("project: list: parse modified for %s: %w", id, err)
		}
		out = append(out, Summary{ID: id, Modified: t})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	sortSummaries(out)
	return out, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("project: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("project: delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("project: delete %s: %w", id, ErrNotFound)
	}
	return nil
}
