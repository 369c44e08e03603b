package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Entry is one glossary row.
type Entry struct {
	ID         string            `json:"id"`
	Term       string            `json:"term"`
	Aliases    []string          `json:"aliases,omitempty"`
	Definition string            `json:"definition_html"`
	Category   string            `json:"category,omitempty"`
	Link       string            `json:"link,omitempty"`
	Enabled    bool              `json:"enabled"`
	Scope      map[string]string `json:"scope,omitempty"`
	UpdatedAt  int64             `json:"updated_at"`
}

const entryColumns = `id, term, aliases, definition_html, category, link, enabled, scope, updated_at`

// InsertEntry inserts a new entry.
func (s *Store) InsertEntry(ctx context.Context, e *Entry) error {
	aliases, _ := json.Marshal(e.Aliases)
	scope, _ := json.Marshal(e.Scope)
	e.UpdatedAt = time.Now().UnixMilli()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		e.ID, e.Term, string(aliases), e.Definition, e.Category, e.Link,
		boolToInt(e.Enabled), string(scope), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert entry %s: %w", e.ID, err)
	}
	return nil
}

// GetEntry retrieves an entry by ID. Returns nil, nil when absent.
func (s *Store) GetEntry(ctx context.Context, id string) (*Entry, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get entry %s: %w", id, err)
	}
	return e, nil
}

// ListEntries returns all entries ordered by term. enabledOnly filters out
// disabled rows.
func (s *Store) ListEntries(ctx context.Context, enabledOnly bool) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY term COLLATE NOCASE`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list entries: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateEntry replaces an existing entry's content. Returns sql.ErrNoRows
// when the ID is unknown.
func (s *Store) UpdateEntry(ctx context.Context, e *Entry) error {
	aliases, _ := json.Marshal(e.Aliases)
	scope, _ := json.Marshal(e.Scope)
	e.UpdatedAt = time.Now().UnixMilli()

	res, err := s.DB.ExecContext(ctx, `
		UPDATE entries SET
			term=?, aliases=?, definition_html=?, category=?, link=?, enabled=?, scope=?, updated_at=?
		WHERE id=?`,
		e.Term, string(aliases), e.Definition, e.Category, e.Link,
		boolToInt(e.Enabled), string(scope), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update entry %s: %w", e.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteEntry removes an entry. Returns sql.ErrNoRows when the ID is
// unknown.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete entry %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Version returns a value that changes whenever any entry changes: the max
// updated_at over the table plus the row count, so deletions move the token
// even when the deleted row was not the newest. 0 for an empty table. Used
// by change watchers.
func (s *Store) Version(ctx context.Context) (int64, error) {
	var count int64
	var maxUpdated sql.NullInt64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM entries`).Scan(&count, &maxUpdated)
	if err != nil {
		return 0, fmt.Errorf("store: version: %w", err)
	}
	return maxUpdated.Int64 + count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	e := &Entry{}
	var aliases, scope string
	var enabled int
	err := row.Scan(&e.ID, &e.Term, &aliases, &e.Definition, &e.Category,
		&e.Link, &enabled, &scope, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Enabled = enabled != 0
	json.Unmarshal([]byte(aliases), &e.Aliases)
	json.Unmarshal([]byte(scope), &e.Scope)
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
