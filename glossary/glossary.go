package glossary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twellen/glossover/glossary/internal/store"
	"github.com/twellen/glossover/idgen"
	"github.com/twellen/glossover/watch"
)

// ErrNotFound is returned when an entry ID is unknown.
var ErrNotFound = errors.New("glossary: entry not found")

// ErrInvalid is returned when an entry fails validation.
var ErrInvalid = errors.New("glossary: invalid entry")

// Service manages glossary entries: validation, sanitization, persistence
// and change watching. Safe for concurrent use; all synchronization lives in
// the database.
type Service struct {
	store  *store.Store
	newID  idgen.Generator
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator overrides the default UUIDv7 entry ID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Service) { s.newID = gen }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Open opens (or creates) the glossary database at path.
func Open(path string, opts ...Option) (*Service, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("glossary: open %s: %w", path, err)
	}
	return NewService(st.DB, opts...), nil
}

// NewService wraps an already opened glossary database.
func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		store:  &store.Store{DB: db},
		newID:  idgen.Prefixed("ent_", idgen.UUIDv7()),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Close closes the underlying database.
func (s *Service) Close() error { return s.store.Close() }

// Create validates, sanitizes and persists a new entry. A zero ID is filled
// in; the stored entry is returned.
func (s *Service) Create(ctx context.Context, e Entry) (*Entry, error) {
	if strings.TrimSpace(e.Term) == "" {
		return nil, fmt.Errorf("%w: empty term", ErrInvalid)
	}
	if e.ID == "" {
		e.ID = s.newID()
	}
	e.Definition = SanitizeDefinition(e.Definition)

	row := toRow(&e)
	if err := s.store.InsertEntry(ctx, row); err != nil {
		return nil, err
	}
	s.logger.Info("glossary: entry created", "id", row.ID, "term", row.Term)
	return fromRow(row), nil
}

// Get returns the entry with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	row, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return fromRow(row), nil
}

// List returns all entries ordered by term.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.store.ListEntries(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, *fromRow(r))
	}
	return out, nil
}

// Snapshot returns the enabled entries, the form the annotation engine
// consumes.
func (s *Service) Snapshot(ctx context.Context) ([]Entry, error) {
	rows, err := s.store.ListEntries(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, *fromRow(r))
	}
	return out, nil
}

// Update validates, sanitizes and replaces an existing entry.
func (s *Service) Update(ctx context.Context, e Entry) (*Entry, error) {
	if strings.TrimSpace(e.Term) == "" {
		return nil, fmt.Errorf("%w: empty term", ErrInvalid)
	}
	e.Definition = SanitizeDefinition(e.Definition)

	row := toRow(&e)
	err := s.store.UpdateEntry(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRow(row), nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.logger.Info("glossary: entry deleted", "id", id)
	return nil
}

// Version returns a token that changes whenever any entry changes.
func (s *Service) Version(ctx context.Context) (int64, error) {
	return s.store.Version(ctx)
}

// Watch blocks until ctx is cancelled, invoking onChange (debounced) every
// time the entry set changes. The detector is the store's version token, so
// inserts, updates and deletions all fire.
func (s *Service) Watch(ctx context.Context, debounce time.Duration, onChange func() error) {
	w := watch.New(s.store.DB, watch.Options{
		Interval: time.Second,
		Debounce: debounce,
		Detector: func(ctx context.Context, _ *sql.DB) (int64, error) {
			return s.store.Version(ctx)
		},
		Logger: s.logger,
	})
	w.OnChange(ctx, onChange)
}

func toRow(e *Entry) *store.Entry {
	return &store.Entry{
		ID:         e.ID,
		Term:       e.Term,
		Aliases:    e.Aliases,
		Definition: e.Definition,
		Category:   e.Category,
		Link:       e.Link,
		Enabled:    e.Enabled,
		Scope:      e.Scope,
		UpdatedAt:  e.UpdatedAt,
	}
}

func fromRow(r *store.Entry) *Entry {
	return &Entry{
		ID:         r.ID,
		Term:       r.Term,
		Aliases:    r.Aliases,
		Definition: r.Definition,
		Category:   r.Category,
		Link:       r.Link,
		Enabled:    r.Enabled,
		Scope:      r.Scope,
		UpdatedAt:  r.UpdatedAt,
	}
}
