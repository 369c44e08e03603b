package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/twellen/glossover/dbopen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return &Store{DB: db}
}

func sampleEntry(id, term string) *Entry {
	return &Entry{
		ID:         id,
		Term:       term,
		Aliases:    []string{term + " alias"},
		Definition: "<p>def</p>",
		Category:   "crm",
		Enabled:    true,
		Scope:      map[string]string{"host": "example.com"},
	}
}

func TestEntryCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := sampleEntry("e1", "Company")
	if err := s.InsertEntry(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if e.UpdatedAt == 0 {
		t.Fatal("insert did not stamp updated_at")
	}

	got, err := s.GetEntry(ctx, "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Term != "Company" || !got.Enabled {
		t.Fatalf("get = %+v", got)
	}
	if len(got.Aliases) != 1 || got.Aliases[0] != "Company alias" {
		t.Fatalf("aliases = %v", got.Aliases)
	}
	if got.Scope["host"] != "example.com" {
		t.Fatalf("scope = %v", got.Scope)
	}

	got.Term = "Account"
	got.Enabled = false
	if err := s.UpdateEntry(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := s.GetEntry(ctx, "e1")
	if again.Term != "Account" || again.Enabled {
		t.Fatalf("after update = %+v", again)
	}

	if err := s.DeleteEntry(ctx, "e1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gone, _ := s.GetEntry(ctx, "e1"); gone != nil {
		t.Fatalf("entry survived delete: %+v", gone)
	}
}

func TestGetMissingEntry(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetEntry(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("get missing = %+v, %v", got, err)
	}
}

func TestUpdateMissingEntry(t *testing.T) {
	s := openTestStore(t)
	err := s.UpdateEntry(context.Background(), sampleEntry("nope", "X"))
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
	if err := s.DeleteEntry(context.Background(), "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("delete missing = %v, want sql.ErrNoRows", err)
	}
}

func TestListEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, e := range []*Entry{
		sampleEntry("e1", "zebra"),
		sampleEntry("e2", "Apple"),
		{ID: "e3", Term: "Hidden", Enabled: false},
	} {
		if err := s.InsertEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListEntries(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d entries", len(all))
	}
	if all[0].Term != "Apple" {
		t.Fatalf("order wrong: first = %s", all[0].Term)
	}

	enabled, err := s.ListEntries(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(enabled) != 2 {
		t.Fatalf("enabled = %d entries", len(enabled))
	}
}

func TestVersionAdvances(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v0, err := s.Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v0 != 0 {
		t.Fatalf("empty table version = %d", v0)
	}

	if err := s.InsertEntry(ctx, sampleEntry("e1", "Company")); err != nil {
		t.Fatal(err)
	}
	v1, _ := s.Version(ctx)
	if v1 <= v0 {
		t.Fatalf("version did not advance: %d -> %d", v0, v1)
	}
}

func TestVersionChangesOnDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertEntry(ctx, sampleEntry("e1", "Company")); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertEntry(ctx, sampleEntry("e2", "Deal Stage")); err != nil {
		t.Fatal(err)
	}
	v1, err := s.Version(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Deleting the older row leaves MAX(updated_at) alone; the token must
	// still move.
	if err := s.DeleteEntry(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	v2, err := s.Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v2 == v1 {
		t.Fatalf("version unchanged after delete: %d", v2)
	}
}
