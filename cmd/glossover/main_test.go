package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/twellen/glossover/glossary"
	"github.com/twellen/glossover/wiki"
)

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossover.yaml")
	if err := os.WriteFile(path, []byte("db_path: from-file.db\naddr: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(path, "from-flag.db", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "from-flag.db" {
		t.Fatalf("db_path = %q, want flag value", cfg.DBPath)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("addr = %q, want file value", cfg.Addr)
	}
}

func TestAnnotateWatchReappliesOnGlossaryChange(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.html")

	svc, err := glossary.Open(filepath.Join(dir, "glossary.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := &Config{Wiki: wiki.Config{DebounceWindow: 20 * time.Millisecond}}
	cfg.defaults()

	page := `<html><head></head><body><main><div>Company</div></main></body></html>`

	done := make(chan error, 1)
	go func() {
		done <- runAnnotate(ctx, logger, cfg, svc, page, outPath, true)
	}()

	// The first pass runs against an empty glossary and writes unmarked
	// output.
	waitFor(t, "initial output", func() bool {
		data, err := os.ReadFile(outPath)
		return err == nil && len(data) > 0
	})

	// Let the watcher take its baseline before the glossary changes.
	time.Sleep(200 * time.Millisecond)
	_, err = svc.Create(ctx, glossary.Entry{
		Term:       "Company",
		Definition: "<p>An organization.</p>",
		Enabled:    true,
	})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, "re-annotated output", func() bool {
		data, _ := os.ReadFile(outPath)
		return strings.Contains(string(data), wiki.MarkAttr)
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runAnnotate: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runAnnotate did not stop on cancel")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
