// Command glossover runs the contextual glossary annotator.
//
// Usage:
//
//	glossover -serve -db glossary.db               # glossary CRUD API
//	glossover -annotate page.html -db glossary.db  # annotate a file, HTML to stdout
//	glossover -url https://crm.example/deals       # snapshot a live page and annotate
//	glossover -annotate page.html -watch -out o.html  # re-annotate on glossary changes
//	glossover -config glossover.yaml -serve        # run with config file
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/twellen/glossover/dom"
	"github.com/twellen/glossover/glossary"
	"github.com/twellen/glossover/host/browser"
	"github.com/twellen/glossover/syncapi"
	"github.com/twellen/glossover/wiki"
)

func main() {
	configPath := flag.String("config", "", "path to glossover.yaml config file")
	dbPath := flag.String("db", "", "path to SQLite glossary database")
	addr := flag.String("addr", "", "listen address for -serve (default :8480)")
	serve := flag.Bool("serve", false, "run the glossary CRUD API")
	annotate := flag.String("annotate", "", "annotate an HTML file ('-' for stdin) and exit")
	pageURL := flag.String("url", "", "snapshot a live page, annotate it and exit")
	out := flag.String("out", "", "output file for annotated HTML (default stdout)")
	watchMode := flag.Bool("watch", false, "with -annotate/-url: keep running and re-annotate when the glossary changes")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *dbPath, *addr, *serve, *annotate, *pageURL, *out, *watchMode); err != nil {
		logger.Error("glossover: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, dbPath, addr string, serve bool, annotate, pageURL, out string, watchMode bool) error {
	cfg, err := resolveConfig(configPath, dbPath, addr)
	if err != nil {
		return err
	}

	svc, err := glossary.Open(cfg.DBPath, glossary.WithLogger(logger))
	if err != nil {
		return err
	}
	defer svc.Close()

	switch {
	case serve:
		return runServe(ctx, logger, cfg, svc)
	case annotate != "":
		html, err := readInput(annotate)
		if err != nil {
			return fmt.Errorf("annotate: %w", err)
		}
		return runAnnotate(ctx, logger, cfg, svc, html, out, watchMode)
	case pageURL != "":
		html, err := snapshot(ctx, logger, cfg, pageURL)
		if err != nil {
			return err
		}
		return runAnnotate(ctx, logger, cfg, svc, html, out, watchMode)
	default:
		fmt.Fprintln(os.Stderr, "usage: glossover -serve | -annotate <file> | -url <page> [-config <file>] [-db <path>]")
		os.Exit(1)
		return nil
	}
}

func runServe(ctx context.Context, logger *slog.Logger, cfg *Config, svc *glossary.Service) error {
	api := syncapi.New(svc, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("glossover: serving", "addr", cfg.Addr, "db", cfg.DBPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("glossover: shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func runAnnotate(ctx context.Context, logger *slog.Logger, cfg *Config, svc *glossary.Service, pageHTML, out string, watchMode bool) error {
	doc, err := dom.ParseString(pageHTML)
	if err != nil {
		return err
	}

	entries := func() []glossary.Entry {
		snap, err := svc.Snapshot(ctx)
		if err != nil {
			logger.Error("glossover: glossary snapshot failed", "error", err)
			return nil
		}
		return snap
	}

	c := wiki.NewCoordinator(doc, entries, nil, cfg.Wiki, logger)
	defer c.Cleanup()
	c.Apply()

	stats := c.Stats()
	logger.Info("glossover: annotated", "marks", stats.Marks)

	annotated, err := doc.HTML()
	if err != nil {
		return err
	}
	if err := writeOutput(out, annotated); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	// Stay up and re-annotate whenever the glossary changes. Watch blocks
	// until the context is cancelled.
	logger.Info("glossover: watching glossary for changes", "db", cfg.DBPath)
	svc.Watch(ctx, cfg.Wiki.DebounceWindow, func() error {
		c.SetEntries()
		annotated, err := doc.HTML()
		if err != nil {
			return err
		}
		logger.Info("glossover: re-annotated", "marks", c.Stats().Marks)
		return writeOutput(out, annotated)
	})
	return nil
}

func snapshot(ctx context.Context, logger *slog.Logger, cfg *Config, pageURL string) (string, error) {
	bcfg := cfg.Browser
	bcfg.Logger = logger
	f := browser.New(bcfg)
	if err := f.Start(); err != nil {
		return "", err
	}
	defer f.Close()
	return f.Snapshot(ctx, pageURL)
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func writeOutput(path, data string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(data)
		return err
	}
	return os.WriteFile(path, []byte(data), 0o644)
}

func resolveConfig(configPath, dbPath, addr string) (*Config, error) {
	var cfg *Config
	if configPath != "" {
		loaded, err := LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &Config{}
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if addr != "" {
		cfg.Addr = addr
	}
	cfg.defaults()
	return cfg, nil
}
