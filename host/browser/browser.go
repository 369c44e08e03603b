// Package browser captures live page snapshots through a headless Chrome,
// the input side of the annotate pipeline: fetch the host page once, hand
// its HTML to the in-memory document, annotate there.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config configures the snapshot fetcher.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty launches a local headless Chrome via launcher.
	RemoteURL string `yaml:"remote_url"`

	// NavTimeout bounds navigation plus load wait. Default: 30s.
	NavTimeout time.Duration `yaml:"nav_timeout"`

	// SettleDelay is the extra wait after load for late scripts. Default: 1s.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// Stealth applies the stealth page setup, needed for hosts that gate on
	// automation detection.
	Stealth bool `yaml:"stealth"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Fetcher owns one Chrome connection and takes page snapshots from it.
type Fetcher struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// New creates a Fetcher. Call Start before Snapshot.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{cfg: cfg}
}

// Start launches Chrome or connects to the configured remote instance.
func (f *Fetcher) Start() error {
	var wsURL string
	if f.cfg.RemoteURL != "" {
		wsURL = f.cfg.RemoteURL
	} else {
		f.lnch = launcher.New().Headless(true)
		u, err := f.lnch.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	f.browser = b
	f.cfg.Logger.Info("browser: connected", "remote", f.cfg.RemoteURL != "")
	return nil
}

// Snapshot navigates to pageURL in a fresh tab and returns the serialized
// DOM after load settles. The tab is closed before returning.
func (f *Fetcher) Snapshot(ctx context.Context, pageURL string) (string, error) {
	if f.browser == nil {
		return "", fmt.Errorf("browser: fetcher not started")
	}

	var page *rod.Page
	var err error
	if f.cfg.Stealth {
		page, err = stealth.Page(f.browser)
	} else {
		page, err = f.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return "", fmt.Errorf("browser: create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, f.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		f.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	select {
	case <-time.After(f.cfg.SettleDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: serialize DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// Close disconnects from Chrome and kills the local instance when one was
// launched.
func (f *Fetcher) Close() error {
	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			return fmt.Errorf("browser: close: %w", err)
		}
	}
	if f.lnch != nil {
		f.lnch.Cleanup()
	}
	return nil
}
