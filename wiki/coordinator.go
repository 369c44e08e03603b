// Package wiki is the contextual annotation engine: it scans a document for
// glossary-term matches, wraps each first-per-section hit in an interactive
// marker, and keeps the markers consistent while the document mutates
// underneath it.
package wiki

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/twellen/glossover/dom"
	"github.com/twellen/glossover/glossary"
)

// State is the coordinator lifecycle state. Transitions are guarded under
// the coordinator mutex; a cycle never observes a half-applied document.
type State string

const (
	// StateIdle means no apply cycle is running.
	StateIdle State = "idle"
	// StateApplying means a cycle is mid-flight; re-entrant triggers are
	// dropped, not queued.
	StateApplying State = "applying"
	// StateRemoved means Cleanup ran; every entry point is a no-op.
	StateRemoved State = "removed"
)

// Stats counts coordinator activity, for logging and tests.
type Stats struct {
	Applies          int
	SkippedReentrant int
	SkippedQuiet     int
	Notifications    int
	Marks            int
}

// EntriesFunc supplies the current glossary snapshot. Called lazily at the
// start of a cycle whenever the dictionary has been invalidated.
type EntriesFunc func() []glossary.Entry

// Coordinator owns the apply/remove lifecycle. All entry points (Apply,
// Remove, SetEntries, SetEnabled, mutation notifications, timer callbacks)
// serialize on one mutex; the state guard on top of it rejects re-entry from
// the same goroutine path, so a cycle's own writes can never trigger a
// nested cycle.
type Coordinator struct {
	mu sync.Mutex

	doc      *dom.Document
	sub      *dom.Subscription
	scanner  *Scanner
	injector *Injector
	popup    *Popup
	entries  EntriesFunc
	cfg      Config
	logger   *slog.Logger

	state   State
	enabled bool
	dict    *Dictionary
	marks   map[string]*Mark
	stats   Stats

	debounce *time.Timer
	passes   []*time.Timer
}

// NewCoordinator wires the engine onto doc. entries supplies glossary
// snapshots; geo may be nil. The coordinator starts enabled and idle but does
// not scan until Apply (or a mutation) runs.
func NewCoordinator(doc *dom.Document, entries EntriesFunc, geo Geometry, cfg Config, logger *slog.Logger) *Coordinator {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		doc:      doc,
		scanner:  NewScanner(NewClassifier(), nil, cfg),
		injector: NewInjector(doc, logger),
		popup:    NewPopup(doc, geo, cfg, logger),
		entries:  entries,
		cfg:      cfg,
		logger:   logger,
		state:    StateIdle,
		enabled:  true,
		marks:    make(map[string]*Mark),
	}
	c.sub = doc.Subscribe(c.onMutation, MarkAttr, IconAttr, PopupAttr)
	return c
}

// Popup exposes the popup controller for interaction routing.
func (c *Coordinator) Popup() *Popup { return c.popup }

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a copy of the activity counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Mark returns the mark with the given ID, or nil. Used by interaction
// routing to resolve an icon back to its mark.
func (c *Coordinator) Mark(id string) *Mark {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marks[id]
}

// Entry resolves a mark's entry from the current dictionary snapshot.
func (c *Coordinator) Entry(m *Mark) *glossary.Entry {
	if m == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dict == nil {
		return nil
	}
	for _, e := range c.dict.triggers {
		if e.ID == m.EntryID {
			return e
		}
	}
	return nil
}

// Apply runs one full annotation cycle now.
func (c *Coordinator) Apply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked()
}

// Remove strips all markers and dismisses the popup, leaving the coordinator
// idle and still subscribed.
func (c *Coordinator) Remove() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.stopPassesLocked()
	c.sub.Pause()
	c.popup.Deactivate()
	c.injector.RemoveAll()
	c.marks = make(map[string]*Mark)
	c.sub.Resume()
}

// SetEntries invalidates the dictionary and re-applies with the new snapshot.
func (c *Coordinator) SetEntries() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved {
		return
	}
	c.dict = nil
	c.applyLocked()
}

// SetEnabled toggles the engine. Disabling removes all markers; enabling
// applies immediately.
func (c *Coordinator) SetEnabled(on bool) {
	c.mu.Lock()
	c.enabled = on
	c.mu.Unlock()
	if on {
		c.Apply()
	} else {
		c.Remove()
	}
}

// ApplyForDynamicView applies now and schedules the configured follow-up
// passes to catch content that streams in after a view switch. A follow-up
// pass is skipped when the document's loading placeholders have not changed
// since the previous pass, which is the cheap signal that nothing new
// arrived.
func (c *Coordinator) ApplyForDynamicView() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved {
		return
	}
	c.stopPassesLocked()
	c.applyLocked()

	last := c.countPlaceholdersLocked()
	for _, delay := range c.cfg.DynamicPasses {
		t := time.AfterFunc(delay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.state == StateRemoved {
				return
			}
			cur := c.countPlaceholdersLocked()
			if cur == last {
				c.stats.SkippedQuiet++
				return
			}
			last = cur
			c.applyLocked()
		})
		c.passes = append(c.passes, t)
	}
}

// Cleanup tears the engine down: timers stopped, subscription closed, all
// markers removed. The coordinator is unusable afterwards.
func (c *Coordinator) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.stopPassesLocked()
	c.sub.Close()
	c.popup.Deactivate()
	c.injector.RemoveAll()
	c.marks = make(map[string]*Mark)
	c.state = StateRemoved
	c.logger.Debug("wiki: coordinator cleaned up", "applies", c.stats.Applies)
}

// onMutation is the subscription handler. Engine-owned subtrees are already
// filtered by the subscription's ignore attributes; everything that reaches
// here is a host change, so the debounce window restarts.
func (c *Coordinator) onMutation(dom.Mutation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved || !c.enabled {
		return
	}
	c.stats.Notifications++
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.cfg.DebounceWindow, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.applyLocked()
	})
}

// applyLocked runs one cycle under the mutex: remove everything, rebuild the
// dictionary if invalidated, scan the anchor roots, dedup, inject. The
// subscription is paused around the tree writes so the cycle's own removals
// of host-adjacent structure cannot restart the debounce.
func (c *Coordinator) applyLocked() {
	if c.state != StateIdle || !c.enabled {
		if c.state == StateApplying {
			c.stats.SkippedReentrant++
		}
		return
	}
	c.state = StateApplying
	defer func() { c.state = StateIdle }()

	c.sub.Pause()
	defer c.sub.Resume()

	c.popup.Deactivate()
	c.injector.RemoveAll()
	c.marks = make(map[string]*Mark)

	if c.dict == nil {
		c.dict = BuildDictionary(c.entries(), c.logger)
	}
	if c.dict.Len() == 0 {
		return
	}

	roots := AnchorRoots(c.doc)
	matches := c.scanner.Scan(roots, c.dict)
	matches = FilterFirstPerSection(matches, NewShownRegistry())

	for _, m := range matches {
		mark, ok := c.injector.Inject(m)
		if !ok {
			continue
		}
		c.marks[mark.ID] = mark
	}

	c.stats.Applies++
	c.stats.Marks = len(c.marks)
	c.logger.Debug("wiki: annotations applied",
		"roots", len(roots), "matches", len(matches), "marks", len(c.marks))
}

func (c *Coordinator) stopPassesLocked() {
	for _, t := range c.passes {
		t.Stop()
	}
	c.passes = nil
}

// countPlaceholdersLocked counts the loading placeholders currently in the
// document: skeleton and spinner class names, data-loading, aria-busy.
func (c *Coordinator) countPlaceholdersLocked() int {
	n := 0
	dom.Walk(c.doc.Root(), func(cur *html.Node) bool {
		if cur.Type != html.ElementNode {
			return true
		}
		if isPlaceholder(cur) {
			n++
		}
		return true
	})
	return n
}

func isPlaceholder(n *html.Node) bool {
	if dom.HasAttr(n, "data-loading") {
		return true
	}
	if v, ok := dom.Attr(n, "aria-busy"); ok && v == "true" {
		return true
	}
	if class, ok := dom.Attr(n, "class"); ok {
		for _, name := range []string{"loading", "skeleton", "spinner"} {
			if strings.Contains(class, name) {
				return true
			}
		}
	}
	return false
}
