package wiki

import (
	"log/slog"

	"github.com/twellen/glossover/glossary"
)

// Dictionary is the lookup-ready index over the enabled glossary entries:
// normalizedTrigger → entry. It is built wholesale from a snapshot of the
// entry set and never mutated in place; when entries change, the
// coordinator discards the index and builds a fresh one.
type Dictionary struct {
	triggers map[string]*glossary.Entry
	skipped  int
}

// BuildDictionary indexes the enabled entries under every usable normalized
// trigger (primary term plus aliases). Entries with no usable form are
// skipped and counted, not reported individually. When two entries claim the
// same trigger the first in input order wins.
func BuildDictionary(entries []glossary.Entry, logger *slog.Logger) *Dictionary {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dictionary{triggers: make(map[string]*glossary.Entry, len(entries)*2)}
	for i := range entries {
		e := &entries[i]
		if !e.Enabled {
			continue
		}
		usable := false
		for _, t := range e.Triggers() {
			n := Normalize(t)
			if n == "" {
				continue
			}
			usable = true
			if _, taken := d.triggers[n]; !taken {
				d.triggers[n] = e
			}
		}
		if !usable {
			d.skipped++
		}
	}

	if d.skipped > 0 {
		logger.Warn("wiki: dictionary build skipped malformed entries", "skipped", d.skipped)
	}
	logger.Debug("wiki: dictionary built", "triggers", len(d.triggers))
	return d
}

// Match looks up a node's text against the index. The text is normalized and
// decoration-trimmed, then matched by exact equality or by the two-way
// pluralization bridge. There is no substring matching: "Company Domain
// Name" never hits the trigger "company".
func (d *Dictionary) Match(text string) (*glossary.Entry, bool) {
	if d == nil || len(d.triggers) == 0 {
		return nil, false
	}

	t := TrimDecorations(Normalize(text))
	if t == "" {
		return nil, false
	}
	if e, ok := d.triggers[t]; ok {
		return e, true
	}
	for _, v := range pluralVariants(t) {
		if e, ok := d.triggers[v]; ok {
			return e, true
		}
	}
	return nil, false
}

// Len returns the number of indexed triggers.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.triggers)
}

// Skipped returns the count of entries dropped for having no usable trigger.
func (d *Dictionary) Skipped() int {
	if d == nil {
		return 0
	}
	return d.skipped
}

// Invalidate clears the index. The coordinator calls this when the external
// glossary changes; the next cycle builds a fresh dictionary.
func (d *Dictionary) Invalidate() {
	if d == nil {
		return
	}
	d.triggers = make(map[string]*glossary.Entry)
	d.skipped = 0
}
