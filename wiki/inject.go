package wiki

import (
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/twellen/glossover/dom"
	"github.com/twellen/glossover/glossary"
	"github.com/twellen/glossover/idgen"
)

// Marker attributes. Every node the engine writes into the host document
// carries exactly one of these, which is how the engine's own writes are
// filtered out of mutation notifications and how RemoveAll finds everything
// it must undo.
const (
	MarkAttr  = "data-glossover-mark"
	IconAttr  = "data-glossover-icon"
	PopupAttr = "data-glossover-popup"
)

// Mark is one injected annotation: the wrapper element around the matched
// content and the icon appended inside it.
type Mark struct {
	ID      string
	EntryID string
	Section Section
	Wrapper *html.Node
	Icon    *html.Node
}

// inlineTags are the parents the injector wraps whole instead of wrapping the
// bare text node, so the marker does not split an inline element's content.
var inlineTags = map[atom.Atom]struct{}{
	atom.Span: {}, atom.A: {}, atom.B: {}, atom.I: {}, atom.Em: {},
	atom.Strong: {}, atom.Label: {}, atom.Small: {}, atom.Abbr: {},
}

const wrapperStyle = "position:relative;padding-right:1.4em;"
const iconStyle = "position:absolute;right:0;top:0;cursor:pointer;font-style:normal;"

// Injector writes and removes markers. All tree writes go through the
// document's mutators so subscription filtering applies.
type Injector struct {
	doc    *dom.Document
	newID  idgen.Generator
	logger *slog.Logger
}

// NewInjector builds an injector for doc.
func NewInjector(doc *dom.Document, logger *slog.Logger) *Injector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Injector{doc: doc, newID: idgen.NanoID(8), logger: logger}
}

// Inject wraps the matched node (or its inline parent) in a marker span and
// appends the info icon. A target already inside a marked subtree is skipped,
// which makes injection idempotent across overlapping cycles.
func (j *Injector) Inject(m Match) (*Mark, bool) {
	target := m.Node
	if p := m.Node.Parent; p != nil {
		if _, inline := inlineTags[p.DataAtom]; inline {
			target = p
		}
	}
	if target.Parent == nil || dom.HasAttrUp(target, MarkAttr) {
		return nil, false
	}

	id := j.newID()
	wrapper := dom.Element("span",
		MarkAttr, id,
		"data-entry", m.Entry.ID,
		"data-section", string(m.Section),
		"style", wrapperStyle,
	)
	j.doc.Wrap(target, wrapper)

	// The hover title shows the definition as plain text; the term itself
	// stays on the accessibility label.
	title := m.Entry.Term
	if plain := glossary.PlainDefinition(m.Entry.Definition); plain != "" {
		title = plain
	}
	icon := dom.Element("i",
		IconAttr, id,
		"title", title,
		"aria-label", m.Entry.Term,
		"style", iconStyle,
	)
	j.doc.AppendChild(icon, dom.TextNode("ⓘ"))
	j.doc.AppendChild(wrapper, icon)

	return &Mark{
		ID:      id,
		EntryID: m.Entry.ID,
		Section: m.Section,
		Wrapper: wrapper,
		Icon:    icon,
	}, true
}

// RemoveAll strips every engine-owned node from the document and restores
// the original structure: icons are detached, wrappers unwrapped in place,
// popup panels removed. A marker node that lost its shape (a host rewrite
// moved its children) is replaced by its visible text instead of unwrapped,
// so no engine attribute ever survives removal.
func (j *Injector) RemoveAll() int {
	removed := 0

	for _, icon := range j.doc.Find(hasAttr(IconAttr)) {
		j.doc.RemoveNode(icon)
		removed++
	}
	for _, wrapper := range j.doc.Find(hasAttr(MarkAttr)) {
		if wrapper.FirstChild != nil {
			j.doc.Unwrap(wrapper)
		} else {
			j.doc.RemoveNode(wrapper)
		}
		removed++
	}
	for _, panel := range j.doc.Find(hasAttr(PopupAttr)) {
		j.doc.RemoveNode(panel)
		removed++
	}

	// Anything still carrying an engine attribute is damaged; flatten it to
	// its text so the host content survives.
	for _, stray := range j.doc.Find(func(n *html.Node) bool {
		return dom.HasAttr(n, MarkAttr) || dom.HasAttr(n, IconAttr) || dom.HasAttr(n, PopupAttr)
	}) {
		if text := dom.Text(stray); text != "" {
			j.doc.ReplaceNode(stray, dom.TextNode(text))
		} else {
			j.doc.RemoveNode(stray)
		}
		removed++
	}

	if removed > 0 {
		j.logger.Debug("wiki: markers removed", "count", removed)
	}
	return removed
}

func hasAttr(key string) func(*html.Node) bool {
	return func(n *html.Node) bool { return dom.HasAttr(n, key) }
}
