package wiki

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/twellen/glossover/dom"
)

// Section is a coarse classification of a node's page region. It scopes
// deduplication and marker density; it does not affect matching itself.
type Section string

const (
	SectionSidebar   Section = "sidebar"
	SectionPrimary   Section = "primary"
	SectionSecondary Section = "secondary"
	SectionHeader    Section = "header"
	SectionModal     Section = "modal"
	SectionDropdown  Section = "dropdown"
	SectionFilter    Section = "filter"
	SectionNav       Section = "nav"
	SectionTable     Section = "table"
	SectionFallback  Section = "fallback"
)

type landmark struct {
	section Section
	match   func(*html.Node) bool
}

// regionIs matches the host's stable attribute markers. Both data-region and
// data-test-id are checked; the host page uses either, depending on the
// component.
func regionIs(names ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, key := range []string{"data-region", "data-test-id"} {
			v, ok := dom.Attr(n, key)
			if !ok {
				continue
			}
			for _, name := range names {
				if v == name {
					return true
				}
			}
		}
		return false
	}
}

func roleIs(role string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := dom.Attr(n, "role")
		return ok && v == role
	}
}

func tagIs(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func anyOf(preds ...func(*html.Node) bool) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, p := range preds {
			if p(n) {
				return true
			}
		}
		return false
	}
}

// Classifier maps a node to a Section by walking the ancestor chain against
// a fixed, prioritized landmark list. The list is host-specific: when the
// host's structure changes, classification silently degrades to
// SectionFallback rather than failing.
type Classifier struct {
	landmarks []landmark
}

// NewClassifier builds the classifier with the fixed landmark list.
func NewClassifier() *Classifier {
	return &Classifier{landmarks: []landmark{
		{SectionModal, anyOf(roleIs("dialog"), tagIs(atom.Dialog), regionIs("modal", "overlay-modal"))},
		{SectionDropdown, anyOf(roleIs("listbox"), roleIs("menu"), regionIs("dropdown"))},
		{SectionFilter, regionIs("filter", "filter-panel")},
		{SectionSidebar, anyOf(regionIs("sidebar", "left-sidebar", "right-sidebar"), tagIs(atom.Aside))},
		{SectionHeader, anyOf(regionIs("header", "page-header"), tagIs(atom.Header))},
		{SectionNav, anyOf(roleIs("navigation"), tagIs(atom.Nav), regionIs("nav"))},
		{SectionTable, tagIs(atom.Table)},
		{SectionPrimary, anyOf(regionIs("primary", "main-pane"), roleIs("main"), tagIs(atom.Main))},
		{SectionSecondary, regionIs("secondary", "secondary-pane")},
	}}
}

// Classify walks upward from n and returns the first matching landmark, or
// SectionFallback when no ancestor is a known landmark.
func (c *Classifier) Classify(n *html.Node) Section {
	for cur := n; cur != nil; cur = cur.Parent {
		for _, lm := range c.landmarks {
			if lm.match(cur) {
				return lm.section
			}
		}
	}
	return SectionFallback
}

// anchorPred recognises the top-level regions that bound one scan pass.
var anchorPred = anyOf(
	regionIs("sidebar", "left-sidebar", "right-sidebar", "primary", "main-pane",
		"secondary", "secondary-pane", "header", "page-header", "modal", "overlay-modal"),
	roleIs("dialog"), roleIs("main"),
	tagIs(atom.Main), tagIs(atom.Aside), tagIs(atom.Header), tagIs(atom.Dialog),
)

// AnchorRoots selects the scan roots for one apply cycle: every top-level
// landmark region present in the document, in document order, nested regions
// folded into their outermost ancestor. When the host exposes no landmark at
// all the body is the single root, so scanning degrades instead of failing.
func AnchorRoots(doc *dom.Document) []*html.Node {
	var roots []*html.Node
	dom.Walk(doc.Root(), func(n *html.Node) bool {
		if n.Type == html.ElementNode && anchorPred(n) {
			roots = append(roots, n)
			return false // nested landmarks scan with their ancestor
		}
		return true
	})
	if len(roots) == 0 {
		roots = append(roots, doc.Body())
	}
	return roots
}
