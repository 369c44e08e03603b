package wiki

import (
	"regexp"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/twellen/glossover/dom"
	"github.com/twellen/glossover/glossary"
)

// Match is one text node that hit a dictionary trigger, with the entry it
// resolved to and the section it sits in.
type Match struct {
	Node    *html.Node
	Entry   *glossary.Entry
	Section Section
}

// currencyNumeric rejects fragments that are purely numeric or monetary, like
// "$1,200" or "45%". They can normalize into short strings that shadow real
// triggers.
var currencyNumeric = regexp.MustCompile(`^[$€£¥]?\s?\d[\d,.]*\s?%?$`)

// AcceptFunc decides whether a text node is a candidate for lookup. The
// default (newAccept) rejects engine-owned subtrees, form controls, script
// and style content, and fragments outside the configured length bounds.
type AcceptFunc func(n *html.Node) bool

func newAccept(cfg Config) AcceptFunc {
	return func(n *html.Node) bool {
		if n == nil || n.Type != html.TextNode {
			return false
		}
		parent := n.Parent
		if parent == nil {
			return false
		}
		switch parent.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template,
			atom.Input, atom.Textarea, atom.Select, atom.Option, atom.Button:
			return false
		}
		if dom.HasAttrUp(parent, MarkAttr) || dom.HasAttrUp(parent, IconAttr) || dom.HasAttrUp(parent, PopupAttr) {
			return false
		}
		text := TrimDecorations(Normalize(n.Data))
		// Bounds count characters, not bytes, so multibyte text is not
		// rejected early.
		if r := utf8.RuneCountInString(text); r < cfg.MinTextLen || r > cfg.MaxTextLen {
			return false
		}
		if currencyNumeric.MatchString(text) {
			return false
		}
		return true
	}
}

// Scanner finds trigger hits inside the anchor roots of a document.
type Scanner struct {
	classifier *Classifier
	accept     AcceptFunc
}

// NewScanner builds a scanner. A nil accept installs the default predicate
// for cfg.
func NewScanner(classifier *Classifier, accept AcceptFunc, cfg Config) *Scanner {
	cfg.defaults()
	if accept == nil {
		accept = newAccept(cfg)
	}
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Scanner{classifier: classifier, accept: accept}
}

// Scan walks each root in order and returns every text node whose content
// hits the dictionary, classified by section. Subtrees the engine owns are
// pruned during the walk so markers never match their own text.
func (s *Scanner) Scan(roots []*html.Node, dict *Dictionary) []Match {
	if dict.Len() == 0 {
		return nil
	}
	var out []Match
	for _, root := range roots {
		dom.Walk(root, func(n *html.Node) bool {
			if n.Type == html.ElementNode {
				switch n.DataAtom {
				case atom.Script, atom.Style, atom.Noscript, atom.Template:
					return false
				}
				if dom.HasAttr(n, MarkAttr) || dom.HasAttr(n, IconAttr) || dom.HasAttr(n, PopupAttr) {
					return false
				}
			}
			if n.Type != html.TextNode {
				return true
			}
			if !s.accept(n) {
				return true
			}
			entry, ok := dict.Match(n.Data)
			if !ok {
				return true
			}
			out = append(out, Match{
				Node:    n,
				Entry:   entry,
				Section: s.classifier.Classify(n),
			})
			return true
		})
	}
	return out
}
