package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document owns a parsed HTML tree. All mutations go through Document
// methods so that subscribers receive a notification for every change.
type Document struct {
	root *html.Node
	subs []*Subscription
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document root node.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the <body> element, or the root when absent.
func (d *Document) Body() *html.Node {
	var body *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if body != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return d.root
	}
	return body
}

// Render serialises the document.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render: %w", err)
	}
	return nil
}

// HTML returns the serialised document as a string.
func (d *Document) HTML() (string, error) {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Find returns all nodes for which pred returns true, in document order.
func (d *Document) Find(pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(d.root, func(n *html.Node) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// First returns the first node in document order for which pred returns
// true, or nil.
func (d *Document) First(pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// ---------- Subscriptions ----------

// Subscription delivers mutation notifications to a handler. Mutations whose
// subject node (or any of its ancestors) carries one of the ignore attributes
// are discarded at the source. This is how the engine's own writes never
// come back as change notifications.
type Subscription struct {
	doc         *Document
	fn          func(Mutation)
	ignoreAttrs []string
	paused      bool
	closed      bool
}

// Subscribe registers a mutation handler. ignoreAttrs lists attribute names
// that mark subtrees whose mutations must not be delivered.
func (d *Document) Subscribe(fn func(Mutation), ignoreAttrs ...string) *Subscription {
	s := &Subscription{doc: d, fn: fn, ignoreAttrs: ignoreAttrs}
	d.subs = append(d.subs, s)
	return s
}

// Pause stops delivery without discarding the subscription.
func (s *Subscription) Pause() { s.paused = true }

// Resume re-enables delivery.
func (s *Subscription) Resume() { s.paused = false }

// Close removes the subscription from the document.
func (s *Subscription) Close() {
	if s.closed {
		return
	}
	s.closed = true
	subs := s.doc.subs[:0]
	for _, sub := range s.doc.subs {
		if sub != s {
			subs = append(subs, sub)
		}
	}
	s.doc.subs = subs
}

func (d *Document) notify(subject *html.Node, m Mutation) {
	for _, s := range d.subs {
		if s.paused || s.closed {
			continue
		}
		if ignored(subject, s.ignoreAttrs) {
			continue
		}
		s.fn(m)
	}
}

// ignored reports whether the subject node sits inside (or is itself) a
// subtree marked with one of the ignore attributes.
func ignored(subject *html.Node, attrs []string) bool {
	for _, a := range attrs {
		if HasAttrUp(subject, a) {
			return true
		}
	}
	return false
}

// ---------- Mutators ----------

// AppendChild attaches child as the last child of parent.
func (d *Document) AppendChild(parent, child *html.Node) {
	parent.AppendChild(child)
	d.notify(child, Mutation{Op: OpInsert, Path: Path(child), Tag: child.Data})
}

// InsertBefore attaches child immediately before ref under parent. A nil ref
// appends.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if ref == nil {
		d.AppendChild(parent, child)
		return
	}
	parent.InsertBefore(child, ref)
	d.notify(child, Mutation{Op: OpInsert, Path: Path(child), Tag: child.Data})
}

// RemoveNode detaches n from its parent.
func (d *Document) RemoveNode(n *html.Node) {
	if n.Parent == nil {
		return
	}
	path := Path(n)
	n.Parent.RemoveChild(n)
	d.notify(n, Mutation{Op: OpRemove, Path: path, Tag: n.Data})
}

// ReplaceNode swaps old for repl in the tree.
func (d *Document) ReplaceNode(old, repl *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	path := Path(old)
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
	d.notify(old, Mutation{Op: OpRemove, Path: path, Tag: old.Data})
	d.notify(repl, Mutation{Op: OpInsert, Path: Path(repl), Tag: repl.Data})
}

// SetText updates a text node's data.
func (d *Document) SetText(textNode *html.Node, data string) {
	textNode.Data = data
	d.notify(textNode, Mutation{Op: OpText, Path: Path(textNode), Value: data})
}

// SetAttr sets (or replaces) an attribute on an element.
func (d *Document) SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			d.notify(n, Mutation{Op: OpAttr, Path: Path(n), Tag: n.Data, Attr: key, Value: val})
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	d.notify(n, Mutation{Op: OpAttr, Path: Path(n), Tag: n.Data, Attr: key, Value: val})
}

// RemoveAttr deletes an attribute from an element.
func (d *Document) RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			d.notify(n, Mutation{Op: OpAttr, Path: Path(n), Tag: n.Data, Attr: key})
			return
		}
	}
}

// Wrap inserts wrapper at n's position and moves n inside it. The wrapper
// must be detached.
func (d *Document) Wrap(n, wrapper *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	next := n.NextSibling
	parent.RemoveChild(n)
	wrapper.AppendChild(n)
	parent.InsertBefore(wrapper, next)
	d.notify(wrapper, Mutation{Op: OpInsert, Path: Path(wrapper), Tag: wrapper.Data})
}

// Unwrap moves wrapper's children up to its parent, in place, and removes
// the wrapper. The inverse of Wrap.
func (d *Document) Unwrap(wrapper *html.Node) {
	parent := wrapper.Parent
	if parent == nil {
		return
	}
	path := Path(wrapper)
	for wrapper.FirstChild != nil {
		c := wrapper.FirstChild
		wrapper.RemoveChild(c)
		parent.InsertBefore(c, wrapper)
	}
	parent.RemoveChild(wrapper)
	d.notify(wrapper, Mutation{Op: OpRemove, Path: path, Tag: wrapper.Data})
}

// Reset replaces the whole tree. Subscribers receive a single OpReset.
func (d *Document) Reset(root *html.Node) {
	d.root = root
	d.notify(root, Mutation{Op: OpReset, Path: "/"})
}
