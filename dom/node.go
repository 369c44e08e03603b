package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the named attribute on an element node.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the element carries the named attribute.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// HasAttrUp reports whether n or any of its ancestors carries the named
// attribute. Used to recognise engine-owned subtrees.
func HasAttrUp(n *html.Node, key string) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if HasAttr(cur, key) {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest ancestor of n (including n itself) for which
// pred returns true, or nil.
func Ancestor(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// Walk visits n and its subtree in document (pre-)order. fn returns false to
// skip the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Text extracts the visible text of a subtree, trimmed, with single spaces
// between fragments. Script and style content is skipped.
func Text(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(cur *html.Node) bool {
		if cur.Type == html.ElementNode {
			switch cur.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return false
			}
		}
		if cur.Type == html.TextNode {
			t := strings.TrimSpace(cur.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		return true
	})
	return sb.String()
}

// Element builds a detached element node with the given tag and attribute
// key/value pairs.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// TextNode builds a detached text node.
func TextNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}
