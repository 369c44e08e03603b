package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Path computes an XPath-style location for a node: element segments carry a
// 1-based sibling index when the parent has more than one child with the same
// tag, text nodes end in "/text()".
func Path(n *html.Node) string {
	if n == nil {
		return ""
	}

	var segs []string
	for cur := n; cur != nil; cur = cur.Parent {
		switch cur.Type {
		case html.DocumentNode, html.DoctypeNode:
			continue
		case html.TextNode:
			segs = append([]string{"text()"}, segs...)
		case html.CommentNode:
			segs = append([]string{"comment()"}, segs...)
		case html.ElementNode:
			name := strings.ToLower(cur.Data)
			idx, total := siblingIndex(cur)
			if total > 1 {
				name = fmt.Sprintf("%s[%d]", name, idx)
			}
			segs = append([]string{name}, segs...)
		}
	}
	return "/" + strings.Join(segs, "/")
}

// siblingIndex returns the node's 1-based position among same-tag element
// siblings, and the total count of such siblings.
func siblingIndex(n *html.Node) (idx, total int) {
	if n.Parent == nil {
		return 1, 1
	}
	idx = 1
	for sib := n.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode || sib.Data != n.Data {
			continue
		}
		total++
		if sib == n {
			idx = total
		}
	}
	if total == 0 {
		total = 1
	}
	return idx, total
}
