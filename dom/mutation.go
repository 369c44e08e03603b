// Package dom provides the mutable document tree the annotation engine
// operates on: a parsed HTML tree with a single mutation surface that emits
// structured change notifications to subscribers.
//
// The Document is deliberately not locked. It has a single-owner model: one
// goroutine (the coordinator's cycle, or the host loop feeding it) performs
// all reads and writes. Notifications are delivered synchronously from the
// mutating call, so subscribers observe a consistent tree.
package dom

// Op is the kind of tree mutation observed.
type Op string

const (
	OpInsert Op = "insert" // node attached under a parent
	OpRemove Op = "remove" // node detached
	OpText   Op = "text"   // text node data changed
	OpAttr   Op = "attr"   // attribute set or removed
	OpReset  Op = "reset"  // entire tree replaced
)

// Mutation is a single structural change to the document, located by an
// XPath-style node path computed before the change was applied.
type Mutation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Tag   string `json:"tag,omitempty"`
	Attr  string `json:"attr,omitempty"`  // attribute name for OpAttr
	Value string `json:"value,omitempty"` // new text or attribute value
}
