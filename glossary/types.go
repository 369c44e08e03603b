// Package glossary is the content collaborator of the annotation engine: the
// user-authored term definitions, their persistence, and change watching.
// The engine in package wiki consumes entries read-only.
package glossary

// Entry is one user-authored glossary definition. A term is triggered by its
// primary Term or any of its Aliases.
type Entry struct {
	ID         string            `json:"id"`
	Term       string            `json:"term"`
	Aliases    []string          `json:"aliases,omitempty"`
	Definition string            `json:"definition_html"` // sanitized rich text
	Category   string            `json:"category,omitempty"`
	Link       string            `json:"link,omitempty"`
	Enabled    bool              `json:"enabled"`
	Scope      map[string]string `json:"scope,omitempty"` // free-form scope metadata
	UpdatedAt  int64             `json:"updated_at"`      // epoch milliseconds
}

// Triggers returns the primary term followed by all aliases.
func (e *Entry) Triggers() []string {
	out := make([]string, 0, 1+len(e.Aliases))
	out = append(out, e.Term)
	out = append(out, e.Aliases...)
	return out
}
