package glossary

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

// definitionPolicy is the sanitizer applied to every definition before it is
// stored. UGC plus target attributes, so "open in new tab" links survive.
var definitionPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("target", "rel").OnElements("a")
	return p
}()

// SanitizeDefinition strips unsafe markup from user-authored definition HTML.
// The result is what gets persisted and later injected into host documents,
// so sanitization happens on write, not on render.
func SanitizeDefinition(html string) string {
	return strings.TrimSpace(definitionPolicy.Sanitize(html))
}

// PlainDefinition converts a definition to markdown-flavored plain text, for
// logs, exports and search indexing. Conversion failure degrades to the
// tag-stripped input rather than erroring.
func PlainDefinition(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(html))
	}
	return strings.TrimSpace(md)
}
