package render

import (
	"github.com/microcosm-cc/bluemonday"
)

// newPolicy builds the allow-list sanitization policy. It starts from the
// user-generated-content baseline (script-capable elements, inline event
// handlers, and javascript: URLs are already rejected there) and adds the
// attributes the pipeline itself emits: highlighting classes, heading ids,
// and GFM task list checkboxes.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Chroma emits class-annotated pre/code/span wrappers.
	p.AllowAttrs("class").OnElements("pre", "code", "span")

	// Heading ids and the self-referencing anchors around heading text.
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	// GFM task list items render as disabled checkboxes.
	p.AllowElements("input")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")

	// GFM table cell alignment.
	p.AllowAttrs("align").OnElements("th", "td")

	return p
}
