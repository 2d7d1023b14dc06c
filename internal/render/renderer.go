// Package render implements the Markdown to sanitized HTML pipeline.
//
// Stage order is fixed: goldmark parse with GFM extensions and slug-derived
// heading ids, fenced code blocks routed through the highlight service during
// HTML conversion, a post-pass wrapping headings in self-referencing anchors,
// and bluemonday sanitization last. Sanitization is the single XSS boundary;
// no earlier stage may assume content is safe.
package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	"git.home.luguber.info/inful/docserve/internal/highlight"
)

// Renderer converts Markdown bodies to sanitized HTML strings.
// Safe for concurrent use once constructed.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New constructs a Renderer around the given highlight service.
func New(highlighter *highlight.Service) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, task lists, autolinks
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Raw HTML passes through here and is stripped by the
			// sanitizer below, matching the single-boundary design.
			gmhtml.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(newCodeBlockRenderer(highlighter), 100),
			),
		),
	)

	return &Renderer{
		md:     md,
		policy: newPolicy(),
	}
}

// Render runs the full pipeline on a Markdown body (frontmatter already
// removed) and returns the sanitized HTML string.
func (r *Renderer) Render(body []byte) (string, error) {
	ctx := parser.NewContext(parser.WithIDs(slugIDs{}))
	doc := r.md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, doc); err != nil {
		return "", err
	}

	anchored, err := injectHeadingAnchors(buf.String())
	if err != nil {
		return "", err
	}

	return r.policy.Sanitize(anchored), nil
}

// slugIDs generates heading id attributes through the shared slugify rule so
// rendered anchors always match the heading extractor's outline, including
// the empty id a punctuation-only heading slugifies to.
//
// Put is a no-op: equal heading texts intentionally share an id instead of
// being deduplicated with numeric suffixes.
type slugIDs struct{}

func (slugIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(docmodel.Slugify(string(value)))
}

func (slugIDs) Put(value []byte) {}
