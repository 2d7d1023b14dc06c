package docs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	"git.home.luguber.info/inful/docserve/internal/highlight"
	"git.home.luguber.info/inful/docserve/internal/render"
)

func newTestAssembler() *Assembler {
	return NewAssembler(render.New(highlight.NewService(highlight.DefaultOptions())))
}

func TestAssemble_EndToEndScenario(t *testing.T) {
	a := newTestAssembler()
	raw := []byte("---\ntitle: Setup\norder: 2\n---\n# Setup\nRun `npm i`.")

	doc, err := a.Assemble(context.Background(), raw, "guide/setup")
	require.NoError(t, err)

	require.Equal(t, "guide/setup", doc.Slug)
	require.Equal(t, "Setup", doc.Title)
	require.Equal(t, []docmodel.Heading{{ID: "setup", Text: "Setup", Level: 1}}, doc.Headings)
	require.NotNil(t, doc.Frontmatter.Order)
	require.Equal(t, 2, *doc.Frontmatter.Order)
	require.Contains(t, doc.Content, `id="setup"`)
	require.Contains(t, doc.Content, "<code>npm i</code>")
}

func TestAssemble_TitlePrecedence(t *testing.T) {
	a := newTestAssembler()
	ctx := context.Background()

	// Frontmatter wins.
	doc, err := a.Assemble(ctx, []byte("---\ntitle: FM Title\n---\n# Heading Title\n"), "some/page")
	require.NoError(t, err)
	require.Equal(t, "FM Title", doc.Title)

	// First heading next.
	doc, err = a.Assemble(ctx, []byte("# Heading Title\ntext\n"), "some/page")
	require.NoError(t, err)
	require.Equal(t, "Heading Title", doc.Title)

	// Formatted slug last.
	doc, err = a.Assemble(ctx, []byte("no headings here\n"), "guide/getting-started")
	require.NoError(t, err)
	require.Equal(t, "Getting Started", doc.Title)
}

func TestAssemble_MalformedFrontmatterDegrades(t *testing.T) {
	a := newTestAssembler()

	doc, err := a.Assemble(context.Background(), []byte("---\ntitle: [broken\n---\n# Body\n"), "page")
	require.NoError(t, err)
	require.Empty(t, doc.Frontmatter.Title)
	// The delimiter lines end up in the body but nothing is lost.
	require.NotEmpty(t, doc.Content)
}

func TestAssemble_Idempotent(t *testing.T) {
	a := newTestAssembler()
	raw := []byte("---\ntitle: T\n---\n# One\n\n## Two\n\n```go\nvar x int\n```\n")

	first, err := a.Assemble(context.Background(), raw, "p")
	require.NoError(t, err)
	second, err := a.Assemble(context.Background(), raw, "p")
	require.NoError(t, err)

	require.Equal(t, first.Content, second.Content)
	require.Equal(t, first.Headings, second.Headings)
}

func TestAssemble_HeadingIDsMatchRenderedAnchors(t *testing.T) {
	a := newTestAssembler()
	raw := []byte("# Install & Run\n\n## API Reference\n")

	doc, err := a.Assemble(context.Background(), raw, "p")
	require.NoError(t, err)
	require.Len(t, doc.Headings, 2)
	for _, h := range doc.Headings {
		require.Contains(t, doc.Content, `id="`+h.ID+`"`)
		require.Contains(t, doc.Content, `href="#`+h.ID+`"`)
	}
}

func TestAssemble_PunctuationOnlyHeading(t *testing.T) {
	a := newTestAssembler()

	// "???" slugifies to nothing; the outline and the rendered HTML must
	// agree on the empty id, and no self-anchor is emitted for it.
	doc, err := a.Assemble(context.Background(), []byte("# ???\n\ntext\n"), "p")
	require.NoError(t, err)
	require.Len(t, doc.Headings, 1)
	require.Equal(t, "", doc.Headings[0].ID)
	require.Contains(t, doc.Content, `id=""`)
	require.NotContains(t, doc.Content, `href="#`)
}

func TestAssemble_SanitizesDangerousInput(t *testing.T) {
	a := newTestAssembler()
	raw := []byte("# T\n\n<script>alert(1)</script>\n\n<img src=x onerror=alert(2)>\n\n[x](javascript:alert(3))\n")

	doc, err := a.Assemble(context.Background(), raw, "p")
	require.NoError(t, err)
	require.NotContains(t, doc.Content, "<script>")
	require.NotContains(t, doc.Content, "onerror")
	require.NotContains(t, doc.Content, "javascript:")
}

func TestExtractHeadings(t *testing.T) {
	body := []byte("# One\n\ntext\n\n### Deep Three\n\n####### seven marks is not a heading\n")

	hs := ExtractHeadings(body)
	require.Equal(t, []docmodel.Heading{
		{ID: "one", Text: "One", Level: 1},
		{ID: "deep-three", Text: "Deep Three", Level: 3},
	}, hs)
}

func TestExtractHeadings_DuplicatesKept(t *testing.T) {
	hs := ExtractHeadings([]byte("## Same\n\n## Same\n"))
	require.Len(t, hs, 2)
	require.Equal(t, hs[0].ID, hs[1].ID)
}

func TestExtractLinks(t *testing.T) {
	body := []byte("[a](./other.md) and ![img](pic.png) and <https://example.com>\n")

	links := ExtractLinks(body)
	dests := map[LinkKind]string{}
	for _, l := range links {
		dests[l.Kind] = l.Destination
	}
	require.Equal(t, "./other.md", dests[LinkKindInline])
	require.Equal(t, "pic.png", dests[LinkKindImage])
	require.Equal(t, "https://example.com", dests[LinkKindAuto])
}
