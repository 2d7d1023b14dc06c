// Package docs combines frontmatter extraction, Markdown rendering, and
// heading extraction into immutable ParsedDoc records.
package docs

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	derrors "git.home.luguber.info/inful/docserve/internal/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/observability"
	"git.home.luguber.info/inful/docserve/internal/render"
)

// Assembler builds ParsedDoc records. It is a pure function of its inputs
// apart from the shared highlight service inside the renderer.
type Assembler struct {
	renderer *render.Renderer
}

// NewAssembler constructs an Assembler around the given renderer.
func NewAssembler(renderer *render.Renderer) *Assembler {
	return &Assembler{renderer: renderer}
}

// Assemble turns raw file content into a fully populated ParsedDoc.
//
// Title precedence: frontmatter title, then the first extracted heading, then
// a readable form of the slug. A malformed frontmatter block degrades to an
// empty record with the whole input as body. Assemble either returns a valid
// record or an error for this single document; batch policy belongs to the
// caller.
func (a *Assembler) Assemble(ctx context.Context, raw []byte, slug string) (doc *docmodel.ParsedDoc, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = derrors.Wrap(fmt.Errorf("%v", r), derrors.CategoryRender, derrors.SeverityError, "renderer panic").
				WithContext("slug", slug)
		}
	}()

	fm, body, degraded := frontmatter.Parse(raw)
	if degraded {
		observability.WarnContext(ctx, "Malformed frontmatter, treating file as plain body",
			logfields.DocSlug(slug))
	}

	html, err := a.renderer.Render(body)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryRender, derrors.SeverityError, "markdown rendering failed").
			WithContext("slug", slug)
	}

	headings := ExtractHeadings(body)

	title := fm.Title
	if title == "" && len(headings) > 0 {
		title = headings[0].Text
	}
	if title == "" {
		title = docmodel.TitleFromSlug(slug)
	}

	seen := map[string]struct{}{}
	for _, h := range headings {
		if _, dup := seen[h.ID]; dup {
			// First-seen-wins for anchor targets; never fatal.
			slog.Debug("Duplicate heading id within document",
				logfields.DocSlug(slug), slog.String("heading_id", h.ID))
			continue
		}
		seen[h.ID] = struct{}{}
	}

	return &docmodel.ParsedDoc{
		Slug:        slug,
		Title:       title,
		Description: fm.Description,
		Content:     html,
		Frontmatter: fm,
		Headings:    headings,
	}, nil
}
