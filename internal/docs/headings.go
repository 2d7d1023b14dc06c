package docs

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
)

// headingLine matches ATX headings at line start, one to six marker characters.
var headingLine = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// ExtractHeadings scans the raw Markdown body line by line and returns the
// document outline for table-of-contents consumption.
//
// Ids come from the shared slugify rule, so they are identical to the id
// attributes the renderer injects for the same heading text. Duplicate
// heading texts yield duplicate ids.
func ExtractHeadings(body []byte) []docmodel.Heading {
	matches := headingLine.FindAllSubmatch(body, -1)
	headings := make([]docmodel.Heading, 0, len(matches))

	for _, m := range matches {
		text := strings.TrimSpace(string(m[2]))
		headings = append(headings, docmodel.Heading{
			ID:    docmodel.Slugify(text),
			Text:  text,
			Level: len(m[1]),
		})
	}

	return headings
}
