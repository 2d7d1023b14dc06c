package refresh

import (
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/docs"
)

// BrokenLink records a relative Markdown link whose target document does not
// exist in the refreshed bundle.
type BrokenLink struct {
	From   string `json:"from"`
	Target string `json:"target"`
}

// linkTargets returns the document slugs a page points at through relative
// Markdown links, resolved against the page's own slug. External URLs,
// fragments, mailto links and images are skipped.
func linkTargets(body []byte, fromSlug string) []string {
	var targets []string
	for _, l := range docs.ExtractLinks(body) {
		if l.Kind != docs.LinkKindInline {
			continue
		}
		dest := l.Destination
		if dest == "" || strings.Contains(dest, "://") ||
			strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "mailto:") {
			continue
		}
		if i := strings.IndexAny(dest, "#?"); i >= 0 {
			dest = dest[:i]
		}
		dest = strings.TrimSuffix(strings.TrimSuffix(dest, ".md"), ".mdx")
		if dest == "" {
			continue
		}
		if strings.HasPrefix(dest, "/") {
			targets = append(targets, strings.Trim(dest, "/"))
			continue
		}
		targets = append(targets, path.Join(path.Dir(fromSlug), dest))
	}
	return targets
}

// findBrokenLinks checks every page's relative link targets against the set
// of parsed document slugs and returns the unresolved ones in a stable order.
func findBrokenLinks(pageLinks map[string][]string, exists func(slug string) bool) []BrokenLink {
	var broken []BrokenLink
	for from, targets := range pageLinks {
		for _, target := range targets {
			if !exists(target) {
				broken = append(broken, BrokenLink{From: from, Target: target})
			}
		}
	}
	sort.Slice(broken, func(i, j int) bool {
		if broken[i].From != broken[j].From {
			return broken[i].From < broken[j].From
		}
		return broken[i].Target < broken[j].Target
	})
	return broken
}
