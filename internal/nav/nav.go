// Package nav converts a flat set of parsed documents into the ordered
// hierarchical navigation tree served alongside page content.
package nav

import (
	"log/slog"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// node is one entry in the intermediate path-segment tree. A node with a
// bound doc is a content leaf; a node without one is a directory grouping.
type node struct {
	name     string
	path     string
	doc      *docmodel.ParsedDoc
	children []*node
	index    map[string]*node
}

func (n *node) child(name string, path string) *node {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := &node{name: name, path: path, index: map[string]*node{}}
	n.index[name] = c
	n.children = append(n.children, c)
	return c
}

// Build converts docs keyed by slug into the navigation tree. The docs root
// prefix is stripped defensively even though slugs normally arrive already
// relative. Sibling order is (order ascending, title ascending), rebuilt in
// full on every call; the tree is never mutated incrementally.
func Build(docs map[string]docmodel.ParsedDoc, basePath string) []docmodel.NavItem {
	root := &node{index: map[string]*node{}}
	base := strings.Trim(basePath, "/")

	// Deterministic insertion: iterate slugs sorted so first-seen-wins
	// conflicts resolve the same way on every rebuild.
	slugs := make([]string, 0, len(docs))
	for slug := range docs {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		doc := docs[slug]
		rel := strings.Trim(slug, "/")
		if base != "" {
			rel = strings.TrimPrefix(rel, base)
			rel = strings.Trim(rel, "/")
		}
		parts := strings.Split(rel, "/")

		current := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			current = current.child(part, strings.Join(parts[:i+1], "/"))
		}
		if current == root {
			continue
		}
		if current.doc != nil {
			// Two source files mapped to the same navigation slug.
			slog.Warn("Navigation slug collision, keeping first document",
				logfields.DocSlug(slug), logfields.Path(current.path))
			continue
		}
		d := doc
		current.doc = &d
	}

	return convert(root.children)
}

// convert turns intermediate nodes into NavItems, attaching children only
// when a grouping has at least one child, and applies the sibling sort.
func convert(nodes []*node) []docmodel.NavItem {
	items := make([]docmodel.NavItem, 0, len(nodes))

	for _, n := range nodes {
		item := docmodel.NavItem{
			Title: docmodel.TitleFromSlug(n.name),
			Slug:  n.name,
			Path:  n.path,
			Order: docmodel.DefaultOrder,
		}
		if n.doc != nil {
			item.Title = n.doc.Title
			item.Order = n.doc.Frontmatter.OrderOrDefault()
			item.Icon = n.doc.Frontmatter.Icon
		}
		if len(n.children) > 0 {
			item.Children = convert(n.children)
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].Title < items[j].Title
	})

	return items
}

// FindDefaultDoc returns the path of the document a project lands on:
// depth-first, the first entry whose slug is index or readme (case
// insensitive); otherwise the first leaf under the first top-level entry,
// recursing through groupings. Empty string only for an empty tree.
func FindDefaultDoc(items []docmodel.NavItem) string {
	for _, item := range items {
		lower := strings.ToLower(item.Slug)
		if lower == "index" || lower == "readme" {
			return item.Path
		}
		if len(item.Children) > 0 {
			// The recursion carries the first-leaf fallback with it, so the
			// first grouping claims the default even when a later sibling
			// holds an index or readme. Landing pages depend on this order.
			if found := FindDefaultDoc(item.Children); found != "" {
				return found
			}
		}
	}

	if len(items) > 0 {
		first := items[0]
		for len(first.Children) > 0 {
			first = first.Children[0]
		}
		return first.Path
	}

	return ""
}

// Flatten returns every tree node in depth-first order, for search indexing.
func Flatten(items []docmodel.NavItem) []docmodel.NavItem {
	flat := make([]docmodel.NavItem, 0, len(items))

	var traverse func([]docmodel.NavItem)
	traverse = func(nodes []docmodel.NavItem) {
		for _, n := range nodes {
			flat = append(flat, n)
			if len(n.Children) > 0 {
				traverse(n.Children)
			}
		}
	}
	traverse(items)

	return flat
}
