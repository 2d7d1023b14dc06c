// Package docmodel defines the core records shared by the content pipeline,
// navigation builder, and cache layer.
package docmodel

import (
	"time"
)

// Heading is one entry in a document outline, derived from a Markdown heading
// line. ID is the slugified anchor; collisions between equal heading texts are
// not deduplicated, both anchors share the id.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// DefaultOrder is the sibling sort order applied when frontmatter does not
// specify one. High enough that explicitly ordered documents always come first.
const DefaultOrder = 999

// Frontmatter carries document metadata. The reserved keys are typed fields;
// anything else from the YAML block passes through Extra untouched.
type Frontmatter struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Order       *int           `json:"order,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// OrderOrDefault returns the explicit order or DefaultOrder.
func (f Frontmatter) OrderOrDefault() int {
	if f.Order != nil {
		return *f.Order
	}
	return DefaultOrder
}

// ParsedDoc is the immutable per-file result of the content pipeline.
// Content is sanitized HTML; it never contains script-executing markup.
type ParsedDoc struct {
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Content     string      `json:"content"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Headings    []Heading   `json:"headings"`
}

// NavItem is a node in the navigation tree: a content leaf when Children is
// empty, a directory grouping otherwise. Siblings are always sorted by
// (Order ascending, Title ascending).
type NavItem struct {
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Path     string    `json:"path"`
	Order    int       `json:"order"`
	Icon     string    `json:"icon,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// ProjectSnapshot is the complete cached bundle for one (project, version).
type ProjectSnapshot struct {
	Project   string               `json:"project"`
	Version   string               `json:"version"`
	Nav       []NavItem            `json:"nav"`
	Docs      map[string]ParsedDoc `json:"docs"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// VersionList is the set of known branches and tags for a project, cached in
// its own shorter-lived namespace.
type VersionList struct {
	Branches []string  `json:"branches"`
	Tags     []string  `json:"tags"`
	Default  string    `json:"default"`
	SyncedAt time.Time `json:"syncedAt"`
}
