package docmodel

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Slugify converts heading text to a URL-safe anchor id: lowercase, characters
// outside [a-z0-9 -] stripped, whitespace runs collapsed to single hyphens.
//
// This is the single source of truth for anchor ids: the heading extractor and
// the renderer's id injection both go through here so a table of contents
// always matches the rendered anchors.
func Slugify(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t':
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	slug := strings.Join(fields, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// SlugFromPath derives a document slug from a source file path: the docs root
// prefix, leading/trailing slashes, and the Markdown extension are removed.
// Segments stay POSIX-style.
func SlugFromPath(path, docsRoot string) string {
	slug := strings.Trim(path, "/")
	root := strings.Trim(docsRoot, "/")

	if root != "" {
		if strings.HasPrefix(slug, root+"/") {
			slug = slug[len(root)+1:]
		} else if slug == root {
			slug = ""
		} else if strings.HasPrefix(slug, root) {
			slug = slug[len(root):]
		}
	}

	slug = strings.Trim(slug, "/")
	slug = strings.TrimSuffix(slug, ".mdx")
	slug = strings.TrimSuffix(slug, ".md")
	return slug
}

// TitleFromSlug formats the final segment of a slug as a readable title:
// "getting-started" becomes "Getting Started".
func TitleFromSlug(slug string) string {
	base := slug
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return titleCaser.String(base)
}

// IsMarkdownFile reports whether the file name has a Markdown-family extension.
func IsMarkdownFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".mdx")
}
