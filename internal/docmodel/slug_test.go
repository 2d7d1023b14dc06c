package docmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Setup", "setup"},
		{"Getting Started", "getting-started"},
		{"  Spaces   Everywhere  ", "spaces-everywhere"},
		{"API & CLI Reference!", "api-cli-reference"},
		{"Already-hyphenated", "already-hyphenated"},
		{"Mixed_Case With 123", "mixedcase-with-123"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}

func TestSlugify_CollisionsNotDeduplicated(t *testing.T) {
	// Two identical headings produce the same id; that is documented behavior.
	require.Equal(t, Slugify("Overview"), Slugify("Overview"))
}

func TestSlugFromPath(t *testing.T) {
	cases := []struct {
		path, root, want string
	}{
		{"docs/guide/setup.md", "/docs", "guide/setup"},
		{"/docs/index.md", "docs", "index"},
		{"docs/api.mdx", "docs", "api"},
		{"readme.md", "", "readme"},
		{"docs/sub/deep/page.md", "docs", "sub/deep/page"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SlugFromPath(tc.path, tc.root), "path %q root %q", tc.path, tc.root)
	}
}

func TestTitleFromSlug(t *testing.T) {
	require.Equal(t, "Getting Started", TitleFromSlug("guide/getting-started"))
	require.Equal(t, "Api Reference", TitleFromSlug("api_reference"))
	require.Equal(t, "Setup", TitleFromSlug("setup"))
}

func TestFrontmatter_OrderOrDefault(t *testing.T) {
	var fm Frontmatter
	require.Equal(t, DefaultOrder, fm.OrderOrDefault())

	two := 2
	fm.Order = &two
	require.Equal(t, 2, fm.OrderOrDefault())
}

func TestIsMarkdownFile(t *testing.T) {
	require.True(t, IsMarkdownFile("a.md"))
	require.True(t, IsMarkdownFile("a.MDX"))
	require.False(t, IsMarkdownFile("a.txt"))
}
