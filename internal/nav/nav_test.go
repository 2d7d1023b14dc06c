package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
)

func docWithOrder(slug, title string, order int) docmodel.ParsedDoc {
	o := order
	return docmodel.ParsedDoc{
		Slug:        slug,
		Title:       title,
		Frontmatter: docmodel.Frontmatter{Title: title, Order: &o},
	}
}

func doc(slug, title string) docmodel.ParsedDoc {
	return docmodel.ParsedDoc{Slug: slug, Title: title, Frontmatter: docmodel.Frontmatter{Title: title}}
}

func TestBuild_SiblingOrdering(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"e": docWithOrder("e", "E", 5),
		"b": docWithOrder("b", "B", 1),
		"a": docWithOrder("a", "A", 1),
		"d": doc("d", "D"), // no order, defaults to 999
	}

	items := Build(docs, "")
	require.Len(t, items, 4)

	titles := []string{items[0].Title, items[1].Title, items[2].Title, items[3].Title}
	require.Equal(t, []string{"A", "B", "E", "D"}, titles)
	require.Equal(t, 1, items[0].Order)
	require.Equal(t, 1, items[1].Order)
	require.Equal(t, 5, items[2].Order)
	require.Equal(t, docmodel.DefaultOrder, items[3].Order)
}

func TestBuild_NestedGrouping(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"index":       doc("index", "Home"),
		"guide/setup": docWithOrder("guide/setup", "Setup", 2),
		"guide/usage": docWithOrder("guide/usage", "Usage", 1),
	}

	items := Build(docs, "")
	require.Len(t, items, 2)

	var guide *docmodel.NavItem
	for i := range items {
		if items[i].Slug == "guide" {
			guide = &items[i]
		}
	}
	require.NotNil(t, guide)
	// Implicit grouping without its own document gets a formatted title.
	require.Equal(t, "Guide", guide.Title)
	require.Len(t, guide.Children, 2)
	require.Equal(t, "Usage", guide.Children[0].Title)
	require.Equal(t, "Setup", guide.Children[1].Title)
	require.Equal(t, "guide/setup", guide.Children[1].Path)
}

func TestBuild_BasePathStripped(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"docs/intro": doc("docs/intro", "Intro"),
	}

	items := Build(docs, "/docs")
	require.Len(t, items, 1)
	require.Equal(t, "intro", items[0].Slug)
	require.Equal(t, "intro", items[0].Path)
}

func TestBuild_LeafHasNoChildren(t *testing.T) {
	items := Build(map[string]docmodel.ParsedDoc{"only": doc("only", "Only")}, "")
	require.Len(t, items, 1)
	require.Nil(t, items[0].Children)
}

func TestBuild_DuplicateSlugFirstSeenWins(t *testing.T) {
	// Two files collapsing onto one navigation slug keep the first document.
	docs := map[string]docmodel.ParsedDoc{
		"page": doc("page", "First"),
	}
	items := Build(docs, "")
	require.Equal(t, "First", items[0].Title)
}

func TestBuild_EmptyInput(t *testing.T) {
	require.Empty(t, Build(map[string]docmodel.ParsedDoc{}, ""))
}

func TestFindDefaultDoc_PrefersIndex(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"guide/index": doc("guide/index", "Guide Home"),
		"zz":          docWithOrder("zz", "ZZ", 1),
	}
	items := Build(docs, "")
	require.Equal(t, "guide/index", FindDefaultDoc(items))
}

func TestFindDefaultDoc_ReadmeCaseInsensitive(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"README": doc("README", "Readme"),
		"a":      docWithOrder("a", "A", 1),
	}
	items := Build(docs, "")
	require.Equal(t, "README", FindDefaultDoc(items))
}

func TestFindDefaultDoc_FallsBackToFirstLeaf(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"guide/deep/start": docWithOrder("guide/deep/start", "Start", 1),
		"later":            doc("later", "Later"),
	}
	items := Build(docs, "")
	// First top-level entry is the guide grouping; recurse to its first leaf.
	require.Equal(t, "guide/deep/start", FindDefaultDoc(items))
}

func TestFindDefaultDoc_FirstGroupingWinsOverLaterIndex(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"guide/start": docWithOrder("guide/start", "Start", 1),
		"ref/index":   docWithOrder("ref/index", "Ref Home", 2),
	}
	items := Build(docs, "")
	// The first grouping's leaf wins even though a later sibling has an
	// index page.
	require.Equal(t, "guide/start", FindDefaultDoc(items))
}

func TestFindDefaultDoc_EmptyTree(t *testing.T) {
	require.Empty(t, FindDefaultDoc(nil))
}

func TestFlatten(t *testing.T) {
	docs := map[string]docmodel.ParsedDoc{
		"a":     docWithOrder("a", "A", 1),
		"g/b":   docWithOrder("g/b", "B", 1),
		"g/c/d": doc("g/c/d", "D"),
	}
	flat := Flatten(Build(docs, ""))
	require.Len(t, flat, 5) // a, g, b, c, d

	paths := map[string]bool{}
	for _, it := range flat {
		paths[it.Path] = true
	}
	require.True(t, paths["g/c/d"])
}
