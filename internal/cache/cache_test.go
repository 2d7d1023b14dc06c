package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
)

func testSnapshot() docmodel.ProjectSnapshot {
	return docmodel.ProjectSnapshot{
		Project: "acme",
		Version: "main",
		Nav: []docmodel.NavItem{
			{Title: "Intro", Slug: "intro", Path: "/acme/main/intro", Order: 1},
			{Title: "Guide", Slug: "guide", Path: "/acme/main/guide", Order: 2, Children: []docmodel.NavItem{
				{Title: "Setup", Slug: "guide/setup", Path: "/acme/main/guide/setup", Order: 1},
			}},
		},
		Docs: map[string]docmodel.ParsedDoc{
			"intro":       {Slug: "intro", Title: "Intro", Content: "<p>hi</p>"},
			"guide/setup": {Slug: "guide/setup", Title: "Setup", Content: "<p>setup</p>"},
		},
		UpdatedAt: time.Now().UTC(),
	}
}

func TestCache_WriteAndReadSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store)

	snap := testSnapshot()
	require.NoError(t, c.WriteProjectSnapshot(ctx, snap))

	got, ok := c.ReadProjectSnapshot(ctx, "acme", "main")
	require.True(t, ok)
	require.Equal(t, snap.Project, got.Project)
	require.Len(t, got.Docs, 2)

	doc, ok := c.ReadDocument(ctx, "acme", "main", "guide/setup")
	require.True(t, ok)
	require.Equal(t, "Setup", doc.Title)

	nav, ok := c.ReadNavigation(ctx, "acme", "main")
	require.True(t, ok)
	require.Len(t, nav, 2)
}

func TestCache_DocumentImpliesNavigation(t *testing.T) {
	// The write order guarantees that once any document key is readable, the
	// navigation key for the same (project, version) is readable too.
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store)

	require.NoError(t, c.WriteProjectSnapshot(ctx, testSnapshot()))

	for _, slug := range []string{"intro", "guide/setup"} {
		if _, ok := c.ReadDocument(ctx, "acme", "main", slug); ok {
			_, navOK := c.ReadNavigation(ctx, "acme", "main")
			require.True(t, navOK, "document %q readable without navigation", slug)
		}
	}
}

func TestCache_MissOnUnknownKeys(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore())

	_, ok := c.ReadDocument(ctx, "acme", "main", "nope")
	require.False(t, ok)
	_, ok = c.ReadNavigation(ctx, "other", "main")
	require.False(t, ok)
	_, ok = c.ReadProjectSnapshot(ctx, "acme", "v2")
	require.False(t, ok)
}

func TestCache_InvalidateRemovesEverything(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store)

	require.NoError(t, c.WriteProjectSnapshot(ctx, testSnapshot()))
	require.NoError(t, c.Invalidate(ctx, "acme", "main"))

	_, ok := c.ReadProjectSnapshot(ctx, "acme", "main")
	require.False(t, ok)
	_, ok = c.ReadNavigation(ctx, "acme", "main")
	require.False(t, ok)
	_, ok = c.ReadDocument(ctx, "acme", "main", "intro")
	require.False(t, ok)
	_, ok = c.ReadDocument(ctx, "acme", "main", "guide/setup")
	require.False(t, ok)
	require.Equal(t, 0, store.Len())
}

func TestCache_InvalidateLeavesOtherVersionsAlone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store)

	main := testSnapshot()
	v2 := testSnapshot()
	v2.Version = "v2"
	require.NoError(t, c.WriteProjectSnapshot(ctx, main))
	require.NoError(t, c.WriteProjectSnapshot(ctx, v2))

	require.NoError(t, c.Invalidate(ctx, "acme", "main"))

	_, ok := c.ReadProjectSnapshot(ctx, "acme", "v2")
	require.True(t, ok)
	_, ok = c.ReadDocument(ctx, "acme", "v2", "intro")
	require.True(t, ok)
}

func TestCache_InvalidateMissingIsNoError(t *testing.T) {
	c := New(NewMemoryStore())
	require.NoError(t, c.Invalidate(context.Background(), "ghost", "main"))
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Now()
	store.SetClock(func() time.Time { return base })

	c := New(store, WithContentTTL(time.Hour))
	require.NoError(t, c.WriteProjectSnapshot(ctx, testSnapshot()))

	_, ok := c.ReadDocument(ctx, "acme", "main", "intro")
	require.True(t, ok)

	store.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	_, ok = c.ReadDocument(ctx, "acme", "main", "intro")
	require.False(t, ok)
	_, ok = c.ReadProjectSnapshot(ctx, "acme", "main")
	require.False(t, ok)
}

func TestCache_VersionList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Now()
	store.SetClock(func() time.Time { return base })
	c := New(store, WithVersionListTTL(time.Hour))

	list := docmodel.VersionList{
		Branches: []string{"main", "develop"},
		Tags:     []string{"v1.0.0"},
		Default:  "main",
		SyncedAt: base.UTC(),
	}
	require.NoError(t, c.WriteVersionList(ctx, "acme", list))

	got, ok := c.ReadVersionList(ctx, "acme")
	require.True(t, ok)
	require.Equal(t, list.Branches, got.Branches)
	require.Equal(t, "main", got.Default)

	// Separate, shorter lifetime than content entries.
	store.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	_, ok = c.ReadVersionList(ctx, "acme")
	require.False(t, ok)

	require.NoError(t, c.WriteVersionList(ctx, "acme", list))
	require.NoError(t, c.InvalidateVersionList(ctx, "acme"))
	_, ok = c.ReadVersionList(ctx, "acme")
	require.False(t, ok)
}

func TestCache_UndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store)

	require.NoError(t, store.Set(ctx, DocKey("acme", "main", "intro"), []byte("{not json"), time.Hour))
	_, ok := c.ReadDocument(ctx, "acme", "main", "intro")
	require.False(t, ok)
}

func TestKeys(t *testing.T) {
	require.Equal(t, "project:acme:main", SnapshotKey("acme", "main"))
	require.Equal(t, "nav:acme:main", NavKey("acme", "main"))
	require.Equal(t, "doc:acme:main:guide/setup", DocKey("acme", "main", "guide/setup"))
	require.Equal(t, "versions:acme", VersionListKey("acme"))
}

func TestSQLiteStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(ctx, "k1", []byte("v1"), time.Hour))
	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// Overwrite.
	require.NoError(t, store.Set(ctx, "k1", []byte("v2"), time.Hour))
	got, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	// Already expired entries are a miss and get swept.
	require.NoError(t, store.Set(ctx, "gone", []byte("x"), -time.Second))
	_, err = store.Get(ctx, "gone")
	require.True(t, IsNotFound(err))

	require.NoError(t, store.Delete(ctx, "k1", "missing"))
	_, err = store.Get(ctx, "k1")
	require.True(t, IsNotFound(err))
}

func TestSQLiteStore_CacheIntegration(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)

	c := New(store)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.WriteProjectSnapshot(ctx, testSnapshot()))
	doc, ok := c.ReadDocument(ctx, "acme", "main", "intro")
	require.True(t, ok)
	require.Equal(t, "Intro", doc.Title)

	require.NoError(t, c.Invalidate(ctx, "acme", "main"))
	_, ok = c.ReadDocument(ctx, "acme", "main", "intro")
	require.False(t, ok)
}
