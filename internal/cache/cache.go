package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	dserr "git.home.luguber.info/inful/docserve/internal/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
)

// Metric family labels for cache reads.
const (
	familySnapshot = "snapshot"
	familyNav      = "nav"
	familyDoc      = "doc"
	familyVersions = "versions"
)

// Cache is the typed snapshot protocol over a Store. Writes follow a fixed
// order so readers never observe a document without its navigation: nav
// first, then every document, then the snapshot entry that marks the bundle
// complete. Invalidation reads the snapshot first to enumerate document keys,
// because the store cannot list by prefix.
type Cache struct {
	store          Store
	recorder       metrics.Recorder
	contentTTL     time.Duration
	versionListTTL time.Duration
	logger         *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithContentTTL overrides the lifetime of snapshot, nav, and doc entries.
func WithContentTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.contentTTL = ttl }
}

// WithVersionListTTL overrides the lifetime of version list entries.
func WithVersionListTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.versionListTTL = ttl }
}

// WithRecorder wires cache hit/miss metrics.
func WithRecorder(rec metrics.Recorder) Option {
	return func(c *Cache) { c.recorder = rec }
}

// WithLogger overrides the logger used for backend error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a Cache over the given store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:          store,
		recorder:       metrics.Noop{},
		contentTTL:     DefaultTTL,
		versionListTTL: DefaultVersionListTTL,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// WriteProjectSnapshot persists a complete (project, version) bundle. The
// snapshot entry is written last; until it lands, a concurrent reader sees
// either the previous snapshot or a miss, never a partially written bundle.
func (c *Cache) WriteProjectSnapshot(ctx context.Context, snap docmodel.ProjectSnapshot) error {
	navData, err := json.Marshal(snap.Nav)
	if err != nil {
		return dserr.CacheError(err, "marshal navigation")
	}
	if err := c.store.Set(ctx, NavKey(snap.Project, snap.Version), navData, c.contentTTL); err != nil {
		return dserr.CacheError(err, "write navigation")
	}

	for slug, doc := range snap.Docs {
		docData, err := json.Marshal(doc)
		if err != nil {
			return dserr.CacheError(err, "marshal document "+slug)
		}
		if err := c.store.Set(ctx, DocKey(snap.Project, snap.Version, slug), docData, c.contentTTL); err != nil {
			return dserr.CacheError(err, "write document "+slug)
		}
	}

	snapData, err := json.Marshal(snap)
	if err != nil {
		return dserr.CacheError(err, "marshal snapshot")
	}
	if err := c.store.Set(ctx, SnapshotKey(snap.Project, snap.Version), snapData, c.contentTTL); err != nil {
		return dserr.CacheError(err, "write snapshot")
	}
	return nil
}

// ReadDocument returns a cached document, or ok=false on a miss. Backend
// errors degrade to a miss so the read path can fall through to a refresh.
func (c *Cache) ReadDocument(ctx context.Context, project, version, docSlug string) (docmodel.ParsedDoc, bool) {
	var doc docmodel.ParsedDoc
	if !c.read(ctx, DocKey(project, version, docSlug), familyDoc, &doc) {
		return docmodel.ParsedDoc{}, false
	}
	return doc, true
}

// ReadNavigation returns the cached navigation tree for a (project, version).
func (c *Cache) ReadNavigation(ctx context.Context, project, version string) ([]docmodel.NavItem, bool) {
	var nav []docmodel.NavItem
	if !c.read(ctx, NavKey(project, version), familyNav, &nav) {
		return nil, false
	}
	return nav, true
}

// ReadProjectSnapshot returns the full cached bundle for a (project, version).
func (c *Cache) ReadProjectSnapshot(ctx context.Context, project, version string) (docmodel.ProjectSnapshot, bool) {
	var snap docmodel.ProjectSnapshot
	if !c.read(ctx, SnapshotKey(project, version), familySnapshot, &snap) {
		return docmodel.ProjectSnapshot{}, false
	}
	return snap, true
}

// Invalidate removes every entry for a (project, version). The snapshot is
// read before anything is deleted: it is the only record of which document
// keys exist. Version list entries are left alone, they expire on their own
// schedule.
func (c *Cache) Invalidate(ctx context.Context, project, version string) error {
	keys := []string{
		SnapshotKey(project, version),
		NavKey(project, version),
	}

	data, err := c.store.Get(ctx, SnapshotKey(project, version))
	switch {
	case err == nil:
		var snap docmodel.ProjectSnapshot
		if uerr := json.Unmarshal(data, &snap); uerr != nil {
			c.logger.Warn("invalidate: snapshot entry is unreadable, document keys may be orphaned",
				logfields.Project(project),
				logfields.Version(version),
				logfields.Error(uerr))
		} else {
			for slug := range snap.Docs {
				keys = append(keys, DocKey(project, version, slug))
			}
		}
	case IsNotFound(err):
		// Nothing cached; deleting the base keys is still harmless.
	default:
		return dserr.CacheError(err, "read snapshot for invalidation")
	}

	if err := c.store.Delete(ctx, keys...); err != nil {
		return dserr.CacheError(err, "delete entries")
	}
	return nil
}

// WriteVersionList caches the branch/tag list for a project.
func (c *Cache) WriteVersionList(ctx context.Context, project string, list docmodel.VersionList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return dserr.CacheError(err, "marshal version list")
	}
	if err := c.store.Set(ctx, VersionListKey(project), data, c.versionListTTL); err != nil {
		return dserr.CacheError(err, "write version list")
	}
	return nil
}

// ReadVersionList returns the cached version list for a project.
func (c *Cache) ReadVersionList(ctx context.Context, project string) (docmodel.VersionList, bool) {
	var list docmodel.VersionList
	if !c.read(ctx, VersionListKey(project), familyVersions, &list) {
		return docmodel.VersionList{}, false
	}
	return list, true
}

// InvalidateVersionList removes the cached version list for a project.
func (c *Cache) InvalidateVersionList(ctx context.Context, project string) error {
	if err := c.store.Delete(ctx, VersionListKey(project)); err != nil {
		return dserr.CacheError(err, "delete version list")
	}
	return nil
}

// read fetches and decodes one entry, recording hit/miss metrics. Any backend
// or decode failure is a miss from the caller's point of view.
func (c *Cache) read(ctx context.Context, key, family string, out any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !IsNotFound(err) {
			c.logger.Warn("cache backend read failed, treating as miss",
				logfields.CacheKey(key),
				logfields.Error(err))
		}
		c.recorder.CacheMiss(family)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry is undecodable, treating as miss",
			logfields.CacheKey(key),
			logfields.Error(err))
		c.recorder.CacheMiss(family)
		return false
	}
	c.recorder.CacheHit(family)
	return true
}
