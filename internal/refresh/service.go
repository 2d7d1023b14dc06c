// Package refresh orchestrates the rebuild of a (project, version) cache
// bundle: fetch raw markdown, assemble documents, build navigation, then
// invalidate and rewrite the cache in an order readers can tolerate.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docserve/internal/cache"
	"git.home.luguber.info/inful/docserve/internal/docmodel"
	dserr "git.home.luguber.info/inful/docserve/internal/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/nav"
	"git.home.luguber.info/inful/docserve/internal/observability"
	"git.home.luguber.info/inful/docserve/internal/source"
)

// Project binds a registered project slug to its content source.
type Project struct {
	Slug           string
	Fetcher        source.Fetcher
	DocsRoot       string
	DefaultVersion string
}

// DocAssembler turns one raw markdown file into a parsed document.
// *docs.Assembler is the production implementation.
type DocAssembler interface {
	Assemble(ctx context.Context, raw []byte, slug string) (*docmodel.ParsedDoc, error)
}

// Result summarizes one refresh run.
type Result struct {
	RefreshID   string        `json:"refreshId"`
	Project     string        `json:"project"`
	Version     string        `json:"version"`
	DocsCount   int           `json:"docsCount"`
	Failures    []FileFailure `json:"failures,omitempty"`
	BrokenLinks []BrokenLink  `json:"brokenLinks,omitempty"`
	Duration    time.Duration `json:"-"`
}

// Service runs refreshes and serves cached content. Content reads are
// cache-only; refreshes come from webhooks, the scheduler, or the ops API.
type Service struct {
	cache     *cache.Cache
	assembler DocAssembler
	recorder  metrics.Recorder
	notifier  Notifier

	mu       sync.Mutex
	projects map[string]Project
	inflight map[string]*sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRecorder wires refresh metrics.
func WithRecorder(rec metrics.Recorder) ServiceOption {
	return func(s *Service) { s.recorder = rec }
}

// WithNotifier wires refresh event publishing.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// NewService creates a refresh service.
func NewService(c *cache.Cache, assembler DocAssembler, opts ...ServiceOption) *Service {
	s := &Service{
		cache:     c,
		assembler: assembler,
		recorder:  metrics.Noop{},
		notifier:  NoopNotifier{},
		projects:  make(map[string]Project),
		inflight:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a project. Registering the same slug twice replaces the
// source binding but not any in-flight refresh state.
func (s *Service) Register(p Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.Slug] = p
}

// Projects returns the registered project slugs.
func (s *Service) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out
}

// Lookup returns a registered project by slug.
func (s *Service) Lookup(slug string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[slug]
	return p, ok
}

// RefreshProject rebuilds the cache bundle for a (project, version). Runs for
// the same pair are serialized; a caller arriving during a refresh waits and
// then performs its own, which is harmless because rebuilds are idempotent.
func (s *Service) RefreshProject(ctx context.Context, project, version string) (Result, error) {
	p, ok := s.Lookup(project)
	if !ok {
		return Result{}, dserr.NotFoundError("unknown project: " + project)
	}
	if version == "" {
		version = p.DefaultVersion
	}

	lock := s.lockFor(project, version)
	lock.Lock()
	defer lock.Unlock()

	refreshID := uuid.NewString()
	ctx = observability.WithProject(ctx, project)
	ctx = observability.WithVersion(ctx, version)
	ctx = observability.WithRefreshID(ctx, refreshID)

	start := time.Now()
	s.recorder.RefreshStarted(project)
	s.publish(ctx, Event{
		Type:      EventRefreshStarted,
		RefreshID: refreshID,
		Project:   project,
		Version:   version,
		Stage:     StageFetching,
		Timestamp: start.UTC(),
	})

	result, err := s.run(ctx, p, version, refreshID)
	result.Duration = time.Since(start)

	if err != nil {
		s.recorder.ObserveRefreshDuration(project, result.Duration, "failure")
		observability.ErrorContext(ctx, "Refresh failed",
			logfields.Error(err),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
		s.publish(ctx, Event{
			Type:      EventRefreshFailed,
			RefreshID: refreshID,
			Project:   project,
			Version:   version,
			Stage:     StageFailed,
			Failures:  result.Failures,
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return result, err
	}

	s.recorder.ObserveRefreshDuration(project, result.Duration, "success")
	observability.InfoContext(ctx, "Refresh completed",
		logfields.DocCount(result.DocsCount),
		slog.Int("failed_files", len(result.Failures)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	s.publish(ctx, Event{
		Type:      EventRefreshCompleted,
		RefreshID: refreshID,
		Project:   project,
		Version:   version,
		Stage:     StageDone,
		DocsCount: result.DocsCount,
		Failures:  result.Failures,
		Timestamp: time.Now().UTC(),
	})
	return result, nil
}

func (s *Service) run(ctx context.Context, p Project, version, refreshID string) (Result, error) {
	result := Result{RefreshID: refreshID, Project: p.Slug, Version: version}

	// Fetching. A fetch failure leaves the cache untouched so stale content
	// keeps serving.
	stageCtx := observability.WithStage(ctx, StageFetching)
	files, err := p.Fetcher.ListMarkdownFiles(stageCtx, p.DocsRoot, version)
	if err != nil {
		s.recorder.FetchFailure(p.Slug)
		s.recorder.ObserveStage(StageFetching, "error")
		return result, dserr.SourceError(err, "fetch markdown files")
	}
	s.recorder.ObserveStage(StageFetching, "ok")
	observability.DebugContext(stageCtx, "Fetched markdown files", logfields.DocCount(len(files)))

	// Parsing. One bad file is recorded and skipped; an empty batch is a
	// hard failure because writing it would wipe valid cached content.
	stageCtx = observability.WithStage(ctx, StageParsing)
	parsed := make(map[string]docmodel.ParsedDoc, len(files))
	pageLinks := make(map[string][]string, len(files))
	for _, file := range files {
		slug := docmodel.SlugFromPath(file.Path, p.DocsRoot)
		if slug == "" {
			continue
		}
		doc, err := s.assembler.Assemble(stageCtx, file.Content, slug)
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{Path: file.Path, Error: err.Error()})
			observability.WarnContext(stageCtx, "Skipping document that failed to assemble",
				logfields.File(file.Path),
				logfields.Error(err))
			continue
		}
		parsed[slug] = *doc
		pageLinks[slug] = linkTargets(file.Content, slug)
	}
	if len(parsed) == 0 {
		s.recorder.ObserveStage(StageParsing, "error")
		return result, dserr.New(dserr.CategoryParse, dserr.SeverityError,
			fmt.Sprintf("no documents could be parsed for %s@%s", p.Slug, version))
	}
	s.recorder.ObserveStage(StageParsing, "ok")
	result.DocsCount = len(parsed)

	// Cross-page link check over the assembled set. Broken links are
	// reported, never fatal.
	result.BrokenLinks = findBrokenLinks(pageLinks, func(slug string) bool {
		_, ok := parsed[slug]
		return ok
	})
	for _, bl := range result.BrokenLinks {
		observability.WarnContext(stageCtx, "Document links to a missing page",
			logfields.File(bl.From),
			slog.String("target", bl.Target))
	}

	// Building navigation.
	tree := nav.Build(parsed, p.DocsRoot)
	s.recorder.ObserveStage(StageBuildingNav, "ok")

	// Invalidating before writing so no key from the previous build outlives
	// the new snapshot.
	if err := s.cache.Invalidate(ctx, p.Slug, version); err != nil {
		s.recorder.ObserveStage(StageInvalidating, "error")
		return result, err
	}
	s.recorder.ObserveStage(StageInvalidating, "ok")

	// Writing: nav first, docs next, snapshot last.
	snap := docmodel.ProjectSnapshot{
		Project:   p.Slug,
		Version:   version,
		Nav:       tree,
		Docs:      parsed,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.cache.WriteProjectSnapshot(ctx, snap); err != nil {
		s.recorder.ObserveStage(StageWriting, "error")
		return result, err
	}
	s.recorder.ObserveStage(StageWriting, "ok")
	s.recorder.AddDocsWritten(p.Slug, len(parsed))

	return result, nil
}

// SyncVersionList refreshes the cached branch/tag list for a project.
func (s *Service) SyncVersionList(ctx context.Context, project string) (docmodel.VersionList, error) {
	p, ok := s.Lookup(project)
	if !ok {
		return docmodel.VersionList{}, dserr.NotFoundError("unknown project: " + project)
	}

	info, err := p.Fetcher.ListVersions(ctx)
	if err != nil {
		return docmodel.VersionList{}, dserr.SourceError(err, "list versions")
	}

	list := docmodel.VersionList{
		Branches: info.Branches,
		Tags:     info.Tags,
		Default:  info.Default,
		SyncedAt: time.Now().UTC(),
	}
	if p.DefaultVersion != "" {
		list.Default = p.DefaultVersion
	}
	if err := s.cache.WriteVersionList(ctx, project, list); err != nil {
		return docmodel.VersionList{}, err
	}
	return list, nil
}

// InvalidateProject drops the cached bundle for a (project, version). Reads
// report the pair as not ready until the next refresh rebuilds it.
func (s *Service) InvalidateProject(ctx context.Context, project, version string) error {
	p, ok := s.Lookup(project)
	if !ok {
		return dserr.NotFoundError("unknown project: " + project)
	}
	if version == "" {
		version = p.DefaultVersion
	}
	return s.cache.Invalidate(ctx, project, version)
}

// InvalidateVersionList drops the cached branch/tag list so the next read
// re-syncs it from the source.
func (s *Service) InvalidateVersionList(ctx context.Context, project string) error {
	if _, ok := s.Lookup(project); !ok {
		return dserr.NotFoundError("unknown project: " + project)
	}
	return s.cache.InvalidateVersionList(ctx, project)
}

// GetDocument returns a cached document. Content reads never contact the
// source; a read against a never-synced bundle reports it as not ready.
func (s *Service) GetDocument(ctx context.Context, project, version, docSlug string) (docmodel.ParsedDoc, error) {
	if doc, ok := s.cache.ReadDocument(ctx, project, version, docSlug); ok {
		return doc, nil
	}
	if _, ok := s.cache.ReadNavigation(ctx, project, version); ok {
		return docmodel.ParsedDoc{}, dserr.NotFoundError(
			fmt.Sprintf("document %s not found in %s@%s", docSlug, project, version))
	}
	return docmodel.ParsedDoc{}, notReadyError(project, version)
}

// GetNavigation returns the cached navigation tree.
func (s *Service) GetNavigation(ctx context.Context, project, version string) ([]docmodel.NavItem, error) {
	if nav, ok := s.cache.ReadNavigation(ctx, project, version); ok {
		return nav, nil
	}
	return nil, notReadyError(project, version)
}

// GetProjectSnapshot returns the cached bundle.
func (s *Service) GetProjectSnapshot(ctx context.Context, project, version string) (docmodel.ProjectSnapshot, error) {
	if snap, ok := s.cache.ReadProjectSnapshot(ctx, project, version); ok {
		return snap, nil
	}
	return docmodel.ProjectSnapshot{}, notReadyError(project, version)
}

// GetVersions returns the version list, syncing it from the source on a miss.
func (s *Service) GetVersions(ctx context.Context, project string) (docmodel.VersionList, error) {
	if list, ok := s.cache.ReadVersionList(ctx, project); ok {
		return list, nil
	}
	return s.SyncVersionList(ctx, project)
}

// Close releases the notifier. The cache is owned by the caller.
func (s *Service) Close() error {
	return s.notifier.Close()
}

// notReadyError reports a (project, version) whose bundle has never been
// synced. Viewers get this instead of a blocking fetch.
func notReadyError(project, version string) error {
	return dserr.NotFoundError(
		fmt.Sprintf("documentation for %s@%s is not ready yet", project, version))
}

func (s *Service) lockFor(project, version string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := project + "\x00" + version
	lock, ok := s.inflight[key]
	if !ok {
		lock = &sync.Mutex{}
		s.inflight[key] = lock
	}
	return lock
}

func (s *Service) publish(ctx context.Context, event Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		observability.WarnContext(ctx, "Failed to publish refresh event",
			logfields.Error(err))
	}
}
