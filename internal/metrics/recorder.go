// Package metrics defines the metrics recording abstraction and its
// Prometheus implementation.
package metrics

import "time"

// Recorder receives measurement callbacks from the refresh pipeline and the
// cache layer. Implementations must be safe for concurrent use.
type Recorder interface {
	// RefreshStarted counts a refresh beginning for a project.
	RefreshStarted(project string)

	// ObserveRefreshDuration records a completed refresh with its outcome
	// ("success" or "failure").
	ObserveRefreshDuration(project string, d time.Duration, outcome string)

	// ObserveStage counts a stage result ("ok" or "failed").
	ObserveStage(stage string, result string)

	// AddDocsWritten counts documents written to the cache.
	AddDocsWritten(project string, n int)

	// CacheHit / CacheMiss count point reads per key family
	// (snapshot, nav, doc, versions).
	CacheHit(family string)
	CacheMiss(family string)

	// FetchFailure counts source fetch failures.
	FetchFailure(project string)
}

// Noop is a Recorder that discards everything; the default when metrics are
// not wired.
type Noop struct{}

func (Noop) RefreshStarted(string)                                {}
func (Noop) ObserveRefreshDuration(string, time.Duration, string) {}
func (Noop) ObserveStage(string, string)                          {}
func (Noop) AddDocsWritten(string, int)                           {}
func (Noop) CacheHit(string)                                      {}
func (Noop) CacheMiss(string)                                     {}
func (Noop) FetchFailure(string)                                  {}
