package refresh

import (
	"context"
	"time"
)

// Refresh stages, in execution order. Stage names appear in logs, metrics,
// and published events.
const (
	StageFetching     = "fetching"
	StageParsing      = "parsing"
	StageBuildingNav  = "building_nav"
	StageInvalidating = "invalidating"
	StageWriting      = "writing"
	StageDone         = "done"
	StageFailed       = "failed"
)

// Event types published around a refresh run.
const (
	EventRefreshStarted   = "refresh.started"
	EventRefreshCompleted = "refresh.completed"
	EventRefreshFailed    = "refresh.failed"
)

// Event describes a refresh lifecycle transition.
type Event struct {
	Type      string        `json:"type"`
	RefreshID string        `json:"refreshId"`
	Project   string        `json:"project"`
	Version   string        `json:"version"`
	Stage     string        `json:"stage"`
	DocsCount int           `json:"docsCount,omitempty"`
	Failures  []FileFailure `json:"failures,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// FileFailure records one markdown file that could not be processed. The rest
// of the batch proceeds without it.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Notifier receives refresh lifecycle events. Publishing is best effort; a
// failing notifier never fails the refresh.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopNotifier discards all events.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, Event) error { return nil }
func (NoopNotifier) Close() error                         { return nil }
