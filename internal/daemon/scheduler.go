// Package daemon runs the background refresh machinery: periodic sync jobs
// for git-backed projects and filesystem watchers for local ones.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// Refresher is the subset of the refresh service the daemon drives.
type Refresher interface {
	RefreshAll(ctx context.Context, project string) error
	SyncVersions(ctx context.Context, project string) error
}

// Scheduler wraps gocron for periodic project syncs.
type Scheduler struct {
	scheduler gocron.Scheduler
	refresher Refresher
}

// NewScheduler creates a scheduler driving the given refresher.
func NewScheduler(refresher Refresher) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, refresher: refresher}, nil
}

// SchedulePeriodicSync registers a recurring job that re-syncs the version
// list and refreshes the project's default version. Returns the job ID.
func (s *Scheduler) SchedulePeriodicSync(project string, interval time.Duration) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.executeSync, project),
		gocron.WithName(project+"-sync"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to schedule sync for %s: %w", project, err)
	}
	return job.ID().String(), nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) executeSync(project string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	slog.Info("Executing scheduled sync", logfields.Project(project))

	if err := s.refresher.SyncVersions(ctx, project); err != nil {
		slog.Error("Scheduled version sync failed",
			logfields.Project(project),
			logfields.Error(err))
	}
	if err := s.refresher.RefreshAll(ctx, project); err != nil {
		slog.Error("Scheduled refresh failed",
			logfields.Project(project),
			logfields.Error(err))
	}
}
