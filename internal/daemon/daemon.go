package daemon

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/refresh"
)

// Daemon owns the background workers for all configured projects.
type Daemon struct {
	scheduler *Scheduler
	watchers  []*Watcher
}

// refreshAdapter narrows *refresh.Service to what the workers need.
type refreshAdapter struct {
	service *refresh.Service
}

func (a refreshAdapter) RefreshAll(ctx context.Context, project string) error {
	_, err := a.service.RefreshProject(ctx, project, "")
	return err
}

func (a refreshAdapter) SyncVersions(ctx context.Context, project string) error {
	_, err := a.service.SyncVersionList(ctx, project)
	return err
}

// New builds the daemon from configuration: a periodic sync job per project
// with a sync_interval, a filesystem watcher per local project with watch
// enabled.
func New(cfg *config.Config, service *refresh.Service) (*Daemon, error) {
	adapter := refreshAdapter{service: service}

	scheduler, err := NewScheduler(adapter)
	if err != nil {
		return nil, err
	}
	d := &Daemon{scheduler: scheduler}

	for _, p := range cfg.Projects {
		if p.SyncInterval > 0 {
			if _, err := scheduler.SchedulePeriodicSync(p.Slug, p.SyncInterval); err != nil {
				return nil, err
			}
			slog.Info("Scheduled periodic sync",
				logfields.Project(p.Slug),
				slog.Duration("interval", p.SyncInterval))
		}
		if p.Watch && p.Source.Type == config.SourceLocal {
			watcher, err := NewWatcher(p.Slug, p.Source.Path, adapter)
			if err != nil {
				return nil, err
			}
			d.watchers = append(d.watchers, watcher)
		}
	}
	return d, nil
}

// Start launches the scheduler and all watchers.
func (d *Daemon) Start(ctx context.Context) error {
	d.scheduler.Start()
	for _, w := range d.watchers {
		if err := w.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop shuts everything down. Errors are logged, not returned, so one
// failing worker never blocks the rest of shutdown.
func (d *Daemon) Stop() {
	if err := d.scheduler.Stop(); err != nil {
		slog.Warn("Scheduler shutdown error", logfields.Error(err))
	}
	for _, w := range d.watchers {
		if err := w.Stop(); err != nil {
			slog.Warn("Watcher shutdown error", logfields.Error(err))
		}
	}
}
