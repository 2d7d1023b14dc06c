package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// Watcher triggers a project refresh when markdown files change on disk.
// Rapid change bursts (editor saves, git checkouts) are debounced into one
// refresh.
type Watcher struct {
	project   string
	root      string
	refresher Refresher
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	stopChan  chan struct{}
	touchChan chan struct{}
}

// NewWatcher creates a watcher for a local project's docs directory.
func NewWatcher(project, root string, refresher Refresher) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	return &Watcher{
		project:   project,
		root:      absRoot,
		refresher: refresher,
		watcher:   fsw,
		debounce:  2 * time.Second,
		stopChan:  make(chan struct{}),
		touchChan: make(chan struct{}, 1),
	}, nil
}

// Start adds all directories under the root and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	slog.Info("Starting docs watcher",
		logfields.Project(w.project),
		logfields.Path(w.root))

	go w.watchLoop(ctx)
	go w.refreshLoop(ctx)
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Docs change detected",
				logfields.Project(w.project),
				logfields.File(event.Name),
				slog.String("op", event.Op.String()))

			// New directories must be picked up so nested changes keep firing.
			if event.Op&fsnotify.Create != 0 {
				_ = w.watcher.Add(event.Name)
			}
			w.touch()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error",
				logfields.Project(w.project),
				logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	// Directory events matter for watch registration; file events only for
	// markdown.
	if event.Op&fsnotify.Create != 0 && !strings.Contains(base, ".") {
		return true
	}
	return docmodel.IsMarkdownFile(base)
}

func (w *Watcher) touch() {
	select {
	case w.touchChan <- struct{}{}:
	default:
	}
}

func (w *Watcher) refreshLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-w.touchChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := w.refresher.RefreshAll(refreshCtx, w.project); err != nil {
				slog.Error("Watch-triggered refresh failed",
					logfields.Project(w.project),
					logfields.Error(err))
			}
			cancel()
		}
	}
}
