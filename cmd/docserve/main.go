package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docserve/internal/cache"
	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/daemon"
	"git.home.luguber.info/inful/docserve/internal/docs"
	"git.home.luguber.info/inful/docserve/internal/highlight"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/refresh"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/server"
	"git.home.luguber.info/inful/docserve/internal/source"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docserve.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Serve documentation with background refresh"`

	Refresh struct {
		Project string `arg:"" help:"Project slug to refresh"`
		Version string `arg:"" optional:"" help:"Version to refresh (default version if omitted)"`
	} `cmd:"" help:"Refresh a project's cached content and exit"`

	Versions struct {
		Project string `arg:"" help:"Project slug"`
	} `cmd:"" help:"Sync and print a project's branches and tags"`

	CSS struct {
		Dark bool `help:"Emit the dark style instead of light"`
	} `cmd:"" help:"Print the syntax highlighting stylesheet"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "init":
		// Init must work without a loadable config.
		setupLogging(&config.LoggingConfig{Level: "info", Format: "text"}, CLI.Verbose)
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(&cfg.Logging, CLI.Verbose)

	switch ctx.Command() {
	case "serve":
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "refresh <project>", "refresh <project> <version>":
		if err := runRefresh(cfg, CLI.Refresh.Project, CLI.Refresh.Version); err != nil {
			slog.Error("Refresh failed", "error", err)
			os.Exit(1)
		}
	case "versions <project>":
		if err := runVersions(cfg, CLI.Versions.Project); err != nil {
			slog.Error("Versions failed", "error", err)
			os.Exit(1)
		}
	case "css":
		if err := runCSS(cfg, CLI.CSS.Dark); err != nil {
			slog.Error("CSS failed", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", ctx.Command())
		os.Exit(1)
	}
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

func setupLogging(cfg *config.LoggingConfig, verbose bool) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildRuntime wires everything below the HTTP layer: cache backend,
// content pipeline, metrics, optional notifier, and per-project fetchers.
func buildRuntime(cfg *config.Config, registry *prometheus.Registry) (*refresh.Service, error) {
	var store cache.Store
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		store = cache.NewMemoryStore()
	default:
		s, err := cache.OpenSQLiteStore(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}
		store = s
	}

	var cacheOpts []cache.Option
	if cfg.Cache.ContentTTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithContentTTL(cfg.Cache.ContentTTL))
	}
	if cfg.Cache.VersionListTTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithVersionListTTL(cfg.Cache.VersionListTTL))
	}

	var recorder metrics.Recorder = metrics.Noop{}
	if registry != nil {
		recorder = metrics.NewPrometheusRecorder(registry)
		cacheOpts = append(cacheOpts, cache.WithRecorder(recorder))
	}

	highlighter := highlight.NewService(highlight.Options{
		LightStyle: cfg.Highlight.LightStyle,
		DarkStyle:  cfg.Highlight.DarkStyle,
	})
	assembler := docs.NewAssembler(render.New(highlighter))

	svcOpts := []refresh.ServiceOption{refresh.WithRecorder(recorder)}
	if cfg.Notify.Enabled {
		notifier, err := refresh.NewNATSNotifier(cfg.Notify.URL, cfg.Notify.Subject)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, refresh.WithNotifier(notifier))
	}

	service := refresh.NewService(cache.New(store, cacheOpts...), assembler, svcOpts...)

	for _, p := range cfg.Projects {
		var fetcher source.Fetcher
		switch p.Source.Type {
		case config.SourceLocal:
			fetcher = source.NewDirFetcher(p.Source.Path, p.DefaultVersion)
		default:
			fetcher = source.NewGitFetcher(p.Source.URL, p.Source.Token)
		}
		service.Register(refresh.Project{
			Slug:           p.Slug,
			Fetcher:        fetcher,
			DocsRoot:       p.DocsRoot,
			DefaultVersion: p.DefaultVersion,
		})
	}
	return service, nil
}

func runServe(cfg *config.Config) error {
	registry := prometheus.NewRegistry()
	service, err := buildRuntime(cfg, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := service.Close(); err != nil {
			slog.Warn("Service shutdown error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := daemon.New(cfg, service)
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	return server.New(cfg, service, registry).Start(ctx)
}

func runRefresh(cfg *config.Config, project, version string) error {
	service, err := buildRuntime(cfg, nil)
	if err != nil {
		return err
	}
	defer service.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := service.RefreshProject(ctx, project, version)
	if err != nil {
		return err
	}

	fmt.Printf("Refreshed %s@%s: %d documents", result.Project, result.Version, result.DocsCount)
	if len(result.Failures) > 0 {
		fmt.Printf(", %d files skipped", len(result.Failures))
	}
	fmt.Printf(" in %s\n", result.Duration.Round(time.Millisecond))
	for _, f := range result.Failures {
		fmt.Printf("  skipped %s: %s\n", f.Path, f.Error)
	}
	for _, bl := range result.BrokenLinks {
		fmt.Printf("  broken link in %s: %s\n", bl.From, bl.Target)
	}
	return nil
}

func runVersions(cfg *config.Config, project string) error {
	service, err := buildRuntime(cfg, nil)
	if err != nil {
		return err
	}
	defer service.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	list, err := service.SyncVersionList(ctx, project)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runCSS(cfg *config.Config, dark bool) error {
	highlighter := highlight.NewService(highlight.Options{
		LightStyle: cfg.Highlight.LightStyle,
		DarkStyle:  cfg.Highlight.DarkStyle,
	})
	if dark {
		return highlighter.DarkCSS(os.Stdout)
	}
	return highlighter.LightCSS(os.Stdout)
}
