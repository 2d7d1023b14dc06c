// Package config defines the docserve configuration file format and its
// loading, defaulting, and validation rules.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Highlight HighlightConfig `yaml:"highlight,omitempty"`
	Notify    NotifyConfig    `yaml:"notify,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Projects  []ProjectConfig `yaml:"projects"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"` // listen address, e.g. ":8080"

	// WebhookSecret is the fallback HMAC secret for webhook validation when a
	// project does not define its own.
	WebhookSecret string `yaml:"webhook_secret,omitempty"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Backend        string        `yaml:"backend"` // "sqlite" or "memory"
	Path           string        `yaml:"path,omitempty"`
	ContentTTL     time.Duration `yaml:"content_ttl,omitempty"`
	VersionListTTL time.Duration `yaml:"version_list_ttl,omitempty"`
}

// HighlightConfig selects the chroma style pair for emitted CSS.
type HighlightConfig struct {
	LightStyle string `yaml:"light_style,omitempty"`
	DarkStyle  string `yaml:"dark_style,omitempty"`
}

// NotifyConfig configures refresh event publishing over NATS.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// ProjectConfig binds a project slug to its content source and refresh policy.
type ProjectConfig struct {
	Slug           string        `yaml:"slug"`
	Source         SourceConfig  `yaml:"source"`
	DocsRoot       string        `yaml:"docs_root,omitempty"`
	DefaultVersion string        `yaml:"default_version,omitempty"`
	SyncInterval   time.Duration `yaml:"sync_interval,omitempty"`
	Watch          bool          `yaml:"watch,omitempty"` // local sources only
	WebhookSecret  string        `yaml:"webhook_secret,omitempty"`
}

// SourceConfig describes where a project's markdown lives.
type SourceConfig struct {
	Type  string `yaml:"type"` // "git" or "local"
	URL   string `yaml:"url,omitempty"`
	Path  string `yaml:"path,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// Source types.
const (
	SourceGit   = "git"
	SourceLocal = "local"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Load reads, env-expands, defaults, and validates a configuration file.
// A .env or .env.local alongside the process supplies expansion variables
// without overriding the existing environment.
func Load(path string) (*Config, error) {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			break
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Secrets and tokens are referenced as ${VAR} in the file.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with working values.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendSQLite
	}
	if c.Cache.Backend == BackendSQLite && c.Cache.Path == "" {
		c.Cache.Path = "docserve-cache.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Notify.Enabled && c.Notify.Subject == "" {
		c.Notify.Subject = "docserve.refresh"
	}

	for i := range c.Projects {
		p := &c.Projects[i]
		if p.DocsRoot == "" {
			p.DocsRoot = "docs"
		}
		if p.DefaultVersion == "" && p.Source.Type == SourceGit {
			p.DefaultVersion = "main"
		}
		if p.WebhookSecret == "" {
			p.WebhookSecret = c.Server.WebhookSecret
		}
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if len(c.Projects) == 0 {
		return fmt.Errorf("at least one project must be configured")
	}
	if c.Cache.Backend != BackendSQLite && c.Cache.Backend != BackendMemory {
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	if c.Notify.Enabled && c.Notify.URL == "" {
		return fmt.Errorf("notify.url is required when notify is enabled")
	}

	seen := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if p.Slug == "" {
			return fmt.Errorf("project slug is required")
		}
		if seen[p.Slug] {
			return fmt.Errorf("duplicate project slug: %s", p.Slug)
		}
		seen[p.Slug] = true

		switch p.Source.Type {
		case SourceGit:
			if p.Source.URL == "" {
				return fmt.Errorf("project %s: git source requires a url", p.Slug)
			}
		case SourceLocal:
			if p.Source.Path == "" {
				return fmt.Errorf("project %s: local source requires a path", p.Slug)
			}
		default:
			return fmt.Errorf("project %s: unknown source type: %q", p.Slug, p.Source.Type)
		}
		if p.Watch && p.Source.Type != SourceLocal {
			return fmt.Errorf("project %s: watch is only supported for local sources", p.Slug)
		}
		if p.SyncInterval != 0 && p.SyncInterval < time.Minute {
			return fmt.Errorf("project %s: sync_interval below one minute", p.Slug)
		}
	}
	return nil
}
