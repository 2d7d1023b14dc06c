package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Server: ServerConfig{
			Addr:          ":8080",
			WebhookSecret: "${DOCSERVE_WEBHOOK_SECRET}",
		},
		Cache: CacheConfig{
			Backend: BackendSQLite,
			Path:    "docserve-cache.db",
		},
		Projects: []ProjectConfig{
			{
				Slug: "example",
				Source: SourceConfig{
					Type: SourceGit,
					URL:  "https://github.com/example/docs.git",
				},
				DocsRoot:       "docs",
				DefaultVersion: "main",
				SyncInterval:   15 * time.Minute,
			},
			{
				Slug: "local-example",
				Source: SourceConfig{
					Type: SourceLocal,
					Path: "./content",
				},
				Watch: true,
			},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
