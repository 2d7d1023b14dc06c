package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docserve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  webhook_secret: global-secret
cache:
  backend: sqlite
  path: /tmp/test-cache.db
  content_ttl: 24h
notify:
  enabled: true
  url: nats://localhost:4222
projects:
  - slug: acme
    source:
      type: git
      url: https://github.com/acme/docs.git
    default_version: master
    sync_interval: 10m
  - slug: local-docs
    source:
      type: local
      path: /srv/docs
    watch: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, BackendSQLite, cfg.Cache.Backend)
	require.Equal(t, 24*time.Hour, cfg.Cache.ContentTTL)
	require.Equal(t, "docserve.refresh", cfg.Notify.Subject)

	require.Len(t, cfg.Projects, 2)
	acme := cfg.Projects[0]
	require.Equal(t, "master", acme.DefaultVersion)
	require.Equal(t, "docs", acme.DocsRoot)
	require.Equal(t, "global-secret", acme.WebhookSecret)
	require.Equal(t, 10*time.Minute, acme.SyncInterval)

	local := cfg.Projects[1]
	require.True(t, local.Watch)
	require.Equal(t, "", local.DefaultVersion, "local sources get no git default")
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
projects:
  - slug: acme
    source:
      type: git
      url: https://example.com/docs.git
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, BackendSQLite, cfg.Cache.Backend)
	require.Equal(t, "docserve-cache.db", cfg.Cache.Path)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "main", cfg.Projects[0].DefaultVersion)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_DOCS_TOKEN", "s3cret")
	path := writeConfig(t, `
projects:
  - slug: acme
    source:
      type: git
      url: https://example.com/docs.git
      token: ${TEST_DOCS_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.Projects[0].Source.Token)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no projects", `server: {addr: ":8080"}`},
		{"duplicate slug", `
projects:
  - {slug: a, source: {type: local, path: /x}}
  - {slug: a, source: {type: local, path: /y}}
`},
		{"git without url", `
projects:
  - {slug: a, source: {type: git}}
`},
		{"local without path", `
projects:
  - {slug: a, source: {type: local}}
`},
		{"unknown source type", `
projects:
  - {slug: a, source: {type: svn, url: x}}
`},
		{"watch on git source", `
projects:
  - {slug: a, source: {type: git, url: x}, watch: true}
`},
		{"bad cache backend", `
cache: {backend: redis}
projects:
  - {slug: a, source: {type: local, path: /x}}
`},
		{"notify without url", `
notify: {enabled: true}
projects:
  - {slug: a, source: {type: local, path: /x}}
`},
		{"sync interval too short", `
projects:
  - {slug: a, source: {type: git, url: x}, sync_interval: 5s}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			require.Error(t, err)
		})
	}
}
