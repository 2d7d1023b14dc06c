// Package source abstracts where raw markdown content comes from. The refresh
// pipeline only sees the Fetcher interface; git remotes and local directories
// are interchangeable behind it.
package source

import (
	"context"
	"errors"
)

// File is one raw markdown file below the docs root. Path is relative to the
// repository or directory root, with forward slashes.
type File struct {
	Path    string
	Content []byte
}

// VersionInfo is the set of refs a project can be browsed at.
type VersionInfo struct {
	Branches []string
	Tags     []string
	Default  string
}

// ErrPathNotFound is returned when the docs root does not exist at the
// requested version.
var ErrPathNotFound = errors.New("docs path not found")

// ErrVersionNotFound is returned when the requested version matches neither a
// branch nor a tag.
var ErrVersionNotFound = errors.New("version not found")

// Fetcher retrieves markdown content for a project.
type Fetcher interface {
	// ListMarkdownFiles returns every markdown file under root at the given
	// version. Non-markdown files are skipped. Returns ErrPathNotFound when
	// root does not exist, ErrVersionNotFound when the version is unknown.
	ListMarkdownFiles(ctx context.Context, root, version string) ([]File, error)

	// ListVersions returns the branches and tags the source exposes.
	ListVersions(ctx context.Context) (VersionInfo, error)
}
