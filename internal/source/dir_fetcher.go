package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	dserr "git.home.luguber.info/inful/docserve/internal/errors"
)

// DirFetcher serves markdown from a local directory tree. Versions are not
// meaningful for a directory, so any requested version is accepted and
// reported back as the single available "branch".
type DirFetcher struct {
	baseDir string
	version string
}

// NewDirFetcher creates a fetcher rooted at baseDir. label names the pseudo
// version the directory is exposed as; empty means "local".
func NewDirFetcher(baseDir, label string) *DirFetcher {
	if label == "" {
		label = "local"
	}
	return &DirFetcher{baseDir: baseDir, version: label}
}

// ListMarkdownFiles walks baseDir/root and returns every markdown file, with
// paths relative to baseDir using forward slashes.
func (f *DirFetcher) ListMarkdownFiles(ctx context.Context, root, _ string) ([]File, error) {
	start := filepath.Join(f.baseDir, filepath.FromSlash(strings.Trim(root, "/")))
	info, err := os.Stat(start)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, dserr.SourceError(err, "stat docs root")
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, root)
	}

	var files []File
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Hidden directories like .git are never documentation.
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !docmodel.IsMarkdownFile(d.Name()) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(f.baseDir, path)
		if err != nil {
			return err
		}
		files = append(files, File{Path: filepath.ToSlash(rel), Content: content})
		return nil
	})
	if err != nil {
		return nil, dserr.SourceError(err, "walk docs directory")
	}
	return files, nil
}

// ListVersions reports the single pseudo version a directory source has.
func (f *DirFetcher) ListVersions(_ context.Context) (VersionInfo, error) {
	return VersionInfo{
		Branches: []string{f.version},
		Default:  f.version,
	}, nil
}
