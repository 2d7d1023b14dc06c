package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	dserr "git.home.luguber.info/inful/docserve/internal/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// GitFetcher reads markdown straight out of a remote repository. Each listing
// is a shallow single-ref clone into memory; nothing touches disk and no
// working tree is checked out.
type GitFetcher struct {
	url  string
	auth transport.AuthMethod
}

// NewGitFetcher creates a fetcher for a remote repository URL. A non-empty
// token enables HTTP basic auth the way forges expect it for PATs.
func NewGitFetcher(url, token string) *GitFetcher {
	f := &GitFetcher{url: url}
	if token != "" {
		f.auth = &githttp.BasicAuth{Username: "git", Password: token}
	}
	return f
}

// ListMarkdownFiles clones the repository at the given version and collects
// every markdown file under root. The version is tried as a branch first,
// then as a tag.
func (f *GitFetcher) ListMarkdownFiles(ctx context.Context, root, version string) ([]File, error) {
	repo, err := f.cloneAt(ctx, version)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, dserr.SourceError(err, "resolve cloned HEAD")
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, dserr.SourceError(err, "load commit "+head.Hash().String()[:8])
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, dserr.SourceError(err, "load commit tree")
	}

	root = strings.Trim(root, "/")
	if root != "" && root != "." {
		tree, err = tree.Tree(root)
		if err != nil {
			if errors.Is(err, object.ErrDirectoryNotFound) {
				return nil, fmt.Errorf("%w: %s at %s", ErrPathNotFound, root, version)
			}
			return nil, dserr.SourceError(err, "descend to docs root "+root)
		}
	}

	var files []File
	err = tree.Files().ForEach(func(gf *object.File) error {
		if !docmodel.IsMarkdownFile(gf.Name) {
			return nil
		}
		reader, err := gf.Reader()
		if err != nil {
			return fmt.Errorf("open %s: %w", gf.Name, err)
		}
		defer reader.Close()
		content, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("read %s: %w", gf.Name, err)
		}
		files = append(files, File{Path: gf.Name, Content: content})
		return nil
	})
	if err != nil {
		return nil, dserr.SourceError(err, "read tree files")
	}

	slog.Debug("Listed markdown files from git",
		logfields.Version(version),
		logfields.DocCount(len(files)),
		logfields.Path(root))
	return files, nil
}

// ListVersions lists the remote's branches and tags without cloning. The
// default branch is whatever HEAD points at.
func (f *GitFetcher) ListVersions(ctx context.Context) (VersionInfo, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{f.url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: f.auth})
	if err != nil {
		return VersionInfo{}, dserr.SourceError(err, "list remote references")
	}

	var info VersionInfo
	for _, ref := range refs {
		name := ref.Name().String()
		switch {
		case ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference:
			info.Default = ref.Target().Short()
		case ref.Type() == plumbing.SymbolicReference:
			// Other symbolic refs carry no version information.
		case strings.HasPrefix(name, "refs/heads/"):
			info.Branches = append(info.Branches, strings.TrimPrefix(name, "refs/heads/"))
		case strings.HasPrefix(name, "refs/tags/"):
			info.Tags = append(info.Tags, strings.TrimPrefix(name, "refs/tags/"))
		}
	}
	sort.Strings(info.Branches)
	sort.Strings(info.Tags)
	if info.Default == "" && len(info.Branches) > 0 {
		info.Default = info.Branches[0]
	}
	return info, nil
}

func (f *GitFetcher) cloneAt(ctx context.Context, version string) (*git.Repository, error) {
	for _, refName := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(version),
		plumbing.NewTagReferenceName(version),
	} {
		repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
			URL:           f.url,
			Auth:          f.auth,
			ReferenceName: refName,
			SingleBranch:  true,
			Depth:         1,
			NoCheckout:    true,
			Tags:          git.NoTags,
		})
		if err == nil {
			return repo, nil
		}
		if !isMissingRef(err) {
			return nil, dserr.SourceError(err, "clone "+f.url+" at "+version)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, version)
}

// isMissingRef reports whether a clone failure means the ref doesn't exist,
// as opposed to network or auth trouble.
func isMissingRef(err error) bool {
	if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, git.NoMatchingRefSpecError{}) {
		return true
	}
	// Some transports only surface the missing ref in the message.
	return strings.Contains(err.Error(), "couldn't find remote ref") ||
		strings.Contains(err.Error(), "reference not found")
}
