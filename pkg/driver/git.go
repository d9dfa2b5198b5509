package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

const originRemote = "origin"

// Checkout describes a resolved git source on disk.
type Checkout struct {
	Dir      string
	Version  string
	Commit   string
	Checksum string
}

// GitFetcher keeps one working clone per project under <home>/src and
// moves it to whatever commit the source selects.
type GitFetcher struct {
	cacheDir string
}

// NewGitFetcher caches clones under <home>/src.
func NewGitFetcher(home string) *GitFetcher {
	if home == "" {
		return nil
	}
	return &GitFetcher{cacheDir: filepath.Join(home, "src")}
}

// Fetch checks out the commit spec selects and reports where it lives.
// Branches and tags are refreshed from the remote on every call; a rev
// that is already known locally is used without touching the network.
func (g *GitFetcher) Fetch(name string, spec *SourceSpec) (*Checkout, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	if spec == nil {
		return nil, fmt.Errorf("project %q has no git source", name)
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("project %q: git URL required", name)
	}
	dir, err := g.cloneDir(name)
	if err != nil {
		return nil, err
	}

	repo, err := openClone(dir, url)
	if err != nil {
		return nil, err
	}
	hash, err := resolveSource(repo, spec)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return nil, fmt.Errorf("git checkout %s: %w", hash, err)
	}

	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, err
	}
	return &Checkout{
		Dir:      dir,
		Version:  describeSource(spec, hash),
		Commit:   hash.String(),
		Checksum: checksum,
	}, nil
}

func (g *GitFetcher) cloneDir(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("project name %q cannot be used as a cache directory", name)
	}
	return filepath.Join(g.cacheDir, name), nil
}

// openClone returns the cached clone at dir, cloning url first when there
// is none or when the cached one tracks a different remote.
func openClone(dir, url string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	switch {
	case err == nil:
		if tracksURL(repo, url) {
			return repo, nil
		}
		if err := os.RemoveAll(dir); err != nil {
			return nil, err
		}
	case !errors.Is(err, git.ErrRepositoryNotExists):
		return nil, fmt.Errorf("open cached clone %s: %w", dir, err)
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, err
	}
	repo, err = git.PlainClone(dir, false, &git.CloneOptions{URL: url, Tags: git.AllTags})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	return repo, nil
}

func tracksURL(repo *git.Repository, url string) bool {
	remote, err := repo.Remote(originRemote)
	if err != nil {
		return false
	}
	urls := remote.Config().URLs
	return len(urls) > 0 && urls[0] == url
}

// resolveSource maps the selector in spec to a full commit hash.
func resolveSource(repo *git.Repository, spec *SourceSpec) (plumbing.Hash, error) {
	var revision plumbing.Revision
	switch {
	case strings.TrimSpace(spec.Rev) != "":
		revision = plumbing.Revision(strings.TrimSpace(spec.Rev))
		if hash, err := repo.ResolveRevision(revision); err == nil {
			return *hash, nil
		}
	case strings.TrimSpace(spec.Tag) != "":
		revision = plumbing.Revision(plumbing.NewTagReferenceName(strings.TrimSpace(spec.Tag)))
	case strings.TrimSpace(spec.Branch) != "":
		revision = plumbing.Revision(plumbing.NewRemoteReferenceName(originRemote, strings.TrimSpace(spec.Branch)))
	default:
		return plumbing.ZeroHash, errors.New("git sources require rev, tag, or branch")
	}

	if err := refresh(repo); err != nil {
		return plumbing.ZeroHash, err
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	return *hash, nil
}

func refresh(repo *git.Repository) error {
	err := repo.Fetch(&git.FetchOptions{
		RemoteName: originRemote,
		RefSpecs: []config.RefSpec{
			config.RefSpec("+refs/heads/*:refs/remotes/" + originRemote + "/*"),
			config.RefSpec("+refs/tags/*:refs/tags/*"),
		},
		Force: true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("git fetch: %w", err)
	}
	return nil
}

// describeSource renders the version recorded in lox.lock, e.g.
// "v1.2.0@<hash>" for a tag or the bare hash for a rev.
func describeSource(spec *SourceSpec, hash plumbing.Hash) string {
	for _, selector := range []string{spec.Tag, spec.Branch} {
		if s := strings.TrimSpace(selector); s != "" {
			return s + "@" + hash.String()
		}
	}
	return hash.String()
}

// dirChecksum hashes file names and contents under path, skipping git
// metadata so the sum depends only on the checked-out tree.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
