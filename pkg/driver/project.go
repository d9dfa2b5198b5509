package driver

import (
	"errors"
	"fmt"
	"io/fs"
)

// Project is a manifest plus its optional lockfile.
type Project struct {
	Manifest *Manifest
	Lock     *Lockfile
}

// OpenProject locates lox.yml from dir upward and loads it together with
// lox.lock when present.
func OpenProject(dir string) (*Project, error) {
	path, err := FindManifest(dir)
	if err != nil {
		return nil, err
	}
	manifest, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	lock, err := LoadLockfile(LockfilePath(manifest))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return &Project{Manifest: manifest, Lock: lock}, nil
}

// ChecksumError reports a checkout whose tree differs from the one
// recorded in lox.lock.
type ChecksumError struct {
	Project string
	Commit  string
	Want    string
	Got     string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: checkout of %s has checksum %s but %s records %s (run `lox fetch` to re-lock)",
		e.Project, e.Commit, e.Got, LockFileName, e.Want)
}

// Entry returns the path of the script to run. Git sources are fetched
// (honouring the locked commit) and checked against the locked checksum
// before resolving.
func (p *Project) Entry(fetcher *GitFetcher) (string, error) {
	if p.Manifest.Source == nil {
		return p.Manifest.EntryPath(p.Manifest.Dir()), nil
	}
	pinned := p.Lock.Pin(p.Manifest.Source)
	checkout, err := fetcher.Fetch(p.Manifest.Name, pinned)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", p.Manifest.Name, err)
	}
	if pinned != p.Manifest.Source && p.Lock.Source.Checksum != "" && p.Lock.Source.Checksum != checkout.Checksum {
		return "", &ChecksumError{
			Project: p.Manifest.Name,
			Commit:  checkout.Commit,
			Want:    p.Lock.Source.Checksum,
			Got:     checkout.Checksum,
		}
	}
	return p.Manifest.EntryPath(checkout.Dir), nil
}

// Fetch resolves the manifest's git source afresh and records the result
// in lox.lock.
func (p *Project) Fetch(fetcher *GitFetcher, tool string) (*Checkout, error) {
	source := p.Manifest.Source
	if source == nil {
		return nil, fmt.Errorf("%s: no git source configured", p.Manifest.Path)
	}
	checkout, err := fetcher.Fetch(p.Manifest.Name, source)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.Manifest.Name, err)
	}
	lock := NewLockfile(p.Manifest.Name, tool)
	lock.Source = &LockedSource{
		Git:      source.Git,
		Version:  checkout.Version,
		Commit:   checkout.Commit,
		Checksum: checkout.Checksum,
	}
	if err := WriteLockfile(lock, LockfilePath(p.Manifest)); err != nil {
		return nil, err
	}
	p.Lock = lock
	return checkout, nil
}
