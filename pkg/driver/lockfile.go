package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockFileName sits next to lox.yml and pins a git source to one commit.
const LockFileName = "lox.lock"

// Lockfile models the lox.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Source    *LockedSource
}

// LockedSource records the commit a git source resolved to.
type LockedSource struct {
	Git      string
	Version  string
	Commit   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      strings.TrimSpace(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
	}
}

// LockfilePath returns where the lockfile for manifest lives.
func LockfilePath(manifest *Manifest) string {
	return filepath.Join(manifest.Dir(), LockFileName)
}

// LoadLockfile parses lox.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Pin returns a copy of spec that selects the locked commit, provided the
// lock still refers to the same repository.
func (l *Lockfile) Pin(spec *SourceSpec) *SourceSpec {
	if l == nil || l.Source == nil || spec == nil || l.Source.Commit == "" || l.Source.Git != spec.Git {
		return spec
	}
	return &SourceSpec{Git: spec.Git, Rev: l.Source.Commit, Path: spec.Path}
}

type lockfileDisk struct {
	Root      string          `yaml:"root"`
	Generated string          `yaml:"generated"`
	Tool      string          `yaml:"tool"`
	Source    *lockfileSource `yaml:"source,omitempty"`
}

type lockfileSource struct {
	Git      string `yaml:"git"`
	Version  string `yaml:"version"`
	Commit   string `yaml:"commit"`
	Checksum string `yaml:"checksum"`
}

func (l *Lockfile) toDisk() lockfileDisk {
	disk := lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
	}
	if l.Source != nil {
		disk.Source = &lockfileSource{
			Git:      l.Source.Git,
			Version:  l.Source.Version,
			Commit:   l.Source.Commit,
			Checksum: l.Source.Checksum,
		}
	}
	return disk
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      strings.TrimSpace(d.Root),
		Generated: strings.TrimSpace(d.Generated),
		Tool:      strings.TrimSpace(d.Tool),
	}
	if d.Source != nil {
		lock.Source = &LockedSource{
			Git:      strings.TrimSpace(d.Source.Git),
			Version:  strings.TrimSpace(d.Source.Version),
			Commit:   strings.TrimSpace(d.Source.Commit),
			Checksum: strings.TrimSpace(d.Source.Checksum),
		}
	}
	return lock
}
