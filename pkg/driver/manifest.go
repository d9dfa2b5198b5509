package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"lox/interpreter-go/pkg/scanner"
)

const (
	// ManifestFileName is the project file looked up by FindManifest.
	ManifestFileName = "lox.yml"
	defaultMain      = "main.lox"
)

// ErrManifestNotFound is returned by FindManifest when no directory up to
// the filesystem root holds a manifest.
var ErrManifestNotFound = errors.New("manifest: lox.yml not found")

var projectNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Manifest represents the parsed contents of lox.yml.
type Manifest struct {
	Path     string
	Name     string
	Main     string
	Integers bool
	Source   *SourceSpec
}

// SourceSpec points the project's script at a git repository instead of
// the manifest's own directory.
type SourceSpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type manifestFile struct {
	Name     string      `yaml:"name"`
	Main     string      `yaml:"main"`
	Integers bool        `yaml:"integers"`
	Source   *sourceYAML `yaml:"source"`
}

type sourceYAML struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

// LoadManifest parses lox.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks from start toward the filesystem root and returns the
// first lox.yml found.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", start, err)
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	m := &Manifest{
		Path:     path,
		Name:     strings.TrimSpace(mf.Name),
		Main:     strings.TrimSpace(mf.Main),
		Integers: mf.Integers,
	}
	if m.Main == "" {
		m.Main = defaultMain
	}
	if mf.Source != nil {
		m.Source = &SourceSpec{
			Git:    strings.TrimSpace(mf.Source.Git),
			Rev:    strings.TrimSpace(mf.Source.Rev),
			Tag:    strings.TrimSpace(mf.Source.Tag),
			Branch: strings.TrimSpace(mf.Source.Branch),
			Path:   strings.TrimSpace(mf.Source.Path),
		}
	}
	return m
}

func (m *Manifest) validate() error {
	var errs ValidationError
	switch {
	case m.Name == "":
		errs.Issues = append(errs.Issues, "name must be provided")
	case !projectNamePattern.MatchString(m.Name):
		errs.Issues = append(errs.Issues, fmt.Sprintf("name %q must start with a letter or underscore and contain only letters, digits, '_' or '-'", m.Name))
	}
	if issue := relativePathIssue("main", m.Main); issue != "" {
		errs.Issues = append(errs.Issues, issue)
	}
	if m.Source != nil {
		errs.Issues = append(errs.Issues, m.Source.validate()...)
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *SourceSpec) validate() []string {
	var issues []string
	if s.Git == "" {
		issues = append(issues, "source.git must be provided")
	}
	selectors := 0
	for _, v := range []string{s.Rev, s.Tag, s.Branch} {
		if v != "" {
			selectors++
		}
	}
	if selectors != 1 {
		issues = append(issues, "source must specify exactly one of rev, tag, or branch")
	}
	if s.Path != "" {
		if issue := relativePathIssue("source.path", s.Path); issue != "" {
			issues = append(issues, issue)
		}
	}
	return issues
}

func relativePathIssue(field, path string) string {
	if filepath.IsAbs(path) {
		return fmt.Sprintf("%s must be a relative path, got %q", field, path)
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Sprintf("%s must not leave the project directory, got %q", field, path)
	}
	return ""
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// EntryPath resolves the main script relative to root, which is the
// manifest directory for local projects or a checkout for git sources.
func (m *Manifest) EntryPath(root string) string {
	base := root
	if m.Source != nil && m.Source.Path != "" {
		base = filepath.Join(root, m.Source.Path)
	}
	return filepath.Join(base, m.Main)
}

// ScannerOptions translates manifest settings into scanner options.
func (m *Manifest) ScannerOptions() []scanner.Option {
	if m.Integers {
		return []scanner.Option{scanner.AllowIntegers()}
	}
	return nil
}
