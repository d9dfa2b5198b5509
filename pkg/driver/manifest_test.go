package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: counter-demo
main: scripts/counter.lox
integers: true
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if manifest.Name != "counter-demo" {
		t.Fatalf("Name = %q, want counter-demo", manifest.Name)
	}
	if !manifest.Integers || len(manifest.ScannerOptions()) != 1 {
		t.Fatalf("integers flag not honoured: %#v", manifest)
	}
	if manifest.Source != nil {
		t.Fatalf("unexpected source %#v", manifest.Source)
	}
	want := filepath.Join(filepath.Dir(path), "scripts", "counter.lox")
	if got := manifest.EntryPath(manifest.Dir()); got != want {
		t.Fatalf("EntryPath = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	manifest, err := LoadManifest(writeManifest(t, "name: app\n"))
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if manifest.Main != "main.lox" {
		t.Fatalf("Main = %q, want main.lox", manifest.Main)
	}
	if manifest.Integers || manifest.ScannerOptions() != nil {
		t.Fatalf("integers should default to off")
	}
}

func TestLoadManifestGitSource(t *testing.T) {
	manifest, err := LoadManifest(writeManifest(t, `
name: remote
main: main.lox
source:
  git: https://example.com/scripts.git
  tag: v1.2.0
  path: examples
`))
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	src := manifest.Source
	if src == nil || src.Git != "https://example.com/scripts.git" || src.Tag != "v1.2.0" {
		t.Fatalf("source not parsed: %#v", src)
	}
	if got := manifest.EntryPath("/cache/checkout"); got != filepath.Join("/cache/checkout", "examples", "main.lox") {
		t.Fatalf("EntryPath = %q", got)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, `
name: "9lives"
main: ../outside.lox
source:
  rev: abc
  branch: main
  path: /abs
`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	wants := []string{
		"name \"9lives\"",
		"main must not leave the project directory",
		"source.git must be provided",
		"exactly one of rev, tag, or branch",
		"source.path must be a relative path",
	}
	if len(verr.Issues) != len(wants) {
		t.Fatalf("expected %d issues, got %v", len(wants), verr.Issues)
	}
	for i, want := range wants {
		if !strings.Contains(verr.Issues[i], want) {
			t.Fatalf("issue %d = %q, want substring %q", i, verr.Issues[i], want)
		}
	}
	if !strings.HasPrefix(verr.Error(), "manifest validation failed:\n- ") {
		t.Fatalf("unexpected message %q", verr.Error())
	}

	_, err = LoadManifest(writeManifest(t, "main: main.lox\n"))
	if !errors.As(err, &verr) || verr.Issues[0] != "name must be provided" {
		t.Fatalf("expected missing name issue, got %v", err)
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "name: app\nversion: 1.0\n"))
	if err == nil || !strings.Contains(err.Error(), "field version not found") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadManifestEmpty(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, ""))
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
	if _, err := LoadManifest(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	path := writeManifest(t, "name: app\n")
	nested := filepath.Join(filepath.Dir(path), "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if got != path {
		t.Fatalf("FindManifest = %q, want %q", got, path)
	}

	if _, err := FindManifest(t.TempDir()); !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}
