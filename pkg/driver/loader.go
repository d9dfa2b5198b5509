package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

// Program is one parsed script, ready to interpret.
type Program struct {
	Name       string
	Source     string
	Tokens     []token.Token
	Statements []ast.Statement
}

// LoadOptions configures optional loading behavior.
type LoadOptions struct {
	ScanOptions []scanner.Option
}

// Loader reads scripts and runs them through the scanner and parser.
type Loader struct {
	opts LoadOptions
}

// NewLoader constructs a loader.
func NewLoader(opts LoadOptions) *Loader {
	return &Loader{opts: opts}
}

// Load reads and parses the script at path.
func (l *Loader) Load(path string) (*Program, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return l.LoadSource(abs, string(data))
}

// LoadSource parses src under the given display name. Scan failures return
// *scanner.Errors and parse failures *parser.Errors, both unwrapped so
// callers can print each diagnostic on its own line.
func (l *Loader) LoadSource(name, src string) (*Program, error) {
	tokens, err := scanner.Scan(src, l.opts.ScanOptions...)
	if err != nil {
		return nil, err
	}
	statements, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return &Program{
		Name:       name,
		Source:     src,
		Tokens:     tokens,
		Statements: statements,
	}, nil
}
