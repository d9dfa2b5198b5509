package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/scanner"
)

const cliToolVersion = "lox 0.1.0"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitUsage
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return exitOK
	case "run":
		return runEntry(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "tokens":
		return runTokens(args[1:])
	case "ast":
		return runAST(args[1:])
	case "fetch":
		return runFetch(args[1:])
	default:
		return runEntry(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox run [-integers] [file.lox]")
	fmt.Fprintln(os.Stderr, "  lox <file.lox>")
	fmt.Fprintln(os.Stderr, "  lox repl [-integers]")
	fmt.Fprintln(os.Stderr, "  lox tokens [-integers] <file.lox>")
	fmt.Fprintln(os.Stderr, "  lox ast [-integers] [-json] <file.lox>")
	fmt.Fprintln(os.Stderr, "  lox fetch")
	fmt.Fprintln(os.Stderr, "  lox --version")
}

// newFlagSet returns a flag set that reports problems on stderr and lets
// the caller map them to the usage exit code.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	integers := fs.Bool("integers", false, "accept number literals without a fractional part")
	return fs, integers
}

func scanOptions(integers bool) []scanner.Option {
	if integers {
		return []scanner.Option{scanner.AllowIntegers()}
	}
	return nil
}

func runEntry(args []string) int {
	fs, integers := newFlagSet("run")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	rest := fs.Args()
	if len(rest) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(rest[1:], " "))
		return exitUsage
	}

	if len(rest) == 1 {
		return executeEntry(rest[0], optionsForFile(rest[0], *integers))
	}

	project, err := driver.OpenProject(".")
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			fmt.Fprintln(os.Stderr, "lox run requires a source file or a project (lox.yml not found)")
			return exitUsage
		}
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return exitError
	}
	var fetcher *driver.GitFetcher
	if project.Manifest.Source != nil {
		if fetcher, err = newFetcher(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return exitError
		}
	}
	entry, err := project.Entry(fetcher)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve entrypoint: %v\n", err)
		return exitError
	}
	return executeEntry(entry, scanOptions(*integers || project.Manifest.Integers))
}

// optionsForFile honours the integers setting of a manifest governing
// the file's directory, when there is one.
func optionsForFile(entry string, integers bool) []scanner.Option {
	abs, err := filepath.Abs(entry)
	if err != nil {
		return scanOptions(integers)
	}
	return optionsForDir(filepath.Dir(abs), integers)
}

// optionsForDir looks for lox.yml from dir upward. A manifest that cannot
// be read only costs its settings, so it is reported as a warning.
func optionsForDir(dir string, integers bool) []scanner.Option {
	if integers {
		return scanOptions(true)
	}
	manifestPath, err := driver.FindManifest(dir)
	if err != nil {
		if !errors.Is(err, driver.ErrManifestNotFound) {
			fmt.Fprintf(os.Stderr, "warning: ignoring project settings: %v\n", err)
		}
		return nil
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring %s: %v\n", manifestPath, err)
		return nil
	}
	return manifest.ScannerOptions()
}

func executeEntry(entry string, opts []scanner.Option) int {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		fmt.Fprintln(os.Stderr, "lox run requires a source file")
		return exitUsage
	}
	program, code := loadProgram(entry, opts)
	if program == nil {
		return code
	}

	interp := interpreter.New(interpreter.WithOutput(os.Stdout))
	if _, err := interp.Interpret(program.Statements); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	return exitOK
}

// loadProgram prints scan and parse diagnostics one per line.
func loadProgram(entry string, opts []scanner.Option) (*driver.Program, int) {
	loader := driver.NewLoader(driver.LoadOptions{ScanOptions: opts})
	program, err := loader.Load(entry)
	if err != nil {
		var serr *scanner.Errors
		if errors.As(err, &serr) || isParseError(err) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		}
		return nil, exitError
	}
	return program, exitOK
}

func runTokens(args []string) int {
	fs, integers := newFlagSet("tokens")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "lox tokens requires exactly one source file")
		return exitUsage
	}
	program, code := loadProgram(fs.Arg(0), optionsForFile(fs.Arg(0), *integers))
	if program == nil {
		return code
	}
	for _, tok := range program.Tokens {
		fmt.Fprintf(os.Stdout, "%d: %s\n", tok.Line, tok)
	}
	return exitOK
}

func runAST(args []string) int {
	fs, integers := newFlagSet("ast")
	asJSON := fs.Bool("json", false, "emit the tree as JSON")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "lox ast requires exactly one source file")
		return exitUsage
	}
	program, code := loadProgram(fs.Arg(0), optionsForFile(fs.Arg(0), *integers))
	if program == nil {
		return code
	}
	if *asJSON {
		if err := writeJSON(os.Stdout, program.Statements); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode ast: %v\n", err)
			return exitError
		}
		return exitOK
	}
	if len(program.Statements) > 0 {
		fmt.Fprintln(os.Stdout, ast.SprintProgram(program.Statements))
	}
	return exitOK
}

func writeJSON(w io.Writer, statements []ast.Statement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statements)
}

func runFetch(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "lox fetch does not take arguments (received %s)\n", strings.Join(args, " "))
		return exitUsage
	}
	project, err := driver.OpenProject(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return exitError
	}
	if project.Manifest.Source == nil {
		fmt.Fprintf(os.Stdout, "%s has no git source; nothing to fetch\n", project.Manifest.Name)
		return exitOK
	}
	fetcher, err := newFetcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}
	checkout, err := project.Fetch(fetcher, cliToolVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}
	fmt.Fprintf(os.Stdout, "fetched %s %s (%s)\n", project.Manifest.Name, checkout.Version, checkout.Dir)
	return exitOK
}

func newFetcher() (*driver.GitFetcher, error) {
	home, err := driver.ResolveHome()
	if err != nil {
		return nil, err
	}
	return driver.NewGitFetcher(home), nil
}
