package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/scanner"
)

const (
	banner          = "lox repl. Type :help for commands, :quit to exit."
	promptMain      = "> "
	promptCont      = "... "
	historyFileName = "history"
)

// lineReader is the part of *liner.State the read loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

func runRepl(args []string) int {
	fs, integers := newFlagSet("repl")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}

	fmt.Fprintln(os.Stdout, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if home, err := driver.ResolveHome(); err == nil {
		histPath := filepath.Join(home, historyFileName)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(home, 0o755); err != nil {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	session := newReplSession(os.Stdout, os.Stderr, optionsForDir(".", *integers))
	return session.loop(ln, ln.AppendHistory)
}

// replSession evaluates inputs against one interpreter so definitions
// persist between lines.
type replSession struct {
	interp   *interpreter.Interpreter
	out      io.Writer
	errOut   io.Writer
	scanOpts []scanner.Option
}

func newReplSession(out, errOut io.Writer, opts []scanner.Option) *replSession {
	return &replSession{
		interp:   interpreter.New(interpreter.WithOutput(out)),
		out:      out,
		errOut:   errOut,
		scanOpts: opts,
	}
}

func (s *replSession) loop(r lineReader, remember func(string)) int {
	for {
		code, ok := readByParseProbe(r, promptMain, promptCont, s.scanOpts)
		if !ok {
			fmt.Fprintln(s.out)
			return exitOK
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed) {
				return exitOK
			}
			continue
		}
		s.eval(code)
		if remember != nil {
			remember(strings.ReplaceAll(code, "\n", " "))
		}
	}
}

// command handles a `:`-prefixed input and reports whether to exit.
func (s *replSession) command(line string) bool {
	switch strings.ToLower(line) {
	case ":quit", ":q", ":exit":
		return true
	case ":env":
		for _, name := range s.interp.GlobalEnvironment().Keys() {
			val, _ := s.interp.GlobalEnvironment().Get(name)
			fmt.Fprintf(s.out, "%s = %s\n", name, runtime.Stringify(val))
		}
	case ":help":
		fmt.Fprintln(s.out, ":env   list global bindings")
		fmt.Fprintln(s.out, ":quit  leave the repl")
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for commands.")
	}
	return false
}

// eval runs one complete input. A bare expression is evaluated and its
// value echoed; anything else runs as statements.
func (s *replSession) eval(code string) {
	tokens, err := scanner.Scan(code, s.scanOpts...)
	if err != nil {
		fmt.Fprintln(s.errOut, err)
		return
	}
	if expr, err := parser.ParseExpression(tokens); err == nil {
		val, err := s.interp.Evaluate(expr)
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return
		}
		fmt.Fprintln(s.out, runtime.Stringify(val))
		return
	}
	statements, err := parser.New(tokens).Parse()
	if err != nil {
		fmt.Fprintln(s.errOut, err)
		return
	}
	if _, err := s.interp.Interpret(statements); err != nil {
		fmt.Fprintln(s.errOut, err)
	}
}

// readByParseProbe reads one or more lines until the input is either
// complete or can no longer be completed by further lines.
func readByParseProbe(r lineReader, prompt, cont string, opts []scanner.Option) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = r.Prompt(prompt)
		} else {
			line, err = r.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !needsMoreInput(src, opts) {
			return src, true
		}
	}
}

func needsMoreInput(src string, opts []scanner.Option) bool {
	tokens, err := scanner.Scan(src, opts...)
	if err != nil {
		var serr *scanner.Errors
		return errors.As(err, &serr) && serr.Incomplete()
	}
	if _, err := parser.ParseExpression(tokens); err == nil {
		return false
	}
	_, err = parser.New(tokens).Parse()
	var perr *parser.Errors
	return errors.As(err, &perr) && perr.Incomplete()
}

func isParseError(err error) bool {
	var perr *parser.Errors
	return errors.As(err, &perr)
}
