// Package scanner turns source text into the token stream consumed by the
// parser. Lexical errors are collected rather than aborting the pass, so one
// call reports every problem in the input.
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"lox/interpreter-go/pkg/token"
)

// Error is a single lexical diagnostic.
type Error struct {
	Line    int
	Message string
	// AtEnd marks errors caused by input ending inside a token.
	AtEnd bool
}

func (e Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// Errors aggregates every diagnostic produced by one scan.
type Errors struct {
	Diagnostics []Error
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Diagnostics))
	for _, diag := range e.Diagnostics {
		parts = append(parts, diag.Error())
	}
	return strings.Join(parts, "\n")
}

// Incomplete reports whether more input could still fix the source, as
// with a string literal left open at the end. Any other diagnostic makes
// the source unfixable by appending.
func (e *Errors) Incomplete() bool {
	if len(e.Diagnostics) == 0 {
		return false
	}
	for _, diag := range e.Diagnostics {
		if !diag.AtEnd {
			return false
		}
	}
	return true
}

// Option tweaks scanner behaviour.
type Option func(*Scanner)

// AllowIntegers accepts numeric literals without a fractional part. Without
// it `1` is rejected and only `1.0` is a number.
func AllowIntegers() Option {
	return func(s *Scanner) {
		s.allowIntegers = true
	}
}

// Scanner holds the state for one pass over a source string.
type Scanner struct {
	source  string
	tokens  []token.Token
	errs    []Error
	start   int
	current int
	line    int

	allowIntegers bool
}

// New creates a scanner over source.
func New(source string, opts ...Option) *Scanner {
	s := &Scanner{source: source, line: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanTokens scans the whole source. The returned slice always ends with an
// EOF token; when any lexical error was found the slice is nil and the error
// is an *Errors.
func (s *Scanner) ScanTokens() ([]token.Token, error) {
	s.tokens = s.tokens[:0]
	s.errs = s.errs[:0]
	s.start, s.current, s.line = 0, 0, 1

	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", s.line))

	if len(s.errs) > 0 {
		diags := make([]Error, len(s.errs))
		copy(diags, s.errs)
		return nil, &Errors{Diagnostics: diags}
	}
	out := make([]token.Token, len(s.tokens))
	copy(out, s.tokens)
	return out, nil
}

// Scan is a shorthand for New(source, opts...).ScanTokens().
func Scan(source string, opts ...Option) ([]token.Token, error) {
	return New(source, opts...).ScanTokens()
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(token.LeftParen)
	case ')':
		s.addToken(token.RightParen)
	case '{':
		s.addToken(token.LeftBrace)
	case '}':
		s.addToken(token.RightBrace)
	case ',':
		s.addToken(token.Comma)
	case '.':
		s.addToken(token.Dot)
	case '-':
		s.addToken(token.Minus)
	case '+':
		s.addToken(token.Plus)
	case ';':
		s.addToken(token.Semicolon)
	case '*':
		s.addToken(token.Star)
	case '!':
		s.addToken(s.either('=', token.BangEqual, token.Bang))
	case '=':
		s.addToken(s.either('=', token.EqualEqual, token.Equal))
	case '<':
		s.addToken(s.either('=', token.LessEqual, token.Less))
	case '>':
		s.addToken(s.either('=', token.GreaterEqual, token.Greater))
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(token.Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(c):
			s.scanNumber()
		case isAlpha(c):
			s.scanIdentifier()
		default:
			r := rune(c)
			if c >= utf8.RuneSelf {
				var size int
				r, size = utf8.DecodeRuneInString(s.source[s.start:])
				s.current = s.start + size
			}
			s.errorf(s.line, "Unexpected character '%c'.", r)
		}
	}
}

func (s *Scanner) scanString() {
	startLine := s.line
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		s.errs = append(s.errs, Error{Line: startLine, Message: "Unterminated string.", AtEnd: true})
		return
	}
	s.advance()

	value := s.source[s.start+1 : s.current-1]
	s.addLiteral(token.String, value)
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	} else if !s.allowIntegers {
		s.errorf(s.line, "Malformed number '%s': a fractional part is required.", s.source[s.start:s.current])
		return
	}

	text := s.source[s.start:s.current]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.errorf(s.line, "Malformed number '%s'.", text)
		return
	}
	s.addLiteral(token.Number, value)
}

func (s *Scanner) scanIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	s.addToken(token.Lookup(s.source[s.start:s.current]))
}

func (s *Scanner) either(expected byte, matched, otherwise token.Kind) token.Kind {
	if s.match(expected) {
		return matched
	}
	return otherwise
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) addToken(kind token.Kind) {
	s.addLiteral(kind, nil)
}

func (s *Scanner) addLiteral(kind token.Kind, literal any) {
	s.tokens = append(s.tokens, token.Token{
		Kind:    kind,
		Lexeme:  s.source[s.start:s.current],
		Literal: literal,
		Line:    s.line,
	})
}

func (s *Scanner) errorf(line int, format string, args ...any) {
	s.errs = append(s.errs, Error{Line: line, Message: fmt.Sprintf(format, args...)})
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
