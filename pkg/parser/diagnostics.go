package parser

import (
	"fmt"
	"strings"

	"lox/interpreter-go/pkg/token"
)

// ParseError is one syntax diagnostic anchored to the offending token.
type ParseError struct {
	Message string
	Line    int
	Lexeme  string
	AtEnd   bool
}

func (e *ParseError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
}

func newParseError(tok token.Token, message string) *ParseError {
	return &ParseError{
		Message: message,
		Line:    tok.Line,
		Lexeme:  tok.Lexeme,
		AtEnd:   tok.Kind == token.EOF,
	}
}

// Errors aggregates every diagnostic produced by one parse.
type Errors struct {
	Issues []*ParseError
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Error())
	}
	return strings.Join(parts, "\n")
}

// Incomplete reports whether the input ran out before a construct was
// finished and nothing earlier went wrong, i.e. more source could still
// make it parse.
func (e *Errors) Incomplete() bool {
	if len(e.Issues) == 0 {
		return false
	}
	for _, issue := range e.Issues {
		if !issue.AtEnd {
			return false
		}
	}
	return true
}
