// Package parser builds the statement list for a program from its tokens
// using recursive descent. Failed statements are skipped up to the next
// statement boundary so a single parse reports every independent error.
package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

// maxArguments bounds both call arguments and function parameters.
const maxArguments = 255

var infixOperatorSets = map[string][]token.Kind{
	"equality":   {token.BangEqual, token.EqualEqual},
	"comparison": {token.Greater, token.GreaterEqual, token.Less, token.LessEqual},
	"term":       {token.Minus, token.Plus},
	"factor":     {token.Slash, token.Star},
	"unary":      {token.Bang, token.Minus},
}

// Parser consumes a token slice terminated by EOF.
type Parser struct {
	tokens  []token.Token
	current int
	errs    []*ParseError
}

// New constructs a parser over tokens. A missing trailing EOF is added.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.New(token.EOF, "", line))
	}
	return &Parser{tokens: tokens}
}

// Parse returns the top-level statements. When any statement failed the
// statements are nil and the error is an *Errors listing every diagnostic.
func (p *Parser) Parse() ([]ast.Statement, error) {
	statements := make([]ast.Statement, 0)
	for !p.isAtEnd() {
		if stmt, ok := p.declaration(); ok {
			statements = append(statements, stmt)
		}
	}
	if len(p.errs) > 0 {
		return nil, &Errors{Issues: p.errs}
	}
	return statements, nil
}

// ParseSource scans and parses src in one step. Scan errors are returned
// as *scanner.Errors and stop before parsing.
func ParseSource(src string, opts ...scanner.Option) ([]ast.Statement, error) {
	tokens, err := scanner.Scan(src, opts...)
	if err != nil {
		return nil, err
	}
	return New(tokens).Parse()
}

// ParseExpression parses a single expression followed by EOF.
func ParseExpression(tokens []token.Token) (ast.Expression, error) {
	p := New(tokens)
	expr, err := p.expression()
	if err == nil && !p.isAtEnd() {
		err = newParseError(p.peek(), "Expect end of expression.")
	}
	if err != nil {
		p.record(err)
	}
	if len(p.errs) > 0 {
		return nil, &Errors{Issues: p.errs}
	}
	return expr, nil
}
