package parser

import "lox/interpreter-go/pkg/token"

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, *ParseError) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, newParseError(p.peek(), message)
}

// record keeps a diagnostic without unwinding the current production.
func (p *Parser) record(err *ParseError) {
	p.errs = append(p.errs, err)
}

// synchronize discards tokens until a likely statement boundary: just past
// a semicolon, or before a keyword that starts a statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Let, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
