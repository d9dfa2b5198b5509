package parser

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

type expressionParser func() (ast.Expression, *ParseError)

func (p *Parser) expression() (ast.Expression, *ParseError) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expression, *ParseError) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Equal) {
		return expr, nil
	}
	equals := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if target, ok := expr.(*ast.Variable); ok {
		return ast.NewAssignmentExpression(target.Name, value), nil
	}
	p.record(newParseError(equals, "Invalid assignment target."))
	return expr, nil
}

func (p *Parser) or() (ast.Expression, *ParseError) {
	return p.logical(token.Or, p.and)
}

func (p *Parser) and() (ast.Expression, *ParseError) {
	return p.logical(token.And, p.equality)
}

func (p *Parser) logical(kind token.Kind, next expressionParser) (ast.Expression, *ParseError) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(kind) {
		operator := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expression, *ParseError) {
	return p.binary("equality", p.comparison)
}

func (p *Parser) comparison() (ast.Expression, *ParseError) {
	return p.binary("comparison", p.term)
}

func (p *Parser) term() (ast.Expression, *ParseError) {
	return p.binary("term", p.factor)
}

func (p *Parser) factor() (ast.Expression, *ParseError) {
	return p.binary("factor", p.unary)
}

// binary parses one left-associative precedence level named in
// infixOperatorSets.
func (p *Parser) binary(level string, next expressionParser) (ast.Expression, *ParseError) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(infixOperatorSets[level]...) {
		operator := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expression, *ParseError) {
	if p.match(infixOperatorSets["unary"]...) {
		operator := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(operator, operand), nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expression, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.match(token.LeftParen) {
		if expr, err = p.finishCall(expr); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, *ParseError) {
	arguments := make([]ast.Expression, 0)
	if !p.check(token.RightParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			arguments = append(arguments, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	if len(arguments) > maxArguments {
		p.record(newParseError(paren, fmt.Sprintf("Can't have more than %d arguments.", maxArguments)))
	}
	return ast.NewFunctionCall(callee, paren, arguments), nil
}

func (p *Parser) primary() (ast.Expression, *ParseError) {
	switch {
	case p.match(token.False):
		return ast.NewLiteral(false), nil
	case p.match(token.True):
		return ast.NewLiteral(true), nil
	case p.match(token.Nil):
		return ast.NewLiteral(nil), nil
	case p.match(token.Number, token.String):
		return ast.NewLiteral(p.previous().Literal), nil
	case p.match(token.Identifier):
		return ast.NewVariable(p.previous()), nil
	case p.match(token.LeftParen):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return ast.NewGroupingExpression(inner), nil
	}
	return nil, newParseError(p.peek(), "Expect expression.")
}
