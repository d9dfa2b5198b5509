package ast

import "lox/interpreter-go/pkg/token"

// Helpers for building trees by hand, mostly from tests. Every synthesized
// token sits on line 1.

var operatorKinds = map[string]token.Kind{
	"-":   token.Minus,
	"+":   token.Plus,
	"*":   token.Star,
	"/":   token.Slash,
	"!":   token.Bang,
	"!=":  token.BangEqual,
	"==":  token.EqualEqual,
	">":   token.Greater,
	">=":  token.GreaterEqual,
	"<":   token.Less,
	"<=":  token.LessEqual,
	"and": token.And,
	"or":  token.Or,
}

// Op builds an operator token from its lexeme.
func Op(lexeme string) token.Token {
	kind, ok := operatorKinds[lexeme]
	if !ok {
		kind = token.Identifier
	}
	return token.New(kind, lexeme, 1)
}

// Ident builds an identifier token.
func Ident(name string) token.Token {
	return token.New(token.Identifier, name, 1)
}

func Num(value float64) *Literal {
	return NewLiteral(value)
}

func Str(value string) *Literal {
	return NewLiteral(value)
}

func Bool(value bool) *Literal {
	return NewLiteral(value)
}

func Nil() *Literal {
	return NewLiteral(nil)
}

func Var(name string) *Variable {
	return NewVariable(Ident(name))
}

func Assign(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(Ident(name), value)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(Op(op), operand)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(left, Op(op), right)
}

func Logic(op string, left, right Expression) *LogicalExpression {
	return NewLogicalExpression(left, Op(op), right)
}

func Group(inner Expression) *GroupingExpression {
	return NewGroupingExpression(inner)
}

func CallExpr(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, token.New(token.RightParen, ")", 1), args)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Print(expr Expression) *PrintStatement {
	return NewPrintStatement(expr)
}

func Let(name string, initializer Expression) *LetStatement {
	return NewLetStatement(Ident(name), initializer)
}

func Block(statements ...Statement) *BlockStatement {
	return NewBlockStatement(statements)
}

func If(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return NewIfStatement(condition, thenBranch, elseBranch)
}

func While(condition Expression, body Statement) *WhileLoop {
	return NewWhileLoop(condition, body)
}

func Fn(name string, params []string, body ...Statement) *FunctionDefinition {
	tokens := make([]token.Token, 0, len(params))
	for _, param := range params {
		tokens = append(tokens, Ident(param))
	}
	return NewFunctionDefinition(Ident(name), tokens, body)
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(token.New(token.Return, "return", 1), argument)
}
