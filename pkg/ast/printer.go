package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprint renders a node as a parenthesized prefix form, e.g.
// `(print (+ 1 (* 2 3)))`. Used by `lox ast` and parser tests.
func Sprint(node Node) string {
	var b strings.Builder
	write(&b, node)
	return b.String()
}

// SprintProgram renders each top-level statement on its own line.
func SprintProgram(statements []Statement) string {
	lines := make([]string, 0, len(statements))
	for _, stmt := range statements {
		lines = append(lines, Sprint(stmt))
	}
	return strings.Join(lines, "\n")
}

func write(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Literal:
		b.WriteString(literalText(n.Value))
	case *UnaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Operand)
	case *BinaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *LogicalExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *GroupingExpression:
		parenthesize(b, "group", n.Expression)
	case *Variable:
		b.WriteString(n.Name.Lexeme)
	case *AssignmentExpression:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *FunctionCall:
		nodes := make([]Node, 0, len(n.Arguments)+1)
		nodes = append(nodes, n.Callee)
		for _, arg := range n.Arguments {
			nodes = append(nodes, arg)
		}
		parenthesize(b, "call", nodes...)
	case *ExpressionStatement:
		parenthesize(b, ";", n.Expression)
	case *PrintStatement:
		parenthesize(b, "print", n.Expression)
	case *LetStatement:
		if n.Initializer == nil {
			fmt.Fprintf(b, "(let %s)", n.Name.Lexeme)
			return
		}
		parenthesize(b, "let "+n.Name.Lexeme, n.Initializer)
	case *BlockStatement:
		parenthesize(b, "block", statementNodes(n.Statements)...)
	case *IfStatement:
		if n.ElseBranch == nil {
			parenthesize(b, "if", n.Condition, n.ThenBranch)
			return
		}
		parenthesize(b, "if-else", n.Condition, n.ThenBranch, n.ElseBranch)
	case *WhileLoop:
		parenthesize(b, "while", n.Condition, n.Body)
	case *FunctionDefinition:
		params := make([]string, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, p.Lexeme)
		}
		head := fmt.Sprintf("fun %s(%s)", n.Name.Lexeme, strings.Join(params, " "))
		parenthesize(b, head, statementNodes(n.Body)...)
	case *ReturnStatement:
		if n.Argument == nil {
			b.WriteString("(return)")
			return
		}
		parenthesize(b, "return", n.Argument)
	default:
		fmt.Fprintf(b, "<%s>", node.NodeType())
	}
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, node := range nodes {
		b.WriteByte(' ')
		write(b, node)
	}
	b.WriteByte(')')
}

func statementNodes(statements []Statement) []Node {
	nodes := make([]Node, 0, len(statements))
	for _, stmt := range statements {
		nodes = append(nodes, stmt)
	}
	return nodes
}

func literalText(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
