package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

type completionKind int

const (
	completionNormal completionKind = iota
	completionReturn
)

// completion tells the caller how a statement finished. A return
// completion travels up through blocks, ifs and loops to the nearest call
// boundary or to the top level.
type completion struct {
	kind  completionKind
	value runtime.Value
}

var normalCompletion = completion{kind: completionNormal}

func (i *Interpreter) executeStatement(node ast.Statement) (completion, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		if _, err := i.evaluateExpression(n.Expression); err != nil {
			return completion{}, err
		}
		return normalCompletion, nil
	case *ast.PrintStatement:
		return i.executePrint(n)
	case *ast.LetStatement:
		return i.executeLet(n)
	case *ast.BlockStatement:
		return i.executeBlock(n.Statements, i.env.Extend())
	case *ast.IfStatement:
		return i.executeIf(n)
	case *ast.WhileLoop:
		return i.executeWhile(n)
	case *ast.FunctionDefinition:
		i.env.Define(n.Name.Lexeme, &runtime.FunctionValue{Declaration: n, Closure: i.env})
		return normalCompletion, nil
	case *ast.ReturnStatement:
		return i.executeReturn(n)
	default:
		return completion{}, fmt.Errorf("unsupported statement type: %s", node.NodeType())
	}
}

// executeBlock runs statements with env as the active scope. The previous
// scope is restored on every exit path, including errors.
func (i *Interpreter) executeBlock(statements []ast.Statement, env *runtime.Environment) (completion, error) {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, stmt := range statements {
		result, err := i.executeStatement(stmt)
		if err != nil {
			return completion{}, err
		}
		if result.kind == completionReturn {
			return result, nil
		}
	}
	return normalCompletion, nil
}

func (i *Interpreter) executePrint(stmt *ast.PrintStatement) (completion, error) {
	val, err := i.evaluateExpression(stmt.Expression)
	if err != nil {
		return completion{}, err
	}
	if _, err := fmt.Fprintln(i.out, runtime.Stringify(val)); err != nil {
		return completion{}, fmt.Errorf("print: %w", err)
	}
	return normalCompletion, nil
}

func (i *Interpreter) executeLet(stmt *ast.LetStatement) (completion, error) {
	var value runtime.Value = runtime.NilValue{}
	if stmt.Initializer != nil {
		val, err := i.evaluateExpression(stmt.Initializer)
		if err != nil {
			return completion{}, err
		}
		value = val
	}
	i.env.Define(stmt.Name.Lexeme, value)
	return normalCompletion, nil
}

func (i *Interpreter) executeIf(stmt *ast.IfStatement) (completion, error) {
	cond, err := i.evaluateExpression(stmt.Condition)
	if err != nil {
		return completion{}, err
	}
	if runtime.IsTruthy(cond) {
		return i.executeStatement(stmt.ThenBranch)
	}
	if stmt.ElseBranch != nil {
		return i.executeStatement(stmt.ElseBranch)
	}
	return normalCompletion, nil
}

func (i *Interpreter) executeWhile(loop *ast.WhileLoop) (completion, error) {
	for {
		cond, err := i.evaluateExpression(loop.Condition)
		if err != nil {
			return completion{}, err
		}
		if !runtime.IsTruthy(cond) {
			return normalCompletion, nil
		}
		result, err := i.executeStatement(loop.Body)
		if err != nil {
			return completion{}, err
		}
		if result.kind == completionReturn {
			return result, nil
		}
	}
}

func (i *Interpreter) executeReturn(stmt *ast.ReturnStatement) (completion, error) {
	var result runtime.Value = runtime.NilValue{}
	if stmt.Argument != nil {
		val, err := i.evaluateExpression(stmt.Argument)
		if err != nil {
			return completion{}, err
		}
		result = val
	}
	return completion{kind: completionReturn, value: result}, nil
}
