package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluateExpression(node ast.Expression) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return runtime.FromLiteral(n.Value)
	case *ast.GroupingExpression:
		return i.evaluateExpression(n.Expression)
	case *ast.Variable:
		val, err := i.env.Get(n.Name.Lexeme)
		if err != nil {
			return nil, asRuntimeError(n.Name, err)
		}
		return val, nil
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n)
	case *ast.LogicalExpression:
		return i.evaluateLogicalExpression(n)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateAssignment(assign *ast.AssignmentExpression) (runtime.Value, error) {
	val, err := i.evaluateExpression(assign.Value)
	if err != nil {
		return nil, err
	}
	if err := i.env.Assign(assign.Name.Lexeme, val); err != nil {
		return nil, asRuntimeError(assign.Name, err)
	}
	return val, nil
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand)
	if err != nil {
		return nil, err
	}
	switch expr.Operator.Kind {
	case token.Minus:
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, newRuntimeError(expr.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	case token.Bang:
		return runtime.BoolValue{Val: !runtime.IsTruthy(operand)}, nil
	default:
		return nil, newRuntimeError(expr.Operator, "Unsupported unary operator %s", expr.Operator.Lexeme)
	}
}

// evaluateBinaryExpression evaluates the left operand fully before the right.
func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right)
	if err != nil {
		return nil, err
	}
	op := expr.Operator
	switch op.Kind {
	case token.Plus:
		if ls, ok := left.(runtime.StringValue); ok {
			if rs, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: ls.Val + rs.Val}, nil
			}
		}
		if _, _, ok := numberOperands(left, right); ok {
			return evaluateArithmetic(op, left, right)
		}
		return nil, newRuntimeError(op, "Operands must be two numbers or two strings.")
	case token.Minus, token.Star, token.Slash:
		return evaluateArithmetic(op, left, right)
	case token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		return evaluateComparison(op, left, right)
	case token.EqualEqual:
		return runtime.BoolValue{Val: runtime.ValuesEqual(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !runtime.ValuesEqual(left, right)}, nil
	default:
		return nil, newRuntimeError(op, "Unsupported binary operator %s", op.Lexeme)
	}
}

// evaluateLogicalExpression short-circuits and yields an operand value,
// not a coerced boolean.
func (i *Interpreter) evaluateLogicalExpression(expr *ast.LogicalExpression) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left)
	if err != nil {
		return nil, err
	}
	truthy := runtime.IsTruthy(left)
	if expr.Operator.Kind == token.Or && truthy {
		return left, nil
	}
	if expr.Operator.Kind == token.And && !truthy {
		return left, nil
	}
	return i.evaluateExpression(expr.Right)
}

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return i.invoke(callee, args, call.Paren)
}

func (i *Interpreter) invoke(callee runtime.Value, args []runtime.Value, paren token.Token) (runtime.Value, error) {
	fn, ok := callee.(runtime.Callable)
	if !ok {
		return nil, newRuntimeError(paren, "Can only call functions.")
	}
	if len(args) != fn.Arity() {
		return nil, newRuntimeError(paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	if i.depth >= i.maxCallDepth {
		return nil, newRuntimeError(paren, "Stack overflow.")
	}
	i.depth++
	defer func() { i.depth-- }()

	result, err := fn.Call(i.callContext(), args)
	if err != nil {
		return nil, asRuntimeError(paren, err)
	}
	return result, nil
}

func numberOperands(left, right runtime.Value) (float64, float64, bool) {
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return 0, 0, false
	}
	return l.Val, r.Val, true
}

// evaluateArithmetic follows IEEE-754, so division by zero yields an
// infinity or NaN rather than an error.
func evaluateArithmetic(op token.Token, left, right runtime.Value) (runtime.Value, error) {
	l, r, ok := numberOperands(left, right)
	if !ok {
		return nil, newRuntimeError(op, "Operands must be numbers.")
	}
	switch op.Kind {
	case token.Plus:
		return runtime.NumberValue{Val: l + r}, nil
	case token.Minus:
		return runtime.NumberValue{Val: l - r}, nil
	case token.Star:
		return runtime.NumberValue{Val: l * r}, nil
	case token.Slash:
		return runtime.NumberValue{Val: l / r}, nil
	default:
		return nil, newRuntimeError(op, "Unsupported arithmetic operator %s", op.Lexeme)
	}
}

func evaluateComparison(op token.Token, left, right runtime.Value) (runtime.Value, error) {
	l, r, ok := numberOperands(left, right)
	if !ok {
		return nil, newRuntimeError(op, "Operands must be numbers.")
	}
	return runtime.BoolValue{Val: comparisonOp(op.Kind, l, r)}, nil
}

func comparisonOp(kind token.Kind, l, r float64) bool {
	switch kind {
	case token.Greater:
		return l > r
	case token.GreaterEqual:
		return l >= r
	case token.Less:
		return l < r
	case token.LessEqual:
		return l <= r
	default:
		return false
	}
}
