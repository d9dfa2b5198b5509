// Package interpreter executes parsed programs by walking the tree.
package interpreter

import (
	"io"
	"os"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

const defaultMaxCallDepth = 4096

// Interpreter holds one program's global scope and the scope currently in
// effect. Instances share nothing.
type Interpreter struct {
	global       *runtime.Environment
	env          *runtime.Environment
	out          io.Writer
	now          func() time.Time
	natives      []*runtime.NativeFunctionValue
	depth        int
	maxCallDepth int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput redirects `print` output. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithGlobals runs against an existing global environment, e.g. one kept
// alive across REPL inputs.
func WithGlobals(env *runtime.Environment) Option {
	return func(i *Interpreter) { i.global = env }
}

// WithNative registers an extra native function in the global scope.
func WithNative(fn *runtime.NativeFunctionValue) Option {
	return func(i *Interpreter) { i.natives = append(i.natives, fn) }
}

// WithClock replaces the time source behind `clock`.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

// WithMaxCallDepth bounds nested calls; exceeding it is a runtime error.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) { i.maxCallDepth = depth }
}

// New returns an interpreter with builtins installed in its global scope.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		out:          os.Stdout,
		now:          time.Now,
		maxCallDepth: defaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.global == nil {
		i.global = runtime.NewEnvironment(nil)
	}
	i.env = i.global
	i.installBuiltins()
	for _, fn := range i.natives {
		i.global.Define(fn.Name, fn)
	}
	return i
}

// GlobalEnvironment returns the interpreter’s global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Interpret executes top-level statements in order. The first runtime error
// aborts the program. A top-level return stops execution and its value is
// the result; otherwise the result is nil.
func (i *Interpreter) Interpret(statements []ast.Statement) (runtime.Value, error) {
	i.env = i.global
	for _, stmt := range statements {
		result, err := i.executeStatement(stmt)
		if err != nil {
			return nil, err
		}
		if result.kind == completionReturn {
			return result.value, nil
		}
	}
	return runtime.NilValue{}, nil
}

// Evaluate computes a single expression in the global scope.
func (i *Interpreter) Evaluate(expr ast.Expression) (runtime.Value, error) {
	i.env = i.global
	return i.evaluateExpression(expr)
}

// CallFunction invokes callee from host code with the same arity checks a
// script call gets.
func (i *Interpreter) CallFunction(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return i.invoke(callee, args, token.Token{Kind: token.RightParen, Lexeme: ")"})
}

// ExecuteBody implements runtime.BodyExecutor.
func (i *Interpreter) ExecuteBody(body []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	result, err := i.executeBlock(body, env)
	if err != nil {
		return nil, err
	}
	if result.kind == completionReturn {
		return result.value, nil
	}
	return runtime.NilValue{}, nil
}

func (i *Interpreter) callContext() *runtime.CallContext {
	return &runtime.CallContext{Executor: i, Globals: i.global}
}
