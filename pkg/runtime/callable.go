package runtime

import (
	"errors"
	"fmt"

	"lox/interpreter-go/pkg/ast"
)

// Callable is implemented by every value that can appear as a callee.
// User functions and natives share this contract; the interpreter checks
// arity before calling.
type Callable interface {
	Value
	Arity() int
	Call(ctx *CallContext, args []Value) (Value, error)
	String() string
}

// BodyExecutor runs a function body in the given scope and turns a return
// completion into the call result (nil when the body falls through).
type BodyExecutor interface {
	ExecuteBody(body []ast.Statement, env *Environment) (Value, error)
}

// CallContext carries what a callee may need from its caller.
type CallContext struct {
	Executor BodyExecutor
	Globals  *Environment
}

var errNoExecutor = errors.New("call context has no body executor")

//-----------------------------------------------------------------------------
// User functions
//-----------------------------------------------------------------------------

// FunctionValue pairs a declaration with the environment that was active
// when it was declared. The closure is shared, not copied, so later
// mutations of captured variables are visible to the function.
type FunctionValue struct {
	Declaration *ast.FunctionDefinition
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Arity() int { return len(v.Declaration.Params) }

func (v *FunctionValue) String() string {
	return fmt.Sprintf("<fn %s>", v.Declaration.Name.Lexeme)
}

// Call binds the parameters in a fresh scope chained to the closure and
// executes the body there.
func (v *FunctionValue) Call(ctx *CallContext, args []Value) (Value, error) {
	if ctx == nil || ctx.Executor == nil {
		return nil, errNoExecutor
	}
	env := NewEnvironment(v.Closure)
	for i, param := range v.Declaration.Params {
		var arg Value = NilValue{}
		if i < len(args) {
			arg = args[i]
		}
		env.Define(param.Lexeme, arg)
	}
	return ctx.Executor.ExecuteBody(v.Declaration.Body, env)
}

//-----------------------------------------------------------------------------
// Natives
//-----------------------------------------------------------------------------

type NativeFunc func(*CallContext, []Value) (Value, error)

// NativeFunctionValue is a host-implemented function exposed to scripts.
type NativeFunctionValue struct {
	Name     string
	ArgCount int
	Impl     NativeFunc
}

// NewNativeFunction wraps impl as a callable with a fixed arity.
func NewNativeFunction(name string, arity int, impl NativeFunc) *NativeFunctionValue {
	return &NativeFunctionValue{Name: name, ArgCount: arity, Impl: impl}
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (v *NativeFunctionValue) Arity() int { return v.ArgCount }

func (v *NativeFunctionValue) String() string {
	return fmt.Sprintf("<native fn %s>", v.Name)
}

func (v *NativeFunctionValue) Call(ctx *CallContext, args []Value) (Value, error) {
	if v.Impl == nil {
		return NilValue{}, nil
	}
	result, err := v.Impl(ctx, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return NilValue{}, nil
	}
	return result, nil
}
