package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/scanner"
)

func runSource(t *testing.T, interp *Interpreter, src string, opts ...scanner.Option) (runtime.Value, error) {
	t.Helper()
	stmts, err := parser.ParseSource(src, opts...)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return interp.Interpret(stmts)
}

func expectOutput(t *testing.T, src string, want string) {
	t.Helper()
	var out bytes.Buffer
	if _, err := runSource(t, New(WithOutput(&out)), src); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.String() != want {
		t.Fatalf("output mismatch for %q:\n got: %q\nwant: %q", src, out.String(), want)
	}
}

func expectRuntimeError(t *testing.T, src string, want string) *RuntimeError {
	t.Helper()
	_, err := runSource(t, New(WithOutput(&bytes.Buffer{})), src)
	if err == nil {
		t.Fatalf("expected runtime error for %q", src)
	}
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if rerr.Error() != want {
		t.Fatalf("error mismatch:\n got: %q\nwant: %q", rerr.Error(), want)
	}
	return rerr
}

func TestArithmeticPrecedence(t *testing.T) {
	expectOutput(t, "print 1.0 + 2.0 * 3.0;", "7\n")
	expectOutput(t, "print (1.0 + 2.0) * 3.0;", "9\n")
	expectOutput(t, "print 10.0 - 4.0 - 3.0;", "3\n")
	expectOutput(t, "print 7.0 / 2.0;", "3.5\n")
	expectOutput(t, "print -2.5 * 2.0;", "-5\n")

	var out bytes.Buffer
	if _, err := runSource(t, New(WithOutput(&out)), "print 1 + 2 * 3;", scanner.AllowIntegers()); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.String() != "7\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestStringsEqualityAndTruthiness(t *testing.T) {
	expectOutput(t, `print "foo" + "bar";`, "foobar\n")
	expectOutput(t, `print 1.0 == 1.0; print "a" == "a"; print nil == false; print 1.0 != "1"; print nil == nil;`,
		"true\ntrue\nfalse\ntrue\ntrue\n")
	expectOutput(t, `print !nil; print !0.0; print !""; print !!true;`, "true\nfalse\nfalse\ntrue\n")
	expectOutput(t, `print 1.0 < 2.0; print 2.0 <= 2.0; print 3.0 > 4.0; print 4.0 >= 5.0;`, "true\ntrue\nfalse\nfalse\n")
	expectOutput(t, "print 1.0 / 0.0; print -1.0 / 0.0;", "+Inf\n-Inf\n")
}

func TestLogicalOperatorsReturnOperands(t *testing.T) {
	expectOutput(t, `print nil or "yes"; print 0.0 and "b"; print false and 1.0; print "a" or 2.0;`,
		"yes\nb\nfalse\na\n")
	// The right operand must not run when the left decides the result.
	expectOutput(t, `let hit = false; fun touch() { hit = true; return true; } print true or touch(); print false and touch(); print hit;`,
		"true\nfalse\nfalse\n")
}

func TestBlockScopingAndShadowing(t *testing.T) {
	expectOutput(t, "let a = 1.0; { let a = 2.0; print a; } print a;", "2\n1\n")
	expectOutput(t, "let a = 1.0; { a = 2.0; } print a;", "2\n")
	expectOutput(t, "let a; print a;", "nil\n")
	expectOutput(t, "let a; let b; a = b = 3.0; print a; print b;", "3\n3\n")
	expectOutput(t, "let a = 1.0; let a = 2.0; print a;", "2\n")
}

func TestWhileAndForLoops(t *testing.T) {
	want := "0\n1\n2\n"
	expectOutput(t, "let i = 0.0; while (i < 3.0) { print i; i = i + 1.0; }", want)
	expectOutput(t, "for (let i = 0.0; i < 3.0; i = i + 1.0) print i;", want)
	expectOutput(t, "let i = 0.0; for (; i < 3.0;) { print i; i = i + 1.0; }", want)
	expectOutput(t, "for (let i = 0.0; i < 3.0; i = i + 1.0) {} print 1.0;", "1\n")
}

func TestFunctionsAndRecursion(t *testing.T) {
	expectOutput(t, `
fun fact(n) {
  if (n <= 1.0) return 1.0;
  return n * fact(n - 1.0);
}
print fact(5.0);`, "120\n")

	expectOutput(t, `
fn fib(n) {
  if (n < 2.0) return n;
  return fib(n - 1.0) + fib(n - 2.0);
}
print fib(10.0);`, "55\n")

	expectOutput(t, "fun f() {} print f(); fun g() { return; } print g();", "nil\nnil\n")
	expectOutput(t, "fun f() {} print f; print clock; print f == f;", "<fn f>\n<native fn clock>\ntrue\n")
	expectOutput(t, `
fun first() {
  let i = 0.0;
  while (true) {
    if (i > 2.0) return i;
    i = i + 1.0;
  }
}
print first();`, "3\n")
}

func TestClosuresCaptureSharedEnvironment(t *testing.T) {
	expectOutput(t, `
fun makeCounter() {
  let i = 0.0;
  fun count() {
    i = i + 1.0;
    return i;
  }
  return count;
}
let c = makeCounter();
print c();
print c();
let d = makeCounter();
print d();
print c();`, "1\n2\n1\n3\n")

	expectOutput(t, "let x = 1.0; fun show() { print x; } x = 2.0; show();", "2\n")
}

func TestEvaluationOrderIsLeftToRight(t *testing.T) {
	expectOutput(t, `
fun id(x) { print x; return x; }
fun three(a, b, c) {}
three(id(1.0), id(2.0), id(3.0));
id(4.0) + id(5.0);`, "1\n2\n3\n4\n5\n")
}

func TestRuntimeErrors(t *testing.T) {
	expectRuntimeError(t, "fun f(a) { return a; } f();",
		"[line 1] Runtime error at ')': Expected 1 arguments but got 0.")
	expectRuntimeError(t, `print -"a";`,
		"[line 1] Runtime error at '-': Operand must be a number.")
	expectRuntimeError(t, `print 1.0 + "a";`,
		"[line 1] Runtime error at '+': Operands must be two numbers or two strings.")
	expectRuntimeError(t, `print "a" < "b";`,
		"[line 1] Runtime error at '<': Operands must be numbers.")
	expectRuntimeError(t, `print "a" * 2.0;`,
		"[line 1] Runtime error at '*': Operands must be numbers.")
	expectRuntimeError(t, `"a"();`,
		"[line 1] Runtime error at ')': Can only call functions.")

	rerr := expectRuntimeError(t, "print 1.0;\nprint y;",
		"[line 2] Runtime error at 'y': Undefined variable 'y'.")
	var undef *runtime.UndefinedError
	if !errors.As(rerr, &undef) || undef.Name != "y" {
		t.Fatalf("expected wrapped *runtime.UndefinedError, got %v", rerr.Err)
	}
	expectRuntimeError(t, "z = 1.0;", "[line 1] Runtime error at 'z': Undefined variable 'z'.")
}

func TestRuntimeErrorAbortsProgram(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	if _, err := runSource(t, interp, "print 1.0; print y; print 2.0;"); err == nil {
		t.Fatalf("expected error")
	}
	if out.String() != "1\n" {
		t.Fatalf("statements after the error must not run, got %q", out.String())
	}
}

func TestScopeRestoredAfterError(t *testing.T) {
	interp := New(WithOutput(&bytes.Buffer{}))
	if _, err := runSource(t, interp, "{ let inner = 1.0; print missing; }"); err == nil {
		t.Fatalf("expected error")
	}
	if interp.env != interp.GlobalEnvironment() {
		t.Fatalf("active scope not restored after error")
	}
	if _, err := runSource(t, interp, "print inner;"); err == nil {
		t.Fatalf("block binding leaked into globals")
	}
}

func TestTopLevelReturnHaltsProgram(t *testing.T) {
	var out bytes.Buffer
	value, err := runSource(t, New(WithOutput(&out)), "print 1.0; return 5.0; print 2.0;")
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if num, ok := value.(runtime.NumberValue); !ok || num.Val != 5 {
		t.Fatalf("expected program result 5, got %#v", value)
	}

	value, err = runSource(t, New(WithOutput(&out)), "print 1.0;")
	if err != nil || value.Kind() != runtime.KindNil {
		t.Fatalf("expected nil result, got %#v (%v)", value, err)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a := New(WithOutput(&bytes.Buffer{}))
	b := New(WithOutput(&bytes.Buffer{}))
	if _, err := runSource(t, a, "let shared = 1.0;"); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if _, err := b.GlobalEnvironment().Get("shared"); err == nil {
		t.Fatalf("binding leaked between interpreters")
	}
}

func TestPersistentGlobals(t *testing.T) {
	globals := runtime.NewEnvironment(nil)
	var out bytes.Buffer
	if _, err := runSource(t, New(WithGlobals(globals), WithOutput(&out)), "let kept = 41.0;"); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if _, err := runSource(t, New(WithGlobals(globals), WithOutput(&out)), "print kept + 1.0;"); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestNativesAndHostCalls(t *testing.T) {
	double := runtime.NewNativeFunction("double", 1, func(_ *runtime.CallContext, args []runtime.Value) (runtime.Value, error) {
		num, ok := args[0].(runtime.NumberValue)
		if !ok {
			return nil, errors.New("double expects a number")
		}
		return runtime.NumberValue{Val: num.Val * 2}, nil
	})
	var out bytes.Buffer
	interp := New(WithOutput(&out), WithNative(double))
	if _, err := runSource(t, interp, "print double(21.0); fun add(a, b) { return a + b; }"); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}

	_, err := runSource(t, interp, `double("x");`)
	if err == nil || err.Error() != "[line 1] Runtime error at ')': double expects a number" {
		t.Fatalf("unexpected native error %v", err)
	}

	add, err := interp.GlobalEnvironment().Get("add")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	got, err := interp.CallFunction(add, []runtime.Value{runtime.NumberValue{Val: 1}, runtime.NumberValue{Val: 2}})
	if err != nil || got.(runtime.NumberValue).Val != 3 {
		t.Fatalf("unexpected host call result %#v (%v)", got, err)
	}
	if _, err := interp.CallFunction(add, nil); err == nil || err.Error() != "Runtime error: Expected 2 arguments but got 0." {
		t.Fatalf("unexpected arity error %v", err)
	}
}

func TestClockUsesConfiguredTime(t *testing.T) {
	fixed := time.Unix(1700000000, 500000000)
	var out bytes.Buffer
	interp := New(WithOutput(&out), WithClock(func() time.Time { return fixed }))
	if _, err := runSource(t, interp, "print clock();"); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.String() != "1700000000.5\n" {
		t.Fatalf("unexpected clock output %q", out.String())
	}
	expectRuntimeError(t, "clock(1.0);", "[line 1] Runtime error at ')': Expected 0 arguments but got 1.")
}

func TestCallDepthLimit(t *testing.T) {
	interp := New(WithOutput(&bytes.Buffer{}), WithMaxCallDepth(50))
	_, err := runSource(t, interp, "fun r(n) { return r(n + 1.0); } r(0.0);")
	if err == nil || !strings.HasSuffix(err.Error(), "Stack overflow.") {
		t.Fatalf("expected stack overflow, got %v", err)
	}
	if interp.depth != 0 {
		t.Fatalf("call depth not unwound: %d", interp.depth)
	}
}

func TestEvaluateExpressionNodes(t *testing.T) {
	interp := New()
	interp.GlobalEnvironment().Define("x", runtime.NumberValue{Val: 4})
	expr := ast.Bin("*", ast.Group(ast.Bin("+", ast.Num(1), ast.Num(2))), ast.Var("x"))
	got, err := interp.Evaluate(expr)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got.(runtime.NumberValue).Val != 12 {
		t.Fatalf("unexpected result %#v", got)
	}

	got, err = interp.Evaluate(ast.Logic("or", ast.Nil(), ast.Str("fallback")))
	if err != nil || runtime.Stringify(got) != "fallback" {
		t.Fatalf("unexpected result %#v (%v)", got, err)
	}
}

func TestProgramBuiltFromNodes(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	program := []ast.Statement{
		ast.Fn("greet", []string{"name"}, ast.Ret(ast.Bin("+", ast.Str("hi "), ast.Var("name")))),
		ast.Print(ast.CallExpr(ast.Var("greet"), ast.Str("lox"))),
	}
	if _, err := interp.Interpret(program); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.String() != "hi lox\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}
