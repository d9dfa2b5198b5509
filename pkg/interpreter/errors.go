package interpreter

import (
	"errors"
	"fmt"

	"lox/interpreter-go/pkg/token"
)

// RuntimeError aborts execution. Token locates the failing operation.
type RuntimeError struct {
	Token   token.Token
	Message string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Token.Line == 0 {
		return fmt.Sprintf("Runtime error: %s", e.Message)
	}
	return fmt.Sprintf("[line %d] Runtime error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func newRuntimeError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// asRuntimeError anchors err at tok unless it already carries a location.
func asRuntimeError(tok token.Token, err error) error {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return err
	}
	return &RuntimeError{Token: tok, Message: err.Error(), Err: err}
}
