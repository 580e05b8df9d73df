package starlarkhost

import (
	"errors"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

// fileOptions enables the dialect features scripts commonly rely on.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Predeclared returns the globals every evaluation sees: the struct builtin
// producing record objects.
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
}

// Eval evaluates a single expression on the Host's thread.
func (h *Host) Eval(expr string) (starlark.Value, error) {
	v, err := starlark.EvalOptions(fileOptions, h.thread, "<expr>", expr, Predeclared())
	if err != nil {
		return nil, evalError(err)
	}
	return v, nil
}

// ExecFile runs a script on the Host's thread and returns its globals.
// src may be nil to read filename from disk.
func (h *Host) ExecFile(filename string, src any) (starlark.StringDict, error) {
	Logger().Debug("executing script",
		zap.String("thread", h.thread.Name),
		zap.String("file", filename))

	globals, err := starlark.ExecFileOptions(fileOptions, h.thread, filename, src, Predeclared())
	if err != nil {
		return nil, evalError(err)
	}
	return globals, nil
}

// BacktraceError reports a Starlark runtime error with its backtrace, which
// names the failing line. The *starlark.EvalError stays reachable through
// errors.As.
type BacktraceError struct {
	Err *starlark.EvalError
}

func (e *BacktraceError) Error() string {
	return e.Err.Backtrace()
}

func (e *BacktraceError) Unwrap() error {
	return e.Err
}

func evalError(err error) error {
	var ee *starlark.EvalError
	if errors.As(err, &ee) {
		return &BacktraceError{Err: ee}
	}
	return err
}
