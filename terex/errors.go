package terex

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrCompile matches every error record produced by a Compiler.
	ErrCompile = errors.New("compile error")

	// ErrRuntime matches every error record produced by a VM run.
	ErrRuntime = errors.New("runtime error")

	// ErrReleased is returned when a released engine handle is used.
	ErrReleased = errors.New("engine handle released")
)

// Category classifies error records.
type Category int8

// Categories of error records.
const (
	CompileError Category = iota
	RuntimeError
	Warning
)

func (c Category) String() string {
	switch c {
	case CompileError:
		return "compile"
	case RuntimeError:
		return "runtime"
	}
	return "warning"
}

// Identifiers of engine errors and warnings, besides the syntax error ids of
// package terexlang.
const (
	ErrBadForm            = "BadForm"
	ErrReservedName       = "ReservedName"
	ErrCaptureUnsupported = "CaptureNotSupported"

	ErrUndefinedVariable = "UndefinedVariable"
	ErrTypeMismatch      = "TypeMismatch"
	ErrDivideByZero      = "DivideByZero"
	ErrNotCallable       = "NotCallable"
	ErrArityMismatch     = "ArityMismatch"
	ErrStackOverflow     = "StackOverflow"
	ErrUserError         = "UserError"

	WarnShadowsBuiltin = "ShadowsBuiltin"
	WarnUser           = "UserWarning"
)

// Error is the error record of the engine. Compile errors, runtime errors and
// warnings share this type and are told apart by their category.
type Error struct {
	ID       string   // short identifier, e.g. "UndefinedVariable"
	Msg      string   // human readable message
	Line     int      // 1-based source line, 0 if unknown
	Category Category // compile, runtime or warning
}

// Error returns id and message, including the line if available.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.ID, e.Msg, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.ID, e.Msg)
}

// Is reports whether this error matches the target.
// Compile errors match ErrCompile, runtime errors match ErrRuntime.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrCompile:
		return e.Category == CompileError
	case ErrRuntime:
		return e.Category == RuntimeError
	}
	return false
}

func compileError(id string, line int, format string, args ...interface{}) *Error {
	return &Error{ID: id, Msg: fmt.Sprintf(format, args...), Line: line, Category: CompileError}
}

func runtimeError(id string, format string, args ...interface{}) *Error {
	return &Error{ID: id, Msg: fmt.Sprintf(format, args...), Category: RuntimeError}
}

// PrintFn receives text a program prints.
type PrintFn func(text string)

// WarningFn receives warnings raised by compiler or VM.
type WarningFn func(warning *Error)
