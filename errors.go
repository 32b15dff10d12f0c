package firscript

import "fmt"

// ScriptEngineError is the root every typed error this package raises
// implements. Callers that only care "was this a known engine failure, not
// a Go-level bug" can type-assert to this interface instead of enumerating
// every concrete type.
type ScriptEngineError interface {
	error
	scriptEngineError()
}

// locErr is embedded by every parse-time error; it carries the file/line/col
// triple the validator pins to the offending AST node.
type locErr struct {
	SourceID string
	Line     int
	Col      int
}

func (locErr) scriptEngineError() {}

func (e locErr) where() string {
	return fmt.Sprintf("%s:%d:%d", e.SourceID, e.Line, e.Col)
}

// ParseError reports a surface-syntax failure (the source didn't tokenize or
// parse at all).
type ParseError struct {
	locErr
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.where(), e.Msg)
}

// MissingKindError is raised when a script's syntax tree satisfies none of
// the strategy/indicator/library classification predicates.
type MissingKindError struct{ locErr }

func (e *MissingKindError) Error() string {
	return fmt.Sprintf("%s: script matches no known kind (need setup+process, or a single top-level export)", e.where())
}

// ConflictingKindError is raised when a script partially satisfies more than
// one classification predicate (e.g. defines process but not setup).
type ConflictingKindError struct {
	locErr
	Detail string
}

func (e *ConflictingKindError) Error() string {
	return fmt.Sprintf("%s: script matches conflicting kinds: %s", e.where(), e.Detail)
}

// MissingRequiredFunctionsError is raised for a strategy/indicator missing
// setup or process at top level.
type MissingRequiredFunctionsError struct {
	locErr
	Missing []string
}

func (e *MissingRequiredFunctionsError) Error() string {
	return fmt.Sprintf("%s: missing required top-level function(s): %v", e.where(), e.Missing)
}

// NoExportsError is raised for a library with no top-level `export` binding.
type NoExportsError struct{ locErr }

func (e *NoExportsError) Error() string {
	return fmt.Sprintf("%s: library must assign \"export\" exactly once", e.where())
}

// MultipleExportsError is raised for a library with more than one top-level
// `export` assignment.
type MultipleExportsError struct {
	locErr
	Count int
}

func (e *MultipleExportsError) Error() string {
	return fmt.Sprintf("%s: library assigns \"export\" %d times, expected exactly once", e.where(), e.Count)
}

// InvalidInputUsageError is raised when `input.*` is called outside a
// strategy/indicator's setup() body (or anywhere in a library).
type InvalidInputUsageError struct {
	locErr
	Call string
}

func (e *InvalidInputUsageError) Error() string {
	return fmt.Sprintf("%s: %s is only allowed inside setup()", e.where(), e.Call)
}

// StrategyGlobalVariableError is raised for a top-level assignment in a
// strategy/indicator script that isn't `export = ...` or an import_script
// binding.
type StrategyGlobalVariableError struct {
	locErr
	Name string
}

func (e *StrategyGlobalVariableError) Error() string {
	return fmt.Sprintf("%s: top-level assignment to %q is not allowed outside a library; use \"global %s\" inside a function instead", e.where(), e.Name, e.Name)
}

// StrategyFunctionInIndicatorError is raised when a script that is not a
// strategy (an indicator or a library) references `strategy.*`.
type StrategyFunctionInIndicatorError struct{ locErr }

func (e *StrategyFunctionInIndicatorError) Error() string {
	return fmt.Sprintf("%s: strategy.* is not usable outside a strategy script", e.where())
}

// ReservedVariableNameError is raised when a dunder-shaped name
// (`__like_this__`) appears as an export target or any top-level binding.
type ReservedVariableNameError struct {
	locErr
	Name string
}

func (e *ReservedVariableNameError) Error() string {
	return fmt.Sprintf("%s: %q is a reserved name and cannot be bound", e.where(), e.Name)
}

// runtimeErr is embedded by every runtime (post-compile) error.
type runtimeErr struct {
	SourceID     string
	Name         string
	LineNo       int
	LineStr      string
	ColNo        int
	InnerMessage string
}

func (runtimeErr) scriptEngineError() {}

func (e runtimeErr) Error() string {
	if e.LineStr != "" {
		return fmt.Sprintf("%s:%d: %s (%s)", e.Name, e.LineNo, e.InnerMessage, e.LineStr)
	}
	return fmt.Sprintf("%s:%d: %s", e.Name, e.LineNo, e.InnerMessage)
}

// CompilationError wraps a syntax failure discovered when ExecutionContext
// compiles a script (as opposed to ParseError, raised by the validator ahead
// of any execution attempt).
type CompilationError struct{ runtimeErr }

// ScriptRuntimeError wraps any failure raised while running a script's
// top-level code, setup(), or process().
type ScriptRuntimeError struct{ runtimeErr }

// ScriptNotFoundError is raised by Importer.ImportScript for an unknown name.
type ScriptNotFoundError struct {
	runtimeErr
	Requested string
}

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("script %q not found", e.Requested)
}

// EntrypointNotFoundError is raised by Importer.BuildMainScript when no
// script has been designated main.
type EntrypointNotFoundError struct{ runtimeErr }

func (e *EntrypointNotFoundError) Error() string {
	return "no main script has been registered"
}

// CircularImportError is raised when import_script resolution finds its own
// name already on the import stack.
type CircularImportError struct {
	runtimeErr
	From string
	To   string
}

func (e *CircularImportError) Error() string {
	return fmt.Sprintf("circular import: %q imports %q which is already being resolved", e.From, e.To)
}

// NotAllowedError is raised when a script invokes a deny-listed builtin.
type NotAllowedError struct {
	runtimeErr
	Builtin string
}

func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("%s:%d: %q is not allowed in a script", e.Name, e.LineNo, e.Builtin)
}
