package firscript

import (
	"errors"
	"strings"

	ps "github.com/firscript-run/firscript/internal/pyscript"
	"github.com/firscript-run/firscript/internal/runtime"
)

// ExecutionContext is a prepared restricted scope for one script: a single
// global/local Environment seeded with the restricted builtins and the
// namespace bundle, plus the compile/run_setup/run_process/get_export
// operations §4.3 describes.
type ExecutionContext struct {
	script      *Script
	displayName string
	namespaces  map[string]any

	env    *ps.Environment
	interp *ps.Interpreter

	sourceLines []string
	compiled    bool
}

// NewExecutionContext constructs an ExecutionContext for script, merging
// the restricted builtin allow-list with namespaces (namespaces win on name
// collision, per §4.3).
func NewExecutionContext(script *Script, namespaces map[string]any, displayName string) *ExecutionContext {
	env := ps.NewGlobalEnvironment()
	interp := ps.NewInterpreter()
	installBuiltins(env, interp)
	for name, ns := range namespaces {
		env.SetGlobal(name, runtime.Wrap(name, ns))
	}
	return &ExecutionContext{
		script:      script,
		displayName: displayName,
		namespaces:  namespaces,
		env:         env,
		interp:      interp,
		sourceLines: strings.Split(script.Source, "\n"),
	}
}

// BindImportScript installs the single non-namespace capability every
// ExecutionContext receives: a callable forwarding to fn, bound under the
// name `import_script`.
func (c *ExecutionContext) BindImportScript(fn func(name string) (any, error)) {
	c.env.SetGlobal("import_script", &ps.Builtin{
		Name: "import_script",
		Fn: func(args []any) (any, error) {
			if len(args) != 1 {
				return nil, errors.New("import_script() takes exactly one argument")
			}
			name, ok := args[0].(string)
			if !ok {
				return nil, errors.New("import_script() argument must be a string")
			}
			return fn(name)
		},
	})
}

// Compile runs the script's top-level statements once against the
// context's globals/locals, materializing function defs and any top-level
// bindings (including a library's export). It is idempotent only in the
// sense that calling it twice re-executes the top level; the driver is
// expected to call it exactly once.
func (c *ExecutionContext) Compile() error {
	prog, err := ps.Parse(c.displayName, c.script.Source)
	if err != nil {
		se, _ := err.(*ps.SyntaxError)
		line, col := 0, 0
		if se != nil {
			line, col = se.Line, se.Column
		}
		return &CompilationError{runtimeErr{
			SourceID: c.displayName, Name: c.displayName,
			LineNo: line, ColNo: col, LineStr: c.lineStr(line),
			InnerMessage: err.Error(),
		}}
	}
	if err := c.interp.ExecModule(prog, c.env); err != nil {
		return c.wrapRuntimeErr(err)
	}
	c.compiled = true
	return nil
}

// RunSetup invokes the top-level `setup` function, if one is defined, with
// no arguments.
func (c *ExecutionContext) RunSetup() error {
	fn, ok := c.env.Get("setup")
	if !ok {
		return nil
	}
	_, err := c.interp.Call(ps.Position{}, fn, nil)
	if err != nil {
		return c.wrapRuntimeErr(err)
	}
	return nil
}

// RunProcess invokes the top-level `process` function, if one is defined,
// with no arguments, and returns its return value.
func (c *ExecutionContext) RunProcess() (any, error) {
	fn, ok := c.env.Get("process")
	if !ok {
		return nil, nil
	}
	v, err := c.interp.Call(ps.Position{}, fn, nil)
	if err != nil {
		return nil, c.wrapRuntimeErr(err)
	}
	return v, nil
}

// GetExport returns the top-level binding named `export`, or nil. A
// *pyscript.Dict value is already dot-accessible (its own attribute
// resolution path), which serves the "wrap into a dot-accessible view"
// requirement without a separate wrapper type — see DESIGN.md for the
// rationale.
func (c *ExecutionContext) GetExport() any {
	v, _ := c.env.Get("export")
	return v
}

// GenerateOutputs delegates to the namespace registry protocol over this
// context's namespace bundle.
func (c *ExecutionContext) GenerateOutputs() map[string]any {
	return GenerateOutputs(c.namespaces)
}

// GenerateMetadatas delegates to the namespace registry protocol over this
// context's namespace bundle.
func (c *ExecutionContext) GenerateMetadatas() map[string]any {
	return GenerateMetadatas(c.namespaces)
}

// Namespace returns one bundled namespace by name, e.g. so a driver can
// reach the `data` namespace's SetCurrentBar/SetAllBar interface.
func (c *ExecutionContext) Namespace(name string) (any, bool) {
	v, ok := c.namespaces[name]
	return v, ok
}

func (c *ExecutionContext) lineStr(line int) string {
	if line < 1 || line > len(c.sourceLines) {
		return ""
	}
	return strings.TrimRight(c.sourceLines[line-1], "\r")
}

// wrapRuntimeErr maps an interpreter-level failure to the typed runtime
// error the driver sees, honoring the propagation policy of §7: typed
// ScriptEngineErrors from a nested import_script are let through unchanged,
// deny-listed builtin calls become NotAllowedError, everything else becomes
// ScriptRuntimeError with the deepest matching source line.
func (c *ExecutionContext) wrapRuntimeErr(err error) error {
	var engineErr ScriptEngineError
	if errors.As(err, &engineErr) {
		return engineErr
	}

	var na *notAllowedError
	if errors.As(err, &na) {
		return &NotAllowedError{runtimeErr{
			SourceID: c.displayName, Name: c.displayName,
			LineNo: na.line, LineStr: c.lineStr(na.line),
			InnerMessage: err.Error(),
		}, na.builtin}
	}

	line := 0
	var rtErr *ps.RuntimeError
	if errors.As(err, &rtErr) {
		line = rtErr.Line
	}
	return &ScriptRuntimeError{runtimeErr{
		SourceID: c.displayName, Name: c.displayName,
		LineNo: line, LineStr: c.lineStr(line),
		InnerMessage: err.Error(),
	}}
}
