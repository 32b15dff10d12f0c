package pyscript

// Environment is a single variable scope. Module-level execution uses one
// Environment for both globals and locals (per the spec's "a single
// associative container used as both the global and local environment"
// requirement): top-level function defs close over that same Environment, so
// later calls to those functions can still see and mutate module state.
//
// A function body gets its own child Environment for parameters and locals.
// Reads fall through the parent chain like ordinary lexical scoping. Writes
// stay local UNLESS the name was named in a `global` statement executed
// earlier in that same call, in which case the write (and any subsequent
// read of that name in the same scope) goes straight to Globals.
type Environment struct {
	vars    map[string]any
	parent  *Environment
	globals *Environment

	// globalNames holds the set of identifiers this scope declared with
	// `global` — reads and writes of these names bypass the local scope
	// entirely and go to Globals, mirroring the host language's `global`
	// keyword.
	globalNames map[string]bool
}

// NewGlobalEnvironment creates the single global/local environment used for
// module-level execution.
func NewGlobalEnvironment() *Environment {
	e := &Environment{vars: map[string]any{}}
	e.globals = e
	return e
}

// NewChildEnvironment creates a new local scope (for a function call) whose
// lexical parent is parent and whose global environment is the same module
// globals parent ultimately points to.
func NewChildEnvironment(parent *Environment) *Environment {
	return &Environment{
		vars:   map[string]any{},
		parent: parent,
		globals: parent.globals,
	}
}

// DeclareGlobal marks name as resolving to Globals for the remainder of this
// scope's lifetime, per a `global name` statement.
func (e *Environment) DeclareGlobal(name string) {
	if e.globalNames == nil {
		e.globalNames = map[string]bool{}
	}
	e.globalNames[name] = true
}

// Get resolves name by walking the lexical parent chain, honoring any
// `global` declarations in the current scope first.
func (e *Environment) Get(name string) (any, bool) {
	if e.globalNames[name] {
		return e.globals.Get(name)
	}
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set assigns name in the appropriate scope: Globals if name was declared
// `global` in this scope, otherwise the current (innermost) scope — matching
// normal assignment semantics where `x = 1` always binds locally unless
// `global x` was declared first.
func (e *Environment) Set(name string, value any) {
	if e.globalNames[name] {
		e.globals.vars[name] = value
		return
	}
	e.vars[name] = value
}

// SetGlobal writes name directly into the module globals, regardless of the
// current scope's declarations. Used by the host (e.g. to seed input
// overrides or namespace bindings) before running setup()/process().
func (e *Environment) SetGlobal(name string, value any) {
	e.globals.vars[name] = value
}

// Globals returns the root module-level environment.
func (e *Environment) Globals() *Environment { return e.globals }

// Vars exposes the raw local bindings of this scope, used by the engine to
// read back top-level state (e.g. for export lookups) after execution.
func (e *Environment) Vars() map[string]any { return e.vars }
