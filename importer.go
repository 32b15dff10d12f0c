package firscript

import "fmt"

// Importer is the named script pool described in §4.4: it owns every
// registered Script, designates one as the main script, builds its
// ExecutionContext, and resolves `import_script(name)` calls from inside
// running scripts — detecting cycles via an import stack and memoizing
// resolved values.
type Importer struct {
	parser   *Parser
	registry *NamespaceRegistry

	scripts   map[string]*Script
	mainName  string

	importStack []string
	resolved    map[string]any
}

// NewImporter returns an Importer backed by registry.
func NewImporter(registry *NamespaceRegistry) *Importer {
	return &Importer{
		parser:   NewParser(),
		registry: registry,
		scripts:  map[string]*Script{},
		resolved: map[string]any{},
	}
}

// AddScript registers a script under name, either parsing source or
// accepting an already-parsed Script. isMain designates it as the main
// script; if it is the only script added and none has been marked main,
// it becomes main implicitly.
func (im *Importer) AddScript(name, source string, isMain bool, script *Script) (*Script, error) {
	if script == nil {
		if source == "" {
			return nil, fmt.Errorf("firscript: AddScript requires either source or a prebuilt Script")
		}
		parsed, err := im.parser.Parse(source, name)
		if err != nil {
			return nil, err
		}
		script = parsed
	}

	im.scripts[script.ID()] = script

	if isMain {
		im.mainName = script.ID()
	} else if im.mainName == "" && len(im.scripts) == 1 {
		im.mainName = script.ID()
	}

	return script, nil
}

// BuildMainScript constructs the main script's ExecutionContext (a fresh
// namespace bundle from the registry plus an import_script capability bound
// to this Importer) and compiles it.
func (im *Importer) BuildMainScript() (*ExecutionContext, error) {
	if im.mainName == "" {
		return nil, &EntrypointNotFoundError{}
	}
	script := im.scripts[im.mainName]
	ctx := NewExecutionContext(script, im.registry.Build(), script.ID())
	ctx.BindImportScript(im.ImportScript)
	if err := ctx.Compile(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// ImportScript is the capability exposed to running scripts as
// `import_script`. A library resolves to its export value; an indicator or
// strategy resolves to its own ExecutionContext (with setup() already run),
// so the importing script can drive it further if it chooses.
func (im *Importer) ImportScript(name string) (any, error) {
	if v, ok := im.resolved[name]; ok {
		return v, nil
	}

	for _, inflight := range im.importStack {
		if inflight == name {
			current := ""
			if len(im.importStack) > 0 {
				current = im.importStack[len(im.importStack)-1]
			}
			return nil, &CircularImportError{runtimeErr{Name: current}, current, name}
		}
	}

	script, ok := im.scripts[name]
	if !ok {
		return nil, &ScriptNotFoundError{runtimeErr: runtimeErr{Name: name}, Requested: name}
	}

	im.importStack = append(im.importStack, name)
	defer func() {
		im.importStack = im.importStack[:len(im.importStack)-1]
	}()

	ctx := NewExecutionContext(script, im.registry.Build(), script.ID())
	ctx.BindImportScript(im.ImportScript)
	if err := ctx.Compile(); err != nil {
		return nil, err
	}

	var value any
	switch script.Kind() {
	case KindLibrary:
		value = ctx.GetExport()
	default:
		if err := ctx.RunSetup(); err != nil {
			return nil, err
		}
		value = ctx
	}

	im.resolved[name] = value
	return value, nil
}
