// Package firscript is a backtesting-oriented scripting runtime. It takes
// user-authored programs written in an embedded Python-flavored language,
// validates them against a strategy/indicator/library discipline, and
// drives them bar-by-bar across a time series.
//
// # Pipeline
//
// A driver registers one or more scripts with an Importer, which parses
// each into a [Script] via the validating [Parser]. Building the main
// script produces an [ExecutionContext]: a restricted global scope seeded
// with namespace objects (ta, data, chart, strategy, color, input, log) and
// an import_script capability. The driver then alternates mutating the
// data namespace with ExecutionContext.RunProcess calls to walk the series.
//
// # Usage
//
//	registry := firscript.NewNamespaceRegistry()
//	registry.RegisterDefaults(nil, nil)
//
//	importer := firscript.NewImporter(registry)
//	if _, err := importer.AddScript("my-strategy", source, true, nil); err != nil {
//		// handle typed parse/validation error
//	}
//
//	ctx, err := importer.BuildMainScript()
//	if err != nil { ... }
//	if err := ctx.RunSetup(); err != nil { ... }
//
//	data, _ := ctx.Namespace("data")
//	for _, bar := range bars {
//		data.(*namespaces.Data).SetCurrentBar(bar)
//		if _, err := ctx.RunProcess(); err != nil { ... }
//	}
//
// # Errors
//
// Every error the engine raises implements [ScriptEngineError]. Parse-time
// failures (bad syntax, wrong script shape, reserved names) are typed
// separately from runtime failures (a script-level panic, a missing
// import, a deny-listed builtin call); see errors.go for the full
// hierarchy.
//
// # Scripts
//
// The embedded language itself — lexer, parser, and tree-walking evaluator
// — lives in internal/pyscript. Namespace implementations live in
// internal/namespaces; internal/runtime bridges them into the interpreter's
// attribute/call protocol via reflection, the same boundary risor's own
// host-function bridge uses for Go proxies.
package firscript
