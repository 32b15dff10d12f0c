package firscript

import (
	"strings"

	ps "github.com/firscript-run/firscript/internal/pyscript"
)

// Parser runs the syntax-tree analysis described in §4.2: it turns source
// text into a classified, validated Script or a typed parse/validation
// error pinned to the offending node. It is pure with respect to the source
// text — it never reads files and never consults a registry or importer.
type Parser struct{}

// NewParser returns a Parser. It carries no state; every Parse call is
// independent.
func NewParser() *Parser { return &Parser{} }

// Parse is the package-level convenience entry point over a zero-value
// Parser.
func Parse(source, scriptID string, kind ...ScriptKind) (*Script, error) {
	return NewParser().Parse(source, scriptID, kind...)
}

// Parse lexes, parses, classifies, and validates source, returning a Script
// on success. kind is an optional hint that never changes the result: an
// unambiguous classification stands as it is, and a script that matches no
// kind is rejected whatever hint is passed.
func (p *Parser) Parse(source, scriptID string, kind ...ScriptKind) (*Script, error) {
	prog, err := ps.Parse(scriptID, source)
	if err != nil {
		if se, ok := err.(*ps.SyntaxError); ok {
			return nil, &ParseError{locErr{scriptID, se.Line, se.Column}, se.Msg}
		}
		return nil, &ParseError{locErr{scriptID, 1, 1}, err.Error()}
	}

	a := &analysis{prog: prog, scriptID: scriptID}
	a.collectTopLevel()
	a.findStrategyUsage()

	k, err := a.classify(kind...)
	if err != nil {
		return nil, err
	}

	if err := a.validate(k); err != nil {
		return nil, err
	}

	exports := map[string]bool{}
	if len(a.exportAssigns) > 0 {
		exports["export"] = true
	}

	return &Script{
		Source: source,
		Metadata: ScriptMetadata{
			ID:      scriptID,
			Name:    scriptID,
			Kind:    k,
			Exports: exports,
			Imports: a.imports,
		},
		program: prog,
	}, nil
}

// analysis holds the intermediate facts gathered about one script while
// classifying and validating it.
type analysis struct {
	prog     *ps.Program
	scriptID string

	hasSetup    bool
	hasProcess  bool
	setupDef    *ps.FuncDef
	processDef  *ps.FuncDef

	topNames      map[string]bool
	exportAssigns []*ps.Assign
	imports       map[string]string

	usesStrategy     bool
	strategyPos      ps.Position
}

func (a *analysis) collectTopLevel() {
	a.topNames = map[string]bool{}
	a.imports = map[string]string{}
	for _, stmt := range a.prog.Statements {
		switch s := stmt.(type) {
		case *ps.FuncDef:
			a.topNames[s.Name] = true
			switch s.Name {
			case "setup":
				a.hasSetup = true
				a.setupDef = s
			case "process":
				a.hasProcess = true
				a.processDef = s
			}
		case *ps.Assign:
			if id, ok := s.Target.(*ps.Ident); ok {
				a.topNames[id.Name] = true
				if id.Name == "export" {
					a.exportAssigns = append(a.exportAssigns, s)
				}
				if alias, name, ok := importScriptBinding(s); ok {
					a.imports[alias] = name
				}
			}
		}
	}
}

// importScriptBinding recognizes `alias = import_script("name")` and
// returns (alias, name, true); anything else returns ok=false.
func importScriptBinding(s *ps.Assign) (alias, name string, ok bool) {
	id, ok := s.Target.(*ps.Ident)
	if !ok {
		return "", "", false
	}
	call, ok := s.Value.(*ps.Call)
	if !ok {
		return "", "", false
	}
	fnIdent, ok := call.Func.(*ps.Ident)
	if !ok || fnIdent.Name != "import_script" {
		return "", "", false
	}
	if len(call.Args) != 1 {
		return "", "", false
	}
	lit, ok := call.Args[0].(*ps.StringLit)
	if !ok {
		return "", "", false
	}
	return id.Name, lit.Value, true
}

func isImportScriptCall(value ps.Expr) bool {
	call, ok := value.(*ps.Call)
	if !ok {
		return false
	}
	fnIdent, ok := call.Func.(*ps.Ident)
	return ok && fnIdent.Name == "import_script"
}

func (a *analysis) findStrategyUsage() {
	for _, stmt := range a.prog.Statements {
		walkStmt(stmt, func(n ps.Node) {
			if a.usesStrategy {
				return
			}
			attr, ok := n.(*ps.Attribute)
			if !ok {
				return
			}
			if root, ok := ps.AttributeRoot(attr); ok && root == "strategy" {
				a.usesStrategy = true
				a.strategyPos = attr.Pos()
			}
		})
	}
}

func (a *analysis) classify(hint ...ScriptKind) (ScriptKind, error) {
	switch {
	case a.hasSetup && a.hasProcess && a.usesStrategy:
		return KindStrategy, nil
	case a.hasSetup && a.hasProcess && !a.usesStrategy:
		return KindIndicator, nil
	case !a.hasSetup && !a.hasProcess && len(a.exportAssigns) > 0:
		return KindLibrary, nil
	}

	if len(hint) > 0 {
		// An explicit hint could only resolve ambiguity where the script's
		// shape doesn't conflict with it. Both shapes left here conflict
		// with every kind: the XOR case below lacks setup or process, and
		// the no-kind case lacks setup, process, and export. So the hint
		// is read but never used. Kept for API symmetry with the source
		// design's optional `kind` parameter.
		_ = hint[0]
	}

	if a.hasSetup != a.hasProcess {
		have := "process"
		if a.hasSetup {
			have = "setup"
		}
		return KindUnknown, &ConflictingKindError{locErr{a.scriptID, 1, 1}, "defines " + have + " but not both setup and process"}
	}

	return KindUnknown, &MissingKindError{locErr{a.scriptID, 1, 1}}
}

func (a *analysis) validate(kind ScriptKind) error {
	if err := a.validateReservedNames(); err != nil {
		return err
	}

	switch kind {
	case KindStrategy, KindIndicator:
		if err := a.validateRequiredFunctions(); err != nil {
			return err
		}
		if kind == KindIndicator && a.usesStrategy {
			return &StrategyFunctionInIndicatorError{locErr{a.scriptID, a.strategyPos.Line, a.strategyPos.Column}}
		}
		if err := a.validateTopLevelAssignments(); err != nil {
			return err
		}
		if err := a.validateInputUsage(kind); err != nil {
			return err
		}
	case KindLibrary:
		if a.usesStrategy {
			return &StrategyFunctionInIndicatorError{locErr{a.scriptID, a.strategyPos.Line, a.strategyPos.Column}}
		}
		if len(a.exportAssigns) == 0 {
			return &NoExportsError{locErr{a.scriptID, 1, 1}}
		}
		if len(a.exportAssigns) > 1 {
			last := a.exportAssigns[len(a.exportAssigns)-1]
			return &MultipleExportsError{locErr{a.scriptID, last.Pos().Line, last.Pos().Column}, len(a.exportAssigns)}
		}
		if err := a.validateInputUsage(kind); err != nil {
			return err
		}
	}
	return nil
}

func (a *analysis) validateRequiredFunctions() error {
	var missing []string
	if !a.hasSetup {
		missing = append(missing, "setup")
	}
	if !a.hasProcess {
		missing = append(missing, "process")
	}
	if len(missing) > 0 {
		return &MissingRequiredFunctionsError{locErr{a.scriptID, 1, 1}, missing}
	}
	return nil
}

func (a *analysis) validateTopLevelAssignments() error {
	for _, stmt := range a.prog.Statements {
		assign, ok := stmt.(*ps.Assign)
		if !ok {
			continue
		}
		id, ok := assign.Target.(*ps.Ident)
		if !ok {
			pos := assign.Pos()
			return &StrategyGlobalVariableError{locErr{a.scriptID, pos.Line, pos.Column}, "<non-identifier target>"}
		}
		if id.Name == "export" || isImportScriptCall(assign.Value) {
			continue
		}
		pos := assign.Pos()
		return &StrategyGlobalVariableError{locErr{a.scriptID, pos.Line, pos.Column}, id.Name}
	}
	return nil
}

func (a *analysis) validateInputUsage(kind ScriptKind) error {
	allowed := map[*ps.Call]bool{}
	if kind != KindLibrary && a.setupDef != nil {
		for _, s := range a.setupDef.Body {
			walkStmt(s, func(n ps.Node) {
				if call, ok := n.(*ps.Call); ok && isInputCall(call) {
					allowed[call] = true
				}
			})
		}
	}

	var violation *ps.Call
	for _, stmt := range a.prog.Statements {
		if stmt == ps.Stmt(a.setupDef) {
			continue
		}
		walkStmt(stmt, func(n ps.Node) {
			if violation != nil {
				return
			}
			call, ok := n.(*ps.Call)
			if !ok || !isInputCall(call) {
				return
			}
			if allowed[call] {
				return
			}
			violation = call
		})
		if violation != nil {
			break
		}
	}
	if violation != nil {
		pos := violation.Pos()
		return &InvalidInputUsageError{locErr{a.scriptID, pos.Line, pos.Column}, renderCall(violation)}
	}
	return nil
}

func isInputCall(call *ps.Call) bool {
	attr, ok := call.Func.(*ps.Attribute)
	if !ok {
		return false
	}
	root, ok := ps.AttributeRoot(attr)
	return ok && root == "input"
}

func renderCall(call *ps.Call) string {
	attr, ok := call.Func.(*ps.Attribute)
	if !ok {
		return "input.*(...)"
	}
	return "input." + attr.Name + "(...)"
}

func (a *analysis) validateReservedNames() error {
	for _, stmt := range a.prog.Statements {
		assign, ok := stmt.(*ps.Assign)
		if !ok {
			continue
		}
		if id, ok := assign.Target.(*ps.Ident); ok && isReservedName(id.Name) {
			pos := assign.Pos()
			return &ReservedVariableNameError{locErr{a.scriptID, pos.Line, pos.Column}, id.Name}
		}
		if id, ok := assign.Target.(*ps.Ident); ok && id.Name == "export" {
			if rhs, ok := assign.Value.(*ps.Ident); ok && isReservedName(rhs.Name) {
				pos := rhs.Pos()
				return &ReservedVariableNameError{locErr{a.scriptID, pos.Line, pos.Column}, rhs.Name}
			}
			if dict, ok := assign.Value.(*ps.DictLit); ok {
				for _, k := range dict.Keys {
					if lit, ok := k.(*ps.StringLit); ok && isReservedName(lit.Value) {
						pos := lit.Pos()
						return &ReservedVariableNameError{locErr{a.scriptID, pos.Line, pos.Column}, lit.Value}
					}
				}
			}
		}
	}
	return nil
}

// isReservedName matches the `__like_this__` dunder shape.
func isReservedName(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// --- AST walking helpers ---

func walkStmt(s ps.Stmt, visit func(ps.Node)) {
	if s == nil {
		return
	}
	visit(s)
	switch st := s.(type) {
	case *ps.FuncDef:
		for _, p := range st.Params {
			walkExpr(p.Default, visit)
		}
		for _, sub := range st.Body {
			walkStmt(sub, visit)
		}
	case *ps.Assign:
		walkExpr(st.Target, visit)
		walkExpr(st.Value, visit)
	case *ps.GlobalStmt:
	case *ps.ReturnStmt:
		walkExpr(st.Value, visit)
	case *ps.IfStmt:
		walkExpr(st.Cond, visit)
		for _, sub := range st.Then {
			walkStmt(sub, visit)
		}
		for _, sub := range st.Else {
			walkStmt(sub, visit)
		}
	case *ps.ForStmt:
		walkExpr(st.Iterable, visit)
		for _, sub := range st.Body {
			walkStmt(sub, visit)
		}
	case *ps.ExprStmt:
		walkExpr(st.X, visit)
	case *ps.PassStmt:
	}
}

func walkExpr(e ps.Expr, visit func(ps.Node)) {
	if e == nil {
		return
	}
	visit(e)
	switch ex := e.(type) {
	case *ps.ListLit:
		for _, el := range ex.Elems {
			walkExpr(el, visit)
		}
	case *ps.DictLit:
		for i := range ex.Keys {
			walkExpr(ex.Keys[i], visit)
			walkExpr(ex.Values[i], visit)
		}
	case *ps.Lambda:
		for _, p := range ex.Params {
			walkExpr(p.Default, visit)
		}
		walkExpr(ex.Body, visit)
	case *ps.Attribute:
		walkExpr(ex.Object, visit)
	case *ps.Call:
		walkExpr(ex.Func, visit)
		for _, arg := range ex.Args {
			walkExpr(arg, visit)
		}
	case *ps.Index:
		walkExpr(ex.Object, visit)
		walkExpr(ex.Key, visit)
	case *ps.Unary:
		walkExpr(ex.X, visit)
	case *ps.Binary:
		walkExpr(ex.Left, visit)
		walkExpr(ex.Right, visit)
	case *ps.BoolOp:
		walkExpr(ex.Left, visit)
		walkExpr(ex.Right, visit)
	}
}
