package pyscript

import "fmt"

// RuntimeError is raised for any failure while evaluating a Program:
// unbound names, wrong argument counts, non-callable calls, type errors in
// operators, and so on. The root package wraps these into ScriptRuntimeError
// together with the script's name and the originating line.
type RuntimeError struct {
	Line int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func rtErrorf(pos Position, format string, args ...any) error {
	return &RuntimeError{Line: pos.Line, Msg: fmt.Sprintf(format, args...)}
}

// returnSignal unwinds the Go call stack to the nearest callFunction frame
// when a `return` statement executes. It is not a real error; Interpreter
// treats it as Go-level control flow, same idea as using panic/recover for
// non-local exit in a tree-walking evaluator.
type returnSignal struct{ value any }

func (returnSignal) Error() string { return "return outside function" }

// Interpreter evaluates a parsed Program against an Environment. A fresh
// Interpreter is cheap; what's expensive (and therefore persisted across
// setup()/process() calls by the caller) is the Environment itself.
type Interpreter struct {
	// CallDepth guards against runaway recursion in user scripts; exceeding
	// it raises a RuntimeError rather than blowing the Go stack.
	MaxCallDepth int
	depth        int
}

// NewInterpreter returns an Interpreter with the default recursion limit.
func NewInterpreter() *Interpreter {
	return &Interpreter{MaxCallDepth: 200}
}

// ExecModule runs every top-level statement of prog against env (the single
// global/local environment for the script), leaving function objects,
// assigned globals, and any side effects of module-level execution bound in
// env. It does not run setup()/process(); callers look those up by name
// afterward and invoke them with Call.
func (ip *Interpreter) ExecModule(prog *Program, env *Environment) error {
	return ip.execStmts(prog.Statements, env)
}

func (ip *Interpreter) execStmts(stmts []Stmt, env *Environment) error {
	for _, s := range stmts {
		if err := ip.execStmt(s, env); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interpreter) execStmt(stmt Stmt, env *Environment) error {
	switch s := stmt.(type) {
	case *FuncDef:
		fn := &Function{Name: s.Name, Params: s.Params, Body: s.Body, Closure: env}
		env.Set(s.Name, fn)
		return nil
	case *Assign:
		val, err := ip.eval(s.Value, env)
		if err != nil {
			return err
		}
		return ip.assign(s.Target, val, env)
	case *GlobalStmt:
		for _, name := range s.Names {
			env.DeclareGlobal(name)
		}
		return nil
	case *ReturnStmt:
		var val any
		if s.Value != nil {
			v, err := ip.eval(s.Value, env)
			if err != nil {
				return err
			}
			val = v
		}
		return returnSignal{val}
	case *IfStmt:
		cond, err := ip.eval(s.Cond, env)
		if err != nil {
			return err
		}
		if Truthy(cond) {
			return ip.execStmts(s.Then, env)
		}
		return ip.execStmts(s.Else, env)
	case *ForStmt:
		return ip.execFor(s, env)
	case *ExprStmt:
		_, err := ip.eval(s.X, env)
		return err
	case *PassStmt:
		return nil
	default:
		return rtErrorf(stmt.Pos(), "unsupported statement %T", stmt)
	}
}

func (ip *Interpreter) execFor(s *ForStmt, env *Environment) error {
	iterable, err := ip.eval(s.Iterable, env)
	if err != nil {
		return err
	}
	items, err := toIterable(s.Pos(), iterable)
	if err != nil {
		return err
	}
	for _, item := range items {
		env.Set(s.Var, item)
		if err := ip.execStmts(s.Body, env); err != nil {
			return err
		}
	}
	return nil
}

func toIterable(pos Position, v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case *Dict:
		out := make([]any, 0, x.Len())
		for _, k := range x.Keys() {
			out = append(out, k)
		}
		return out, nil
	case string:
		out := make([]any, 0, len(x))
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	default:
		return nil, rtErrorf(pos, "%s object is not iterable", TypeName(v))
	}
}

func (ip *Interpreter) assign(target Expr, val any, env *Environment) error {
	switch t := target.(type) {
	case *Ident:
		env.Set(t.Name, val)
		return nil
	case *Attribute:
		obj, err := ip.eval(t.Object, env)
		if err != nil {
			return err
		}
		d, ok := obj.(*Dict)
		if !ok {
			return rtErrorf(t.Pos(), "cannot assign attribute %q on %s", t.Name, TypeName(obj))
		}
		d.Set(t.Name, val)
		return nil
	case *Index:
		obj, err := ip.eval(t.Object, env)
		if err != nil {
			return err
		}
		key, err := ip.eval(t.Key, env)
		if err != nil {
			return err
		}
		switch container := obj.(type) {
		case *Dict:
			ks, ok := key.(string)
			if !ok {
				return rtErrorf(t.Pos(), "dict keys must be strings")
			}
			container.Set(ks, val)
			return nil
		default:
			return rtErrorf(t.Pos(), "%s object does not support item assignment", TypeName(obj))
		}
	default:
		return rtErrorf(target.Pos(), "invalid assignment target")
	}
}

func (ip *Interpreter) eval(expr Expr, env *Environment) (any, error) {
	switch e := expr.(type) {
	case *IntLit:
		return e.Value, nil
	case *FloatLit:
		return e.Value, nil
	case *StringLit:
		return e.Value, nil
	case *BoolLit:
		return e.Value, nil
	case *NoneLit:
		return nil, nil
	case *Ident:
		if v, ok := env.Get(e.Name); ok {
			return v, nil
		}
		return nil, rtErrorf(e.Pos(), "name %q is not defined", e.Name)
	case *ListLit:
		items := make([]any, len(e.Elems))
		for i, el := range e.Elems {
			v, err := ip.eval(el, env)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case *DictLit:
		d := NewDict()
		for i, kexpr := range e.Keys {
			kv, err := ip.eval(kexpr, env)
			if err != nil {
				return nil, err
			}
			ks, ok := kv.(string)
			if !ok {
				return nil, rtErrorf(kexpr.Pos(), "dict keys must be strings")
			}
			vv, err := ip.eval(e.Values[i], env)
			if err != nil {
				return nil, err
			}
			d.Set(ks, vv)
		}
		return d, nil
	case *Lambda:
		return &Function{Name: "<lambda>", Params: e.Params, BodyExp: e.Body, Closure: env}, nil
	case *Attribute:
		obj, err := ip.eval(e.Object, env)
		if err != nil {
			return nil, err
		}
		return ip.getAttr(e.Pos(), obj, e.Name)
	case *Index:
		return ip.evalIndex(e, env)
	case *Unary:
		return ip.evalUnary(e, env)
	case *Binary:
		return ip.evalBinary(e, env)
	case *BoolOp:
		return ip.evalBoolOp(e, env)
	case *Call:
		return ip.evalCall(e, env)
	default:
		return nil, rtErrorf(expr.Pos(), "unsupported expression %T", expr)
	}
}

// getAttr resolves obj.name for the value kinds the interpreter itself
// understands (Dict). Namespace objects (ta, data, strategy, ...) are bound
// into the environment by the host as AttributeHost implementations so the
// same call site handles both.
func (ip *Interpreter) getAttr(pos Position, obj any, name string) (any, error) {
	switch o := obj.(type) {
	case *Dict:
		if v, ok := o.Get(name); ok {
			return v, nil
		}
		return nil, rtErrorf(pos, "dict has no attribute %q", name)
	case AttributeHost:
		v, err := o.GetAttr(name)
		if err != nil {
			return nil, rtErrorf(pos, "%s", err)
		}
		return v, nil
	default:
		return nil, rtErrorf(pos, "%s object has no attribute %q", TypeName(obj), name)
	}
}

// AttributeHost lets host-provided namespace objects (built outside this
// package, e.g. in internal/runtime) participate in attribute access and
// method calls without the interpreter importing them directly.
type AttributeHost interface {
	GetAttr(name string) (any, error)
}

func (ip *Interpreter) evalIndex(e *Index, env *Environment) (any, error) {
	obj, err := ip.eval(e.Object, env)
	if err != nil {
		return nil, err
	}
	key, err := ip.eval(e.Key, env)
	if err != nil {
		return nil, err
	}
	switch c := obj.(type) {
	case []any:
		idx, ok := key.(int64)
		if !ok {
			return nil, rtErrorf(e.Pos(), "list indices must be integers")
		}
		i := int(idx)
		if i < 0 {
			i += len(c)
		}
		if i < 0 || i >= len(c) {
			return nil, rtErrorf(e.Pos(), "list index out of range")
		}
		return c[i], nil
	case *Dict:
		ks, ok := key.(string)
		if !ok {
			return nil, rtErrorf(e.Pos(), "dict keys must be strings")
		}
		v, ok := c.Get(ks)
		if !ok {
			return nil, rtErrorf(e.Pos(), "key %q not found", ks)
		}
		return v, nil
	case string:
		idx, ok := key.(int64)
		if !ok {
			return nil, rtErrorf(e.Pos(), "string indices must be integers")
		}
		runes := []rune(c)
		i := int(idx)
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return nil, rtErrorf(e.Pos(), "string index out of range")
		}
		return string(runes[i]), nil
	default:
		return nil, rtErrorf(e.Pos(), "%s object is not subscriptable", TypeName(obj))
	}
}

func (ip *Interpreter) evalUnary(e *Unary, env *Environment) (any, error) {
	x, err := ip.eval(e.X, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "not":
		return !Truthy(x), nil
	case "-":
		switch v := x.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		default:
			return nil, rtErrorf(e.Pos(), "bad operand type for unary -: %q", TypeName(x))
		}
	case "+":
		switch x.(type) {
		case int64, float64:
			return x, nil
		default:
			return nil, rtErrorf(e.Pos(), "bad operand type for unary +: %q", TypeName(x))
		}
	default:
		return nil, rtErrorf(e.Pos(), "unsupported unary operator %q", e.Op)
	}
}

func (ip *Interpreter) evalBoolOp(e *BoolOp, env *Environment) (any, error) {
	left, err := ip.eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	if e.Op == "and" {
		if !Truthy(left) {
			return left, nil
		}
		return ip.eval(e.Right, env)
	}
	// "or"
	if Truthy(left) {
		return left, nil
	}
	return ip.eval(e.Right, env)
}

func (ip *Interpreter) evalBinary(e *Binary, env *Environment) (any, error) {
	left, err := ip.eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := ip.eval(e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	case "+":
		return addValues(e.Pos(), left, right)
	case "-", "*", "/", "%":
		return arithmetic(e.Pos(), e.Op, left, right)
	case "<", ">", "<=", ">=":
		return compareValues(e.Pos(), e.Op, left, right)
	default:
		return nil, rtErrorf(e.Pos(), "unsupported operator %q", e.Op)
	}
}

func valuesEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func addValues(pos Position, left, right any) (any, error) {
	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		if !ok {
			return nil, rtErrorf(pos, "cannot concatenate str with %s", TypeName(right))
		}
		return ls + rs, nil
	}
	if ll, ok := left.([]any); ok {
		rl, ok := right.([]any)
		if !ok {
			return nil, rtErrorf(pos, "cannot concatenate list with %s", TypeName(right))
		}
		out := make([]any, 0, len(ll)+len(rl))
		out = append(out, ll...)
		out = append(out, rl...)
		return out, nil
	}
	return arithmetic(pos, "+", left, right)
}

func arithmetic(pos Position, op string, left, right any) (any, error) {
	li, liok := left.(int64)
	ri, riok := right.(int64)
	if liok && riok {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, rtErrorf(pos, "division by zero")
			}
			return float64(li) / float64(ri), nil
		case "%":
			if ri == 0 {
				return nil, rtErrorf(pos, "modulo by zero")
			}
			return li % ri, nil
		}
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, rtErrorf(pos, "unsupported operand type(s) for %s: %q and %q", op, TypeName(left), TypeName(right))
	}
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, rtErrorf(pos, "division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, rtErrorf(pos, "modulo by zero")
		}
		return float64(int64(lf) % int64(rf)), nil
	default:
		return nil, rtErrorf(pos, "unsupported operator %q", op)
	}
}

func compareValues(pos Position, op string, left, right any) (any, error) {
	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		if !ok {
			return nil, rtErrorf(pos, "cannot compare str and %s", TypeName(right))
		}
		switch op {
		case "<":
			return ls < rs, nil
		case ">":
			return ls > rs, nil
		case "<=":
			return ls <= rs, nil
		case ">=":
			return ls >= rs, nil
		}
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, rtErrorf(pos, "unsupported comparison between %s and %s", TypeName(left), TypeName(right))
	}
	switch op {
	case "<":
		return lf < rf, nil
	case ">":
		return lf > rf, nil
	case "<=":
		return lf <= rf, nil
	case ">=":
		return lf >= rf, nil
	default:
		return nil, rtErrorf(pos, "unsupported operator %q", op)
	}
}

func (ip *Interpreter) evalCall(e *Call, env *Environment) (any, error) {
	fn, err := ip.eval(e.Func, env)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		v, err := ip.eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return ip.Call(e.Pos(), fn, args)
}

// Call invokes a callable value (Function or Builtin) with already-evaluated
// arguments. Exported so the root package and namespace bridges can invoke
// script-defined callbacks (e.g. a strategy's process passed to a library).
func (ip *Interpreter) Call(pos Position, fn any, args []any) (any, error) {
	switch f := fn.(type) {
	case *Builtin:
		return f.Fn(args)
	case *Function:
		return ip.callFunction(pos, f, args)
	default:
		return nil, rtErrorf(pos, "%s object is not callable", TypeName(fn))
	}
}

func (ip *Interpreter) callFunction(pos Position, fn *Function, args []any) (any, error) {
	ip.depth++
	defer func() { ip.depth-- }()
	if ip.depth > ip.MaxCallDepth {
		return nil, rtErrorf(pos, "maximum recursion depth exceeded in %q", fn.Name)
	}

	local := NewChildEnvironment(fn.Closure)
	if err := bindParams(pos, fn, args, local, ip); err != nil {
		return nil, err
	}

	if fn.BodyExp != nil {
		return ip.eval(fn.BodyExp, local)
	}

	err := ip.execStmts(fn.Body, local)
	if ret, ok := err.(returnSignal); ok {
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func bindParams(pos Position, fn *Function, args []any, local *Environment, ip *Interpreter) error {
	if len(args) > len(fn.Params) {
		return rtErrorf(pos, "%s() takes %d argument(s) but %d were given", fn.Name, len(fn.Params), len(args))
	}
	for i, p := range fn.Params {
		if i < len(args) {
			local.Set(p.Name, args[i])
			continue
		}
		if p.Default == nil {
			return rtErrorf(pos, "%s() missing required argument: %q", fn.Name, p.Name)
		}
		v, err := ip.eval(p.Default, fn.Closure)
		if err != nil {
			return err
		}
		local.Set(p.Name, v)
	}
	return nil
}
