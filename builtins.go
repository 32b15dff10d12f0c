package firscript

import (
	"fmt"

	ps "github.com/firscript-run/firscript/internal/pyscript"
)

// notAllowedError is returned by a deny-listed builtin's Fn; wrapRuntimeErr
// recognizes it and turns it into a typed NotAllowedError. It deliberately
// carries no line number of its own — the interpreter doesn't stamp
// RuntimeError-shaped context onto builtin call failures, so the context
// falls back to line 0 (documented as a known gap in DESIGN.md) unless a
// future revision plumbs the call site position through Interpreter.Call.
type notAllowedError struct {
	builtin string
	line    int
}

func (e *notAllowedError) Error() string {
	return fmt.Sprintf("%q is not allowed in a script", e.builtin)
}

// iterator is the minimal cursor value returned by iter() and advanced by
// next(). It is a closure-free wrapper over a materialized []any rather than
// a lazy generator: the host language has no yield/generator construct, so
// iter() eagerly flattens its argument the same way a for-loop would and
// next() just walks the resulting slice.
type iterator struct {
	items []any
	pos   int
}

// toItems flattens an iterable script value into a slice, mirroring the
// interpreter's own for-loop coercion (list as-is, dict over its keys,
// string over its runes).
func toItems(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		copy(out, x)
		return out, nil
	case *ps.Dict:
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
	case *iterator:
		out := make([]any, len(x.items)-x.pos)
		copy(out, x.items[x.pos:])
		return out, nil
	default:
		return nil, fmt.Errorf("%s object is not iterable", ps.TypeName(v))
	}
}

// allowedBuiltins is the fixed set of host primitives exposed to every
// script, per §6: numeric/container constructors, len, range, print, and a
// handful of the surface language's iteration helpers.
var allowedBuiltins = map[string]func(args []any) (any, error){
	"len": func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("len() takes exactly one argument")
		}
		switch v := args[0].(type) {
		case []any:
			return int64(len(v)), nil
		case string:
			return int64(len([]rune(v))), nil
		case *ps.Dict:
			return int64(v.Len()), nil
		default:
			return nil, fmt.Errorf("object of type %s has no len()", ps.TypeName(v))
		}
	},
	"range": func(args []any) (any, error) {
		var start, stop, step int64 = 0, 0, 1
		switch len(args) {
		case 1:
			stop = mustInt(args[0])
		case 2:
			start, stop = mustInt(args[0]), mustInt(args[1])
		case 3:
			start, stop, step = mustInt(args[0]), mustInt(args[1]), mustInt(args[2])
		default:
			return nil, fmt.Errorf("range() takes 1 to 3 arguments")
		}
		if step == 0 {
			return nil, fmt.Errorf("range() step must not be zero")
		}
		var out []any
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, i)
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, i)
			}
		}
		return out, nil
	},
	"print": func(args []any) (any, error) {
		parts := make([]any, len(args))
		for i, a := range args {
			parts[i] = ps.ToString(a)
		}
		fmt.Println(parts...)
		return nil, nil
	},
	"abs": func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs() takes exactly one argument")
		}
		switch v := args[0].(type) {
		case int64:
			if v < 0 {
				return -v, nil
			}
			return v, nil
		case float64:
			if v < 0 {
				return -v, nil
			}
			return v, nil
		default:
			return nil, fmt.Errorf("bad operand type for abs(): %s", ps.TypeName(v))
		}
	},
	"min": func(args []any) (any, error) { return minMax(args, true) },
	"max": func(args []any) (any, error) { return minMax(args, false) },
	"sum": func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sum() takes exactly one argument")
		}
		list, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("sum() argument must be a list")
		}
		var total float64
		allInt := true
		for _, v := range list {
			switch x := v.(type) {
			case int64:
				total += float64(x)
			case float64:
				allInt = false
				total += x
			}
		}
		if allInt {
			return int64(total), nil
		}
		return total, nil
	},
	"int": func(args []any) (any, error) {
		if len(args) == 0 {
			return int64(0), nil
		}
		return mustInt(args[0]), nil
	},
	"float": func(args []any) (any, error) {
		if len(args) == 0 {
			return float64(0), nil
		}
		switch v := args[0].(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		default:
			return nil, fmt.Errorf("float() argument must be numeric")
		}
	},
	"str": func(args []any) (any, error) {
		if len(args) == 0 {
			return "", nil
		}
		return ps.ToString(args[0]), nil
	},
	"bool": func(args []any) (any, error) {
		if len(args) == 0 {
			return false, nil
		}
		return ps.Truthy(args[0]), nil
	},
	"list": func(args []any) (any, error) {
		if len(args) == 0 {
			return []any{}, nil
		}
		if v, ok := args[0].([]any); ok {
			out := make([]any, len(v))
			copy(out, v)
			return out, nil
		}
		return nil, fmt.Errorf("list() argument must be a list")
	},
	"dict": func(args []any) (any, error) {
		if len(args) == 0 {
			return ps.NewDict(), nil
		}
		return nil, fmt.Errorf("dict() with arguments is not supported")
	},
	"isinstance": func(args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("isinstance() takes exactly two arguments")
		}
		typeName, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("isinstance() second argument must be a type name string")
		}
		return ps.TypeName(args[0]) == typeName, nil
	},
	"sorted": func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sorted() takes exactly one argument")
		}
		list, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("sorted() argument must be a list")
		}
		out := make([]any, len(list))
		copy(out, list)
		sortValues(out)
		return out, nil
	},
	"enumerate": func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("enumerate() takes exactly one argument")
		}
		list, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("enumerate() argument must be a list")
		}
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = []any{int64(i), v}
		}
		return out, nil
	},
	"zip": func(args []any) (any, error) {
		if len(args) == 0 {
			return []any{}, nil
		}
		lists := make([][]any, len(args))
		shortest := -1
		for i, a := range args {
			list, ok := a.([]any)
			if !ok {
				return nil, fmt.Errorf("zip() arguments must be lists")
			}
			lists[i] = list
			if shortest == -1 || len(list) < shortest {
				shortest = len(list)
			}
		}
		out := make([]any, shortest)
		for i := 0; i < shortest; i++ {
			tuple := make([]any, len(lists))
			for j, list := range lists {
				tuple[j] = list[i]
			}
			out[i] = tuple
		}
		return out, nil
	},
	"iter": func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("iter() takes exactly one argument")
		}
		items, err := toItems(args[0])
		if err != nil {
			return nil, err
		}
		return &iterator{items: items}, nil
	},
	"next": func(args []any) (any, error) {
		if len(args) != 1 && len(args) != 2 {
			return nil, fmt.Errorf("next() takes one or two arguments")
		}
		it, ok := args[0].(*iterator)
		if !ok {
			return nil, fmt.Errorf("next() argument must be an iterator")
		}
		if it.pos < len(it.items) {
			v := it.items[it.pos]
			it.pos++
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return nil, fmt.Errorf("StopIteration")
	},
}

// denyBuiltins are installed as always-raising shims of the same name,
// matching §4.3's deny-list: dynamic-code evaluation, filesystem opening,
// process/module loading, and raw attribute-introspection escape hatches.
// Registering "input" here is safe even though `input` is also a default
// namespace name: namespaces always win over builtins on name collision
// (§4.3), so the real input namespace shadows this denial whenever it is
// registered.
var denyBuiltins = []string{
	"eval", "exec", "open", "__import__", "compile",
	"globals", "locals", "getattr", "setattr", "delattr", "vars", "input",
}

// installBuiltins installs the restricted builtin set into env. It takes the
// context's Interpreter because map() and filter() must call back into a
// user-supplied script function (Function or Builtin) for each element, and
// Interpreter.Call is the only entry point for that — the allowedBuiltins
// table above can't reach it since its entries are plain
// func([]any)(any,error) with no interpreter in scope.
func installBuiltins(env *ps.Environment, interp *ps.Interpreter) {
	for name, fn := range allowedBuiltins {
		env.SetGlobal(name, &ps.Builtin{Name: name, Fn: fn})
	}
	env.SetGlobal("map", &ps.Builtin{Name: "map", Fn: func(args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("map() takes exactly two arguments")
		}
		items, err := toItems(args[1])
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, v := range items {
			r, err := interp.Call(ps.Position{}, args[0], []any{v})
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}})
	env.SetGlobal("filter", &ps.Builtin{Name: "filter", Fn: func(args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("filter() takes exactly two arguments")
		}
		items, err := toItems(args[1])
		if err != nil {
			return nil, err
		}
		var out []any
		for _, v := range items {
			if args[0] == nil {
				if ps.Truthy(v) {
					out = append(out, v)
				}
				continue
			}
			r, err := interp.Call(ps.Position{}, args[0], []any{v})
			if err != nil {
				return nil, err
			}
			if ps.Truthy(r) {
				out = append(out, v)
			}
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	}})
	for _, name := range denyBuiltins {
		builtinName := name
		env.SetGlobal(name, &ps.Builtin{Name: name, Fn: func(args []any) (any, error) {
			return nil, &notAllowedError{builtin: builtinName}
		}})
	}
}

func mustInt(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	default:
		return 0
	}
}

func minMax(args []any, wantMin bool) (any, error) {
	var values []any
	if len(args) == 1 {
		if list, ok := args[0].([]any); ok {
			values = list
		} else {
			return nil, fmt.Errorf("min()/max() single argument must be a list")
		}
	} else {
		values = args
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("min()/max() arg is an empty sequence")
	}
	best := values[0]
	bestF := toF(best)
	for _, v := range values[1:] {
		f := toF(v)
		if (wantMin && f < bestF) || (!wantMin && f > bestF) {
			best, bestF = v, f
		}
	}
	return best, nil
}

func toF(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}

func sortValues(values []any) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && toF(values[j]) < toF(values[j-1]); j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}
