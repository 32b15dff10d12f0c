package pyscript

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Function is a user-defined, script-level callable. It closes over the
// Environment it was defined in (the module globals for top-level defs, or
// an enclosing function's locals for a lambda/nested def), which is how a
// strategy's process() keeps seeing state set up by setup().
type Function struct {
	Name    string
	Params  []Param
	Body    []Stmt
	BodyExp Expr // set instead of Body for lambdas (single-expression bodies)
	Closure *Environment
}

// Builtin is a host-provided callable exposed into script scope, e.g. the
// restricted builtins (len, range, print, ...) or a namespace's bound
// methods reached through the runtime bridge.
type Builtin struct {
	Name string
	Fn   func(args []any) (any, error)
}

// Dict is an insertion-ordered string-keyed mapping, used for script dict
// literals, export dictionaries, and the strategy.position snapshot. Go's map
// doesn't preserve order, which matters for stable iteration and for the
// validator/exports surface.
type Dict struct {
	keys   []string
	values map[string]any
}

func NewDict() *Dict {
	return &Dict{values: map[string]any{}}
}

func (d *Dict) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) Set(key string, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Dict) Len() int { return len(d.keys) }

// Truthy implements the host language's truthiness rules: None, False, 0,
// 0.0, "", empty list and empty dict are falsy; everything else is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case *Dict:
		return x.Len() > 0
	default:
		return true
	}
}

// ToString renders v as the host language would for str()/print()/f-string
// interpolation and log messages.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Dict:
		parts := make([]string, 0, x.Len())
		for _, k := range x.Keys() {
			v, _ := x.Get(k)
			parts = append(parts, fmt.Sprintf("%q: %s", k, Repr(v)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Function:
		return fmt.Sprintf("<function %s>", x.Name)
	case *Builtin:
		return fmt.Sprintf("<builtin %s>", x.Name)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Repr is like ToString but quotes strings, matching how the host language
// renders nested values inside list/dict printing.
func Repr(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return ToString(v)
}

// TypeName returns the host-facing type name used in error messages such as
// argument-count / argument-type failures.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case []any:
		return "list"
	case *Dict:
		return "dict"
	case *Function, *Builtin:
		return "function"
	default:
		return "object"
	}
}

// SortedStringKeys is a small helper for callers that want
// deterministic iteration over a plain Go map[string]any without adopting
// Dict's insertion-order bookkeeping.
func SortedStringKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
