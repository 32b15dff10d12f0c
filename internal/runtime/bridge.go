// Package runtime bridges plain Go namespace implementations
// (internal/namespaces) into the pyscript interpreter's attribute/call
// protocol. It wraps each namespace behind risor's object.Proxy — the same
// reflection-based host/script boundary risor itself uses to expose Go
// values to scripts — and resolves method calls by reflection, translating
// arguments and results between script values and Go values at the edge.
package runtime

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/firscript-run/firscript/internal/pyscript"
	"github.com/risor-io/risor/object"
)

// ManualAttr lets a namespace short-circuit the reflect-based method lookup
// for attributes that aren't plain method calls (e.g. `strategy.position`,
// which resolves to a snapshot value rather than invoking a method).
// handled=false falls through to the normal method lookup.
type ManualAttr interface {
	ManualAttr(name string) (value any, handled bool, err error)
}

// Bridge exposes a wrapped Go namespace value to the pyscript interpreter.
// It implements pyscript.AttributeHost, so `ns.attr` and `ns.method(...)`
// inside a script resolve through GetAttr the same way a dict attribute
// access does.
type Bridge struct {
	proxy *object.Proxy
	label string
}

// Wrap constructs a Bridge around value, labeling it label for error
// messages (conventionally the namespace name, e.g. "ta" or "strategy").
// It panics if risor's proxy layer rejects value, which only happens for
// kinds it cannot reflect over (channels, unsafe pointers, ...) — namespace
// implementations are always plain structs, so this is a programmer error,
// not a runtime condition.
func Wrap(label string, value any) *Bridge {
	proxy, err := object.NewProxy(value)
	if err != nil {
		panic(fmt.Sprintf("runtime: cannot wrap namespace %q: %v", label, err))
	}
	return &Bridge{proxy: proxy, label: label}
}

// Interface returns the underlying wrapped Go value.
func (b *Bridge) Interface() any { return b.proxy.Interface() }

// GetAttr implements pyscript.AttributeHost.
func (b *Bridge) GetAttr(name string) (any, error) {
	target := b.proxy.Interface()

	if mp, ok := target.(ManualAttr); ok {
		if v, handled, err := mp.ManualAttr(name); handled {
			return v, err
		}
	}

	method := reflect.ValueOf(target).MethodByName(exportedName(name))
	if !method.IsValid() {
		return nil, fmt.Errorf("%s has no attribute %q", b.label, name)
	}

	label := b.label + "." + name
	return &pyscript.Builtin{Name: label, Fn: func(args []any) (any, error) {
		return callMethod(label, method, args)
	}}, nil
}

// exportedName turns a script-facing snake_case name (e.g. "set_current_bar")
// into the Go exported method name risor-style reflection expects
// ("SetCurrentBar").
func exportedName(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func callMethod(label string, method reflect.Value, args []any) (any, error) {
	t := method.Type()
	variadic := t.IsVariadic()
	numIn := t.NumIn()
	fixedIn := numIn
	if variadic {
		fixedIn = numIn - 1
	}
	if !variadic && len(args) > numIn {
		return nil, fmt.Errorf("%s: too many arguments (got %d, want %d)", label, len(args), numIn)
	}

	in := make([]reflect.Value, 0, numIn)
	for i := 0; i < fixedIn; i++ {
		pt := t.In(i)
		if i >= len(args) {
			in = append(in, reflect.Zero(pt))
			continue
		}
		cv, err := scriptToGo(args[i], pt)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", label, i+1, err)
		}
		in = append(in, cv)
	}
	if variadic {
		elemType := t.In(numIn - 1).Elem()
		for i := fixedIn; i < len(args); i++ {
			cv, err := scriptToGo(args[i], elemType)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", label, i+1, err)
			}
			in = append(in, cv)
		}
	}

	out := method.Call(in)
	return marshalResults(out)
}

func scriptToGo(v any, target reflect.Type) (reflect.Value, error) {
	if target.Kind() == reflect.Interface {
		if v == nil {
			return reflect.Zero(target), nil
		}
		return reflect.ValueOf(v), nil
	}

	switch target.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		switch x := v.(type) {
		case int64:
			return reflect.ValueOf(x).Convert(target), nil
		case float64:
			return reflect.ValueOf(int64(x)).Convert(target), nil
		}
	case reflect.Float32, reflect.Float64:
		switch x := v.(type) {
		case float64:
			return reflect.ValueOf(x).Convert(target), nil
		case int64:
			return reflect.ValueOf(float64(x)).Convert(target), nil
		}
	case reflect.String:
		if x, ok := v.(string); ok {
			return reflect.ValueOf(x), nil
		}
	case reflect.Bool:
		if x, ok := v.(bool); ok {
			return reflect.ValueOf(x), nil
		}
	case reflect.Slice:
		if list, ok := v.([]any); ok {
			elemType := target.Elem()
			out := reflect.MakeSlice(target, len(list), len(list))
			for i, el := range list {
				cv, err := scriptToGo(el, elemType)
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(cv)
			}
			return out, nil
		}
	case reflect.Map:
		if dict, ok := v.(*pyscript.Dict); ok {
			out := reflect.MakeMap(target)
			for _, k := range dict.Keys() {
				val, _ := dict.Get(k)
				cv, err := scriptToGo(val, target.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.SetMapIndex(reflect.ValueOf(k), cv)
			}
			return out, nil
		}
	}

	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Type().AssignableTo(target) {
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, target)
}

func marshalResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if isErrorType(last.Type()) {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
		return goToScript(out[0]), err
	}
	return goToScript(out[0]), nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

func isErrorType(t reflect.Type) bool { return t.Implements(errType) }

func goToScript(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = goToScript(v.Index(i))
		}
		return out
	case reflect.Map:
		d := pyscript.NewDict()
		for _, k := range v.MapKeys() {
			d.Set(fmt.Sprintf("%v", k.Interface()), goToScript(v.MapIndex(k)))
		}
		return d
	case reflect.Interface:
		return goToScript(reflect.ValueOf(v.Interface()))
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return v.Interface()
	default:
		return v.Interface()
	}
}
