package runtime

import (
	"testing"

	"github.com/firscript-run/firscript/internal/pyscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNamespace struct {
	calls []string
}

func (f *fakeNamespace) Add(a, b int64) int64 {
	f.calls = append(f.calls, "add")
	return a + b
}

func (f *fakeNamespace) Greet(name string) string {
	return "hello " + name
}

func (f *fakeNamespace) Variadic(prefix string, rest ...int64) []any {
	out := []any{prefix}
	for _, r := range rest {
		out = append(out, r)
	}
	return out
}

func (f *fakeNamespace) Fails() (int64, error) {
	return 0, assert.AnError
}

type manualNamespace struct{ fakeNamespace }

func (m *manualNamespace) ManualAttr(name string) (any, bool, error) {
	if name == "label" {
		return "manual-value", true, nil
	}
	return nil, false, nil
}

func builtinFn(t *testing.T, v any, err error) *pyscript.Builtin {
	t.Helper()
	require.NoError(t, err)
	b, ok := v.(*pyscript.Builtin)
	require.True(t, ok, "expected *pyscript.Builtin, got %T", v)
	return b
}

func TestBridge_MethodDispatch(t *testing.T) {
	ns := &fakeNamespace{}
	b := Wrap("fake", ns)

	fn := builtinFn(t, b.GetAttr("add"))
	result, err := fn.Fn([]any{int64(2), int64(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result)
	assert.Equal(t, []string{"add"}, ns.calls)
}

func TestBridge_SnakeCaseAttrName(t *testing.T) {
	ns := &fakeNamespace{}
	b := Wrap("fake", ns)

	fn := builtinFn(t, b.GetAttr("greet"))
	result, err := fn.Fn([]any{"world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", result)
}

func TestBridge_VariadicMethod(t *testing.T) {
	ns := &fakeNamespace{}
	b := Wrap("fake", ns)

	fn := builtinFn(t, b.GetAttr("variadic"))
	result, err := fn.Fn([]any{"p", int64(1), int64(2)})
	require.NoError(t, err)
	assert.Equal(t, []any{"p", int64(1), int64(2)}, result)
}

func TestBridge_ErrorReturnPropagates(t *testing.T) {
	ns := &fakeNamespace{}
	b := Wrap("fake", ns)

	fn := builtinFn(t, b.GetAttr("fails"))
	_, err := fn.Fn(nil)
	assert.Error(t, err)
}

func TestBridge_UnknownAttrError(t *testing.T) {
	ns := &fakeNamespace{}
	b := Wrap("fake", ns)

	_, err := b.GetAttr("does_not_exist")
	assert.Error(t, err)
}

func TestBridge_ManualAttrShortCircuits(t *testing.T) {
	ns := &manualNamespace{}
	b := Wrap("manual", ns)

	v, err := b.GetAttr("label")
	require.NoError(t, err)
	assert.Equal(t, "manual-value", v)
}

func TestBridge_ManualAttrFallsThroughToMethod(t *testing.T) {
	ns := &manualNamespace{}
	b := Wrap("manual", ns)

	fn := builtinFn(t, b.GetAttr("add"))
	result, err := fn.Fn([]any{int64(1), int64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result)
}

func TestBridge_TooManyArgumentsError(t *testing.T) {
	ns := &fakeNamespace{}
	b := Wrap("fake", ns)

	fn := builtinFn(t, b.GetAttr("add"))
	_, err := fn.Fn([]any{int64(1), int64(2), int64(3)})
	assert.Error(t, err)
}
