package pyscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) *Environment {
	t.Helper()
	prog, err := Parse("test.fir", source)
	require.NoError(t, err)
	env := NewGlobalEnvironment()
	ip := NewInterpreter()
	require.NoError(t, ip.ExecModule(prog, env))
	return env
}

func TestInterpreter_AssignmentAndArithmetic(t *testing.T) {
	env := run(t, "x = 1 + 2 * 3\ny = x / 2\n")
	x, ok := env.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(7), x)
	y, ok := env.Get("y")
	require.True(t, ok)
	assert.Equal(t, 3.5, y)
}

func TestInterpreter_IfElif(t *testing.T) {
	env := run(t, `
def classify(n):
    if n < 0:
        return "neg"
    elif n == 0:
        return "zero"
    else:
        return "pos"

a = classify(-1)
b = classify(0)
c = classify(5)
`)
	ip := NewInterpreter()
	fn, ok := env.Get("classify")
	require.True(t, ok)
	result, err := ip.Call(Position{}, fn, []any{int64(42)})
	require.NoError(t, err)
	assert.Equal(t, "pos", result)

	a, _ := env.Get("a")
	b, _ := env.Get("b")
	c, _ := env.Get("c")
	assert.Equal(t, "neg", a)
	assert.Equal(t, "zero", b)
	assert.Equal(t, "pos", c)
}

func TestInterpreter_ForLoopOverList(t *testing.T) {
	env := run(t, `
total = 0
for v in [1, 2, 3, 4]:
    total = total + v
`)
	total, ok := env.Get("total")
	require.True(t, ok)
	assert.Equal(t, int64(10), total)
}

func TestInterpreter_GlobalStatementPersistsAcrossCalls(t *testing.T) {
	prog, err := Parse("test.fir", `
count = 0

def bump():
    global count
    count = count + 1
`)
	require.NoError(t, err)
	env := NewGlobalEnvironment()
	ip := NewInterpreter()
	require.NoError(t, ip.ExecModule(prog, env))

	bump, ok := env.Get("bump")
	require.True(t, ok)

	_, err = ip.Call(Position{}, bump, nil)
	require.NoError(t, err)
	_, err = ip.Call(Position{}, bump, nil)
	require.NoError(t, err)

	count, ok := env.Get("count")
	require.True(t, ok)
	assert.Equal(t, int64(2), count)
}

func TestInterpreter_LambdaClosesOverEnclosingScope(t *testing.T) {
	env := run(t, `
def make_adder(n):
    return lambda x: x + n

add5 = make_adder(5)
result = add5(10)
`)
	result, ok := env.Get("result")
	require.True(t, ok)
	assert.Equal(t, int64(15), result)
}

func TestInterpreter_DictLiteralAndAttributeAssignment(t *testing.T) {
	env := run(t, `
d = {"a": 1, "b": 2}
d.c = 3
`)
	d, ok := env.Get("d")
	require.True(t, ok)
	dict, ok := d.(*Dict)
	require.True(t, ok)
	v, ok := dict.Get("c")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
}

func TestInterpreter_UndefinedNameIsRuntimeError(t *testing.T) {
	prog, err := Parse("test.fir", "x = undefined_name\n")
	require.NoError(t, err)
	env := NewGlobalEnvironment()
	ip := NewInterpreter()
	err = ip.ExecModule(prog, env)
	require.Error(t, err)
	var rtErr *RuntimeError
	require.ErrorAs(t, err, &rtErr)
}

func TestInterpreter_DivisionByZero(t *testing.T) {
	prog, err := Parse("test.fir", "x = 1 / 0\n")
	require.NoError(t, err)
	env := NewGlobalEnvironment()
	ip := NewInterpreter()
	err = ip.ExecModule(prog, env)
	require.Error(t, err)
}

func TestInterpreter_BoolOpShortCircuits(t *testing.T) {
	env := run(t, "a = False and (1 / 0)\nb = True or (1 / 0)\n")
	a, _ := env.Get("a")
	b, _ := env.Get("b")
	assert.Equal(t, false, a)
	assert.Equal(t, true, b)
}
