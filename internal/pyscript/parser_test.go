package pyscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FuncDefWithDefaultParam(t *testing.T) {
	prog, err := Parse("test.fir", `
def greet(name, greeting="hello"):
    return greeting
`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	fn, ok := prog.Statements[0].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "greet", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "name", fn.Params[0].Name)
	assert.Nil(t, fn.Params[0].Default)
	assert.Equal(t, "greeting", fn.Params[1].Name)
	require.NotNil(t, fn.Params[1].Default)
}

func TestParse_IfElifElse(t *testing.T) {
	prog, err := Parse("test.fir", `
if x < 0:
    y = 1
elif x == 0:
    y = 2
else:
    y = 3
`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	ifStmt, ok := prog.Statements[0].(*IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Else, 1)
	elifStmt, ok := ifStmt.Else[0].(*IfStmt)
	require.True(t, ok)
	require.Len(t, elifStmt.Else, 1)
}

func TestParse_AttributeChainAndCall(t *testing.T) {
	prog, err := Parse("test.fir", "x = strategy.position.qty\ny = ta.sma(data.close(), 20)\n")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	assign1 := prog.Statements[0].(*Assign)
	root, ok := AttributeRoot(assign1.Value)
	require.True(t, ok)
	assert.Equal(t, "strategy", root)

	assign2 := prog.Statements[1].(*Assign)
	call, ok := assign2.Value.(*Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	inner, ok := call.Args[0].(*Call)
	require.True(t, ok)
	root2, ok := AttributeRoot(inner.Func)
	require.True(t, ok)
	assert.Equal(t, "data", root2)
}

func TestParse_ListAndDictLiterals(t *testing.T) {
	prog, err := Parse("test.fir", `xs = [1, 2, 3]
d = {"a": 1, "b": 2}
`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	list := prog.Statements[0].(*Assign).Value.(*ListLit)
	assert.Len(t, list.Elems, 3)
	dict := prog.Statements[1].(*Assign).Value.(*DictLit)
	assert.Len(t, dict.Keys, 2)
}

func TestParse_LambdaExpression(t *testing.T) {
	prog, err := Parse("test.fir", "f = lambda x, y=1: x + y\n")
	require.NoError(t, err)
	assign := prog.Statements[0].(*Assign)
	lambda, ok := assign.Value.(*Lambda)
	require.True(t, ok)
	require.Len(t, lambda.Params, 2)
	require.NotNil(t, lambda.Params[1].Default)
}

func TestParse_OperatorPrecedence(t *testing.T) {
	prog, err := Parse("test.fir", "x = 1 + 2 * 3 == 7 and not False\n")
	require.NoError(t, err)
	assign := prog.Statements[0].(*Assign)
	boolOp, ok := assign.Value.(*BoolOp)
	require.True(t, ok)
	assert.Equal(t, "and", boolOp.Op)
	_, ok = boolOp.Left.(*Binary)
	require.True(t, ok)
	_, ok = boolOp.Right.(*Unary)
	require.True(t, ok)
}

func TestParse_GlobalStatement(t *testing.T) {
	prog, err := Parse("test.fir", `
def bump():
    global count, total
    count = count + 1
`)
	require.NoError(t, err)
	fn := prog.Statements[0].(*FuncDef)
	global, ok := fn.Body[0].(*GlobalStmt)
	require.True(t, ok)
	assert.Equal(t, []string{"count", "total"}, global.Names)
}

func TestParse_ForLoop(t *testing.T) {
	prog, err := Parse("test.fir", `
for bar in data.bars():
    chart.plot(bar)
`)
	require.NoError(t, err)
	forStmt, ok := prog.Statements[0].(*ForStmt)
	require.True(t, ok)
	assert.Equal(t, "bar", forStmt.Var)
	require.Len(t, forStmt.Body, 1)
}

func TestParse_InconsistentIndentationIsSyntaxError(t *testing.T) {
	_, err := Parse("test.fir", "def f():\n    x = 1\n   y = 2\n")
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParse_TabIndentationIsRejected(t *testing.T) {
	_, err := Parse("test.fir", "def f():\n\tx = 1\n")
	require.Error(t, err)
}

func TestParse_PassStatement(t *testing.T) {
	prog, err := Parse("test.fir", "def noop():\n    pass\n")
	require.NoError(t, err)
	fn := prog.Statements[0].(*FuncDef)
	_, ok := fn.Body[0].(*PassStmt)
	require.True(t, ok)
}
