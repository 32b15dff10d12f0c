package firscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildContext(t *testing.T, source string) *ExecutionContext {
	t.Helper()
	importer := NewImporter(newTestRegistry())
	_, err := importer.AddScript("main", source, true, nil)
	require.NoError(t, err)
	ctx, err := importer.BuildMainScript()
	require.NoError(t, err)
	return ctx
}

func TestExecutionContext_RunSetupAndProcess(t *testing.T) {
	source := "def setup():\n" +
		"    global count\n" +
		"    count = 0\n" +
		"def process():\n" +
		"    global count\n" +
		"    count = count + 1\n" +
		"    return count\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())

	v1, err := ctx.RunProcess()
	require.NoError(t, err)
	v2, err := ctx.RunProcess()
	require.NoError(t, err)

	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(2), v2, "global state must persist across RunProcess calls")
}

func TestExecutionContext_AllowedBuiltinsWork(t *testing.T) {
	source := "def setup():\n    pass\n" +
		"def process():\n" +
		"    return len([1, 2, 3])\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())

	v, err := ctx.RunProcess()
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestExecutionContext_MapAppliesFunctionToEachElement(t *testing.T) {
	source := "def double(x):\n    return x * 2\n" +
		"def setup():\n    pass\n" +
		"def process():\n" +
		"    return map(double, [1, 2, 3])\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())

	v, err := ctx.RunProcess()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(4), int64(6)}, v)
}

func TestExecutionContext_FilterKeepsTruthyResults(t *testing.T) {
	source := "def even(x):\n    return x % 2 == 0\n" +
		"def setup():\n    pass\n" +
		"def process():\n" +
		"    return filter(even, [1, 2, 3, 4])\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())

	v, err := ctx.RunProcess()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(4)}, v)
}

func TestExecutionContext_IterAndNextWalkAList(t *testing.T) {
	source := "def setup():\n    pass\n" +
		"def process():\n" +
		"    it = iter([10, 20])\n" +
		"    a = next(it)\n" +
		"    b = next(it)\n" +
		"    c = next(it, -1)\n" +
		"    return [a, b, c]\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())

	v, err := ctx.RunProcess()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(20), int64(-1)}, v)
}

func TestExecutionContext_NextWithoutDefaultRaisesOnExhaustion(t *testing.T) {
	source := "def setup():\n    pass\n" +
		"def process():\n" +
		"    it = iter([1])\n" +
		"    next(it)\n" +
		"    return next(it)\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())

	_, err := ctx.RunProcess()
	require.Error(t, err)
	var scriptErr *ScriptRuntimeError
	assert.ErrorAs(t, err, &scriptErr)
}

func TestExecutionContext_DenyListedBuiltinRaisesNotAllowed(t *testing.T) {
	source := "def setup():\n    pass\n" +
		"def process():\n" +
		"    return eval(\"1\")\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())

	_, err := ctx.RunProcess()
	require.Error(t, err)
	var notAllowed *NotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, "eval", notAllowed.Builtin)
}

func TestExecutionContext_GetExportOfNonLibraryIsNil(t *testing.T) {
	source := "def setup():\n    pass\ndef process():\n    pass\n"
	ctx := buildContext(t, source)
	require.NoError(t, ctx.RunSetup())
	assert.Nil(t, ctx.GetExport())
}

func TestExecutionContext_NamespaceLookup(t *testing.T) {
	ctx := buildContext(t, "export = {}\n")
	_, ok := ctx.Namespace("data")
	assert.True(t, ok)
	_, ok = ctx.Namespace("not-a-namespace")
	assert.False(t, ok)
}
