package firscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImporter_BuildMainScriptWithoutMainErrors(t *testing.T) {
	importer := NewImporter(newTestRegistry())
	_, err := importer.BuildMainScript()
	require.Error(t, err)
	var entrypointErr *EntrypointNotFoundError
	assert.ErrorAs(t, err, &entrypointErr)
}

func TestImporter_SingleScriptImplicitlyMain(t *testing.T) {
	importer := NewImporter(newTestRegistry())
	_, err := importer.AddScript("only", "export = {}\n", false, nil)
	require.NoError(t, err)

	ctx, err := importer.BuildMainScript()
	require.NoError(t, err)
	assert.NotNil(t, ctx)
}

func TestImporter_ImportScriptMemoizesLibraryExport(t *testing.T) {
	registry := newTestRegistry()
	importer := NewImporter(registry)

	_, err := importer.AddScript("util", "export = {\"v\": 1}\n", false, nil)
	require.NoError(t, err)

	first, err := importer.ImportScript("util")
	require.NoError(t, err)
	second, err := importer.ImportScript("util")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestImporter_ImportUnknownScriptErrors(t *testing.T) {
	importer := NewImporter(newTestRegistry())
	_, err := importer.AddScript("main", "export = {}\n", true, nil)
	require.NoError(t, err)

	_, err = importer.ImportScript("nope")
	require.Error(t, err)
	var notFound *ScriptNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestImporter_ImportIndicatorReturnsExecutionContext(t *testing.T) {
	registry := newTestRegistry()
	importer := NewImporter(registry)

	indicator := "def setup():\n    pass\ndef process():\n    return 1\n"
	_, err := importer.AddScript("ind", indicator, false, nil)
	require.NoError(t, err)

	v, err := importer.ImportScript("ind")
	require.NoError(t, err)
	_, ok := v.(*ExecutionContext)
	assert.True(t, ok, "importing a non-library script should return its ExecutionContext")
}
