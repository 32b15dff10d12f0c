package firscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MissingKindError(t *testing.T) {
	_, err := Parse("x = 1\n", "no-shape")
	require.Error(t, err)
	var missingKind *MissingKindError
	assert.ErrorAs(t, err, &missingKind)
}

func TestParse_ConflictingKindError(t *testing.T) {
	_, err := Parse("def setup():\n    pass\n", "half-shape")
	require.Error(t, err)
	var conflicting *ConflictingKindError
	require.ErrorAs(t, err, &conflicting)
	assert.Contains(t, conflicting.Detail, "setup")
}

func TestParse_LibraryWithoutExportError(t *testing.T) {
	_, err := Parse("x = 1\nimport_script(\"y\")\n", "no-export")
	require.Error(t, err)
	// Bare top-level statements with no setup/process and no export match
	// no known kind, since a library is recognized by having an export.
	var missingKind *MissingKindError
	assert.ErrorAs(t, err, &missingKind)
}

func TestParse_MultipleExportsError(t *testing.T) {
	source := "export = 1\nexport = 2\n"
	_, err := Parse(source, "double-export")
	require.Error(t, err)
	var multi *MultipleExportsError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, 2, multi.Count)
}

func TestParse_StrategyGlobalVariableError(t *testing.T) {
	source := "counter = 0\n" +
		"def setup():\n    pass\n" +
		"def process():\n    pass\n"
	_, err := Parse(source, "bad-global")
	require.Error(t, err)
	var globalErr *StrategyGlobalVariableError
	require.ErrorAs(t, err, &globalErr)
	assert.Equal(t, "counter", globalErr.Name)
}

func TestParse_ImportScriptBindingIsAllowedAtTopLevel(t *testing.T) {
	source := "u = import_script(\"util\")\n" +
		"def setup():\n    pass\n" +
		"def process():\n    pass\n"
	script, err := Parse(source, "with-import")
	require.NoError(t, err)
	assert.Equal(t, "util", script.Metadata.Imports["u"])
}

func TestParse_ReservedNameInAssignmentError(t *testing.T) {
	source := "__secret__ = 1\n" +
		"def setup():\n    pass\n" +
		"def process():\n    pass\n"
	_, err := Parse(source, "reserved")
	require.Error(t, err)
	var reservedErr *ReservedVariableNameError
	require.ErrorAs(t, err, &reservedErr)
	assert.Equal(t, "__secret__", reservedErr.Name)
}

func TestParse_ReservedNameInExportKeyError(t *testing.T) {
	source := "export = {\"__dunder__\": 1}\n"
	_, err := Parse(source, "reserved-export")
	require.Error(t, err)
	var reservedErr *ReservedVariableNameError
	require.ErrorAs(t, err, &reservedErr)
	assert.Equal(t, "__dunder__", reservedErr.Name)
}

func TestParse_SyntaxErrorIsTyped(t *testing.T) {
	_, err := Parse("def setup(:\n    pass\n", "broken")
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParse_InputUsageInsideSetupAllowed(t *testing.T) {
	source := "def setup():\n" +
		"    global n\n" +
		"    n = input.int(\"n\", 14)\n" +
		"def process():\n    pass\n"
	script, err := Parse(source, "good-input")
	require.NoError(t, err)
	assert.Equal(t, KindIndicator, script.Kind())
}
