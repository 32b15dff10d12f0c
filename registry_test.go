package firscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceRegistry_RegisterDefaultsInstallsAll(t *testing.T) {
	r := NewNamespaceRegistry()
	r.RegisterDefaults(nil, nil)

	for _, name := range []string{"ta", "input", "chart", "color", "strategy", "data", "log"} {
		_, ok := r.Get(name)
		assert.True(t, ok, "expected namespace %q to be registered", name)
	}
}

func TestNamespaceRegistry_RegisterOverridesDefault(t *testing.T) {
	r := NewNamespaceRegistry()
	r.RegisterDefaults(nil, nil)

	type fakeTA struct{}
	r.Register("ta", &fakeTA{})

	got, ok := r.Get("ta")
	require.True(t, ok)
	_, isFake := got.(*fakeTA)
	assert.True(t, isFake, "expected Register to override the default ta namespace")
}

func TestNamespaceRegistry_BuildReturnsIndependentCopies(t *testing.T) {
	r := NewNamespaceRegistry()
	r.RegisterDefaults(nil, nil)

	a := r.Build()
	b := r.Build()
	a["extra"] = "value"

	_, ok := b["extra"]
	assert.False(t, ok, "Build() should return a fresh map each call")
}

func TestGenerateOutputs_SkipsNamespacesWithNoOutput(t *testing.T) {
	r := NewNamespaceRegistry()
	r.RegisterDefaults(nil, nil)
	ns := r.Build()

	outputs := GenerateOutputs(ns)
	_, hasChart := outputs["chart"]
	assert.False(t, hasChart, "an untouched chart namespace should contribute no output")
}
