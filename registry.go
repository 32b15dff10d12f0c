package firscript

import "github.com/firscript-run/firscript/internal/namespaces"

// NamespaceRegistry is the mapping from namespace name to namespace object
// described in §4.1. It owns the `shared` dictionary threaded by reference
// through every default namespace it constructs, the only cross-namespace
// state channel the core defines.
type NamespaceRegistry struct {
	namespaces map[string]any
	shared     map[string]any
}

// NewNamespaceRegistry returns an empty registry with a fresh shared
// dictionary.
func NewNamespaceRegistry() *NamespaceRegistry {
	return &NamespaceRegistry{
		namespaces: map[string]any{},
		shared:     map[string]any{},
	}
}

// Shared exposes the registry's shared dictionary, e.g. for a driver that
// wants to seed it before the first build().
func (r *NamespaceRegistry) Shared() map[string]any { return r.shared }

// Register installs or replaces the namespace under name. Later
// registrations win, so a driver calling Register after RegisterDefaults
// overrides a default namespace (§8 property 10).
func (r *NamespaceRegistry) Register(name string, ns any) {
	r.namespaces[name] = ns
}

// RegisterDefaults installs the canonical namespace set (ta, input, chart,
// color, strategy, data, log), configured from inputOverrides and
// columnMapping. The registry itself is agnostic to what these objects do;
// only their names and optional GenerateOutput/GenerateMetadata methods
// matter to the core.
func (r *NamespaceRegistry) RegisterDefaults(inputOverrides map[string]any, columnMapping map[string]string) {
	r.Register("ta", namespaces.NewTA())
	r.Register("input", namespaces.NewInput(inputOverrides))
	r.Register("chart", namespaces.NewChart(r.shared))
	r.Register("color", namespaces.NewColor())
	r.Register("strategy", namespaces.NewStrategy(r.shared))
	r.Register("data", namespaces.NewData(columnMapping))
	r.Register("log", namespaces.NewLog("firscript"))
}

// Get retrieves the namespace registered under name.
func (r *NamespaceRegistry) Get(name string) (any, bool) {
	v, ok := r.namespaces[name]
	return v, ok
}

// Build returns a fresh shallow copy of the registry's namespace mapping,
// for use as one ExecutionContext's namespace bundle.
func (r *NamespaceRegistry) Build() map[string]any {
	out := make(map[string]any, len(r.namespaces))
	for k, v := range r.namespaces {
		out[k] = v
	}
	return out
}

// outputGenerator is the optional protocol a namespace may implement to
// contribute to GenerateOutputs.
type outputGenerator interface {
	GenerateOutput() any
}

// metadataGenerator is the optional protocol a namespace may implement to
// contribute to GenerateMetadatas.
type metadataGenerator interface {
	GenerateMetadata() any
}

// GenerateOutputs walks ns and collects GenerateOutput() results from any
// namespace that implements the protocol and returns a non-nil value.
func GenerateOutputs(ns map[string]any) map[string]any {
	out := map[string]any{}
	for name, obj := range ns {
		if g, ok := obj.(outputGenerator); ok {
			if v := g.GenerateOutput(); v != nil {
				out[name] = v
			}
		}
	}
	return out
}

// GenerateMetadatas walks ns and collects GenerateMetadata() results the
// same way GenerateOutputs collects GenerateOutput() results.
func GenerateMetadatas(ns map[string]any) map[string]any {
	out := map[string]any{}
	for name, obj := range ns {
		if g, ok := obj.(metadataGenerator); ok {
			if v := g.GenerateMetadata(); v != nil {
				out[name] = v
			}
		}
	}
	return out
}
