package namespaces

// Chart implements the `chart` namespace: scripts call chart.plot(name,
// value) once per process() invocation to record a plotted series point.
// GenerateOutput surfaces the accumulated series through the namespace
// registry's generate_outputs() protocol (§4.1) at the end of a run.
type Chart struct {
	shared map[string]any
	series map[string][]any
}

// NewChart returns a Chart namespace sharing shared with the rest of the
// registry's namespaces (unused today, but threaded through so a future
// namespace can read plotted series without a new wiring point).
func NewChart(shared map[string]any) *Chart {
	return &Chart{shared: shared, series: map[string][]any{}}
}

// Plot appends value to the named series.
func (c *Chart) Plot(name string, value any) {
	c.series[name] = append(c.series[name], value)
}

// GenerateOutput implements the optional namespace registry protocol.
func (c *Chart) GenerateOutput() any {
	if len(c.series) == 0 {
		return nil
	}
	out := map[string]any{}
	for name, values := range c.series {
		out[name] = values
	}
	return out
}
