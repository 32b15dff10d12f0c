package namespaces

// Input implements the `input` namespace: the declare-a-parameter calls
// (input.int, input.float, input.bool, input.string) the validator only
// permits inside a script's setup(). Each call returns the override value
// if one was supplied by the driver, else the declared default — the core
// doesn't care which; it only enforces *where* these calls may appear.
type Input struct {
	overrides map[string]any
}

// NewInput returns an Input namespace backed by overrides, a flat
// name -> value table the driver supplies (e.g. from a saved backtest
// configuration or CLI flags).
func NewInput(overrides map[string]any) *Input {
	if overrides == nil {
		overrides = map[string]any{}
	}
	return &Input{overrides: overrides}
}

// Int declares an integer input named name with default def.
func (i *Input) Int(name string, def int64) int64 {
	if v, ok := i.overrides[name]; ok {
		if iv, ok := v.(int64); ok {
			return iv
		}
	}
	return def
}

// Float declares a float input named name with default def.
func (i *Input) Float(name string, def float64) float64 {
	if v, ok := i.overrides[name]; ok {
		switch x := v.(type) {
		case float64:
			return x
		case int64:
			return float64(x)
		}
	}
	return def
}

// Bool declares a boolean input named name with default def.
func (i *Input) Bool(name string, def bool) bool {
	if v, ok := i.overrides[name]; ok {
		if bv, ok := v.(bool); ok {
			return bv
		}
	}
	return def
}

// String declares a string input named name with default def.
func (i *Input) String(name string, def string) string {
	if v, ok := i.overrides[name]; ok {
		if sv, ok := v.(string); ok {
			return sv
		}
	}
	return def
}
