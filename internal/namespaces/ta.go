// Package namespaces implements the default script-facing objects the
// engine registers under well-known names (ta, data, chart, color,
// strategy, input, log). The core treats every namespace opaquely; these
// implementations are the concrete "external collaborators" §6 of the
// engine's contract describes, grounded on how the teacher's own
// tree-sitter host functions expose typed Go state to scripts.
package namespaces

// TA implements the `ta` namespace: a handful of rolling technical
// indicators over a float series, the way a script's
// `ta.sma(data.close(), 20)` call expects.
type TA struct{}

// NewTA returns the default `ta` namespace.
func NewTA() *TA { return &TA{} }

// SMA returns the simple moving average of the last period values of
// values. It returns 0 until period values are available.
func (t *TA) SMA(values []float64, period int64) float64 {
	n := int(period)
	if n <= 0 || len(values) < n {
		return 0
	}
	window := values[len(values)-n:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	return sum / float64(n)
}

// EMA returns the exponential moving average of values over period,
// seeded with the SMA of the first period values.
func (t *TA) EMA(values []float64, period int64) float64 {
	n := int(period)
	if n <= 0 || len(values) < n {
		return 0
	}
	k := 2.0 / (float64(n) + 1.0)
	ema := t.SMA(values[:n], period)
	for _, v := range values[n:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// RSI returns the Wilder relative strength index of values over period.
func (t *TA) RSI(values []float64, period int64) float64 {
	n := int(period)
	if n <= 0 || len(values) <= n {
		return 0
	}
	var gainSum, lossSum float64
	for i := 1; i <= n; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(n)
	avgLoss := lossSum / float64(n)
	for i := n + 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(n-1) + gain) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + loss) / float64(n)
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// Highest returns the maximum of the last period values.
func (t *TA) Highest(values []float64, period int64) float64 {
	return extreme(values, period, func(a, b float64) bool { return a > b })
}

// Lowest returns the minimum of the last period values.
func (t *TA) Lowest(values []float64, period int64) float64 {
	return extreme(values, period, func(a, b float64) bool { return a < b })
}

func extreme(values []float64, period int64, better func(a, b float64) bool) float64 {
	n := int(period)
	if n <= 0 || len(values) < n {
		n = len(values)
	}
	if n == 0 {
		return 0
	}
	window := values[len(values)-n:]
	best := window[0]
	for _, v := range window[1:] {
		if better(v, best) {
			best = v
		}
	}
	return best
}
