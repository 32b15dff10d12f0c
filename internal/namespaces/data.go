package namespaces

import "github.com/firscript-run/firscript/internal/pyscript"

// Data implements the `data` namespace: the bar-series window the driver
// feeds in via SetCurrentBar/SetAllBar between process() calls, and the
// per-column accessors (close, open, high, low, volume, index) scripts use
// to read it. The core never touches this type directly; the driver is the
// only caller of SetCurrentBar/SetAllBar, per §6.
type Data struct {
	columnMap map[string]string
	bars      []map[string]float64
}

// NewData returns a Data namespace that remaps column name -> source field
// name through columnMap (e.g. {"close": "Adj Close"}). A nil map means no
// remapping.
func NewData(columnMap map[string]string) *Data {
	if columnMap == nil {
		columnMap = map[string]string{}
	}
	return &Data{columnMap: columnMap}
}

// SetCurrentBar appends a new bar to the series the driver is walking.
// Accepts either a *pyscript.Dict or a plain map[string]any keyed by
// column name.
func (d *Data) SetCurrentBar(bar any) {
	d.bars = append(d.bars, toFloatRow(bar))
}

// SetAllBar replaces the entire historical window, e.g. when the driver
// preloads a full series before the first process() call.
func (d *Data) SetAllBar(bars []any) {
	rows := make([]map[string]float64, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, toFloatRow(b))
	}
	d.bars = rows
}

func toFloatRow(bar any) map[string]float64 {
	row := map[string]float64{}
	switch b := bar.(type) {
	case *pyscript.Dict:
		for _, k := range b.Keys() {
			v, _ := b.Get(k)
			row[k] = toFloat(v)
		}
	case map[string]any:
		for k, v := range b {
			row[k] = toFloat(v)
		}
	case map[string]float64:
		for k, v := range b {
			row[k] = v
		}
	}
	return row
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		return 0
	}
}

// Close returns the close column's full history, oldest first.
func (d *Data) Close() []float64 { return d.column("close") }

// Open returns the open column's full history, oldest first.
func (d *Data) Open() []float64 { return d.column("open") }

// High returns the high column's full history, oldest first.
func (d *Data) High() []float64 { return d.column("high") }

// Low returns the low column's full history, oldest first.
func (d *Data) Low() []float64 { return d.column("low") }

// Volume returns the volume column's full history, oldest first.
func (d *Data) Volume() []float64 { return d.column("volume") }

// Index returns the position of the most recently set bar.
func (d *Data) Index() int64 { return int64(len(d.bars) - 1) }

func (d *Data) column(name string) []float64 {
	field := name
	if mapped, ok := d.columnMap[name]; ok {
		field = mapped
	}
	out := make([]float64, len(d.bars))
	for i, row := range d.bars {
		out[i] = row[field]
	}
	return out
}
