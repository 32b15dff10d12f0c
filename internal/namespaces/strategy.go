package namespaces

import "github.com/firscript-run/firscript/internal/pyscript"

// Strategy implements the `strategy` namespace: the position-management
// calls (long/short/close) a strategy script's process() drives, plus a
// `strategy.position` attribute exposing the current position as a
// dot-accessible snapshot (e.g. `strategy.position.qty`).
type Strategy struct {
	shared map[string]any

	side   string // "", "long", or "short"
	qty    float64
	entry  float64
	orders []Order
}

// Order records one position change, the way a backtest report would.
type Order struct {
	Side string
	Qty  float64
	// Price is the price the caller supplied at the time of the call; the
	// core has no notion of price itself, so it is whatever the script
	// passed (commonly the latest close from the data namespace).
	Price float64
}

// NewStrategy returns a Strategy namespace sharing shared with the rest of
// the registry's namespaces.
func NewStrategy(shared map[string]any) *Strategy {
	return &Strategy{shared: shared}
}

// Long opens or adds to a long position of size qty at price.
func (s *Strategy) Long(qty float64, price float64) {
	s.side = "long"
	s.qty += qty
	s.entry = price
	s.orders = append(s.orders, Order{Side: "long", Qty: qty, Price: price})
}

// Short opens or adds to a short position of size qty at price.
func (s *Strategy) Short(qty float64, price float64) {
	s.side = "short"
	s.qty += qty
	s.entry = price
	s.orders = append(s.orders, Order{Side: "short", Qty: qty, Price: price})
}

// Close flattens the current position at price.
func (s *Strategy) Close(price float64) {
	if s.side == "" {
		return
	}
	s.orders = append(s.orders, Order{Side: "close", Qty: s.qty, Price: price})
	s.side = ""
	s.qty = 0
	s.entry = 0
}

// ManualAttr implements runtime.ManualAttr, serving `strategy.position` as
// a snapshot dict rather than a method call.
func (s *Strategy) ManualAttr(name string) (any, bool, error) {
	if name != "position" {
		return nil, false, nil
	}
	d := pyscript.NewDict()
	d.Set("side", s.side)
	d.Set("qty", s.qty)
	d.Set("entry_price", s.entry)
	return d, true, nil
}

// Orders returns the full order history, used by the driver/CLI to render
// a run's trade log.
func (s *Strategy) Orders() []Order { return s.orders }

// GenerateMetadata implements the optional namespace registry protocol,
// surfacing the order history alongside a run's other metadata.
func (s *Strategy) GenerateMetadata() any {
	if len(s.orders) == 0 {
		return nil
	}
	return s.orders
}
