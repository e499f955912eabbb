package types

// Trade is one simulated trade derived from a news event and three resolved
// prices. Trades are immutable once built.
type Trade struct {
	// Timestamp is the news event time in seconds since epoch.
	Timestamp int64 `csv:"unix_timestamp"`
	// Token is the normalized (upper-cased, trimmed) token of the source event.
	Token string `csv:"token"`
	// PriceCurrent is the price resolved at the event time.
	PriceCurrent float64 `csv:"price_current"`
	// PriceWindow is the price resolved at event time + window.
	PriceWindow float64 `csv:"price_window"`
	// PriceThreshold is the price resolved at event time + threshold.
	PriceThreshold float64 `csv:"price_threshold"`
	// PriceChangeWindow is the fractional price move over the signal window.
	PriceChangeWindow float64 `csv:"price_change_window"`
	// Position is the directional bet: +1 long, -1 short. A non-positive window
	// move opens a short.
	Position int `csv:"position"`
	// PriceChangeThreshold is the fractional price move at the exit threshold.
	PriceChangeThreshold float64 `csv:"price_change_threshold"`
	// Return is the realized per-trade return after the cost adjustment.
	Return float64 `csv:"trade_return"`
}

// TradingCosts configures the flat per-trade cost model. Both fields default
// to zero; the cost adjustment charged per trade is
// 2 * (TransactionCost + Slippage) * |position|, covering entry and exit.
type TradingCosts struct {
	TransactionCost float64 `yaml:"transaction_cost" validate:"gte=0"`
	Slippage        float64 `yaml:"slippage" validate:"gte=0"`
}

// Adjustment returns the round-trip cost deducted from a trade's gross return.
func (c TradingCosts) Adjustment(position int) float64 {
	abs := position
	if abs < 0 {
		abs = -abs
	}

	return 2 * (c.TransactionCost + c.Slippage) * float64(abs)
}

// IsZero reports whether the configuration charges no costs.
func (c TradingCosts) IsZero() bool {
	return c.TransactionCost == 0 && c.Slippage == 0
}
