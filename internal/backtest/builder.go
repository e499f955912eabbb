package backtest

import (
	"math"
	"strings"

	"github.com/mankiwan/news-algo/internal/types"
)

// BuildTrades simulates one trade per filtered event: it resolves prices at
// the event time, event time + window and event time + threshold in three
// batched lookups, opens a position in the direction of the window move and
// realizes the return at the threshold, net of the cost adjustment.
//
// Events missing any of the three prices are dropped, as are events whose base
// price is zero (the returns would be undefined). An empty result is a normal
// outcome for sparse price coverage or a tight tolerance. Output order follows
// the input event order. The price series must be sorted ascending.
func BuildTrades(
	series types.PriceSeries,
	events []types.NewsEvent,
	combination types.ParameterCombination,
	costs types.TradingCosts,
	toleranceSeconds int64,
) []types.Trade {
	if len(events) == 0 {
		return nil
	}

	windowOffset := combination.WindowSeconds()
	thresholdOffset := combination.ThresholdSeconds()

	eventTimes := make([]int64, len(events))
	windowTimes := make([]int64, len(events))
	thresholdTimes := make([]int64, len(events))

	for i, event := range events {
		ts := event.Timestamp.Unwrap()
		eventTimes[i] = ts
		windowTimes[i] = ts + windowOffset
		thresholdTimes[i] = ts + thresholdOffset
	}

	pricesCurrent := ResolvePrices(series, eventTimes, toleranceSeconds)
	pricesWindow := ResolvePrices(series, windowTimes, toleranceSeconds)
	pricesThreshold := ResolvePrices(series, thresholdTimes, toleranceSeconds)

	adjustment := 0.0
	if !costs.IsZero() {
		// |position| is always 1, so the adjustment is the same for every trade.
		adjustment = costs.Adjustment(1)
	}

	trades := make([]types.Trade, 0, len(events))

	for i, event := range events {
		if pricesCurrent[i].IsNone() || pricesWindow[i].IsNone() || pricesThreshold[i].IsNone() {
			continue
		}

		priceCurrent := pricesCurrent[i].Unwrap()
		priceWindow := pricesWindow[i].Unwrap()
		priceThreshold := pricesThreshold[i].Unwrap()

		if priceCurrent == 0 {
			continue
		}

		changeWindow := (priceWindow - priceCurrent) / priceCurrent
		changeThreshold := (priceThreshold - priceCurrent) / priceCurrent

		position := -1
		if changeWindow > 0 {
			position = 1
		}

		tradeReturn := float64(position)*changeThreshold - adjustment
		if math.IsNaN(tradeReturn) || math.IsInf(tradeReturn, 0) {
			continue
		}

		trades = append(trades, types.Trade{
			Timestamp:            eventTimes[i],
			Token:                strings.ToUpper(strings.TrimSpace(event.Token)),
			PriceCurrent:         priceCurrent,
			PriceWindow:          priceWindow,
			PriceThreshold:       priceThreshold,
			PriceChangeWindow:    changeWindow,
			Position:             position,
			PriceChangeThreshold: changeThreshold,
			Return:               tradeReturn,
		})
	}

	return trades
}

// Returns extracts the ordered return sequence from a trade list.
func Returns(trades []types.Trade) []float64 {
	returns := make([]float64, len(trades))
	for i, trade := range trades {
		returns[i] = trade.Return
	}

	return returns
}
