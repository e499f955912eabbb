// Package performance aggregates ordered trade-return sequences into the
// statistics used for reporting and optimization ranking.
//
// The formulas are a reproducibility contract with previously published
// results; in particular the annualization exponent 365/num_trades treats each
// trade as one trading day regardless of actual event frequency. That is a
// known approximation and is kept as-is: changing it would silently reorder
// optimization rankings.
package performance

import (
	"math"

	"github.com/mankiwan/news-algo/internal/types"
)

// tradingDaysPerYear is the annualization base shared by the return and
// volatility calculations.
const tradingDaysPerYear = 365.0

// minVolatility is the threshold below which volatility is treated as zero
// and the Sharpe ratio as undefined.
const minVolatility = 1e-8

// Compute derives aggregate performance statistics from an ordered sequence of
// per-trade returns. An empty sequence yields the zero metrics record.
func Compute(returns []float64) types.PerformanceMetrics {
	numTrades := len(returns)
	if numTrades == 0 {
		return types.PerformanceMetrics{}
	}

	totalReturn := 1.0
	for _, r := range returns {
		totalReturn *= 1 + r
	}
	totalReturn -= 1

	annualizedReturn := math.Pow(1+totalReturn, tradingDaysPerYear/float64(numTrades)) - 1

	// Drawdown over the cumulative return curve. The first point is its own
	// running maximum, so the minimum drawdown starts at zero.
	maxDrawdown := 0.0
	cumulative := 1.0
	runningMax := math.Inf(-1)

	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > runningMax {
			runningMax = cumulative
		}

		drawdown := (cumulative - runningMax) / runningMax
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	volatility := 0.0
	sharpeRatio := 0.0

	if numTrades > 1 {
		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(numTrades)

		sumSquares := 0.0
		for _, r := range returns {
			deviation := r - mean
			sumSquares += deviation * deviation
		}

		// Sample standard deviation, annualized by the square root of the trade
		// count capped at one year of daily periods.
		stddev := math.Sqrt(sumSquares / float64(numTrades-1))
		volatility = stddev * math.Sqrt(math.Min(float64(numTrades), tradingDaysPerYear))

		if volatility > minVolatility {
			sharpeRatio = annualizedReturn / volatility
		}
	}

	calmarRatio := 0.0
	if maxDrawdown < 0 {
		calmarRatio = annualizedReturn / math.Abs(maxDrawdown)
	}

	var (
		numWins     int
		numLosses   int
		totalWins   float64
		totalLosses float64
	)

	for _, r := range returns {
		switch {
		case r > 0:
			numWins++
			totalWins += r
		case r < 0:
			numLosses++
			totalLosses += r
		}
	}

	winRate := float64(numWins) / float64(numTrades)

	avgWin := 0.0
	if numWins > 0 {
		avgWin = totalWins / float64(numWins)
	}

	avgLoss := 0.0
	if numLosses > 0 {
		avgLoss = totalLosses / float64(numLosses)
	}

	profitFactor := math.Inf(1)
	if totalLosses != 0 {
		profitFactor = math.Abs(totalWins / totalLosses)
	}

	return types.PerformanceMetrics{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualizedReturn,
		MaxDrawdown:      maxDrawdown,
		SharpeRatio:      sharpeRatio,
		CalmarRatio:      calmarRatio,
		NumTrades:        numTrades,
		Volatility:       volatility,
		WinRate:          winRate,
		AvgWin:           avgWin,
		AvgLoss:          avgLoss,
		ProfitFactor:     profitFactor,
	}
}
