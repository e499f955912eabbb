package types

import (
	"github.com/mankiwan/news-algo/pkg/errors"
)

// PerformanceMetrics aggregates an ordered sequence of trade returns into the
// statistics reported by the strategy. A zero value represents the metrics of
// an empty return sequence.
type PerformanceMetrics struct {
	// TotalReturn is the compounded return over all trades.
	TotalReturn float64 `yaml:"total_return" csv:"total_return"`
	// AnnualizedReturn compounds the total return over 365/num_trades periods.
	// This treats each trade as one trading day, a deliberate approximation kept
	// for parity with historical results.
	AnnualizedReturn float64 `yaml:"annualized_return" csv:"annualized_return"`
	// MaxDrawdown is the most negative peak-to-trough move of the cumulative
	// return curve. Zero or negative.
	MaxDrawdown float64 `yaml:"max_drawdown" csv:"max_drawdown"`
	// SharpeRatio is the annualized return divided by annualized volatility.
	SharpeRatio float64 `yaml:"sharpe_ratio" csv:"sharpe_ratio"`
	// CalmarRatio is the annualized return divided by the drawdown magnitude.
	CalmarRatio float64 `yaml:"calmar_ratio" csv:"calmar_ratio"`
	// NumTrades is the number of trade returns aggregated.
	NumTrades int `yaml:"num_trades" csv:"num_trades"`
	// Volatility is the sample standard deviation of returns, annualized by
	// sqrt(min(num_trades, 365)).
	Volatility float64 `yaml:"volatility" csv:"volatility"`
	// WinRate is the fraction of trades with a positive return.
	WinRate float64 `yaml:"win_rate" csv:"win_rate"`
	// AvgWin is the mean positive return, zero if there are no winners.
	AvgWin float64 `yaml:"avg_win" csv:"avg_win"`
	// AvgLoss is the mean negative return, zero if there are no losers.
	AvgLoss float64 `yaml:"avg_loss" csv:"avg_loss"`
	// ProfitFactor is |sum of wins / sum of losses|, +Inf when there are no losses.
	ProfitFactor float64 `yaml:"profit_factor" csv:"profit_factor"`
}

// ObjectiveMetric selects the scalar statistic used to rank parameter
// combinations. It is a closed enumeration; each member maps at compile time
// to a field of PerformanceMetrics.
type ObjectiveMetric string

const (
	ObjectiveTotalReturn  ObjectiveMetric = "total_return"
	ObjectiveSharpeRatio  ObjectiveMetric = "sharpe_ratio"
	ObjectiveCalmarRatio  ObjectiveMetric = "calmar_ratio"
	ObjectiveWinRate      ObjectiveMetric = "win_rate"
	ObjectiveProfitFactor ObjectiveMetric = "profit_factor"
	// ObjectiveMaxDrawdown is ranked ascending (closer to zero is better). It is
	// available programmatically but not part of the default optimizer menu.
	ObjectiveMaxDrawdown ObjectiveMetric = "max_drawdown"
)

// SupportedObjectives returns the objective metrics offered for optimization.
func SupportedObjectives() []ObjectiveMetric {
	return []ObjectiveMetric{
		ObjectiveTotalReturn,
		ObjectiveSharpeRatio,
		ObjectiveCalmarRatio,
		ObjectiveWinRate,
		ObjectiveProfitFactor,
	}
}

// ParseObjectiveMetric validates a raw metric name against the enumeration.
func ParseObjectiveMetric(raw string) (ObjectiveMetric, error) {
	switch ObjectiveMetric(raw) {
	case ObjectiveTotalReturn, ObjectiveSharpeRatio, ObjectiveCalmarRatio,
		ObjectiveWinRate, ObjectiveProfitFactor, ObjectiveMaxDrawdown:
		return ObjectiveMetric(raw), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidObjective, "invalid objective metric: %s", raw)
	}
}

// Value extracts the objective's scalar from a metrics record.
func (o ObjectiveMetric) Value(m PerformanceMetrics) float64 {
	switch o {
	case ObjectiveTotalReturn:
		return m.TotalReturn
	case ObjectiveSharpeRatio:
		return m.SharpeRatio
	case ObjectiveCalmarRatio:
		return m.CalmarRatio
	case ObjectiveWinRate:
		return m.WinRate
	case ObjectiveProfitFactor:
		return m.ProfitFactor
	case ObjectiveMaxDrawdown:
		return m.MaxDrawdown
	default:
		return 0
	}
}

// Ascending reports whether smaller objective values rank higher. Only the
// drawdown objective ranks ascending; all menu objectives rank descending.
func (o ObjectiveMetric) Ascending() bool {
	return o == ObjectiveMaxDrawdown
}

// DisplayName returns a human-readable name for reports.
func (o ObjectiveMetric) DisplayName() string {
	switch o {
	case ObjectiveTotalReturn:
		return "Total Return"
	case ObjectiveSharpeRatio:
		return "Sharpe Ratio"
	case ObjectiveCalmarRatio:
		return "Calmar Ratio"
	case ObjectiveWinRate:
		return "Win Rate"
	case ObjectiveProfitFactor:
		return "Profit Factor"
	case ObjectiveMaxDrawdown:
		return "Max Drawdown"
	default:
		return string(o)
	}
}
