package performance

import (
	"fmt"
	"io"
	"math"

	"github.com/mankiwan/news-algo/internal/types"
)

// WriteReport prints a formatted performance report to w.
func WriteReport(w io.Writer, metrics types.PerformanceMetrics) {
	if metrics.NumTrades == 0 {
		fmt.Fprintln(w, "\nNo performance metrics to display!")

		return
	}

	divider := "=================================================="

	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintln(w, "PERFORMANCE METRICS")
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "Total Return: %.4f (%.2f%%)\n", metrics.TotalReturn, metrics.TotalReturn*100)
	fmt.Fprintf(w, "Annualized Return: %.4f (%.2f%%)\n", metrics.AnnualizedReturn, metrics.AnnualizedReturn*100)
	fmt.Fprintf(w, "Maximum Drawdown: %.4f (%.2f%%)\n", metrics.MaxDrawdown, metrics.MaxDrawdown*100)
	fmt.Fprintf(w, "Sharpe Ratio: %.4f\n", metrics.SharpeRatio)
	fmt.Fprintf(w, "Calmar Ratio: %.4f\n", metrics.CalmarRatio)
	fmt.Fprintf(w, "Volatility (Annualized): %.4f (%.2f%%)\n", metrics.Volatility, metrics.Volatility*100)
	fmt.Fprintln(w, "\nTrading Statistics:")
	fmt.Fprintf(w, "Number of Trades: %d\n", metrics.NumTrades)
	fmt.Fprintf(w, "Win Rate: %.4f (%.2f%%)\n", metrics.WinRate, metrics.WinRate*100)
	fmt.Fprintf(w, "Average Win: %.4f (%.2f%%)\n", metrics.AvgWin, metrics.AvgWin*100)
	fmt.Fprintf(w, "Average Loss: %.4f (%.2f%%)\n", metrics.AvgLoss, metrics.AvgLoss*100)

	if math.IsInf(metrics.ProfitFactor, 1) {
		fmt.Fprintln(w, "Profit Factor: INF")
	} else {
		fmt.Fprintf(w, "Profit Factor: %.4f\n", metrics.ProfitFactor)
	}
}

// Assessment summarizes whether the strategy looks profitable.
type Assessment struct {
	// Profitable is the overall verdict.
	Profitable bool
	// Summary is a one-line verdict for display.
	Summary string
	// Criteria lists the individual checks, prefixed with [+], [~] or [-].
	Criteria []string
}

// Assess grades the metrics against simple profitability criteria: positive
// total return, Sharpe ratio, drawdown magnitude and win rate.
func Assess(metrics types.PerformanceMetrics) Assessment {
	if metrics.NumTrades == 0 {
		return Assessment{
			Profitable: false,
			Summary:    "No metrics available",
			Criteria:   nil,
		}
	}

	var criteria []string

	if metrics.TotalReturn > 0 {
		criteria = append(criteria, "[+] Positive total return")
	} else {
		criteria = append(criteria, "[-] Negative total return")
	}

	switch {
	case metrics.SharpeRatio > 1.0:
		criteria = append(criteria, "[+] Good Sharpe ratio (>1.0)")
	case metrics.SharpeRatio > 0.5:
		criteria = append(criteria, "[~] Moderate Sharpe ratio (>0.5)")
	default:
		criteria = append(criteria, "[-] Poor Sharpe ratio (<0.5)")
	}

	switch {
	case math.Abs(metrics.MaxDrawdown) < 0.1:
		criteria = append(criteria, "[+] Low drawdown (<10%)")
	case math.Abs(metrics.MaxDrawdown) < 0.2:
		criteria = append(criteria, "[~] Moderate drawdown (<20%)")
	default:
		criteria = append(criteria, "[-] High drawdown (>20%)")
	}

	switch {
	case metrics.WinRate > 0.6:
		criteria = append(criteria, "[+] High win rate (>60%)")
	case metrics.WinRate > 0.4:
		criteria = append(criteria, "[~] Moderate win rate (>40%)")
	default:
		criteria = append(criteria, "[-] Low win rate (<40%)")
	}

	var positive, moderate int

	for _, criterion := range criteria {
		switch criterion[:3] {
		case "[+]":
			positive++
		case "[~]":
			moderate++
		}
	}

	switch {
	case positive >= 3:
		return Assessment{Profitable: true, Summary: "Strategy appears profitable", Criteria: criteria}
	case positive+moderate >= 3:
		return Assessment{Profitable: true, Summary: "Strategy shows moderate promise", Criteria: criteria}
	default:
		return Assessment{Profitable: false, Summary: "Strategy needs improvement", Criteria: criteria}
	}
}
