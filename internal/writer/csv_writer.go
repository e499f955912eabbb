// Package writer persists backtest outputs: trades, metrics and optimization
// rankings, one timestamped run directory per invocation.
package writer

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/internal/types"
	"github.com/mankiwan/news-algo/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RunSummary describes one persisted backtest run.
type RunSummary struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id"`
	// Timestamp is when the run was executed.
	Timestamp time.Time `yaml:"timestamp"`
	// Asset is the traded asset.
	Asset types.Asset `yaml:"asset"`
	// Combination is the (window, threshold) pair of the run; for an optimized
	// run, the best combination found.
	Combination types.ParameterCombination `yaml:"combination"`
	// NumTrades is the number of simulated trades.
	NumTrades int `yaml:"num_trades"`
	// Objective names the ranking metric for optimized runs, empty otherwise.
	Objective string `yaml:"objective,omitempty"`
}

// ResultWriter writes run outputs into a timestamped directory under a base
// directory.
type ResultWriter struct {
	runID  string
	runDir string
	log    *logger.Logger
}

// NewResultWriter creates the run directory under baseDir.
func NewResultWriter(baseDir string, log *logger.Logger) (*ResultWriter, error) {
	runDir := filepath.Join(baseDir, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeResultsWriteFailed, err, "failed to create run directory %s", runDir)
	}

	return &ResultWriter{
		runID:  uuid.NewString(),
		runDir: runDir,
		log:    log,
	}, nil
}

// RunID returns the unique identifier of this run.
func (w *ResultWriter) RunID() string {
	return w.runID
}

// RunDir returns the directory outputs are written into.
func (w *ResultWriter) RunDir() string {
	return w.runDir
}

// WriteTrades writes one CSV row per trade, in the given order.
func (w *ResultWriter) WriteTrades(trades []types.Trade) (string, error) {
	path := filepath.Join(w.runDir, "trades.csv")

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeResultsWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	csvWriter := csv.NewWriter(file)

	header := []string{
		"unix_timestamp", "token", "price_current", "price_window", "price_threshold",
		"price_change_window", "position", "price_change_threshold", "trade_return",
	}
	if err := csvWriter.Write(header); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write trades header", err)
	}

	for _, trade := range trades {
		record := []string{
			strconv.FormatInt(trade.Timestamp, 10),
			trade.Token,
			formatFloat(trade.PriceCurrent),
			formatFloat(trade.PriceWindow),
			formatFloat(trade.PriceThreshold),
			formatFloat(trade.PriceChangeWindow),
			strconv.Itoa(trade.Position),
			formatFloat(trade.PriceChangeThreshold),
			formatFloat(trade.Return),
		}
		if err := csvWriter.Write(record); err != nil {
			return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write trade row", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to flush trades file", err)
	}

	w.log.Info("wrote trades",
		zap.String("path", path),
		zap.Int("trades", len(trades)),
	)

	return path, nil
}

// WriteMetrics writes the metrics record as YAML.
func (w *ResultWriter) WriteMetrics(metrics types.PerformanceMetrics) (string, error) {
	path := filepath.Join(w.runDir, "metrics.yaml")

	data, err := yaml.Marshal(metrics)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to marshal metrics", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(errors.ErrCodeResultsWriteFailed, err, "failed to write %s", path)
	}

	return path, nil
}

// WriteSummary writes the run summary as YAML.
func (w *ResultWriter) WriteSummary(summary RunSummary) (string, error) {
	summary.ID = w.runID

	path := filepath.Join(w.runDir, "run.yaml")

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to marshal run summary", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(errors.ErrCodeResultsWriteFailed, err, "failed to write %s", path)
	}

	return path, nil
}

// WriteOptimizationResults writes one CSV row per tested combination with all
// computed metrics, in ranking order.
func (w *ResultWriter) WriteOptimizationResults(results []types.OptimizationResult, objective types.ObjectiveMetric) (string, error) {
	path := filepath.Join(w.runDir, fmt.Sprintf("optimization_%s.csv", objective))

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeResultsWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	csvWriter := csv.NewWriter(file)

	header := []string{
		"window_minutes", "threshold_minutes", "trades",
		"total_return", "annualized_return", "sharpe_ratio", "calmar_ratio",
		"max_drawdown", "volatility", "win_rate", "avg_win", "avg_loss",
		"profit_factor", "objective_value",
	}
	if err := csvWriter.Write(header); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write optimization header", err)
	}

	for _, result := range results {
		record := []string{
			formatFloat(result.Combination.WindowMinutes),
			formatFloat(result.Combination.ThresholdMinutes),
			strconv.Itoa(result.Metrics.NumTrades),
			formatFloat(result.Metrics.TotalReturn),
			formatFloat(result.Metrics.AnnualizedReturn),
			formatFloat(result.Metrics.SharpeRatio),
			formatFloat(result.Metrics.CalmarRatio),
			formatFloat(result.Metrics.MaxDrawdown),
			formatFloat(result.Metrics.Volatility),
			formatFloat(result.Metrics.WinRate),
			formatFloat(result.Metrics.AvgWin),
			formatFloat(result.Metrics.AvgLoss),
			formatFloat(result.Metrics.ProfitFactor),
			formatFloat(result.ObjectiveValue),
		}
		if err := csvWriter.Write(record); err != nil {
			return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write optimization row", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to flush optimization file", err)
	}

	w.log.Info("wrote optimization results",
		zap.String("path", path),
		zap.Int("combinations", len(results)),
	)

	return path, nil
}

// formatFloat renders floats compactly; infinities become "inf"/"-inf" so the
// CSV stays parseable.
func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}

	if math.IsInf(v, -1) {
		return "-inf"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
