// Package backtest implements the news-driven trade simulation: nearest-price
// resolution, event filtering, trade construction and the single-run engine
// that ties them to the performance metrics.
package backtest

import (
	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/internal/performance"
	"github.com/mankiwan/news-algo/internal/types"
	"go.uber.org/zap"
)

// Engine runs a single backtest pass for one parameter configuration.
type Engine struct {
	config Config
	log    *logger.Logger
}

// Result is the outcome of one backtest run. Zero events or zero trades are
// normal terminal states, reported through the counts rather than errors.
type Result struct {
	// Trades are the simulated trades in filter-then-build order.
	Trades []types.Trade
	// Metrics are the aggregate statistics over the trade returns.
	Metrics types.PerformanceMetrics
	// NumEvents is the number of events that passed the filter.
	NumEvents int
}

// NewEngine validates the config and creates an engine.
func NewEngine(config Config, log *logger.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config: config,
		log:    log,
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Run executes the backtest over a price series and a news event list. The
// series is sorted in place if it is not already in ascending timestamp order;
// nothing else is mutated.
func (e *Engine) Run(series types.PriceSeries, events []types.NewsEvent) (Result, error) {
	if !series.IsSorted() {
		series.Sort()
	}

	filtered, err := FilterEvents(events, e.config.Asset)
	if err != nil {
		return Result{}, err
	}

	if len(filtered) == 0 {
		e.log.Info("no matching news events",
			zap.String("asset", string(e.config.Asset)),
			zap.Int("total_events", len(events)),
		)

		return Result{Trades: nil, Metrics: types.PerformanceMetrics{}, NumEvents: 0}, nil
	}

	e.log.Debug("processing news events",
		zap.String("asset", string(e.config.Asset)),
		zap.Int("events", len(filtered)),
	)

	trades := BuildTrades(series, filtered, e.config.Combination(), e.config.Costs, e.config.ToleranceSeconds)
	if len(trades) == 0 {
		e.log.Info("no trades survived price resolution",
			zap.String("asset", string(e.config.Asset)),
			zap.Int("events", len(filtered)),
		)

		return Result{Trades: nil, Metrics: types.PerformanceMetrics{}, NumEvents: len(filtered)}, nil
	}

	metrics := performance.Compute(Returns(trades))

	e.log.Info("backtest run complete",
		zap.String("asset", string(e.config.Asset)),
		zap.String("combination", e.config.Combination().String()),
		zap.Int("trades", len(trades)),
		zap.Float64("total_return", metrics.TotalReturn),
	)

	return Result{
		Trades:    trades,
		Metrics:   metrics,
		NumEvents: len(filtered),
	}, nil
}
