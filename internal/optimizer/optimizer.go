// Package optimizer sweeps (window, threshold) parameter pairs over the
// backtest pipeline and ranks the outcomes by an objective metric.
package optimizer

import (
	"math"
	"sort"
	"sync"

	"github.com/mankiwan/news-algo/internal/backtest"
	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/internal/performance"
	"github.com/mankiwan/news-algo/internal/types"
	"github.com/mankiwan/news-algo/pkg/errors"
	"go.uber.org/zap"
)

// Options configures a parameter sweep.
type Options struct {
	// Windows are the candidate signal windows in minutes.
	Windows []float64
	// Thresholds are the candidate exit thresholds in minutes.
	Thresholds []float64
	// Objective is the metric combinations are ranked by.
	Objective types.ObjectiveMetric
	// Costs is the flat cost model applied to every combination.
	Costs types.TradingCosts
	// ToleranceSeconds is the nearest-price tolerance; non-positive values use
	// the default.
	ToleranceSeconds int64
	// Parallelism bounds the number of combinations evaluated concurrently.
	// Values below 2 evaluate sequentially; rankings are identical either way.
	Parallelism int
	// OnProgress, if set, is called after each evaluated combination.
	OnProgress func(completed, total int)
}

// Optimizer enumerates valid parameter combinations and evaluates each one.
type Optimizer struct {
	log *logger.Logger
}

// New creates an optimizer.
func New(log *logger.Logger) *Optimizer {
	return &Optimizer{log: log}
}

// Run evaluates every valid (window, threshold) combination over the shared
// price series and news events and returns the surviving results ranked by the
// objective. Combinations yielding zero trades are skipped. The event filter
// runs once for the whole sweep since filtering does not depend on the
// parameters. Returns an ErrCodeNoValidCombinations error when the candidate
// sets produce no pair with threshold > window, or when every pair yields zero
// trades.
func (o *Optimizer) Run(
	series types.PriceSeries,
	events []types.NewsEvent,
	asset types.Asset,
	opts Options,
) ([]types.OptimizationResult, error) {
	if _, err := types.ParseObjectiveMetric(string(opts.Objective)); err != nil {
		return nil, err
	}

	combinations := EnumerateCombinations(opts.Windows, opts.Thresholds)
	if len(combinations) == 0 {
		return nil, errors.New(errors.ErrCodeNoValidCombinations,
			"no valid parameter combinations (threshold must be greater than window)")
	}

	tolerance := opts.ToleranceSeconds
	if tolerance <= 0 {
		tolerance = backtest.DefaultToleranceSeconds
	}

	filtered, err := backtest.FilterEvents(events, asset)
	if err != nil {
		return nil, err
	}

	if !series.IsSorted() {
		series.Sort()
	}

	o.log.Info("starting parameter optimization",
		zap.String("asset", string(asset)),
		zap.String("objective", string(opts.Objective)),
		zap.Int("combinations", len(combinations)),
		zap.Int("events", len(filtered)),
	)

	// One slot per combination so concurrent evaluation preserves the
	// enumeration order; nil slots mark zero-trade combinations.
	evaluated := make([]*types.OptimizationResult, len(combinations))

	evaluate := func(i int) {
		trades := backtest.BuildTrades(series, filtered, combinations[i], opts.Costs, tolerance)
		if len(trades) == 0 {
			return
		}

		metrics := performance.Compute(backtest.Returns(trades))
		evaluated[i] = &types.OptimizationResult{
			Combination:    combinations[i],
			Trades:         trades,
			Metrics:        metrics,
			ObjectiveValue: opts.Objective.Value(metrics),
		}
	}

	if opts.Parallelism > 1 {
		o.runParallel(len(combinations), opts.Parallelism, evaluate, opts.OnProgress)
	} else {
		for i := range combinations {
			evaluate(i)

			if opts.OnProgress != nil {
				opts.OnProgress(i+1, len(combinations))
			}
		}
	}

	results := make([]types.OptimizationResult, 0, len(combinations))
	for _, result := range evaluated {
		if result != nil {
			results = append(results, *result)
		}
	}

	if len(results) == 0 {
		return nil, errors.New(errors.ErrCodeNoValidCombinations,
			"every parameter combination yielded zero trades")
	}

	rank(results, opts.Objective)

	best := results[0]
	o.log.Info("optimization complete",
		zap.Int("tested", len(combinations)),
		zap.Int("valid", len(results)),
		zap.String("best_combination", best.Combination.String()),
		zap.Float64("best_objective", best.ObjectiveValue),
	)

	return results, nil
}

// runParallel evaluates combinations with a bounded worker pool. Progress
// callbacks are serialized.
func (o *Optimizer) runParallel(total, workers int, evaluate func(int), onProgress func(int, int)) {
	jobs := make(chan int)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				evaluate(i)

				if onProgress != nil {
					mu.Lock()
					completed++
					onProgress(completed, total)
					mu.Unlock()
				}
			}
		}()
	}

	for i := 0; i < total; i++ {
		jobs <- i
	}

	close(jobs)
	wg.Wait()
}

// EnumerateCombinations builds the valid cross product of window and threshold
// candidates: duplicates removed, ordered by window then threshold ascending,
// and only pairs with threshold > window retained. The ordering is the
// deterministic tie-break for equal objective values.
func EnumerateCombinations(windows, thresholds []float64) []types.ParameterCombination {
	windows = sortedUnique(windows)
	thresholds = sortedUnique(thresholds)

	combinations := make([]types.ParameterCombination, 0, len(windows)*len(thresholds))

	for _, window := range windows {
		for _, threshold := range thresholds {
			combination := types.ParameterCombination{
				WindowMinutes:    window,
				ThresholdMinutes: threshold,
			}
			if combination.IsValid() {
				combinations = append(combinations, combination)
			}
		}
	}

	return combinations
}

// rank orders results by objective value, best first: descending for every
// objective except the drawdown policy, which ranks ascending (closer to zero
// is better). The sort is stable, so ties keep enumeration order. NaN
// objective values sink to the bottom.
func rank(results []types.OptimizationResult, objective types.ObjectiveMetric) {
	ascending := objective.Ascending()

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].ObjectiveValue, results[j].ObjectiveValue

		if math.IsNaN(a) {
			return false
		}

		if math.IsNaN(b) {
			return true
		}

		if ascending {
			return a < b
		}

		return a > b
	})
}

func sortedUnique(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)

	unique := out[:0]
	for i, v := range out {
		if i == 0 || v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}

	return unique
}
