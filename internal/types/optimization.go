package types

import (
	"fmt"
	"math"
)

// ParameterCombination is one (window, threshold) pair tested during
// optimization. Both values are in minutes; a combination is only valid when
// the exit threshold exceeds the signal window.
type ParameterCombination struct {
	WindowMinutes    float64 `yaml:"window_minutes" csv:"window_minutes"`
	ThresholdMinutes float64 `yaml:"threshold_minutes" csv:"threshold_minutes"`
}

// IsValid reports whether the threshold exceeds the window.
func (p ParameterCombination) IsValid() bool {
	return p.ThresholdMinutes > p.WindowMinutes
}

// WindowSeconds returns the signal window as a second offset.
func (p ParameterCombination) WindowSeconds() int64 {
	return int64(math.Round(p.WindowMinutes * 60))
}

// ThresholdSeconds returns the exit threshold as a second offset.
func (p ParameterCombination) ThresholdSeconds() int64 {
	return int64(math.Round(p.ThresholdMinutes * 60))
}

// String formats the combination the way reports display it, e.g. "1.0min/10.0min".
func (p ParameterCombination) String() string {
	return fmt.Sprintf("%.1fmin/%.1fmin", p.WindowMinutes, p.ThresholdMinutes)
}

// OptimizationResult is the outcome of evaluating one parameter combination.
type OptimizationResult struct {
	// Combination is the tested (window, threshold) pair.
	Combination ParameterCombination
	// Trades are the simulated trades for the combination.
	Trades []Trade
	// Metrics are the aggregate statistics over the trades.
	Metrics PerformanceMetrics
	// ObjectiveValue is the ranking objective extracted from Metrics.
	ObjectiveValue float64
}
