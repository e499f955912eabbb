package backtest

import (
	"math"
	"sort"

	"github.com/mankiwan/news-algo/internal/types"
	"github.com/moznion/go-optional"
)

// DefaultToleranceSeconds is the maximum time gap between a query and the
// nearest price observation for a lookup to count, unless overridden.
const DefaultToleranceSeconds int64 = 120

// ResolvePrices looks up the nearest in-tolerance price for each query
// timestamp against a reference series sorted ascending by timestamp. One
// result is produced per query, in query order; queries with no observation
// within the tolerance resolve to None.
//
// Each lookup is a binary search over the reference series, so a batch of q
// queries costs O(q log n) regardless of series size.
func ResolvePrices(series types.PriceSeries, queries []int64, toleranceSeconds int64) []optional.Option[float64] {
	results := make([]optional.Option[float64], len(queries))

	if len(series) == 0 {
		for i := range results {
			results[i] = optional.None[float64]()
		}

		return results
	}

	for i, query := range queries {
		results[i] = resolveOne(series, query, toleranceSeconds)
	}

	return results
}

// resolveOne finds the reference point with the minimal absolute time
// difference to the query. Candidates are the points on either side of the
// binary-search insertion position, clamped to the series bounds; ties break
// toward the earlier point.
func resolveOne(series types.PriceSeries, query int64, toleranceSeconds int64) optional.Option[float64] {
	insertion := sort.Search(len(series), func(i int) bool {
		return series[i].Timestamp >= query
	})

	right := insertion
	if right > len(series)-1 {
		right = len(series) - 1
	}

	left := insertion - 1
	if left < 0 {
		left = 0
	}

	leftDiff := absDiff(query, series[left].Timestamp)
	rightDiff := absDiff(query, series[right].Timestamp)

	closest := right
	diff := rightDiff

	if leftDiff <= rightDiff {
		closest = left
		diff = leftDiff
	}

	if diff > toleranceSeconds {
		return optional.None[float64]()
	}

	price := series[closest].Price
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return optional.None[float64]()
	}

	return optional.Some(price)
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}

	return b - a
}
