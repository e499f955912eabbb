package types

import (
	"math"
	"sort"
)

// PricePoint is a single market price observation.
type PricePoint struct {
	// Timestamp is the observation time in seconds since epoch.
	Timestamp int64 `csv:"unix_timestamp"`
	// Price is the observed price.
	Price float64 `csv:"price"`
}

// IsValid reports whether the point carries a finite, positive-timestamp observation.
func (p PricePoint) IsValid() bool {
	return !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0)
}

// PriceSeries is a chronological series of price observations. The resolver
// requires ascending timestamp order; use Sort after loading from sources that
// do not guarantee it.
type PriceSeries []PricePoint

// Sort orders the series ascending by timestamp. The sort is stable so that
// duplicate timestamps keep their input order.
func (s PriceSeries) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Timestamp < s[j].Timestamp
	})
}

// IsSorted reports whether the series is in ascending timestamp order.
func (s PriceSeries) IsSorted() bool {
	return sort.SliceIsSorted(s, func(i, j int) bool {
		return s[i].Timestamp < s[j].Timestamp
	})
}
