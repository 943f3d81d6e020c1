package lookup

import (
	"errors"

	"polymarket-lab/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrNoPriceData = errors.New("no price data available")
	ErrOutOfRange  = errors.New("timestamp outside series range")
)

// BucketIndex returns the index of the bucket containing ts.
// Returns false if ts lies outside the sampled grid.
func BucketIndex(series *domain.ReconstructedSeries, ts int64) (int, bool) {
	if !series.Contains(ts) {
		return 0, false
	}
	return int((ts - series.StartMs) / series.IntervalMs), true
}

// PriceAt returns the price of the bucket containing target.
// If that bucket is undefined (gap-marked), the closest defined price before it is used.
// Returns ErrOutOfRange if target is outside the grid and ErrNoPriceData
// if no defined price exists at or before target.
func PriceAt(series *domain.ReconstructedSeries, target int64) (float64, error) {
	if series.IsEmpty() {
		return 0, ErrNoPriceData
	}

	idx, ok := BucketIndex(series, target)
	if !ok {
		return 0, ErrOutOfRange
	}

	// Find closest price at or before target
	for i := idx; i >= 0; i-- {
		if series.Points[i].HasPrice() {
			return *series.Points[i].Price, nil
		}
	}

	return 0, ErrNoPriceData
}

// TrailingPrices returns the defined prices of up to n buckets strictly before
// the bucket containing target, oldest first. Undefined buckets are skipped,
// so the result may be shorter than n. Returns nil if target is outside the grid.
func TrailingPrices(series *domain.ReconstructedSeries, target int64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	idx, ok := BucketIndex(series, target)
	if !ok {
		return nil
	}

	from := idx - n
	if from < 0 {
		from = 0
	}

	prices := make([]float64, 0, idx-from)
	for i := from; i < idx; i++ {
		if series.Points[i].HasPrice() {
			prices = append(prices, *series.Points[i].Price)
		}
	}
	return prices
}
