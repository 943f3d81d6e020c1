package normalization

import (
	"polymarket-lab/internal/domain"
)

// bucket accumulates trades falling into one sampling window.
type bucket struct {
	notional   float64 // SUM(price * size)
	volume     float64 // SUM(size)
	buyVolume  float64 // SUM(size) WHERE side = 'buy'
	sellVolume float64 // SUM(size) WHERE side = 'sell'
	count      int     // COUNT(*)
}

func (b *bucket) empty() bool {
	return b.count == 0
}

// vwap returns the volume-weighted average price of the bucket.
func (b *bucket) vwap() float64 {
	if b.volume == 0 {
		return 0
	}
	return clampUnit(b.notional / b.volume)
}

// bucketEvents aggregates events into n fixed-width windows starting at startMs.
// Events must be sorted and lie in [startMs, startMs + n*intervalMs).
//
// Window alignment: index = floor((timestamp_ms - start_ms) / interval_ms)
func bucketEvents(events []*domain.TradeEvent, startMs, intervalMs int64, n int) []bucket {
	buckets := make([]bucket, n)

	for _, e := range events {
		idx := int((e.TimestampMs - startMs) / intervalMs)
		if idx < 0 || idx >= n {
			continue
		}

		b := &buckets[idx]
		b.notional += e.Price * e.Size
		b.volume += e.Size
		b.count++

		if e.Side == domain.SideBuy {
			b.buyVolume += e.Size
		} else if e.Side == domain.SideSell {
			b.sellVolume += e.Size
		}
	}

	return buckets
}

// VolumeProfile extracts per-bucket volume from a reconstructed series.
func VolumeProfile(series *domain.ReconstructedSeries) []domain.VolumeBucket {
	if series.IsEmpty() {
		return nil
	}

	result := make([]domain.VolumeBucket, len(series.Points))
	for i, p := range series.Points {
		result[i] = domain.VolumeBucket{
			TimestampMs: p.TimestampMs,
			Volume:      p.Volume,
			BuyVolume:   p.BuyVolume,
			SellVolume:  p.SellVolume,
		}
	}
	return result
}
