package normalization

import (
	"fmt"

	"polymarket-lab/internal/domain"
)

// MaxSeriesPoints caps the grid size so a tiny interval over a long market
// cannot exhaust memory.
const MaxSeriesPoints = 5_000_000

// SeriesConfig configures series reconstruction.
type SeriesConfig struct {
	IntervalMs int64             // sampling interval, must be > 0
	FillPolicy domain.FillPolicy // empty means domain.DefaultFillPolicy
}

// Validate checks the configuration.
func (c SeriesConfig) Validate() error {
	if c.IntervalMs <= 0 {
		return fmt.Errorf("%w: got %d ms", domain.ErrInvalidInterval, c.IntervalMs)
	}
	if c.FillPolicy != "" && !c.FillPolicy.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFillPolicy, c.FillPolicy)
	}
	return nil
}

func (c SeriesConfig) policy() domain.FillPolicy {
	if c.FillPolicy == "" {
		return domain.DefaultFillPolicy
	}
	return c.FillPolicy
}

// ParseFillPolicy parses a policy name. Empty input yields the default.
func ParseFillPolicy(s string) (domain.FillPolicy, error) {
	if s == "" {
		return domain.DefaultFillPolicy, nil
	}
	p := domain.FillPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownFillPolicy, s)
	}
	return p, nil
}

// Reconstruct builds a regularly sampled series from normalized events.
//
// The grid starts at the first event and bucket i covers
// [start + i*interval, start + (i+1)*interval). It runs to the bucket containing
// end = min(last event, resolution time); later events are excluded.
// Non-empty buckets carry VWAP and SUM(size); empty buckets are filled per policy.
//
// A market with no events yields an empty series. A single-event market with a
// known resolution time extends the grid to resolution, holding the price
// (or leaving it undefined under gap-mark).
func Reconstruct(events []*domain.TradeEvent, meta *domain.MarketMetadata, cfg SeriesConfig) (*domain.ReconstructedSeries, error) {
	if meta == nil {
		return nil, domain.ErrNilMetadata
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	series := &domain.ReconstructedSeries{
		MarketID:   meta.MarketID,
		IntervalMs: cfg.IntervalMs,
		FillPolicy: cfg.policy(),
	}

	if len(events) == 0 {
		return series, nil
	}

	if ValidateEventOrdering(events) != nil {
		sorted := make([]*domain.TradeEvent, len(events))
		copy(sorted, events)
		SortEvents(sorted)
		events = sorted
	}

	start := events[0].TimestampMs
	end := events[len(events)-1].TimestampMs
	if meta.HasResolutionTime() {
		if meta.ResolutionTimeMs < end {
			end = meta.ResolutionTimeMs
		}
		if len(events) == 1 && meta.ResolutionTimeMs > start {
			end = meta.ResolutionTimeMs
		}
	}
	if end < start {
		// Every event is after resolution
		return series, nil
	}

	span := (end-start)/cfg.IntervalMs + 1
	if span > MaxSeriesPoints {
		return nil, fmt.Errorf("series would have %d points (max %d): increase sampling interval", span, MaxSeriesPoints)
	}
	n := int(span)

	inRange := events
	for i, e := range events {
		if e.TimestampMs > end {
			inRange = events[:i]
			break
		}
	}

	buckets := bucketEvents(inRange, start, cfg.IntervalMs, n)
	points := make([]*domain.SamplePoint, n)
	cumulative := 0.0

	for i := range buckets {
		b := &buckets[i]
		cumulative += b.volume

		p := &domain.SamplePoint{
			MarketID:         meta.MarketID,
			TimestampMs:      start + int64(i)*cfg.IntervalMs,
			IntervalMs:       cfg.IntervalMs,
			Volume:           b.volume,
			BuyVolume:        b.buyVolume,
			SellVolume:       b.sellVolume,
			CumulativeVolume: cumulative,
			TradeCount:       b.count,
		}
		if !b.empty() {
			price := b.vwap()
			p.Price = &price
			p.Source = domain.SourceObserved
		}
		points[i] = p
	}

	applyFillPolicy(points, series.FillPolicy)

	series.StartMs = start
	series.EndMs = end
	series.Points = points
	return series, nil
}
