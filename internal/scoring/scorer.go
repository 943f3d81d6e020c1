// Package scoring correlates a trader's fills with the reconstructed market series.
package scoring

import (
	"errors"
	"fmt"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/lookup"
	"polymarket-lab/internal/metrics"
)

// DefaultTrailingWindow is the number of preceding buckets each fill is ranked against.
const DefaultTrailingWindow = 10

// ErrNilPosition is returned when Score is called without a position.
var ErrNilPosition = errors.New("trader position is nil")

// Config configures the scorer.
type Config struct {
	TrailingWindow int // preceding buckets per fill, <= 0 means DefaultTrailingWindow
}

// Scorer computes StrategyReports. Stateless and safe for concurrent use.
type Scorer struct {
	window int
}

// NewScorer creates a Scorer.
func NewScorer(cfg Config) *Scorer {
	window := cfg.TrailingWindow
	if window <= 0 {
		window = DefaultTrailingWindow
	}
	return &Scorer{window: window}
}

// Window returns the trailing window size in buckets.
func (s *Scorer) Window() int {
	return s.window
}

// Score builds the strategy report for one trader position.
//
// States:
//   - no-trades: the trader has no fills in this market
//   - no-overlap: every fill lies outside the series grid; timing is not computed
//   - scored: timing, direction, activity and phases are all computed
//
// Direction and activity depend only on the position and are filled in every state.
func (s *Scorer) Score(position *domain.TraderPosition, series *domain.ReconstructedSeries, meta *domain.MarketMetadata) (*domain.StrategyReport, error) {
	if meta == nil {
		return nil, domain.ErrNilMetadata
	}
	if position == nil {
		return nil, ErrNilPosition
	}

	report := &domain.StrategyReport{
		MarketID:  meta.MarketID,
		Trader:    position.Trader,
		Position:  position,
		Direction: direction(position, meta),
		Activity:  activity(position, series),
	}

	if position.IsEmpty() {
		report.State = domain.StrategyNoTrades
		report.Timing.MeanAdvantage = domain.Unavailable(&domain.InsufficientDataError{Metric: "timing", Required: 1, Got: 0})
		return report, nil
	}

	if !overlaps(position, series) {
		report.State = domain.StrategyNoOverlap
		report.Timing.MeanAdvantage = domain.Unavailable(domain.ErrNoOverlap)
		return report, nil
	}

	report.State = domain.StrategyScored
	report.Timing = s.timing(position, series)
	report.Phases = phases(position, series)

	return report, nil
}

// overlaps reports whether at least one fill falls inside the series grid.
func overlaps(position *domain.TraderPosition, series *domain.ReconstructedSeries) bool {
	for _, f := range position.Fills {
		if series.Contains(f.TimestampMs) {
			return true
		}
	}
	return false
}

// timing ranks every fill against the trailing window of reconstructed prices.
func (s *Scorer) timing(position *domain.TraderPosition, series *domain.ReconstructedSeries) domain.TimingScore {
	score := domain.TimingScore{
		Fills: make([]domain.FillTiming, len(position.Fills)),
	}

	var advantages []float64
	for i, f := range position.Fills {
		ft := domain.FillTiming{
			TimestampMs: f.TimestampMs,
			Side:        f.Side,
			Price:       f.Price,
		}

		window := lookup.TrailingPrices(series, f.TimestampMs, s.window)
		if len(window) > 0 {
			ft.WindowSize = len(window)
			ft.WindowMedian = metrics.Median(window)
			ft.PercentileRank = midRank(f.Price, window)
			ft.Advantage = advantage(f.Side, ft.PercentileRank)
			ft.Scored = true
			advantages = append(advantages, ft.Advantage)
		}

		score.Fills[i] = ft
	}

	score.ScoredFills = len(advantages)
	if len(advantages) == 0 {
		score.MeanAdvantage = domain.Unavailable(&domain.InsufficientDataError{Metric: "timing", Required: 1, Got: 0})
		return score
	}

	sum := 0.0
	for _, a := range advantages {
		sum += a
	}
	score.MeanAdvantage = domain.Available(sum / float64(len(advantages)))
	return score
}

// midRank returns (below + 0.5*equal) / n: the share of window prices under
// price, counting ties as half.
func midRank(price float64, window []float64) float64 {
	below, equal := 0, 0
	for _, w := range window {
		switch {
		case w < price:
			below++
		case w == price:
			equal++
		}
	}
	return (float64(below) + 0.5*float64(equal)) / float64(len(window))
}

// advantage is positive for buys below the trailing distribution and sells above it.
func advantage(side domain.Side, rank float64) float64 {
	if side == domain.SideSell {
		return rank - 0.5
	}
	return 0.5 - rank
}

// direction classifies net inventory against the resolution.
func direction(position *domain.TraderPosition, meta *domain.MarketMetadata) domain.Direction {
	d := domain.Direction{NetInventory: position.Inventory}

	switch {
	case position.Inventory > 0:
		d.Exposure = meta.PrimaryOutcome()
	case position.Inventory < 0:
		d.Exposure = meta.SecondaryOutcome()
	default:
		d.Bias = domain.BiasNeutral
		return d
	}

	resolution, err := meta.ResolutionPrice()
	if err != nil {
		d.Bias = domain.BiasUndetermined
		return d
	}

	primaryWon := resolution == 1.0
	if (position.Inventory > 0) == primaryWon {
		d.Bias = domain.BiasCorrect
	} else {
		d.Bias = domain.BiasIncorrect
	}
	return d
}

// activity summarizes inter-trade gaps.
func activity(position *domain.TraderPosition, series *domain.ReconstructedSeries) domain.ActivityPattern {
	var a domain.ActivityPattern

	n := len(position.Fills)
	if n < 2 {
		missing := domain.Unavailable(&domain.InsufficientDataError{Metric: "activity", Required: 2, Got: n})
		a.MeanGapMs = missing
		a.MaxGapMs = missing
		a.BurstRatio = missing
		return a
	}

	a.GapCount = n - 1
	var sum, maxGap int64
	for i := 1; i < n; i++ {
		gap := position.Fills[i].TimestampMs - position.Fills[i-1].TimestampMs
		sum += gap
		if gap > maxGap {
			maxGap = gap
		}
	}
	a.MeanGapMs = domain.Available(float64(sum) / float64(a.GapCount))
	a.MaxGapMs = domain.Available(float64(maxGap))

	if series == nil || series.IntervalMs <= 0 {
		a.BurstRatio = domain.Unavailable(fmt.Errorf("burst ratio: %w", domain.ErrInvalidInterval))
		return a
	}

	bursts := 0
	for i := 1; i < n; i++ {
		if position.Fills[i].TimestampMs-position.Fills[i-1].TimestampMs <= series.IntervalMs {
			bursts++
		}
	}
	a.BurstRatio = domain.Available(float64(bursts) / float64(a.GapCount))
	return a
}

// phases counts fills in the early, middle and late thirds of the series grid.
// Fills outside the grid are not counted.
func phases(position *domain.TraderPosition, series *domain.ReconstructedSeries) domain.PhaseDistribution {
	var p domain.PhaseDistribution

	span := series.GridEndMs() - series.StartMs
	if span <= 0 {
		return p
	}

	for _, f := range position.Fills {
		if !series.Contains(f.TimestampMs) {
			continue
		}
		switch third := (f.TimestampMs - series.StartMs) * 3 / span; third {
		case 0:
			p.Early++
		case 1:
			p.Middle++
		default:
			p.Late++
		}
	}
	return p
}
