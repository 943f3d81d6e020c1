package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polymarket-lab/internal/domain"
)

func testMeta(resolved bool, winner string) *domain.MarketMetadata {
	return &domain.MarketMetadata{
		MarketID:       "m1",
		Outcomes:       [2]string{domain.OutcomeUp, domain.OutcomeDown},
		Resolved:       resolved,
		WinningOutcome: winner,
	}
}

// testSeries builds a 1000ms series starting at 10000. A negative price is a gap.
func testSeries(prices ...float64) *domain.ReconstructedSeries {
	s := &domain.ReconstructedSeries{
		MarketID:   "m1",
		IntervalMs: 1000,
		FillPolicy: domain.FillGapMark,
		StartMs:    10000,
	}
	for i, p := range prices {
		pt := &domain.SamplePoint{
			MarketID:    "m1",
			TimestampMs: s.StartMs + int64(i)*s.IntervalMs,
			IntervalMs:  s.IntervalMs,
			Source:      domain.SourceObserved,
		}
		if p >= 0 {
			v := p
			pt.Price = &v
		} else {
			pt.Source = domain.SourceGap
		}
		s.Points = append(s.Points, pt)
	}
	if len(prices) > 0 {
		s.EndMs = s.StartMs + int64(len(prices)-1)*s.IntervalMs
	}
	return s
}

func position(inventory float64, fills ...*domain.Fill) *domain.TraderPosition {
	p := &domain.TraderPosition{MarketID: "m1", Trader: "0xabc", Fills: fills, Inventory: inventory}
	if len(fills) > 0 {
		p.FirstTradeMs = fills[0].TimestampMs
		p.LastTradeMs = fills[len(fills)-1].TimestampMs
	}
	return p
}

func buy(ts int64, price float64) *domain.Fill {
	return &domain.Fill{TimestampMs: ts, Side: domain.SideBuy, Price: price, Size: 1}
}

func sell(ts int64, price float64) *domain.Fill {
	return &domain.Fill{TimestampMs: ts, Side: domain.SideSell, Price: price, Size: 1}
}

func TestScore_ProgrammingErrors(t *testing.T) {
	s := NewScorer(Config{})

	_, err := s.Score(position(0), testSeries(0.5), nil)
	assert.True(t, errors.Is(err, domain.ErrNilMetadata))

	_, err = s.Score(nil, testSeries(0.5), testMeta(false, ""))
	assert.True(t, errors.Is(err, ErrNilPosition))
}

func TestNewScorer_DefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultTrailingWindow, NewScorer(Config{}).Window())
	assert.Equal(t, 3, NewScorer(Config{TrailingWindow: 3}).Window())
}

func TestScore_NoTrades(t *testing.T) {
	report, err := NewScorer(Config{}).Score(position(0), testSeries(0.5, 0.6), testMeta(true, "Up"))
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyNoTrades, report.State)
	assert.False(t, report.Timing.MeanAdvantage.IsAvailable())
	assert.Equal(t, domain.BiasNeutral, report.Direction.Bias)
	assert.Equal(t, 0, report.Activity.GapCount)
}

// Trader activity recorded entirely before the market's first event.
func TestScore_ActivityBeforeFirstEvent(t *testing.T) {
	pos := position(2, buy(1000, 0.40), buy(2000, 0.45))

	report, err := NewScorer(Config{}).Score(pos, testSeries(0.5, 0.6, 0.7), testMeta(true, "Up"))
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyNoOverlap, report.State)
	assert.False(t, report.Timing.MeanAdvantage.IsAvailable())
	assert.Equal(t, domain.ErrNoOverlap.Error(), report.Timing.MeanAdvantage.Reason)
	assert.Empty(t, report.Timing.Fills)
	assert.Equal(t, domain.PhaseDistribution{}, report.Phases)

	// Position-only dimensions are still reported
	assert.Equal(t, domain.BiasCorrect, report.Direction.Bias)
	assert.Equal(t, 1, report.Activity.GapCount)
}

func TestScore_NoOverlapWithEmptySeries(t *testing.T) {
	pos := position(1, buy(1000, 0.40))

	report, err := NewScorer(Config{}).Score(pos, testSeries(), testMeta(false, ""))
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyNoOverlap, report.State)
}

func TestScore_Timing(t *testing.T) {
	// Buckets: 10000..15999
	series := testSeries(0.50, 0.60, 0.40, 0.70, 0.55, 0.65)
	pos := position(0,
		buy(14100, 0.45),  // window [0.5 0.6 0.4 0.7]: below 1 -> rank 0.25, adv 0.25
		sell(15100, 0.60), // window [0.6 0.4 0.7 0.55] (n=4): below 2, equal 1 -> 0.625, adv 0.125
	)

	report, err := NewScorer(Config{TrailingWindow: 4}).Score(pos, series, testMeta(false, ""))
	require.NoError(t, err)
	require.Equal(t, domain.StrategyScored, report.State)

	fills := report.Timing.Fills
	require.Len(t, fills, 2)

	assert.True(t, fills[0].Scored)
	assert.Equal(t, 4, fills[0].WindowSize)
	assert.InDelta(t, 0.25, fills[0].PercentileRank, 1e-12)
	assert.InDelta(t, 0.25, fills[0].Advantage, 1e-12)
	assert.InDelta(t, 0.55, fills[0].WindowMedian, 1e-12)

	assert.InDelta(t, 0.625, fills[1].PercentileRank, 1e-12)
	assert.InDelta(t, 0.125, fills[1].Advantage, 1e-12)

	assert.Equal(t, 2, report.Timing.ScoredFills)
	require.True(t, report.Timing.MeanAdvantage.IsAvailable())
	assert.InDelta(t, 0.1875, report.Timing.MeanAdvantage.Value, 1e-12)
}

func TestScore_FirstBucketFillIsUnscored(t *testing.T) {
	pos := position(1, buy(10500, 0.5))

	report, err := NewScorer(Config{}).Score(pos, testSeries(0.5, 0.6), testMeta(false, ""))
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyScored, report.State)
	assert.False(t, report.Timing.Fills[0].Scored)
	assert.Equal(t, 0, report.Timing.ScoredFills)
	assert.False(t, report.Timing.MeanAdvantage.IsAvailable())
}

func TestScore_GapsAreSkippedInWindow(t *testing.T) {
	pos := position(1, buy(13000, 0.5))

	report, err := NewScorer(Config{TrailingWindow: 3}).Score(pos, testSeries(0.4, -1, 0.6, 0.5), testMeta(false, ""))
	require.NoError(t, err)

	ft := report.Timing.Fills[0]
	assert.Equal(t, 2, ft.WindowSize)
	assert.InDelta(t, 0.5, ft.PercentileRank, 1e-12)
	assert.InDelta(t, 0.0, ft.Advantage, 1e-12)
}

func TestScore_Direction(t *testing.T) {
	series := testSeries(0.5, 0.5)
	tests := []struct {
		name      string
		inventory float64
		meta      *domain.MarketMetadata
		exposure  string
		bias      domain.DirectionalBias
	}{
		{"long primary wins", 5, testMeta(true, "Up"), "Up", domain.BiasCorrect},
		{"long primary loses", 5, testMeta(true, "Down"), "Up", domain.BiasIncorrect},
		{"short primary loses", -5, testMeta(true, "Up"), "Down", domain.BiasIncorrect},
		{"short primary wins", -5, testMeta(true, "Down"), "Down", domain.BiasCorrect},
		{"open market", 5, testMeta(false, ""), "Up", domain.BiasUndetermined},
		{"flat", 0, testMeta(true, "Up"), "", domain.BiasNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewScorer(Config{}).Score(position(tt.inventory, buy(10000, 0.5)), series, tt.meta)
			require.NoError(t, err)
			assert.Equal(t, tt.exposure, report.Direction.Exposure)
			assert.Equal(t, tt.bias, report.Direction.Bias)
			assert.Equal(t, tt.inventory, report.Direction.NetInventory)
		})
	}
}

func TestScore_Activity(t *testing.T) {
	series := testSeries(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5)
	pos := position(0,
		buy(10000, 0.5),
		buy(10500, 0.5),  // gap 500
		sell(11500, 0.5), // gap 1000
		sell(15500, 0.5), // gap 4000
	)

	report, err := NewScorer(Config{}).Score(pos, series, testMeta(false, ""))
	require.NoError(t, err)

	a := report.Activity
	assert.Equal(t, 3, a.GapCount)
	assert.InDelta(t, 1833.333333, a.MeanGapMs.Value, 1e-5)
	assert.Equal(t, 4000.0, a.MaxGapMs.Value)
	assert.InDelta(t, 2.0/3.0, a.BurstRatio.Value, 1e-12)
}

func TestScore_ActivitySingleFill(t *testing.T) {
	report, err := NewScorer(Config{}).Score(position(1, buy(10000, 0.5)), testSeries(0.5), testMeta(false, ""))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Activity.GapCount)
	assert.False(t, report.Activity.MeanGapMs.IsAvailable())
	assert.False(t, report.Activity.BurstRatio.IsAvailable())
}

func TestScore_Phases(t *testing.T) {
	// Grid [10000, 16000): thirds at 12000 and 14000
	series := testSeries(0.5, 0.5, 0.5, 0.5, 0.5, 0.5)
	pos := position(0,
		buy(5000, 0.5), // outside
		buy(10000, 0.5),
		buy(11999, 0.5),
		buy(12000, 0.5),
		sell(15999, 0.5),
		sell(16000, 0.5), // outside
	)

	report, err := NewScorer(Config{}).Score(pos, series, testMeta(false, ""))
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDistribution{Early: 2, Middle: 1, Late: 1}, report.Phases)
}
