package domain

// MetricStatus says whether a report field could be computed.
type MetricStatus string

// Metric status constants
const (
	MetricAvailable   MetricStatus = "available"
	MetricUnavailable MetricStatus = "unavailable"
)

// Metric is a report field that may be unavailable.
type Metric struct {
	Value  float64
	Status MetricStatus
	Reason string // set when unavailable
}

// Available constructs an available metric.
func Available(v float64) Metric {
	return Metric{Value: v, Status: MetricAvailable}
}

// Unavailable constructs an unavailable metric with the error text as reason.
func Unavailable(err error) Metric {
	m := Metric{Status: MetricUnavailable}
	if err != nil {
		m.Reason = err.Error()
	}
	return m
}

// IsAvailable reports whether the metric has a value.
func (m Metric) IsAvailable() bool {
	return m.Status == MetricAvailable
}

// Consensus label when the final price sits exactly on the midpoint.
const ConsensusNeutral = "neutral"

// VolumeBucket is the volume profile entry for one sample.
type VolumeBucket struct {
	TimestampMs int64
	Volume      float64
	BuyVolume   float64
	SellVolume  float64
}

// TradeStats summarizes the normalized trade tape.
type TradeStats struct {
	TradeCount      int
	UniqueTraders   int
	BuyCount        int
	SellCount       int
	BuyVolume       float64
	SellVolume      float64
	MeanTradeSize   float64
	MedianTradeSize float64
	LargestTrade    float64
	TotalNotional   float64
}

// AnalyticsReport is the market-level output. Never mutated after construction.
type AnalyticsReport struct {
	MarketID   string
	Slug       string
	FillPolicy FillPolicy
	IntervalMs int64

	// Volume profile
	SampleCount           int
	TotalVolume           float64
	BuyVolume             float64
	SellVolume            float64
	VolumeByBucket        []VolumeBucket
	PeakVolumeTimestampMs *int64 // nil when no bucket carries volume

	// Price
	Volatility       Metric // population stddev of bucket-to-bucket changes
	OutcomeBalance   Metric // final price - 0.5
	ConsensusOutcome string // outcome favored by the final price, or ConsensusNeutral
	OpenPrice        Metric
	FinalPrice       Metric
	HighPrice        Metric
	LowPrice         Metric
	VWAP             Metric
	PriceP10         Metric
	PriceMedian      Metric
	PriceP90         Metric

	// Resolution context
	Resolved       bool
	WinningOutcome string

	// Tape statistics, nil unless computed from events
	Trades *TradeStats
}

// StrategyState is the overall state of a StrategyReport.
type StrategyState string

// Strategy state constants
const (
	StrategyScored    StrategyState = "scored"
	StrategyNoTrades  StrategyState = "no-trades"
	StrategyNoOverlap StrategyState = "no-overlap"
)

// DirectionalBias classifies net exposure against the resolution.
type DirectionalBias string

// Directional bias constants
const (
	BiasCorrect      DirectionalBias = "correct"
	BiasIncorrect    DirectionalBias = "incorrect"
	BiasNeutral      DirectionalBias = "neutral"
	BiasUndetermined DirectionalBias = "undetermined"
)

// FillTiming is the timing breakdown for one fill.
type FillTiming struct {
	TimestampMs    int64
	Side           Side
	Price          float64
	WindowSize     int     // defined prices in the trailing window
	WindowMedian   float64 // median of the trailing window
	PercentileRank float64 // mid-rank of Price within the window, [0,1]
	Advantage      float64 // 0.5-rank for buys, rank-0.5 for sells
	Scored         bool    // false when the trailing window is empty or the fill is out of range
}

// TimingScore aggregates FillTiming entries.
type TimingScore struct {
	MeanAdvantage Metric
	ScoredFills   int
	Fills         []FillTiming
}

// Direction compares net inventory with the resolved outcome.
type Direction struct {
	NetInventory float64
	Exposure     string // outcome label the trader is net long, "" when flat
	Bias         DirectionalBias
}

// ActivityPattern summarizes inter-trade gaps.
type ActivityPattern struct {
	GapCount   int
	MeanGapMs  Metric
	MaxGapMs   Metric
	BurstRatio Metric // share of gaps <= one sampling interval
}

// PhaseDistribution counts fills in thirds of the series span.
type PhaseDistribution struct {
	Early  int
	Middle int
	Late   int
}

// StrategyReport is the trader-level output. Never mutated after construction.
type StrategyReport struct {
	MarketID  string
	Trader    string
	State     StrategyState
	Position  *TraderPosition
	Timing    TimingScore
	Direction Direction
	Activity  ActivityPattern
	Phases    PhaseDistribution
}
