package domain

// FillPolicy is the rule for assigning a value to a bucket with no trades.
type FillPolicy string

// Fill policy constants
const (
	FillForward     FillPolicy = "forward-fill"
	FillInterpolate FillPolicy = "linear-interpolate"
	FillGapMark     FillPolicy = "gap-mark"
)

// DefaultFillPolicy is used when none is configured.
const DefaultFillPolicy = FillForward

// String returns the string representation of FillPolicy.
func (p FillPolicy) String() string {
	return string(p)
}

// IsValid checks if the policy is a known value.
func (p FillPolicy) IsValid() bool {
	return p == FillForward || p == FillInterpolate || p == FillGapMark
}

// SampleSource records where a sample's price came from.
type SampleSource string

// Sample source constants
const (
	SourceObserved     SampleSource = "observed"
	SourceForwardFill  SampleSource = "forward-filled"
	SourceInterpolated SampleSource = "interpolated"
	SourceGap          SampleSource = "gap"
)

// SamplePoint is one bucket of a reconstructed series.
// Corresponds to series_points table in ClickHouse.
type SamplePoint struct {
	MarketID         string       // market identifier
	TimestampMs      int64        // bucket start (ms)
	IntervalMs       int64        // sampling interval (ms)
	Price            *float64     // VWAP or filled price, NULL for gap-marked buckets
	Volume           float64      // SUM(size) in bucket
	BuyVolume        float64      // SUM(size) WHERE side = 'buy'
	SellVolume       float64      // SUM(size) WHERE side = 'sell'
	CumulativeVolume float64      // running SUM(volume) from series start
	TradeCount       int          // number of trades in bucket
	Source           SampleSource // provenance of Price
}

// HasPrice reports whether the sample carries a defined price.
func (p *SamplePoint) HasPrice() bool {
	return p.Price != nil
}

// ReconstructedSeries is a regularly sampled price/volume series.
// Points are strictly increasing by IntervalMs with no holes in the grid.
type ReconstructedSeries struct {
	MarketID   string
	IntervalMs int64
	FillPolicy FillPolicy
	StartMs    int64  // first bucket start
	EndMs      int64  // min(last event, resolution time)
	Version    string // event-set version the series was built from
	Points     []*SamplePoint
}

// IsEmpty reports whether the series has no samples.
func (s *ReconstructedSeries) IsEmpty() bool {
	return s == nil || len(s.Points) == 0
}

// GridEndMs returns the exclusive end of the last bucket.
func (s *ReconstructedSeries) GridEndMs() int64 {
	if s.IsEmpty() {
		return s.StartMs
	}
	return s.StartMs + int64(len(s.Points))*s.IntervalMs
}

// Contains reports whether ts falls inside the sampled grid.
func (s *ReconstructedSeries) Contains(ts int64) bool {
	if s.IsEmpty() {
		return false
	}
	return ts >= s.StartMs && ts < s.GridEndMs()
}
