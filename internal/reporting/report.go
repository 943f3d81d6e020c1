package reporting

import (
	"time"

	"polymarket-lab/internal/domain"
)

// Report bundles everything rendered for one analyzed market.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Meta        *domain.MarketMetadata

	// Data Quality (normalizer outcome)
	DataQuality DataQualitySection

	// Market-level analytics
	Market *domain.AnalyticsReport
	Series *domain.ReconstructedSeries

	// Trader-level reports (sorted by trader)
	Strategies []*domain.StrategyReport
}

// DataQualitySection summarizes what the normalizer accepted and dropped.
type DataQualitySection struct {
	EventCount     int
	DuplicateCount int
	RejectedCount  int
	RejectReasons  []RejectReasonRow // sorted by count desc, then reason
	EventSetHash   string
}

// RejectReasonRow counts rejections that share a reason.
type RejectReasonRow struct {
	Reason string
	Count  int
}
