package reporting

import (
	"errors"
	"sort"
	"time"

	"polymarket-lab/internal/analysis"
	"polymarket-lab/internal/domain"
)

// ErrIncompleteResult is returned when an analysis result lacks its snapshot or market report.
var ErrIncompleteResult = errors.New("analysis result is missing snapshot or market report")

// Generator produces reports from analysis results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles a Report from one analysis result.
func (g *Generator) Generate(result *analysis.Result) (*Report, error) {
	if result == nil || result.Snapshot == nil || result.Market == nil {
		return nil, ErrIncompleteResult
	}
	snap := result.Snapshot

	strategies := make([]*domain.StrategyReport, len(result.Strategies))
	copy(strategies, result.Strategies)
	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].Trader < strategies[j].Trader
	})

	return &Report{
		GeneratedAt: g.now(),
		RunID:       result.RunID,
		Meta:        snap.Market,
		DataQuality: generateDataQuality(snap.Events, snap.Duplicates, snap.Rejected, snap.Version),
		Market:      result.Market,
		Series:      snap.Series,
		Strategies:  strategies,
	}, nil
}

func generateDataQuality(events []*domain.TradeEvent, duplicates int, rejected []*domain.Rejection, version string) DataQualitySection {
	counts := make(map[string]int)
	for _, r := range rejected {
		counts[r.Reason()]++
	}

	rows := make([]RejectReasonRow, 0, len(counts))
	for reason, n := range counts {
		rows = append(rows, RejectReasonRow{Reason: reason, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Reason < rows[j].Reason
	})

	return DataQualitySection{
		EventCount:     len(events),
		DuplicateCount: duplicates,
		RejectedCount:  len(rejected),
		RejectReasons:  rows,
		EventSetHash:   version,
	}
}
