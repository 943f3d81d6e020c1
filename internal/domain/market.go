package domain

import "strings"

// MarketMetadata describes a binary prediction market.
// Immutable after fetch; passed by pointer into every component that needs context.
type MarketMetadata struct {
	MarketID         string    // internal identifier
	Slug             string    // human-readable slug
	Question         string    // market question
	ConditionID      string    // on-chain condition id (nullable in storage)
	Outcomes         [2]string // outcome labels, primary first (e.g. "Up", "Down")
	TickSize         float64   // minimum price increment, 0 disables rounding
	StartTimeMs      int64     // market open (ms)
	ResolutionTimeMs int64     // scheduled resolution (ms), 0 if unknown
	Resolved         bool      // whether the outcome is final
	WinningOutcome   string    // winning label when Resolved
}

// Default outcome labels for up/down markets.
const (
	OutcomeUp   = "Up"
	OutcomeDown = "Down"
)

// PrimaryOutcome returns the outcome all canonical prices are quoted in.
func (m *MarketMetadata) PrimaryOutcome() string {
	return m.Outcomes[0]
}

// SecondaryOutcome returns the complementary outcome.
func (m *MarketMetadata) SecondaryOutcome() string {
	return m.Outcomes[1]
}

// OutcomeIndex returns 0 or 1 for a known outcome label (case-insensitive), -1 otherwise.
// An empty label maps to the primary outcome.
func (m *MarketMetadata) OutcomeIndex(label string) int {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0
	}
	for i, o := range m.Outcomes {
		if strings.EqualFold(o, label) {
			return i
		}
	}
	return -1
}

// HasResolutionTime reports whether a resolution timestamp is known.
func (m *MarketMetadata) HasResolutionTime() bool {
	return m.ResolutionTimeMs > 0
}

// ResolutionPrice returns the primary-outcome settlement value:
// 1.0 if the primary outcome won, 0.0 otherwise.
// Returns ErrResolutionPending if the market has not resolved.
func (m *MarketMetadata) ResolutionPrice() (float64, error) {
	if !m.Resolved {
		return 0, ErrResolutionPending
	}
	if m.OutcomeIndex(m.WinningOutcome) == 0 {
		return 1.0, nil
	}
	return 0.0, nil
}
