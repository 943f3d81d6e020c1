package normalization

import (
	"errors"
	"sort"

	"polymarket-lab/internal/domain"
)

// ErrInvalidOrdering is returned when events are not in timestamp order.
var ErrInvalidOrdering = errors.New("events are not in timestamp order")

// SortEvents orders events by timestamp ASC.
// The sort is stable: events sharing a timestamp keep their input order,
// which keeps cumulative volume deterministic.
func SortEvents(events []*domain.TradeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return compareEvents(events[i], events[j]) < 0
	})
}

// ValidateEventOrdering checks that timestamps are non-decreasing.
// Returns ErrInvalidOrdering if not.
func ValidateEventOrdering(events []*domain.TradeEvent) error {
	for i := 1; i < len(events); i++ {
		if compareEvents(events[i-1], events[i]) > 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareEvents returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (timestamp_ms ASC)
func compareEvents(a, b *domain.TradeEvent) int {
	if a.TimestampMs != b.TimestampMs {
		if a.TimestampMs < b.TimestampMs {
			return -1
		}
		return 1
	}
	return 0
}
