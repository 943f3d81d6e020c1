package domain

import (
	"errors"
	"fmt"
)

// Programming errors; these fail fast at the call boundary.
var (
	ErrNilMetadata       = errors.New("market metadata is nil")
	ErrInvalidInterval   = errors.New("sampling interval must be positive")
	ErrUnknownFillPolicy = errors.New("unknown fill policy")
	ErrEmptyTrader       = errors.New("trader address is empty")
)

// Degraded states; these are captured into reports, never returned upward.
var (
	// ErrNoOverlap means a trader's fills lie entirely outside the series range.
	ErrNoOverlap = errors.New("trader activity does not overlap market series")

	// ErrResolutionPending means the market outcome is not final yet.
	ErrResolutionPending = errors.New("market resolution pending")
)

// ValidationError describes why a single raw trade was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InsufficientDataError is returned when a metric's minimum sample count is not met.
type InsufficientDataError struct {
	Metric   string
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d samples, have %d", e.Metric, e.Required, e.Got)
}
