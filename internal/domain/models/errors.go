package models

import "errors"

// Sentinel errors for expected edge cases. Callers match with errors.Is;
// wrapping sites add context with fmt.Errorf("...: %w", err).
var (
	// ErrInvalidTimeframe is returned when a requested timeframe is not
	// part of the configured set.
	ErrInvalidTimeframe = errors.New("invalid timeframe")

	// ErrInsufficientData is returned when an operation needs more points
	// than the supplied series contains.
	ErrInsufficientData = errors.New("insufficient data")
)
