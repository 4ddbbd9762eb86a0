package solver

import "errors"

// Sentinel kinds for configuration errors. These block solving and are
// surfaced before any strategy runs; infeasible slots are never errors.
var (
	ErrInvalidSeriesCount = errors.New("series count must be at least 1")
	ErrUnknownPin         = errors.New("pinned player not in active roster")
	ErrIneligiblePin      = errors.New("pinned player ineligible for pinned position")
	ErrDuplicatePin       = errors.New("player pinned to multiple positions")
)
