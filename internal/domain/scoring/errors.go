package scoring

import "errors"

// Sentinel kinds for scoring configuration errors.
var (
	ErrInvalidWeights = errors.New("preference weight table must be non-empty, positive, and strictly decreasing")
)
