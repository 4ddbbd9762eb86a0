package app

import "errors"

// Sentinel kinds for session errors.
var (
	ErrSessionEnded = errors.New("session has ended")
)
