package rosterio

import "errors"

// Sentinel kinds for roster import errors.
var (
	ErrUnreadableInput   = errors.New("roster input not readable as CSV")
	ErrMissingNameColumn = errors.New("roster CSV has no recognizable Name column")
)
