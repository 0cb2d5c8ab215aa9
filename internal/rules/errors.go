package rules

import "errors"

var (
	// ErrInvalidTable indicates a tables file entry the engine cannot use.
	ErrInvalidTable = errors.New("invalid rules table")
)
