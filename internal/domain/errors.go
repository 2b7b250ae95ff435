package domain

import "errors"

var (
	// ErrRelayNotFound signals that the reference relay is absent from the directory.
	ErrRelayNotFound = errors.New("relay not found")
	// ErrInvalidTop signals a negative result limit.
	ErrInvalidTop = errors.New("invalid top value")
	// ErrUnsupportedFormat signals a directory file the loader cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported directory format")
)
