package buffer

import "errors"

var (
	// ErrOffsetOutOfRange is returned when an offset lies outside the buffer.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("invalid range")
)
