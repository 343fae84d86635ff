package store

import "errors"

var (
	// ErrNotFound indicates no record matched the lookup.
	ErrNotFound = errors.New("not found")
	// ErrClosed indicates the log was closed.
	ErrClosed = errors.New("store closed")
)
