package cache

import "errors"

var (
	// ErrUnsupportedKind is returned when an operation names a record kind
	// the store's registry does not recognize.
	ErrUnsupportedKind = errors.New("unsupported record kind")

	// ErrNotFound is returned by point lookups and deletes that match
	// nothing, distinct from I/O failures so callers can create-vs-update.
	ErrNotFound = errors.New("record not found")
)
