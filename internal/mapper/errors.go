package mapper

import "errors"

var (
	// ErrEmptyRowKey is returned when a record derives an empty row key.
	ErrEmptyRowKey = errors.New("row key is empty")
	// ErrUnknownField names a field the record type does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrNoIndexer is returned by Query on a mapper without an index.
	ErrNoIndexer = errors.New("no index configured")
)
