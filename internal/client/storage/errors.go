package storage

import "errors"

// Common client storage errors
var (
	// ErrObjectNotFound indicates that a local object was not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrReadOnly indicates a write inside a read-only transaction
	ErrReadOnly = errors.New("read-only transaction")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
