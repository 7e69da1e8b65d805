package store

import "errors"

// Sentinel errors for the store package. Callers match with errors.Is and map
// them to HTTP status codes at the API layer.
var (
	// ErrUnknownCollection is returned when an operation references a
	// collection name outside the fixed set known to the store.
	ErrUnknownCollection = errors.New("store: unknown collection")

	// ErrNotFound is returned when a record id does not exist within a
	// known collection.
	ErrNotFound = errors.New("store: record not found")

	// ErrPersistence is returned when reading or writing the data file
	// fails. Mutations are rolled back in memory before it is returned, so
	// a successful mutating call always implies the change is on disk.
	ErrPersistence = errors.New("store: persistence failed")
)
