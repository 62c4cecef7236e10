package storage

import "errors"

// Errors returned by the store.
var (
	// ErrNotFound indicates no row exists with the requested id.
	ErrNotFound = errors.New("not found")

	// ErrHasID indicates Add was called with an item that already has an id.
	ErrHasID = errors.New("item already has an id")

	// ErrNoID indicates Update or Delete was called with an item without an id.
	ErrNoID = errors.New("item has no id")

	// ErrDuplicateName indicates an enumerated item with the same name exists.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrNameMismatch indicates Delete was called with an id whose stored name differs.
	ErrNameMismatch = errors.New("name does not match stored item")

	// ErrReferenced indicates an enumerated item is still referenced by articles.
	ErrReferenced = errors.New("still referenced by articles")

	// ErrUnknownColumn indicates a criteria key that is not a column of the table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidCriteria indicates a malformed criteria value.
	ErrInvalidCriteria = errors.New("invalid criteria")
)
