package repositories

import "errors"

// Sentinel errors shared by all repository implementations so that services
// can branch on the failure kind with errors.Is instead of matching strings.
var (
	// ErrNotFound indicates the record does not exist in the store.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateKey indicates an insert collided with a uniqueness constraint.
	ErrDuplicateKey = errors.New("repository: duplicate key")
)
