package store

import "errors"

var (
	// ErrNotFound reports that the referenced row does not exist within the
	// household's scope.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a uniqueness or reference violation: duplicate
	// product name, duplicate active list entry, or deleting a product that
	// is still on the shopping list.
	ErrConflict = errors.New("conflict")
)
