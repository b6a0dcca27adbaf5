package product

import "errors"

var (
	// ErrDuplicateCode is returned by the repository when an insert violates
	// the unique index on products.code. The usecase retries allocation on it.
	ErrDuplicateCode = errors.New("product code already allocated")

	// ErrAllocationConflict is returned once code allocation retries are
	// exhausted. Transient; the caller may retry the whole creation.
	ErrAllocationConflict = errors.New("code allocation conflict, retries exhausted")

	ErrNotFound = errors.New("product not found")
)
