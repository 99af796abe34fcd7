package schemas

import "errors"

// -- Error Taxonomy --

// Only these two errors cross component boundaries. Malformed finding fields
// are absorbed by default substitution and rendering failures are downgraded
// to degenerate documents, so neither ever surfaces as an error.
var (
	// ErrTimeout indicates a completion wait exceeded its maximum duration.
	ErrTimeout = errors.New("wait for task completion timed out")

	// ErrNotFound indicates a requested task or artifact does not exist.
	ErrNotFound = errors.New("not found")
)
