// Package index holds the error taxonomy shared by the per-colour list, tree
// and proximity graph indices.
package index

import "errors"

var (
	// ErrNotFound reports an identifier or node absent from a structure.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation reports a request that cannot be served in the
	// current state, such as a path across two colour partitions.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrStructureEmpty reports an operation on a partition with no drones.
	ErrStructureEmpty = errors.New("structure is empty")
)
