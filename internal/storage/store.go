// Package storage defines the object-store boundary used to fetch input
// documents and persist output artifacts. The production bucket client lives
// outside this module; the pipeline only consumes this interface.
package storage

import "context"

// ObjectStore is the abstract capability the pipeline needs from object
// storage. Paths are opaque locators owned by the implementation.
type ObjectStore interface {
	// List returns the object paths under a prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Fetch returns the raw bytes of one object.
	Fetch(ctx context.Context, path string) ([]byte, error)
	// Put writes an object and returns its locator.
	Put(ctx context.Context, path string, data []byte) (string, error)
}
