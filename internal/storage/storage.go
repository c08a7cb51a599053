// Package storage is the durable blob gateway for the bronze, silver and gold
// tiers. Blobs are keyed by logical path strings with last-write-wins
// overwrite semantics; there are no transactions across paths.
package storage

import "context"

// WriteOptions carries blob metadata recorded alongside the payload.
type WriteOptions struct {
	ContentType     string
	ContentEncoding string
}

// BlobStore provides an interface for blob storage operations.
// This interface enables mocking and testing of storage functionality.
type BlobStore interface {
	// Write stores data under name, overwriting any existing blob.
	Write(ctx context.Context, name string, data []byte, opts WriteOptions) error

	// Read returns the bytes stored under name.
	Read(ctx context.Context, name string) ([]byte, error)

	// List returns the names of all blobs under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
