// Package blobstore provides the resource-resolver abstraction of the
// browsing engine: given an item and a tier, it supplies raw image bytes.
//
// Store is the backend interface; Locator maps (item, tier) to a store key;
// Fetcher composes the two into the resolver the tile cache consumes.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem (native curation shell)
//   - MemoryStore: In-memory, for tests
//   - s3.Store: Amazon S3 (public web gallery origin)
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom backends:
//
//	type Store interface {
//	    Open(ctx, key) (io.ReadCloser, error)
//	}
package blobstore
