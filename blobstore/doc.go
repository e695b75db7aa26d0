// Package blobstore provides storage abstraction for lshdb snapshots.
//
// Store is the interface for reading and writing whole snapshot blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap reads and atomic writes
//   - MemoryStore: In-process map, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can expose their bytes directly should also implement Mappable;
// ReadAll uses it to skip ranged reads.
package blobstore
