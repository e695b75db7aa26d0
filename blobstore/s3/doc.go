// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("vectors/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = db.SaveTo(ctx, store, "latest.lshd")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large snapshots
//   - CRC32C checksums on upload
//   - Automatic pagination for listing
package s3
