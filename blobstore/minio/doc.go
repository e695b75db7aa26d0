// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible servers such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.Dial(ctx, "localhost:9000", "minioadmin", "minioadmin", false, "my-bucket", "vectors/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = db.SaveTo(ctx, store, "latest.lshd")
//
// Use NewStore to wrap an existing *minio.Client with custom options.
package minio
