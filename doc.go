// Package lshdb provides an in-process approximate nearest-neighbor store for
// fixed-dimension float32 vectors.
//
// Vectors are indexed with random-projection locality-sensitive hashing: each
// of L tables projects a vector onto its own set of random hyperplanes and
// packs the signs into a bucket key. A query collects the ids sharing its
// bucket in any table and reranks them by cosine similarity.
//
// # Quick Start
//
//	db, _ := lshdb.New(128, 8, 16) // dim, tables, bits per table
//	_ = db.Insert(1, embedding)
//	ids, _ := db.ApproximateQuery(query, 10)
//	ids, _ = db.ExactQuery(query, 10) // full scan, for ground truth
//
// # Persistence
//
//	_ = db.Save("vectors.lshd")
//	_ = db.Load("vectors.lshd")
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("vectors/"))
//	_ = db.SaveTo(ctx, store, "latest.lshd")
//	_ = db.LoadFrom(ctx, store, "latest.lshd")
//
// Snapshots store ids and vectors only. Bucket placement is recomputed on
// load from the loading database's hyperplanes, so load into a database built
// with the same dimension, table count, bit count and seed to get the same
// query behavior.
//
// # Concurrency
//
// A DB is safe for concurrent use. One mutex guards the vector store and all
// bucket tables. Save and Load hold it while touching the file, so large
// snapshots stall other callers; WriteTo, ReadFrom, SaveTo and LoadFrom keep
// I/O outside the lock.
package lshdb
