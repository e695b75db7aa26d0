// Package bucket implements random-projection bucket hashing and the
// multi-table bucket index.
//
// A Hasher maps a vector to one Key per table: bit i of the key is set when
// the dot product with hyperplane i of that table is strictly positive.
// An Index keeps, per table, the ordered ids whose vectors hash to each key.
//
// Neither type is safe for concurrent mutation. The Hasher is read-only after
// construction and may be shared freely; the Index must be guarded by the caller.
package bucket
