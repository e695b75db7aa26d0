// Package hash computes the snapshot checksum.
//
// The checksum covers the uncompressed snapshot body, so it also catches a
// decompressor that returns the wrong bytes. It detects corruption, not
// tampering.
package hash
