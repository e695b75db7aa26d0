// Package persistence implements the on-disk snapshot format.
//
// A snapshot is a small fixed header followed by a body:
//
//	magic       [4]byte  "LSHD"
//	version     uint16
//	compression uint8    0=none 1=lz4 2=zstd
//	reserved    uint8
//	body_len    uint64   stored body length
//	raw_len     uint64   uncompressed body length
//	checksum    uint32   CRC32C of the uncompressed body
//
// The uncompressed body is the baseline record layout:
//
//	int32 dim, uint64 record_count, record_count × { int32 id, float32[dim] }
//
// Everything is little-endian, contiguous, with no padding. Files that do not
// start with the magic are decoded as a bare body, which is what the original
// unversioned writer produced.
//
// Decode validates the whole input before returning anything, so callers can
// swap the result in without ever observing a half-read snapshot.
package persistence
