package persistence

import (
	"errors"
	"fmt"
)

const (
	// Magic identifies versioned snapshot files.
	Magic = "LSHD"
	// Version is the current file format version.
	Version uint16 = 1

	// HeaderSize is the encoded size of Header.
	HeaderSize = 28

	// bodyHeaderSize covers dim and record_count.
	bodyHeaderSize = 12
)

var (
	// ErrFormat is the root of all malformed-snapshot errors.
	ErrFormat = errors.New("invalid snapshot format")

	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrFormat)
	ErrTruncated          = fmt.Errorf("%w: truncated", ErrFormat)
	ErrTrailingData       = fmt.Errorf("%w: trailing data", ErrFormat)
	ErrChecksumMismatch   = fmt.Errorf("%w: checksum mismatch", ErrFormat)
	ErrDimensionConflict  = fmt.Errorf("%w: dimension conflict", ErrFormat)
)

// Header precedes the body of a versioned snapshot.
type Header struct {
	Version     uint16
	Compression Compression
	BodyLen     uint64
	RawLen      uint64
	Checksum    uint32
}

// Record is one stored vector.
type Record struct {
	ID     int32
	Vector []float32
}

// Snapshot is the decoded content of a snapshot file.
type Snapshot struct {
	Dim     int
	Records []Record

	// Legacy is set when the input had no versioned header.
	Legacy bool
	// Compression is the codec the body was stored with.
	Compression Compression
}

// RecordSize returns the encoded size of one record of dimension dim.
func RecordSize(dim int) int {
	return 4 + 4*dim
}

// BodySize returns the uncompressed body size for n records of dimension dim.
func BodySize(dim, n int) int {
	return bodyHeaderSize + n*RecordSize(dim)
}
