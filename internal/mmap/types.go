package mmap

import "errors"

var (
	// ErrClosed is returned by reads and hints on a closed Mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidOffset is returned by ReadAt for a negative offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
