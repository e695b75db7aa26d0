//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}

func osAdviseSequential(data []byte) error {
	// EINVAL means the kernel rejected the range; the hint is optional.
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil && err != unix.EINVAL {
		return err
	}
	return nil
}
