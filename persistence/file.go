package persistence

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/lshdb/internal/mmap"
)

// SaveToFile is a helper to save data to a file.
//
// Data goes to a temp file in the same directory which is renamed over
// filename only after a successful sync, so a failed save leaves any existing
// file untouched.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0o644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFile maps filename and decodes it. The mapping is released before
// LoadFile returns; the snapshot owns its memory.
func LoadFile(filename string) (*Snapshot, error) {
	m, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	_ = m.AdviseSequential()
	return Decode(m.Bytes())
}
