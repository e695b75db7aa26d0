// Package mmap maps snapshot files read-only.
//
// Load and the local blob store decode snapshots straight from the mapping
// instead of copying the file into a buffer first.
//
//	m, err := mmap.Open("vectors.lshd")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.AdviseSequential()
//	snap, err := persistence.Decode(m.Bytes())
//
// Unix uses mmap(2) and madvise(2). Windows uses MapViewOfFile and ignores
// the access hint.
package mmap
