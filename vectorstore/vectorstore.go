// Package vectorstore holds the authoritative id -> vector mapping.
//
// The store owns its vectors: Put copies the caller's slice, and Snapshot
// returns deep copies. Store is not safe for concurrent use; the database
// guards it together with the bucket index.
package vectorstore

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrWrongDimension is returned when a vector doesn't match the store dimension.
	ErrWrongDimension = errors.New("wrong vector dimension")
)

// Store is the canonical storage for vectors.
type Store struct {
	dim     int
	records map[int32][]float32
}

// New creates an empty store for vectors of length dim.
func New(dim int) *Store {
	return &Store{
		dim:     dim,
		records: make(map[int32][]float32),
	}
}

// Dimension returns the configured vector length.
func (s *Store) Dimension() int { return s.dim }

// Len returns the number of stored vectors.
func (s *Store) Len() int { return len(s.records) }

// Put stores a copy of v under id, replacing any previous vector.
func (s *Store) Put(id int32, v []float32) error {
	if len(v) != s.dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrWrongDimension, s.dim, len(v))
	}
	s.records[id] = slices.Clone(v)
	return nil
}

// Get returns the vector stored under id.
// The slice aliases internal memory and must not be modified.
func (s *Store) Get(id int32) ([]float32, bool) {
	v, ok := s.records[id]
	return v, ok
}

// Delete removes id and returns the vector it held.
func (s *Store) Delete(id int32) ([]float32, bool) {
	v, ok := s.records[id]
	if ok {
		delete(s.records, id)
	}
	return v, ok
}

// IDs returns all stored ids in ascending order.
func (s *Store) IDs() []int32 {
	return slices.Sorted(maps.Keys(s.records))
}

// Range calls fn for every record in unspecified order until fn returns false.
// The vector aliases internal memory.
func (s *Store) Range(fn func(id int32, v []float32) bool) {
	for id, v := range s.records {
		if !fn(id, v) {
			return
		}
	}
}

// Snapshot returns a deep copy of all records.
func (s *Store) Snapshot() map[int32][]float32 {
	out := make(map[int32][]float32, len(s.records))
	for id, v := range s.records {
		out[id] = slices.Clone(v)
	}
	return out
}

// Reset removes all records.
func (s *Store) Reset() {
	clear(s.records)
}
