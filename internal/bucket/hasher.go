package bucket

import (
	"github.com/hupe1980/lshdb/distance"
	"github.com/hupe1980/lshdb/internal/hyperplane"
)

// MaxBits is the widest key a Hasher can produce.
const MaxBits = 32

// Key identifies a bucket within one table.
type Key uint32

// Hasher projects vectors onto a hyperplane basis.
type Hasher struct {
	basis *hyperplane.Basis
}

// NewHasher creates a Hasher over basis. The basis must have at most MaxBits bits per table.
func NewHasher(basis *hyperplane.Basis) *Hasher {
	return &Hasher{basis: basis}
}

// NumTables returns the number of tables keys are produced for.
func (h *Hasher) NumTables() int { return h.basis.NumTables() }

// Dimension returns the vector dimensionality the hasher expects.
func (h *Hasher) Dimension() int { return h.basis.Dimension() }

// Hash returns the bucket key of vec in table.
// len(vec) must equal the basis dimension.
func (h *Hasher) Hash(vec []float32, table int) Key {
	var key Key
	for i := 0; i < h.basis.NumBits(); i++ {
		if distance.Dot(vec, h.basis.Plane(table, i)) > 0 {
			key |= 1 << uint(i)
		}
	}
	return key
}

// HashAll returns the keys of vec for every table, appending to dst.
func (h *Hasher) HashAll(vec []float32, dst []Key) []Key {
	for t := 0; t < h.basis.NumTables(); t++ {
		dst = append(dst, h.Hash(vec, t))
	}
	return dst
}
