// Package hyperplane generates the random-projection basis shared by all hash tables.
package hyperplane

import (
	"fmt"

	"github.com/hupe1980/lshdb/util"
)

// Basis holds planes[table][bit][dim] of standard-normal floats in one
// contiguous slice. A Basis is immutable after Generate and safe for
// concurrent readers.
type Basis struct {
	numTables int
	numBits   int
	dim       int
	seed      int64
	planes    []float32
}

// Generate draws numTables × numBits hyperplanes of dim components from a
// seeded source. Identical arguments always yield an identical basis.
func Generate(numTables, numBits, dim int, seed int64) (*Basis, error) {
	if numTables <= 0 || numBits <= 0 || dim <= 0 {
		return nil, fmt.Errorf("hyperplane: invalid shape tables=%d bits=%d dim=%d", numTables, numBits, dim)
	}

	rng := util.NewRNG(seed)
	planes := make([]float32, numTables*numBits*dim)
	rng.FillGaussian(planes)

	return &Basis{
		numTables: numTables,
		numBits:   numBits,
		dim:       dim,
		seed:      seed,
		planes:    planes,
	}, nil
}

// Plane returns the hyperplane for bit of table. The returned slice must not be modified.
func (b *Basis) Plane(table, bit int) []float32 {
	off := (table*b.numBits + bit) * b.dim
	return b.planes[off : off+b.dim : off+b.dim]
}

// NumTables returns the number of tables.
func (b *Basis) NumTables() int { return b.numTables }

// NumBits returns the number of hyperplanes per table.
func (b *Basis) NumBits() int { return b.numBits }

// Dimension returns the vector dimensionality.
func (b *Basis) Dimension() int { return b.dim }

// Seed returns the seed the basis was generated from.
func (b *Basis) Seed() int64 { return b.seed }
