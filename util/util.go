package util

import (
	"math"
	"math/rand"
)

// RNG struct encapsulates the random number generator and seed.
//
// RNG is not safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	return r.rand.Intn(n)
}

// FillGaussian fills dst with standard-normal samples.
func (r *RNG) FillGaussian(dst []float32) {
	for i := range dst {
		dst[i] = float32(r.rand.NormFloat64())
	}
}

// GenerateRandomVectors generates random vectors with values in range [0, 1).
func (r *RNG) GenerateRandomVectors(num int, dimensions int) [][]float32 {
	vectors := make([][]float32, num)
	for i := range vectors {
		vectors[i] = make([]float32, dimensions)
		for j := range vectors[i] {
			vectors[i][j] = r.rand.Float32()
		}
	}

	return vectors
}

// GenerateGaussianVectors generates vectors with standard-normal components.
// Uses a single backing array.
func (r *RNG) GenerateGaussianVectors(num int, dimensions int) [][]float32 {
	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		r.FillGaussian(vec)
		vectors[i] = vec
	}

	return vectors
}

// GenerateUnitVectors generates L2-normalized random vectors (uniform on the hypersphere).
func (r *RNG) GenerateUnitVectors(num int, dimensions int) [][]float32 {
	vectors := r.GenerateGaussianVectors(num, dimensions)
	for _, vec := range vectors {
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			continue
		}
		inv := float32(1 / math.Sqrt(norm))
		for j := range vec {
			vec[j] *= inv
		}
	}
	return vectors
}
