package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.GenerateRandomVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestGenerateGaussianVectors(t *testing.T) {
	a := NewRNG(7).GenerateGaussianVectors(4, 16)
	b := NewRNG(7).GenerateGaussianVectors(4, 16)

	require.Len(t, a, 4)
	assert.Equal(t, a, b, "same seed must yield identical vectors")

	// Appending to one vector must not clobber its neighbour.
	before := a[1][0]
	_ = append(a[0], 99)
	assert.Equal(t, before, a[1][0])
}

func TestGenerateUnitVectors(t *testing.T) {
	rng := NewRNG(1)
	for _, v := range rng.GenerateUnitVectors(10, 8) {
		var norm float32
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, norm, 1e-4)
	}
	assert.Equal(t, int64(1), rng.Seed())
}
