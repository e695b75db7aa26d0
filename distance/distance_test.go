package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dot(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5.0, Norm([]float32{3, 4}), 1e-6)
	assert.Equal(t, float32(0), Norm([]float32{0, 0, 0}))
	assert.Equal(t, float32(0), Norm(nil))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"Scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"Orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"FortyFive", []float32{1, 0}, []float32{1, 1}, float32(1 / math.Sqrt2)},
		{"ZeroLeft", []float32{0, 0}, []float32{1, 1}, 0},
		{"ZeroRight", []float32{1, 1}, []float32{0, 0}, 0},
		{"BothZero", []float32{0, 0}, []float32{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.False(t, math.IsNaN(float64(got)))
			assert.InDelta(t, tt.expected, got, 1e-6)

			withNorm := CosineSimilarityWithNorm(tt.a, Norm(tt.a), tt.b)
			assert.InDelta(t, got, withNorm, 1e-6)
		})
	}
}

func TestCosineSimilarity_HighDimensionSelf(t *testing.T) {
	v := make([]float32, 512)
	for i := range v {
		v[i] = float32(i%7) - 3.1
	}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func BenchmarkCosineSimilarity(b *testing.B) {
	x := make([]float32, 512)
	y := make([]float32, 512)
	for i := range x {
		x[i] = float32(i)
		y[i] = float32(512 - i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CosineSimilarity(x, y)
	}
}
