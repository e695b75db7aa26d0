package distance

import "math"

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return float32(dot64(a, b))
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(dot64(v, v)))
}

// CosineSimilarity returns dot(a, b) / (‖a‖ · ‖b‖).
//
// The result is 0 when either vector has zero norm. Higher is more similar.
// Assumes vectors are the same length (caller's responsibility).
func CosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return cosine(dot, math.Sqrt(na), math.Sqrt(nb))
}

// CosineSimilarityWithNorm is CosineSimilarity with the norm of a precomputed,
// typically the query norm reused across a candidate set.
func CosineSimilarityWithNorm(a []float32, normA float32, b []float32) float32 {
	var dot, nb float64
	for i := range a {
		y := float64(b[i])
		dot += float64(a[i]) * y
		nb += y * y
	}
	return cosine(dot, float64(normA), math.Sqrt(nb))
}

func cosine(dot, na, nb float64) float32 {
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (na * nb))
}

func dot64(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
