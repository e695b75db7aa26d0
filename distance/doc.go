// Package distance provides the vector similarity kernels used for reranking.
//
// # Supported Measures
//
//   - Dot: inner product
//   - Norm: L2 norm
//   - CosineSimilarity: dot(a, b) / (‖a‖ · ‖b‖), clamped to 0 when either norm is zero
//
// # Usage
//
//	sim := distance.CosineSimilarity(a, b)
//
//	qn := distance.Norm(query)
//	for _, v := range candidates {
//	    sim := distance.CosineSimilarityWithNorm(query, qn, v)
//	}
//
// Accumulation is done in float64 so that self-similarity of high-dimensional
// vectors stays within float32 rounding of 1.
package distance
