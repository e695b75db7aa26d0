// Package searcher ranks candidate vectors against a query by cosine similarity.
package searcher

import (
	"github.com/hupe1980/lshdb/distance"
)

// Searcher keeps the k best-scoring candidates seen for one query.
//
// Searcher is NOT thread-safe. It is intended to be owned by a single goroutine
// during a search operation.
type Searcher struct {
	query     []float32
	queryNorm float32
	k         int
	queue     *PriorityQueue

	// Scored counts the candidates offered to the searcher.
	Scored int
}

// New creates a Searcher returning at most k results for query.
func New(query []float32, k int) *Searcher {
	return &Searcher{
		query:     query,
		queryNorm: distance.Norm(query),
		k:         k,
		queue:     NewPriorityQueue(min(max(k, 0), 1024)),
	}
}

// Offer scores vec as candidate id.
func (s *Searcher) Offer(id int32, vec []float32) {
	s.Scored++
	if s.k <= 0 {
		return
	}
	sim := distance.CosineSimilarityWithNorm(s.query, s.queryNorm, vec)
	s.queue.PushItemBounded(Result{ID: id, Similarity: sim}, s.k)
}

// Results returns the kept candidates ordered by descending similarity,
// ties broken by ascending id. Fewer than k results are returned when fewer
// candidates were offered.
func (s *Searcher) Results() []Result {
	return s.queue.Drain()
}

// IDs strips scores from results.
func IDs(results []Result) []int32 {
	ids := make([]int32, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}
