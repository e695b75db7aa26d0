package searcher

import (
	"container/heap"
	"math"
)

// Compile time check to ensure PriorityQueue satisfies the heap interface.
var _ heap.Interface = (*PriorityQueue)(nil)

// Result is a scored search hit.
type Result struct {
	ID         int32   // ID of the stored vector.
	Similarity float32 // Similarity is the cosine similarity to the query; higher is closer.
}

// better reports whether a ranks before b: higher similarity first,
// ascending id on ties. NaN ranks below every number.
func better(a, b Result) bool {
	aNaN, bNaN := isNaN(a.Similarity), isNaN(b.Similarity)
	switch {
	case aNaN != bNaN:
		return bNaN
	case !aNaN && a.Similarity != b.Similarity:
		return a.Similarity > b.Similarity
	}
	return a.ID < b.ID
}

func isNaN(f float32) bool { return math.IsNaN(float64(f)) }

// PriorityQueue is a min-heap of Results ordered so that the worst-ranked
// result sits at the top. Bounded pushes keep the best capacity results.
type PriorityQueue struct {
	items []Result
}

// NewPriorityQueue creates a queue with room for capacity results.
func NewPriorityQueue(capacity int) *PriorityQueue {
	return &PriorityQueue{
		items: make([]Result, 0, capacity),
	}
}

// TopItem returns the worst result currently kept.
func (pq *PriorityQueue) TopItem() (Result, bool) {
	if len(pq.items) == 0 {
		return Result{}, false
	}
	return pq.items[0], true
}

// PushItemBounded inserts an item into a bounded heap.
// If the heap is full and the new item ranks below the top, it is skipped.
// If the heap is full and the new item ranks above, the top is replaced.
func (pq *PriorityQueue) PushItemBounded(item Result, capacity int) {
	if capacity <= 0 {
		return
	}
	if len(pq.items) < capacity {
		heap.Push(pq, item)
		return
	}
	if better(item, pq.items[0]) {
		pq.items[0] = item
		heap.Fix(pq, 0)
	}
}

// Len returns the number of elements in the heap.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// Less reports whether the element with index i should sort before the element with index j.
func (pq *PriorityQueue) Less(i, j int) bool {
	return better(pq.items[j], pq.items[i])
}

// Swap swaps the elements with indexes i and j.
func (pq *PriorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

// Push pushes the element x onto the heap.
func (pq *PriorityQueue) Push(x any) {
	pq.items = append(pq.items, x.(Result))
}

// Pop removes and returns the worst element from the heap.
func (pq *PriorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	pq.items = old[0 : n-1]
	return item
}

// Drain empties the queue and returns its results best first.
func (pq *PriorityQueue) Drain() []Result {
	out := make([]Result, pq.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(pq).(Result)
	}
	return out
}

// Reset clears the priority queue.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}
