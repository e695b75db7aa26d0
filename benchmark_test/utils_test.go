package benchmark_test

import (
	"testing"

	"github.com/hupe1980/lshdb"
	"github.com/hupe1980/lshdb/util"
)

const (
	dimSmall  = 32
	dimMedium = 128
	dimLarge  = 384

	sizeSmall  = 10_000
	sizeMedium = 50_000
)

// OpenBenchDB creates a database with the given shape and n Gaussian vectors.
func OpenBenchDB(b *testing.B, dim, tables, bits, n int) (*lshdb.DB, [][]float32) {
	b.Helper()

	db, err := lshdb.New(dim, tables, bits)
	if err != nil {
		b.Fatal(err)
	}

	data := util.NewRNG(1).GenerateGaussianVectors(n, dim)
	records := make([]lshdb.Record, n)
	for i, v := range data {
		records[i] = lshdb.Record{ID: int32(i), Vector: v}
	}
	if err := db.BatchInsert(records); err != nil {
		b.Fatal(err)
	}
	return db, data
}

// MakeQueries returns n query vectors that are perturbed copies of stored
// vectors, so every query has a meaningful nearest neighbor.
func MakeQueries(data [][]float32, n int) [][]float32 {
	rng := util.NewRNG(2)
	noise := rng.GenerateGaussianVectors(n, len(data[0]))
	queries := make([][]float32, n)
	for i := range queries {
		base := data[rng.Intn(len(data))]
		q := make([]float32, len(base))
		for j := range q {
			q[j] = base[j] + 0.1*noise[i][j]
		}
		queries[i] = q
	}
	return queries
}

func recallAtK(db *lshdb.DB, queries [][]float32, k int) float64 {
	var sum float64
	for _, q := range queries {
		cmp, err := db.Compare(q, k)
		if err != nil {
			panic(err)
		}
		sum += cmp.Recall
	}
	return sum / float64(len(queries))
}
