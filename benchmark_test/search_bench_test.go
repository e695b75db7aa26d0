package benchmark_test

import (
	"fmt"
	"strconv"
	"testing"
)

// BenchmarkApproximateSearchDim measures search latency and recall across dimensions.
func BenchmarkApproximateSearchDim(b *testing.B) {
	const k = 10

	for _, dim := range []int{dimSmall, dimMedium, dimLarge} {
		b.Run("dim="+strconv.Itoa(dim), func(b *testing.B) {
			db, data := OpenBenchDB(b, dim, 8, 12, sizeSmall)
			defer db.Close()
			queries := MakeQueries(data, 100)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := db.ApproximateSearch(queries[i%len(queries)], k); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(recallAtK(db, queries[:50], k), "recall@10")
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "qps")
		})
	}
}

// BenchmarkApproximateSearchShape measures the recall/latency trade-off of
// the table count and bits per table.
func BenchmarkApproximateSearchShape(b *testing.B) {
	const k = 10

	for _, shape := range []struct{ tables, bits int }{
		{4, 8}, {8, 8}, {8, 16}, {16, 16}, {32, 20},
	} {
		b.Run(fmt.Sprintf("L=%d/K=%d", shape.tables, shape.bits), func(b *testing.B) {
			db, data := OpenBenchDB(b, dimMedium, shape.tables, shape.bits, sizeSmall)
			defer db.Close()
			queries := MakeQueries(data, 100)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := db.ApproximateSearch(queries[i%len(queries)], k); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(recallAtK(db, queries[:50], k), "recall@10")
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "qps")
		})
	}
}

// BenchmarkExactSearchScaling measures brute force latency scaling with dataset size.
func BenchmarkExactSearchScaling(b *testing.B) {
	const k = 10

	for _, n := range []int{1_000, sizeSmall, sizeMedium} {
		b.Run("n="+strconv.Itoa(n), func(b *testing.B) {
			db, data := OpenBenchDB(b, dimMedium, 8, 12, n)
			defer db.Close()
			queries := MakeQueries(data, 100)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := db.ExactSearch(queries[i%len(queries)], k); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "qps")
		})
	}
}
