package lshdb

import (
	"sync/atomic"
	"time"
)

// QueryKind distinguishes approximate from exact queries in logs and metrics.
type QueryKind string

const (
	QueryApproximate QueryKind = "approximate"
	QueryExact       QueryKind = "exact"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    queryHistogram *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordQuery(kind lshdb.QueryKind, k, candidates int, d time.Duration, err error) {
//	    p.queryHistogram.WithLabelValues(string(kind)).Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordBatchInsert is called after each batch insert operation.
	// count is the number of records in the batch. A batch either applies
	// completely or not at all.
	RecordBatchInsert(count int, duration time.Duration, err error)

	// RecordQuery is called after each query. candidates is the number of
	// stored vectors that were scored.
	RecordQuery(kind QueryKind, k, candidates int, duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordUpdate is called after each update operation.
	RecordUpdate(duration time.Duration, err error)

	// RecordSave is called after each snapshot write.
	RecordSave(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each snapshot read.
	RecordLoad(records int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)                     {}
func (NoopMetricsCollector) RecordBatchInsert(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordQuery(QueryKind, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)                     {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, error)                     {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)                {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	BatchInsertCount  atomic.Int64
	BatchInsertItems  atomic.Int64
	BatchInsertErrors atomic.Int64
	ApproxQueryCount  atomic.Int64
	ApproxQueryNanos  atomic.Int64
	ApproxCandidates  atomic.Int64
	ExactQueryCount   atomic.Int64
	ExactQueryNanos   atomic.Int64
	QueryErrors       atomic.Int64
	DeleteCount       atomic.Int64
	DeleteErrors      atomic.Int64
	UpdateCount       atomic.Int64
	UpdateErrors      atomic.Int64
	SaveCount         atomic.Int64
	SaveBytes         atomic.Int64
	SaveErrors        atomic.Int64
	LoadCount         atomic.Int64
	LoadRecords       atomic.Int64
	LoadErrors        atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordBatchInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchInsert(count int, _ time.Duration, err error) {
	b.BatchInsertCount.Add(1)
	if err != nil {
		b.BatchInsertErrors.Add(1)
		return
	}
	b.BatchInsertItems.Add(int64(count))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(kind QueryKind, _, candidates int, duration time.Duration, err error) {
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	switch kind {
	case QueryApproximate:
		b.ApproxQueryCount.Add(1)
		b.ApproxQueryNanos.Add(duration.Nanoseconds())
		b.ApproxCandidates.Add(int64(candidates))
	case QueryExact:
		b.ExactQueryCount.Add(1)
		b.ExactQueryNanos.Add(duration.Nanoseconds())
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(_ time.Duration, err error) {
	b.UpdateCount.Add(1)
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int64, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(records int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadRecords.Add(int64(records))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:         b.InsertCount.Load(),
		InsertErrors:        b.InsertErrors.Load(),
		InsertAvgNanos:      avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		BatchInsertCount:    b.BatchInsertCount.Load(),
		BatchInsertItems:    b.BatchInsertItems.Load(),
		BatchInsertErrors:   b.BatchInsertErrors.Load(),
		ApproxQueryCount:    b.ApproxQueryCount.Load(),
		ApproxQueryAvgNanos: avg(b.ApproxQueryNanos.Load(), b.ApproxQueryCount.Load()),
		ApproxAvgCandidates: avg(b.ApproxCandidates.Load(), b.ApproxQueryCount.Load()),
		ExactQueryCount:     b.ExactQueryCount.Load(),
		ExactQueryAvgNanos:  avg(b.ExactQueryNanos.Load(), b.ExactQueryCount.Load()),
		QueryErrors:         b.QueryErrors.Load(),
		DeleteCount:         b.DeleteCount.Load(),
		DeleteErrors:        b.DeleteErrors.Load(),
		UpdateCount:         b.UpdateCount.Load(),
		UpdateErrors:        b.UpdateErrors.Load(),
		SaveCount:           b.SaveCount.Load(),
		SaveBytes:           b.SaveBytes.Load(),
		SaveErrors:          b.SaveErrors.Load(),
		LoadCount:           b.LoadCount.Load(),
		LoadRecords:         b.LoadRecords.Load(),
		LoadErrors:          b.LoadErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount         int64
	InsertErrors        int64
	InsertAvgNanos      int64
	BatchInsertCount    int64
	BatchInsertItems    int64
	BatchInsertErrors   int64
	ApproxQueryCount    int64
	ApproxQueryAvgNanos int64
	ApproxAvgCandidates int64
	ExactQueryCount     int64
	ExactQueryAvgNanos  int64
	QueryErrors         int64
	DeleteCount         int64
	DeleteErrors        int64
	UpdateCount         int64
	UpdateErrors        int64
	SaveCount           int64
	SaveBytes           int64
	SaveErrors          int64
	LoadCount           int64
	LoadRecords         int64
	LoadErrors          int64
}
