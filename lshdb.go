package lshdb

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lshdb/internal/bucket"
	"github.com/hupe1980/lshdb/internal/hyperplane"
	"github.com/hupe1980/lshdb/persistence"
	"github.com/hupe1980/lshdb/searcher"
	"github.com/hupe1980/lshdb/vectorstore"
)

// Record is an id with its vector, as accepted by BatchInsert and stored in snapshots.
type Record = persistence.Record

// Result is a scored query hit.
type Result = searcher.Result

// DB is an in-process LSH vector database.
//
// All methods are safe for concurrent use. A single mutex guards the vector
// store and every bucket table, so each operation observes and leaves them
// consistent. Save and Load hold that mutex for their full duration.
type DB struct {
	dim       int
	numTables int
	numBits   int
	seed      int64
	hasher    *bucket.Hasher
	opts      options

	mu     sync.Mutex
	store  *vectorstore.Store
	index  *bucket.Index
	closed bool
}

// New creates an empty database for vectors of length dim, indexed by
// numTables hash tables of numBits hyperplanes each.
func New(dim, numTables, numBits int, optFns ...Option) (*DB, error) {
	switch {
	case dim <= 0:
		return nil, &ErrInvalidConfig{Field: "dim", Value: dim}
	case numTables <= 0:
		return nil, &ErrInvalidConfig{Field: "num_tables", Value: numTables}
	case numBits <= 0 || numBits > bucket.MaxBits:
		return nil, &ErrInvalidConfig{Field: "num_bits", Value: numBits}
	}

	opts := applyOptions(optFns)
	if !opts.compression.Valid() {
		return nil, &ErrInvalidConfig{Field: "compression", Value: int(opts.compression)}
	}

	basis, err := hyperplane.Generate(numTables, numBits, dim, opts.seed)
	if err != nil {
		return nil, &ErrInvalidConfig{Field: "shape", cause: err}
	}

	return &DB{
		dim:       dim,
		numTables: numTables,
		numBits:   numBits,
		seed:      opts.seed,
		hasher:    bucket.NewHasher(basis),
		opts:      opts,
		store:     vectorstore.New(dim),
		index:     bucket.NewIndex(numTables),
	}, nil
}

// Dimension returns the configured vector length.
func (db *DB) Dimension() int { return db.dim }

// NumTables returns the number of hash tables.
func (db *DB) NumTables() int { return db.numTables }

// NumBits returns the number of hyperplanes per table.
func (db *DB) NumBits() int { return db.numBits }

// Seed returns the hyperplane seed.
func (db *DB) Seed() int64 { return db.seed }

func (db *DB) checkDim(v []float32) error {
	if len(v) != db.dim {
		return &ErrDimensionMismatch{Expected: db.dim, Actual: len(v)}
	}
	return nil
}

// keys derives the bucket key of v for every table. The basis is immutable,
// so this runs without the lock.
func (db *DB) keys(v []float32) []bucket.Key {
	return db.hasher.HashAll(v, make([]bucket.Key, 0, db.numTables))
}

// putLocked stores v under id and indexes it under keys, vacating any
// previous placement first. The caller holds db.mu.
func (db *DB) putLocked(id int32, v []float32, keys []bucket.Key) error {
	db.deleteLocked(id)
	if err := db.store.Put(id, v); err != nil {
		return err
	}
	db.index.Add(id, keys)
	return nil
}

// deleteLocked removes id from every table and the store. The caller holds db.mu.
func (db *DB) deleteLocked(id int32) bool {
	old, ok := db.store.Get(id)
	if !ok {
		return false
	}
	db.index.Remove(id, db.keys(old))
	db.store.Delete(id)
	return true
}

// Insert stores vector under id. An existing id is overwritten.
func (db *DB) Insert(id int32, vector []float32) error {
	start := time.Now()
	err := db.insert(id, vector)
	db.opts.metricsCollector.RecordInsert(time.Since(start), err)
	db.opts.logger.LogInsert(context.Background(), id, len(vector), err)
	return err
}

func (db *DB) insert(id int32, vector []float32) error {
	if err := db.checkDim(vector); err != nil {
		return err
	}
	keys := db.keys(vector)

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	return translateError(db.putLocked(id, vector, keys))
}

// BatchInsert stores every record with Insert's overwrite semantics. All
// dimensions are checked first, so a batch is applied completely or not at
// all. Within a batch, a later record wins over an earlier one with the same id.
func (db *DB) BatchInsert(records []Record) error {
	start := time.Now()
	err := db.batchInsert(records)
	db.opts.metricsCollector.RecordBatchInsert(len(records), time.Since(start), err)
	db.opts.logger.LogBatchInsert(context.Background(), len(records), err)
	return err
}

func (db *DB) batchInsert(records []Record) error {
	vecs := make([][]float32, len(records))
	for i, r := range records {
		if err := db.checkDim(r.Vector); err != nil {
			return err
		}
		vecs[i] = r.Vector
	}

	keys, err := db.hashParallel(context.Background(), vecs)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	for i, r := range records {
		if err := db.putLocked(r.ID, r.Vector, keys[i]); err != nil {
			return translateError(err)
		}
	}
	return nil
}

// minParallelHash is the batch size below which hashing stays on the calling goroutine.
const minParallelHash = 256

// hashParallel derives bucket keys for vecs, splitting the work across
// db.opts.parallelism goroutines.
func (db *DB) hashParallel(ctx context.Context, vecs [][]float32) ([][]bucket.Key, error) {
	out := make([][]bucket.Key, len(vecs))
	flat := make([]bucket.Key, 0, len(vecs)*db.numTables)

	hashRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			base := i * db.numTables
			out[i] = db.hasher.HashAll(vecs[i], flat[base:base:base+db.numTables])
		}
	}

	workers := db.opts.parallelism
	if workers <= 1 || len(vecs) < minParallelHash {
		hashRange(0, len(vecs))
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(vecs) + workers - 1) / workers
	for lo := 0; lo < len(vecs); lo += chunk {
		hi := min(lo+chunk, len(vecs))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hashRange(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a copy of the vector stored under id.
// It reports false when id is absent or the database is closed.
func (db *DB) Get(id int32) ([]float32, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, false
	}
	v, ok := db.store.Get(id)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Update replaces the vector of id. If id is absent it behaves as Insert.
func (db *DB) Update(id int32, vector []float32) error {
	start := time.Now()
	err := db.update(id, vector)
	db.opts.metricsCollector.RecordUpdate(time.Since(start), err)
	db.opts.logger.LogUpdate(context.Background(), id, err)
	return err
}

func (db *DB) update(id int32, vector []float32) error {
	if err := db.checkDim(vector); err != nil {
		return err
	}
	keys := db.keys(vector)

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	db.deleteLocked(id)
	return translateError(db.putLocked(id, vector, keys))
}

// Delete removes id. Deleting an absent id is a no-op.
func (db *DB) Delete(id int32) error {
	start := time.Now()
	existed, err := db.delete(id)
	db.opts.metricsCollector.RecordDelete(time.Since(start), err)
	db.opts.logger.LogDelete(context.Background(), id, existed, err)
	return err
}

func (db *DB) delete(id int32) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return false, ErrClosed
	}
	return db.deleteLocked(id), nil
}

// GetAll returns a deep copy of every stored vector keyed by id.
func (db *DB) GetAll() map[int32][]float32 {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return map[int32][]float32{}
	}
	return db.store.Snapshot()
}

// Len returns the number of stored vectors.
func (db *DB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return 0
	}
	return db.store.Len()
}

// ApproximateQuery returns the ids of up to k stored vectors most similar to
// query among those sharing a bucket with it in at least one table.
// Results are ordered by descending cosine similarity, ties by ascending id.
func (db *DB) ApproximateQuery(query []float32, k int) ([]int32, error) {
	res, err := db.ApproximateSearch(query, k)
	if err != nil {
		return nil, err
	}
	return searcher.IDs(res), nil
}

// ApproximateSearch is ApproximateQuery with similarity scores.
func (db *DB) ApproximateSearch(query []float32, k int) ([]Result, error) {
	start := time.Now()
	res, scored, err := db.approximateSearch(query, k)
	db.observeQuery(QueryApproximate, k, len(res), scored, time.Since(start), err)
	return res, err
}

func (db *DB) approximateSearch(query []float32, k int) ([]Result, int, error) {
	if err := db.checkQuery(query, k); err != nil {
		return nil, 0, err
	}
	keys := db.keys(query)

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, 0, ErrClosed
	}
	res, scored := db.approximateSearchLocked(query, keys, k)
	return res, scored, nil
}

// approximateSearchLocked reranks the union of the buckets named by keys.
// The caller holds db.mu.
func (db *DB) approximateSearchLocked(query []float32, keys []bucket.Key, k int) ([]Result, int) {
	candidates := roaring.New()
	db.index.Collect(keys, candidates)

	s := searcher.New(query, k)
	it := candidates.Iterator()
	for it.HasNext() {
		id := int32(it.Next())
		if v, ok := db.store.Get(id); ok {
			s.Offer(id, v)
		}
	}
	return s.Results(), s.Scored
}

// ExactQuery returns the ids of the k stored vectors most similar to query by
// a full scan. Cost is linear in the number of stored vectors.
func (db *DB) ExactQuery(query []float32, k int) ([]int32, error) {
	res, err := db.ExactSearch(query, k)
	if err != nil {
		return nil, err
	}
	return searcher.IDs(res), nil
}

// ExactSearch is ExactQuery with similarity scores.
func (db *DB) ExactSearch(query []float32, k int) ([]Result, error) {
	start := time.Now()
	res, scored, err := db.exactSearch(query, k)
	db.observeQuery(QueryExact, k, len(res), scored, time.Since(start), err)
	return res, err
}

func (db *DB) exactSearch(query []float32, k int) ([]Result, int, error) {
	if err := db.checkQuery(query, k); err != nil {
		return nil, 0, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, 0, ErrClosed
	}
	res, scored := db.exactSearchLocked(query, k)
	return res, scored, nil
}

// exactSearchLocked scores every stored vector. The caller holds db.mu.
func (db *DB) exactSearchLocked(query []float32, k int) ([]Result, int) {
	s := searcher.New(query, k)
	db.store.Range(func(id int32, v []float32) bool {
		s.Offer(id, v)
		return true
	})
	return s.Results(), s.Scored
}

func (db *DB) checkQuery(query []float32, k int) error {
	if k < 0 {
		return ErrInvalidK
	}
	return db.checkDim(query)
}

func (db *DB) observeQuery(kind QueryKind, k, results, scored int, d time.Duration, err error) {
	db.opts.metricsCollector.RecordQuery(kind, k, scored, d, err)
	db.opts.logger.LogQuery(context.Background(), kind, k, results, scored, err)
}

// Comparison holds approximate and exact results for the same query.
// Both searches observe the same state.
type Comparison struct {
	Approximate         []Result
	Exact               []Result
	ApproximateDuration time.Duration
	ExactDuration       time.Duration
	// Recall is the fraction of exact ids that the approximate query also
	// returned. It is 1 when the exact result is empty.
	Recall float64
}

// Compare runs the approximate and the exact search for query under one lock
// acquisition and measures how many exact hits the approximate search found.
// Each search is recorded in metrics and logs like ApproximateSearch and
// ExactSearch.
func (db *DB) Compare(query []float32, k int) (*Comparison, error) {
	if err := db.checkQuery(query, k); err != nil {
		db.observeQuery(QueryApproximate, k, 0, 0, 0, err)
		return nil, err
	}
	keys := db.keys(query)

	cmp, approxScored, exactScored, err := db.compare(query, keys, k)
	if err != nil {
		db.observeQuery(QueryApproximate, k, 0, 0, 0, err)
		return nil, err
	}
	db.observeQuery(QueryApproximate, k, len(cmp.Approximate), approxScored, cmp.ApproximateDuration, nil)
	db.observeQuery(QueryExact, k, len(cmp.Exact), exactScored, cmp.ExactDuration, nil)
	return cmp, nil
}

func (db *DB) compare(query []float32, keys []bucket.Key, k int) (*Comparison, int, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, 0, 0, ErrClosed
	}

	start := time.Now()
	approx, approxScored := db.approximateSearchLocked(query, keys, k)
	mid := time.Now()
	exact, exactScored := db.exactSearchLocked(query, k)

	return &Comparison{
		Approximate:         approx,
		Exact:               exact,
		ApproximateDuration: mid.Sub(start),
		ExactDuration:       time.Since(mid),
		Recall:              recall(approx, exact),
	}, approxScored, exactScored, nil
}

func recall(approx, exact []Result) float64 {
	if len(exact) == 0 {
		return 1
	}
	found := make(map[int32]struct{}, len(approx))
	for _, r := range approx {
		found[r.ID] = struct{}{}
	}
	hits := 0
	for _, r := range exact {
		if _, ok := found[r.ID]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(exact))
}

// TableStats describes the occupancy of one hash table.
type TableStats struct {
	// Buckets is the number of non-empty buckets.
	Buckets int
	// MaxBucket is the size of the largest bucket.
	MaxBucket int
	// MeanSize is the mean size of the non-empty buckets.
	MeanSize float64
}

// Stats summarizes a database.
type Stats struct {
	Dimension int
	NumTables int
	NumBits   int
	Seed      int64
	Records   int
	Tables    []TableStats
}

// Stats returns the shape of the database and per-table bucket occupancy.
func (db *DB) Stats() Stats {
	db.mu.Lock()
	defer db.mu.Unlock()

	st := Stats{
		Dimension: db.dim,
		NumTables: db.numTables,
		NumBits:   db.numBits,
		Seed:      db.seed,
	}
	if db.closed {
		return st
	}

	st.Records = db.store.Len()
	for _, ts := range db.index.Stats() {
		st.Tables = append(st.Tables, TableStats(ts))
	}
	return st
}

// Close releases the stored vectors. Later operations return ErrClosed, or
// report absence where the method has no error result. Close is idempotent.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	db.store.Reset()
	db.index.Reset()
	return nil
}
