package lshdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/lshdb/blobstore"
	"github.com/hupe1980/lshdb/internal/bucket"
	"github.com/hupe1980/lshdb/persistence"
	"github.com/hupe1980/lshdb/resource"
	"github.com/hupe1980/lshdb/vectorstore"
)

// snapshotLocked captures the store in ascending id order. Vectors alias the
// store, so the result is only valid while db.mu is held.
func (db *DB) snapshotLocked() *persistence.Snapshot {
	ids := db.store.IDs()
	snap := &persistence.Snapshot{
		Dim:     db.dim,
		Records: make([]persistence.Record, len(ids)),
	}
	for i, id := range ids {
		v, _ := db.store.Get(id)
		snap.Records[i] = persistence.Record{ID: id, Vector: v}
	}
	return snap
}

// encode serializes the current state with the configured compression.
func (db *DB) encode() ([]byte, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, 0, ErrClosed
	}
	snap := db.snapshotLocked()

	var buf bytes.Buffer
	buf.Grow(persistence.HeaderSize + persistence.BodySize(db.dim, len(snap.Records)))
	if _, err := persistence.Encode(&buf, snap, db.opts.compression); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(snap.Records), nil
}

type state struct {
	store *vectorstore.Store
	index *bucket.Index
}

// buildState validates snap against this database and indexes it into a
// fresh store and index, leaving the live state untouched. Bucket placement
// is derived from this database's basis; snapshots carry no hyperplanes.
func (db *DB) buildState(ctx context.Context, snap *persistence.Snapshot) (*state, error) {
	if snap.Dim != db.dim {
		return nil, fmt.Errorf("%w: snapshot dim %d, database dim %d", persistence.ErrDimensionConflict, snap.Dim, db.dim)
	}

	// Later records win over earlier ones with the same id.
	last := make(map[int32]int, len(snap.Records))
	for i, r := range snap.Records {
		last[r.ID] = i
	}
	ids := make([]int32, 0, len(last))
	vecs := make([][]float32, 0, len(last))
	for i, r := range snap.Records {
		if last[r.ID] == i {
			ids = append(ids, r.ID)
			vecs = append(vecs, r.Vector)
		}
	}

	keys, err := db.hashParallel(ctx, vecs)
	if err != nil {
		return nil, err
	}

	st := &state{
		store: vectorstore.New(db.dim),
		index: bucket.NewIndex(db.numTables),
	}
	for i, id := range ids {
		if err := st.store.Put(id, vecs[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", persistence.ErrFormat, id, err)
		}
		st.index.Add(id, keys[i])
	}
	return st, nil
}

// swapLocked installs st as the live state. The caller holds db.mu.
func (db *DB) swapLocked(st *state) {
	db.store = st.store
	db.index = st.index
}

// apply builds st outside the lock and swaps it in.
func (db *DB) apply(ctx context.Context, snap *persistence.Snapshot) error {
	st, err := db.buildState(ctx, snap)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	db.swapLocked(st)
	return nil
}

// Save writes a snapshot to path, replacing it atomically on success.
//
// Save holds the database lock for the whole write, so concurrent operations
// stall until the file is on disk. Use WriteTo or SaveTo to keep the critical
// section to the in-memory encoding.
func (db *DB) Save(path string) error {
	start := time.Now()
	n, records, err := db.save(path)
	db.opts.metricsCollector.RecordSave(n, time.Since(start), err)
	db.opts.logger.LogSave(context.Background(), path, records, n, err)
	return err
}

func (db *DB) save(path string) (int64, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return 0, 0, ErrClosed
	}
	snap := db.snapshotLocked()

	var n int64
	err := persistence.SaveToFile(path, func(w io.Writer) error {
		var err error
		n, err = persistence.Encode(w, snap, db.opts.compression)
		return err
	})
	if err != nil {
		return 0, 0, ioError(err)
	}
	return n, len(snap.Records), nil
}

// Load replaces the contents of the database with the snapshot at path.
//
// The file is fully validated before any state changes; on error the
// database is untouched. Files without the versioned header are read with
// the legacy layout. Records are re-indexed with this database's
// hyperplanes, so a snapshot saved by a database with a different seed or
// shape loads completely but buckets differently.
//
// Load holds the database lock for its full duration.
func (db *DB) Load(path string) error {
	start := time.Now()
	snap, err := db.load(path)
	db.observeLoad(path, snap, time.Since(start), err)
	return err
}

func (db *DB) load(path string) (*persistence.Snapshot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrClosed
	}

	snap, err := persistence.LoadFile(path)
	if err != nil {
		return nil, ioError(err)
	}
	st, err := db.buildState(context.Background(), snap)
	if err != nil {
		return nil, err
	}
	db.swapLocked(st)
	return snap, nil
}

func (db *DB) observeLoad(source string, snap *persistence.Snapshot, d time.Duration, err error) {
	var (
		records int
		legacy  bool
	)
	if snap != nil {
		records = len(snap.Records)
		legacy = snap.Legacy
	}
	db.opts.metricsCollector.RecordLoad(records, d, err)
	db.opts.logger.LogLoad(context.Background(), source, records, legacy, err)
}

// WriteTo writes a snapshot to w. The lock is held only while encoding.
// Writes are throttled by the resource controller, if any.
func (db *DB) WriteTo(w io.Writer) (int64, error) {
	start := time.Now()
	n, records, err := db.writeTo(w)
	db.opts.metricsCollector.RecordSave(n, time.Since(start), err)
	db.opts.logger.LogSave(context.Background(), "stream", records, n, err)
	return n, err
}

func (db *DB) writeTo(w io.Writer) (int64, int, error) {
	data, records, err := db.encode()
	if err != nil {
		return 0, 0, err
	}
	rw := resource.NewRateLimitedWriter(context.Background(), w, db.opts.resources)
	m, err := rw.Write(data)
	if err != nil {
		return int64(m), records, ioError(err)
	}
	return int64(m), records, nil
}

// ReadFrom replaces the contents of the database with a snapshot read from r
// to EOF. It validates like Load and holds the lock only for the final swap.
// Reads are throttled by the resource controller, if any.
func (db *DB) ReadFrom(r io.Reader) (int64, error) {
	start := time.Now()
	ctx := context.Background()

	var buf bytes.Buffer
	n, err := buf.ReadFrom(resource.NewRateLimitedReader(ctx, r, db.opts.resources))
	if err != nil {
		err = ioError(err)
		db.observeLoad("stream", nil, time.Since(start), err)
		return n, err
	}

	snap, err := persistence.Decode(buf.Bytes())
	if err == nil {
		err = db.apply(ctx, snap)
	}
	if err != nil {
		snap = nil
	}
	db.observeLoad("stream", snap, time.Since(start), err)
	return n, err
}

// SaveTo uploads a snapshot to store under name.
//
// The database lock is held only while encoding. The upload waits for a
// transfer slot, reserves memory for the encoded snapshot and is paced by
// the resource controller's bandwidth limit.
func (db *DB) SaveTo(ctx context.Context, store blobstore.Store, name string) error {
	start := time.Now()
	n, records, err := db.saveTo(ctx, store, name)
	db.opts.metricsCollector.RecordSave(n, time.Since(start), err)
	db.opts.logger.LogSave(ctx, name, records, n, err)
	return err
}

func (db *DB) saveTo(ctx context.Context, store blobstore.Store, name string) (int64, int, error) {
	rc := db.opts.resources
	if err := rc.AcquireTransfer(ctx); err != nil {
		return 0, 0, err
	}
	defer rc.ReleaseTransfer()

	data, records, err := db.encode()
	if err != nil {
		return 0, 0, err
	}

	size := int64(len(data))
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return 0, 0, err
	}
	defer rc.ReleaseMemory(size)

	if err := rc.AcquireIO(ctx, len(data)); err != nil {
		return 0, 0, err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return 0, 0, ioError(err)
	}
	return size, records, nil
}

// LoadFrom replaces the contents of the database with the snapshot stored
// under name. It validates like Load; the download and re-indexing happen
// outside the lock, which is held only for the final swap.
func (db *DB) LoadFrom(ctx context.Context, store blobstore.Store, name string) error {
	start := time.Now()
	snap, err := db.loadFrom(ctx, store, name)
	db.observeLoad(name, snap, time.Since(start), err)
	return err
}

func (db *DB) loadFrom(ctx context.Context, store blobstore.Store, name string) (*persistence.Snapshot, error) {
	rc := db.opts.resources
	if err := rc.AcquireTransfer(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseTransfer()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, ioError(err)
	}
	defer blob.Close()

	size := blob.Size()
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}
	defer rc.ReleaseMemory(size)

	data := make([]byte, size)
	r := resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, blob), rc)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, ioError(err)
	}

	snap, err := persistence.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := db.apply(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
