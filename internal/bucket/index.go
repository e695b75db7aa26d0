package bucket

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index is a set of independent hash tables, each mapping a Key to the ids
// currently placed there, in insertion order.
type Index struct {
	tables []map[Key][]int32
}

// TableStats describes the occupancy of one table.
type TableStats struct {
	Buckets   int     // non-empty buckets
	MaxBucket int     // largest bucket size
	MeanSize  float64 // mean size over non-empty buckets
}

// NewIndex creates an empty index with numTables tables.
func NewIndex(numTables int) *Index {
	ix := &Index{tables: make([]map[Key][]int32, numTables)}
	ix.Reset()
	return ix
}

// NumTables returns the number of tables.
func (ix *Index) NumTables() int { return len(ix.tables) }

// Add appends id to bucket keys[t] of every table t.
func (ix *Index) Add(id int32, keys []Key) {
	for t, key := range keys {
		ix.tables[t][key] = append(ix.tables[t][key], id)
	}
}

// Remove deletes every occurrence of id from bucket keys[t] of every table t,
// keeping the order of the remaining ids. Emptied buckets are dropped.
func (ix *Index) Remove(id int32, keys []Key) {
	for t, key := range keys {
		bucket, ok := ix.tables[t][key]
		if !ok {
			continue
		}
		bucket = slices.DeleteFunc(bucket, func(x int32) bool { return x == id })
		if len(bucket) == 0 {
			delete(ix.tables[t], key)
			continue
		}
		ix.tables[t][key] = bucket
	}
}

// Bucket returns the ids in bucket key of table. The slice must not be modified.
func (ix *Index) Bucket(table int, key Key) []int32 {
	return ix.tables[table][key]
}

// Collect ORs the ids of bucket keys[t] of every table t into candidates,
// so an id reachable through several tables is counted once.
func (ix *Index) Collect(keys []Key, candidates *roaring.Bitmap) {
	for t, key := range keys {
		for _, id := range ix.tables[t][key] {
			candidates.Add(uint32(id))
		}
	}
}

// Locate returns the keys under which id appears in table, one entry per occurrence.
// It scans the whole table and is meant for verification, not the hot path.
func (ix *Index) Locate(table int, id int32) []Key {
	var keys []Key
	for key, bucket := range ix.tables[table] {
		for _, x := range bucket {
			if x == id {
				keys = append(keys, key)
			}
		}
	}
	slices.Sort(keys)
	return keys
}

// Reset removes all entries.
func (ix *Index) Reset() {
	for t := range ix.tables {
		ix.tables[t] = make(map[Key][]int32)
	}
}

// Stats reports per-table occupancy.
func (ix *Index) Stats() []TableStats {
	stats := make([]TableStats, len(ix.tables))
	for t, table := range ix.tables {
		total := 0
		for _, bucket := range table {
			total += len(bucket)
			stats[t].MaxBucket = max(stats[t].MaxBucket, len(bucket))
		}
		stats[t].Buckets = len(table)
		if len(table) > 0 {
			stats[t].MeanSize = float64(total) / float64(len(table))
		}
	}
	return stats
}
