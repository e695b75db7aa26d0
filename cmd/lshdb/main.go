// Command lshdb manages lshdb snapshots from the command line.
//
// Usage:
//
//	lshdb [flags] <command> [args]
//
// Commands:
//
//	import   - Insert records from a JSON or YAML file and save the snapshot
//	query    - Find the nearest neighbors of a vector
//	compare  - Run approximate and exact search side by side
//	stats    - Show record and bucket statistics
//	bench    - Measure approximate recall and latency on stored vectors
//
// Snapshots are addressed with --db, which accepts a local path,
// s3://bucket/key or minio://endpoint/bucket/key.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/lshdb/cmd/lshdb/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
