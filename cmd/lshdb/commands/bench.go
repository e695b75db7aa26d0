package commands

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/lshdb"
	"github.com/hupe1980/lshdb/util"
)

var (
	benchQueries int
	benchK       int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure approximate recall and latency on stored vectors",
	Long: `Sample stored vectors as queries and compare approximate against exact
search. Reports mean latency of both, mean recall and the mean number of
candidates the hash tables produced.

Sampling is seeded with --seed, so repeated runs use the same queries.

Example:
  lshdb bench --db vectors.lshd -n 100 -k 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings(cmd)
		if err != nil {
			return err
		}

		metrics := &lshdb.BasicMetricsCollector{}
		db, err := openDB(cmd.Context(), cfg, 0, lshdb.WithMetricsCollector(metrics))
		if err != nil {
			return err
		}
		defer db.Close()

		all := db.GetAll()
		if len(all) == 0 {
			return fmt.Errorf("snapshot %s is empty", dbLocation)
		}
		ids := slices.Sorted(maps.Keys(all))
		rng := util.NewRNG(cfg.Seed)

		var (
			approx, exact time.Duration
			recall        float64
		)
		for range benchQueries {
			q := all[ids[rng.Intn(len(ids))]]
			cmp, err := db.Compare(q, benchK)
			if err != nil {
				return err
			}
			approx += cmp.ApproximateDuration
			exact += cmp.ExactDuration
			recall += cmp.Recall
		}

		n := max(benchQueries, 1)
		stats := metrics.GetStats()
		fmt.Fprintf(cmd.OutOrStdout(),
			"records:     %d\nqueries:     %d\nk:           %d\napproximate: %s\nexact:       %s\nrecall:      %.3f\ncandidates:  %d\n",
			len(all), benchQueries, benchK,
			approx/time.Duration(n), exact/time.Duration(n),
			recall/float64(n), stats.ApproxAvgCandidates)
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVarP(&benchQueries, "queries", "n", 50, "number of sampled queries")
	benchCmd.Flags().IntVarP(&benchK, "k", "k", 10, "number of neighbors")
	rootCmd.AddCommand(benchCmd)
}
