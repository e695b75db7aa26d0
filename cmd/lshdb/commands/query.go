package commands

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/lshdb"
)

var (
	queryVector string
	queryK      int
	queryExact  bool
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Find the nearest neighbors of a vector",
	Long: `Find the k stored vectors most similar to --vector by cosine similarity.

By default only the candidates sharing a bucket with the query are ranked.
--exact scans every record.

Examples:
  lshdb query --db vectors.lshd --vector 0.1,0.2,0.3 -k 5
  lshdb query --db vectors.lshd --vector 0.1,0.2,0.3 --exact --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vec, err := parseVector(queryVector)
		if err != nil {
			return err
		}
		cfg, err := settings(cmd)
		if err != nil {
			return err
		}

		db, err := openDB(cmd.Context(), cfg, len(vec))
		if err != nil {
			return err
		}
		defer db.Close()

		var results []lshdb.Result
		if queryExact {
			results, err = db.ExactSearch(vec, queryK)
		} else {
			results, err = db.ApproximateSearch(vec, queryK)
		}
		if err != nil {
			return err
		}

		if queryJSON {
			return printJSON(cmd.OutOrStdout(), results)
		}
		return printResults(cmd.OutOrStdout(), results)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryVector, "vector", "", "comma separated query vector")
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 10, "number of neighbors")
	queryCmd.Flags().BoolVar(&queryExact, "exact", false, "scan every record instead of the hash buckets")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(queryCmd)
}
