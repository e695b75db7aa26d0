package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	compareVector string
	compareK      int
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run approximate and exact search side by side",
	Long: `Run approximate and exact search for the same query and report both
result sets, their latency and the recall of the approximate results.

Example:
  lshdb compare --db vectors.lshd --vector 0.1,0.2,0.3 -k 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vec, err := parseVector(compareVector)
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

		cmp, err := db.Compare(vec, compareK)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "approximate (%s):\n", cmp.ApproximateDuration)
		if err := printResults(out, cmp.Approximate); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nexact (%s):\n", cmp.ExactDuration)
		if err := printResults(out, cmp.Exact); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nrecall: %.3f\n", cmp.Recall)
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareVector, "vector", "", "comma separated query vector")
	compareCmd.Flags().IntVarP(&compareK, "k", "k", 10, "number of neighbors")
	rootCmd.AddCommand(compareCmd)
}
