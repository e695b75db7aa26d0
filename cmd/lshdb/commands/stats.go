package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record and bucket statistics",
	Long: `Show the index shape, the number of records and the bucket distribution
of every hash table.

Example:
  lshdb stats --db vectors.lshd --tables 8 --bits 16`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings(cmd)
		if err != nil {
			return err
		}

		db, err := openDB(cmd.Context(), cfg, 0)
		if err != nil {
			return err
		}
		defer db.Close()

		s := db.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dimension: %d\ntables:    %d\nbits:      %d\nseed:      %d\nrecords:   %d\n\n",
			s.Dimension, s.NumTables, s.NumBits, s.Seed, s.Records)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TABLE\tBUCKETS\tMAX\tMEAN")
		for i, t := range s.Tables {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\n", i, t.Buckets, t.MaxBucket, t.MeanSize)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
