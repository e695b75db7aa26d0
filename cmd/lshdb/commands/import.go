package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
)

var importInput string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Insert records from a file and save the snapshot",
	Long: `Insert records from a JSON or YAML file into the snapshot at --db.

The snapshot is created when it does not exist yet. Records with an id that
is already stored replace the stored vector.

Example input file (vectors.yaml):
  - id: 1
    vector: [0.1, 0.2, 0.3]
  - id: 2
    vector: [0.3, 0.2, 0.1]

Examples:
  lshdb import --db vectors.lshd --input vectors.yaml
  lshdb import --db s3://my-bucket/vectors.lshd --input vectors.json --compression zstd`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importInput == "" {
			return fmt.Errorf("input file is required, use --input")
		}
		cfg, err := settings(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		records, err := loadRecords(importInput)
		if err != nil {
			return err
		}
		var dimHint int
		if len(records) > 0 {
			dimHint = len(records[0].Vector)
		}

		loc, err := requireLocation(ctx, cfg)
		if err != nil {
			return err
		}
		db, err := newDB(cfg, dimHint)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := loc.Load(ctx, db); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", loc, err)
		}
		if err := db.BatchInsert(records); err != nil {
			return err
		}
		if err := loc.Save(ctx, db); err != nil {
			return fmt.Errorf("failed to save %s: %w", loc, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d records into %s (%d total)\n", len(records), loc, db.Len())
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "JSON or YAML file with id/vector records")
	rootCmd.AddCommand(importCmd)
}
