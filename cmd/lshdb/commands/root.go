package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/lshdb"
	"github.com/hupe1980/lshdb/cmd/lshdb/internal/config"
	"github.com/hupe1980/lshdb/persistence"
)

var (
	// Global flags
	configFile  string
	dbLocation  string
	dimFlag     int
	tablesFlag  int
	bitsFlag    int
	seedFlag    int64
	compression string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "lshdb",
	Short: "Approximate nearest neighbor search over LSH snapshots",
	Long: `lshdb - command line access to lshdb snapshots.

A snapshot is addressed with --db:
  /path/to/db.lshd               local file
  s3://bucket/key                Amazon S3 (credentials from the AWS environment)
  minio://endpoint/bucket/key    MinIO (MINIO_ACCESS_KEY, MINIO_SECRET_KEY)

The index shape (--dim, --tables, --bits, --seed) is not stored in the
snapshot. Use the same values for every command against a snapshot to get
the same buckets.

Examples:
  lshdb import --db vectors.lshd --input vectors.json
  lshdb query --db vectors.lshd --vector 0.1,0.2,0.3 -k 5
  lshdb --config lshdb.yaml bench --db s3://my-bucket/vectors.lshd -n 100`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML configuration file")
	pf.StringVar(&dbLocation, "db", "", "snapshot location (path, s3:// or minio:// URL)")
	pf.IntVar(&dimFlag, "dim", 0, "vector dimension (inferred from input when omitted)")
	pf.IntVar(&tablesFlag, "tables", 8, "number of hash tables")
	pf.IntVar(&bitsFlag, "bits", 16, "hyperplanes per table (1-32)")
	pf.Int64Var(&seedFlag, "seed", lshdb.DefaultSeed, "hyperplane seed")
	pf.StringVar(&compression, "compression", persistence.CompressionNone.String(), "snapshot compression: none, lz4 or zstd")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
}

// settings merges the configuration file with flags set on cmd.
func settings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dim") {
		cfg.Dim = dimFlag
	}
	if flags.Changed("tables") {
		cfg.Tables = tablesFlag
	}
	if flags.Changed("bits") {
		cfg.Bits = bitsFlag
	}
	if flags.Changed("seed") {
		cfg.Seed = seedFlag
	}
	if flags.Changed("compression") {
		cfg.Compression = compression
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newDB creates an empty database from cfg. dimHint is used when neither the
// configuration nor --dim names a dimension.
func newDB(cfg *config.Config, dimHint int, extra ...lshdb.Option) (*lshdb.DB, error) {
	dim := cfg.Dim
	if dim == 0 {
		dim = dimHint
	}
	if dim == 0 {
		return nil, fmt.Errorf("dimension is unknown, use --dim or set dim in the config file")
	}

	c, err := persistence.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	opts := []lshdb.Option{
		lshdb.WithSeed(cfg.Seed),
		lshdb.WithCompression(c),
		lshdb.WithLogger(lshdb.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))),
		lshdb.WithResourceController(cfg.ResourceController()),
	}
	return lshdb.New(dim, cfg.Tables, cfg.Bits, append(opts, extra...)...)
}

// openDB creates a database from cfg and loads the snapshot named by --db.
func openDB(ctx context.Context, cfg *config.Config, dimHint int, extra ...lshdb.Option) (*lshdb.DB, error) {
	loc, err := requireLocation(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Dim == 0 && dimHint == 0 {
		if dimHint, err = loc.Dimension(ctx); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", loc, err)
		}
	}
	db, err := newDB(cfg, dimHint, extra...)
	if err != nil {
		return nil, err
	}
	if err := loc.Load(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load %s: %w", loc, err)
	}
	return db, nil
}

func requireLocation(ctx context.Context, cfg *config.Config) (Location, error) {
	if dbLocation == "" {
		return nil, fmt.Errorf("snapshot location is required, use --db")
	}
	return ParseLocation(ctx, dbLocation, cfg)
}
