// Package config loads the lshdb CLI configuration file.
//
// A configuration file is YAML:
//
//	dim: 128
//	tables: 8
//	bits: 16
//	seed: 42
//	compression: zstd
//	log_level: info
//	resources:
//	  memory_limit_bytes: 268435456
//	  max_concurrent_transfers: 4
//	  io_limit_bytes_per_sec: 0
//	minio:
//	  secure: true
//
// Command line flags override values from the file.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/hupe1980/lshdb"
	"github.com/hupe1980/lshdb/persistence"
	"github.com/hupe1980/lshdb/resource"
)

// Config is the CLI configuration.
type Config struct {
	Dim         int       `yaml:"dim"`
	Tables      int       `yaml:"tables"`
	Bits        int       `yaml:"bits"`
	Seed        int64     `yaml:"seed"`
	Compression string    `yaml:"compression"`
	LogLevel    string    `yaml:"log_level"`
	Resources   Resources `yaml:"resources"`
	MinIO       MinIO     `yaml:"minio"`
}

// Resources bounds snapshot transfers to and from blob stores.
type Resources struct {
	MemoryLimitBytes       int64 `yaml:"memory_limit_bytes"`
	MaxConcurrentTransfers int   `yaml:"max_concurrent_transfers"`
	IOLimitBytesPerSec     int   `yaml:"io_limit_bytes_per_sec"`
}

// MinIO holds connection settings for minio:// locations.
// Credentials come from MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
type MinIO struct {
	Secure bool `yaml:"secure"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Tables:      8,
		Bits:        16,
		Seed:        lshdb.DefaultSeed,
		Compression: persistence.CompressionNone.String(),
		LogLevel:    "warn",
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResourceController returns a controller for the configured limits, or nil
// when no limit is set.
func (c *Config) ResourceController() *resource.Controller {
	r := c.Resources
	if r.MemoryLimitBytes == 0 && r.MaxConcurrentTransfers == 0 && r.IOLimitBytesPerSec == 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:       r.MemoryLimitBytes,
		MaxConcurrentTransfers: int64(r.MaxConcurrentTransfers),
		IOLimitBytesPerSec:     int64(r.IOLimitBytesPerSec),
	})
}
