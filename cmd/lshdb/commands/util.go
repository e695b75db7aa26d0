package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/hupe1980/lshdb"
)

// inputRecord is one entry of an import file.
type inputRecord struct {
	ID     int32     `json:"id" yaml:"id"`
	Vector []float32 `json:"vector" yaml:"vector"`
}

// loadRecords loads records from a YAML or JSON file
func loadRecords(path string) ([]lshdb.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var in []inputRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	records := make([]lshdb.Record, len(in))
	for i, r := range in {
		records[i] = lshdb.Record{ID: r.ID, Vector: r.Vector}
	}
	return records, nil
}

// parseVector parses a comma separated list of floats.
func parseVector(s string) ([]float32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("vector is required, use --vector")
	}
	parts := strings.Split(s, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func printResults(w io.Writer, results []lshdb.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIMILARITY")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%.6f\n", r.ID, r.Similarity)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
