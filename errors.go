package lshdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/lshdb/persistence"
	"github.com/hupe1980/lshdb/vectorstore"
)

var (
	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrIO marks a filesystem or blob store failure during save or load.
	// The underlying error stays reachable with errors.Is/As.
	ErrIO = errors.New("snapshot io failed")

	// ErrFormat marks a malformed snapshot. It is the same value as
	// persistence.ErrFormat, so the more specific persistence errors match it too.
	ErrFormat = persistence.ErrFormat

	// ErrClosed is returned by operations on a closed DB.
	ErrClosed = errors.New("database is closed")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidConfig indicates a constructor parameter out of range.
type ErrInvalidConfig struct {
	Field string
	Value int
	cause error
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}

func (e *ErrInvalidConfig) Unwrap() error { return e.cause }

// translateError maps errors from the internal packages onto the public taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrClosed),
		errors.Is(err, ErrInvalidK),
		errors.Is(err, ErrIO),
		errors.Is(err, ErrFormat),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}

	var dm *ErrDimensionMismatch
	if errors.As(err, &dm) {
		return err
	}
	if errors.Is(err, vectorstore.ErrWrongDimension) {
		return &ErrDimensionMismatch{cause: err}
	}

	return err
}

// ioError classifies a save/load failure: format errors pass through, and
// everything else becomes an ErrIO.
func ioError(err error) error {
	if err == nil {
		return nil
	}
	err = translateError(err)
	switch {
	case errors.Is(err, ErrFormat),
		errors.Is(err, ErrIO),
		errors.Is(err, ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
