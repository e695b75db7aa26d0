package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/lshdb"
	"github.com/hupe1980/lshdb/blobstore"
	"github.com/hupe1980/lshdb/blobstore/minio"
	"github.com/hupe1980/lshdb/blobstore/s3"
	"github.com/hupe1980/lshdb/cmd/lshdb/internal/config"
	"github.com/hupe1980/lshdb/persistence"
)

// Location is where a snapshot lives.
type Location interface {
	// Load replaces the contents of db with the snapshot.
	Load(ctx context.Context, db *lshdb.DB) error
	// Save writes db to the location.
	Save(ctx context.Context, db *lshdb.DB) error
	// Dimension reads the vector dimension recorded in the snapshot.
	Dimension(ctx context.Context) (int, error)
	String() string
}

// ParseLocation resolves a local path, s3://bucket/key or
// minio://endpoint/bucket/key.
func ParseLocation(ctx context.Context, raw string, cfg *config.Config) (Location, error) {
	switch {
	case strings.HasPrefix(raw, "s3://"):
		bucket, key, err := splitBucketKey(strings.TrimPrefix(raw, "s3://"))
		if err != nil {
			return nil, fmt.Errorf("invalid location %q: %w", raw, err)
		}
		store, err := s3.New(ctx, bucket)
		if err != nil {
			return nil, err
		}
		return &BlobLocation{Store: store, Name: key, raw: raw}, nil

	case strings.HasPrefix(raw, "minio://"):
		endpoint, rest, ok := strings.Cut(strings.TrimPrefix(raw, "minio://"), "/")
		if !ok || endpoint == "" {
			return nil, fmt.Errorf("invalid location %q: expected minio://endpoint/bucket/key", raw)
		}
		bucket, key, err := splitBucketKey(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid location %q: %w", raw, err)
		}
		store, err := minio.Dial(ctx, endpoint,
			os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"),
			cfg.MinIO.Secure, bucket, "")
		if err != nil {
			return nil, err
		}
		return &BlobLocation{Store: store, Name: key, raw: raw}, nil

	default:
		return FileLocation(raw), nil
	}
}

func splitBucketKey(s string) (string, string, error) {
	bucket, key, ok := strings.Cut(s, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("expected bucket/key")
	}
	return bucket, key, nil
}

// FileLocation is a snapshot file on the local filesystem.
type FileLocation string

func (l FileLocation) Load(_ context.Context, db *lshdb.DB) error { return db.Load(string(l)) }
func (l FileLocation) Save(_ context.Context, db *lshdb.DB) error { return db.Save(string(l)) }
func (l FileLocation) String() string                             { return string(l) }

func (l FileLocation) Dimension(context.Context) (int, error) {
	snap, err := persistence.LoadFile(string(l))
	if err != nil {
		return 0, err
	}
	return snap.Dim, nil
}

// BlobLocation is a snapshot stored under Name in a blob store.
type BlobLocation struct {
	Store blobstore.Store
	Name  string
	raw   string
}

func (l *BlobLocation) Load(ctx context.Context, db *lshdb.DB) error {
	return db.LoadFrom(ctx, l.Store, l.Name)
}

func (l *BlobLocation) Save(ctx context.Context, db *lshdb.DB) error {
	return db.SaveTo(ctx, l.Store, l.Name)
}

func (l *BlobLocation) Dimension(ctx context.Context) (int, error) {
	blob, err := l.Store.Open(ctx, l.Name)
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return 0, err
	}
	snap, err := persistence.Decode(data)
	if err != nil {
		return 0, err
	}
	return snap.Dim, nil
}

func (l *BlobLocation) String() string {
	if l.raw != "" {
		return l.raw
	}
	return l.Name
}
