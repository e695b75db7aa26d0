package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("snapshot bytes")
	require.NoError(t, store.Put(ctx, "db/one", src))
	require.NoError(t, store.Put(ctx, "db/two", []byte("2")))
	require.NoError(t, store.Put(ctx, "other", []byte("3")))

	// Put copies its input.
	src[0] = 'X'

	blob, err := store.Open(ctx, "db/one")
	require.NoError(t, err)
	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "snapshot bytes", string(got))
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "db/")
	require.NoError(t, err)
	assert.Equal(t, []string{"db/one", "db/two"}, names)

	require.NoError(t, store.Delete(ctx, "db/one"))
	_, err = store.Open(ctx, "db/one")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewReader(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := make([]byte, 10_000)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, store.Put(ctx, "big", data))

	blob, err := store.Open(ctx, "big")
	require.NoError(t, err)
	defer blob.Close()

	got, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
