package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	err := c.AcquireMemory(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	err = c.AcquireMemory(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// TryAcquire 20 (should fail)
	ok := c.TryAcquireMemory(20)
	assert.False(t, ok)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should block/timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = c.AcquireMemory(ctx, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	err = c.AcquireMemory(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_OversizedMemoryRequest(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 500))
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.False(t, c.TryAcquireMemory(1))

	c.ReleaseMemory(500)
	assert.True(t, c.TryAcquireMemory(1))
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Transfers(t *testing.T) {
	c := NewController(Config{MaxConcurrentTransfers: 2})

	require.NoError(t, c.AcquireTransfer(context.Background()))
	require.NoError(t, c.AcquireTransfer(context.Background()))

	assert.False(t, c.TryAcquireTransfer())

	c.ReleaseTransfer()
	assert.True(t, c.TryAcquireTransfer())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	require.NoError(t, c.AcquireMemory(context.Background(), 10))
	assert.True(t, c.TryAcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())

	require.NoError(t, c.AcquireTransfer(context.Background()))
	assert.True(t, c.TryAcquireTransfer())
	c.ReleaseTransfer()

	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestController_AcquireIOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// Exceeds the burst; must be split rather than rejected.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.AcquireIO(ctx, (1<<20)+10))
}

func TestController_AcquireIOCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 100))
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var dst bytes.Buffer
	w := NewRateLimitedWriter(ctx, &dst, c)
	_, err := w.Write([]byte("snapshot"))
	require.NoError(t, err)
	assert.Equal(t, "snapshot", dst.String())

	r := NewRateLimitedReader(ctx, strings.NewReader("payload"), c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}
