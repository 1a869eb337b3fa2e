package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkers(t *testing.T) {
	rc := NewController(Config{MaxWorkers: 1})
	assert.Equal(t, 1, rc.MaxWorkers())

	ctx := context.Background()
	require.NoError(t, rc.AcquireWorker(ctx))

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, rc.AcquireWorker(short), context.DeadlineExceeded)

	rc.ReleaseWorker()
	require.NoError(t, rc.AcquireWorker(ctx))
	rc.ReleaseWorker()
}

func TestMemory(t *testing.T) {
	rc := NewController(Config{MemoryLimitBytes: 100})
	assert.True(t, rc.TryAcquireMemory(60))
	assert.False(t, rc.TryAcquireMemory(50))
	assert.Equal(t, int64(60), rc.MemoryUsage())
	rc.ReleaseMemory(60)
	assert.True(t, rc.TryAcquireMemory(100))
}

func TestNilController(t *testing.T) {
	var rc *Controller
	ctx := context.Background()
	require.NoError(t, rc.AcquireWorker(ctx))
	rc.ReleaseWorker()
	require.NoError(t, rc.AcquireIO(ctx, 1<<30))
	assert.True(t, rc.TryAcquireMemory(1<<40))
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, 1, rc.MaxWorkers())
}

func TestAcquireIOLargerThanBurst(t *testing.T) {
	rc := NewController(Config{IOBytesPerSec: 1 << 20})
	// Larger than the burst; WaitN would fail without splitting.
	require.NoError(t, rc.AcquireIO(context.Background(), 1<<20+10))
}

func TestRateLimitedIO(t *testing.T) {
	rc := NewController(Config{IOBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, rc)
	_, err := w.Write([]byte("hadith"))
	require.NoError(t, err)

	r := NewRateLimitedReader(ctx, &buf, rc)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hadith", string(data))
}
