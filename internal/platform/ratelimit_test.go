package platform

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBWLimiter(t *testing.T) {
	t.Parallel()

	t.Run("burst capped to rate when rate < 1MiB", func(t *testing.T) {
		t.Parallel()
		lim := NewBWLimiter(1024)
		assert.Equal(t, 1024, lim.Burst())
	})

	t.Run("burst is 1MiB when rate >= 1MiB", func(t *testing.T) {
		t.Parallel()
		lim := NewBWLimiter(10 * 1024 * 1024)
		assert.Equal(t, 1<<20, lim.Burst())
	})
}

func TestRateLimitedReader(t *testing.T) {
	t.Parallel()

	t.Run("reads all data", func(t *testing.T) {
		t.Parallel()
		data := bytes.Repeat([]byte("x"), 4096)
		lim := NewBWLimiter(1 << 20)
		rl := newRateLimitedReader(context.Background(), bytes.NewReader(data), lim)

		got, err := io.ReadAll(rl)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("enforces rate limit", func(t *testing.T) {
		t.Parallel()
		// 10 KiB at 5 KiB/s takes about a second once the burst is spent.
		dataSize := 10 * 1024
		data := bytes.Repeat([]byte("a"), dataSize)
		lim := NewBWLimiter(5 * 1024)

		start := time.Now()
		rl := newRateLimitedReader(context.Background(), bytes.NewReader(data), lim)
		got, err := io.ReadAll(rl)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Len(t, got, dataSize)
		assert.Greater(t, elapsed, 500*time.Millisecond,
			"rate limiter should slow reads to ~5KiB/s")
	})

	t.Run("reads larger than the burst are split", func(t *testing.T) {
		t.Parallel()
		lim := NewBWLimiter(1 << 20)
		rl := newRateLimitedReader(context.Background(), bytes.NewReader(make([]byte, 4<<20)), lim)

		n, err := rl.Read(make([]byte, 2<<20))
		require.NoError(t, err)
		assert.Equal(t, 1<<20, n)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()
		data := bytes.Repeat([]byte("b"), 1<<20)
		lim := NewBWLimiter(1024)

		ctx, cancel := context.WithCancel(context.Background())
		rl := newRateLimitedReader(ctx, bytes.NewReader(data), lim)
		cancel()

		buf := make([]byte, 4096)
		// The first read may fit in the burst; later ones must fail.
		for i := 0; i < 100; i++ {
			if _, err := rl.Read(buf); err != nil {
				return
			}
		}
		t.Fatal("expected context cancellation error")
	})
}

func TestReadAllLimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	data := bytes.Repeat([]byte("z"), 64*1024)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var buf bytes.Buffer
	n, err := ReadAllLimited(context.Background(), path, &buf, NewBWLimiter(1<<20))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, buf.Bytes())
}
