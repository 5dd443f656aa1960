// Package platform wraps OS-specific file access used while hashing.
package platform

import (
	"context"
	"io"
	"os"
	"sync"

	"golang.org/x/time/rate"
)

const bufferSize = 256 * 1024

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// ReadAll streams the whole file at path into w using a pooled buffer and
// the platform's sequential-read hints. The file is closed before return.
// It returns the number of bytes read.
func ReadAll(path string, w io.Writer) (int64, error) {
	return ReadAllLimited(context.Background(), path, w, nil)
}

// ReadAllLimited is ReadAll with reads throttled by lim, which may be
// shared by many concurrent readers. A nil lim does not throttle. Waiting
// on the limiter stops when ctx is done.
func ReadAllLimited(ctx context.Context, path string, w io.Writer, lim *rate.Limiter) (int64, error) {
	f, err := openSequential(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if lim != nil {
		r = newRateLimitedReader(ctx, f, lim)
	}

	bufp := bufPool.Get().(*[]byte) //nolint:errcheck,forcetypeassert // pool only holds *[]byte
	defer bufPool.Put(bufp)

	// Wrap r so io.CopyBuffer cannot bypass the buffer via ReaderFrom/WriterTo.
	return io.CopyBuffer(w, struct{ io.Reader }{r}, *bufp)
}

// openPlain is the portable fallback used when no read hints apply.
func openPlain(path string) (*os.File, error) {
	return os.Open(path)
}
