package dupes

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"runtime"
	"slices"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/bamsammich/doopie/internal/event"
	"github.com/bamsammich/doopie/internal/stats"
)

// HashConfig controls the content hashing stage.
type HashConfig struct {
	Events    chan<- event.Event
	Stats     stats.Writer
	Limiter   *rate.Limiter // shared read throttle; nil means unlimited
	Algorithm Algorithm
	Workers   int
}

// DigestBucket holds the entries of one size bucket that share a digest.
type DigestBucket struct {
	Entries []FileEntry
	Size    int64
	Digest  Digest
}

// HashResult is the outcome of the hashing stage.
type HashResult struct {
	Err         error // set only when the context was cancelled
	Buckets     []DigestBucket
	Skipped     []Skip
	FilesHashed int64
	BytesHashed int64
}

// DefaultWorkers returns the default hash worker count.
func DefaultWorkers() int {
	return min(runtime.NumCPU()*2, 32)
}

// HashBuckets digests every member of every candidate size bucket and
// groups them by digest. Buckets are independent, so they fan out to
// cfg.Workers goroutines. Files that cannot be read, or whose length no
// longer matches the enumerated size, are skipped without aborting their
// bucket. Cancellation is checked once per file, never mid-read.
//
// The merged result is deterministic: buckets are sorted by size then
// digest, members by path.
func HashBuckets(ctx context.Context, cfg HashConfig, candidates []SizeBucket) HashResult {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = DefaultAlgorithm
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	taskCh := make(chan SizeBucket, workers*2)
	var mu sync.Mutex
	var result HashResult
	var wg sync.WaitGroup

	for id := 0; id < workers; id++ {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			for bucket := range taskCh {
				buckets, skipped, files, n := hashBucket(ctx, cfg, id, bucket)

				mu.Lock()
				result.Buckets = append(result.Buckets, buckets...)
				result.Skipped = append(result.Skipped, skipped...)
				result.FilesHashed += files
				result.BytesHashed += n
				mu.Unlock()
			}
		}()
	}

	feedBuckets(ctx, taskCh, candidates)
	close(taskCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return HashResult{Err: err}
	}

	sortDigestBuckets(result.Buckets)
	sortSkips(result.Skipped)
	return result
}

func feedBuckets(ctx context.Context, taskCh chan<- SizeBucket, candidates []SizeBucket) {
	for _, b := range candidates {
		select {
		case <-ctx.Done():
			return
		case taskCh <- b:
		}
	}
}

// hashBucket hashes one size bucket sequentially and groups it by digest.
func hashBucket(
	ctx context.Context,
	cfg HashConfig,
	workerID int,
	bucket SizeBucket,
) (buckets []DigestBucket, skipped []Skip, files, hashed int64) {
	groups := make(map[Digest][]FileEntry)
	var order []Digest

	for _, entry := range bucket.Entries {
		if ctx.Err() != nil {
			return nil, nil, 0, 0
		}

		digest, n, err := hashFile(ctx, entry.Path, cfg.Algorithm, cfg.Limiter)
		if err == nil && n != entry.Size {
			err = errSizeChanged
		}
		if err != nil {
			s := hashSkip(entry, err)
			skipped = append(skipped, s)
			cfg.Stats.AddFilesSkipped(1)
			logSkip(s)
			emitEvent(cfg.Events, event.Event{
				Type:     event.FileSkipped,
				Path:     entry.Path,
				Reason:   s.Reason,
				Size:     entry.Size,
				Error:    err,
				WorkerID: workerID,
			})
			continue
		}

		files++
		hashed += n
		cfg.Stats.AddFilesHashed(1)
		cfg.Stats.AddBytesHashed(n)
		emitEvent(cfg.Events, event.Event{
			Type:     event.FileHashed,
			Path:     entry.Path,
			Size:     n,
			WorkerID: workerID,
		})

		if _, ok := groups[digest]; !ok {
			order = append(order, digest)
		}
		groups[digest] = append(groups[digest], entry)
	}

	for _, d := range order {
		buckets = append(buckets, DigestBucket{Digest: d, Size: bucket.Size, Entries: groups[d]})
	}
	return buckets, skipped, files, hashed
}

var errSizeChanged = errors.New("file size changed since enumeration")

func hashSkip(entry FileEntry, err error) Skip {
	reason := ReasonUnreadable
	switch {
	case errors.Is(err, errSizeChanged):
		reason = ReasonModified
	case errors.Is(err, fs.ErrNotExist):
		reason = ReasonVanished
	case errors.Is(err, fs.ErrPermission):
		reason = ReasonPermissionDenied
	}
	return Skip{
		Path:   entry.Path,
		Size:   entry.Size,
		Reason: reason,
		Err:    err,
		Stage:  StageHash,
	}
}

func sortDigestBuckets(buckets []DigestBucket) {
	for i := range buckets {
		slices.SortFunc(buckets[i].Entries, func(a, b FileEntry) int {
			return strings.Compare(a.Path, b.Path)
		})
	}
	slices.SortFunc(buckets, func(a, b DigestBucket) int {
		switch {
		case a.Size < b.Size:
			return -1
		case a.Size > b.Size:
			return 1
		default:
			return bytes.Compare(a.Digest[:], b.Digest[:])
		}
	})
}
