package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

const ringSize = 60

// Reader is the read side of a Collector used by presenters.
type Reader interface {
	Snapshot() Snapshot
}

// ReadTicker is a Reader that also drives the throughput ring buffer.
type ReadTicker interface {
	Reader
	Tick()
	RollingSpeed(seconds int) float64
	RollingFilesPerSec(seconds int) float64
	ETA() time.Duration
}

// Writer is the write side of a Collector used by the scan stages.
type Writer interface {
	AddFilesSeen(n int64)
	AddBytesSeen(n int64)
	AddFilesSkipped(n int64)
	AddDirsUnreadable(n int64)
	AddFilesHashed(n int64)
	AddBytesHashed(n int64)
	SetHashTotals(files, bytes int64)
}

// Collector tracks scan statistics using lock-free atomic counters.
// The enumerator and the hash workers write concurrently; presenters read.
type Collector struct {
	filesSeen      atomic.Int64
	bytesSeen      atomic.Int64
	filesSkipped   atomic.Int64
	dirsUnreadable atomic.Int64
	filesHashed    atomic.Int64
	bytesHashed    atomic.Int64
	hashFilesTotal atomic.Int64
	hashBytesTotal atomic.Int64
	startTime      time.Time

	// Ring buffer, written only by the presenter's Tick().
	mu          sync.Mutex
	throughput  [ringSize]int64 // hashed bytes delta per second
	filesPerSec [ringSize]int64 // hashed files delta per second
	ringIdx     int
	ringCount   int // samples written, capped at ringSize
	lastBytes   int64
	lastFiles   int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetHashTotals records how much work the hash stage has (called once
// when bucketing completes).
func (c *Collector) SetHashTotals(files, bytes int64) {
	c.hashFilesTotal.Store(files)
	c.hashBytesTotal.Store(bytes)
}

func (c *Collector) AddFilesSeen(n int64)      { c.filesSeen.Add(n) }
func (c *Collector) AddBytesSeen(n int64)      { c.bytesSeen.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)   { c.filesSkipped.Add(n) }
func (c *Collector) AddDirsUnreadable(n int64) { c.dirsUnreadable.Add(n) }
func (c *Collector) AddFilesHashed(n int64)    { c.filesHashed.Add(n) }
func (c *Collector) AddBytesHashed(n int64)    { c.bytesHashed.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesSeen      int64
	BytesSeen      int64
	FilesSkipped   int64
	DirsUnreadable int64
	FilesHashed    int64
	BytesHashed    int64
	HashFilesTotal int64
	HashBytesTotal int64
	Elapsed        time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesSeen:      c.filesSeen.Load(),
		BytesSeen:      c.bytesSeen.Load(),
		FilesSkipped:   c.filesSkipped.Load(),
		DirsUnreadable: c.dirsUnreadable.Load(),
		FilesHashed:    c.filesHashed.Load(),
		BytesHashed:    c.bytesHashed.Load(),
		HashFilesTotal: c.hashFilesTotal.Load(),
		HashBytesTotal: c.hashBytesTotal.Load(),
		Elapsed:        c.Elapsed(),
	}
}

// Tick snapshots hashed byte/file deltas into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	currentBytes := c.bytesHashed.Load()
	currentFiles := c.filesHashed.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	bytesDelta := currentBytes - c.lastBytes
	filesDelta := currentFiles - c.lastFiles
	c.lastBytes = currentBytes
	c.lastFiles = currentFiles

	c.throughput[c.ringIdx] = bytesDelta
	c.filesPerSec[c.ringIdx] = filesDelta
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average hashed bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.throughput[:], seconds)
}

// RollingFilesPerSec returns average hashed files/sec over the last n seconds.
func (c *Collector) RollingFilesPerSec(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.filesPerSec[:], seconds)
}

func (c *Collector) rollingAvg(buf []int64, n int) float64 {
	count := min(n, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := 0; i < count; i++ {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += buf[idx]
	}
	return float64(sum) / float64(count)
}

// ETA estimates the remaining hash time from the rolling speed.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.hashBytesTotal.Load() - c.bytesHashed.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"seen=%d bytes=%d skipped=%d hashed=%d/%d hashed_bytes=%d/%d unreadable_dirs=%d",
		s.FilesSeen, s.BytesSeen, s.FilesSkipped,
		s.FilesHashed, s.HashFilesTotal, s.BytesHashed, s.HashBytesTotal,
		s.DirsUnreadable,
	)
}

// FormatBytes returns a human-readable byte count in IEC units.
func FormatBytes(b int64) string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}
