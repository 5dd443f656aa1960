package dupes

import (
	"fmt"
	"time"
)

// StageTimings records the wall time spent in each pipeline stage.
type StageTimings struct {
	Enumerate time.Duration
	Bucket    time.Duration
	Hash      time.Duration
	Classify  time.Duration
}

// ScanReport aggregates the outcome of one scan. It is derived once, at
// the end of a scan, and never modified afterwards.
type ScanReport struct {
	Root      string
	ScanID    string
	Algorithm Algorithm

	FilesSeen      int64
	FilesSkipped   int64
	UniqueFiles    int64
	DuplicateFiles int64
	DuplicateSets  int64

	BytesSeen        int64
	UniqueBytes      int64
	DuplicateBytes   int64
	ReclaimableBytes int64

	// Per-stage granularity for display collaborators.
	SizeBuckets    int64 // distinct sizes seen
	CandidateFiles int64 // files in size buckets with two or more members
	FilesHashed    int64
	BytesHashed    int64
	DirsUnreadable int64

	Stages  StageTimings
	Elapsed time.Duration
}

// Accounted reports whether every observed file is either unique, a
// duplicate, or skipped.
func (r ScanReport) Accounted() bool {
	return r.FilesSeen == r.UniqueFiles+r.DuplicateFiles+r.FilesSkipped
}

func (r ScanReport) String() string {
	return fmt.Sprintf(
		"files=%d skipped=%d unique=%d duplicates=%d sets=%d bytes=%d unique_bytes=%d duplicate_bytes=%d elapsed=%s",
		r.FilesSeen, r.FilesSkipped, r.UniqueFiles, r.DuplicateFiles, r.DuplicateSets,
		r.BytesSeen, r.UniqueBytes, r.DuplicateBytes, r.Elapsed.Round(time.Millisecond),
	)
}

// BuildReport computes the counts and byte totals of a finished scan from
// the outputs of each stage. Identity fields and timings are left for the
// caller.
func BuildReport(
	enum Enumeration,
	buckets SizeBuckets,
	hashed HashResult,
	cls Classification,
) ScanReport {
	r := ScanReport{
		FilesSeen:      enum.Files,
		BytesSeen:      enum.Bytes,
		FilesSkipped:   int64(len(enum.Skipped) + len(hashed.Skipped)),
		SizeBuckets:    int64(len(buckets)),
		FilesHashed:    hashed.FilesHashed,
		BytesHashed:    hashed.BytesHashed,
		DirsUnreadable: enum.DirsUnreadable,
		UniqueFiles:    int64(len(cls.Unique)),
		DuplicateSets:  int64(len(cls.Duplicates)),
	}

	for _, entries := range buckets {
		if len(entries) > 1 {
			r.CandidateFiles += int64(len(entries))
		}
	}
	for _, e := range cls.Unique {
		r.UniqueBytes += e.Size
	}
	for _, set := range cls.Duplicates {
		r.DuplicateFiles += int64(len(set.Entries))
		r.DuplicateBytes += set.Size * int64(len(set.Entries))
		r.ReclaimableBytes += set.Reclaimable()
	}
	return r
}
