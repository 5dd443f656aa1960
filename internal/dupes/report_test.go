package dupes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildReport(t *testing.T) {
	enum := Enumeration{
		Entries: []FileEntry{
			{Path: "/r/a", Size: 10},
			{Path: "/r/b", Size: 10},
			{Path: "/r/c", Size: 10},
			{Path: "/r/d", Size: 3},
		},
		Skipped:        []Skip{{Path: "/r/locked", Reason: ReasonNoOwnerRead, Size: 5}},
		Files:          5,
		Bytes:          38,
		DirsUnreadable: 1,
	}
	buckets := BucketBySize(enum.Entries)
	hashed := HashResult{
		Buckets: []DigestBucket{
			{Size: 10, Digest: Digest{1}, Entries: []FileEntry{{Path: "/r/a", Size: 10}, {Path: "/r/c", Size: 10}}},
			{Size: 10, Digest: Digest{2}, Entries: []FileEntry{{Path: "/r/b", Size: 10}}},
		},
		FilesHashed: 3,
		BytesHashed: 30,
	}
	sizeUnique, _ := buckets.Partition()
	cls := Classify(sizeUnique, hashed.Buckets)

	r := BuildReport(enum, buckets, hashed, cls)

	assert.Equal(t, int64(5), r.FilesSeen)
	assert.Equal(t, int64(1), r.FilesSkipped)
	assert.Equal(t, int64(2), r.UniqueFiles)
	assert.Equal(t, int64(2), r.DuplicateFiles)
	assert.Equal(t, int64(1), r.DuplicateSets)
	assert.Equal(t, int64(38), r.BytesSeen)
	assert.Equal(t, int64(13), r.UniqueBytes)
	assert.Equal(t, int64(20), r.DuplicateBytes)
	assert.Equal(t, int64(10), r.ReclaimableBytes)
	assert.Equal(t, int64(2), r.SizeBuckets)
	assert.Equal(t, int64(3), r.CandidateFiles)
	assert.Equal(t, int64(3), r.FilesHashed)
	assert.Equal(t, int64(30), r.BytesHashed)
	assert.Equal(t, int64(1), r.DirsUnreadable)
	assert.True(t, r.Accounted())
}

func TestScanReport_AccountedMismatch(t *testing.T) {
	r := ScanReport{FilesSeen: 4, UniqueFiles: 1, DuplicateFiles: 2}
	assert.False(t, r.Accounted())
}

func TestScanReport_String(t *testing.T) {
	r := ScanReport{
		FilesSeen:      4,
		FilesSkipped:   1,
		UniqueFiles:    1,
		DuplicateFiles: 2,
		DuplicateSets:  1,
		BytesSeen:      100,
		Elapsed:        1500 * time.Microsecond,
	}
	s := r.String()
	assert.Contains(t, s, "files=4")
	assert.Contains(t, s, "skipped=1")
	assert.Contains(t, s, "duplicates=2")
	assert.Contains(t, s, "elapsed=2ms")
}
