package dupes

import (
	"slices"
	"strings"
)

// SizeBucket holds the entries sharing one exact byte size, in scan order.
type SizeBucket struct {
	Entries []FileEntry
	Size    int64
}

// Bytes returns the total size of the bucket's members.
func (b SizeBucket) Bytes() int64 {
	return b.Size * int64(len(b.Entries))
}

// SizeBuckets maps a byte size to the entries of that size.
type SizeBuckets map[int64][]FileEntry

// BucketBySize groups entries by exact size. Pure, no I/O.
func BucketBySize(entries []FileEntry) SizeBuckets {
	buckets := make(SizeBuckets)
	for _, e := range entries {
		buckets[e.Size] = append(buckets[e.Size], e)
	}
	return buckets
}

// Partition splits the buckets into files that are unique by size alone
// and candidate buckets (two or more members) that need hashing. Unique
// files are sorted by path, candidates by size.
func (b SizeBuckets) Partition() (unique []FileEntry, candidates []SizeBucket) {
	for size, entries := range b {
		if len(entries) == 1 {
			unique = append(unique, entries[0])
			continue
		}
		candidates = append(candidates, SizeBucket{Size: size, Entries: entries})
	}

	slices.SortFunc(unique, func(x, y FileEntry) int {
		return strings.Compare(x.Path, y.Path)
	})
	slices.SortFunc(candidates, func(x, y SizeBucket) int {
		switch {
		case x.Size < y.Size:
			return -1
		case x.Size > y.Size:
			return 1
		default:
			return 0
		}
	})
	return unique, candidates
}
