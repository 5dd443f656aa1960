package dupes

import (
	"slices"
	"strings"
)

// DuplicateSet is a group of files with identical content.
type DuplicateSet struct {
	Entries []FileEntry
	Size    int64
	Digest  Digest
}

// Reclaimable returns the bytes freed by keeping a single copy.
func (s DuplicateSet) Reclaimable() int64 {
	if len(s.Entries) < 2 {
		return 0
	}
	return s.Size * int64(len(s.Entries)-1)
}

// Classification partitions every successfully processed file into unique
// files and duplicate sets. The two never share an entry.
type Classification struct {
	Unique     []FileEntry
	Duplicates []DuplicateSet
}

// DuplicateFiles returns the flat list of files that have at least one
// identical twin, in set order.
func (c Classification) DuplicateFiles() []FileEntry {
	var out []FileEntry
	for _, set := range c.Duplicates {
		out = append(out, set.Entries...)
	}
	return out
}

// Classify turns digest buckets into the final partition. sizeUnique holds
// the files already known to be unique from size bucketing. Singleton
// digest buckets join them; larger buckets become duplicate sets. Inputs
// are not modified.
func Classify(sizeUnique []FileEntry, buckets []DigestBucket) Classification {
	unique := slices.Clone(sizeUnique)
	var sets []DuplicateSet

	for _, b := range buckets {
		if len(b.Entries) == 1 {
			unique = append(unique, b.Entries[0])
			continue
		}
		sets = append(sets, DuplicateSet{
			Digest:  b.Digest,
			Size:    b.Size,
			Entries: slices.Clone(b.Entries),
		})
	}

	slices.SortFunc(unique, func(a, b FileEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return Classification{Unique: unique, Duplicates: sets}
}
