package dupes

import (
	"encoding/hex"
	"fmt"
)

// FileEntry is a regular file discovered during enumeration. Identity is
// the absolute path.
type FileEntry struct {
	Path string
	Size int64
}

// Digest is a fixed-length content hash (256 bits for every supported
// algorithm).
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Stage identifies the pipeline stage that produced a Skip.
type Stage int

const (
	StageEnumerate Stage = iota + 1
	StageHash
)

func (s Stage) String() string {
	switch s {
	case StageEnumerate:
		return "enumerate"
	case StageHash:
		return "hash"
	default:
		return "unknown"
	}
}

// Skip reasons.
const (
	ReasonVanished         = "vanished"
	ReasonNoOwnerRead      = "no owner read permission"
	ReasonPermissionDenied = "permission denied"
	ReasonUnsupported      = "unsupported file type"
	ReasonUnreadable       = "unreadable"
	ReasonModified         = "modified during scan"
	ReasonStatFailed       = "stat failed"
)

// Skip records a file deliberately left out of classification because of
// a recoverable condition.
type Skip struct {
	Err    error
	Path   string
	Reason string
	Detail string // e.g. the file kind for ReasonUnsupported
	Size   int64  // known size, 0 when the file could not be sized
	Stage  Stage
}

func (s Skip) String() string {
	reason := s.Reason
	if s.Detail != "" {
		reason = fmt.Sprintf("%s (%s)", s.Reason, s.Detail)
	}
	if s.Err != nil {
		return fmt.Sprintf("%s: %s: %v", s.Path, reason, s.Err)
	}
	return fmt.Sprintf("%s: %s", s.Path, reason)
}
