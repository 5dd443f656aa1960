package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	EnumerateComplete
	FileSkipped
	BucketsComplete
	HashStarted
	FileHashed
	HashComplete
	ScanComplete
	ReportWritten
)

var typeNames = [...]string{
	ScanStarted:       "ScanStarted",
	EnumerateComplete: "EnumerateComplete",
	FileSkipped:       "FileSkipped",
	BucketsComplete:   "BucketsComplete",
	HashStarted:       "HashStarted",
	FileHashed:        "FileHashed",
	HashComplete:      "HashComplete",
	ScanComplete:      "ScanComplete",
	ReportWritten:     "ReportWritten",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the scan pipeline.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // absolute path
	Reason    string // skip reason (FileSkipped)
	Size      int64  // file size
	Total     int64  // files in the stage (EnumerateComplete, HashStarted)
	TotalSize int64  // bytes in the stage
	Error     error
	WorkerID  int
}
