package ui

import "github.com/bamsammich/doopie/internal/event"

// Event is the scan event consumed by presenters.
type Event = event.Event

// Re-export event types for convenience.
const (
	ScanStarted       = event.ScanStarted
	EnumerateComplete = event.EnumerateComplete
	FileSkipped       = event.FileSkipped
	BucketsComplete   = event.BucketsComplete
	HashStarted       = event.HashStarted
	FileHashed        = event.FileHashed
	HashComplete      = event.HashComplete
	ScanComplete      = event.ScanComplete
	ReportWritten     = event.ReportWritten
)
