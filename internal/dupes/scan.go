// Package dupes finds files with identical content under a directory tree.
package dupes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bamsammich/doopie/internal/event"
	"github.com/bamsammich/doopie/internal/filter"
	"github.com/bamsammich/doopie/internal/platform"
	"github.com/bamsammich/doopie/internal/stats"
)

// Structural errors. A scan does not start when the root fails validation.
var (
	ErrRootNotFound   = errors.New("root path does not exist")
	ErrRootNotDir     = errors.New("root path is not a directory")
	ErrRootUnreadable = errors.New("root path is not readable")
)

// Config describes a duplicate scan.
type Config struct {
	Filter      *filter.Chain
	Events      chan<- event.Event
	Stats       *stats.Collector
	Root        string
	ScanID      string
	Algorithm   Algorithm
	OutputPath  string // duplicate list; empty disables writing
	GroupsPath  string // grouped YAML; empty disables writing
	Workers     int    // hash workers
	ScanWorkers int    // directory walk workers
	BWLimit     int64  // hash read bytes per second across all workers; 0 is unlimited
}

// Result is the outcome of a scan.
type Result struct {
	Err            error
	Classification Classification
	Skipped        []Skip
	Report         ScanReport
}

// ValidateRoot resolves root to an absolute, symlink-free directory path
// and checks that it can be listed.
func ValidateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, abs)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootUnreadable, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDir, abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootUnreadable, abs, err)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootUnreadable, resolved, err)
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %s: %w", ErrRootUnreadable, resolved, err)
	}

	return resolved, nil
}

// Run executes a scan, blocking until complete: enumerate, bucket by size,
// hash candidate buckets, classify, then write the requested artifacts.
// Each stage consumes the previous stage's full result.
func Run(ctx context.Context, cfg Config) Result {
	start := time.Now()

	root, err := ValidateRoot(cfg.Root)
	if err != nil {
		return Result{Err: err}
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = DefaultAlgorithm
	}
	if cfg.ScanID == "" {
		cfg.ScanID = uuid.NewString()
	}

	var exclude []string
	for _, p := range []string{cfg.OutputPath, cfg.GroupsPath} {
		if p != "" {
			exclude = append(exclude, resolveArtifact(p))
		}
	}

	slog.Debug("starting scan", "root", root, "algorithm", cfg.Algorithm, "workers", cfg.Workers)
	emitStage(ctx, cfg.Events, event.Event{Type: event.ScanStarted, Path: root})

	var timings StageTimings

	stageStart := time.Now()
	enum, err := Enumerate(ctx, EnumerateConfig{
		Root:    root,
		Workers: cfg.ScanWorkers,
		Filter:  cfg.Filter,
		Exclude: exclude,
		Events:  cfg.Events,
		Stats:   cfg.Stats,
	})
	if err != nil {
		return Result{Err: fmt.Errorf("enumerate %s: %w", root, err)}
	}
	timings.Enumerate = time.Since(stageStart)
	emitStage(ctx, cfg.Events, event.Event{
		Type:      event.EnumerateComplete,
		Total:     enum.Files,
		TotalSize: enum.Bytes,
	})
	slog.Debug("enumeration complete",
		"files", enum.Files, "entries", len(enum.Entries), "skipped", len(enum.Skipped))

	stageStart = time.Now()
	buckets := BucketBySize(enum.Entries)
	sizeUnique, candidates := buckets.Partition()
	timings.Bucket = time.Since(stageStart)

	var candidateFiles, candidateBytes int64
	for _, b := range candidates {
		candidateFiles += int64(len(b.Entries))
		candidateBytes += b.Bytes()
	}
	cfg.Stats.SetHashTotals(candidateFiles, candidateBytes)
	emitStage(ctx, cfg.Events, event.Event{
		Type:      event.BucketsComplete,
		Total:     candidateFiles,
		TotalSize: candidateBytes,
	})

	stageStart = time.Now()
	var hashed HashResult
	if len(candidates) > 0 {
		emitStage(ctx, cfg.Events, event.Event{
			Type:      event.HashStarted,
			Total:     candidateFiles,
			TotalSize: candidateBytes,
		})
		hcfg := HashConfig{
			Workers:   cfg.Workers,
			Algorithm: cfg.Algorithm,
			Events:    cfg.Events,
			Stats:     cfg.Stats,
		}
		if cfg.BWLimit > 0 {
			hcfg.Limiter = platform.NewBWLimiter(cfg.BWLimit)
		}
		hashed = HashBuckets(ctx, hcfg, candidates)
		if hashed.Err != nil {
			return Result{Err: fmt.Errorf("hash: %w", hashed.Err)}
		}
		emitStage(ctx, cfg.Events, event.Event{
			Type:      event.HashComplete,
			Total:     hashed.FilesHashed,
			TotalSize: hashed.BytesHashed,
		})
	}
	timings.Hash = time.Since(stageStart)

	stageStart = time.Now()
	cls := Classify(sizeUnique, hashed.Buckets)
	timings.Classify = time.Since(stageStart)

	report := BuildReport(enum, buckets, hashed, cls)
	report.Root = root
	report.ScanID = cfg.ScanID
	report.Algorithm = cfg.Algorithm
	report.Stages = timings

	skipped := make([]Skip, 0, len(enum.Skipped)+len(hashed.Skipped))
	skipped = append(skipped, enum.Skipped...)
	skipped = append(skipped, hashed.Skipped...)
	sortSkips(skipped)

	if !report.Accounted() {
		slog.Warn("file accounting mismatch",
			"seen", report.FilesSeen, "unique", report.UniqueFiles,
			"duplicate", report.DuplicateFiles, "skipped", report.FilesSkipped)
	}

	if err := writeArtifacts(ctx, cfg, report, cls); err != nil {
		return Result{Err: err, Report: report, Classification: cls, Skipped: skipped}
	}

	report.Elapsed = time.Since(start)
	emitStage(ctx, cfg.Events, event.Event{
		Type:      event.ScanComplete,
		Total:     report.FilesSeen,
		TotalSize: report.BytesSeen,
	})
	slog.Debug("scan complete", "report", report.String())

	return Result{Report: report, Classification: cls, Skipped: skipped}
}

func writeArtifacts(ctx context.Context, cfg Config, report ScanReport, cls Classification) error {
	if cfg.OutputPath != "" {
		if err := WriteDuplicateList(cfg.OutputPath, cls); err != nil {
			return err
		}
		emitStage(ctx, cfg.Events, event.Event{
			Type:  event.ReportWritten,
			Path:  cfg.OutputPath,
			Total: report.DuplicateFiles,
		})
	}
	if cfg.GroupsPath != "" {
		doc := NewGroupsDocument(report, cls, time.Now())
		if err := WriteGroups(cfg.GroupsPath, doc); err != nil {
			return err
		}
		emitStage(ctx, cfg.Events, event.Event{
			Type:  event.ReportWritten,
			Path:  cfg.GroupsPath,
			Total: report.DuplicateSets,
		})
	}
	return nil
}

// resolveArtifact makes an artifact path comparable with walked paths,
// which are rooted at the symlink-free scan root.
func resolveArtifact(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}
