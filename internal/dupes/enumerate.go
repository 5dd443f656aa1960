package dupes

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/bamsammich/doopie/internal/event"
	"github.com/bamsammich/doopie/internal/filter"
	"github.com/bamsammich/doopie/internal/stats"
)

// EnumerateConfig controls the directory walk.
type EnumerateConfig struct {
	Root    string // absolute, validated directory
	Workers int
	Filter  *filter.Chain
	// Exclude lists absolute paths that are never observed (doopie's own
	// output artifacts). Their writeAtomic staging files are skipped too.
	Exclude []string
	Events  chan<- event.Event
	Stats   stats.Writer
}

// Enumeration is the result of walking the tree. Every observed file is
// either in Entries or in Skipped.
type Enumeration struct {
	Entries        []FileEntry
	Skipped        []Skip
	Files          int64 // files observed, including skipped ones
	Bytes          int64 // bytes of observed files with a known size
	DirsUnreadable int64
}

// Enumerate walks cfg.Root in parallel and returns a FileEntry for every
// readable regular file. Symbolic links are never followed; they are
// skipped like any other non-regular entry. Per-entry problems are
// recorded as skips; only cancellation or a failure to walk the root
// itself is returned as an error. Entries and skips are sorted by path.
func Enumerate(ctx context.Context, cfg EnumerateConfig) (Enumeration, error) {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	e := &enumerator{
		cfg:     cfg,
		exclude: make(map[string]struct{}, len(cfg.Exclude)),
	}
	for _, p := range cfg.Exclude {
		e.exclude[filepath.Clean(p)] = struct{}{}
	}

	conf := fastwalk.Config{Follow: false}
	if cfg.Workers > 0 {
		conf.NumWorkers = cfg.Workers
	}

	err := fastwalk.Walk(&conf, cfg.Root, func(path string, d fs.DirEntry, err error) error {
		return e.visit(ctx, path, d, err)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Enumeration{}, ctxErr
		}
		return Enumeration{}, err
	}

	slices.SortFunc(e.result.Entries, func(a, b FileEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	sortSkips(e.result.Skipped)

	return e.result, nil
}

type enumerator struct {
	cfg     EnumerateConfig
	exclude map[string]struct{}

	mu     sync.Mutex // fastwalk calls visit concurrently
	result Enumeration
}

func (e *enumerator) visit(ctx context.Context, path string, d fs.DirEntry, walkErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if walkErr != nil {
		return e.walkError(path, walkErr)
	}

	if path == e.cfg.Root {
		return nil
	}
	rel := e.relPath(path)

	if d.IsDir() {
		if e.cfg.Filter != nil && !e.cfg.Filter.MatchPath(rel, true) {
			slog.Debug("pruning directory", "path", path)
			return fastwalk.SkipDir
		}
		return nil
	}

	if e.excluded(path) {
		return nil
	}

	return e.inspect(path, rel)
}

// excluded reports whether path is one of the artifacts or a staging file
// left behind while writing one.
func (e *enumerator) excluded(path string) bool {
	if _, ok := e.exclude[path]; ok {
		return true
	}
	for artifact := range e.exclude {
		if isStagingFile(artifact, path) {
			return true
		}
	}
	return false
}

// inspect classifies a non-directory entry at the moment of inspection.
func (e *enumerator) inspect(path, rel string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if e.cfg.Filter != nil && !e.cfg.Filter.MatchPath(rel, false) {
			return nil
		}
		reason := ReasonStatFailed
		if errors.Is(err, fs.ErrNotExist) {
			reason = ReasonVanished
		}
		e.skip(Skip{Path: path, Reason: reason, Err: err, Stage: StageEnumerate})
		return nil
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		// Replaced by a directory after the parent was read; the walker
		// did not descend into it and it holds no file of its own.
		return nil

	case !mode.IsRegular():
		if e.cfg.Filter != nil && !e.cfg.Filter.MatchPath(rel, false) {
			return nil
		}
		e.skip(Skip{
			Path:   path,
			Reason: ReasonUnsupported,
			Detail: fileKind(mode),
			Stage:  StageEnumerate,
		})
		return nil
	}

	size := info.Size()
	if e.cfg.Filter != nil && !e.cfg.Filter.Match(rel, false, size) {
		return nil
	}

	if mode.Perm()&0o400 == 0 {
		e.skip(Skip{Path: path, Reason: ReasonNoOwnerRead, Size: size, Stage: StageEnumerate})
		return nil
	}

	e.cfg.Stats.AddFilesSeen(1)
	e.cfg.Stats.AddBytesSeen(size)

	e.mu.Lock()
	e.result.Files++
	e.result.Bytes += size
	e.result.Entries = append(e.result.Entries, FileEntry{Path: path, Size: size})
	e.mu.Unlock()
	return nil
}

// walkError handles an error reported by the walker for path.
func (e *enumerator) walkError(path string, err error) error {
	if path == e.cfg.Root {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		// A directory removed while the walk was in flight.
		slog.Debug("directory vanished", "path", path)
		return nil
	}
	slog.Warn("cannot read directory", "path", path, "error", err)
	e.cfg.Stats.AddDirsUnreadable(1)
	e.mu.Lock()
	e.result.DirsUnreadable++
	e.mu.Unlock()
	return nil
}

func (e *enumerator) skip(s Skip) {
	e.cfg.Stats.AddFilesSeen(1)
	e.cfg.Stats.AddBytesSeen(s.Size)
	e.cfg.Stats.AddFilesSkipped(1)

	e.mu.Lock()
	e.result.Files++
	e.result.Bytes += s.Size
	e.result.Skipped = append(e.result.Skipped, s)
	e.mu.Unlock()

	logSkip(s)
	emitEvent(e.cfg.Events, event.Event{
		Type:   event.FileSkipped,
		Path:   s.Path,
		Reason: s.Reason,
		Size:   s.Size,
		Error:  s.Err,
	})
}

func (e *enumerator) relPath(path string) string {
	rel, err := filepath.Rel(e.cfg.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func fileKind(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return "symlink"
	case mode&fs.ModeNamedPipe != 0:
		return "fifo"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeCharDevice != 0:
		return "char device"
	case mode&fs.ModeDevice != 0:
		return "block device"
	default:
		return "irregular"
	}
}

func sortSkips(skips []Skip) {
	slices.SortFunc(skips, func(a, b Skip) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// logSkip logs a skip. Vanished files are an expected race and only show
// up at debug level.
func logSkip(s Skip) {
	attrs := []any{"path", s.Path, "reason", s.Reason, "stage", s.Stage.String()}
	if s.Detail != "" {
		attrs = append(attrs, "detail", s.Detail)
	}
	if s.Err != nil {
		attrs = append(attrs, "error", s.Err)
	}
	if s.Reason == ReasonVanished {
		slog.Debug("skipping file", attrs...)
		return
	}
	slog.Info("skipping file", attrs...)
}
