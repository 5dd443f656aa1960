package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bamsammich/doopie/internal/config"
	"github.com/bamsammich/doopie/internal/dupes"
	"github.com/bamsammich/doopie/internal/event"
	"github.com/bamsammich/doopie/internal/filter"
	"github.com/bamsammich/doopie/internal/stats"
	"github.com/bamsammich/doopie/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude, --ignore and --include rules by appending to a shared
// filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// options holds the parsed command line.
type options struct {
	regexes     []string
	filterFile  string
	minSizeStr  string
	maxSizeStr  string
	bwLimitStr  string
	hashName    string
	outputPath  string
	groupsPath  string
	logFile     string
	workers     int
	verbose     bool
	quiet       bool
	noProgress  bool
	outputInCwd bool
	showVersion bool
}

// run executes the CLI and returns the process exit code. A panic
// anywhere in the command is reported and exits 2.
func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Error: unexpected failure: %v\n", r)
			code = 2
		}
	}()

	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
			}
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "doopie [flags] <directory>",
		Short: "Find files with identical content in a directory tree",
		Long: `doopie walks a directory tree, groups regular files by size, hashes only
the files that share a size, and writes the absolute path of every file
that has at least one identical twin to duplicate_files.txt.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(stdout, "doopie %s\n", version)
				return nil
			}
			return scan(cmd, args[0], &opts, chain, stdout, stderr)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	flags.StringArrayVarP(&opts.regexes, "regex", "r", nil,
		"only consider files whose root-relative path matches REGEX (repeatable)")
	flags.VarP(&filterFlag{chain: chain}, "ignore", "i",
		"skip files and directories matching PATTERN (repeatable)")
	flags.Var(&filterFlag{chain: chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	flags.Var(&filterFlag{chain: chain, include: true}, "include",
		"include files matching PATTERN (repeatable)")
	flags.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	flags.StringVar(&opts.minSizeStr, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	flags.StringVar(&opts.maxSizeStr, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")

	flags.IntVarP(&opts.workers, "workers", "n", 0,
		"number of hash workers (default: min(NumCPU*2, 32))")
	flags.StringVar(&opts.bwLimitStr, "bwlimit", "", "cap hash read throughput per second (e.g. 100M, 1G)")
	flags.StringVar(&opts.hashName, "hash", string(dupes.DefaultAlgorithm), "digest algorithm (blake3 or sha256)")

	flags.StringVarP(&opts.outputPath, "output", "o", "",
		"duplicate list path (default: <directory>/"+dupes.DuplicateListName+")")
	flags.StringVar(&opts.groupsPath, "groups", "", "also write duplicate sets as YAML to PATH")

	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable progress display")
	flags.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE (rotated)")

	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: wires config, logging, filters and presenter around one scan
func scan(
	cmd *cobra.Command,
	dir string,
	opts *options,
	chain *filter.Chain,
	stdout, stderr io.Writer,
) error {
	// Load optional config file.
	cfg, cfgErr := config.Load()
	applyConfigDefaults(cmd, cfg.Defaults, opts)

	scanID := uuid.NewString()
	closeLog, err := setupLogging(opts, scanID, stderr)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer closeLog()
	if cfgErr != nil {
		slog.Warn("failed to load config", "path", config.ConfigPath(), "error", cfgErr)
	}

	for _, pattern := range cfg.Defaults.Ignore {
		if err := chain.AddExclude(pattern); err != nil {
			return &exitError{code: 2, err: fmt.Errorf("config ignore %q: %w", pattern, err)}
		}
	}
	if err := buildFilter(chain, opts); err != nil {
		return &exitError{code: 2, err: err}
	}

	alg, err := dupes.ParseAlgorithm(opts.hashName)
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("invalid --hash: %w", err)}
	}

	var bwLimit int64
	if opts.bwLimitStr != "" {
		bwLimit, err = filter.ParseSize(opts.bwLimitStr)
		if err != nil {
			return &exitError{code: 2, err: fmt.Errorf("invalid --bwlimit: %w", err)}
		}
	}

	root, err := dupes.ValidateRoot(dir)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	outputPath := opts.outputPath
	if outputPath == "" {
		outputPath, err = dupes.DefaultOutputPath(root, opts.outputInCwd)
		if err != nil {
			return &exitError{code: 2, err: err}
		}
	}

	workers := opts.workers
	if workers <= 0 {
		workers = dupes.DefaultWorkers()
	}

	// Set up context with signal handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	// When --log is set, tee events through a logging goroutine that writes
	// structured records before forwarding to the presenter.
	presenterEvents := (<-chan event.Event)(events)
	if opts.logFile != "" {
		presenterEvents = teeEvents(events)
	}

	ui.ApplyTheme(cfg.Theme)
	presenter := ui.NewPresenter(ui.Config{
		Writer:     stdout,
		ErrWriter:  stderr,
		Stats:      collector,
		Root:       root,
		IsTTY:      isTerminal(stderr),
		Quiet:      opts.quiet,
		Verbose:    opts.verbose,
		NoProgress: opts.noProgress,
	})

	scanCfg := dupes.Config{
		Root:       root,
		Workers:    workers,
		BWLimit:    bwLimit,
		Algorithm:  alg,
		OutputPath: outputPath,
		GroupsPath: opts.groupsPath,
		ScanID:     scanID,
		Events:     events,
		Stats:      collector,
	}
	// Only set filter if it has rules/size constraints.
	if !chain.Empty() {
		scanCfg.Filter = chain
	}

	slog.Debug("starting scan",
		"root", root,
		"output", outputPath,
		"groups", opts.groupsPath,
		"workers", workers,
		"bwlimit", bwLimit,
		"hash", alg,
	)

	// Presenter runs in the background, the scan in the foreground.
	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	result := dupes.Run(ctx, scanCfg)
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
	}

	if !opts.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(stderr, summary)
		}
	}

	if result.Err != nil {
		return scanError(result.Err)
	}

	slog.Info("scan complete", "report", result.Report.String())
	if !opts.quiet {
		fmt.Fprint(stdout, ui.SummaryTable(result.Report))
		fmt.Fprintf(stdout, "%s was successfully written\n", outputPath)
		if opts.groupsPath != "" {
			fmt.Fprintf(stdout, "%s was successfully written\n", opts.groupsPath)
		}
	}
	return nil
}

// scanError maps a failed scan to its exit code: 1 when interrupted, 2 for
// everything else.
func scanError(err error) error {
	if errors.Is(err, context.Canceled) {
		return &exitError{code: 1, err: errors.New("scan interrupted, no report written")}
	}
	return &exitError{code: 2, err: err}
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *options) {
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		opts.workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("hash") && defaults.Hash != nil {
		opts.hashName = *defaults.Hash
	}
	if !cmd.Flags().Changed("min-size") && defaults.MinSize != nil {
		opts.minSizeStr = *defaults.MinSize
	}
	if !cmd.Flags().Changed("max-size") && defaults.MaxSize != nil {
		opts.maxSizeStr = *defaults.MaxSize
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		opts.bwLimitStr = *defaults.BWLimit
	}
	if !cmd.Flags().Changed("no-progress") && defaults.Progress != nil {
		opts.noProgress = !*defaults.Progress
	}
	if defaults.OutputInCwd != nil {
		opts.outputInCwd = *defaults.OutputInCwd
	}
}

// buildFilter adds the regex, filter-file and size options to chain. Glob
// rules from --ignore/--exclude/--include are already in it.
func buildFilter(chain *filter.Chain, opts *options) error {
	for _, expr := range opts.regexes {
		if err := chain.AddRegex(expr); err != nil {
			return fmt.Errorf("invalid --regex: %w", err)
		}
	}

	if opts.filterFile != "" {
		if err := chain.LoadFile(opts.filterFile); err != nil {
			return fmt.Errorf("load filter file: %w", err)
		}
	}

	if opts.minSizeStr != "" {
		n, err := filter.ParseSize(opts.minSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --min-size: %w", err)
		}
		chain.SetMinSize(n)
	}
	if opts.maxSizeStr != "" {
		n, err := filter.ParseSize(opts.maxSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --max-size: %w", err)
		}
		chain.SetMaxSize(n)
	}
	return nil
}

// setupLogging installs the default slog logger: text on stderr at a level
// chosen by -v/-q, plus a rotated JSON file when --log is set. Every record
// carries the scan id.
func setupLogging(opts *options, scanID string, stderr io.Writer) (func(), error) {
	logLevel := slog.LevelInfo
	switch {
	case opts.verbose:
		logLevel = slog.LevelDebug
	case opts.quiet:
		logLevel = slog.LevelWarn
	}
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	var logHandler slog.Handler = textHandler
	closeFn := func() {}
	if opts.logFile != "" {
		lf := &lumberjack.Logger{
			Filename:   opts.logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		// Fail early on an unwritable log path rather than on the first record.
		if _, err := lf.Write(nil); err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
		closeFn = func() { _ = lf.Close() }
	}

	slog.SetDefault(slog.New(logHandler).With("scan_id", scanID))
	return closeFn, nil
}

// teeEvents logs every event as a structured record and forwards it.
func teeEvents(events <-chan event.Event) <-chan event.Event {
	teed := make(chan event.Event, 256)
	go func() {
		for ev := range events {
			attrs := []slog.Attr{
				slog.String("type", ev.Type.String()),
				slog.String("path", ev.Path),
				slog.Int64("size", ev.Size),
				slog.Int("worker", ev.WorkerID),
			}
			if ev.Reason != "" {
				attrs = append(attrs, slog.String("reason", ev.Reason))
			}
			if ev.Total > 0 {
				attrs = append(attrs, slog.Int64("total", ev.Total), slog.Int64("total_size", ev.TotalSize))
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "doopie.event", attrs...)
			teed <- ev
		}
		close(teed)
	}()
	return teed
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTTY(f)
}

type exitError struct {
	err  error
	code int
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}
