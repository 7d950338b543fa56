package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/croncommander/cc-jobparse/internal/logger"
)

// errFilesFailed marks a batch in which at least one file failed. Each
// failure has already been reported, so Execute only sets the exit code.
var errFilesFailed = errors.New("one or more files failed to decode")

var parseFlags struct {
	file      string
	dir       string
	recursive bool
	all       bool
	format    string
	workers   int
	forward   string
	maxSize   int64
}

var parseCmd = &cobra.Command{
	Use:   "parse [-f FILE | -d DIR] [FILE...]",
	Short: "Decode job files and print their descriptors",
	Long: `Decode Task Scheduler job files and print one descriptor per file.

Files come from -f, from positional arguments, or from a directory scan
with -d. A directory scan selects the configured extensions (.job and
.xml by default); --all hands every regular file to format detection.

A file that fails to decode is reported and the batch continues. The
exit status is 1 when any file failed.`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFlags.file, "file", "f", "", "Job file to decode")
	parseCmd.Flags().StringVarP(&parseFlags.dir, "dir", "d", "", "Directory of job files to decode")
	parseCmd.Flags().BoolVarP(&parseFlags.recursive, "recursive", "r", false, "Descend into subdirectories of --dir")
	parseCmd.Flags().BoolVar(&parseFlags.all, "all", false, "Decode every file, not only configured extensions")
	parseCmd.Flags().StringVar(&parseFlags.format, "format", "", "Output format: text, json, yaml or toml")
	parseCmd.Flags().IntVar(&parseFlags.workers, "workers", 0, "Concurrent decodes, 0 for one per CPU")
	parseCmd.Flags().StringVar(&parseFlags.forward, "forward", "", "Forward descriptors to a collector (ws:// URL)")
	parseCmd.Flags().Int64Var(&parseFlags.maxSize, "max-size", 0, "Refuse files larger than this many bytes")
}

// parseOptions is the merged view of config file and flags.
type parseOptions struct {
	format   reportFormat
	workers  int
	maxSize  int64
	discover discoverOptions
	forward  ForwardConfig
}

// resolveParseOptions overlays the flags the user set on the loaded
// config. Flags left at their defaults do not override the file.
func resolveParseOptions(cmd *cobra.Command) (parseOptions, error) {
	c := cfg
	flags := cmd.Flags()

	if flags.Changed("format") {
		c.Format = parseFlags.format
	}
	if flags.Changed("workers") {
		c.Workers = parseFlags.workers
	}
	if flags.Changed("max-size") {
		c.MaxSize = parseFlags.maxSize
	}
	if flags.Changed("recursive") {
		c.Recursive = parseFlags.recursive
	}
	if flags.Changed("all") {
		c.All = parseFlags.all
	}
	if flags.Changed("forward") {
		c.Forward.URL = parseFlags.forward
	}

	format, err := parseReportFormat(c.Format)
	if err != nil {
		return parseOptions{}, err
	}
	return parseOptions{
		format:  format,
		workers: c.Workers,
		maxSize: c.MaxSize,
		discover: discoverOptions{
			Recursive:  c.Recursive,
			All:        c.All,
			Extensions: c.Extensions,
		},
		forward: c.Forward,
	}, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	opts, err := resolveParseOptions(cmd)
	if err != nil {
		return err
	}

	var paths []string
	if parseFlags.file != "" {
		paths = append(paths, parseFlags.file)
	}
	paths = append(paths, args...)
	if parseFlags.dir != "" {
		found, err := discover(parseFlags.dir, opts.discover)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			logger.Warnw("no job files found", "dir", parseFlags.dir)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 && parseFlags.dir == "" {
		return errors.WithHint(errors.New("nothing to decode"), "pass -f FILE, -d DIR or file arguments")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, batchErr := decodeBatch(ctx, paths, opts.workers, opts.maxSize)

	if err := writeReport(cmd.OutOrStdout(), opts.format, results); err != nil {
		return err
	}
	// Structured formats carry errors inline; repeat them on stderr so
	// they are not lost when stdout is redirected.
	if opts.format != formatText {
		for _, r := range results {
			if r.Err != nil {
				printError(cmd.ErrOrStderr(), r.Err)
			}
		}
	}

	if opts.forward.URL != "" {
		fwd := newForwarder(opts.forward)
		if err := fwd.connect(); err != nil {
			return err
		}
		err := fwd.forward(results)
		fwd.close()
		if err != nil {
			return err
		}
	}

	s := summarize(results)
	logger.Infow("batch complete", "files", s.Files, "decoded", s.Decoded, "failed", s.Failed, "warnings", s.Warnings)

	if batchErr != nil {
		return errors.Wrap(batchErr, "batch interrupted")
	}
	if s.Failed > 0 {
		return errors.Wrapf(errFilesFailed, "%d of %d files", s.Failed, s.Files)
	}
	return nil
}
