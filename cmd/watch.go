package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/croncommander/cc-jobparse/internal/logger"
	"github.com/croncommander/cc-jobparse/internal/taskjob"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Decode job files as they appear in a directory",
	Long: `Watch DIR and decode each job file when it is created or rewritten.

Rapid successive writes to one file are coalesced; the file is decoded
once the writes settle. Files are decoded one at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&parseFlags.format, "format", "", "Output format: text, json, yaml or toml")
	watchCmd.Flags().StringVar(&parseFlags.forward, "forward", "", "Forward descriptors to a collector (ws:// URL)")
	watchCmd.Flags().Int64Var(&parseFlags.maxSize, "max-size", 0, "Refuse files larger than this many bytes")
	watchCmd.Flags().BoolVar(&parseFlags.all, "all", false, "Decode every file, not only configured extensions")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before a changed file is decoded")
}

var watchDebounce time.Duration

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := resolveParseOptions(cmd)
	if err != nil {
		return err
	}
	debounce := cfg.Watch.Debounce
	if cmd.Flags().Changed("debounce") {
		debounce = watchDebounce
	}

	var fwd *forwarder
	if opts.forward.URL != "" {
		fwd = newForwarder(opts.forward)
		if err := fwd.connect(); err != nil {
			return err
		}
		defer fwd.close()
	}

	out := cmd.OutOrStdout()
	w, err := newDirWatcher(args[0], debounce, opts.discover, func(r result) {
		if err := writeReport(out, opts.format, []result{r}); err != nil {
			logger.Errorw("writing report failed", "path", r.Path, "error", err)
		}
		if fwd != nil {
			if err := fwd.forward([]result{r}); err != nil {
				logger.Errorw("forwarding failed", "path", r.Path, "error", err)
			}
		}
	})
	if err != nil {
		return err
	}
	w.maxSize = opts.maxSize

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("watching for job files", "dir", args[0], "debounce", debounce.String())
	return w.run(ctx)
}

// dirWatcher decodes files in one directory as they change. All decodes
// run on the goroutine that called run; fsnotify events only arm
// per-path debounce timers.
type dirWatcher struct {
	dir      string
	debounce time.Duration
	filter   discoverOptions
	maxSize  int64
	onResult func(result)

	watcher *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
	quit   chan struct{}
}

func newDirWatcher(dir string, debounce time.Duration, filter discoverOptions, onResult func(result)) (*dirWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "watching %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("watching %s: not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	return &dirWatcher{
		dir:      dir,
		debounce: debounce,
		filter:   filter,
		onResult: onResult,
		watcher:  watcher,
		timers:   make(map[string]*time.Timer),
		ready:    make(chan string),
		quit:     make(chan struct{}),
	}, nil
}

// run processes events until ctx is cancelled or the watcher fails.
func (w *dirWatcher) run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// Only decode on Write or Create events
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if !w.filter.matches(filepath.Base(event.Name)) {
					continue
				}
				logger.Debugw("watch detected change", "file", event.Name, "op", event.Op.String())
				w.schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch error", "error", err)

		case path := <-w.ready:
			w.decode(path)
		}
	}
}

// schedule (re)arms the debounce timer for path.
func (w *dirWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-w.quit:
		}
	})
	w.timers[path] = timer
}

func (w *dirWatcher) decode(path string) {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		// Removed or replaced before the quiet period ended.
		return
	}
	d, err := taskjob.DecodeFile(path, w.maxSize)
	if err != nil {
		logger.Warnw("decode failed", "path", path, "error", err)
	}
	w.onResult(result{Path: path, Descriptor: d, Err: err})
}

func (w *dirWatcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	close(w.quit)
	w.watcher.Close()
}
