package cmd

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/logger"
	"github.com/croncommander/cc-jobparse/internal/taskjob"
)

// result is the outcome of decoding one file. Exactly one of Descriptor
// and Err is set.
type result struct {
	Path       string
	Descriptor *jobmodel.Descriptor
	Err        error
}

type batchSummary struct {
	Files    int `json:"files" yaml:"files" toml:"files"`
	Decoded  int `json:"decoded" yaml:"decoded" toml:"decoded"`
	Failed   int `json:"failed" yaml:"failed" toml:"failed"`
	Warnings int `json:"warnings" yaml:"warnings" toml:"warnings"`
}

func summarize(results []result) batchSummary {
	s := batchSummary{Files: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Decoded++
		s.Warnings += len(r.Descriptor.Warnings)
	}
	return s
}

// discoverOptions selects which files a directory walk yields.
type discoverOptions struct {
	Recursive  bool
	All        bool
	Extensions []string
}

func (o discoverOptions) matches(name string) bool {
	if o.All {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range o.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// discover lists the job files under root in lexical order. Only regular
// files are returned; symlinks and devices are skipped.
func discover(root string, opts discoverOptions) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warnw("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if opts.matches(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", root)
	}
	return paths, nil
}

// workerCount resolves a requested worker count. Zero or less means one
// worker per CPU.
func workerCount(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// decodeBatch decodes paths with at most workers concurrent decodes. The
// results keep the order of paths. A failing file never stops the batch;
// cancelling ctx stops scheduling new files and marks them with the
// context error, which is also returned.
func decodeBatch(ctx context.Context, paths []string, workers int, maxSize int64) ([]result, error) {
	workers = workerCount(workers)

	results := make([]result, len(paths))
	for i, p := range paths {
		results[i] = result{Path: p}
	}

	var g errgroup.Group
	g.SetLimit(workers)

	scheduled := 0
	for i := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			d, err := taskjob.DecodeFile(results[i].Path, maxSize)
			results[i].Descriptor, results[i].Err = d, err
			return nil
		})
		scheduled++
	}
	// Decode goroutines never return an error.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for i := scheduled; i < len(results); i++ {
			results[i].Err = err
		}
		logger.Warnw("batch cancelled", "decoded", scheduled, "skipped", len(paths)-scheduled)
		return results, err
	}
	return results, nil
}
