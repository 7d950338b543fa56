package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/testutil"
)

// jobTree lays out:
//
//	root/a.job  root/b.XML  root/notes.txt  root/sub/c.job
func jobTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	job := testutil.NewJob()
	job.Application = "backup.exe"

	files := map[string][]byte{
		"a.job":     job.Bytes(),
		"b.XML":     []byte(testutil.TaskXML),
		"notes.txt": []byte("not a job"),
		"sub/c.job": job.Bytes(),
	}
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	return root
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := jobTree(t)
	exts := []string{".job", ".xml"}

	tests := []struct {
		name string
		opts discoverOptions
		want []string
	}{
		{"top level", discoverOptions{Extensions: exts}, []string{"a.job", "b.XML"}},
		{"recursive", discoverOptions{Recursive: true, Extensions: exts}, []string{"a.job", "b.XML", "sub/c.job"}},
		{"all files", discoverOptions{All: true}, []string{"a.job", "b.XML", "notes.txt"}},
		{"custom extension", discoverOptions{Extensions: []string{".txt"}}, []string{"notes.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := discover(root, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relative(t, root, paths))
		})
	}
}

func TestDiscoverSkipsSymlinks(t *testing.T) {
	root := jobTree(t)
	if err := os.Symlink(filepath.Join(root, "a.job"), filepath.Join(root, "link.job")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	paths, err := discover(root, discoverOptions{Extensions: []string{".job"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.job"}, relative(t, root, paths))
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := discover(filepath.Join(t.TempDir(), "nope"), discoverOptions{All: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecodeBatchPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 24; i++ {
		job := testutil.NewJob()
		job.Application = fmt.Sprintf("task%02d.exe", i)
		data := job.Bytes()
		if i%5 == 0 {
			data = []byte("garbage")
		}
		path := filepath.Join(dir, fmt.Sprintf("t%02d.job", i))
		require.NoError(t, os.WriteFile(path, data, 0o644))
		paths = append(paths, path)
	}

	results, err := decodeBatch(context.Background(), paths, 4, 0)
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		if i%5 == 0 {
			require.Error(t, r.Err, "file %d", i)
			assert.Nil(t, r.Descriptor)
			assert.True(t, errors.Is(r.Err, diag.ErrFormatUnknown))
			continue
		}
		require.NoError(t, r.Err, "file %d", i)
		a, ok := r.Descriptor.PrimaryAction()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("task%02d.exe", i), a.Command)
	}

	s := summarize(results)
	assert.Equal(t, batchSummary{Files: 24, Decoded: 19, Failed: 5}, s)
}

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, runtime.NumCPU()},
		{-3, runtime.NumCPU()},
		{1, 1},
		{8, 8},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, workerCount(tt.in))
		})
	}
}

func TestDecodeBatchZeroWorkers(t *testing.T) {
	root := jobTree(t)
	paths, err := discover(root, discoverOptions{Recursive: true, Extensions: []string{".job", ".xml"}})
	require.NoError(t, err)

	results, err := decodeBatch(context.Background(), paths, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.NoError(t, r.Err)
	}
}

func TestDecodeBatchCancelled(t *testing.T) {
	root := jobTree(t)
	paths, err := discover(root, discoverOptions{Recursive: true, Extensions: []string{".job", ".xml"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := decodeBatch(ctx, paths, 2, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, results, len(paths))
	for _, r := range results {
		assert.True(t, errors.Is(r.Err, context.Canceled))
	}
	assert.Equal(t, len(paths), summarize(results).Failed)
}

func TestSummarizeCountsWarnings(t *testing.T) {
	d := &jobmodel.Descriptor{}
	d.Warnings.Add(diag.CodeLayout, "", 0, "first")
	d.Warnings.Add(diag.CodeSignature, "", 10, "second")

	s := summarize([]result{
		{Path: "a", Descriptor: d},
		{Path: "b", Err: errors.New("boom")},
	})
	assert.Equal(t, batchSummary{Files: 2, Decoded: 1, Failed: 1, Warnings: 2}, s)
}
