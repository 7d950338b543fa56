package taskjob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/logger"
	"github.com/croncommander/cc-jobparse/internal/testutil"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDecodeDispatchesByContent(t *testing.T) {
	job := testutil.NewJob()
	job.Application = "notepad.exe"

	tests := []struct {
		name   string
		data   []byte
		format jobmodel.Format
	}{
		{"binary", job.Bytes(), jobmodel.FormatBinary},
		{"xml", []byte(testutil.TaskXML), jobmodel.FormatXML},
		{"utf16 xml", testutil.UTF16LEWithBOM(testutil.TaskXML), jobmodel.FormatXML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The extension is deliberately misleading.
			d, err := Decode("task.txt", tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.format, d.Format)
			assert.Equal(t, "task.txt", d.SourcePath)
		})
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	d, err := Decode("notes.txt", []byte("just some text"))
	assert.Nil(t, d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrFormatUnknown))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "notes.txt", de.Source)
	assert.Equal(t, jobmodel.FormatUnknown, de.Format)
	assert.NotEmpty(t, diag.Hint(err))
}

func TestDecodeMalformedXML(t *testing.T) {
	_, err := Decode("bad.xml", []byte(`<?xml version="1.0"?><Task <Oops>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrMalformedXML))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, jobmodel.FormatXML, de.Format)
	assert.Contains(t, err.Error(), "bad.xml (xml)")
}

func TestDecodeLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Use(zap.New(core))
	t.Cleanup(func() { logger.Logger = zap.NewNop().Sugar() })

	_, err := Decode("a.xml", []byte(testutil.TaskXML))
	require.NoError(t, err)

	entries := logs.FilterMessage("decoded job").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "xml", entries[0].ContextMap()["format"])
}

func TestDecodeFile(t *testing.T) {
	job := testutil.NewJob()
	job.Application = "calc.exe"
	path := writeFile(t, "Calc.job", job.Bytes())

	d, err := DecodeFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "Calc", d.Name)
	assert.Equal(t, path, d.SourcePath)
	a, ok := d.PrimaryAction()
	require.True(t, ok)
	assert.Equal(t, "calc.exe", a.Command)
}

func TestDecodeFileTooLarge(t *testing.T) {
	path := writeFile(t, "big.xml", []byte(testutil.TaskXML))

	_, err := DecodeFile(path, 64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrTooLarge))
	assert.Contains(t, diag.Hint(err), "--max-size")
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "nope.job"), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecodeFileTruncatedBinary(t *testing.T) {
	job := testutil.NewJob()
	path := writeFile(t, "short.job", job.Bytes()[:40])

	_, err := DecodeFile(path, 0)
	require.Error(t, err)
	// 40 bytes cannot be classified as binary, so the sniffer rejects it
	// before the decoder sees it.
	assert.True(t, errors.Is(err, diag.ErrFormatUnknown))
}
