// Package taskjob is the detect-and-decode entry point: it sniffs the
// format, runs the matching decoder and normalizes the result.
package taskjob

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/croncommander/cc-jobparse/internal/binjob"
	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/logger"
	"github.com/croncommander/cc-jobparse/internal/normalize"
	"github.com/croncommander/cc-jobparse/internal/sniff"
	"github.com/croncommander/cc-jobparse/internal/xmljob"
)

// DefaultMaxSize bounds DecodeFile when the caller passes no limit.
const DefaultMaxSize int64 = 16 << 20

// DecodeError reports why one file could not be decoded.
type DecodeError struct {
	Source string
	Format jobmodel.Format
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == jobmodel.FormatUnknown {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Source, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode decodes data read from source, which is used only for naming
// and error messages.
func Decode(source string, data []byte) (*jobmodel.Descriptor, error) {
	format := sniff.Classify(data)
	opts := normalize.Options{SourcePath: source}

	var src normalize.Source
	switch format {
	case jobmodel.FormatBinary:
		rec, err := binjob.Decode(data)
		if err != nil {
			return nil, &DecodeError{Source: source, Format: format, Err: err}
		}
		src = normalize.FromBinary(rec)
	case jobmodel.FormatXML:
		rec, err := xmljob.Decode(data)
		if err != nil {
			return nil, &DecodeError{Source: source, Format: format, Err: err}
		}
		src = normalize.FromXML(rec)
	default:
		err := errors.WithHint(diag.ErrFormatUnknown, "expected a .job binary or an XML <Task> definition")
		return nil, &DecodeError{Source: source, Format: format, Err: err}
	}

	d := normalize.Normalize(src, opts)
	logger.Debugw("decoded job",
		"path", source,
		"format", format.String(),
		"triggers", len(d.Triggers),
		"warnings", len(d.Warnings))
	return d, nil
}

// DecodeFile reads and decodes path, refusing files larger than maxSize
// bytes. A maxSize of zero or less means DefaultMaxSize.
func DecodeFile(path string, maxSize int64) (*jobmodel.Descriptor, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: errors.Wrap(err, "opening job file")}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{Source: path, Err: errors.Wrap(err, "reading file info")}
	}
	if info.Size() > maxSize {
		return nil, &DecodeError{Source: path, Err: tooLarge(info.Size(), maxSize)}
	}

	// The size can change between Stat and Read; read one byte past the
	// limit to notice.
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, &DecodeError{Source: path, Err: errors.Wrap(err, "reading job file")}
	}
	if int64(len(data)) > maxSize {
		return nil, &DecodeError{Source: path, Err: tooLarge(int64(len(data)), maxSize)}
	}
	return Decode(path, data)
}

func tooLarge(size, limit int64) error {
	err := errors.Wrapf(diag.ErrTooLarge, "%d bytes exceeds the %d byte limit", size, limit)
	return errors.WithHint(err, "raise --max-size to decode larger files")
}
