// Package normalize maps raw binary and XML job records onto the unified
// jobmodel.Descriptor. Normalization is a pure function of its input: it
// performs no I/O, has no failure path, and never shares mutable state
// with the record it reads.
package normalize

import (
	"path/filepath"
	"strings"

	"github.com/croncommander/cc-jobparse/internal/binjob"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/xmljob"
)

// Source is a decoded record ready for normalization. The only
// implementations are the ones returned by FromBinary and FromXML.
type Source interface {
	Format() jobmodel.Format
	normalize(opts Options) *jobmodel.Descriptor
}

// Options carries identity that lives outside the record itself.
type Options struct {
	// Name overrides the derived job name.
	Name string
	// SourcePath is where the record was read from, if anywhere.
	SourcePath string
}

type binarySource struct{ rec *binjob.Record }

type xmlSource struct{ rec *xmljob.Record }

// FromBinary wraps a legacy .job record.
func FromBinary(rec *binjob.Record) Source { return binarySource{rec: rec} }

// FromXML wraps an XML task record.
func FromXML(rec *xmljob.Record) Source { return xmlSource{rec: rec} }

func (binarySource) Format() jobmodel.Format { return jobmodel.FormatBinary }

func (xmlSource) Format() jobmodel.Format { return jobmodel.FormatXML }

// Normalize builds the descriptor for src.
func Normalize(src Source, opts Options) *jobmodel.Descriptor {
	return src.normalize(opts)
}

// nameFromPath returns the file name without its extension.
func nameFromPath(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func boolPtr(b bool) *bool { return &b }
