// Package diag holds the error sentinels and non-fatal warnings shared by
// the job decoders.
//
// Fatal conditions are sentinel errors built on github.com/cockroachdb/errors
// and are checked with errors.Is. Everything a decoder can recover from is a
// Warning appended to the record being built.
package diag

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Fatal conditions. Decoders wrap these with context.
var (
	// ErrTruncatedHeader means the buffer cannot hold the fixed binary header.
	ErrTruncatedHeader = errors.New("truncated header")

	// ErrOutOfBounds means an offset/length pair addresses bytes outside the buffer.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrMalformedXML means the document could not be parsed as a task definition.
	ErrMalformedXML = errors.New("malformed xml")

	// ErrFormatUnknown means the sniffer could not classify the input.
	ErrFormatUnknown = errors.New("unknown format")

	// ErrTooLarge means the input exceeds the configured size limit.
	ErrTooLarge = errors.New("file too large")
)

// Code classifies a warning.
type Code string

const (
	CodeOutOfBounds             Code = "out_of_bounds"
	CodeUnrecognizedVersion     Code = "unrecognized_version"
	CodeUnrecognizedTriggerKind Code = "unrecognized_trigger_kind"
	CodeTruncatedTriggers       Code = "truncated_triggers"
	CodeSignature               Code = "signature"
	CodeMissingElement          Code = "missing_element"
	CodeInvalidValue            Code = "invalid_value"
	CodeLayout                  Code = "layout"
)

// NoOffset marks a warning that is not tied to a byte position.
const NoOffset = -1

// Warning is a non-fatal decode finding. Offset is the byte position in
// the source buffer for binary input, or NoOffset.
type Warning struct {
	Code    Code   `json:"code" yaml:"code" toml:"code"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty" toml:"field,omitempty"`
	Offset  int    `json:"offset" yaml:"offset" toml:"offset"`
	Message string `json:"message" yaml:"message" toml:"message"`
}

func (w Warning) String() string {
	if w.Offset >= 0 {
		return fmt.Sprintf("%s: %s (field %s, offset %d)", w.Code, w.Message, w.fieldName(), w.Offset)
	}
	return fmt.Sprintf("%s: %s (field %s)", w.Code, w.Message, w.fieldName())
}

func (w Warning) fieldName() string {
	if w.Field == "" {
		return "-"
	}
	return w.Field
}

// Warnings accumulates warnings in the order they were raised.
type Warnings []Warning

// Add appends a warning with a formatted message.
func (ws *Warnings) Add(code Code, field string, offset int, format string, args ...interface{}) {
	*ws = append(*ws, Warning{
		Code:    code,
		Field:   field,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	})
}

// Has reports whether any warning carries the given code.
func (ws Warnings) Has(code Code) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

// ForField returns the warnings recorded against field.
func (ws Warnings) ForField(field string) Warnings {
	var out Warnings
	for _, w := range ws {
		if w.Field == field {
			out = append(out, w)
		}
	}
	return out
}

// Clone returns an independent copy.
func (ws Warnings) Clone() Warnings {
	if ws == nil {
		return nil
	}
	out := make(Warnings, len(ws))
	copy(out, ws)
	return out
}

// Hint returns a user-facing suggestion for a fatal error, or "".
func Hint(err error) string {
	return errors.FlattenHints(err)
}
