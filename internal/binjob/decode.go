// Package binjob decodes the legacy Task Scheduler .job binary format.
//
// A job file is a 68-byte fixed header, a variable section holding a
// length-prefixed UTF-16LE string table and two opaque blobs, a trigger
// array located by an offset in the fixed header, and an optional
// trailing signature. Only a buffer too short for the fixed header is
// fatal: every other inconsistency becomes a warning on the Record and
// decoding continues with whatever can still be located.
package binjob

import (
	"github.com/cockroachdb/errors"
	"github.com/croncommander/cc-jobparse/internal/bytecursor"
	"github.com/croncommander/cc-jobparse/internal/diag"
)

// Record is the raw content of one binary job file.
type Record struct {
	Header           Header
	RunningInstances *uint16
	Strings          Strings
	UserData         []byte
	Reserved         *ReservedData

	// TriggerCount is the count declared in the file; Triggers holds only
	// the records that were fully present.
	TriggerCount uint16
	Triggers     []Trigger

	Signature *Signature
	Warnings  diag.Warnings

	triggersAt       int
	triggersEnd      int
	triggersComplete bool
}

// Signature is the optional trailing job signature.
type Signature struct {
	Offset           int
	Version          uint16
	MinClientVersion uint16
	Digest           []byte
}

// Decode parses buf. It fails only when buf cannot hold the fixed
// header; the returned error then matches diag.ErrTruncatedHeader.
func Decode(buf []byte) (*Record, error) {
	c := bytecursor.New(buf)
	if c.Len() < FixedHeaderSize {
		err := errors.Wrapf(diag.ErrTruncatedHeader,
			"job file is %d bytes, fixed header needs %d", c.Len(), FixedHeaderSize)
		return nil, errors.WithHint(err, "the file may be truncated or not a job file")
	}

	h, err := readHeader(c)
	if err != nil {
		return nil, errors.Wrap(diag.ErrTruncatedHeader, err.Error())
	}

	r := &Record{Header: h, triggersAt: -1}
	r.checkVersions()

	if n, err := c.U16At(offRunningInstances); err == nil {
		r.RunningInstances = &n
	} else {
		r.Warnings.Add(diag.CodeOutOfBounds, FieldRunningInstances, offRunningInstances,
			"file ends before the running-instance count")
	}

	stringsEnd := r.readStrings(c)
	r.readTriggers(c, stringsEnd)
	r.readSignature(c)
	return r, nil
}

func (r *Record) checkVersions() {
	if !IsKnownFileVersion(r.Header.FileVersion) {
		r.Warnings.Add(diag.CodeUnrecognizedVersion, FieldVersion, offFileVersion,
			"file format version %d is not %d; decoding best-effort", r.Header.FileVersion, FileFormatVersion)
	}
	if _, ok := ProductName(r.Header.ProductVersion); !ok {
		r.Warnings.Add(diag.CodeUnrecognizedVersion, FieldVersion, offProductVersion,
			"unrecognized product version %#04x", r.Header.ProductVersion)
	}
}

// readSignature parses the block after the last trigger. It is skipped
// when the trigger array was not located or was cut short.
func (r *Record) readSignature(c *bytecursor.Cursor) {
	if r.triggersAt < 0 || !r.triggersComplete {
		return
	}
	off := r.triggersEnd
	remaining, err := c.RemainingFrom(off)
	if err != nil || remaining == 0 {
		return
	}
	if remaining < SignatureHeaderSize {
		r.Warnings.Add(diag.CodeSignature, FieldSignature, off,
			"%d trailing bytes are too short for a signature header", remaining)
		return
	}

	version, _ := c.U16At(off)
	minClient, _ := c.U16At(off + 2)
	if version != SignatureVersion1 {
		r.Warnings.Add(diag.CodeSignature, FieldSignature, off,
			"unrecognized signature version %d; %d trailing bytes ignored", version, remaining)
		return
	}

	digest, err := c.BytesAt(off+SignatureHeaderSize, SignatureDigestSize)
	if err != nil {
		r.Warnings.Add(diag.CodeSignature, FieldSignature, off,
			"signature declares %d bytes but only %d remain", SignatureDigestSize, remaining-SignatureHeaderSize)
		return
	}

	r.Signature = &Signature{
		Offset:           off,
		Version:          version,
		MinClientVersion: minClient,
		Digest:           digest,
	}
	if extra := remaining - SignatureHeaderSize - SignatureDigestSize; extra > 0 {
		r.Warnings.Add(diag.CodeLayout, FieldSignature, off+SignatureHeaderSize+SignatureDigestSize,
			"%d unexpected bytes after the signature", extra)
	}
}
