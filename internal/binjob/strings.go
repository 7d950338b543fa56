package binjob

import (
	"github.com/croncommander/cc-jobparse/internal/bytecursor"
	"github.com/croncommander/cc-jobparse/internal/diag"
)

// Field names used when reporting string-table warnings.
const (
	FieldApplicationName  = "application_name"
	FieldParameters       = "parameters"
	FieldWorkingDirectory = "working_directory"
	FieldAuthor           = "author"
	FieldComment          = "comment"
	FieldUserData         = "user_data"
	FieldReservedData     = "reserved_data"
	FieldRunningInstances = "running_instances"
	FieldTriggers         = "triggers"
	FieldSignature        = "signature"
	FieldVersion          = "version"
)

// StringRef locates a string-table entry: Offset is the first byte of
// the text (after its length prefix) and Length its size in bytes.
type StringRef struct {
	Offset int
	Length int
}

// StringField is one decoded string-table entry. Value is nil when the
// entry was absent (zero length) or could not be located.
type StringField struct {
	Ref   StringRef
	Value *string
}

// Strings is the variable-length string table.
type Strings struct {
	ApplicationName  StringField
	Parameters       StringField
	WorkingDirectory StringField
	Author           StringField
	Comment          StringField
}

// ReservedData is the 8-byte block the scheduler keeps after the user data.
type ReservedData struct {
	StartError uint32 // HRESULT of the last failed start
	TaskFlags  uint32
}

// stringWalk decodes the string table sequentially inside region.
type stringWalk struct {
	region   *bytecursor.Cursor
	warnings *diag.Warnings
	pos      int
	broken   bool
}

// lengthPrefixed reads a u16 prefix at the current position and returns
// the offset and byte length of the payload that follows it. unit is the
// byte size of one counted element.
func (w *stringWalk) lengthPrefixed(field string, unit int) (StringRef, bool) {
	if w.broken {
		w.warnings.Add(diag.CodeOutOfBounds, field, diag.NoOffset,
			"not located: an earlier string-table entry could not be decoded")
		return StringRef{}, false
	}

	count, err := w.region.U16At(w.pos)
	if err != nil {
		w.warnings.Add(diag.CodeOutOfBounds, field, w.pos,
			"length prefix lies outside the string region (%d bytes)", w.region.Len())
		w.broken = true
		return StringRef{}, false
	}

	ref := StringRef{Offset: w.pos + 2, Length: int(count) * unit}
	if err := w.region.Check(ref.Offset, ref.Length); err != nil {
		w.warnings.Add(diag.CodeOutOfBounds, field, w.pos,
			"declares %d bytes at offset %d but the string region ends at %d",
			ref.Length, ref.Offset, w.region.Len())
		w.broken = true
		return StringRef{}, false
	}

	w.pos = ref.Offset + ref.Length
	return ref, true
}

func (w *stringWalk) text(field string) StringField {
	ref, ok := w.lengthPrefixed(field, 2)
	if !ok {
		return StringField{}
	}
	if ref.Length == 0 {
		return StringField{Ref: ref}
	}
	s, err := w.region.UTF16At(ref.Offset, ref.Length)
	if err != nil {
		// Check above already validated the range.
		w.warnings.Add(diag.CodeOutOfBounds, field, ref.Offset, "%v", err)
		return StringField{}
	}
	return StringField{Ref: ref, Value: &s}
}

func (w *stringWalk) blob(field string) ([]byte, bool) {
	ref, ok := w.lengthPrefixed(field, 1)
	if !ok {
		return nil, false
	}
	if ref.Length == 0 {
		return nil, true
	}
	b, err := w.region.BytesAt(ref.Offset, ref.Length)
	if err != nil {
		w.warnings.Add(diag.CodeOutOfBounds, field, ref.Offset, "%v", err)
		return nil, false
	}
	return b, true
}

// readStrings walks the string table, user data and reserved data. It
// returns the offset just past the reserved data, or -1 when the walk
// could not reach it.
func (r *Record) readStrings(c *bytecursor.Cursor) int {
	start := int(r.Header.AppNameOffset)
	regionEnd := r.stringRegionEnd(c)

	if start < minVariableOffset || start > regionEnd {
		r.Warnings.Add(diag.CodeOutOfBounds, FieldApplicationName, offAppNameOffset,
			"string table offset %d is outside the variable section [%d, %d]",
			start, minVariableOffset, regionEnd)
		for _, f := range []string{FieldParameters, FieldWorkingDirectory, FieldAuthor, FieldComment, FieldUserData, FieldReservedData} {
			r.Warnings.Add(diag.CodeOutOfBounds, f, diag.NoOffset,
				"not located: the string table offset is invalid")
		}
		return -1
	}

	region, err := c.Sub(0, regionEnd)
	if err != nil {
		r.Warnings.Add(diag.CodeOutOfBounds, FieldApplicationName, diag.NoOffset, "%v", err)
		return -1
	}
	w := &stringWalk{region: region, warnings: &r.Warnings, pos: start}

	r.Strings.ApplicationName = w.text(FieldApplicationName)
	r.Strings.Parameters = w.text(FieldParameters)
	r.Strings.WorkingDirectory = w.text(FieldWorkingDirectory)
	r.Strings.Author = w.text(FieldAuthor)
	r.Strings.Comment = w.text(FieldComment)

	if data, ok := w.blob(FieldUserData); ok {
		r.UserData = data
	}
	if data, ok := w.blob(FieldReservedData); ok && len(data) > 0 {
		if len(data) == reservedDataSize {
			rc := bytecursor.New(data)
			startErr, _ := rc.U32At(0)
			flags, _ := rc.U32At(4)
			r.Reserved = &ReservedData{StartError: startErr, TaskFlags: flags}
		} else {
			r.Warnings.Add(diag.CodeLayout, FieldReservedData, w.pos-len(data),
				"reserved data is %d bytes, expected %d", len(data), reservedDataSize)
		}
	}

	if w.broken {
		return -1
	}
	return w.pos
}

// stringRegionEnd bounds the string table: the trigger array starts
// right after it, so a valid trigger offset caps the region.
func (r *Record) stringRegionEnd(c *bytecursor.Cursor) int {
	trig := int(r.Header.TriggerOffset)
	if trig >= minVariableOffset && trig <= c.Len() && trig >= int(r.Header.AppNameOffset) {
		return trig
	}
	return c.Len()
}
