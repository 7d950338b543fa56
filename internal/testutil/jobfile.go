// Package testutil builds synthetic job files for tests. It writes the
// legacy binary layout from scratch so decoder tests do not depend on
// captured samples, and it is never imported by non-test code.
package testutil

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// Trigger type values in the binary layout.
const (
	TriggerOnce             = 0
	TriggerDaily            = 1
	TriggerWeekly           = 2
	TriggerMonthlyDate      = 3
	TriggerMonthlyDayOfWeek = 4
	TriggerOnIdle           = 5
	TriggerAtSystemStart    = 6
	TriggerAtLogon          = 7
)

// Offsets inside the fixed header that tests patch directly.
const (
	OffFileVersion   = 2
	OffAppNameOffset = 20
	OffTriggerOffset = 22
	FixedHeaderSize  = 68
	TriggerSize      = 48
)

// SystemTime is a SYSTEMTIME value.
type SystemTime struct {
	Year, Month, Weekday, Day, Hour, Minute, Second, Millisecond uint16
}

// Trigger is one trigger record.
type Trigger struct {
	BeginYear, BeginMonth, BeginDay uint16
	EndYear, EndMonth, EndDay       uint16
	StartHour, StartMinute          uint16
	MinutesDuration                 uint32
	MinutesInterval                 uint32
	Flags                           uint32
	Type                            uint32
	Specific                        [3]uint16
	// Size overrides the record size field; zero writes 48.
	Size uint16
}

// Job describes a binary job file to write.
type Job struct {
	ProductVersion     uint16
	FileVersion        uint16
	UUID               [16]byte
	ErrorRetryCount    uint16
	ErrorRetryInterval uint16
	IdleDeadline       uint16
	IdleWait           uint16
	Priority           uint32
	MaxRunTime         uint32
	ExitCode           uint32
	Status             uint32
	Flags              uint32
	LastRun            SystemTime
	RunningInstances   uint16

	Application      string
	Parameters       string
	WorkingDirectory string
	Author           string
	Comment          string
	UserData         []byte
	Reserved         []byte

	Triggers []Trigger

	// Trailer is appended verbatim after the trigger array.
	Trailer []byte
}

// Layout records where Build placed each variable-length part.
type Layout struct {
	StringTable int
	// LengthOffsets holds the offset of each string's u16 length prefix
	// in table order: application, parameters, working directory,
	// author, comment.
	LengthOffsets [5]int
	TriggerOffset int
	TrailerOffset int
}

// NewJob returns a job with the values a Windows XP scheduler writes for
// a fresh task.
func NewJob() Job {
	return Job{
		ProductVersion: 0x0501,
		FileVersion:    1,
		UUID:           [16]byte{0x78, 0x56, 0x34, 0x12, 0xbc, 0x9a, 0xf0, 0xde, 0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef},
		Priority:       0x20,
		MaxRunTime:     72 * 60 * 60 * 1000,
		Status:         0x41303,
		Reserved:       []byte{0, 0, 0, 0, 0, 0, 0, 0},
	}
}

// Build serializes the job.
func (j Job) Build() ([]byte, Layout) {
	var lay Layout
	buf := make([]byte, FixedHeaderSize, 512)

	le := binary.LittleEndian
	le.PutUint16(buf[0:], j.ProductVersion)
	le.PutUint16(buf[2:], j.FileVersion)
	copy(buf[4:20], j.UUID[:])
	le.PutUint16(buf[24:], j.ErrorRetryCount)
	le.PutUint16(buf[26:], j.ErrorRetryInterval)
	le.PutUint16(buf[28:], j.IdleDeadline)
	le.PutUint16(buf[30:], j.IdleWait)
	le.PutUint32(buf[32:], j.Priority)
	le.PutUint32(buf[36:], j.MaxRunTime)
	le.PutUint32(buf[40:], j.ExitCode)
	le.PutUint32(buf[44:], j.Status)
	le.PutUint32(buf[48:], j.Flags)
	lr := j.LastRun
	for i, v := range []uint16{lr.Year, lr.Month, lr.Weekday, lr.Day, lr.Hour, lr.Minute, lr.Second, lr.Millisecond} {
		le.PutUint16(buf[52+2*i:], v)
	}

	buf = le.AppendUint16(buf, j.RunningInstances)

	lay.StringTable = len(buf)
	for i, s := range []string{j.Application, j.Parameters, j.WorkingDirectory, j.Author, j.Comment} {
		lay.LengthOffsets[i] = len(buf)
		buf = appendString(buf, s)
	}
	buf = le.AppendUint16(buf, uint16(len(j.UserData)))
	buf = append(buf, j.UserData...)
	buf = le.AppendUint16(buf, uint16(len(j.Reserved)))
	buf = append(buf, j.Reserved...)

	lay.TriggerOffset = len(buf)
	buf = le.AppendUint16(buf, uint16(len(j.Triggers)))
	for _, t := range j.Triggers {
		buf = appendTrigger(buf, t)
	}

	lay.TrailerOffset = len(buf)
	buf = append(buf, j.Trailer...)

	le.PutUint16(buf[OffAppNameOffset:], uint16(lay.StringTable))
	le.PutUint16(buf[OffTriggerOffset:], uint16(lay.TriggerOffset))
	return buf, lay
}

// Bytes serializes the job, discarding the layout.
func (j Job) Bytes() []byte {
	b, _ := j.Build()
	return b
}

func appendString(buf []byte, s string) []byte {
	if s == "" {
		return binary.LittleEndian.AppendUint16(buf, 0)
	}
	enc := UTF16LE(s)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(enc)/2+1))
	buf = append(buf, enc...)
	return append(buf, 0, 0)
}

func appendTrigger(buf []byte, t Trigger) []byte {
	le := binary.LittleEndian
	size := t.Size
	if size == 0 {
		size = TriggerSize
	}
	for _, v := range []uint16{size, 0, t.BeginYear, t.BeginMonth, t.BeginDay, t.EndYear, t.EndMonth, t.EndDay, t.StartHour, t.StartMinute} {
		buf = le.AppendUint16(buf, v)
	}
	buf = le.AppendUint32(buf, t.MinutesDuration)
	buf = le.AppendUint32(buf, t.MinutesInterval)
	buf = le.AppendUint32(buf, t.Flags)
	buf = le.AppendUint32(buf, t.Type)
	for _, v := range []uint16{t.Specific[0], t.Specific[1], t.Specific[2], 0, 0, 0} {
		buf = le.AppendUint16(buf, v)
	}
	return buf
}

// Signature returns a version-1 signature trailer with a recognizable digest.
func Signature() []byte {
	out := []byte{1, 0, 1, 0}
	for i := 0; i < 64; i++ {
		out = append(out, byte(i))
	}
	return out
}

// PutU16 patches a little-endian uint16 into buf.
func PutU16(buf []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:], v)
}

// UTF16LE encodes s as UTF-16LE without a BOM.
func UTF16LE(s string) []byte {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return out
}

// UTF16LEWithBOM encodes s as UTF-16LE prefixed with a byte-order mark,
// the way the scheduler stores XML tasks.
func UTF16LEWithBOM(s string) []byte {
	return append([]byte{0xff, 0xfe}, UTF16LE(s)...)
}
