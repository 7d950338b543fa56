package binjob

import (
	"fmt"
	"strings"

	"github.com/croncommander/cc-jobparse/internal/bytecursor"
	"github.com/google/uuid"
)

// SystemTime mirrors the Win32 SYSTEMTIME structure.
type SystemTime struct {
	Year        uint16
	Month       uint16
	Weekday     uint16
	Day         uint16
	Hour        uint16
	Minute      uint16
	Second      uint16
	Millisecond uint16
}

// IsZero reports whether every field is zero, the value the scheduler
// stores for a task that never ran.
func (s SystemTime) IsZero() bool {
	return s == SystemTime{}
}

// Header is the fixed-length section at the start of a job file.
type Header struct {
	ProductVersion     uint16
	FileVersion        uint16
	UUID               [16]byte
	AppNameOffset      uint16
	TriggerOffset      uint16
	ErrorRetryCount    uint16
	ErrorRetryInterval uint16 // minutes
	IdleDeadline       uint16 // minutes
	IdleWait           uint16 // minutes
	Priority           uint32
	MaxRunTime         uint32 // milliseconds
	ExitCode           uint32
	Status             uint32
	Flags              uint32
	LastRun            SystemTime
}

// JobID formats the job UUID as a registry-style GUID. The first three
// groups are stored little endian.
func (h Header) JobID() string {
	var b [16]byte
	copy(b[:], h.UUID[:])
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5] = b[5], b[4]
	b[6], b[7] = b[7], b[6]
	return "{" + strings.ToUpper(uuid.UUID(b).String()) + "}"
}

// readHeader decodes the fixed section. The caller has already checked
// that c holds at least FixedHeaderSize bytes.
func readHeader(c *bytecursor.Cursor) (Header, error) {
	var h Header
	var err error
	u16 := func(off int) uint16 {
		if err != nil {
			return 0
		}
		var v uint16
		v, err = c.U16At(off)
		return v
	}
	u32 := func(off int) uint32 {
		if err != nil {
			return 0
		}
		var v uint32
		v, err = c.U32At(off)
		return v
	}

	h.ProductVersion = u16(offProductVersion)
	h.FileVersion = u16(offFileVersion)
	id, idErr := c.BytesAt(offUUID, len(h.UUID))
	if idErr != nil {
		return Header{}, fmt.Errorf("reading job uuid: %w", idErr)
	}
	copy(h.UUID[:], id)
	h.AppNameOffset = u16(offAppNameOffset)
	h.TriggerOffset = u16(offTriggerOffset)
	h.ErrorRetryCount = u16(offErrorRetryCount)
	h.ErrorRetryInterval = u16(offErrorRetryInterval)
	h.IdleDeadline = u16(offIdleDeadline)
	h.IdleWait = u16(offIdleWait)
	h.Priority = u32(offPriority)
	h.MaxRunTime = u32(offMaxRunTime)
	h.ExitCode = u32(offExitCode)
	h.Status = u32(offStatus)
	h.Flags = u32(offFlags)
	h.LastRun = SystemTime{
		Year:        u16(offLastRun),
		Month:       u16(offLastRun + 2),
		Weekday:     u16(offLastRun + 4),
		Day:         u16(offLastRun + 6),
		Hour:        u16(offLastRun + 8),
		Minute:      u16(offLastRun + 10),
		Second:      u16(offLastRun + 12),
		Millisecond: u16(offLastRun + 14),
	}
	if err != nil {
		return Header{}, fmt.Errorf("reading fixed header: %w", err)
	}
	return h, nil
}
