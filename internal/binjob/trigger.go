package binjob

import (
	"fmt"

	"github.com/croncommander/cc-jobparse/internal/bytecursor"
	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
)

// TriggerType is the trigger discriminant.
type TriggerType uint32

const (
	TriggerTypeOnce             TriggerType = 0
	TriggerTypeDaily            TriggerType = 1
	TriggerTypeWeekly           TriggerType = 2
	TriggerTypeMonthlyDate      TriggerType = 3
	TriggerTypeMonthlyDayOfWeek TriggerType = 4
	TriggerTypeOnIdle           TriggerType = 5
	TriggerTypeAtSystemStart    TriggerType = 6
	TriggerTypeAtLogon          TriggerType = 7
)

// Kind maps the discriminant onto the shared trigger kinds.
func (t TriggerType) Kind() jobmodel.TriggerKind {
	switch t {
	case TriggerTypeOnce:
		return jobmodel.TriggerOnce
	case TriggerTypeDaily:
		return jobmodel.TriggerDaily
	case TriggerTypeWeekly:
		return jobmodel.TriggerWeekly
	case TriggerTypeMonthlyDate:
		return jobmodel.TriggerMonthlyDate
	case TriggerTypeMonthlyDayOfWeek:
		return jobmodel.TriggerMonthlyDayOfWeek
	case TriggerTypeOnIdle:
		return jobmodel.TriggerIdle
	case TriggerTypeAtSystemStart:
		return jobmodel.TriggerStartup
	case TriggerTypeAtLogon:
		return jobmodel.TriggerLogon
	default:
		return jobmodel.TriggerUnknown
	}
}

// Trigger flags.
const (
	TriggerFlagHasEndDate        uint32 = 0x1
	TriggerFlagKillAtDurationEnd uint32 = 0x2
	TriggerFlagDisabled          uint32 = 0x4
)

// Trigger is one fixed-size record of the trigger array. Specific holds
// the three type-dependent words; which of them mean anything depends
// on Type.
type Trigger struct {
	Offset          int
	Size            uint16
	Reserved1       uint16
	BeginYear       uint16
	BeginMonth      uint16
	BeginDay        uint16
	EndYear         uint16
	EndMonth        uint16
	EndDay          uint16
	StartHour       uint16
	StartMinute     uint16
	MinutesDuration uint32
	MinutesInterval uint32
	Flags           uint32
	Type            TriggerType
	Specific        [3]uint16
	Padding         uint16
	Reserved2       uint16
	Reserved3       uint16
}

// DaysInterval is meaningful for daily triggers.
func (t Trigger) DaysInterval() uint16 { return t.Specific[0] }

// WeeksInterval is meaningful for weekly triggers.
func (t Trigger) WeeksInterval() uint16 { return t.Specific[0] }

// DaysOfWeek is meaningful for weekly and monthly-by-day-of-week triggers.
func (t Trigger) DaysOfWeek() uint16 {
	return t.Specific[1]
}

// MonthDays is meaningful for monthly-by-date triggers.
func (t Trigger) MonthDays() uint32 {
	return uint32(t.Specific[0]) | uint32(t.Specific[1])<<16
}

// WhichWeek is meaningful for monthly-by-day-of-week triggers: 1-4, or 5
// for the last week.
func (t Trigger) WhichWeek() uint16 { return t.Specific[0] }

// Months is meaningful for both monthly triggers.
func (t Trigger) Months() uint16 { return t.Specific[2] }

func (t Trigger) field(i int) string {
	return fmt.Sprintf("%s[%d]", FieldTriggers, i)
}

func parseTrigger(c *bytecursor.Cursor, base int) Trigger {
	// c spans exactly one record, so these reads cannot fail.
	u16 := func(off int) uint16 { v, _ := c.U16At(off); return v }
	u32 := func(off int) uint32 { v, _ := c.U32At(off); return v }
	return Trigger{
		Offset:          base,
		Size:            u16(0),
		Reserved1:       u16(2),
		BeginYear:       u16(4),
		BeginMonth:      u16(6),
		BeginDay:        u16(8),
		EndYear:         u16(10),
		EndMonth:        u16(12),
		EndDay:          u16(14),
		StartHour:       u16(16),
		StartMinute:     u16(18),
		MinutesDuration: u32(20),
		MinutesInterval: u32(24),
		Flags:           u32(28),
		Type:            TriggerType(u32(32)),
		Specific:        [3]uint16{u16(36), u16(38), u16(40)},
		Padding:         u16(42),
		Reserved2:       u16(44),
		Reserved3:       u16(46),
	}
}

// validate records warnings for values that cannot be represented
// faithfully. The trigger is kept either way.
func (t Trigger) validate(i int, ws *diag.Warnings) {
	field := t.field(i)
	if t.Size != TriggerRecordSize {
		ws.Add(diag.CodeLayout, field, t.Offset, "record declares size %d, expected %d", t.Size, TriggerRecordSize)
	}
	kind := t.Type.Kind()
	if kind == jobmodel.TriggerUnknown {
		ws.Add(diag.CodeUnrecognizedTriggerKind, field, t.Offset+32, "unrecognized trigger type %d", uint32(t.Type))
		return
	}
	if kind.IsTimeBased() {
		if _, ok := jobmodel.WallClock(int(t.BeginYear), int(t.BeginMonth), int(t.BeginDay), int(t.StartHour), int(t.StartMinute), 0, 0); !ok {
			ws.Add(diag.CodeInvalidValue, field, t.Offset+4, "invalid start %04d-%02d-%02d %02d:%02d",
				t.BeginYear, t.BeginMonth, t.BeginDay, t.StartHour, t.StartMinute)
		}
		if t.Flags&TriggerFlagHasEndDate != 0 {
			if _, ok := jobmodel.WallClock(int(t.EndYear), int(t.EndMonth), int(t.EndDay), 0, 0, 0, 0); !ok {
				ws.Add(diag.CodeInvalidValue, field, t.Offset+10, "invalid end date %04d-%02d-%02d",
					t.EndYear, t.EndMonth, t.EndDay)
			}
		}
	}
	if t.MinutesInterval > 0 && t.MinutesDuration > 0 && t.MinutesInterval > t.MinutesDuration {
		ws.Add(diag.CodeInvalidValue, field, t.Offset+24, "repetition interval %d min exceeds duration %d min",
			t.MinutesInterval, t.MinutesDuration)
	}

	switch kind {
	case jobmodel.TriggerDaily:
		if t.DaysInterval() == 0 {
			ws.Add(diag.CodeInvalidValue, field, t.Offset+36, "daily trigger with zero day interval")
		}
	case jobmodel.TriggerWeekly:
		if t.WeeksInterval() == 0 {
			ws.Add(diag.CodeInvalidValue, field, t.Offset+36, "weekly trigger with zero week interval")
		}
		checkWeekdays(t, field, ws)
	case jobmodel.TriggerMonthlyDate:
		if t.MonthDays()&0x80000000 != 0 {
			ws.Add(diag.CodeInvalidValue, field, t.Offset+36, "day mask %#x sets undefined bit 31", t.MonthDays())
		}
		checkMonths(t, field, ws)
	case jobmodel.TriggerMonthlyDayOfWeek:
		if w := t.WhichWeek(); w < 1 || w > 5 {
			ws.Add(diag.CodeInvalidValue, field, t.Offset+36, "week of month %d outside 1-5", w)
		}
		checkWeekdays(t, field, ws)
		checkMonths(t, field, ws)
	}
}

func checkWeekdays(t Trigger, field string, ws *diag.Warnings) {
	if d := t.DaysOfWeek(); d&^uint16(jobmodel.AllWeekdays) != 0 {
		ws.Add(diag.CodeInvalidValue, field, t.Offset+38, "day-of-week mask %#x sets undefined bits", d)
	}
}

func checkMonths(t Trigger, field string, ws *diag.Warnings) {
	if m := t.Months(); m&^uint16(jobmodel.AllMonths) != 0 {
		ws.Add(diag.CodeInvalidValue, field, t.Offset+40, "month mask %#x sets undefined bits", m)
	}
}

// readTriggers locates the trigger array and decodes every record that
// fits in the buffer. stringsEnd is where the string walk stopped, or -1.
func (r *Record) readTriggers(c *bytecursor.Cursor, stringsEnd int) {
	off := int(r.Header.TriggerOffset)

	if off < minVariableOffset || c.Check(off, 2) != nil {
		if stringsEnd >= 0 && c.Check(stringsEnd, 2) == nil {
			r.Warnings.Add(diag.CodeLayout, FieldTriggers, offTriggerOffset,
				"trigger offset %d is invalid; using end of string table at %d", off, stringsEnd)
			off = stringsEnd
		} else {
			r.Warnings.Add(diag.CodeOutOfBounds, FieldTriggers, offTriggerOffset,
				"trigger offset %d is outside the buffer (%d bytes)", off, c.Len())
			return
		}
	} else if stringsEnd >= 0 && stringsEnd != off {
		r.Warnings.Add(diag.CodeLayout, FieldTriggers, offTriggerOffset,
			"trigger offset %d does not follow the string table, which ends at %d", off, stringsEnd)
	}

	count, _ := c.U16At(off)
	r.TriggerCount = count
	r.triggersAt = off

	first := off + 2
	remaining, _ := c.RemainingFrom(first)
	fit := remaining / TriggerRecordSize
	n := int(count)
	if fit < n {
		r.Warnings.Add(diag.CodeTruncatedTriggers, FieldTriggers, first,
			"header declares %d triggers but only %d complete records fit in the remaining %d bytes",
			count, fit, remaining)
		n = fit
	}

	r.Triggers = make([]Trigger, 0, n)
	for i := 0; i < n; i++ {
		base := first + i*TriggerRecordSize
		rec, err := c.Sub(base, TriggerRecordSize)
		if err != nil {
			r.Warnings.Add(diag.CodeOutOfBounds, FieldTriggers, base, "%v", err)
			break
		}
		t := parseTrigger(rec, base)
		t.validate(i, &r.Warnings)
		r.Triggers = append(r.Triggers, t)
	}
	r.triggersEnd = first + len(r.Triggers)*TriggerRecordSize
	r.triggersComplete = len(r.Triggers) == int(count)
}
