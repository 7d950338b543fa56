package jobmodel

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp is a point in time that may lack a zone. Binary SYSTEMTIME
// values and zone-less xs:dateTime strings are wall-clock times on the
// machine that wrote them; those carry Zoned=false and a Time in UTC with
// the same wall-clock fields.
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

const wallClockLayout = "2006-01-02T15:04:05"

func (t Timestamp) String() string {
	if t.Zoned {
		return t.Time.Format(time.RFC3339Nano)
	}
	if t.Time.Nanosecond() != 0 {
		return t.Time.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Time.Format(wallClockLayout)
}

// MarshalText renders String().
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// WallClock builds a zone-less timestamp. It returns false when the
// fields do not form a real calendar date.
func WallClock(year, month, day, hour, minute, second, millis int) (Timestamp, bool) {
	if year < 1601 || year > 30827 || month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 59 || millis > 999 ||
		hour < 0 || minute < 0 || second < 0 || millis < 0 {
		return Timestamp{}, false
	}
	tm := time.Date(year, time.Month(month), day, hour, minute, second, millis*int(time.Millisecond), time.UTC)
	if tm.Day() != day {
		// time.Date normalized e.g. February 30th into March.
		return Timestamp{}, false
	}
	return Timestamp{Time: tm}, true
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
}

var wallLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	wallClockLayout,
}

// ParseTimestamp parses an xs:dateTime value with or without a zone.
func ParseTimestamp(s string) (Timestamp, error) {
	in := strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if tm, err := time.Parse(layout, in); err == nil {
			return Timestamp{Time: tm, Zoned: true}, nil
		}
	}
	for _, layout := range wallLayouts {
		if tm, err := time.Parse(layout, in); err == nil {
			return Timestamp{Time: tm}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}
