package jobmodel

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekdays is a day-of-week bitmask in job-file order: bit 0 is Sunday,
// bit 6 is Saturday.
type Weekdays uint8

// AllWeekdays has every defined bit set.
const AllWeekdays Weekdays = 0x7f

// WeekdayBit returns the mask bit for d.
func WeekdayBit(d time.Weekday) Weekdays {
	return 1 << uint(d)
}

// Days lists the set days from Sunday to Saturday.
func (w Weekdays) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w&WeekdayBit(d) != 0 {
			out = append(out, d)
		}
	}
	return out
}

func (w Weekdays) String() string {
	var names []string
	for _, d := range w.Days() {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

// MarshalText renders the set day names.
func (w Weekdays) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// Months is a month bitmask: bit 0 is January, bit 11 is December.
type Months uint16

// AllMonths has every defined bit set.
const AllMonths Months = 0x0fff

// MonthBit returns the mask bit for m.
func MonthBit(m time.Month) Months {
	return 1 << uint(m-1)
}

// List returns the set months in calendar order.
func (m Months) List() []time.Month {
	var out []time.Month
	for mo := time.January; mo <= time.December; mo++ {
		if m&MonthBit(mo) != 0 {
			out = append(out, mo)
		}
	}
	return out
}

func (m Months) String() string {
	var names []string
	for _, mo := range m.List() {
		names = append(names, mo.String()[:3])
	}
	return strings.Join(names, ",")
}

// MarshalText renders the set month abbreviations.
func (m Months) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// MonthDays is a day-of-month bitmask: bit 0 is day 1, bit 30 is day 31
// and bit 31 is "last day of the month".
type MonthDays uint32

// LastDayOfMonth is the bit for the month's final day, whatever its number.
const LastDayOfMonth MonthDays = 1 << 31

// MonthDayBit returns the mask bit for day (1-31).
func MonthDayBit(day int) MonthDays {
	return 1 << uint(day-1)
}

// Days lists the numbered days set, ascending.
func (d MonthDays) Days() []int {
	var out []int
	for day := 1; day <= 31; day++ {
		if d&MonthDayBit(day) != 0 {
			out = append(out, day)
		}
	}
	return out
}

func (d MonthDays) String() string {
	var parts []string
	for _, day := range d.Days() {
		parts = append(parts, strconv.Itoa(day))
	}
	if d&LastDayOfMonth != 0 {
		parts = append(parts, "Last")
	}
	return strings.Join(parts, ",")
}

// MarshalText renders the set days.
func (d MonthDays) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Weeks is a week-of-month bitmask: bit 0 is the first week, bit 3 the
// fourth and bit 4 the last week.
type Weeks uint8

// LastWeek is the bit for the final week of the month.
const LastWeek Weeks = 1 << 4

// WeekBit returns the mask bit for week n (1-4, or 5 for last).
func WeekBit(n int) Weeks {
	return 1 << uint(n-1)
}

func (w Weeks) String() string {
	var parts []string
	for n := 1; n <= 4; n++ {
		if w&WeekBit(n) != 0 {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	if w&LastWeek != 0 {
		parts = append(parts, "Last")
	}
	if rest := w &^ (LastWeek | 0x0f); rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint8(rest)))
	}
	return strings.Join(parts, ",")
}

// MarshalText renders the set weeks.
func (w Weeks) MarshalText() ([]byte, error) { return []byte(w.String()), nil }
