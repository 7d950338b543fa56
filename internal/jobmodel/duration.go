package jobmodel

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	isoduration "github.com/sosodev/duration"
)

// Duration is a normalized time span. Infinite marks "no limit"; Value is
// zero in that case.
type Duration struct {
	Value    time.Duration
	Infinite bool
}

// Minutes builds a Duration from a minute count.
func Minutes(n uint32) Duration {
	return Duration{Value: time.Duration(n) * time.Minute}
}

// Milliseconds builds a Duration from a millisecond count.
func Milliseconds(n uint32) Duration {
	return Duration{Value: time.Duration(n) * time.Millisecond}
}

// InfiniteDuration returns the unbounded duration.
func InfiniteDuration() Duration {
	return Duration{Infinite: true}
}

func (d Duration) String() string {
	if d.Infinite {
		return "infinite"
	}
	return d.Value.String()
}

// MarshalText renders String().
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Approximations for calendar units in ISO-8601 durations.
const (
	isoDay   = 24 * time.Hour
	isoWeek  = 7 * isoDay
	isoMonth = 30 * isoDay
	isoYear  = 365 * isoDay
)

// isoDurationPattern is the xs:duration grammar Task Scheduler writes.
// Fractions are accepted on seconds only.
var isoDurationPattern = regexp.MustCompile(`^P(\d+Y)?(\d+M)?(\d+W)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)

// ParseISODuration parses an xs:duration such as "PT72H", "P3D" or
// "P1DT2H30M15.5S". Months count as 30 days and years as 365 days. A
// leading minus sign is rejected: task durations are never negative.
// Values that do not fit a time.Duration are rejected too.
func ParseISODuration(s string) (Duration, error) {
	in := strings.TrimSpace(s)
	if !isoDurationPattern.MatchString(in) || in == "P" || strings.HasSuffix(in, "T") {
		return Duration{}, errors.Newf("invalid duration %q", s)
	}

	parsed, err := isoduration.Parse(in)
	if err != nil {
		return Duration{}, errors.Wrapf(err, "invalid duration %q", s)
	}
	if parsed.Negative {
		return Duration{}, errors.Newf("invalid duration %q: negative", s)
	}

	parts := []struct {
		value float64
		unit  time.Duration
	}{
		{parsed.Years, isoYear},
		{parsed.Months, isoMonth},
		{parsed.Weeks, isoWeek},
		{parsed.Days, isoDay},
		{parsed.Hours, time.Hour},
		{parsed.Minutes, time.Minute},
		{parsed.Seconds, time.Second},
	}

	var total time.Duration
	for _, p := range parts {
		ns := p.value * float64(p.unit)
		// float64(math.MaxInt64) rounds up to 2^63, so equality overflows too.
		if ns >= float64(math.MaxInt64) {
			return Duration{}, errors.Newf("invalid duration %q: out of range", s)
		}
		part := time.Duration(ns)
		if total > math.MaxInt64-part {
			return Duration{}, errors.Newf("invalid duration %q: out of range", s)
		}
		total += part
	}
	return Duration{Value: total}, nil
}
