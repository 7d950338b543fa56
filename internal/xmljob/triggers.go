package xmljob

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
)

var triggerKinds = map[string]jobmodel.TriggerKind{
	"TimeTrigger":               jobmodel.TriggerOnce,
	"IdleTrigger":               jobmodel.TriggerIdle,
	"BootTrigger":               jobmodel.TriggerStartup,
	"LogonTrigger":              jobmodel.TriggerLogon,
	"EventTrigger":              jobmodel.TriggerEvent,
	"RegistrationTrigger":       jobmodel.TriggerRegistration,
	"SessionStateChangeTrigger": jobmodel.TriggerSessionStateChange,
}

var weekdayElements = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

var monthElements = map[string]time.Month{
	"January": time.January, "February": time.February, "March": time.March,
	"April": time.April, "May": time.May, "June": time.June,
	"July": time.July, "August": time.August, "September": time.September,
	"October": time.October, "November": time.November, "December": time.December,
}

func (w *walker) triggers(el *etree.Element) []Trigger {
	children := el.ChildElements()
	out := make([]Trigger, 0, len(children))
	for i, child := range children {
		out = append(out, w.trigger(child, fmt.Sprintf("Triggers/%s[%d]", child.Tag, i)))
	}
	return out
}

func (w *walker) trigger(el *etree.Element, path string) Trigger {
	t := Trigger{
		Element:            el.Tag,
		ID:                 el.SelectAttrValue("id", ""),
		Enabled:            w.boolean(el, "Enabled", path+"/Enabled"),
		StartBoundary:      w.timestamp(el, "StartBoundary", path+"/StartBoundary"),
		EndBoundary:        w.timestamp(el, "EndBoundary", path+"/EndBoundary"),
		ExecutionTimeLimit: w.limit(el, "ExecutionTimeLimit", path+"/ExecutionTimeLimit"),
		Delay:              w.duration(el, "Delay", path+"/Delay"),
		RandomDelay:        w.duration(el, "RandomDelay", path+"/RandomDelay"),
	}
	if rep := el.SelectElement("Repetition"); rep != nil {
		t.Repetition = &Repetition{
			Interval:          w.duration(rep, "Interval", path+"/Repetition/Interval"),
			Duration:          w.duration(rep, "Duration", path+"/Repetition/Duration"),
			StopAtDurationEnd: w.boolean(rep, "StopAtDurationEnd", path+"/Repetition/StopAtDurationEnd"),
		}
	}

	if el.Tag == "CalendarTrigger" {
		w.calendar(el, path, &t)
		return t
	}

	kind, ok := triggerKinds[el.Tag]
	if !ok {
		t.Kind = jobmodel.TriggerUnknown
		w.warn(diag.CodeUnrecognizedTriggerKind, path, "unrecognized trigger element <%s>", el.Tag)
		return t
	}
	t.Kind = kind
	switch kind {
	case jobmodel.TriggerLogon:
		t.UserID = w.text(el, "UserId")
	case jobmodel.TriggerEvent:
		t.Subscription = w.text(el, "Subscription")
	case jobmodel.TriggerSessionStateChange:
		t.UserID = w.text(el, "UserId")
		t.StateChange = w.text(el, "StateChange")
	}
	return t
}

// calendar resolves a CalendarTrigger from its schedule child.
func (w *walker) calendar(el *etree.Element, path string, t *Trigger) {
	switch {
	case el.SelectElement("ScheduleByDay") != nil:
		s := el.SelectElement("ScheduleByDay")
		t.Kind = jobmodel.TriggerDaily
		t.DaysInterval = w.integer(s, "DaysInterval", path+"/ScheduleByDay/DaysInterval")

	case el.SelectElement("ScheduleByWeek") != nil:
		s := el.SelectElement("ScheduleByWeek")
		t.Kind = jobmodel.TriggerWeekly
		t.WeeksInterval = w.integer(s, "WeeksInterval", path+"/ScheduleByWeek/WeeksInterval")
		t.DaysOfWeek = w.weekdays(s, path+"/ScheduleByWeek/DaysOfWeek")

	case el.SelectElement("ScheduleByMonth") != nil:
		s := el.SelectElement("ScheduleByMonth")
		t.Kind = jobmodel.TriggerMonthlyDate
		t.DaysOfMonth = w.monthDays(s, path+"/ScheduleByMonth/DaysOfMonth")
		t.Months = w.months(s, path+"/ScheduleByMonth/Months")

	case el.SelectElement("ScheduleByMonthDayOfWeek") != nil:
		s := el.SelectElement("ScheduleByMonthDayOfWeek")
		t.Kind = jobmodel.TriggerMonthlyDayOfWeek
		t.Weeks = w.weeks(s, path+"/ScheduleByMonthDayOfWeek/Weeks")
		t.DaysOfWeek = w.weekdays(s, path+"/ScheduleByMonthDayOfWeek/DaysOfWeek")
		t.Months = w.months(s, path+"/ScheduleByMonthDayOfWeek/Months")

	default:
		t.Kind = jobmodel.TriggerUnknown
		w.warn(diag.CodeMissingElement, path, "calendar trigger without a schedule element")
	}
}

func (w *walker) weekdays(parent *etree.Element, path string) jobmodel.Weekdays {
	var mask jobmodel.Weekdays
	el := parent.SelectElement("DaysOfWeek")
	if el == nil {
		return mask
	}
	for _, d := range el.ChildElements() {
		day, ok := weekdayElements[d.Tag]
		if !ok {
			w.warn(diag.CodeInvalidValue, path, "unknown weekday <%s>", d.Tag)
			continue
		}
		mask |= jobmodel.WeekdayBit(day)
	}
	return mask
}

func (w *walker) months(parent *etree.Element, path string) jobmodel.Months {
	var mask jobmodel.Months
	el := parent.SelectElement("Months")
	if el == nil {
		return mask
	}
	for _, m := range el.ChildElements() {
		month, ok := monthElements[m.Tag]
		if !ok {
			w.warn(diag.CodeInvalidValue, path, "unknown month <%s>", m.Tag)
			continue
		}
		mask |= jobmodel.MonthBit(month)
	}
	return mask
}

func (w *walker) monthDays(parent *etree.Element, path string) jobmodel.MonthDays {
	var mask jobmodel.MonthDays
	el := parent.SelectElement("DaysOfMonth")
	if el == nil {
		return mask
	}
	for _, d := range el.SelectElements("Day") {
		v := strings.TrimSpace(d.Text())
		if v == "Last" {
			mask |= jobmodel.LastDayOfMonth
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 31 {
			w.warn(diag.CodeInvalidValue, path, "%q is not a day of the month", v)
			continue
		}
		mask |= jobmodel.MonthDayBit(n)
	}
	return mask
}

func (w *walker) weeks(parent *etree.Element, path string) jobmodel.Weeks {
	var mask jobmodel.Weeks
	el := parent.SelectElement("Weeks")
	if el == nil {
		return mask
	}
	for _, wk := range el.SelectElements("Week") {
		v := strings.TrimSpace(wk.Text())
		if v == "Last" {
			mask |= jobmodel.LastWeek
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 4 {
			w.warn(diag.CodeInvalidValue, path, "%q is not a week of the month", v)
			continue
		}
		mask |= jobmodel.WeekBit(n)
	}
	return mask
}
