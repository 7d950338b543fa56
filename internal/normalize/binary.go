package normalize

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/croncommander/cc-jobparse/internal/binjob"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
)

func (s binarySource) normalize(opts Options) *jobmodel.Descriptor {
	rec := s.rec
	d := &jobmodel.Descriptor{
		Name:       opts.Name,
		SourcePath: opts.SourcePath,
		Format:     jobmodel.FormatBinary,
		Triggers:   []jobmodel.Trigger{},
		Actions:    []jobmodel.Action{},
	}
	if rec == nil {
		return d
	}
	if d.Name == "" {
		d.Name = nameFromPath(opts.SourcePath)
	}

	h := rec.Header
	d.JobID = h.JobID()
	d.SchemaVersion = strconv.Itoa(int(h.FileVersion))
	d.Product, _ = binjob.ProductName(h.ProductVersion)
	d.ProductVersion = clonePtr(&h.ProductVersion)

	d.Metadata = jobmodel.Metadata{
		Author:      clonePtr(rec.Strings.Author.Value),
		Description: clonePtr(rec.Strings.Comment.Value),
	}

	if a, ok := binaryAction(rec.Strings); ok {
		d.Actions = append(d.Actions, a)
	}
	for _, t := range rec.Triggers {
		d.Triggers = append(d.Triggers, binaryTrigger(t))
	}

	d.Settings = binarySettings(h)
	d.Limits = binaryLimits(h)
	d.RunState = binaryRunState(rec)

	if sig := rec.Signature; sig != nil {
		d.Signature = &jobmodel.Signature{
			Version:          sig.Version,
			MinClientVersion: sig.MinClientVersion,
			Digest:           hex.EncodeToString(sig.Digest),
		}
	}

	d.Warnings = rec.Warnings.Clone()
	return d
}

// binaryAction builds the single exec action of a legacy job. It is
// absent only when none of its strings survived decoding.
func binaryAction(s binjob.Strings) (jobmodel.Action, bool) {
	app, params, dir := s.ApplicationName.Value, s.Parameters.Value, s.WorkingDirectory.Value
	if app == nil && params == nil && dir == nil {
		return jobmodel.Action{}, false
	}
	return jobmodel.Action{
		Kind:             jobmodel.ActionExec,
		Command:          jobmodel.Deref(app),
		Arguments:        clonePtr(params),
		WorkingDirectory: clonePtr(dir),
	}, true
}

func binarySettings(h binjob.Header) jobmodel.Settings {
	f := h.Flags
	has := func(bit uint32) *bool { return boolPtr(f&bit != 0) }

	s := jobmodel.Settings{
		Enabled:                    boolPtr(f&binjob.FlagDisabled == 0),
		Hidden:                     has(binjob.FlagHidden),
		Interactive:                has(binjob.FlagInteractive),
		DeleteWhenDone:             has(binjob.FlagDeleteWhenDone),
		RunOnlyIfIdle:              has(binjob.FlagStartOnlyIfIdle),
		StopOnIdleEnd:              has(binjob.FlagKillOnIdleEnd),
		RestartOnIdle:              has(binjob.FlagRestartOnIdleResume),
		DisallowStartIfOnBatteries: has(binjob.FlagDontStartIfOnBatteries),
		StopIfGoingOnBatteries:     has(binjob.FlagKillIfGoingOnBatteries),
		RunOnlyIfDocked:            has(binjob.FlagRunOnlyIfDocked),
		RunOnlyIfNetworkAvailable:  has(binjob.FlagRunIfConnectedToInternet),
		WakeToRun:                  has(binjob.FlagSystemRequired),
		RunOnlyIfLoggedOn:          has(binjob.FlagRunOnlyIfLoggedOn),
		RawFlags:                   clonePtr(&f),
		FlagNames:                  binjob.FlagNames(f),
	}
	if name, ok := binjob.PriorityName(h.Priority); ok {
		s.PriorityClass = &name
	} else {
		name := fmt.Sprintf("%#x", h.Priority)
		s.PriorityClass = &name
	}
	return s
}

func binaryLimits(h binjob.Header) jobmodel.Limits {
	var l jobmodel.Limits

	maxRun := jobmodel.Milliseconds(h.MaxRunTime)
	if h.MaxRunTime == binjob.MaxRunTimeInfinite {
		maxRun = jobmodel.InfiniteDuration()
	}
	l.MaxRunTime = &maxRun

	if h.ErrorRetryCount > 0 {
		l.Retry = &jobmodel.RetryPolicy{
			Count:    int(h.ErrorRetryCount),
			Interval: jobmodel.Minutes(uint32(h.ErrorRetryInterval)),
		}
	}
	if h.IdleWait > 0 || h.IdleDeadline > 0 {
		wait := jobmodel.Minutes(uint32(h.IdleWait))
		deadline := jobmodel.Minutes(uint32(h.IdleDeadline))
		l.Idle = &jobmodel.IdlePolicy{Duration: &wait, WaitTimeout: &deadline}
	}
	return l
}

func binaryRunState(rec *binjob.Record) *jobmodel.RunState {
	h := rec.Header
	rs := &jobmodel.RunState{
		ExitCode:   int32(h.ExitCode),
		StatusCode: h.Status,
	}
	if name, ok := binjob.StatusName(h.Status); ok {
		rs.Status = name
	} else {
		rs.Status = fmt.Sprintf("%#08x", h.Status)
	}
	if rec.RunningInstances != nil {
		rs.RunningInstances = *rec.RunningInstances
	}
	if lr := h.LastRun; !lr.IsZero() {
		if ts, ok := jobmodel.WallClock(int(lr.Year), int(lr.Month), int(lr.Day),
			int(lr.Hour), int(lr.Minute), int(lr.Second), int(lr.Millisecond)); ok {
			rs.LastRun = &ts
		}
	}
	if rec.Reserved != nil {
		rs.StartError = clonePtr(&rec.Reserved.StartError)
	}
	return rs
}

func binaryTrigger(t binjob.Trigger) jobmodel.Trigger {
	kind := t.Type.Kind()
	out := jobmodel.Trigger{
		Kind:    kind,
		Enabled: boolPtr(t.Flags&binjob.TriggerFlagDisabled == 0),
	}

	if kind.IsTimeBased() {
		if ts, ok := jobmodel.WallClock(int(t.BeginYear), int(t.BeginMonth), int(t.BeginDay),
			int(t.StartHour), int(t.StartMinute), 0, 0); ok {
			out.Start = &ts
		}
		if t.Flags&binjob.TriggerFlagHasEndDate != 0 {
			if ts, ok := jobmodel.WallClock(int(t.EndYear), int(t.EndMonth), int(t.EndDay), 0, 0, 0, 0); ok {
				out.End = &ts
			}
		}
	}

	if t.MinutesInterval > 0 {
		rep := &jobmodel.Repetition{
			Interval:          jobmodel.Minutes(t.MinutesInterval),
			StopAtDurationEnd: t.Flags&binjob.TriggerFlagKillAtDurationEnd != 0,
		}
		if t.MinutesDuration > 0 {
			dur := jobmodel.Minutes(t.MinutesDuration)
			rep.Duration = &dur
		}
		out.Repetition = rep
	}

	switch kind {
	case jobmodel.TriggerOnce:
		out.Schedule = jobmodel.OnceSchedule{}
	case jobmodel.TriggerDaily:
		out.Schedule = jobmodel.DailySchedule{DaysInterval: int(t.DaysInterval())}
	case jobmodel.TriggerWeekly:
		out.Schedule = jobmodel.WeeklySchedule{
			WeeksInterval: int(t.WeeksInterval()),
			DaysOfWeek:    jobmodel.Weekdays(t.DaysOfWeek()),
		}
	case jobmodel.TriggerMonthlyDate:
		out.Schedule = jobmodel.MonthlyDateSchedule{
			Days:   jobmodel.MonthDays(t.MonthDays()),
			Months: jobmodel.Months(t.Months()),
		}
	case jobmodel.TriggerMonthlyDayOfWeek:
		var weeks jobmodel.Weeks
		// Out-of-range weeks were already reported by the decoder.
		if w := int(t.WhichWeek()); w >= 1 && w <= 5 {
			weeks = jobmodel.WeekBit(w)
		}
		out.Schedule = jobmodel.MonthlyDayOfWeekSchedule{
			Weeks:      weeks,
			DaysOfWeek: jobmodel.Weekdays(t.DaysOfWeek()),
			Months:     jobmodel.Months(t.Months()),
		}
	case jobmodel.TriggerIdle:
		out.Schedule = jobmodel.IdleSchedule{}
	case jobmodel.TriggerStartup:
		out.Schedule = jobmodel.StartupSchedule{}
	case jobmodel.TriggerLogon:
		out.Schedule = jobmodel.LogonSchedule{}
	default:
		raw := uint32(t.Type)
		out.Schedule = jobmodel.UnknownSchedule{RawType: &raw}
	}
	return out
}
