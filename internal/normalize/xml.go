package normalize

import (
	"strings"

	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/xmljob"
)

func (s xmlSource) normalize(opts Options) *jobmodel.Descriptor {
	rec := s.rec
	d := &jobmodel.Descriptor{
		Name:       opts.Name,
		SourcePath: opts.SourcePath,
		Format:     jobmodel.FormatXML,
		Triggers:   []jobmodel.Trigger{},
		Actions:    []jobmodel.Action{},
	}
	if rec == nil {
		return d
	}

	reg := rec.Registration
	d.URI = clonePtr(reg.URI)
	d.SchemaVersion = rec.Version
	if d.Name == "" {
		d.Name = nameFromURI(reg.URI)
	}
	if d.Name == "" {
		d.Name = nameFromPath(opts.SourcePath)
	}

	d.Metadata = jobmodel.Metadata{
		Author:             clonePtr(reg.Author),
		Description:        clonePtr(reg.Description),
		Created:            clonePtr(reg.Date),
		Source:             clonePtr(reg.Source),
		Version:            clonePtr(reg.Version),
		Documentation:      clonePtr(reg.Documentation),
		SecurityDescriptor: clonePtr(reg.SecurityDescriptor),
	}

	for _, t := range rec.Triggers {
		d.Triggers = append(d.Triggers, xmlTrigger(t))
	}
	for _, a := range rec.Actions {
		d.Actions = append(d.Actions, xmlAction(a))
	}
	if p, ok := rec.Principal(); ok {
		d.Principal = xmlPrincipal(p)
	}

	d.Settings = xmlSettings(rec.Settings)
	d.Limits = xmlLimits(rec.Settings)
	d.Warnings = rec.Warnings.Clone()
	return d
}

// nameFromURI returns the last path segment of a task URI such as
// \Microsoft\Windows\Defrag\ScheduledDefrag.
func nameFromURI(uri *string) string {
	if uri == nil {
		return ""
	}
	u := strings.TrimRight(*uri, `\`)
	if i := strings.LastIndex(u, `\`); i >= 0 {
		return u[i+1:]
	}
	return u
}

func xmlAction(a xmljob.Action) jobmodel.Action {
	out := jobmodel.Action{
		Kind:             a.Kind,
		ID:               a.ID,
		Command:          jobmodel.Deref(a.Command),
		Arguments:        clonePtr(a.Arguments),
		WorkingDirectory: clonePtr(a.WorkingDirectory),
		ClassID:          jobmodel.Deref(a.ClassID),
		Data:             clonePtr(a.Data),
	}
	if len(a.Details) > 0 {
		out.Details = make(map[string]string, len(a.Details))
		for k, v := range a.Details {
			out.Details[k] = v
		}
	}
	return out
}

// xmlPrincipal keeps the user string verbatim. A SID is flagged and,
// when it is well known, given its fixed account name.
func xmlPrincipal(p xmljob.Principal) *jobmodel.Principal {
	out := &jobmodel.Principal{
		ID:          p.ID,
		UserID:      clonePtr(p.UserID),
		GroupID:     clonePtr(p.GroupID),
		DisplayName: clonePtr(p.DisplayName),
		LogonType:   clonePtr(p.LogonType),
		RunLevel:    clonePtr(p.RunLevel),
	}
	sid := p.UserID
	if sid == nil {
		sid = p.GroupID
	}
	if sid != nil && jobmodel.IsSID(*sid) {
		out.IsSID = true
		out.WellKnownName, _ = jobmodel.WellKnownSID(*sid)
	}
	return out
}

func xmlSettings(s xmljob.Settings) jobmodel.Settings {
	return jobmodel.Settings{
		Enabled:                    clonePtr(s.Enabled),
		Hidden:                     clonePtr(s.Hidden),
		RunOnlyIfIdle:              clonePtr(s.RunOnlyIfIdle),
		StopOnIdleEnd:              clonePtr(s.StopOnIdleEnd),
		RestartOnIdle:              clonePtr(s.RestartOnIdle),
		DisallowStartIfOnBatteries: clonePtr(s.DisallowStartIfOnBatteries),
		StopIfGoingOnBatteries:     clonePtr(s.StopIfGoingOnBatteries),
		RunOnlyIfNetworkAvailable:  clonePtr(s.RunOnlyIfNetworkAvailable),
		WakeToRun:                  clonePtr(s.WakeToRun),
		AllowStartOnDemand:         clonePtr(s.AllowStartOnDemand),
		AllowHardTerminate:         clonePtr(s.AllowHardTerminate),
		StartWhenAvailable:         clonePtr(s.StartWhenAvailable),
		MultipleInstancesPolicy:    clonePtr(s.MultipleInstancesPolicy),
		Priority:                   clonePtr(s.Priority),
	}
}

func xmlLimits(s xmljob.Settings) jobmodel.Limits {
	l := jobmodel.Limits{
		MaxRunTime:         clonePtr(s.ExecutionTimeLimit),
		DeleteExpiredAfter: clonePtr(s.DeleteExpiredTaskAfter),
	}
	if s.RestartCount != nil || s.RestartInterval != nil {
		r := &jobmodel.RetryPolicy{}
		if s.RestartCount != nil {
			r.Count = *s.RestartCount
		}
		if s.RestartInterval != nil {
			r.Interval = *s.RestartInterval
		}
		l.Retry = r
	}
	if s.IdleDuration != nil || s.IdleWaitTimeout != nil {
		l.Idle = &jobmodel.IdlePolicy{
			Duration:    clonePtr(s.IdleDuration),
			WaitTimeout: clonePtr(s.IdleWaitTimeout),
		}
	}
	return l
}

// intervalOr returns *p, or the schema default of 1 when it is absent.
func intervalOr(p *int) int {
	if p == nil {
		return 1
	}
	return *p
}

func xmlTrigger(t xmljob.Trigger) jobmodel.Trigger {
	out := jobmodel.Trigger{
		Kind:               t.Kind,
		ID:                 t.ID,
		Enabled:            clonePtr(t.Enabled),
		Start:              clonePtr(t.StartBoundary),
		End:                clonePtr(t.EndBoundary),
		ExecutionTimeLimit: clonePtr(t.ExecutionTimeLimit),
		Delay:              clonePtr(t.Delay),
		RandomDelay:        clonePtr(t.RandomDelay),
	}
	if rep := t.Repetition; rep != nil && rep.Interval != nil {
		out.Repetition = &jobmodel.Repetition{
			Interval: *rep.Interval,
			Duration: clonePtr(rep.Duration),
		}
		if rep.StopAtDurationEnd != nil {
			out.Repetition.StopAtDurationEnd = *rep.StopAtDurationEnd
		}
	}

	switch t.Kind {
	case jobmodel.TriggerOnce:
		out.Schedule = jobmodel.OnceSchedule{}
	case jobmodel.TriggerDaily:
		out.Schedule = jobmodel.DailySchedule{DaysInterval: intervalOr(t.DaysInterval)}
	case jobmodel.TriggerWeekly:
		out.Schedule = jobmodel.WeeklySchedule{WeeksInterval: intervalOr(t.WeeksInterval), DaysOfWeek: t.DaysOfWeek}
	case jobmodel.TriggerMonthlyDate:
		out.Schedule = jobmodel.MonthlyDateSchedule{Days: t.DaysOfMonth, Months: t.Months}
	case jobmodel.TriggerMonthlyDayOfWeek:
		out.Schedule = jobmodel.MonthlyDayOfWeekSchedule{Weeks: t.Weeks, DaysOfWeek: t.DaysOfWeek, Months: t.Months}
	case jobmodel.TriggerIdle:
		out.Schedule = jobmodel.IdleSchedule{}
	case jobmodel.TriggerStartup:
		out.Schedule = jobmodel.StartupSchedule{}
	case jobmodel.TriggerLogon:
		out.Schedule = jobmodel.LogonSchedule{UserID: jobmodel.Deref(t.UserID)}
	case jobmodel.TriggerEvent:
		out.Schedule = jobmodel.EventSchedule{Subscription: jobmodel.Deref(t.Subscription)}
	case jobmodel.TriggerRegistration:
		out.Schedule = jobmodel.RegistrationSchedule{}
	case jobmodel.TriggerSessionStateChange:
		out.Schedule = jobmodel.SessionStateChangeSchedule{
			StateChange: jobmodel.Deref(t.StateChange),
			UserID:      jobmodel.Deref(t.UserID),
		}
	default:
		out.Schedule = jobmodel.UnknownSchedule{Element: t.Element}
	}
	return out
}
