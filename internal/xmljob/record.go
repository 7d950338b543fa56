package xmljob

import (
	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
)

// Namespace is the Task Scheduler task-definition namespace.
const Namespace = "http://schemas.microsoft.com/windows/2004/02/mit/task"

// Record is the typed content of one XML task definition. Pointer
// fields are nil when the element was absent or its value did not parse;
// the latter also leaves a warning.
type Record struct {
	// Version is the Task element's version attribute, e.g. "1.2".
	Version   string
	Namespace string

	Registration Registration

	// HasTriggers and HasActions report whether the container elements
	// were present, which distinguishes "none declared" from "empty".
	HasTriggers bool
	Triggers    []Trigger
	HasActions  bool
	Actions     []Action
	// ActionsContext is the principal id named by Actions/@Context.
	ActionsContext string

	Principals []Principal
	Settings   Settings

	Warnings diag.Warnings
}

// Registration is the RegistrationInfo element.
type Registration struct {
	URI                *string
	Author             *string
	Description        *string
	Date               *jobmodel.Timestamp
	Source             *string
	Version            *string
	Documentation      *string
	SecurityDescriptor *string
}

// Repetition is a trigger's Repetition element.
type Repetition struct {
	Interval          *jobmodel.Duration
	Duration          *jobmodel.Duration
	StopAtDurationEnd *bool
}

// Trigger is one child of the Triggers element. Kind is resolved from
// the element name and, for calendar triggers, from the schedule child.
type Trigger struct {
	Element string
	Kind    jobmodel.TriggerKind
	ID      string

	Enabled            *bool
	StartBoundary      *jobmodel.Timestamp
	EndBoundary        *jobmodel.Timestamp
	ExecutionTimeLimit *jobmodel.Duration
	Delay              *jobmodel.Duration
	RandomDelay        *jobmodel.Duration
	Repetition         *Repetition

	DaysInterval  *int
	WeeksInterval *int
	DaysOfWeek    jobmodel.Weekdays
	DaysOfMonth   jobmodel.MonthDays
	Months        jobmodel.Months
	Weeks         jobmodel.Weeks

	UserID       *string
	Subscription *string
	StateChange  *string
}

// Action is one child of the Actions element.
type Action struct {
	Element string
	Kind    jobmodel.ActionKind
	ID      string

	Command          *string
	Arguments        *string
	WorkingDirectory *string

	ClassID *string
	Data    *string

	// Details holds the text of the remaining leaf children of SendEmail
	// and ShowMessage actions, keyed by element name.
	Details map[string]string
}

// Principal is one Principals/Principal element.
type Principal struct {
	ID          string
	UserID      *string
	GroupID     *string
	DisplayName *string
	LogonType   *string
	RunLevel    *string
}

// Settings is the Settings element.
type Settings struct {
	Enabled                    *bool
	Hidden                     *bool
	AllowStartOnDemand         *bool
	AllowHardTerminate         *bool
	StartWhenAvailable         *bool
	DisallowStartIfOnBatteries *bool
	StopIfGoingOnBatteries     *bool
	RunOnlyIfIdle              *bool
	RunOnlyIfNetworkAvailable  *bool
	WakeToRun                  *bool
	MultipleInstancesPolicy    *string
	Priority                   *int

	ExecutionTimeLimit     *jobmodel.Duration
	DeleteExpiredTaskAfter *jobmodel.Duration

	RestartCount    *int
	RestartInterval *jobmodel.Duration

	IdleDuration    *jobmodel.Duration
	IdleWaitTimeout *jobmodel.Duration
	StopOnIdleEnd   *bool
	RestartOnIdle   *bool
}

// Principal returns the principal the actions run under: the one named
// by ActionsContext, else the first declared.
func (r *Record) Principal() (Principal, bool) {
	if r.ActionsContext != "" {
		for _, p := range r.Principals {
			if p.ID == r.ActionsContext {
				return p, true
			}
		}
	}
	if len(r.Principals) > 0 {
		return r.Principals[0], true
	}
	return Principal{}, false
}
