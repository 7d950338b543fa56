package jobmodel

// TriggerKind tags the variant carried by Trigger.Schedule. Binary
// discriminants and XML trigger elements map onto the same set.
type TriggerKind string

const (
	TriggerOnce               TriggerKind = "once"
	TriggerDaily              TriggerKind = "daily"
	TriggerWeekly             TriggerKind = "weekly"
	TriggerMonthlyDate        TriggerKind = "monthly_date"
	TriggerMonthlyDayOfWeek   TriggerKind = "monthly_dow"
	TriggerIdle               TriggerKind = "idle"
	TriggerStartup            TriggerKind = "startup"
	TriggerLogon              TriggerKind = "logon"
	TriggerEvent              TriggerKind = "event"
	TriggerRegistration       TriggerKind = "registration"
	TriggerSessionStateChange TriggerKind = "session_state_change"
	TriggerUnknown            TriggerKind = "unknown"
)

// Schedule is the kind-specific part of a trigger. Each implementation
// carries only the fields meaningful for its kind.
type Schedule interface {
	Kind() TriggerKind
}

// OnceSchedule fires a single time at the trigger start.
type OnceSchedule struct{}

// DailySchedule fires every DaysInterval days.
type DailySchedule struct {
	DaysInterval int `json:"days_interval" yaml:"days_interval" toml:"days_interval"`
}

// WeeklySchedule fires on DaysOfWeek every WeeksInterval weeks.
type WeeklySchedule struct {
	WeeksInterval int      `json:"weeks_interval" yaml:"weeks_interval" toml:"weeks_interval"`
	DaysOfWeek    Weekdays `json:"days_of_week" yaml:"days_of_week" toml:"days_of_week"`
}

// MonthlyDateSchedule fires on calendar Days of Months.
type MonthlyDateSchedule struct {
	Days   MonthDays `json:"days" yaml:"days" toml:"days"`
	Months Months    `json:"months" yaml:"months" toml:"months"`
}

// MonthlyDayOfWeekSchedule fires on DaysOfWeek in the given Weeks of Months.
type MonthlyDayOfWeekSchedule struct {
	Weeks      Weeks    `json:"weeks" yaml:"weeks" toml:"weeks"`
	DaysOfWeek Weekdays `json:"days_of_week" yaml:"days_of_week" toml:"days_of_week"`
	Months     Months   `json:"months" yaml:"months" toml:"months"`
}

// IdleSchedule fires when the machine becomes idle.
type IdleSchedule struct{}

// StartupSchedule fires at system start.
type StartupSchedule struct{}

// LogonSchedule fires at logon of UserID, or of any user when empty.
type LogonSchedule struct {
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty" toml:"user_id,omitempty"`
}

// EventSchedule fires on an event log query match.
type EventSchedule struct {
	Subscription string `json:"subscription,omitempty" yaml:"subscription,omitempty" toml:"subscription,omitempty"`
}

// RegistrationSchedule fires when the task is registered or updated.
type RegistrationSchedule struct{}

// SessionStateChangeSchedule fires on terminal-session state changes.
type SessionStateChangeSchedule struct {
	StateChange string `json:"state_change,omitempty" yaml:"state_change,omitempty" toml:"state_change,omitempty"`
	UserID      string `json:"user_id,omitempty" yaml:"user_id,omitempty" toml:"user_id,omitempty"`
}

// UnknownSchedule preserves an unrecognized discriminant verbatim: the
// binary type value or the XML element name.
type UnknownSchedule struct {
	RawType *uint32 `json:"raw_type,omitempty" yaml:"raw_type,omitempty" toml:"raw_type,omitempty"`
	Element string  `json:"element,omitempty" yaml:"element,omitempty" toml:"element,omitempty"`
}

func (OnceSchedule) Kind() TriggerKind               { return TriggerOnce }
func (DailySchedule) Kind() TriggerKind              { return TriggerDaily }
func (WeeklySchedule) Kind() TriggerKind             { return TriggerWeekly }
func (MonthlyDateSchedule) Kind() TriggerKind        { return TriggerMonthlyDate }
func (MonthlyDayOfWeekSchedule) Kind() TriggerKind   { return TriggerMonthlyDayOfWeek }
func (IdleSchedule) Kind() TriggerKind               { return TriggerIdle }
func (StartupSchedule) Kind() TriggerKind            { return TriggerStartup }
func (LogonSchedule) Kind() TriggerKind              { return TriggerLogon }
func (EventSchedule) Kind() TriggerKind              { return TriggerEvent }
func (RegistrationSchedule) Kind() TriggerKind       { return TriggerRegistration }
func (SessionStateChangeSchedule) Kind() TriggerKind { return TriggerSessionStateChange }
func (UnknownSchedule) Kind() TriggerKind            { return TriggerUnknown }

// IsTimeBased reports whether the kind fires from a calendar start boundary.
func (k TriggerKind) IsTimeBased() bool {
	switch k {
	case TriggerOnce, TriggerDaily, TriggerWeekly, TriggerMonthlyDate, TriggerMonthlyDayOfWeek:
		return true
	}
	return false
}

// Repetition re-runs a triggered task every Interval for Duration.
type Repetition struct {
	Interval          Duration  `json:"interval" yaml:"interval" toml:"interval"`
	Duration          *Duration `json:"duration,omitempty" yaml:"duration,omitempty" toml:"duration,omitempty"`
	StopAtDurationEnd bool      `json:"stop_at_duration_end" yaml:"stop_at_duration_end" toml:"stop_at_duration_end"`
}

// Trigger is one normalized firing condition.
type Trigger struct {
	Kind               TriggerKind `json:"kind" yaml:"kind" toml:"kind"`
	ID                 string      `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Enabled            *bool       `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Start              *Timestamp  `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End                *Timestamp  `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
	Repetition         *Repetition `json:"repetition,omitempty" yaml:"repetition,omitempty" toml:"repetition,omitempty"`
	ExecutionTimeLimit *Duration   `json:"execution_time_limit,omitempty" yaml:"execution_time_limit,omitempty" toml:"execution_time_limit,omitempty"`
	Delay              *Duration   `json:"delay,omitempty" yaml:"delay,omitempty" toml:"delay,omitempty"`
	RandomDelay        *Duration   `json:"random_delay,omitempty" yaml:"random_delay,omitempty" toml:"random_delay,omitempty"`
	Schedule           Schedule    `json:"schedule" yaml:"schedule" toml:"schedule"`
}
