package jobmodel

import "github.com/croncommander/cc-jobparse/internal/diag"

// Descriptor is the unified view of one job file. The normalizer builds
// it once from a single raw record; it is not modified afterwards.
// Pointer fields are nil when the source did not carry the value.
type Descriptor struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty" toml:"source_path,omitempty"`
	Format     Format `json:"format" yaml:"format" toml:"format"`

	JobID          string  `json:"job_id,omitempty" yaml:"job_id,omitempty" toml:"job_id,omitempty"`
	URI            *string `json:"uri,omitempty" yaml:"uri,omitempty" toml:"uri,omitempty"`
	SchemaVersion  string  `json:"schema_version,omitempty" yaml:"schema_version,omitempty" toml:"schema_version,omitempty"`
	Product        string  `json:"product,omitempty" yaml:"product,omitempty" toml:"product,omitempty"`
	ProductVersion *uint16 `json:"product_version,omitempty" yaml:"product_version,omitempty" toml:"product_version,omitempty"`

	Metadata  Metadata   `json:"metadata" yaml:"metadata" toml:"metadata"`
	Triggers  []Trigger  `json:"triggers" yaml:"triggers" toml:"triggers"`
	Actions   []Action   `json:"actions" yaml:"actions" toml:"actions"`
	Principal *Principal `json:"principal,omitempty" yaml:"principal,omitempty" toml:"principal,omitempty"`
	Settings  Settings   `json:"settings" yaml:"settings" toml:"settings"`
	Limits    Limits     `json:"limits" yaml:"limits" toml:"limits"`
	RunState  *RunState  `json:"run_state,omitempty" yaml:"run_state,omitempty" toml:"run_state,omitempty"`
	Signature *Signature `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature,omitempty"`

	Warnings diag.Warnings `json:"warnings" yaml:"warnings" toml:"warnings"`
}

// Metadata carries the descriptive fields of a task.
type Metadata struct {
	Author             *string    `json:"author,omitempty" yaml:"author,omitempty" toml:"author,omitempty"`
	Description        *string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Created            *Timestamp `json:"created,omitempty" yaml:"created,omitempty" toml:"created,omitempty"`
	Source             *string    `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Version            *string    `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Documentation      *string    `json:"documentation,omitempty" yaml:"documentation,omitempty" toml:"documentation,omitempty"`
	SecurityDescriptor *string    `json:"security_descriptor,omitempty" yaml:"security_descriptor,omitempty" toml:"security_descriptor,omitempty"`
}

// ActionKind identifies what an action does.
type ActionKind string

const (
	ActionExec        ActionKind = "exec"
	ActionComHandler  ActionKind = "com_handler"
	ActionSendEmail   ActionKind = "send_email"
	ActionShowMessage ActionKind = "show_message"
)

// Action is one thing the task runs. Command, Arguments and
// WorkingDirectory apply to exec actions; ClassID and Data to COM
// handlers; Details holds the remaining e-mail and message fields.
type Action struct {
	Kind             ActionKind        `json:"kind" yaml:"kind" toml:"kind"`
	ID               string            `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Command          string            `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
	Arguments        *string           `json:"arguments,omitempty" yaml:"arguments,omitempty" toml:"arguments,omitempty"`
	WorkingDirectory *string           `json:"working_directory,omitempty" yaml:"working_directory,omitempty" toml:"working_directory,omitempty"`
	ClassID          string            `json:"class_id,omitempty" yaml:"class_id,omitempty" toml:"class_id,omitempty"`
	Data             *string           `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
	Details          map[string]string `json:"details,omitempty" yaml:"details,omitempty" toml:"details,omitempty"`
}

// Principal is the account context the actions run under. UserID is the
// raw string from the file, SID or account name. WellKnownName is set
// only when UserID is a SID in the built-in well-known table; no account
// lookup is performed.
type Principal struct {
	ID            string  `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	UserID        *string `json:"user_id,omitempty" yaml:"user_id,omitempty" toml:"user_id,omitempty"`
	IsSID         bool    `json:"is_sid" yaml:"is_sid" toml:"is_sid"`
	WellKnownName string  `json:"well_known_name,omitempty" yaml:"well_known_name,omitempty" toml:"well_known_name,omitempty"`
	GroupID       *string `json:"group_id,omitempty" yaml:"group_id,omitempty" toml:"group_id,omitempty"`
	DisplayName   *string `json:"display_name,omitempty" yaml:"display_name,omitempty" toml:"display_name,omitempty"`
	LogonType     *string `json:"logon_type,omitempty" yaml:"logon_type,omitempty" toml:"logon_type,omitempty"`
	RunLevel      *string `json:"run_level,omitempty" yaml:"run_level,omitempty" toml:"run_level,omitempty"`
}

// Settings holds the scheduling switches. Binary files set every flag
// from the flags word; XML files set only what the document states.
type Settings struct {
	Enabled                    *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Hidden                     *bool   `json:"hidden,omitempty" yaml:"hidden,omitempty" toml:"hidden,omitempty"`
	Interactive                *bool   `json:"interactive,omitempty" yaml:"interactive,omitempty" toml:"interactive,omitempty"`
	DeleteWhenDone             *bool   `json:"delete_when_done,omitempty" yaml:"delete_when_done,omitempty" toml:"delete_when_done,omitempty"`
	RunOnlyIfIdle              *bool   `json:"run_only_if_idle,omitempty" yaml:"run_only_if_idle,omitempty" toml:"run_only_if_idle,omitempty"`
	StopOnIdleEnd              *bool   `json:"stop_on_idle_end,omitempty" yaml:"stop_on_idle_end,omitempty" toml:"stop_on_idle_end,omitempty"`
	RestartOnIdle              *bool   `json:"restart_on_idle,omitempty" yaml:"restart_on_idle,omitempty" toml:"restart_on_idle,omitempty"`
	DisallowStartIfOnBatteries *bool   `json:"disallow_start_if_on_batteries,omitempty" yaml:"disallow_start_if_on_batteries,omitempty" toml:"disallow_start_if_on_batteries,omitempty"`
	StopIfGoingOnBatteries     *bool   `json:"stop_if_going_on_batteries,omitempty" yaml:"stop_if_going_on_batteries,omitempty" toml:"stop_if_going_on_batteries,omitempty"`
	RunOnlyIfDocked            *bool   `json:"run_only_if_docked,omitempty" yaml:"run_only_if_docked,omitempty" toml:"run_only_if_docked,omitempty"`
	RunOnlyIfNetworkAvailable  *bool   `json:"run_only_if_network_available,omitempty" yaml:"run_only_if_network_available,omitempty" toml:"run_only_if_network_available,omitempty"`
	WakeToRun                  *bool   `json:"wake_to_run,omitempty" yaml:"wake_to_run,omitempty" toml:"wake_to_run,omitempty"`
	RunOnlyIfLoggedOn          *bool   `json:"run_only_if_logged_on,omitempty" yaml:"run_only_if_logged_on,omitempty" toml:"run_only_if_logged_on,omitempty"`
	AllowStartOnDemand         *bool   `json:"allow_start_on_demand,omitempty" yaml:"allow_start_on_demand,omitempty" toml:"allow_start_on_demand,omitempty"`
	AllowHardTerminate         *bool   `json:"allow_hard_terminate,omitempty" yaml:"allow_hard_terminate,omitempty" toml:"allow_hard_terminate,omitempty"`
	StartWhenAvailable         *bool   `json:"start_when_available,omitempty" yaml:"start_when_available,omitempty" toml:"start_when_available,omitempty"`
	MultipleInstancesPolicy    *string `json:"multiple_instances_policy,omitempty" yaml:"multiple_instances_policy,omitempty" toml:"multiple_instances_policy,omitempty"`
	Priority                   *int    `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
	PriorityClass              *string `json:"priority_class,omitempty" yaml:"priority_class,omitempty" toml:"priority_class,omitempty"`

	RawFlags  *uint32  `json:"raw_flags,omitempty" yaml:"raw_flags,omitempty" toml:"raw_flags,omitempty"`
	FlagNames []string `json:"flag_names,omitempty" yaml:"flag_names,omitempty" toml:"flag_names,omitempty"`
}

// RetryPolicy restarts a failed task Count times, Interval apart.
type RetryPolicy struct {
	Count    int      `json:"count" yaml:"count" toml:"count"`
	Interval Duration `json:"interval" yaml:"interval" toml:"interval"`
}

// IdlePolicy describes how long the machine must be idle before the task
// starts, and how long to wait for that.
type IdlePolicy struct {
	Duration    *Duration `json:"duration,omitempty" yaml:"duration,omitempty" toml:"duration,omitempty"`
	WaitTimeout *Duration `json:"wait_timeout,omitempty" yaml:"wait_timeout,omitempty" toml:"wait_timeout,omitempty"`
}

// Limits groups the timing limits of a task.
type Limits struct {
	MaxRunTime         *Duration    `json:"max_run_time,omitempty" yaml:"max_run_time,omitempty" toml:"max_run_time,omitempty"`
	Retry              *RetryPolicy `json:"retry,omitempty" yaml:"retry,omitempty" toml:"retry,omitempty"`
	Idle               *IdlePolicy  `json:"idle,omitempty" yaml:"idle,omitempty" toml:"idle,omitempty"`
	DeleteExpiredAfter *Duration    `json:"delete_expired_after,omitempty" yaml:"delete_expired_after,omitempty" toml:"delete_expired_after,omitempty"`
}

// RunState is the last-run bookkeeping the legacy scheduler stores in
// the job file itself.
type RunState struct {
	LastRun          *Timestamp `json:"last_run,omitempty" yaml:"last_run,omitempty" toml:"last_run,omitempty"`
	ExitCode         int32      `json:"exit_code" yaml:"exit_code" toml:"exit_code"`
	StatusCode       uint32     `json:"status_code" yaml:"status_code" toml:"status_code"`
	Status           string     `json:"status" yaml:"status" toml:"status"`
	RunningInstances uint16     `json:"running_instances" yaml:"running_instances" toml:"running_instances"`
	StartError       *uint32    `json:"start_error,omitempty" yaml:"start_error,omitempty" toml:"start_error,omitempty"`
}

// Signature summarizes the trailing job signature of a binary file.
type Signature struct {
	Version          uint16 `json:"version" yaml:"version" toml:"version"`
	MinClientVersion uint16 `json:"min_client_version" yaml:"min_client_version" toml:"min_client_version"`
	Digest           string `json:"digest" yaml:"digest" toml:"digest"`
}

// PrimaryAction returns the first exec action, falling back to the first
// action of any kind.
func (d *Descriptor) PrimaryAction() (Action, bool) {
	for _, a := range d.Actions {
		if a.Kind == ActionExec {
			return a, true
		}
	}
	if len(d.Actions) > 0 {
		return d.Actions[0], true
	}
	return Action{}, false
}

// Deref returns *s or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
