package binjob

import "fmt"

// Layout of the legacy job file. All integers are little endian.
const (
	// FixedHeaderSize is the size of the fixed-length section.
	FixedHeaderSize = 68

	// FileFormatVersion is the only file-format version the scheduler writes.
	FileFormatVersion = 1

	// TriggerRecordSize is the stride of the trigger array.
	TriggerRecordSize = 48

	// SignatureVersion1 is the signature layout this decoder understands.
	SignatureVersion1 = 1

	// SignatureHeaderSize covers the signature and minimum client versions.
	SignatureHeaderSize = 4

	// SignatureDigestSize is the length of a version-1 signature.
	SignatureDigestSize = 64

	// MaxRunTimeInfinite marks a task without a run-time limit.
	MaxRunTimeInfinite = 0xFFFFFFFF

	offProductVersion     = 0
	offFileVersion        = 2
	offUUID               = 4
	offAppNameOffset      = 20
	offTriggerOffset      = 22
	offErrorRetryCount    = 24
	offErrorRetryInterval = 26
	offIdleDeadline       = 28
	offIdleWait           = 30
	offPriority           = 32
	offMaxRunTime         = 36
	offExitCode           = 40
	offStatus             = 44
	offFlags              = 48
	offLastRun            = 52

	// offRunningInstances is the first field of the variable section.
	offRunningInstances = 68

	// minVariableOffset is the lowest offset a string table or trigger
	// array may start at: after the running-instance count.
	minVariableOffset = offRunningInstances + 2

	reservedDataSize = 8
)

var productVersions = map[uint16]string{
	0x0400: "Windows NT 4.0",
	0x0500: "Windows 2000",
	0x0501: "Windows XP",
	0x0600: "Windows Vista",
	0x0601: "Windows 7",
	0x0602: "Windows 8",
	0x0603: "Windows 8.1",
	0x0a00: "Windows 10",
}

// ProductName returns the Windows release that wrote the file.
func ProductName(v uint16) (string, bool) {
	name, ok := productVersions[v]
	return name, ok
}

// IsKnownFileVersion reports whether v is a file-format version this
// decoder understands.
func IsKnownFileVersion(v uint16) bool {
	return v == FileFormatVersion
}

// Task flags from the flags word.
const (
	FlagInteractive              uint32 = 0x1
	FlagDeleteWhenDone           uint32 = 0x2
	FlagDisabled                 uint32 = 0x4
	FlagStartOnlyIfIdle          uint32 = 0x10
	FlagKillOnIdleEnd            uint32 = 0x20
	FlagDontStartIfOnBatteries   uint32 = 0x40
	FlagKillIfGoingOnBatteries   uint32 = 0x80
	FlagRunOnlyIfDocked          uint32 = 0x100
	FlagHidden                   uint32 = 0x200
	FlagRunIfConnectedToInternet uint32 = 0x400
	FlagRestartOnIdleResume      uint32 = 0x800
	FlagSystemRequired           uint32 = 0x1000
	FlagRunOnlyIfLoggedOn        uint32 = 0x2000
	FlagApplicationName          uint32 = 0x1000000
)

var flagNames = map[uint32]string{
	FlagInteractive:              "TASK_FLAG_INTERACTIVE",
	FlagDeleteWhenDone:           "TASK_FLAG_DELETE_WHEN_DONE",
	FlagDisabled:                 "TASK_FLAG_DISABLED",
	FlagStartOnlyIfIdle:          "TASK_FLAG_START_ONLY_IF_IDLE",
	FlagKillOnIdleEnd:            "TASK_FLAG_KILL_ON_IDLE_END",
	FlagDontStartIfOnBatteries:   "TASK_FLAG_DONT_START_IF_ON_BATTERIES",
	FlagKillIfGoingOnBatteries:   "TASK_FLAG_KILL_IF_GOING_ON_BATTERIES",
	FlagRunOnlyIfDocked:          "TASK_FLAG_RUN_ONLY_IF_DOCKED",
	FlagHidden:                   "TASK_FLAG_HIDDEN",
	FlagRunIfConnectedToInternet: "TASK_FLAG_RUN_IF_CONNECTED_TO_INTERNET",
	FlagRestartOnIdleResume:      "TASK_FLAG_RESTART_ON_IDLE_RESUME",
	FlagSystemRequired:           "TASK_FLAG_SYSTEM_REQUIRED",
	FlagRunOnlyIfLoggedOn:        "TASK_FLAG_RUN_ONLY_IF_LOGGED_ON",
	FlagApplicationName:          "TASK_APPLICATION_NAME",
}

// FlagNames lists the names of the bits set in flags, lowest bit first.
// Bits without a name are rendered in hex.
func FlagNames(flags uint32) []string {
	var bits []uint32
	for bit := uint32(1); bit != 0; bit <<= 1 {
		if flags&bit != 0 {
			bits = append(bits, bit)
		}
	}

	names := make([]string, 0, len(bits))
	for _, bit := range bits {
		if name, ok := flagNames[bit]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("%#x", bit))
		}
	}
	return names
}

// Priority classes.
const (
	PriorityNormal   uint32 = 0x20
	PriorityIdle     uint32 = 0x40
	PriorityHigh     uint32 = 0x80
	PriorityRealtime uint32 = 0x100
)

var priorityNames = map[uint32]string{
	PriorityNormal:   "NORMAL_PRIORITY_CLASS",
	PriorityIdle:     "IDLE_PRIORITY_CLASS",
	PriorityHigh:     "HIGH_PRIORITY_CLASS",
	PriorityRealtime: "REALTIME_PRIORITY_CLASS",
}

// PriorityName returns the priority class name for p.
func PriorityName(p uint32) (string, bool) {
	name, ok := priorityNames[p]
	return name, ok
}

var statusNames = map[uint32]string{
	0x00041300: "Task is ready to run",
	0x00041301: "Task is running",
	0x00041302: "Task is disabled",
	0x00041303: "Task has not run",
	0x00041304: "No more scheduled runs",
	0x00041305: "Properties not set",
	0x00041306: "Last run terminated by user",
	0x00041307: "No triggers/triggers disabled",
	0x00041308: "Triggers do not have set run times",
}

// StatusName describes a SCHED_S_* status code.
func StatusName(status uint32) (string, bool) {
	name, ok := statusNames[status]
	return name, ok
}
