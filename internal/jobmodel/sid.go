package jobmodel

import (
	"regexp"
	"strings"
)

var sidPattern = regexp.MustCompile(`^S-1-\d+(-\d+)*$`)

// IsSID reports whether s has the string form of a security identifier.
func IsSID(s string) bool {
	return sidPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

var wellKnownSIDs = map[string]string{
	"S-1-0-0":      "NULL SID",
	"S-1-1-0":      "Everyone",
	"S-1-2-0":      "LOCAL",
	"S-1-3-0":      "CREATOR OWNER",
	"S-1-5-2":      `NT AUTHORITY\NETWORK`,
	"S-1-5-4":      `NT AUTHORITY\INTERACTIVE`,
	"S-1-5-6":      `NT AUTHORITY\SERVICE`,
	"S-1-5-7":      `NT AUTHORITY\ANONYMOUS LOGON`,
	"S-1-5-11":     `NT AUTHORITY\Authenticated Users`,
	"S-1-5-18":     `NT AUTHORITY\SYSTEM`,
	"S-1-5-19":     `NT AUTHORITY\LOCAL SERVICE`,
	"S-1-5-20":     `NT AUTHORITY\NETWORK SERVICE`,
	"S-1-5-32-544": `BUILTIN\Administrators`,
	"S-1-5-32-545": `BUILTIN\Users`,
	"S-1-5-32-546": `BUILTIN\Guests`,
	"S-1-5-32-547": `BUILTIN\Power Users`,
	"S-1-5-32-551": `BUILTIN\Backup Operators`,
	"S-1-5-32-555": `BUILTIN\Remote Desktop Users`,
}

// WellKnownSID returns the fixed account name of a well-known SID.
// Domain- and machine-relative SIDs are never resolved.
func WellKnownSID(sid string) (string, bool) {
	name, ok := wellKnownSIDs[strings.ToUpper(strings.TrimSpace(sid))]
	return name, ok
}
