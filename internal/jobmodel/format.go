// Package jobmodel defines the format-neutral job descriptor produced by
// the normalizer, together with the value types both decoders share:
// trigger kinds, schedules, durations and timestamps.
package jobmodel

// Format identifies the on-disk encoding of a job file.
type Format int

const (
	FormatUnknown Format = iota
	FormatBinary
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatXML:
		return "xml"
	default:
		return "unknown"
	}
}

// MarshalText renders the format name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
