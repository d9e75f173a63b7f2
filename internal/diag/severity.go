package diag

// Severity orders diagnostics by importance; a run fails on SevError only.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError marks findings that make the lint run exit non-zero.
	SevError
)

// String is the upper-case form used by the pretty printer.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lower-case form used in machine-readable output.
func (s Severity) Label() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}
