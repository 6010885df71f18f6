package check

// Status is the terminal outcome of a check, using the exit code
// convention shared by Nagios and Sensu plugins.
type Status int

const (
	// StatusOK means the query ran and its metrics were emitted.
	StatusOK Status = iota
	// StatusWarning is unused by the query check but kept for the convention.
	StatusWarning
	// StatusCritical is unused by the query check but kept for the convention.
	StatusCritical
	// StatusUnknown means the outcome could not be determined, e.g. the
	// database was unreachable or the query failed.
	StatusUnknown
)

// String returns the upper-case label printed in front of status messages.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code for the status.
// Anything outside the known range is reported as unknown.
func (s Status) ExitCode() int {
	if s < StatusOK || s > StatusUnknown {
		return int(StatusUnknown)
	}
	return int(s)
}
