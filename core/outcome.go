package core

// Status classifies how a fallback-capable step completed.
type Status int

const (
	// StatusOK means the step completed on its intended path.
	StatusOK Status = iota
	// StatusDegraded means a fallback fired and produced a usable result.
	StatusDegraded
	// StatusFailed means no path produced a result.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome tags a result with the path that produced it. Reason is set only
// for degraded and failed outcomes, so tests can assert why a fallback fired
// instead of inferring it from nested error handling.
type Outcome struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// OK returns an on-path outcome.
func OK() Outcome { return Outcome{Status: StatusOK} }

// Degraded returns a fallback outcome with the triggering reason.
func Degraded(reason string) Outcome { return Outcome{Status: StatusDegraded, Reason: reason} }
