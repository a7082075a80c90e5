package pipeline

// OutcomeKind tags the terminal result of a request.
type OutcomeKind uint8

const (
	OutcomeCompleted OutcomeKind = iota + 1
	OutcomeTimedOut
	OutcomeRejected
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result delivered to a caller. Probability is only
// meaningful for OutcomeCompleted; Err carries the rejection reason or
// failure cause otherwise.
type Outcome struct {
	RequestID   string
	Kind        OutcomeKind
	Probability float64
	Err         error
}
