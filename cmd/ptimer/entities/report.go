package entities

// ExitKind tells why the supervised command terminated. Exactly one kind is
// assigned per supervision. The values are the wire strings of the report.
type ExitKind string

const (
	// ExitReturned: the command exited through its normal termination path.
	ExitReturned ExitKind = "return"
	// ExitSignaled: the command was terminated by an ordinary signal.
	ExitSignaled ExitKind = "signal"
	// ExitSelfAborted: the child failed before replacing its image with the
	// command, i.e. the supervisor's own bootstrap failed.
	ExitSelfAborted ExitKind = "quit"
	// ExitTimedOut: the processor-time budget expired.
	ExitTimedOut ExitKind = "timeout"
	// ExitUnknown: the wait status was neither an exit nor a signal.
	ExitUnknown ExitKind = "unknown"
)

// UsageReport is the structured result of one supervision, produced once
// after the child has been reaped and immutable afterwards.
type UsageReport struct {
	Pid      int      `json:"pid"`
	MaxRssKb int64    `json:"maxrss_kb"`
	Exit     ExitInfo `json:"exit"`
	Times    TimesMs  `json:"times_ms"`
}

// ExitInfo carries the classified outcome. Repr depends on the kind: the
// exit code for "return", the signal number for "signal", the configured
// budget in milliseconds for "timeout", and null for "quit" and "unknown".
type ExitInfo struct {
	Type ExitKind `json:"type"`
	Repr *int64   `json:"repr"`
	Desc string   `json:"desc"`
}

// TimesMs is the processor time consumed by the child, in milliseconds.
type TimesMs struct {
	Total float64 `json:"total"`
	User  float64 `json:"user"`
	Sys   float64 `json:"sys"`
}
