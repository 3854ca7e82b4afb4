// internal/domain/tournament/status.go
package tournament

// Status is the lifecycle state of a tournament as stored in the tournaments collection.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// NonTerminalStatuses are the states the sweep loads into its working set.
var NonTerminalStatuses = []Status{StatusUpcoming, StatusLive}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}
