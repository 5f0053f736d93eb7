package types

import "fmt"

// Status is the lifecycle state of an optimization
type Status string

// Status constants
const (
	StatusPending        Status = "pending"
	StatusAnalyzing      Status = "analyzing"
	StatusQuestionsReady Status = "questions_ready"
	StatusBuilding       Status = "building"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// transitions lists the forward edges of the state graph. Every non-terminal
// state may additionally move to failed.
var transitions = map[Status][]Status{
	StatusPending:        {StatusAnalyzing, StatusCompleted},
	StatusAnalyzing:      {StatusQuestionsReady},
	StatusQuestionsReady: {StatusBuilding},
	StatusBuilding:       {StatusCompleted},
}

// Terminal reports whether no further transition is possible from s
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether the state graph allows moving from one status to another
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is returned when a status change would move backwards or skip the graph
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Advance moves the record to the given status if the state graph allows it
func (o *Optimization) Advance(to Status) error {
	from := o.Status
	if from == "" {
		from = StatusPending
	}
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	o.Status = to
	return nil
}
