// Package audit provides audit logging for fleet invocations.
package audit

import (
	"fmt"
	"time"

	"github.com/netfleet/netfleet/pkg/fleet"
)

// Event records one fleet invocation for the audit trail.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Operation string        `json:"operation"`
	Targets   []string      `json:"targets,omitempty"`
	Summary   fleet.Summary `json:"summary"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// NewEvent creates a new audit event.
func NewEvent(user, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Operation: operation,
	}
}

// WithTargets sets the explicit target list (empty means all devices).
func (e *Event) WithTargets(targets []string) *Event {
	e.Targets = targets
	return e
}

// WithResponse records the invocation outcome from a fleet response.
func (e *Event) WithResponse(resp *fleet.Response) *Event {
	e.Summary = resp.Summary
	e.Duration = resp.Elapsed
	e.Success = resp.Summary.Failed == 0
	return e
}

// WithError marks the event as a failed invocation.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Filter defines criteria for querying audit events.
type Filter struct {
	User        string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
