package progress

import (
	"time"

	"github.com/rcanales/brewscout/internal/model"
)

// EventType enumerates the closed set of event variants a run can emit.
type EventType string

const (
	EventStart              EventType = "start"
	EventSearchStart        EventType = "search-start"
	EventSearchComplete     EventType = "search-complete"
	EventSubdivisionCreated EventType = "subdivision-created"
	EventAbort              EventType = "abort"
	EventComplete           EventType = "complete"
)

// Event is one step of a discovery run. Each variant carries only the fields
// an observer needs to rebuild scheduler state incrementally.
type Event struct {
	Type  EventType `json:"type"`
	RunID string    `json:"run_id"`
	Seq   int       `json:"seq"`
	At    time.Time `json:"at"`

	// start
	TotalPoints int `json:"total_points,omitempty"`

	// search-start / search-complete
	TaskID       string `json:"task_id,omitempty"`
	Level        int    `json:"level,omitempty"`
	PlacesFound  int    `json:"places_found,omitempty"`
	APICallsUsed int    `json:"api_calls_used,omitempty"`
	Subdivided   bool   `json:"subdivided,omitempty"`

	// subdivision-created
	ChildIDs []string `json:"child_ids,omitempty"`

	// abort
	Reason string `json:"reason,omitempty"`

	// complete
	Summary *model.Summary `json:"summary,omitempty"`
}

func NewStartEvent(runID string, totalPoints int) Event {
	return Event{Type: EventStart, RunID: runID, TotalPoints: totalPoints}
}

func NewSearchStartEvent(runID, taskID string, level int) Event {
	return Event{Type: EventSearchStart, RunID: runID, TaskID: taskID, Level: level}
}

func NewSearchCompleteEvent(runID, taskID string, level, found, calls int, subdivided bool) Event {
	return Event{
		Type:         EventSearchComplete,
		RunID:        runID,
		TaskID:       taskID,
		Level:        level,
		PlacesFound:  found,
		APICallsUsed: calls,
		Subdivided:   subdivided,
	}
}

func NewSubdivisionEvent(runID, taskID string, childIDs []string) Event {
	return Event{Type: EventSubdivisionCreated, RunID: runID, TaskID: taskID, ChildIDs: childIDs}
}

func NewAbortEvent(runID, reason string) Event {
	return Event{Type: EventAbort, RunID: runID, Reason: reason}
}

func NewCompleteEvent(runID string, summary *model.Summary) Event {
	return Event{Type: EventComplete, RunID: runID, Summary: summary}
}
