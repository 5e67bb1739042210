// Package events provides the in-process event bus and typed event payloads.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// Run lifecycle events
	RunStarted   EventType = "RUN_STARTED"
	RunCompleted EventType = "RUN_COMPLETED"
	RunFailed    EventType = "RUN_FAILED"

	// Ground-state workflow events
	EnergyEvaluated EventType = "ENERGY_EVALUATED"
	StatePrepared   EventType = "STATE_PREPARED"
	RoundResolved   EventType = "ROUND_RESOLVED"

	// Period-finding workflow events
	ConstraintCollected EventType = "CONSTRAINT_COLLECTED"
	MaskRecovered       EventType = "MASK_RECOVERED"

	// Housekeeping events
	RunsCleaned         EventType = "RUNS_CLEANED"
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
