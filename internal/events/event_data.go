package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// RunStartedData contains data for RunStarted events
type RunStartedData struct {
	RunID    string `json:"run_id"`
	Workflow string `json:"workflow"`
	Backend  string `json:"backend"`
	Qubits   int    `json:"qubits"`
}

// EventType returns the event type for RunStartedData
func (d *RunStartedData) EventType() EventType {
	return RunStarted
}

// RunCompletedData contains data for RunCompleted events
type RunCompletedData struct {
	RunID    string  `json:"run_id"`
	Workflow string  `json:"workflow"`
	Duration float64 `json:"duration_seconds"`
}

// EventType returns the event type for RunCompletedData
func (d *RunCompletedData) EventType() EventType {
	return RunCompleted
}

// RunFailedData contains data for RunFailed events
type RunFailedData struct {
	RunID    string `json:"run_id"`
	Workflow string `json:"workflow"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
}

// EventType returns the event type for RunFailedData
func (d *RunFailedData) EventType() EventType {
	return RunFailed
}

// EnergyEvaluatedData contains data for EnergyEvaluated events emitted
// once per objective evaluation during variational optimization
type EnergyEvaluatedData struct {
	RunID      string  `json:"run_id"`
	Evaluation int     `json:"evaluation"`
	Energy     float64 `json:"energy"`
}

// EventType returns the event type for EnergyEvaluatedData
func (d *EnergyEvaluatedData) EventType() EventType {
	return EnergyEvaluated
}

// StatePreparedData contains data for StatePrepared events emitted when the
// optimized variational state is frozen for the phase-estimation stage
type StatePreparedData struct {
	RunID       string  `json:"run_id"`
	Energy      float64 `json:"energy"`
	Parameters  int     `json:"parameters"`
	Evaluations int     `json:"evaluations"`
}

// EventType returns the event type for StatePreparedData
func (d *StatePreparedData) EventType() EventType {
	return StatePrepared
}

// RoundResolvedData contains data for RoundResolved events emitted once per
// phase-estimation round
type RoundResolvedData struct {
	RunID string `json:"run_id"`
	Round int    `json:"round"`
	Bit   int    `json:"bit"`
	Bits  string `json:"bits"`
}

// EventType returns the event type for RoundResolvedData
func (d *RoundResolvedData) EventType() EventType {
	return RoundResolved
}

// ConstraintCollectedData contains data for ConstraintCollected events
type ConstraintCollectedData struct {
	RunID     string `json:"run_id"`
	Vector    string `json:"vector"`
	Collected int    `json:"collected"`
	Needed    int    `json:"needed"`
}

// EventType returns the event type for ConstraintCollectedData
func (d *ConstraintCollectedData) EventType() EventType {
	return ConstraintCollected
}

// MaskRecoveredData contains data for MaskRecovered events
type MaskRecoveredData struct {
	RunID    string `json:"run_id"`
	Mask     string `json:"mask"`
	Rounds   int    `json:"rounds"`
	Verified bool   `json:"verified"`
}

// EventType returns the event type for MaskRecoveredData
func (d *MaskRecoveredData) EventType() EventType {
	return MaskRecovered
}

// RunsCleanedData contains data for RunsCleaned events
type RunsCleanedData struct {
	Deleted       int `json:"deleted"`
	RetentionDays int `json:"retention_days"`
}

// EventType returns the event type for RunsCleanedData
func (d *RunsCleanedData) EventType() EventType {
	return RunsCleaned
}

// SystemStatusChangedData contains data for SystemStatusChanged events
type SystemStatusChangedData struct {
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

// EventType returns the event type for SystemStatusChangedData
func (d *SystemStatusChangedData) EventType() EventType {
	return SystemStatusChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// EventWithData represents an event with typed data
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	// Marshal the data separately
	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for EventWithData
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	// Unmarshal data based on event type
	if len(aux.Data) > 0 {
		var eventData EventData
		switch aux.Type {
		case RunStarted:
			eventData = &RunStartedData{}
		case RunCompleted:
			eventData = &RunCompletedData{}
		case RunFailed:
			eventData = &RunFailedData{}
		case EnergyEvaluated:
			eventData = &EnergyEvaluatedData{}
		case StatePrepared:
			eventData = &StatePreparedData{}
		case RoundResolved:
			eventData = &RoundResolvedData{}
		case ConstraintCollected:
			eventData = &ConstraintCollectedData{}
		case MaskRecovered:
			eventData = &MaskRecoveredData{}
		case RunsCleaned:
			eventData = &RunsCleanedData{}
		case SystemStatusChanged:
			eventData = &SystemStatusChangedData{}
		case ErrorOccurred:
			eventData = &ErrorEventData{}
		default:
			// For unknown types, use raw map
			var rawData map[string]interface{}
			if err := json.Unmarshal(aux.Data, &rawData); err != nil {
				return err
			}
			eventData = &GenericEventData{Type: aux.Type, Data: rawData}
		}

		if eventData != nil {
			if err := json.Unmarshal(aux.Data, eventData); err != nil {
				return err
			}
			e.Data = eventData
		}
	}

	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
