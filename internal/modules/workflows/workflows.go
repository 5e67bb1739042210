// Package workflows chains the algorithm modules into complete runs: the
// variational-to-phase-estimation ground-state pipeline and the
// period-finding pipeline. Runs are persisted and progress is published on
// the event bus.
package workflows

import (
	"fmt"

	"github.com/pedrorrivero/qlab/internal/modules/iqpe"
	"github.com/pedrorrivero/qlab/internal/modules/operator"
	"github.com/pedrorrivero/qlab/internal/modules/simon"
	"github.com/pedrorrivero/qlab/internal/modules/vqe"
)

// Workflow identifiers as stored with each run.
const (
	WorkflowGroundState   = "ground_state"
	WorkflowPeriodFinding = "period_finding"
)

// Pipeline stages as reported by StageError.
const (
	StageVariational     = "variational"
	StageHandoff         = "handoff"
	StagePhaseEstimation = "phase_estimation"
	StageMaskRecovery    = "mask_recovery"
	StagePersistence     = "persistence"
)

// StageError reports which pipeline stage failed. Results from stages that
// completed before the failure are carried for diagnostics.
type StageError struct {
	Stage       string
	Err         error
	Variational *vqe.Result
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// GroundStateRequest describes one ground-state run. Zero values fall back
// to the configured defaults.
type GroundStateRequest struct {
	Hamiltonian *operator.Hamiltonian
	Depth       int
	Shots       int
	Budget      int
	Rounds      int
	TimeSlice   float64
	Scheme      string
	Order       int
}

// GroundStateResult is the terminal state of a ground-state run: the
// variational outcome and the phase estimate refined from it.
type GroundStateResult struct {
	RunID       string         `json:"run_id" msgpack:"run_id"`
	Variational *vqe.Result    `json:"variational" msgpack:"variational"`
	Estimate    *iqpe.Estimate `json:"estimate" msgpack:"estimate"`
	TimeSlice   float64        `json:"time_slice" msgpack:"time_slice"`
}

// PeriodFindingRequest describes one period-finding run. Zero values fall
// back to the configured defaults.
type PeriodFindingRequest struct {
	Table  *simon.TruthTable
	Shots  int
	Budget int
}

// PeriodFindingResult is the terminal state of a period-finding run.
type PeriodFindingResult struct {
	RunID string        `json:"run_id" msgpack:"run_id"`
	Mask  *simon.Result `json:"mask" msgpack:"mask"`
}
