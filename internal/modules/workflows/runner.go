package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pedrorrivero/qlab/internal/config"
	"github.com/pedrorrivero/qlab/internal/database/repositories"
	"github.com/pedrorrivero/qlab/internal/events"
	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/iqpe"
	"github.com/pedrorrivero/qlab/internal/modules/simon"
	"github.com/pedrorrivero/qlab/internal/modules/vqe"
	"github.com/rs/zerolog"
)

// Runner executes workflows against a backend, persisting every run and
// publishing progress on the event bus.
type Runner struct {
	backend backend.Backend
	runs    *repositories.RunRepository
	bus     *events.Bus
	cfg     *config.Config
	log     zerolog.Logger
}

// NewRunner creates a workflow runner.
func NewRunner(b backend.Backend, runs *repositories.RunRepository, bus *events.Bus, cfg *config.Config, log zerolog.Logger) *Runner {
	return &Runner{
		backend: b,
		runs:    runs,
		bus:     bus,
		cfg:     cfg,
		log:     log.With().Str("component", "workflows").Logger(),
	}
}

// RunGroundState executes the two-stage ground-state pipeline: variational
// optimization of the energy, then iterative phase estimation seeded with
// the optimized preparation. The phase stage never re-optimizes; it consumes
// the frozen parameters through the handoff state.
func (r *Runner) RunGroundState(ctx context.Context, req GroundStateRequest) (*GroundStateResult, error) {
	if req.Hamiltonian == nil {
		return nil, fmt.Errorf("ground state run requires a Hamiltonian")
	}
	r.applyGroundStateDefaults(&req)

	h := req.Hamiltonian
	runID := uuid.NewString()
	started := time.Now()

	if err := r.createRun(runID, WorkflowGroundState, h.NumQubits()); err != nil {
		return nil, &StageError{Stage: StagePersistence, Err: err}
	}

	r.log.Info().
		Str("run_id", runID).
		Int("qubits", h.NumQubits()).
		Int("budget", req.Budget).
		Int("rounds", req.Rounds).
		Msg("Starting ground state run")

	// Stage 1: variational optimization.
	solver := vqe.NewSolver(r.backend, req.Shots, r.log)
	solver.OnEvaluation = func(evaluation int, energy float64) {
		r.bus.EmitTyped(events.EnergyEvaluated, "workflows", &events.EnergyEvaluatedData{
			RunID:      runID,
			Evaluation: evaluation,
			Energy:     energy,
		})
	}

	form := vqe.NewRYLinear(h.NumQubits(), req.Depth)
	optimizer := &vqe.SPSA{Seed: r.cfg.Seed}

	variational, err := solver.Optimize(ctx, h, form, optimizer, req.Budget)
	if err != nil {
		return nil, r.fail(runID, WorkflowGroundState, &StageError{Stage: StageVariational, Err: err})
	}

	// Handoff: freeze the optimized preparation.
	prepared, err := vqe.NewPreparedState(form, variational.Parameters)
	if err != nil {
		return nil, r.fail(runID, WorkflowGroundState, &StageError{
			Stage: StageHandoff, Err: err, Variational: variational,
		})
	}
	r.bus.EmitTyped(events.StatePrepared, "workflows", &events.StatePreparedData{
		RunID:       runID,
		Energy:      variational.Energy,
		Parameters:  len(variational.Parameters),
		Evaluations: variational.Evaluations,
	})

	// Stage 2: iterative phase estimation.
	estimator := iqpe.NewEstimator(r.backend, iqpe.Config{
		Rounds:    req.Rounds,
		Shots:     req.Shots,
		TimeSlice: req.TimeSlice,
		Scheme:    req.Scheme,
		Order:     req.Order,
	}, r.log)
	estimator.OnRound = func(round, bit int, bitsSoFar []int) {
		r.bus.EmitTyped(events.RoundResolved, "workflows", &events.RoundResolvedData{
			RunID: runID,
			Round: round,
			Bit:   bit,
			Bits:  formatBits(bitsSoFar),
		})
	}

	estimate, err := estimator.Estimate(ctx, h, prepared)
	if err != nil {
		return nil, r.fail(runID, WorkflowGroundState, &StageError{
			Stage: StagePhaseEstimation, Err: err, Variational: variational,
		})
	}

	result := &GroundStateResult{
		RunID:       runID,
		Variational: variational,
		Estimate:    estimate,
		TimeSlice:   req.TimeSlice,
	}

	if err := r.runs.MarkCompleted(runID, result); err != nil {
		return nil, r.fail(runID, WorkflowGroundState, &StageError{
			Stage: StagePersistence, Err: err, Variational: variational,
		})
	}
	r.complete(runID, WorkflowGroundState, started)

	r.log.Info().
		Str("run_id", runID).
		Float64("variational_energy", variational.Energy).
		Float64("phase", estimate.Phase).
		Float64("energy", estimate.Energy).
		Msg("Ground state run completed")

	return result, nil
}

// RunPeriodFinding executes the period-finding pipeline against a truth
// table oracle.
func (r *Runner) RunPeriodFinding(ctx context.Context, req PeriodFindingRequest) (*PeriodFindingResult, error) {
	if req.Table == nil {
		return nil, fmt.Errorf("period finding run requires a truth table")
	}
	r.applyPeriodFindingDefaults(&req)

	n := req.Table.InputBits()
	runID := uuid.NewString()
	started := time.Now()

	if err := r.createRun(runID, WorkflowPeriodFinding, n+req.Table.OutputBits()); err != nil {
		return nil, &StageError{Stage: StagePersistence, Err: err}
	}

	r.log.Info().
		Str("run_id", runID).
		Int("input_bits", n).
		Int("budget", req.Budget).
		Msg("Starting period finding run")

	solver := simon.NewSolver(r.backend, simon.Config{
		Shots:  req.Shots,
		Budget: req.Budget,
	}, r.log)
	solver.OnConstraint = func(vector string, collected int) {
		r.bus.EmitTyped(events.ConstraintCollected, "workflows", &events.ConstraintCollectedData{
			RunID:     runID,
			Vector:    vector,
			Collected: collected,
			Needed:    n - 1,
		})
	}

	mask, err := solver.Recover(ctx, req.Table)
	if err != nil {
		return nil, r.fail(runID, WorkflowPeriodFinding, &StageError{Stage: StageMaskRecovery, Err: err})
	}

	r.bus.EmitTyped(events.MaskRecovered, "workflows", &events.MaskRecoveredData{
		RunID:    runID,
		Mask:     mask.Mask,
		Rounds:   mask.Rounds,
		Verified: mask.Verified,
	})

	result := &PeriodFindingResult{RunID: runID, Mask: mask}

	if err := r.runs.MarkCompleted(runID, result); err != nil {
		return nil, r.fail(runID, WorkflowPeriodFinding, &StageError{Stage: StagePersistence, Err: err})
	}
	r.complete(runID, WorkflowPeriodFinding, started)

	r.log.Info().
		Str("run_id", runID).
		Str("mask", mask.Mask).
		Int("rounds", mask.Rounds).
		Msg("Period finding run completed")

	return result, nil
}

func (r *Runner) applyGroundStateDefaults(req *GroundStateRequest) {
	if req.Depth <= 0 {
		req.Depth = 1
	}
	if req.Shots <= 0 {
		req.Shots = r.cfg.DefaultShots
	}
	if req.Budget <= 0 {
		req.Budget = 100
	}
	if req.Rounds <= 0 {
		req.Rounds = r.cfg.DefaultRounds
	}
	if req.TimeSlice == 0 {
		req.TimeSlice = r.cfg.TimeSlice
	}
	if req.Scheme == "" {
		req.Scheme = "trotter"
	}
	if req.Order <= 0 {
		req.Order = 1
	}
}

func (r *Runner) applyPeriodFindingDefaults(req *PeriodFindingRequest) {
	if req.Shots <= 0 {
		req.Shots = r.cfg.DefaultShots
	}
	if req.Budget <= 0 {
		req.Budget = r.cfg.SimonBudgetScale * req.Table.InputBits()
	}
}

func (r *Runner) createRun(runID, workflow string, qubits int) error {
	err := r.runs.Create(&repositories.Run{
		ID:       runID,
		Workflow: workflow,
		Backend:  r.backend.Name(),
		Qubits:   qubits,
	})
	if err != nil {
		return err
	}
	r.bus.EmitTyped(events.RunStarted, "workflows", &events.RunStartedData{
		RunID:    runID,
		Workflow: workflow,
		Backend:  r.backend.Name(),
		Qubits:   qubits,
	})
	return nil
}

// fail records the failing stage and publishes RunFailed, returning the same
// error so callers can wrap or inspect it.
func (r *Runner) fail(runID, workflow string, stageErr *StageError) error {
	if err := r.runs.MarkFailed(runID, stageErr.Stage, stageErr.Err.Error()); err != nil {
		r.log.Error().Err(err).Str("run_id", runID).Msg("Failed to record run failure")
	}
	r.bus.EmitTyped(events.RunFailed, "workflows", &events.RunFailedData{
		RunID:    runID,
		Workflow: workflow,
		Stage:    stageErr.Stage,
		Error:    stageErr.Err.Error(),
	})
	return stageErr
}

func (r *Runner) complete(runID, workflow string, started time.Time) {
	r.bus.EmitTyped(events.RunCompleted, "workflows", &events.RunCompletedData{
		RunID:    runID,
		Workflow: workflow,
		Duration: time.Since(started).Seconds(),
	})
}

// formatBits renders resolved phase bits most significant first.
func formatBits(bits []int) string {
	var b strings.Builder
	for _, bit := range bits {
		if bit == 0 {
			b.WriteByte('0')
		} else {
			b.WriteByte('1')
		}
	}
	return b.String()
}
