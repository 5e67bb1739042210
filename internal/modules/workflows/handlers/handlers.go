// Package handlers provides HTTP handlers for workflow runs.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pedrorrivero/qlab/internal/database/repositories"
	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/operator"
	"github.com/pedrorrivero/qlab/internal/modules/simon"
	"github.com/pedrorrivero/qlab/internal/modules/workflows"
	"github.com/rs/zerolog"
)

// Handler handles workflow HTTP requests
type Handler struct {
	runner *workflows.Runner
	runs   *repositories.RunRepository
	log    zerolog.Logger
}

// NewHandler creates a new workflows handler
func NewHandler(runner *workflows.Runner, runs *repositories.RunRepository, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		runs:   runs,
		log:    log.With().Str("handler", "workflows").Logger(),
	}
}

// TermRequest is one Pauli term of a request Hamiltonian. Paulis[i] acts on
// qubit i.
type TermRequest struct {
	Paulis    string  `json:"paulis"`
	Coeff     float64 `json:"coeff"`
	CoeffImag float64 `json:"coeff_imag,omitempty"`
}

// GroundStateRequest represents a request to run the ground-state pipeline
type GroundStateRequest struct {
	Terms     []TermRequest `json:"terms"`
	Depth     int           `json:"depth,omitempty"`
	Shots     int           `json:"shots,omitempty"`
	Budget    int           `json:"budget,omitempty"`
	Rounds    int           `json:"rounds,omitempty"`
	TimeSlice float64       `json:"time_slice,omitempty"`
	Scheme    string        `json:"scheme,omitempty"`
	Order     int           `json:"order,omitempty"`
}

// PeriodFindingRequest represents a request to run the period-finding
// pipeline. Rows[j][x] is output bit j of f(x), MSB-first over inputs.
type PeriodFindingRequest struct {
	Rows   []string `json:"rows"`
	Shots  int      `json:"shots,omitempty"`
	Budget int      `json:"budget,omitempty"`
}

// HandleRunGroundState handles POST /api/workflows/ground-state
func (h *Handler) HandleRunGroundState(w http.ResponseWriter, r *http.Request) {
	var req GroundStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ham, err := hamiltonianFromTerms(req.Terms)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.runner.RunGroundState(r.Context(), workflows.GroundStateRequest{
		Hamiltonian: ham,
		Depth:       req.Depth,
		Shots:       req.Shots,
		Budget:      req.Budget,
		Rounds:      req.Rounds,
		TimeSlice:   req.TimeSlice,
		Scheme:      req.Scheme,
		Order:       req.Order,
	})
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleRunPeriodFinding handles POST /api/workflows/period-finding
func (h *Handler) HandleRunPeriodFinding(w http.ResponseWriter, r *http.Request) {
	var req PeriodFindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	table, err := simon.NewTruthTable(req.Rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.runner.RunPeriodFinding(r.Context(), workflows.PeriodFindingRequest{
		Table:  table,
		Shots:  req.Shots,
		Budget: req.Budget,
	})
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleListRuns handles GET /api/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	workflow := r.URL.Query().Get("workflow")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.runs.List(workflow, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*repositories.Run{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": runs,
		"metadata": map[string]interface{}{
			"count":     len(runs),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetRun handles GET /api/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.runs.Get(id)
	if errors.Is(err, repositories.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to get run")
		http.Error(w, "Failed to get run", http.StatusInternalServerError)
		return
	}

	payload := map[string]interface{}{"run": run}
	if result := h.decodeResult(run); result != nil {
		payload["result"] = result
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": payload,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// decodeResult unpacks the stored result blob by workflow type.
func (h *Handler) decodeResult(run *repositories.Run) interface{} {
	if run.Status != repositories.StatusCompleted || len(run.Result) == 0 {
		return nil
	}

	switch run.Workflow {
	case workflows.WorkflowGroundState:
		var result workflows.GroundStateResult
		if err := run.DecodeResult(&result); err != nil {
			h.log.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to decode run result")
			return nil
		}
		return &result
	case workflows.WorkflowPeriodFinding:
		var result workflows.PeriodFindingResult
		if err := run.DecodeResult(&result); err != nil {
			h.log.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to decode run result")
			return nil
		}
		return &result
	default:
		return nil
	}
}

// writeRunError maps workflow errors to HTTP statuses. Underconstrained
// period finding is a well-formed request with an unsatisfiable outcome, so
// it maps to 422 rather than 500.
func (h *Handler) writeRunError(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("Workflow run failed")

	switch {
	case errors.Is(err, simon.ErrUnderconstrained):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, backend.ErrInvalidCircuit):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, backend.ErrUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// hamiltonianFromTerms builds an operator from wire terms.
func hamiltonianFromTerms(terms []TermRequest) (*operator.Hamiltonian, error) {
	opTerms := make([]operator.Term, 0, len(terms))
	for _, t := range terms {
		opTerms = append(opTerms, operator.Term{
			Coeff:  complex(t.Coeff, t.CoeffImag),
			Paulis: t.Paulis,
		})
	}
	return operator.New(opTerms)
}
