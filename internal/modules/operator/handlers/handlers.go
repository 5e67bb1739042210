// Package handlers provides HTTP handlers for Hamiltonian analysis.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pedrorrivero/qlab/internal/modules/operator"
	"github.com/rs/zerolog"
)

// Handler handles operator HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new operator handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "operator").Logger(),
	}
}

// TermRequest is one Pauli term of a request Hamiltonian
type TermRequest struct {
	Paulis    string  `json:"paulis"`
	Coeff     float64 `json:"coeff"`
	CoeffImag float64 `json:"coeff_imag,omitempty"`
}

// GroundEnergyRequest represents a request for exact diagonalization
type GroundEnergyRequest struct {
	Terms []TermRequest `json:"terms"`
}

// HandleGroundEnergy handles POST /api/operators/ground-energy. It computes
// the exact minimum eigenvalue by dense diagonalization, which serves as the
// classical reference for the sampled pipelines.
func (h *Handler) HandleGroundEnergy(w http.ResponseWriter, r *http.Request) {
	var req GroundEnergyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	terms := make([]operator.Term, 0, len(req.Terms))
	for _, t := range req.Terms {
		terms = append(terms, operator.Term{
			Coeff:  complex(t.Coeff, t.CoeffImag),
			Paulis: t.Paulis,
		})
	}

	ham, err := operator.New(terms)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	energy, err := ham.GroundEnergy()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"qubits":        ham.NumQubits(),
			"terms":         len(ham.Terms()),
			"bound":         ham.Bound(),
			"ground_energy": energy,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
