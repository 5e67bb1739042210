package vqe

import (
	"context"
	"fmt"
	"strings"

	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/circuit"
	"github.com/pedrorrivero/qlab/internal/modules/operator"
	"github.com/rs/zerolog"
)

// Result is the outcome of a variational optimization: the best parameter
// vector, its measured energy, and the number of objective evaluations.
// Read-only once produced.
type Result struct {
	Parameters  []float64 `json:"parameters"`
	Energy      float64   `json:"energy"`
	Evaluations int       `json:"evaluations"`
}

// Solver runs the variational optimization loop against a measurement
// backend.
type Solver struct {
	backend backend.Backend
	shots   int
	log     zerolog.Logger

	// OnEvaluation, when set, observes every objective evaluation.
	OnEvaluation func(evaluation int, energy float64)

	evaluations int
}

// NewSolver creates a variational solver measuring energies with the given
// shot count.
func NewSolver(b backend.Backend, shots int, log zerolog.Logger) *Solver {
	return &Solver{
		backend: b,
		shots:   shots,
		log:     log.With().Str("component", "vqe").Logger(),
	}
}

// Optimize minimizes the expected energy of h under the variational form,
// spending at most budget objective evaluations.
func (s *Solver) Optimize(ctx context.Context, h *operator.Hamiltonian, form Form, opt Optimizer, budget int) (*Result, error) {
	if form.NumQubits() != h.NumQubits() {
		return nil, fmt.Errorf("%w: form %s prepares %d qubits, hamiltonian has %d",
			ErrDimensionMismatch, form.Name(), form.NumQubits(), h.NumQubits())
	}

	s.evaluations = 0
	objective := func(ctx context.Context, params []float64) (float64, error) {
		energy, err := s.Energy(ctx, h, form, params)
		if err != nil {
			return 0, err
		}
		s.evaluations++
		if s.OnEvaluation != nil {
			s.OnEvaluation(s.evaluations, energy)
		}
		return energy, nil
	}

	initial := make([]float64, form.ParameterCount())

	s.log.Info().
		Str("form", form.Name()).
		Str("optimizer", opt.Name()).
		Int("budget", budget).
		Int("parameters", len(initial)).
		Msg("Starting variational optimization")

	res, err := opt.Minimize(ctx, objective, initial, budget)
	if err != nil {
		return nil, fmt.Errorf("variational optimization: %w", err)
	}

	s.log.Info().
		Float64("energy", res.Value).
		Int("evaluations", res.Evaluations).
		Msg("Variational optimization finished")

	return &Result{
		Parameters:  res.Params,
		Energy:      res.Value,
		Evaluations: res.Evaluations,
	}, nil
}

// Energy estimates the expected energy of h for the form at the given
// parameters. Each non-identity Pauli term is measured with its own basis
// rotation; term expectations combine counts by parity.
func (s *Solver) Energy(ctx context.Context, h *operator.Hamiltonian, form Form, params []float64) (float64, error) {
	prep, err := form.Build(params)
	if err != nil {
		return 0, err
	}

	identity := strings.Repeat("I", h.NumQubits())

	var energy float64
	for _, term := range h.Terms() {
		if term.Paulis == identity {
			energy += real(term.Coeff)
			continue
		}

		expectation, err := s.termExpectation(ctx, prep, term)
		if err != nil {
			return 0, err
		}
		energy += real(term.Coeff) * expectation
	}

	return energy, nil
}

// termExpectation measures <P> for one Pauli string by rotating each non-I
// qubit into the Z basis and reading the parity of the outcomes.
func (s *Solver) termExpectation(ctx context.Context, prep *circuit.Circuit, term operator.Term) (float64, error) {
	c := circuit.New(prep.NumQubits)
	c.Append(prep.Ops...)

	var measured []int
	for q := 0; q < len(term.Paulis); q++ {
		switch term.Paulis[q] {
		case 'X':
			c.Append(circuit.H(q))
			measured = append(measured, q)
		case 'Y':
			c.Append(circuit.Sdg(q), circuit.H(q))
			measured = append(measured, q)
		case 'Z':
			measured = append(measured, q)
		}
	}
	c.Append(circuit.Measure{Qubits: measured})

	counts, err := s.backend.Run(ctx, c, s.shots)
	if err != nil {
		return 0, fmt.Errorf("energy measurement for term %s: %w", term.Paulis, err)
	}

	total := counts.Total()
	if total == 0 {
		return 0, fmt.Errorf("energy measurement for term %s returned no shots", term.Paulis)
	}

	var sum int
	for key, n := range counts {
		parity := 0
		for i := 0; i < len(key); i++ {
			if key[i] == '1' {
				parity ^= 1
			}
		}
		if parity == 0 {
			sum += n
		} else {
			sum -= n
		}
	}

	return float64(sum) / float64(total), nil
}
