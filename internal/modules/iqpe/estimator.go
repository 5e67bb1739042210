// Package iqpe provides iterative quantum phase estimation: a target phase
// is resolved one bit at a time through repeated single-ancilla measurements
// and classical phase correction between rounds.
package iqpe

import (
	"context"
	"fmt"
	"math"

	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/circuit"
	"github.com/pedrorrivero/qlab/internal/modules/operator"
	"github.com/rs/zerolog"
)

// InitialState prepares the system register before each estimation round.
// The variational module's PreparedState satisfies this; the estimator
// depends on nothing beyond this contract.
type InitialState interface {
	Prepare(numQubits int) (*circuit.Circuit, error)
}

// Config holds estimation parameters.
type Config struct {
	// Rounds is the number of phase bits resolved (R in the literature).
	Rounds int
	// Shots is the per-round measurement count for the majority vote.
	Shots int
	// TimeSlice is the base evolution duration t0. Round k evolves for
	// 2^(k-1)*t0, so callers must keep (E+Bound)*t0 below 2*pi.
	TimeSlice float64
	// Scheme and Order describe the evolution expansion. They are passed
	// through to circuit construction opaquely.
	Scheme string
	Order  int
}

// Estimate is the terminal state of an estimation: the resolved bits
// (most significant first), the fractional phase in [0,1), and the energy
// recovered through the time-slice scaling used when the circuits were built.
type Estimate struct {
	Bits   []int   `json:"bits"`
	Phase  float64 `json:"phase"`
	Energy float64 `json:"energy"`
}

// RoundError reports a failed estimation round together with the bits
// resolved before the failure. The partial bits are diagnostic state, not a
// usable estimate.
type RoundError struct {
	Round int
	Bits  []int
	Err   error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("phase estimation round %d (after %d bits): %v", e.Round, len(e.Bits), e.Err)
}

func (e *RoundError) Unwrap() error { return e.Err }

// Estimator runs the iterative phase-estimation state machine.
type Estimator struct {
	backend backend.Backend
	cfg     Config
	log     zerolog.Logger

	// OnRound, when set, observes each resolved bit as rounds complete.
	OnRound func(round, bit int, bitsSoFar []int)
}

// NewEstimator creates an estimator over the given backend.
func NewEstimator(b backend.Backend, cfg Config, log zerolog.Logger) *Estimator {
	return &Estimator{
		backend: b,
		cfg:     cfg,
		log:     log.With().Str("component", "iqpe").Logger(),
	}
}

// accumulator carries the in-progress estimate between rounds: the bits
// resolved so far (most recently resolved first, which is most significant
// of the known suffix) and nothing else. Each round prepends one bit.
type accumulator struct {
	bits []int
}

// fraction interprets the accumulated bits as the binary fraction
// 0.b1b2...bm with the most recently resolved bit in position one.
func (a *accumulator) fraction() float64 {
	f := 0.0
	for i, b := range a.bits {
		if b == 1 {
			f += math.Pow(2, -float64(i+1))
		}
	}
	return f
}

func (a *accumulator) prepend(bit int) {
	a.bits = append([]int{bit}, a.bits...)
}

// Estimate resolves cfg.Rounds phase bits for the ground-state phase of h
// seeded with the given initial state, then converts the phase to an energy.
//
// The spectrum is shifted by +Bound() before evolution so every eigenvalue
// is non-negative and the phase stays inside [0,1); the shift is removed in
// the returned energy. Rounds are strictly sequential: each round's circuit
// depends on the bits resolved by all previous rounds. A backend failure
// aborts the whole estimation; there are no per-round retries.
func (e *Estimator) Estimate(ctx context.Context, h *operator.Hamiltonian, init InitialState) (*Estimate, error) {
	if e.cfg.Rounds < 1 {
		return nil, fmt.Errorf("iterative phase estimation requires at least one round, got %d", e.cfg.Rounds)
	}
	if e.cfg.TimeSlice <= 0 {
		return nil, fmt.Errorf("time slice must be positive, got %f", e.cfg.TimeSlice)
	}

	bound := h.Bound()
	shifted := h.Shifted(bound)

	numQubits := h.NumQubits()
	ancilla := numQubits
	targets := make([]int, numQubits)
	for i := range targets {
		targets[i] = i
	}

	prep, err := init.Prepare(numQubits)
	if err != nil {
		return nil, fmt.Errorf("initial state preparation: %w", err)
	}

	e.log.Info().
		Int("rounds", e.cfg.Rounds).
		Int("shots", e.cfg.Shots).
		Float64("time_slice", e.cfg.TimeSlice).
		Msg("Starting iterative phase estimation")

	acc := accumulator{}

	for k := e.cfg.Rounds; k >= 1; k-- {
		c := circuit.New(numQubits + 1)
		c.Append(prep.Ops...)
		c.Append(circuit.H(ancilla))
		c.Append(circuit.ControlledEvolution{
			Hamiltonian: shifted,
			Time:        e.cfg.TimeSlice * math.Pow(2, float64(k-1)),
			Scheme:      e.cfg.Scheme,
			Order:       e.cfg.Order,
			Control:     ancilla,
			Targets:     targets,
		})
		// Compensate for the bits already resolved: rotate the ancilla by
		// -pi times the accumulated binary fraction before the final basis
		// change (semiclassical phase kickback correction).
		if correction := -math.Pi * acc.fraction(); correction != 0 {
			c.Append(circuit.Phase(ancilla, correction))
		}
		c.Append(circuit.H(ancilla))
		c.Append(circuit.Measure{Qubits: []int{ancilla}})

		counts, err := e.backend.Run(ctx, c, e.cfg.Shots)
		if err != nil {
			return nil, &RoundError{Round: k, Bits: append([]int(nil), acc.bits...), Err: err}
		}

		bit := MajorityBit(counts)
		acc.prepend(bit)

		e.log.Debug().
			Int("round", k).
			Int("bit", bit).
			Int("ones", counts["1"]).
			Int("zeros", counts["0"]).
			Msg("Resolved phase bit")

		if e.OnRound != nil {
			e.OnRound(k, bit, append([]int(nil), acc.bits...))
		}
	}

	phase := acc.fraction()
	energy := 2*math.Pi*phase/e.cfg.TimeSlice - bound

	e.log.Info().
		Float64("phase", phase).
		Float64("energy", energy).
		Msg("Phase estimation finished")

	return &Estimate{
		Bits:   acc.bits,
		Phase:  phase,
		Energy: energy,
	}, nil
}

// MajorityBit resolves a single-ancilla outcome distribution by majority
// vote. Ties break toward 0.
func MajorityBit(counts backend.Counts) int {
	if counts["1"] > counts["0"] {
		return 1
	}
	return 0
}
