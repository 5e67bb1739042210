package simon

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/circuit"
	"github.com/rs/zerolog"
)

// ErrUnderconstrained is returned when the measurement budget is exhausted
// before enough independent constraints are gathered. A partial constraint
// set is never silently solved into a wrong mask.
var ErrUnderconstrained = errors.New("underconstrained linear system")

// Config holds solver parameters.
type Config struct {
	// Shots is the per-round shot count; every distinct outcome of a round
	// feeds the constraint collector.
	Shots int
	// Budget caps the number of measurement rounds.
	Budget int
}

// Result is the recovered mask together with the constraint set that
// produced it. The mask is rendered MSB-first ("011" for 3 over 3 bits).
type Result struct {
	Mask        string   `json:"mask"`
	Constraints []string `json:"constraints"`
	Rounds      int      `json:"rounds"`
	Verified    bool     `json:"verified"`
}

// Solver recovers hidden XOR masks by Simon's algorithm.
type Solver struct {
	backend backend.Backend
	cfg     Config
	log     zerolog.Logger

	// OnConstraint, when set, observes every accepted constraint.
	OnConstraint func(vector string, collected int)
}

// NewSolver creates a period-finding solver over the given backend.
func NewSolver(b backend.Backend, cfg Config, log zerolog.Logger) *Solver {
	return &Solver{
		backend: b,
		cfg:     cfg,
		log:     log.With().Str("component", "simon").Logger(),
	}
}

// Recover runs measurement rounds against the oracle embedding of the table
// until n-1 independent constraints are collected or the budget runs out,
// then solves the homogeneous GF(2) system for the mask.
//
// Rounds are independent of each other; outcomes within a round are fed to
// the independence check in sorted order so that mask recovery is
// deterministic for a fixed measurement trace. A candidate that fails the
// classical XOR-invariance verification indicates an injective function and
// collapses to the all-zero mask. If no non-trivial constraint is ever
// measured within budget the mask is likewise reported all-zero (the
// 1-to-1 case). Exhausting the budget with some but not enough constraints
// is reported as ErrUnderconstrained.
func (s *Solver) Recover(ctx context.Context, table *TruthTable) (*Result, error) {
	n := table.InputBits()
	needed := n - 1

	c := s.buildCircuit(table)

	basis := &Basis{}
	rounds := 0

	for rounds < s.cfg.Budget && basis.Size() < needed {
		rounds++

		counts, err := s.backend.Run(ctx, c, s.cfg.Shots)
		if err != nil {
			return nil, fmt.Errorf("oracle measurement round %d (after %d constraints): %w",
				rounds, basis.Size(), err)
		}

		for _, y := range sortedOutcomes(counts) {
			if y == 0 {
				// The all-zero vector constrains nothing.
				continue
			}
			if basis.Insert(uint64(y)) {
				s.log.Debug().
					Str("vector", BitString(y, n)).
					Int("collected", basis.Size()).
					Msg("Accepted independent constraint")
				if s.OnConstraint != nil {
					s.OnConstraint(BitString(y, n), basis.Size())
				}
				if basis.Size() == needed {
					break
				}
			}
		}
	}

	constraints := make([]string, 0, basis.Size())
	for _, v := range basis.Vectors() {
		constraints = append(constraints, BitString(int(v), n))
	}

	switch {
	case basis.Size() == needed:
		mask := int(basis.NullVector(n))
		verified := table.Verify(mask)
		if !verified {
			// Every constraint is satisfied by the zero vector as well; an
			// unverifiable candidate means the function is 1-to-1.
			mask = 0
		}
		s.log.Info().
			Str("mask", BitString(mask, n)).
			Int("rounds", rounds).
			Bool("verified", verified).
			Msg("Recovered mask")
		return &Result{
			Mask:        BitString(mask, n),
			Constraints: constraints,
			Rounds:      rounds,
			Verified:    verified,
		}, nil

	case basis.Size() == 0:
		// No information within budget: the promise forces the 1-to-1 case.
		return &Result{
			Mask:        BitString(0, n),
			Constraints: constraints,
			Rounds:      rounds,
			Verified:    table.Verify(0),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %d of %d constraints after %d rounds",
			ErrUnderconstrained, basis.Size(), needed, rounds)
	}
}

// buildCircuit assembles the standard Simon circuit: Hadamards on the input
// register, the oracle embedding, Hadamard un-computation on the inputs,
// and measurement of the input register only.
func (s *Solver) buildCircuit(table *TruthTable) *circuit.Circuit {
	n := table.InputBits()
	m := table.OutputBits()

	inputs := make([]int, n)
	outputs := make([]int, m)
	for i := 0; i < n; i++ {
		inputs[i] = i
	}
	for j := 0; j < m; j++ {
		outputs[j] = n + j
	}

	c := circuit.New(n + m)
	for _, q := range inputs {
		c.Append(circuit.H(q))
	}
	c.Append(circuit.Oracle{Inputs: inputs, Outputs: outputs, F: table.Eval})
	for _, q := range inputs {
		c.Append(circuit.H(q))
	}
	c.Append(circuit.Measure{Qubits: inputs})

	return c
}

// sortedOutcomes decodes count keys into integers in a fixed order.
// Character i of a key is input bit i.
func sortedOutcomes(counts backend.Counts) []int {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]int, 0, len(keys))
	for _, k := range keys {
		y := 0
		for i := 0; i < len(k); i++ {
			if k[i] == '1' {
				y |= 1 << i
			}
		}
		out = append(out, y)
	}
	return out
}
