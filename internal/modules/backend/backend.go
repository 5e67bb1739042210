// Package backend provides the measurement backend boundary: circuit in,
// distribution of measured bitstrings out.
package backend

import (
	"context"
	"errors"
	"math/bits"

	"github.com/pedrorrivero/qlab/internal/modules/circuit"
)

// Sentinel errors for the two backend failure modes. Both are fatal to the
// calling component; no retries happen at this layer.
var (
	// ErrUnavailable indicates the backend cannot accept submissions.
	ErrUnavailable = errors.New("measurement backend unavailable")
	// ErrInvalidCircuit indicates the submitted circuit failed validation.
	ErrInvalidCircuit = errors.New("invalid circuit")
)

// Counts is a distribution over measured bitstrings. Keys follow the
// measurement op's qubit order: character i is the outcome of Qubits[i].
type Counts map[string]int

// Total returns the number of shots represented by the distribution.
func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// Backend submits circuits for execution and returns measured outcome
// distributions. Implementations block until the result is available or the
// context is cancelled.
type Backend interface {
	Name() string
	Run(ctx context.Context, c *circuit.Circuit, shots int) (Counts, error)
}

// MaxQubitsForBytes returns the largest register size whose statevector
// (16 bytes per complex128 amplitude) fits in the given memory budget.
func MaxQubitsForBytes(available uint64) int {
	amplitudes := available / 16
	if amplitudes < 2 {
		return 0
	}
	return bits.Len64(amplitudes) - 1
}
