// Package vqe provides the variational eigensolver: parameterized circuit
// forms, a stochastic optimizer, the energy-estimation loop, and the
// prepared-state adapter that hands the optimized state to downstream
// consumers.
package vqe

import (
	"errors"
	"fmt"

	"github.com/pedrorrivero/qlab/internal/modules/circuit"
)

// ErrDimensionMismatch is returned when a parameter vector or register size
// does not match a variational form's expectations. The check happens before
// any backend call.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Form is a parameterized state-preparation circuit family. Implementations
// are selected at construction time, never by runtime type inspection.
type Form interface {
	Name() string
	NumQubits() int
	ParameterCount() int
	// Build emits the preparation circuit for the given parameter vector.
	// The circuit carries no measurement; consumers append their own.
	Build(params []float64) (*circuit.Circuit, error)
}

// RYLinear is a hardware-efficient ansatz: a layer of RY rotations per
// qubit, repeated Depth+1 times with linear CZ entanglement between layers.
type RYLinear struct {
	Qubits int
	Depth  int
}

// NewRYLinear creates an RY ansatz over numQubits qubits with the given
// entanglement depth.
func NewRYLinear(numQubits, depth int) *RYLinear {
	return &RYLinear{Qubits: numQubits, Depth: depth}
}

// Name identifies the form in logs and run records.
func (f *RYLinear) Name() string { return "ry-linear" }

// NumQubits returns the register size the form prepares.
func (f *RYLinear) NumQubits() int { return f.Qubits }

// ParameterCount returns the expected parameter vector length.
func (f *RYLinear) ParameterCount() int { return f.Qubits * (f.Depth + 1) }

// Build emits the ansatz circuit for the given parameters.
func (f *RYLinear) Build(params []float64) (*circuit.Circuit, error) {
	if len(params) != f.ParameterCount() {
		return nil, fmt.Errorf("%w: form %s expects %d parameters, got %d",
			ErrDimensionMismatch, f.Name(), f.ParameterCount(), len(params))
	}

	c := circuit.New(f.Qubits)
	idx := 0

	for q := 0; q < f.Qubits; q++ {
		c.Append(circuit.RY(q, params[idx]))
		idx++
	}

	for layer := 0; layer < f.Depth; layer++ {
		for q := 0; q < f.Qubits-1; q++ {
			c.Append(circuit.CZ(q, q+1))
		}
		for q := 0; q < f.Qubits; q++ {
			c.Append(circuit.RY(q, params[idx]))
			idx++
		}
	}

	return c, nil
}
