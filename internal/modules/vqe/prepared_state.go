package vqe

import (
	"fmt"

	"github.com/pedrorrivero/qlab/internal/modules/circuit"
)

// PreparedState freezes a variational form at a concrete parameter vector,
// turning an optimization result into a reusable initial-state preparation
// procedure. Construction is pure; the emitted circuit depends only on the
// frozen inputs, so repeated preparation is idempotent and deterministic.
//
// Downstream consumers (phase estimation in particular) depend only on the
// preparation contract, never on the form or optimizer that produced it.
type PreparedState struct {
	form   Form
	params []float64
}

// NewPreparedState wraps a form and parameter vector. The vector length must
// match the form's parameter count; this is validated before any backend
// interaction can occur.
func NewPreparedState(form Form, params []float64) (*PreparedState, error) {
	if len(params) != form.ParameterCount() {
		return nil, fmt.Errorf("%w: form %s expects %d parameters, got %d",
			ErrDimensionMismatch, form.Name(), form.ParameterCount(), len(params))
	}

	frozen := make([]float64, len(params))
	copy(frozen, params)

	return &PreparedState{form: form, params: frozen}, nil
}

// Prepare emits the state-preparation circuit for a register of the given
// size. The size must match the underlying form's register.
func (p *PreparedState) Prepare(numQubits int) (*circuit.Circuit, error) {
	if numQubits != p.form.NumQubits() {
		return nil, fmt.Errorf("%w: prepared state covers %d qubits, requested %d",
			ErrDimensionMismatch, p.form.NumQubits(), numQubits)
	}
	return p.form.Build(p.params)
}

// Parameters returns a copy of the frozen parameter vector.
func (p *PreparedState) Parameters() []float64 {
	out := make([]float64, len(p.params))
	copy(out, p.params)
	return out
}
