// Package circuit provides the backend-agnostic circuit description shared by
// the algorithm solvers and the measurement backend.
//
// A circuit is a qubit count plus an ordered op list. Ops are a closed
// variant set: plain gates, controlled Hamiltonian evolution (the expansion
// scheme is carried opaquely and interpreted by the backend), black-box
// oracle application, and measurement.
package circuit

import (
	"math"

	"github.com/pedrorrivero/qlab/internal/modules/operator"
)

// Circuit is a gate sequence over a fixed-size qubit register.
type Circuit struct {
	NumQubits int
	Ops       []Op
}

// Op is one circuit operation. The variant set is closed: Gate,
// ControlledEvolution, Oracle and Measure.
type Op interface {
	opKind() string
}

// Gate is a named single- or two-qubit gate with optional rotation params.
type Gate struct {
	Name   string
	Qubits []int
	Params []float64
}

func (Gate) opKind() string { return "gate" }

// ControlledEvolution applies exp(+i*H*t) to the target qubits, controlled
// on the control qubit. Scheme and Order describe the expansion used to
// realize the evolution; they are passed through to the backend untouched.
type ControlledEvolution struct {
	Hamiltonian *operator.Hamiltonian
	Time        float64
	Scheme      string
	Order       int
	Control     int
	Targets     []int
}

func (ControlledEvolution) opKind() string { return "evolution" }

// Oracle applies the reversible embedding of a black-box function:
// |x>|y> -> |x>|y XOR f(x)>, with x read from Inputs and y on Outputs.
type Oracle struct {
	Inputs  []int
	Outputs []int
	F       func(x int) int
}

func (Oracle) opKind() string { return "oracle" }

// Measure samples the listed qubits. Count keys are bitstrings with
// character i corresponding to Qubits[i].
type Measure struct {
	Qubits []int
}

func (Measure) opKind() string { return "measure" }

// New creates an empty circuit over numQubits qubits.
func New(numQubits int) *Circuit {
	return &Circuit{NumQubits: numQubits}
}

// Append adds ops to the circuit and returns it for chaining.
func (c *Circuit) Append(ops ...Op) *Circuit {
	c.Ops = append(c.Ops, ops...)
	return c
}

// Gate shorthands used throughout the solvers.

// H is a Hadamard gate.
func H(q int) Gate { return Gate{Name: "H", Qubits: []int{q}} }

// X is a Pauli-X gate.
func X(q int) Gate { return Gate{Name: "X", Qubits: []int{q}} }

// Sdg is the inverse phase gate, used for Y-basis rotations.
func Sdg(q int) Gate { return Gate{Name: "Sdg", Qubits: []int{q}} }

// RY is a Y-axis rotation.
func RY(q int, theta float64) Gate { return Gate{Name: "RY", Qubits: []int{q}, Params: []float64{theta}} }

// RZ is a Z-axis rotation.
func RZ(q int, theta float64) Gate { return Gate{Name: "RZ", Qubits: []int{q}, Params: []float64{theta}} }

// Phase is a phase rotation diag(1, e^{i*theta}).
func Phase(q int, theta float64) Gate {
	return Gate{Name: "P", Qubits: []int{q}, Params: []float64{theta}}
}

// CX is a controlled-X gate; the first qubit is the control.
func CX(control, target int) Gate { return Gate{Name: "CX", Qubits: []int{control, target}} }

// CZ is a controlled-Z gate.
func CZ(a, b int) Gate { return Gate{Name: "CZ", Qubits: []int{a, b}} }

// Equal reports whether two circuits describe the same op sequence.
// Oracle ops compare by register layout only; the embedded function is a
// black box. Float params compare exactly - idempotent construction is
// expected to reproduce bit-identical circuits.
func Equal(a, b *Circuit) bool {
	if a.NumQubits != b.NumQubits || len(a.Ops) != len(b.Ops) {
		return false
	}
	for i := range a.Ops {
		if !opEqual(a.Ops[i], b.Ops[i]) {
			return false
		}
	}
	return true
}

func opEqual(a, b Op) bool {
	switch x := a.(type) {
	case Gate:
		y, ok := b.(Gate)
		return ok && x.Name == y.Name && intsEqual(x.Qubits, y.Qubits) && floatsEqual(x.Params, y.Params)
	case ControlledEvolution:
		y, ok := b.(ControlledEvolution)
		return ok && x.Hamiltonian == y.Hamiltonian && x.Time == y.Time &&
			x.Scheme == y.Scheme && x.Order == y.Order &&
			x.Control == y.Control && intsEqual(x.Targets, y.Targets)
	case Oracle:
		y, ok := b.(Oracle)
		return ok && intsEqual(x.Inputs, y.Inputs) && intsEqual(x.Outputs, y.Outputs)
	case Measure:
		y, ok := b.(Measure)
		return ok && intsEqual(x.Qubits, y.Qubits)
	}
	return false
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}
