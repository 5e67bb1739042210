// Package operator provides the weighted Pauli-string Hamiltonian representation
// consumed by the variational and phase-estimation solvers.
package operator

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Term is a single Pauli-string term: a scalar coefficient times a tensor
// product of single-qubit Pauli operators, one symbol per qubit.
// Paulis[i] acts on qubit i, with qubit 0 the least significant bit of a
// basis-state index.
type Term struct {
	Coeff  complex128 `json:"coeff"`
	Paulis string     `json:"paulis"`
}

// Hamiltonian is an immutable weighted sum of Pauli-string terms.
// All terms share the same qubit count; this is enforced at construction
// and never changes afterwards.
type Hamiltonian struct {
	numQubits int
	terms     []Term
}

// New builds a Hamiltonian from a list of terms. All Pauli strings must be
// non-empty, of equal length, and use only the symbols I, X, Y, Z.
func New(terms []Term) (*Hamiltonian, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("hamiltonian requires at least one term")
	}

	numQubits := len(terms[0].Paulis)
	if numQubits == 0 {
		return nil, fmt.Errorf("empty Pauli string in term 0")
	}

	for i, t := range terms {
		if len(t.Paulis) != numQubits {
			return nil, fmt.Errorf("term %d has %d qubits, expected %d", i, len(t.Paulis), numQubits)
		}
		for _, c := range t.Paulis {
			if !strings.ContainsRune("IXYZ", c) {
				return nil, fmt.Errorf("term %d contains invalid Pauli symbol %q", i, c)
			}
		}
	}

	copied := make([]Term, len(terms))
	copy(copied, terms)

	return &Hamiltonian{numQubits: numQubits, terms: copied}, nil
}

// NumQubits returns the qubit count shared by all terms.
func (h *Hamiltonian) NumQubits() int {
	return h.numQubits
}

// Terms returns a copy of the term list.
func (h *Hamiltonian) Terms() []Term {
	out := make([]Term, len(h.terms))
	copy(out, h.terms)
	return out
}

// Bound returns the sum of coefficient magnitudes, a cheap upper bound on
// the spectral radius. IQPE uses it to shift the spectrum into [0, 2*Bound].
func (h *Hamiltonian) Bound() float64 {
	var sum float64
	for _, t := range h.terms {
		sum += cmplx.Abs(t.Coeff)
	}
	return sum
}

// Shifted returns a new Hamiltonian equal to h + delta*I. The identity term
// is merged into an existing all-I term when one is present.
func (h *Hamiltonian) Shifted(delta float64) *Hamiltonian {
	identity := strings.Repeat("I", h.numQubits)

	terms := h.Terms()
	for i := range terms {
		if terms[i].Paulis == identity {
			terms[i].Coeff += complex(delta, 0)
			return &Hamiltonian{numQubits: h.numQubits, terms: terms}
		}
	}

	terms = append(terms, Term{Coeff: complex(delta, 0), Paulis: identity})
	return &Hamiltonian{numQubits: h.numQubits, terms: terms}
}

// String renders the Hamiltonian in a compact "c0*ZZ + c1*XI" form for logs.
func (h *Hamiltonian) String() string {
	parts := make([]string, 0, len(h.terms))
	for _, t := range h.terms {
		if imag(t.Coeff) == 0 {
			parts = append(parts, fmt.Sprintf("%g*%s", real(t.Coeff), t.Paulis))
		} else {
			parts = append(parts, fmt.Sprintf("(%g%+gi)*%s", real(t.Coeff), imag(t.Coeff), t.Paulis))
		}
	}
	return strings.Join(parts, " + ")
}

// almostZero is the tolerance used when comparing matrix elements in tests
// and when deciding whether a coefficient contributes to the dense form.
const almostZero = 1e-12

// IsApproxZero reports whether x is negligible at the package tolerance.
func IsApproxZero(x float64) bool {
	return math.Abs(x) < almostZero
}
