package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// pauliAction returns, for a single Pauli symbol applied to one bit of a
// basis-state index, the output bit and the accumulated phase factor.
func pauliAction(symbol byte, bit int) (int, complex128) {
	switch symbol {
	case 'I':
		return bit, 1
	case 'X':
		return 1 - bit, 1
	case 'Y':
		// Y|0> = i|1>, Y|1> = -i|0>
		if bit == 0 {
			return 1, 1i
		}
		return 0, -1i
	case 'Z':
		if bit == 0 {
			return 0, 1
		}
		return 1, -1
	}
	return bit, 1
}

// TermAction computes, for a Pauli string applied to basis state |col>, the
// resulting basis state and phase: P|col> = phase * |row>. The simulator and
// the dense matrix builder share this mapping.
func TermAction(paulis string, col int) (int, complex128) {
	row := col
	phase := complex128(1)
	for q := 0; q < len(paulis); q++ {
		bit := (col >> q) & 1
		outBit, p := pauliAction(paulis[q], bit)
		phase *= p
		if outBit != bit {
			row ^= 1 << q
		}
	}
	return row, phase
}

// Matrix returns the dense complex matrix form of the Hamiltonian.
// The dimension is 2^n; callers should treat this as a diagnostics-only
// operation for small registers.
func (h *Hamiltonian) Matrix() *mat.CDense {
	dim := 1 << h.numQubits
	m := mat.NewCDense(dim, dim, nil)

	for _, t := range h.terms {
		for col := 0; col < dim; col++ {
			row, phase := TermAction(t.Paulis, col)
			m.Set(row, col, m.At(row, col)+t.Coeff*phase)
		}
	}

	return m
}

// GroundEnergy returns the exact smallest eigenvalue of the Hamiltonian.
//
// The Hermitian matrix H = A + iB is embedded into the real symmetric
// matrix [[A, -B], [B, A]], whose spectrum is the spectrum of H with every
// eigenvalue doubled. This keeps the computation inside gonum's symmetric
// eigensolver, which has no complex Hermitian counterpart.
func (h *Hamiltonian) GroundEnergy() (float64, error) {
	if h.numQubits > 12 {
		return 0, fmt.Errorf("exact diagonalization limited to 12 qubits, got %d", h.numQubits)
	}

	dim := 1 << h.numQubits
	cm := h.Matrix()

	embedded := mat.NewSymDense(2*dim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			v := cm.At(i, j)
			embedded.SetSym(i, j, real(v))
			embedded.SetSym(dim+i, dim+j, real(v))
			// SetSym writes both (i, dim+j) and its mirror; Hermitian symmetry
			// of H makes -imag(v) at (i, dim+j) consistent with imag at (j, dim+i).
			embedded.SetSym(i, dim+j, -imag(v))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(embedded, false) {
		return 0, fmt.Errorf("eigendecomposition failed for %d-qubit hamiltonian", h.numQubits)
	}

	values := eig.Values(nil)
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min, nil
}
