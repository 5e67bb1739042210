package testing

import (
	"testing"

	"github.com/pedrorrivero/qlab/internal/modules/operator"
)

// SingleZHamiltonian returns H = Z on one qubit. Its ground energy is -1
// with the excited state at +1, which makes phases easy to compute by hand.
func SingleZHamiltonian(t *testing.T) *operator.Hamiltonian {
	t.Helper()
	h, err := operator.New([]operator.Term{
		{Coeff: 1, Paulis: "Z"},
	})
	if err != nil {
		t.Fatalf("Failed to build single-Z Hamiltonian: %v", err)
	}
	return h
}

// TransverseIsingHamiltonian returns a two-qubit transverse-field Ising
// model H = -ZZ - 0.5(XI + IX). Its exact ground energy is -sqrt(2).
func TransverseIsingHamiltonian(t *testing.T) *operator.Hamiltonian {
	t.Helper()
	h, err := operator.New([]operator.Term{
		{Coeff: -1, Paulis: "ZZ"},
		{Coeff: -0.5, Paulis: "XI"},
		{Coeff: -0.5, Paulis: "IX"},
	})
	if err != nil {
		t.Fatalf("Failed to build Ising Hamiltonian: %v", err)
	}
	return h
}
