package backend

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/pedrorrivero/qlab/internal/modules/circuit"
	"github.com/pedrorrivero/qlab/internal/modules/operator"
)

// statevector holds 2^n complex amplitudes. Qubit q corresponds to bit q of
// the basis-state index (qubit 0 is the least significant bit).
type statevector struct {
	amps      []complex128
	numQubits int
}

func newStatevector(numQubits int) *statevector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &statevector{amps: amps, numQubits: numQubits}
}

func (s *statevector) applyGate(g circuit.Gate) error {
	theta := 0.0
	if len(g.Params) > 0 {
		theta = g.Params[0]
	}

	switch g.Name {
	case "H":
		s.applyH(g.Qubits[0])
	case "X":
		s.applyX(g.Qubits[0])
	case "Y":
		s.applyY(g.Qubits[0])
	case "Z":
		s.applyPhaseFlip(g.Qubits[0], -1)
	case "S":
		s.applyPhaseFlip(g.Qubits[0], 1i)
	case "Sdg":
		s.applyPhaseFlip(g.Qubits[0], -1i)
	case "T":
		s.applyPhaseFlip(g.Qubits[0], cmplx.Exp(complex(0, math.Pi/4)))
	case "Tdg":
		s.applyPhaseFlip(g.Qubits[0], cmplx.Exp(complex(0, -math.Pi/4)))
	case "P":
		s.applyPhaseFlip(g.Qubits[0], cmplx.Exp(complex(0, theta)))
	case "RX":
		s.applyRX(g.Qubits[0], theta)
	case "RY":
		s.applyRY(g.Qubits[0], theta)
	case "RZ":
		s.applyRZ(g.Qubits[0], theta)
	case "CX":
		s.applyCX(g.Qubits[0], g.Qubits[1])
	case "CZ":
		s.applyCZ(g.Qubits[0], g.Qubits[1])
	case "SWAP":
		s.applySWAP(g.Qubits[0], g.Qubits[1])
	default:
		return fmt.Errorf("unknown gate %q", g.Name)
	}
	return nil
}

func (s *statevector) applyH(q int) {
	factor := complex(1.0/math.Sqrt2, 0)
	n := len(s.amps)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = factor * (a + b)
			s.amps[j] = factor * (a - b)
		}
	}
}

func (s *statevector) applyX(q int) {
	n := len(s.amps)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *statevector) applyY(q int) {
	n := len(s.amps)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = 1i*s.amps[j], -1i*s.amps[i]
		}
	}
}

// applyPhaseFlip multiplies the |1> component of qubit q by factor.
// Z, S, Sdg, T, Tdg and P are all this operation with different factors.
func (s *statevector) applyPhaseFlip(q int, factor complex128) {
	n := len(s.amps)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.amps[i] *= factor
		}
	}
}

func (s *statevector) applyRX(q int, theta float64) {
	n := len(s.amps)
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = c*a + js*b
			s.amps[j] = js*a + c*b
		}
	}
}

func (s *statevector) applyRY(q int, theta float64) {
	n := len(s.amps)
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = c*a - sn*b
			s.amps[j] = sn*a + c*b
		}
	}
}

func (s *statevector) applyRZ(q int, theta float64) {
	n := len(s.amps)
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.amps[i] *= phase
		} else {
			s.amps[i] *= cmplx.Conj(phase)
		}
	}
}

func (s *statevector) applyCX(control, target int) {
	n := len(s.amps)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *statevector) applyCZ(a, b int) {
	n := len(s.amps)
	aBit := 1 << a
	bBit := 1 << b
	for i := 0; i < n; i++ {
		if i&aBit != 0 && i&bBit != 0 {
			s.amps[i] *= -1
		}
	}
}

func (s *statevector) applySWAP(q1, q2 int) {
	n := len(s.amps)
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := 0; i < n; i++ {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// applyOracle applies the reversible embedding |x>|y> -> |x>|y XOR f(x)>
// as a permutation of basis states.
func (s *statevector) applyOracle(o circuit.Oracle) {
	n := len(s.amps)
	out := make([]complex128, n)

	for i := 0; i < n; i++ {
		if s.amps[i] == 0 {
			continue
		}
		x := 0
		for k, q := range o.Inputs {
			x |= ((i >> q) & 1) << k
		}
		fx := o.F(x)
		j := i
		for k, q := range o.Outputs {
			if (fx>>k)&1 == 1 {
				j ^= 1 << q
			}
		}
		out[j] += s.amps[i]
	}

	s.amps = out
}

// applyHamiltonian computes dst = H(src) over the target qubits, summing
// the action of every Pauli term. dst must be zeroed by the caller.
func applyHamiltonian(dst, src []complex128, terms []operator.Term, targets []int) {
	for _, t := range terms {
		for i := range src {
			if src[i] == 0 {
				continue
			}
			// Project the full-register index onto the target subregister,
			// apply the term action there, then write back.
			sub := 0
			for k, q := range targets {
				sub |= ((i >> q) & 1) << k
			}
			outSub, phase := operator.TermAction(t.Paulis, sub)
			j := i
			for k, q := range targets {
				bit := (outSub >> k) & 1
				if bit == 1 {
					j |= 1 << q
				} else {
					j &^= 1 << q
				}
			}
			dst[j] += t.Coeff * phase * src[i]
		}
	}
}

// applyPauliExp applies exp(i*theta*P) in place for a single Pauli string P:
// since P^2 = I, exp(i*theta*P) = cos(theta)*I + i*sin(theta)*P.
func applyPauliExp(vec []complex128, theta float64, paulis string, targets []int) {
	c := complex(math.Cos(theta), 0)
	is := complex(0, math.Sin(theta))

	pv := make([]complex128, len(vec))
	applyHamiltonian(pv, vec, []operator.Term{{Coeff: 1, Paulis: paulis}}, targets)

	for i := range vec {
		vec[i] = c*vec[i] + is*pv[i]
	}
}

func norm2(vec []complex128) float64 {
	var sum float64
	for _, a := range vec {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}
