package backend

import (
	"context"
	"math"
	"testing"

	"github.com/pedrorrivero/qlab/internal/modules/circuit"
	"github.com/pedrorrivero/qlab/internal/modules/operator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(seed int64) *Simulator {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewSimulator(SimulatorConfig{Seed: seed}, log)
}

func TestRunDeterministicOutcomes(t *testing.T) {
	sim := newTestSimulator(1)

	t.Run("ground state measures all zeros", func(t *testing.T) {
		c := circuit.New(2).Append(circuit.Measure{Qubits: []int{0, 1}})
		counts, err := sim.Run(context.Background(), c, 100)
		require.NoError(t, err)
		assert.Equal(t, Counts{"00": 100}, counts)
	})

	t.Run("X flips the measured bit", func(t *testing.T) {
		c := circuit.New(1).Append(circuit.X(0), circuit.Measure{Qubits: []int{0}})
		counts, err := sim.Run(context.Background(), c, 50)
		require.NoError(t, err)
		assert.Equal(t, Counts{"1": 50}, counts)
	})

	t.Run("bell state yields only correlated outcomes", func(t *testing.T) {
		c := circuit.New(2).Append(
			circuit.H(0),
			circuit.CX(0, 1),
			circuit.Measure{Qubits: []int{0, 1}},
		)
		counts, err := sim.Run(context.Background(), c, 1000)
		require.NoError(t, err)

		assert.Equal(t, 1000, counts.Total())
		for key := range counts {
			assert.Contains(t, []string{"00", "11"}, key)
		}
		assert.Greater(t, counts["00"], 0)
		assert.Greater(t, counts["11"], 0)
	})
}

func TestRunSeededSamplingIsReproducible(t *testing.T) {
	// Two simulators with the same seed replay the same sequence of draws.
	c := circuit.New(1).Append(circuit.H(0), circuit.Measure{Qubits: []int{0}})

	runTwice := func(sim *Simulator) []Counts {
		first, err := sim.Run(context.Background(), c, 500)
		require.NoError(t, err)
		second, err := sim.Run(context.Background(), c, 500)
		require.NoError(t, err)
		return []Counts{first, second}
	}

	a := runTwice(newTestSimulator(42))
	b := runTwice(newTestSimulator(42))

	assert.Equal(t, a, b)
	assert.Equal(t, 500, a[0].Total())
}

func TestRunResubmissionDrawsFreshSamples(t *testing.T) {
	// A seeded simulator must not hand back byte-identical counts when the
	// same circuit is submitted again; each submission gets its own stream.
	sim := newTestSimulator(42)
	c := circuit.New(3).Append(
		circuit.H(0), circuit.H(1), circuit.H(2),
		circuit.Measure{Qubits: []int{0, 1, 2}},
	)

	first, err := sim.Run(context.Background(), c, 64)
	require.NoError(t, err)
	second, err := sim.Run(context.Background(), c, 64)
	require.NoError(t, err)

	assert.Equal(t, 64, first.Total())
	assert.Equal(t, 64, second.Total())
	assert.NotEqual(t, first, second)
}

func TestRunMeasuresSubsetInListedOrder(t *testing.T) {
	// Only qubit 1 is measured; key character 0 is that qubit's outcome.
	sim := newTestSimulator(7)
	c := circuit.New(2).Append(circuit.X(1), circuit.Measure{Qubits: []int{1}})

	counts, err := sim.Run(context.Background(), c, 20)
	require.NoError(t, err)
	assert.Equal(t, Counts{"1": 20}, counts)
}

func TestRunOracleEmbedding(t *testing.T) {
	// f(x) = x on one input bit: |1>|0> -> |1>|1>.
	sim := newTestSimulator(3)
	c := circuit.New(2).Append(
		circuit.X(0),
		circuit.Oracle{Inputs: []int{0}, Outputs: []int{1}, F: func(x int) int { return x }},
		circuit.Measure{Qubits: []int{0, 1}},
	)

	counts, err := sim.Run(context.Background(), c, 10)
	require.NoError(t, err)
	assert.Equal(t, Counts{"11": 10}, counts)
}

func TestRunValidation(t *testing.T) {
	sim := newTestSimulator(1)
	ctx := context.Background()

	t.Run("rejects non-positive shots", func(t *testing.T) {
		c := circuit.New(1).Append(circuit.Measure{Qubits: []int{0}})
		_, err := sim.Run(ctx, c, 0)
		assert.ErrorIs(t, err, ErrInvalidCircuit)
	})

	t.Run("rejects missing measurement", func(t *testing.T) {
		c := circuit.New(1).Append(circuit.H(0))
		_, err := sim.Run(ctx, c, 10)
		assert.ErrorIs(t, err, ErrInvalidCircuit)
	})

	t.Run("rejects mid-circuit measurement", func(t *testing.T) {
		c := circuit.New(1).Append(circuit.Measure{Qubits: []int{0}}, circuit.H(0))
		_, err := sim.Run(ctx, c, 10)
		assert.ErrorIs(t, err, ErrInvalidCircuit)
	})

	t.Run("rejects out-of-range qubits", func(t *testing.T) {
		c := circuit.New(1).Append(circuit.H(5), circuit.Measure{Qubits: []int{0}})
		_, err := sim.Run(ctx, c, 10)
		assert.ErrorIs(t, err, ErrInvalidCircuit)
	})

	t.Run("rejects oversized registers", func(t *testing.T) {
		log := zerolog.New(nil).Level(zerolog.Disabled)
		small := NewSimulator(SimulatorConfig{MaxQubits: 2}, log)
		c := circuit.New(3).Append(circuit.Measure{Qubits: []int{0}})
		_, err := small.Run(ctx, c, 10)
		assert.ErrorIs(t, err, ErrInvalidCircuit)
	})

	t.Run("rejects control overlapping evolution targets", func(t *testing.T) {
		h, err := operator.New([]operator.Term{{Coeff: 1, Paulis: "Z"}})
		require.NoError(t, err)
		c := circuit.New(1).Append(
			circuit.ControlledEvolution{Hamiltonian: h, Time: 1, Control: 0, Targets: []int{0}},
			circuit.Measure{Qubits: []int{0}},
		)
		_, err = sim.Run(ctx, c, 10)
		assert.ErrorIs(t, err, ErrInvalidCircuit)
	})

	t.Run("rejects unknown expansion scheme", func(t *testing.T) {
		h, err := operator.New([]operator.Term{{Coeff: 1, Paulis: "Z"}})
		require.NoError(t, err)
		c := circuit.New(2).Append(
			circuit.ControlledEvolution{Hamiltonian: h, Time: 1, Scheme: "magic", Control: 1, Targets: []int{0}},
			circuit.Measure{Qubits: []int{0}},
		)
		_, err = sim.Run(ctx, c, 10)
		assert.ErrorIs(t, err, ErrInvalidCircuit)
	})
}

// phaseKickback builds the standard one-ancilla interference circuit: the
// ancilla picks up the eigenphase of the evolution and the final Hadamard
// converts it to a measurement bias.
func phaseKickback(t *testing.T, scheme string, time float64, excite bool) *circuit.Circuit {
	t.Helper()
	h, err := operator.New([]operator.Term{{Coeff: 1, Paulis: "Z"}})
	require.NoError(t, err)

	c := circuit.New(2)
	if excite {
		c.Append(circuit.X(0))
	}
	c.Append(
		circuit.H(1),
		circuit.ControlledEvolution{
			Hamiltonian: h,
			Time:        time,
			Scheme:      scheme,
			Order:       1,
			Control:     1,
			Targets:     []int{0},
		},
		circuit.H(1),
		circuit.Measure{Qubits: []int{1}},
	)
	return c
}

func TestControlledEvolutionPhases(t *testing.T) {
	// Z eigenvalues: |0> -> +1, |1> -> -1, and the evolution applies
	// exp(+i*lambda*t) on the control=1 branch.
	ctx := context.Background()

	for _, scheme := range []string{"exact", "trotter"} {
		t.Run(scheme, func(t *testing.T) {
			sim := newTestSimulator(11)

			// t = 2*pi on |0>: kickback e^{2*pi*i} = 1, ancilla stays |0>.
			counts, err := sim.Run(ctx, phaseKickback(t, scheme, 2*math.Pi, false), 100)
			require.NoError(t, err)
			assert.Equal(t, Counts{"0": 100}, counts)

			// t = pi on |1>: kickback e^{-i*pi} = -1, ancilla flips to |1>.
			counts, err = sim.Run(ctx, phaseKickback(t, scheme, math.Pi, true), 100)
			require.NoError(t, err)
			assert.Equal(t, Counts{"1": 100}, counts)
		})
	}
}

func TestMaxQubitsForBytes(t *testing.T) {
	// 16 bytes per amplitude: 1 GiB holds 2^26 amplitudes = 26 qubits.
	assert.Equal(t, 26, MaxQubitsForBytes(1<<30))
	assert.Equal(t, 1, MaxQubitsForBytes(32))
	assert.Equal(t, 0, MaxQubitsForBytes(16))
}
