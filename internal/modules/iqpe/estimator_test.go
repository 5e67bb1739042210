package iqpe

import (
	"context"
	"math"
	"testing"

	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/circuit"
	"github.com/pedrorrivero/qlab/internal/modules/vqe"
	testingpkg "github.com/pedrorrivero/qlab/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// zeroState prepares |0...0>.
type zeroState struct{}

func (zeroState) Prepare(numQubits int) (*circuit.Circuit, error) {
	return circuit.New(numQubits), nil
}

func TestMajorityBit(t *testing.T) {
	assert.Equal(t, 1, MajorityBit(backend.Counts{"1": 600, "0": 400}))
	assert.Equal(t, 0, MajorityBit(backend.Counts{"1": 400, "0": 600}))
	assert.Equal(t, 0, MajorityBit(backend.Counts{}))

	// Ties break toward zero.
	assert.Equal(t, 0, MajorityBit(backend.Counts{"1": 500, "0": 500}))
}

func TestEstimateConfigValidation(t *testing.T) {
	h := testingpkg.SingleZHamiltonian(t)
	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 1}, testLogger())

	_, err := NewEstimator(sim, Config{Rounds: 0, Shots: 10, TimeSlice: 1}, testLogger()).
		Estimate(context.Background(), h, zeroState{})
	assert.Error(t, err)

	_, err = NewEstimator(sim, Config{Rounds: 3, Shots: 10, TimeSlice: 0}, testLogger()).
		Estimate(context.Background(), h, zeroState{})
	assert.Error(t, err)
}

func TestEstimateExcitedStatePhase(t *testing.T) {
	// H = Z with Bound 1; the shifted spectrum puts |0> at eigenvalue 2.
	// With t0 = 3*pi/8 the phase is 2*t0/(2*pi) = 3/8 = 0.011 in binary,
	// exactly representable in three bits, so every round is deterministic.
	h := testingpkg.SingleZHamiltonian(t)
	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 9}, testLogger())

	est := NewEstimator(sim, Config{
		Rounds:    3,
		Shots:     50,
		TimeSlice: 3 * math.Pi / 8,
		Scheme:    "exact",
	}, testLogger())

	var rounds []int
	est.OnRound = func(round, bit int, bitsSoFar []int) {
		rounds = append(rounds, round)
	}

	result, err := est.Estimate(context.Background(), h, zeroState{})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 1}, result.Bits)
	assert.InDelta(t, 0.375, result.Phase, 1e-12)
	assert.InDelta(t, 1.0, result.Energy, 1e-9)

	// Rounds resolve the least significant bit first.
	assert.Equal(t, []int{3, 2, 1}, rounds)
}

func TestEstimateGroundStatePhase(t *testing.T) {
	// RY(pi) prepares |1>, the ground state of Z. Its shifted eigenvalue is
	// zero, so every bit resolves to 0 and the energy recovers -1.
	h := testingpkg.SingleZHamiltonian(t)
	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 9}, testLogger())

	prepared, err := vqe.NewPreparedState(vqe.NewRYLinear(1, 0), []float64{math.Pi})
	require.NoError(t, err)

	est := NewEstimator(sim, Config{
		Rounds:    3,
		Shots:     50,
		TimeSlice: 3 * math.Pi / 8,
		Scheme:    "exact",
	}, testLogger())

	result, err := est.Estimate(context.Background(), h, prepared)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0}, result.Bits)
	assert.InDelta(t, 0.0, result.Phase, 1e-12)
	assert.InDelta(t, -1.0, result.Energy, 1e-9)
}

func TestEstimateTrotterMatchesExactForSingleTerm(t *testing.T) {
	// A single-term Hamiltonian commutes with itself, so the product
	// formula is exact and both schemes resolve identical bits.
	h := testingpkg.SingleZHamiltonian(t)
	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 9}, testLogger())
	cfg := Config{Rounds: 3, Shots: 50, TimeSlice: 3 * math.Pi / 8}

	cfg.Scheme = "exact"
	exact, err := NewEstimator(sim, cfg, testLogger()).Estimate(context.Background(), h, zeroState{})
	require.NoError(t, err)

	cfg.Scheme = "trotter"
	cfg.Order = 1
	trotter, err := NewEstimator(sim, cfg, testLogger()).Estimate(context.Background(), h, zeroState{})
	require.NoError(t, err)

	assert.Equal(t, exact.Bits, trotter.Bits)
	assert.InDelta(t, exact.Energy, trotter.Energy, 1e-9)
}

func TestEstimateDeterministicOnFixedTrace(t *testing.T) {
	// Replaying identical per-round outcome distributions must yield the
	// same bit sequence and phase every time.
	h := testingpkg.SingleZHamiltonian(t)
	cfg := Config{Rounds: 4, Shots: 100, TimeSlice: 1, Scheme: "exact"}

	trace := []backend.Counts{
		{"1": 70, "0": 30},
		{"1": 45, "0": 55},
		{"1": 90, "0": 10},
		{"1": 50, "0": 50},
	}

	first, err := NewEstimator(testingpkg.NewScriptedBackend(trace...), cfg, testLogger()).
		Estimate(context.Background(), h, zeroState{})
	require.NoError(t, err)

	second, err := NewEstimator(testingpkg.NewScriptedBackend(trace...), cfg, testLogger()).
		Estimate(context.Background(), h, zeroState{})
	require.NoError(t, err)

	// Rounds run 4..1, so the trace resolves bits LSB-first: 1, 0, 1, 0.
	assert.Equal(t, []int{0, 1, 0, 1}, first.Bits)
	assert.Equal(t, first.Bits, second.Bits)
	assert.Equal(t, first.Phase, second.Phase)
	assert.Equal(t, first.Energy, second.Energy)
}

func TestEstimateWrapsBackendFailures(t *testing.T) {
	h := testingpkg.SingleZHamiltonian(t)
	failing := &testingpkg.FailingBackend{Err: backend.ErrUnavailable}

	est := NewEstimator(failing, Config{Rounds: 4, Shots: 10, TimeSlice: 1}, testLogger())
	_, err := est.Estimate(context.Background(), h, zeroState{})

	var roundErr *RoundError
	require.ErrorAs(t, err, &roundErr)
	assert.Equal(t, 4, roundErr.Round)
	assert.Empty(t, roundErr.Bits)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}
