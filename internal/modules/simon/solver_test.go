package simon

import (
	"context"
	"testing"

	"github.com/pedrorrivero/qlab/internal/modules/backend"
	testingpkg "github.com/pedrorrivero/qlab/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestRecoverHiddenMask(t *testing.T) {
	table, err := FromMask(3, 3)
	require.NoError(t, err)

	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 11}, testLogger())
	solver := NewSolver(sim, Config{Shots: 64, Budget: 10}, testLogger())

	var seen []string
	solver.OnConstraint = func(vector string, collected int) {
		seen = append(seen, vector)
	}

	result, err := solver.Recover(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "011", result.Mask)
	assert.True(t, result.Verified)
	assert.Len(t, result.Constraints, 2)
	assert.Len(t, seen, 2)
	assert.GreaterOrEqual(t, result.Rounds, 1)
}

func TestRecoverAccumulatesAcrossRounds(t *testing.T) {
	// One shot per round forces the solver to gather its constraints over
	// many submissions of the same circuit. Each round must draw fresh
	// samples; if the backend replayed identical counts every round the
	// basis could never grow past round one.
	table, err := FromMask(3, 3)
	require.NoError(t, err)

	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 11}, testLogger())
	solver := NewSolver(sim, Config{Shots: 1, Budget: 200}, testLogger())

	result, err := solver.Recover(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "011", result.Mask)
	assert.True(t, result.Verified)
	assert.Len(t, result.Constraints, 2)
	assert.Greater(t, result.Rounds, 1)
}

func TestRecoverTwoToOneTable(t *testing.T) {
	// An explicit 2-to-1 table rather than an oracle-built one: colliding
	// input pairs all differ by 011, so that mask must come back verified.
	table, err := NewTruthTable([]string{
		"01101001",
		"10011001",
		"01100110",
	})
	require.NoError(t, err)

	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 11}, testLogger())
	solver := NewSolver(sim, Config{Shots: 64, Budget: 10}, testLogger())

	result, err := solver.Recover(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "011", result.Mask)
	assert.True(t, result.Verified)
	assert.Len(t, result.Constraints, 2)
}

func TestRecoverInjectiveFunction(t *testing.T) {
	// The identity permutation satisfies the promise with the zero mask.
	// The measured constraints still solve to a nonzero candidate; the
	// classical cross-check rejects it and the mask collapses to zero.
	table, err := FromMask(0, 2)
	require.NoError(t, err)

	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 11}, testLogger())
	solver := NewSolver(sim, Config{Shots: 64, Budget: 10}, testLogger())

	result, err := solver.Recover(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "00", result.Mask)
	assert.False(t, result.Verified)
}

func TestRecoverPermutationTable(t *testing.T) {
	// A hand-written 1-to-1 table over three input bits: every output is
	// distinct, so the recovered mask must be the all-zero vector.
	table, err := NewTruthTable([]string{
		"00011110",
		"01100110",
		"10101010",
	})
	require.NoError(t, err)
	require.Equal(t, 0, table.MaskByCollision())

	sim := backend.NewSimulator(backend.SimulatorConfig{Seed: 11}, testLogger())
	solver := NewSolver(sim, Config{Shots: 64, Budget: 10}, testLogger())

	result, err := solver.Recover(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "000", result.Mask)
	assert.False(t, result.Verified)
}

func TestRecoverUnderconstrained(t *testing.T) {
	// A backend stuck on a single outcome never yields the second
	// independent constraint a three-bit mask needs.
	table, err := FromMask(3, 3)
	require.NoError(t, err)

	scripted := testingpkg.NewScriptedBackend(backend.Counts{"100": 64})
	solver := NewSolver(scripted, Config{Shots: 64, Budget: 5}, testLogger())

	_, err = solver.Recover(context.Background(), table)
	require.ErrorIs(t, err, ErrUnderconstrained)
	assert.Equal(t, 5, scripted.Runs())
}

func TestRecoverNoInformation(t *testing.T) {
	// All-zero outcomes constrain nothing; the budget runs out and the
	// promise forces the 1-to-1 reading.
	table, err := FromMask(3, 3)
	require.NoError(t, err)

	scripted := testingpkg.NewScriptedBackend(backend.Counts{"000": 64})
	solver := NewSolver(scripted, Config{Shots: 64, Budget: 4}, testLogger())

	result, err := solver.Recover(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "000", result.Mask)
	assert.Empty(t, result.Constraints)
	assert.Equal(t, 4, result.Rounds)
	assert.True(t, result.Verified)
}

func TestRecoverBackendFailure(t *testing.T) {
	table, err := FromMask(3, 3)
	require.NoError(t, err)

	failing := &testingpkg.FailingBackend{Err: backend.ErrUnavailable}
	solver := NewSolver(failing, Config{Shots: 64, Budget: 5}, testLogger())

	_, err = solver.Recover(context.Background(), table)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestBuildCircuitLayout(t *testing.T) {
	table, err := FromMask(3, 3)
	require.NoError(t, err)

	scripted := testingpkg.NewScriptedBackend(backend.Counts{"110": 8, "001": 8})
	solver := NewSolver(scripted, Config{Shots: 8, Budget: 3}, testLogger())

	result, err := solver.Recover(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, "011", result.Mask)

	require.NotEmpty(t, scripted.Circuits)
	c := scripted.Circuits[0]
	assert.Equal(t, 6, c.NumQubits)
}
