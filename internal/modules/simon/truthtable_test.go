package simon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTruthTableValidation(t *testing.T) {
	t.Run("rejects empty table", func(t *testing.T) {
		_, err := NewTruthTable(nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-power-of-two rows", func(t *testing.T) {
		_, err := NewTruthTable([]string{"011"})
		assert.Error(t, err)
	})

	t.Run("rejects mismatched row lengths", func(t *testing.T) {
		_, err := NewTruthTable([]string{"0110", "01"})
		assert.Error(t, err)
	})

	t.Run("rejects non-binary symbols", func(t *testing.T) {
		_, err := NewTruthTable([]string{"01x0"})
		assert.Error(t, err)
	})

	t.Run("accepts a valid table", func(t *testing.T) {
		table, err := NewTruthTable([]string{"0110", "1100"})
		require.NoError(t, err)
		assert.Equal(t, 2, table.InputBits())
		assert.Equal(t, 2, table.OutputBits())
	})
}

func TestEvalReadsRowsAsOutputBits(t *testing.T) {
	table, err := NewTruthTable([]string{"0110", "1100"})
	require.NoError(t, err)

	// f(0) = bit0 '0', bit1 '1' -> 2; f(1) = '1','1' -> 3.
	assert.Equal(t, 2, table.Eval(0))
	assert.Equal(t, 3, table.Eval(1))
	assert.Equal(t, 1, table.Eval(2))
	assert.Equal(t, 0, table.Eval(3))
}

func TestMaskByCollision(t *testing.T) {
	// A 2-to-1 function over three input bits with hidden mask 011: inputs
	// x and x XOR 3 always collide.
	table, err := NewTruthTable([]string{
		"01101001",
		"10011001",
		"01100110",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, table.MaskByCollision())
	assert.True(t, table.Verify(3))
	assert.False(t, table.Verify(1))
	assert.True(t, table.Verify(0))
}

func TestMaskByCollisionInjective(t *testing.T) {
	// The identity permutation has no collisions.
	table, err := FromMask(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, table.MaskByCollision())
}

func TestFromMask(t *testing.T) {
	t.Run("encodes the mask consistently", func(t *testing.T) {
		table, err := FromMask(5, 3)
		require.NoError(t, err)

		assert.True(t, table.Verify(5))
		assert.Equal(t, 5, table.MaskByCollision())
		for x := 0; x < 8; x++ {
			assert.Equal(t, table.Eval(x), table.Eval(x^5))
		}
	})

	t.Run("zero mask yields the identity permutation", func(t *testing.T) {
		table, err := FromMask(0, 3)
		require.NoError(t, err)
		for x := 0; x < 8; x++ {
			assert.Equal(t, x, table.Eval(x))
		}
	})

	t.Run("validates inputs", func(t *testing.T) {
		_, err := FromMask(0, 0)
		assert.Error(t, err)

		_, err = FromMask(0, 17)
		assert.Error(t, err)

		_, err = FromMask(8, 3)
		assert.Error(t, err)
	})
}

func TestBitString(t *testing.T) {
	assert.Equal(t, "011", BitString(3, 3))
	assert.Equal(t, "101", BitString(5, 3))
	assert.Equal(t, "00", BitString(0, 2))
	assert.Equal(t, "0001", BitString(1, 4))
}
