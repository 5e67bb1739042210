// Package simon provides the oracle-driven period-finding solver: it
// recovers a hidden XOR mask from a black-box function promised to be
// 1-to-1 or exactly 2-to-1.
package simon

import (
	"fmt"
	"math/bits"
	"strings"
)

// TruthTable describes a boolean function f over a power-of-two domain.
// Row j is a bitstring giving output bit j for every input: rows[j][x] is
// bit j of f(x). This matches the column-per-input layout used when tables
// are written out by hand.
type TruthTable struct {
	inputBits int
	rows      []string
}

// NewTruthTable builds a table from one bitstring per output bit. All rows
// must share the same power-of-two length.
func NewTruthTable(rows []string) (*TruthTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("truth table requires at least one output row")
	}

	size := len(rows[0])
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("truth table row length must be a power of two >= 2, got %d", size)
	}

	for j, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("row %d has length %d, expected %d", j, len(row), size)
		}
		for _, c := range row {
			if c != '0' && c != '1' {
				return nil, fmt.Errorf("row %d contains non-binary symbol %q", j, c)
			}
		}
	}

	return &TruthTable{
		inputBits: bits.Len(uint(size)) - 1,
		rows:      append([]string(nil), rows...),
	}, nil
}

// FromMask encodes a mask into a consistent truth table: inputs x and
// x XOR mask share an output, and distinct pairs get distinct outputs.
// A zero mask yields the identity permutation (a 1-to-1 table).
func FromMask(mask, inputBits int) (*TruthTable, error) {
	if inputBits < 1 || inputBits > 16 {
		return nil, fmt.Errorf("input width must be in [1,16], got %d", inputBits)
	}
	if mask < 0 || mask >= 1<<inputBits {
		return nil, fmt.Errorf("mask %d out of range for %d input bits", mask, inputBits)
	}

	size := 1 << inputBits
	values := make([]int, size)
	next := 0
	for x := 0; x < size; x++ {
		partner := x ^ mask
		if partner < x {
			values[x] = values[partner]
			continue
		}
		values[x] = next
		next++
	}

	rows := make([]string, inputBits)
	for j := 0; j < inputBits; j++ {
		var sb strings.Builder
		for x := 0; x < size; x++ {
			sb.WriteByte(byte('0' + ((values[x] >> j) & 1)))
		}
		rows[j] = sb.String()
	}

	return NewTruthTable(rows)
}

// InputBits returns the input bit-width n.
func (t *TruthTable) InputBits() int { return t.inputBits }

// OutputBits returns the number of output bits.
func (t *TruthTable) OutputBits() int { return len(t.rows) }

// Eval computes f(x).
func (t *TruthTable) Eval(x int) int {
	out := 0
	for j, row := range t.rows {
		if row[x] == '1' {
			out |= 1 << j
		}
	}
	return out
}

// Verify reports whether the table is XOR-invariant under the mask:
// f(x) == f(x XOR mask) for every input. A zero mask trivially verifies.
func (t *TruthTable) Verify(mask int) bool {
	size := 1 << t.inputBits
	for x := 0; x < size; x++ {
		if t.Eval(x) != t.Eval(x^mask) {
			return false
		}
	}
	return true
}

// MaskByCollision recovers the mask classically by pairwise column-collision
// search: any two inputs with equal outputs differ by the mask. Returns zero
// when the table is injective. Used as the independent cross-check for the
// quantum solver.
func (t *TruthTable) MaskByCollision() int {
	size := 1 << t.inputBits
	for x := 0; x < size; x++ {
		for y := x + 1; y < size; y++ {
			if t.Eval(x) == t.Eval(y) {
				return x ^ y
			}
		}
	}
	return 0
}

// BitString renders a vector MSB-first at the given width, the layout used
// in run records and tests ("011" for the value 3 over 3 bits).
func BitString(v, width int) string {
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		buf[i] = byte('0' + ((v >> (width - 1 - i)) & 1))
	}
	return string(buf)
}
