package simon

import "math/bits"

// Basis maintains a set of linearly independent vectors over GF(2), kept in
// reduced row-echelon form so independence testing and back-substitution
// are both cheap. Vectors are packed into uint64 words; bit i is input bit i.
type Basis struct {
	rows []uint64
}

// Insert reduces v against the basis and adds the remainder when it is
// nonzero. It reports whether the basis grew: inserting a vector already in
// the span never changes the basis.
func (b *Basis) Insert(v uint64) bool {
	for _, row := range b.rows {
		if v&highBit(row) != 0 {
			v ^= row
		}
	}
	if v == 0 {
		return false
	}

	// Eliminate the new pivot from existing rows to stay fully reduced.
	pivot := highBit(v)
	for i, row := range b.rows {
		if row&pivot != 0 {
			b.rows[i] = row ^ v
		}
	}

	// Keep rows ordered by descending pivot.
	inserted := false
	for i, row := range b.rows {
		if highBit(row) < pivot {
			b.rows = append(b.rows[:i], append([]uint64{v}, b.rows[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		b.rows = append(b.rows, v)
	}
	return true
}

// Size returns the number of independent vectors collected.
func (b *Basis) Size() int { return len(b.rows) }

// Vectors returns a copy of the reduced rows.
func (b *Basis) Vectors() []uint64 {
	return append([]uint64(nil), b.rows...)
}

// NullVector solves the homogeneous system row·s = 0 (mod 2) for a nonzero
// s of the given width by back-substitution over the reduced rows. With
// width-1 independent rows the solution is unique up to the zero vector;
// with fewer rows the lowest free column is fixed to 1 and the rest to 0.
// Returns 0 only when the rows span the full space.
func (b *Basis) NullVector(width int) uint64 {
	pivots := uint64(0)
	for _, row := range b.rows {
		pivots |= highBit(row)
	}

	// Pick the lowest non-pivot column as the free variable.
	free := -1
	for i := 0; i < width; i++ {
		if pivots&(1<<i) == 0 {
			free = i
			break
		}
	}
	if free == -1 {
		return 0
	}

	s := uint64(1) << free
	for _, row := range b.rows {
		if parity(row&s) == 1 {
			s |= highBit(row)
		}
	}
	return s
}

func highBit(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	return 1 << (bits.Len64(v) - 1)
}

func parity(v uint64) int {
	return bits.OnesCount64(v) & 1
}
