package permutation

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/math/sample"
)

// ErrInvalid is returned when a list of indices is not a permutation.
var ErrInvalid = errors.New("permutation: not a permutation")

// Permutation maps output positions to input positions.
//
// Applied to a slice xs, the result at position i is xs[p[i]].
type Permutation []int

// New validates indices as a permutation of 0..len(indices)-1 and returns a copy.
func New(indices []int) (Permutation, error) {
	seen := make([]bool, len(indices))
	for i, j := range indices {
		if j < 0 || j >= len(indices) {
			return nil, fmt.Errorf("%w: index %d at position %d out of range", ErrInvalid, j, i)
		}
		if seen[j] {
			return nil, fmt.Errorf("%w: index %d repeated", ErrInvalid, j)
		}
		seen[j] = true
	}
	out := make(Permutation, len(indices))
	copy(out, indices)
	return out, nil
}

// Identity returns the permutation leaving n elements in place.
func Identity(n int) Permutation {
	out := make(Permutation, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Sample returns a uniformly random permutation of n elements, using a
// Fisher-Yates shuffle driven by rand.
func Sample(rand io.Reader, n int) (Permutation, error) {
	out := Identity(n)
	for i := n - 1; i > 0; i-- {
		j, err := sample.Uint64n(rand, uint64(i+1))
		if err != nil {
			return nil, fmt.Errorf("permutation.Sample: %w", err)
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Size returns the number of elements permuted.
func (p Permutation) Size() int {
	return len(p)
}

// Inverse returns q such that q[p[i]] = i.
func (p Permutation) Inverse() Permutation {
	out := make(Permutation, len(p))
	for i, j := range p {
		out[j] = i
	}
	return out
}

// Equal checks whether both permutations map every position identically.
func (p Permutation) Equal(q Permutation) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Apply returns a new slice out with out[i] = xs[p[i]].
//
// xs must have exactly Size() elements.
func Apply[T any](p Permutation, xs []T) ([]T, error) {
	if len(xs) != len(p) {
		return nil, fmt.Errorf("%w: permutation of %d elements applied to %d", ErrInvalid, len(p), len(xs))
	}
	out := make([]T, len(xs))
	for i, j := range p {
		out[i] = xs[j]
	}
	return out, nil
}

// MarshalBinary encodes p as a sequence of 4 byte big-endian indices.
func (p Permutation) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4*len(p))
	for i, j := range p {
		binary.BigEndian.PutUint32(out[4*i:], uint32(j))
	}
	return out, nil
}

// UnmarshalBinary decodes and validates an encoding produced by MarshalBinary.
func (p *Permutation) UnmarshalBinary(data []byte) error {
	if len(data)%4 != 0 {
		return fmt.Errorf("%w: encoding length %d is not a multiple of 4", ErrInvalid, len(data))
	}
	indices := make([]int, len(data)/4)
	for i := range indices {
		x := binary.BigEndian.Uint32(data[4*i:])
		if uint64(x) >= uint64(len(indices)) {
			return fmt.Errorf("%w: index %d out of range", ErrInvalid, x)
		}
		indices[i] = int(x)
	}
	q, err := New(indices)
	if err != nil {
		return err
	}
	*p = q
	return nil
}
