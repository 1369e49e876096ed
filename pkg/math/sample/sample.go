package sample

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func readBits(rand io.Reader, buf []byte) error {
	var err error
	for i := 0; i < maxIterations; i++ {
		if _, err = io.ReadFull(rand, buf); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrMaxIterations, err)
}

// Scalar returns a scalar sampled from rand, with negligible bias.
//
// It only fails when rand does.
func Scalar(rand io.Reader, group curve.Curve) (curve.Scalar, error) {
	buffer := make([]byte, group.SafeScalarBytes())
	if err := readBits(rand, buffer); err != nil {
		return nil, err
	}
	n := new(saferith.Nat).SetBytes(buffer)
	return group.NewScalar().SetNat(n), nil
}

// NonZeroScalar is like Scalar, but never returns 0.
func NonZeroScalar(rand io.Reader, group curve.Curve) (curve.Scalar, error) {
	for i := 0; i < maxIterations; i++ {
		s, err := Scalar(rand, group)
		if err != nil {
			return nil, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
	return nil, errors.New("sample: reader keeps producing zero scalars")
}

// ScalarPointPair returns a random non-zero scalar x, and X = x⋅G.
func ScalarPointPair(rand io.Reader, group curve.Curve) (curve.Scalar, curve.Point, error) {
	s, err := NonZeroScalar(rand, group)
	if err != nil {
		return nil, nil, err
	}
	return s, s.ActOnBase(), nil
}

// Scalars returns n independent scalars.
func Scalars(rand io.Reader, group curve.Curve, n int) ([]curve.Scalar, error) {
	out := make([]curve.Scalar, n)
	for i := range out {
		s, err := Scalar(rand, group)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Uint64n returns a uniform integer in [0, n), using rejection sampling.
//
// n must be positive.
func Uint64n(rand io.Reader, n uint64) (uint64, error) {
	if n == 0 {
		return 0, errors.New("sample: Uint64n called with n = 0")
	}
	// largest multiple of n that fits, values above it are rejected
	limit := ^uint64(0) - (^uint64(0) % n)
	var buf [8]byte
	for i := 0; i < maxIterations; i++ {
		if err := readBits(rand, buf[:]); err != nil {
			return 0, err
		}
		x := uint64(buf[0])<<56 | uint64(buf[1])<<48 | uint64(buf[2])<<40 | uint64(buf[3])<<32 |
			uint64(buf[4])<<24 | uint64(buf[5])<<16 | uint64(buf[6])<<8 | uint64(buf[7])
		if x < limit {
			return x % n, nil
		}
	}
	return 0, ErrMaxIterations
}
