package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents the prime order group used by the card protocol.
//
// All of the protocol logic is written against this interface, so that the
// same code runs over any concrete group.
type Curve interface {
	// NewPoint returns the identity element.
	NewPoint() Point
	// NewBasePoint returns the fixed generator G.
	NewBasePoint() Point
	// NewScalar returns the zero scalar.
	NewScalar() Scalar
	// Name returns the name of this group.
	Name() string
	// ScalarBits returns the number of bits needed to represent a scalar.
	ScalarBits() int
	// SafeScalarBytes returns the number of random bytes to sample so that
	// reducing them modulo the order produces a statistically uniform scalar.
	SafeScalarBytes() int
	// Order returns the order of the group.
	Order() *saferith.Modulus
	// PointBytes is the length of the canonical encoding of a point.
	PointBytes() int
	// ScalarBytes is the length of the canonical encoding of a scalar.
	ScalarBytes() int
	// HashToPoint maps data to a point whose discrete logarithm is unknown.
	//
	// The same domain and data always produce the same point.
	HashToPoint(domain string, data []byte) Point
}

// Scalar represents an element of the field of scalars of a Curve.
//
// Arithmetic methods modify the receiver and return it.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	// Curve returns the group this scalar belongs to.
	Curve() Curve
	// Add sets s = s + t and returns s.
	Add(Scalar) Scalar
	// Sub sets s = s - t and returns s.
	Sub(Scalar) Scalar
	// Mul sets s = s * t and returns s.
	Mul(Scalar) Scalar
	// Invert sets s = 1/s and returns s.
	Invert() Scalar
	// Negate sets s = -s and returns s.
	Negate() Scalar
	Equal(Scalar) bool
	IsZero() bool
	// Set sets s = t and returns s.
	Set(Scalar) Scalar
	// SetNat sets s = x mod q and returns s.
	SetNat(*saferith.Nat) Scalar
	// Act returns s⋅P as a new point.
	Act(Point) Point
	// ActOnBase returns s⋅G as a new point.
	ActOnBase() Point
}

// Point represents an element of a Curve.
//
// Apart from Set and UnmarshalBinary, methods never modify the receiver or
// their arguments, so points can be shared between goroutines.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	// Curve returns the group this point belongs to.
	Curve() Curve
	// Add returns p + q as a new point.
	Add(Point) Point
	// Sub returns p - q as a new point.
	Sub(Point) Point
	// Negate returns -p as a new point.
	Negate() Point
	// Set sets p = q and returns p.
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
}

// MultiScalarMult returns ∑ᵢ scalars[i]⋅points[i].
//
// The two slices must have the same length.
func MultiScalarMult(group Curve, scalars []Scalar, points []Point) Point {
	out := group.NewPoint()
	for i := range scalars {
		out = out.Add(scalars[i].Act(points[i]))
	}
	return out
}

// Sum returns the sum of all points, or the identity if there are none.
func Sum(group Curve, points ...Point) Point {
	out := group.NewPoint()
	for _, p := range points {
		out = out.Add(p)
	}
	return out
}

// ScalarFromUint64 returns x as a scalar of the given group.
func ScalarFromUint64(group Curve, x uint64) Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(x))
}

// FromName returns the group with the given name, or nil if it is unknown.
func FromName(name string) Curve {
	switch name {
	case Secp256k1{}.Name():
		return Secp256k1{}
	case Ristretto255{}.Name():
		return Ristretto255{}
	default:
		return nil
	}
}
