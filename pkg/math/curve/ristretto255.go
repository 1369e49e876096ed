package curve

import (
	"encoding/hex"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/gtank/ristretto255"
	"github.com/zeebo/blake3"
)

var ristretto255Order *saferith.Modulus

func init() {
	order, err := hex.DecodeString("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed")
	if err != nil {
		panic(err)
	}
	ristretto255Order = saferith.ModulusFromBytes(order)
}

const (
	ristretto255ScalarBytes = 32
	ristretto255PointBytes  = 32
)

// Ristretto255 is the prime order group built on top of edwards25519.
type Ristretto255 struct{}

func (Ristretto255) NewPoint() Point {
	out := new(Ristretto255Point)
	out.value.Zero()
	return out
}

func (Ristretto255) NewBasePoint() Point {
	out := new(Ristretto255Point)
	out.value.Base()
	return out
}

func (Ristretto255) NewScalar() Scalar {
	out := new(Ristretto255Scalar)
	out.value.Zero()
	return out
}

func (Ristretto255) Name() string {
	return "ristretto255"
}

func (Ristretto255) ScalarBits() int {
	return 253
}

func (Ristretto255) SafeScalarBytes() int {
	return 64
}

func (Ristretto255) Order() *saferith.Modulus {
	return ristretto255Order
}

func (Ristretto255) PointBytes() int {
	return ristretto255PointBytes
}

func (Ristretto255) ScalarBytes() int {
	return ristretto255ScalarBytes
}

// HashToPoint uses the ristretto255 one-way map on 64 bytes of BLAKE3 output.
func (Ristretto255) HashToPoint(domain string, data []byte) Point {
	var uniform [64]byte
	h := blake3.New()
	_, _ = h.Write(lengthPrefixed([]byte(domain)))
	_, _ = h.Write(lengthPrefixed(data))
	_, _ = h.Digest().Read(uniform[:])
	out := new(Ristretto255Point)
	out.value.FromUniformBytes(uniform[:])
	return out
}

// Ristretto255Scalar is a scalar modulo the order of ristretto255.
type Ristretto255Scalar struct {
	value ristretto255.Scalar
}

func ristretto255CastScalar(generic Scalar) *Ristretto255Scalar {
	out, ok := generic.(*Ristretto255Scalar)
	if !ok {
		panic(fmt.Sprintf("failed to convert to ristretto255Scalar: %v", generic))
	}
	return out
}

func (*Ristretto255Scalar) Curve() Curve {
	return Ristretto255{}
}

// MarshalBinary returns the 32 byte little-endian encoding of s.
func (s *Ristretto255Scalar) MarshalBinary() ([]byte, error) {
	return s.value.Bytes(), nil
}

// UnmarshalBinary rejects encodings which are not exactly 32 bytes, or are not reduced.
func (s *Ristretto255Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != ristretto255ScalarBytes {
		return fmt.Errorf("invalid length for ristretto255 scalar: %d", len(data))
	}
	if _, err := s.value.SetCanonicalBytes(data); err != nil {
		return fmt.Errorf("ristretto255 scalar: %w", err)
	}
	return nil
}

func (s *Ristretto255Scalar) Add(that Scalar) Scalar {
	other := ristretto255CastScalar(that)

	s.value.Add(&s.value, &other.value)
	return s
}

func (s *Ristretto255Scalar) Sub(that Scalar) Scalar {
	other := ristretto255CastScalar(that)

	s.value.Subtract(&s.value, &other.value)
	return s
}

func (s *Ristretto255Scalar) Mul(that Scalar) Scalar {
	other := ristretto255CastScalar(that)

	s.value.Multiply(&s.value, &other.value)
	return s
}

func (s *Ristretto255Scalar) Invert() Scalar {
	s.value.Invert(&s.value)
	return s
}

func (s *Ristretto255Scalar) Negate() Scalar {
	s.value.Negate(&s.value)
	return s
}

func (s *Ristretto255Scalar) Equal(that Scalar) bool {
	other, ok := that.(*Ristretto255Scalar)
	if !ok {
		return false
	}
	return s.value.Equal(&other.value) == 1
}

func (s *Ristretto255Scalar) IsZero() bool {
	var zero ristretto255.Scalar
	zero.Zero()
	return s.value.Equal(&zero) == 1
}

func (s *Ristretto255Scalar) Set(that Scalar) Scalar {
	other := ristretto255CastScalar(that)

	s.value = other.value
	return s
}

func (s *Ristretto255Scalar) SetNat(x *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(x, ristretto255Order)
	be := reduced.Bytes()
	le := make([]byte, ristretto255ScalarBytes)
	for i := range be {
		le[len(be)-1-i] = be[i]
	}
	if _, err := s.value.SetCanonicalBytes(le); err != nil {
		panic(fmt.Sprintf("ristretto255Scalar.SetNat: reduced value rejected: %v", err))
	}
	return s
}

func (s *Ristretto255Scalar) Act(that Point) Point {
	other := ristretto255CastPoint(that)
	out := new(Ristretto255Point)
	out.value.ScalarMult(&s.value, &other.value)
	return out
}

func (s *Ristretto255Scalar) ActOnBase() Point {
	out := new(Ristretto255Point)
	out.value.ScalarBaseMult(&s.value)
	return out
}

// Ristretto255Point is an element of the ristretto255 group.
type Ristretto255Point struct {
	value ristretto255.Element
}

func ristretto255CastPoint(generic Point) *Ristretto255Point {
	out, ok := generic.(*Ristretto255Point)
	if !ok {
		panic(fmt.Sprintf("failed to convert to ristretto255Point: %v", generic))
	}
	return out
}

func (*Ristretto255Point) Curve() Curve {
	return Ristretto255{}
}

// MarshalBinary returns the 32 byte canonical encoding of p.
func (p *Ristretto255Point) MarshalBinary() ([]byte, error) {
	return p.value.Bytes(), nil
}

// UnmarshalBinary accepts only canonical encodings of group elements.
func (p *Ristretto255Point) UnmarshalBinary(data []byte) error {
	if len(data) != ristretto255PointBytes {
		return fmt.Errorf("invalid length for ristretto255Point: %d", len(data))
	}
	if _, err := p.value.SetCanonicalBytes(data); err != nil {
		return fmt.Errorf("ristretto255Point.UnmarshalBinary: %w", err)
	}
	return nil
}

func (p *Ristretto255Point) Add(that Point) Point {
	other := ristretto255CastPoint(that)

	out := new(Ristretto255Point)
	out.value.Add(&p.value, &other.value)
	return out
}

func (p *Ristretto255Point) Sub(that Point) Point {
	other := ristretto255CastPoint(that)

	out := new(Ristretto255Point)
	out.value.Subtract(&p.value, &other.value)
	return out
}

func (p *Ristretto255Point) Negate() Point {
	out := new(Ristretto255Point)
	out.value.Negate(&p.value)
	return out
}

func (p *Ristretto255Point) Set(that Point) Point {
	other := ristretto255CastPoint(that)

	p.value = other.value
	return p
}

func (p *Ristretto255Point) Equal(that Point) bool {
	other, ok := that.(*Ristretto255Point)
	if !ok {
		return false
	}
	return p.value.Equal(&other.value) == 1
}

func (p *Ristretto255Point) IsIdentity() bool {
	var identity ristretto255.Element
	identity.Zero()
	return p.value.Equal(&identity) == 1
}
