package curve

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zeebo/blake3"
)

var secp256k1BaseX, secp256k1BaseY secp256k1.FieldVal
var secp256k1Order *saferith.Modulus

func init() {
	secp256k1BaseX.SetByteSlice(secp256k1.Params().Gx.Bytes())
	secp256k1BaseY.SetByteSlice(secp256k1.Params().Gy.Bytes())
	secp256k1Order = saferith.ModulusFromBytes(secp256k1.Params().N.Bytes())
}

const (
	secp256k1ScalarBytes = 32
	// 0x04 ∥ X ∥ Y
	secp256k1PointBytes = 65
)

// Secp256k1 is the secp256k1 group, backed by decred's implementation.
type Secp256k1 struct{}

func (Secp256k1) NewPoint() Point {
	return new(Secp256k1Point)
}

func (Secp256k1) NewBasePoint() Point {
	out := new(Secp256k1Point)
	out.value.X.Set(&secp256k1BaseX)
	out.value.Y.Set(&secp256k1BaseY)
	out.value.Z.SetInt(1)
	return out
}

func (Secp256k1) NewScalar() Scalar {
	return new(Secp256k1Scalar)
}

func (Secp256k1) Name() string {
	return "secp256k1"
}

func (Secp256k1) ScalarBits() int {
	return 256
}

func (Secp256k1) SafeScalarBytes() int {
	return 64
}

func (Secp256k1) Order() *saferith.Modulus {
	return secp256k1Order
}

func (Secp256k1) PointBytes() int {
	return secp256k1PointBytes
}

func (Secp256k1) ScalarBytes() int {
	return secp256k1ScalarBytes
}

// HashToPoint uses try-and-increment on the x coordinate.
//
// Roughly half of all field elements are valid x coordinates, so this
// terminates after a couple of attempts.
func (Secp256k1) HashToPoint(domain string, data []byte) Point {
	var (
		x, y secp256k1.FieldVal
		ctr  [4]byte
		buf  [32]byte
	)
	for i := uint32(0); ; i++ {
		binary.BigEndian.PutUint32(ctr[:], i)
		h := blake3.New()
		_, _ = h.Write(lengthPrefixed([]byte(domain)))
		_, _ = h.Write(lengthPrefixed(data))
		_, _ = h.Write(ctr[:])
		_, _ = h.Digest().Read(buf[:])
		if overflow := x.SetByteSlice(buf[:]); overflow {
			continue
		}
		if !secp256k1.DecompressY(&x, false, &y) {
			continue
		}
		out := new(Secp256k1Point)
		out.value.X.Set(&x)
		out.value.Y.Set(y.Normalize())
		out.value.Z.SetInt(1)
		return out
	}
}

func lengthPrefixed(data []byte) []byte {
	out := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(out, uint64(len(data)))
	copy(out[8:], data)
	return out
}

// Secp256k1Scalar is a scalar modulo the order of secp256k1.
type Secp256k1Scalar struct {
	value secp256k1.ModNScalar
}

func secp256k1CastScalar(generic Scalar) *Secp256k1Scalar {
	out, ok := generic.(*Secp256k1Scalar)
	if !ok {
		panic(fmt.Sprintf("failed to convert to secp256k1Scalar: %v", generic))
	}
	return out
}

func (*Secp256k1Scalar) Curve() Curve {
	return Secp256k1{}
}

// MarshalBinary returns the 32 byte big-endian encoding of s.
func (s *Secp256k1Scalar) MarshalBinary() ([]byte, error) {
	data := s.value.Bytes()
	return data[:], nil
}

// UnmarshalBinary rejects encodings which are not exactly 32 bytes, or are not reduced.
func (s *Secp256k1Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != secp256k1ScalarBytes {
		return fmt.Errorf("invalid length for secp256k1 scalar: %d", len(data))
	}
	var value secp256k1.ModNScalar
	if overflow := value.SetByteSlice(data); overflow {
		return errors.New("secp256k1 scalar is not reduced")
	}
	s.value.Set(&value)
	return nil
}

func (s *Secp256k1Scalar) Add(that Scalar) Scalar {
	other := secp256k1CastScalar(that)

	s.value.Add(&other.value)
	return s
}

func (s *Secp256k1Scalar) Sub(that Scalar) Scalar {
	other := secp256k1CastScalar(that)

	var negated secp256k1.ModNScalar
	negated.NegateVal(&other.value)
	s.value.Add(&negated)
	return s
}

func (s *Secp256k1Scalar) Mul(that Scalar) Scalar {
	other := secp256k1CastScalar(that)

	s.value.Mul(&other.value)
	return s
}

func (s *Secp256k1Scalar) Invert() Scalar {
	s.value.InverseNonConst()
	return s
}

func (s *Secp256k1Scalar) Negate() Scalar {
	s.value.Negate()
	return s
}

func (s *Secp256k1Scalar) Equal(that Scalar) bool {
	other, ok := that.(*Secp256k1Scalar)
	if !ok {
		return false
	}
	return s.value.Equals(&other.value)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.value.IsZero()
}

func (s *Secp256k1Scalar) Set(that Scalar) Scalar {
	other := secp256k1CastScalar(that)

	s.value.Set(&other.value)
	return s
}

func (s *Secp256k1Scalar) SetNat(x *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(x, secp256k1Order)
	s.value.SetByteSlice(reduced.Bytes())
	return s
}

func (s *Secp256k1Scalar) Act(that Point) Point {
	other := secp256k1CastPoint(that)
	out := new(Secp256k1Point)
	secp256k1.ScalarMultNonConst(&s.value, &other.value, &out.value)
	return out
}

func (s *Secp256k1Scalar) ActOnBase() Point {
	out := new(Secp256k1Point)
	secp256k1.ScalarBaseMultNonConst(&s.value, &out.value)
	return out
}

// Secp256k1Point is a point on secp256k1 in Jacobian coordinates.
type Secp256k1Point struct {
	value secp256k1.JacobianPoint
}

func secp256k1CastPoint(generic Point) *Secp256k1Point {
	out, ok := generic.(*Secp256k1Point)
	if !ok {
		panic(fmt.Sprintf("failed to convert to secp256k1Point: %v", generic))
	}
	return out
}

func (*Secp256k1Point) Curve() Curve {
	return Secp256k1{}
}

// affine returns a normalized copy of p, leaving p untouched.
//
// The second return value is false when p is the identity.
func (p *Secp256k1Point) affine() (secp256k1.JacobianPoint, bool) {
	var v secp256k1.JacobianPoint
	if p.IsIdentity() {
		return v, false
	}
	v.Set(&p.value)
	v.ToAffine()
	return v, true
}

// MarshalBinary returns the 65 byte uncompressed encoding 0x04 ∥ X ∥ Y.
//
// The identity is encoded as 65 zero bytes.
func (p *Secp256k1Point) MarshalBinary() ([]byte, error) {
	v, ok := p.affine()
	if !ok {
		return make([]byte, secp256k1PointBytes), nil
	}
	return secp256k1.NewPublicKey(&v.X, &v.Y).SerializeUncompressed(), nil
}

// UnmarshalBinary accepts only the encodings produced by MarshalBinary,
// and checks that the point lies on the curve.
func (p *Secp256k1Point) UnmarshalBinary(data []byte) error {
	if len(data) != secp256k1PointBytes {
		return fmt.Errorf("invalid length for secp256k1Point: %d", len(data))
	}
	if isZeroBytes(data) {
		p.value = secp256k1.JacobianPoint{}
		return nil
	}
	if data[0] != secp256k1.PubKeyFormatUncompressed {
		return fmt.Errorf("secp256k1Point.UnmarshalBinary: incorrect format byte %#x", data[0])
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return fmt.Errorf("secp256k1Point.UnmarshalBinary: %w", err)
	}
	pk.AsJacobian(&p.value)
	return nil
}

func isZeroBytes(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

func (p *Secp256k1Point) Add(that Point) Point {
	other := secp256k1CastPoint(that)

	out := new(Secp256k1Point)
	secp256k1.AddNonConst(&p.value, &other.value, &out.value)
	return out
}

func (p *Secp256k1Point) Sub(that Point) Point {
	return p.Add(that.Negate())
}

func (p *Secp256k1Point) Negate() Point {
	out := new(Secp256k1Point)
	v, ok := p.affine()
	if !ok {
		return out
	}
	out.value.Set(&v)
	out.value.Y.Negate(1)
	out.value.Y.Normalize()
	return out
}

func (p *Secp256k1Point) Set(that Point) Point {
	other := secp256k1CastPoint(that)

	p.value.Set(&other.value)
	return p
}

func (p *Secp256k1Point) Equal(that Point) bool {
	other, ok := that.(*Secp256k1Point)
	if !ok {
		return false
	}
	a, okA := p.affine()
	b, okB := other.affine()
	if !okA || !okB {
		return okA == okB
	}
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

func (p *Secp256k1Point) IsIdentity() bool {
	var x, y, z secp256k1.FieldVal
	x.Set(&p.value.X).Normalize()
	y.Set(&p.value.Y).Normalize()
	z.Set(&p.value.Z).Normalize()
	return z.IsZero() || (x.IsZero() && y.IsZero())
}
