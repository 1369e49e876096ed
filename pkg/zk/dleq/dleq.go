package zkdleq

import (
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/hash"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
)

// Public is the statement (X, Y) = x⋅(G, H) for two bases G and H.
type Public struct {
	// BaseG = G
	BaseG curve.Point
	// BaseH = H
	BaseH curve.Point

	// X = x⋅G
	X curve.Point
	// Y = x⋅H
	Y curve.Point
}

type Private struct {
	// X = x
	X curve.Scalar
}

type Commitment struct {
	// A = a⋅G
	A curve.Point
	// B = a⋅H
	B curve.Point
}

// Proof is a Chaum-Pedersen proof of equality of discrete logarithms.
type Proof struct {
	group curve.Curve
	*Commitment

	// Z = a + ex (mod q)
	Z curve.Scalar
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil || p.A == nil || p.B == nil || p.Z == nil {
		return false
	}
	if public.BaseG == nil || public.BaseH == nil || public.X == nil || public.Y == nil {
		return false
	}
	if public.BaseG.IsIdentity() || public.BaseH.IsIdentity() {
		return false
	}
	return true
}

func NewProof(rand io.Reader, group curve.Curve, hash *hash.Hash, public Public, private Private) (*Proof, error) {
	a, err := sample.NonZeroScalar(rand, group)
	if err != nil {
		return nil, fmt.Errorf("zkdleq: %w", err)
	}

	commitment := &Commitment{
		A: a.Act(public.BaseG), // A = a⋅G
		B: a.Act(public.BaseH), // B = a⋅H
	}
	e, err := challenge(hash, group, public, commitment)
	if err != nil {
		return nil, fmt.Errorf("zkdleq: %w", err)
	}

	return &Proof{
		group:      group,
		Commitment: commitment,
		Z:          group.NewScalar().Set(e).Mul(private.X).Add(a), // Z = a+ex (mod q)
	}, nil
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}

	e, err := challenge(hash, p.group, public, p.Commitment)
	if err != nil {
		return false
	}

	{
		lhs := p.Z.Act(public.BaseG)     // lhs = z⋅G
		rhs := e.Act(public.X).Add(p.A) // rhs = A+e⋅X
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		lhs := p.Z.Act(public.BaseH)     // lhs = z⋅H
		rhs := e.Act(public.Y).Add(p.B) // rhs = B+e⋅Y
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (e curve.Scalar, err error) {
	err = hash.WriteAny(public.BaseG, public.BaseH, public.X, public.Y,
		commitment.A, commitment.B)
	if err != nil {
		return nil, err
	}
	return sample.Scalar(hash.Digest(), group)
}

func Empty(group curve.Curve) *Proof {
	return &Proof{
		group: group,
		Commitment: &Commitment{
			A: group.NewPoint(),
			B: group.NewPoint(),
		},
		Z: group.NewScalar(),
	}
}

// Size returns the length of the binary encoding of a proof over group.
func Size(group curve.Curve) int {
	return 2*group.PointBytes() + group.ScalarBytes()
}

// MarshalBinary returns A‖B‖Z.
func (p *Proof) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, Size(p.group))
	for _, m := range []interface{ MarshalBinary() ([]byte, error) }{p.A, p.B, p.Z} {
		data, err := m.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// UnmarshalBinary expects p to have been created with Empty.
func (p *Proof) UnmarshalBinary(data []byte) error {
	group := p.group
	if group == nil {
		return fmt.Errorf("zkdleq: unmarshal into proof with unknown group")
	}
	if len(data) != Size(group) {
		return fmt.Errorf("zkdleq: invalid proof length %d", len(data))
	}
	pointSize := group.PointBytes()
	A, err := curve.DecodePoint(group, data[:pointSize])
	if err != nil {
		return fmt.Errorf("zkdleq: A: %w", err)
	}
	B, err := curve.DecodePoint(group, data[pointSize:2*pointSize])
	if err != nil {
		return fmt.Errorf("zkdleq: B: %w", err)
	}
	Z, err := curve.DecodeScalar(group, data[2*pointSize:])
	if err != nil {
		return fmt.Errorf("zkdleq: Z: %w", err)
	}
	p.Commitment = &Commitment{A: A, B: B}
	p.Z = Z
	return nil
}
