package zksch

import (
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/hash"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
)

// Randomness = a ← 𝔽, Commitment = A = a⋅G.
type Randomness struct {
	a          curve.Scalar
	commitment Commitment
}

// Commitment = a⋅G.
type Commitment struct {
	C curve.Point
}

// Response = a + ex (mod q).
type Response struct {
	group curve.Curve
	Z     curve.Scalar
}

// Proof is a non-interactive Schnorr proof of knowledge of x such that X = x⋅G.
type Proof struct {
	C Commitment
	Z Response
}

// NewRandomness creates a new a ∈ 𝔽 and the corresponding commitment C = a⋅G.
func NewRandomness(rand io.Reader, group curve.Curve) (*Randomness, error) {
	a, C, err := sample.ScalarPointPair(rand, group)
	if err != nil {
		return nil, fmt.Errorf("zksch: %w", err)
	}
	return &Randomness{
		a:          a,
		commitment: Commitment{C: C},
	}, nil
}

func challenge(hash *hash.Hash, group curve.Curve, commitment *Commitment, public curve.Point) (e curve.Scalar, err error) {
	err = hash.WriteAny(commitment.C, public)
	if err != nil {
		return nil, err
	}
	return sample.Scalar(hash.Digest(), group)
}

// Prove creates a Response = Randomness + H(..., Commitment, public)⋅secret (mod q).
func (r *Randomness) Prove(hash *hash.Hash, public curve.Point, secret curve.Scalar) *Response {
	if public.IsIdentity() || secret.IsZero() {
		return nil
	}
	group := secret.Curve()
	e, err := challenge(hash, group, &r.commitment, public)
	if err != nil {
		return nil
	}
	z := group.NewScalar().Set(e).Mul(secret).Add(r.a)
	return &Response{group: group, Z: z}
}

// Commitment returns the commitment C = a⋅G for the randomness a.
func (r *Randomness) Commitment() *Commitment {
	return &r.commitment
}

// Verify checks that Response⋅G = Commitment + H(..., Commitment, public)⋅public.
func (z *Response) Verify(hash *hash.Hash, public curve.Point, commitment *Commitment) bool {
	if z == nil || !z.IsValid() || public == nil || public.IsIdentity() {
		return false
	}
	if commitment == nil || commitment.C == nil || commitment.C.IsIdentity() {
		return false
	}

	e, err := challenge(hash, z.group, commitment, public)
	if err != nil {
		return false
	}

	lhs := z.Z.ActOnBase()
	rhs := e.Act(public).Add(commitment.C)

	return lhs.Equal(rhs)
}

// IsValid returns true if the response is set and non-zero.
func (z *Response) IsValid() bool {
	return z != nil && z.Z != nil && !z.Z.IsZero()
}

// NewProof generates a Schnorr proof of knowledge of exponent for public, using the Fiat-Shamir transform.
func NewProof(rand io.Reader, hash *hash.Hash, public curve.Point, private curve.Scalar) (*Proof, error) {
	group := private.Curve()
	a, err := NewRandomness(rand, group)
	if err != nil {
		return nil, err
	}
	z := a.Prove(hash, public, private)
	if z == nil {
		return nil, fmt.Errorf("zksch: cannot prove knowledge of the zero key")
	}
	return &Proof{
		C: *a.Commitment(),
		Z: *z,
	}, nil
}

// Verify checks a Schnorr proof created by NewProof, using a hash in the same state.
func (p *Proof) Verify(hash *hash.Hash, public curve.Point) bool {
	if p == nil {
		return false
	}
	return p.Z.Verify(hash, public, &p.C)
}

// Empty returns a proof over group, ready to be unmarshalled into.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		C: Commitment{C: group.NewPoint()},
		Z: Response{group: group, Z: group.NewScalar()},
	}
}

// MarshalBinary returns C‖Z using the canonical encodings of the group.
func (p *Proof) MarshalBinary() ([]byte, error) {
	c, err := p.C.C.MarshalBinary()
	if err != nil {
		return nil, err
	}
	z, err := p.Z.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(c, z...), nil
}

// UnmarshalBinary expects p to have been created with Empty.
func (p *Proof) UnmarshalBinary(data []byte) error {
	group := p.Z.group
	if group == nil {
		return fmt.Errorf("zksch: unmarshal into proof with unknown group")
	}
	if len(data) != group.PointBytes()+group.ScalarBytes() {
		return fmt.Errorf("zksch: invalid proof length %d", len(data))
	}
	C, err := curve.DecodePoint(group, data[:group.PointBytes()])
	if err != nil {
		return fmt.Errorf("zksch: %w", err)
	}
	Z, err := curve.DecodeScalar(group, data[group.PointBytes():])
	if err != nil {
		return fmt.Errorf("zksch: %w", err)
	}
	p.C.C, p.Z.Z = C, Z
	return nil
}
