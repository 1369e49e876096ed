package zkshuffle

import (
	"encoding/binary"
	"fmt"

	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

// Empty returns a proof over group, ready to be unmarshalled into.
func Empty(group curve.Curve) *Proof {
	return &Proof{group: group}
}

// EncodedSize returns the length of the binary encoding of a proof about n ciphertexts.
func EncodedSize(group curve.Curve, n int) int {
	return 4 + (3*n+5)*group.PointBytes() + (2*n+4)*group.ScalarBytes()
}

func (p *Proof) points() []curve.Point {
	out := make([]curve.Point, 0, 3*len(p.C)+5)
	out = append(out, p.C...)
	out = append(out, p.CHat...)
	out = append(out, p.T1, p.T2, p.T3, p.T4C1, p.T4C2)
	return append(out, p.THat...)
}

func (p *Proof) scalars() []curve.Scalar {
	out := make([]curve.Scalar, 0, 2*len(p.C)+4)
	out = append(out, p.S1, p.S2, p.S3, p.S4)
	out = append(out, p.SHat...)
	return append(out, p.SPrime...)
}

// MarshalBinary returns N as 4 big-endian bytes, followed by every point and then every scalar,
// each in its canonical encoding.
func (p *Proof) MarshalBinary() ([]byte, error) {
	n := len(p.C)
	out := make([]byte, 4, EncodedSize(p.group, n))
	binary.BigEndian.PutUint32(out, uint32(n))
	for _, pt := range p.points() {
		data, err := pt.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	for _, s := range p.scalars() {
		data, err := s.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// UnmarshalBinary expects p to have been created with Empty.
//
// Every point and scalar must be canonically encoded, and the length must match N exactly.
func (p *Proof) UnmarshalBinary(data []byte) error {
	group := p.group
	if group == nil {
		return fmt.Errorf("zkshuffle: unmarshal into proof with unknown group")
	}
	if len(data) < 4 {
		return fmt.Errorf("zkshuffle: proof too short")
	}
	n64 := uint64(binary.BigEndian.Uint32(data))
	pointSize, scalarSize := uint64(group.PointBytes()), uint64(group.ScalarBytes())
	if n64 == 0 || 4+(3*n64+5)*pointSize+(2*n64+4)*scalarSize != uint64(len(data)) {
		return fmt.Errorf("zkshuffle: invalid proof length %d", len(data))
	}
	n := int(n64)
	rest := data[4:]

	points := make([]curve.Point, 3*n+5)
	for i := range points {
		pt, err := curve.DecodePoint(group, rest[:pointSize])
		if err != nil {
			return fmt.Errorf("zkshuffle: point %d: %w", i, err)
		}
		points[i] = pt
		rest = rest[pointSize:]
	}
	scalars := make([]curve.Scalar, 2*n+4)
	for i := range scalars {
		s, err := curve.DecodeScalar(group, rest[:scalarSize])
		if err != nil {
			return fmt.Errorf("zkshuffle: scalar %d: %w", i, err)
		}
		scalars[i] = s
		rest = rest[scalarSize:]
	}

	*p = Proof{
		group:  group,
		C:      points[:n],
		CHat:   points[n : 2*n],
		T1:     points[2*n],
		T2:     points[2*n+1],
		T3:     points[2*n+2],
		T4C1:   points[2*n+3],
		T4C2:   points[2*n+4],
		THat:   points[2*n+5:],
		S1:     scalars[0],
		S2:     scalars[1],
		S3:     scalars[2],
		S4:     scalars[3],
		SHat:   scalars[4 : n+4],
		SPrime: scalars[n+4:],
	}
	return nil
}
