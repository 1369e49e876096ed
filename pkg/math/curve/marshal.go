package curve

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// DecodePoint parses the canonical encoding of a point of the given group.
func DecodePoint(group Curve, data []byte) (Point, error) {
	p := group.NewPoint()
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeScalar parses the canonical encoding of a scalar of the given group.
func DecodeScalar(group Curve, data []byte) (Scalar, error) {
	s := group.NewScalar()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

type groupData struct {
	Group string
	Data  []byte
}

func groupFromName(name string) (Curve, error) {
	group := FromName(name)
	if group == nil {
		return nil, fmt.Errorf("unknown group %q", name)
	}
	return group, nil
}

// MarshallableScalar wraps a Scalar so that it can be encoded with cbor
// without knowing its group in advance.
type MarshallableScalar struct {
	Scalar Scalar
}

func NewMarshallableScalar(scalar Scalar) *MarshallableScalar {
	return &MarshallableScalar{Scalar: scalar}
}

func (m *MarshallableScalar) MarshalCBOR() ([]byte, error) {
	data, err := m.Scalar.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&groupData{Group: m.Scalar.Curve().Name(), Data: data})
}

func (m *MarshallableScalar) UnmarshalCBOR(data []byte) error {
	var gd groupData
	if err := cbor.Unmarshal(data, &gd); err != nil {
		return err
	}
	group, err := groupFromName(gd.Group)
	if err != nil {
		return err
	}
	s, err := DecodeScalar(group, gd.Data)
	if err != nil {
		return err
	}
	m.Scalar = s
	return nil
}

// MarshallablePoint wraps a Point so that it can be encoded with cbor
// without knowing its group in advance.
type MarshallablePoint struct {
	Point Point
}

func NewMarshallablePoint(point Point) *MarshallablePoint {
	return &MarshallablePoint{Point: point}
}

func (m *MarshallablePoint) MarshalCBOR() ([]byte, error) {
	data, err := m.Point.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&groupData{Group: m.Point.Curve().Name(), Data: data})
}

func (m *MarshallablePoint) UnmarshalCBOR(data []byte) error {
	var gd groupData
	if err := cbor.Unmarshal(data, &gd); err != nil {
		return err
	}
	group, err := groupFromName(gd.Group)
	if err != nil {
		return err
	}
	p, err := DecodePoint(group, gd.Data)
	if err != nil {
		return err
	}
	m.Point = p
	return nil
}
