package curve

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var groups = []Curve{Secp256k1{}, Ristretto255{}}

type marshalTester struct {
	S *MarshallableScalar
	P *MarshallablePoint
}

func TestMarshall(t *testing.T) {
	for _, group := range groups {
		s := marshalTester{
			S: NewMarshallableScalar(group.NewScalar().SetNat(new(saferith.Nat).SetUint64(0xED))),
			P: NewMarshallablePoint(group.NewBasePoint()),
		}
		data, err := cbor.Marshal(s)
		require.NoError(t, err, group.Name())
		var s2 marshalTester
		err = cbor.Unmarshal(data, &s2)
		require.NoError(t, err, group.Name())
		assert.True(t, s.S.Scalar.Equal(s2.S.Scalar), group.Name())
		assert.True(t, s.P.Point.Equal(s2.P.Point), group.Name())
	}
}

func TestArithmetic(t *testing.T) {
	for _, group := range groups {
		two := ScalarFromUint64(group, 2)
		three := ScalarFromUint64(group, 3)
		five := ScalarFromUint64(group, 5)
		six := ScalarFromUint64(group, 6)

		assert.True(t, group.NewScalar().Set(two).Add(three).Equal(five), group.Name())
		assert.True(t, group.NewScalar().Set(five).Sub(three).Equal(two), group.Name())
		assert.True(t, group.NewScalar().Set(two).Mul(three).Equal(six), group.Name())
		assert.True(t, group.NewScalar().Set(six).Mul(group.NewScalar().Set(three).Invert()).Equal(two), group.Name())
		assert.True(t, group.NewScalar().Set(two).Negate().Add(two).IsZero(), group.Name())

		G := group.NewBasePoint()
		assert.True(t, G.Add(G).Equal(two.ActOnBase()), group.Name())
		assert.True(t, G.Add(G).Add(G).Sub(G).Equal(two.Act(G)), group.Name())
		assert.True(t, G.Add(G.Negate()).IsIdentity(), group.Name())
		assert.True(t, group.NewPoint().IsIdentity(), group.Name())
		assert.True(t, group.NewScalar().ActOnBase().IsIdentity(), group.Name())
		assert.False(t, G.IsIdentity(), group.Name())
		assert.True(t, group.NewPoint().Equal(G.Sub(G)), group.Name())
		assert.False(t, G.Equal(group.NewPoint()), group.Name())
	}
}

func TestPointEncoding(t *testing.T) {
	for _, group := range groups {
		for _, p := range []Point{group.NewPoint(), group.NewBasePoint(), ScalarFromUint64(group, 1234).ActOnBase()} {
			data, err := p.MarshalBinary()
			require.NoError(t, err, group.Name())
			assert.Len(t, data, group.PointBytes(), group.Name())
			p2, err := DecodePoint(group, data)
			require.NoError(t, err, group.Name())
			assert.True(t, p.Equal(p2), group.Name())
		}

		_, err := DecodePoint(group, make([]byte, group.PointBytes()-1))
		assert.Error(t, err, "short point should be rejected for %s", group.Name())
	}
}

func TestSecp256k1RejectsPointOffCurve(t *testing.T) {
	data, err := Secp256k1{}.NewBasePoint().MarshalBinary()
	require.NoError(t, err)
	data[64] ^= 1
	_, err = DecodePoint(Secp256k1{}, data)
	assert.Error(t, err)

	data[64] ^= 1
	data[0] = 0x02
	_, err = DecodePoint(Secp256k1{}, data)
	assert.Error(t, err, "compressed format byte should be rejected")
}

func TestRistretto255RejectsNonCanonical(t *testing.T) {
	data := make([]byte, 32)
	for i := range data {
		data[i] = 0xff
	}
	_, err := DecodePoint(Ristretto255{}, data)
	assert.Error(t, err)
	_, err = DecodeScalar(Ristretto255{}, data)
	assert.Error(t, err)
}

func TestScalarEncoding(t *testing.T) {
	for _, group := range groups {
		s := ScalarFromUint64(group, 0xdeadbeef)
		data, err := s.MarshalBinary()
		require.NoError(t, err)
		assert.Len(t, data, group.ScalarBytes())
		s2, err := DecodeScalar(group, data)
		require.NoError(t, err)
		assert.True(t, s.Equal(s2))

		_, err = DecodeScalar(group, data[1:])
		assert.Error(t, err)
	}

	order := make([]byte, 32)
	copy(order, Secp256k1{}.Order().Bytes())
	_, err := DecodeScalar(Secp256k1{}, order)
	assert.Error(t, err, "the order itself is not a reduced scalar")
}

func TestHashToPoint(t *testing.T) {
	for _, group := range groups {
		a := group.HashToPoint("test", []byte("a"))
		a2 := group.HashToPoint("test", []byte("a"))
		b := group.HashToPoint("test", []byte("b"))
		c := group.HashToPoint("other", []byte("a"))
		assert.True(t, a.Equal(a2), group.Name())
		assert.False(t, a.Equal(b), group.Name())
		assert.False(t, a.Equal(c), group.Name())
		assert.False(t, a.IsIdentity(), group.Name())
		assert.False(t, a.Equal(group.NewBasePoint()), group.Name())

		data, err := a.MarshalBinary()
		require.NoError(t, err)
		_, err = DecodePoint(group, data)
		assert.NoError(t, err, "hashed point must be a valid group element")
	}
}

func TestMultiScalarMult(t *testing.T) {
	for _, group := range groups {
		G := group.NewBasePoint()
		H := group.HashToPoint("test", nil)
		a, b := ScalarFromUint64(group, 7), ScalarFromUint64(group, 11)
		expected := a.Act(G).Add(b.Act(H))
		assert.True(t, MultiScalarMult(group, []Scalar{a, b}, []Point{G, H}).Equal(expected))
		assert.True(t, Sum(group, G, H, G.Negate()).Equal(H))
		assert.True(t, Sum(group).IsIdentity())
	}
}

func TestFromName(t *testing.T) {
	assert.Equal(t, Secp256k1{}, FromName("secp256k1"))
	assert.Equal(t, Ristretto255{}, FromName("ristretto255"))
	assert.Nil(t, FromName("p256"))
}
