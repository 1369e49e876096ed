package dlcards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

var groups = []curve.Curve{curve.Secp256k1{}, curve.Ristretto255{}}

func TestSetup(t *testing.T) {
	for _, group := range groups {
		params, err := Setup(group, 52)
		require.NoError(t, err)
		assert.Equal(t, 52, params.Size())
		assert.Equal(t, group.Name(), params.Group().Name())

		G := group.NewBasePoint()
		card0, err := params.Card(0)
		require.NoError(t, err)
		assert.True(t, card0.Point.Equal(G))
		card3, err := params.Card(3)
		require.NoError(t, err)
		assert.True(t, card3.Point.Equal(curve.ScalarFromUint64(group, 8).ActOnBase()), "card i is 2^i G")

		for i, c := range params.Cards() {
			index, err := params.CardIndex(c.Point)
			require.NoError(t, err)
			assert.Equal(t, i, index)
		}

		_, err = params.CardIndex(curve.ScalarFromUint64(group, 3).ActOnBase())
		assert.ErrorIs(t, err, ErrUnknownCard)
		_, err = params.Card(52)
		assert.ErrorIs(t, err, ErrMalformed)
		_, err = params.Card(-1)
		assert.ErrorIs(t, err, ErrMalformed)
	}
}

func TestSetupBounds(t *testing.T) {
	for _, n := range []int{-1, 0, 1, MaxCards + 1} {
		_, err := Setup(curve.Secp256k1{}, n)
		assert.ErrorIs(t, err, ErrMalformed, "n = %d", n)
	}
	_, err := Setup(nil, 52)
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Setup(curve.Ristretto255{}, MinCards)
	assert.NoError(t, err)
}

func TestParametersMarshal(t *testing.T) {
	for _, group := range groups {
		params, err := Setup(group, 10)
		require.NoError(t, err)
		data, err := params.MarshalBinary()
		require.NoError(t, err)

		params2, err := UnmarshalParameters(data)
		require.NoError(t, err)
		assert.True(t, params.Equal(params2))

		other, err := Setup(group, 11)
		require.NoError(t, err)
		assert.False(t, params.Equal(other))

		bad := append([]byte{}, data...)
		bad[len(bad)-1] ^= 1
		_, err = UnmarshalParameters(bad)
		assert.ErrorIs(t, err, ErrMalformed)

		_, err = UnmarshalParameters(data[:3])
		assert.ErrorIs(t, err, ErrMalformed)
	}

	_, err := UnmarshalParameters([]byte{4, 'p', '2', '5', '6', 0, 0, 0, 52})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParametersDeterministic(t *testing.T) {
	a, err := Setup(curve.Secp256k1{}, 20)
	require.NoError(t, err)
	b, err := Setup(curve.Secp256k1{}, 20)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.True(t, a.Generators().Equal(b.Generators()))
	assert.True(t, a.WithPool(nil).Equal(a))
}
