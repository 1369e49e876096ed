package dlcards

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

func TestKeyOwnership(t *testing.T) {
	for _, group := range groups {
		params, err := Setup(group, 4)
		require.NoError(t, err)
		pk, sk, err := PlayerKeygen(rand.Reader, params)
		require.NoError(t, err)
		assert.True(t, sk.ActOnBase().Equal(pk))

		proof, err := ProveKeyOwnership(rand.Reader, params, pk, sk, "alice")
		require.NoError(t, err)
		assert.True(t, VerifyKeyOwnership(params, pk, proof, "alice"))
		assert.False(t, VerifyKeyOwnership(params, pk, proof, "bob"), "proof for alice must not verify for bob")

		pk2, _, err := PlayerKeygen(rand.Reader, params)
		require.NoError(t, err)
		assert.False(t, VerifyKeyOwnership(params, pk2, proof, "alice"), "proof must be bound to its key")
		assert.False(t, VerifyKeyOwnership(params, pk, nil, "alice"))
		assert.False(t, VerifyKeyOwnership(params, pk, proof, ""))
	}
}

func TestKeyOwnershipBoundToParameters(t *testing.T) {
	params, err := Setup(curve.Secp256k1{}, 4)
	require.NoError(t, err)
	other, err := Setup(curve.Secp256k1{}, 5)
	require.NoError(t, err)

	pk, sk, err := PlayerKeygen(rand.Reader, params)
	require.NoError(t, err)
	proof, err := ProveKeyOwnership(rand.Reader, params, pk, sk, "alice")
	require.NoError(t, err)
	assert.False(t, VerifyKeyOwnership(other, pk, proof, "alice"))
}

func TestKeyOwnershipMismatch(t *testing.T) {
	params, err := Setup(curve.Ristretto255{}, 4)
	require.NoError(t, err)
	pk, _, err := PlayerKeygen(rand.Reader, params)
	require.NoError(t, err)
	_, sk2, err := PlayerKeygen(rand.Reader, params)
	require.NoError(t, err)

	_, err = ProveKeyOwnership(rand.Reader, params, pk, sk2, "alice")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ProveKeyOwnership(rand.Reader, params, curve.Secp256k1{}.NewBasePoint(), sk2, "alice")
	assert.ErrorIs(t, err, ErrMalformed, "key from another group")
}

func TestJointKey(t *testing.T) {
	params, err := Setup(curve.Secp256k1{}, 4)
	require.NoError(t, err)
	keys := make([]PublicKey, 3)
	for i := range keys {
		keys[i], _, err = PlayerKeygen(rand.Reader, params)
		require.NoError(t, err)
	}

	a, err := JointKey(keys...)
	require.NoError(t, err)
	b, err := JointKey(keys[2], keys[0], keys[1])
	require.NoError(t, err)
	assert.True(t, a.Equal(b), "joint key must not depend on the order")

	_, err = JointKey()
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = JointKey(keys[0], keys[1], keys[0])
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = JointKey(keys[0], keys[0].Negate())
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = JointKey(keys[0], params.Group().NewPoint())
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = JointKey(nil, keys[0])
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = JointKey(keys[0], nil)
	assert.ErrorIs(t, err, ErrMalformed)
}
