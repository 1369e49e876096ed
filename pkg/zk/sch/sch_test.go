package zksch

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mental-poker/pkg/hash"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
)

var groups = []curve.Curve{curve.Secp256k1{}, curve.Ristretto255{}}

func TestSchPass(t *testing.T) {
	for _, group := range groups {
		a, err := NewRandomness(rand.Reader, group)
		require.NoError(t, err)
		x, X, err := sample.ScalarPointPair(rand.Reader, group)
		require.NoError(t, err)

		proof := a.Prove(hash.New(), X, x)
		assert.True(t, proof.Verify(hash.New(), X, a.Commitment()), "failed passing test")
		assert.False(t, proof.Verify(hash.New(), group.NewBasePoint(), a.Commitment()), "wrong public key")
	}
}

func TestSchFail(t *testing.T) {
	group := curve.Secp256k1{}
	a, err := NewRandomness(rand.Reader, group)
	require.NoError(t, err)
	x, X := group.NewScalar(), group.NewPoint()

	proof := a.Prove(hash.New(), X, x)
	assert.Nil(t, proof, "proof should not be created for the identity point")
	assert.False(t, proof.Verify(hash.New(), X, a.Commitment()), "proof should not accept identity point")

	_, err = NewProof(rand.Reader, hash.New(), X, x)
	assert.Error(t, err)
}

func TestSchContext(t *testing.T) {
	group := curve.Ristretto255{}
	x, X, err := sample.ScalarPointPair(rand.Reader, group)
	require.NoError(t, err)

	proof, err := NewProof(rand.Reader, hash.New(hash.BytesWithDomain{TheDomain: "id", Bytes: []byte("alice")}), X, x)
	require.NoError(t, err)
	assert.True(t, proof.Verify(hash.New(hash.BytesWithDomain{TheDomain: "id", Bytes: []byte("alice")}), X))
	assert.False(t, proof.Verify(hash.New(hash.BytesWithDomain{TheDomain: "id", Bytes: []byte("bob")}), X))
}

func TestSchWrongWitness(t *testing.T) {
	group := curve.Secp256k1{}
	_, X, err := sample.ScalarPointPair(rand.Reader, group)
	require.NoError(t, err)
	y, err := sample.NonZeroScalar(rand.Reader, group)
	require.NoError(t, err)

	proof, err := NewProof(rand.Reader, hash.New(), X, y)
	require.NoError(t, err)
	assert.False(t, proof.Verify(hash.New(), X))
}

func TestSchMarshal(t *testing.T) {
	for _, group := range groups {
		x, X, err := sample.ScalarPointPair(rand.Reader, group)
		require.NoError(t, err)
		proof, err := NewProof(rand.Reader, hash.New(), X, x)
		require.NoError(t, err)

		data, err := proof.MarshalBinary()
		require.NoError(t, err)
		proof2 := Empty(group)
		require.NoError(t, proof2.UnmarshalBinary(data))
		assert.True(t, proof2.Verify(hash.New(), X))

		out, err := cbor.Marshal(proof)
		require.NoError(t, err, "failed to marshal proof")
		proof3 := Empty(group)
		require.NoError(t, cbor.Unmarshal(out, proof3), "failed to unmarshal proof")
		assert.True(t, proof3.Verify(hash.New(), X))

		data[len(data)-1] ^= 1
		proof4 := Empty(group)
		if proof4.UnmarshalBinary(data) == nil {
			assert.False(t, proof4.Verify(hash.New(), X))
		}
	}
}
