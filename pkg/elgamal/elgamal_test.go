package elgamal

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
)

var groups = []curve.Curve{curve.Secp256k1{}, curve.Ristretto255{}}

func TestEncryptDecrypt(t *testing.T) {
	for _, group := range groups {
		sk, pk, err := sample.ScalarPointPair(rand.Reader, group)
		require.NoError(t, err)
		nonce, err := sample.Scalar(rand.Reader, group)
		require.NoError(t, err)

		m := curve.ScalarFromUint64(group, 42).ActOnBase()
		c := Encrypt(pk, m, nonce)
		assert.True(t, c.Decrypt(sk).Equal(m), group.Name())

		delta, err := sample.Scalar(rand.Reader, group)
		require.NoError(t, err)
		c2 := c.Reencrypt(pk, delta)
		assert.False(t, c2.C1.Equal(c.C1))
		assert.True(t, c2.Decrypt(sk).Equal(m), group.Name())

		diff := c2.Sub(c)
		assert.True(t, diff.C1.Equal(delta.ActOnBase()))
		assert.True(t, diff.C2.Equal(delta.Act(pk)))
	}
}

func TestJointDecryption(t *testing.T) {
	group := curve.Secp256k1{}
	sk1, pk1, err := sample.ScalarPointPair(rand.Reader, group)
	require.NoError(t, err)
	sk2, pk2, err := sample.ScalarPointPair(rand.Reader, group)
	require.NoError(t, err)
	joint := pk1.Add(pk2)

	nonce, err := sample.Scalar(rand.Reader, group)
	require.NoError(t, err)
	m := group.NewBasePoint()
	c := Encrypt(joint, m, nonce)

	assert.True(t, c.Open(sk1.Act(c.C1), sk2.Act(c.C1)).Equal(m))
	assert.False(t, c.Open(sk1.Act(c.C1)).Equal(m), "one share alone must not decrypt")
}

func TestMarshal(t *testing.T) {
	for _, group := range groups {
		_, pk, err := sample.ScalarPointPair(rand.Reader, group)
		require.NoError(t, err)
		c := Encrypt(pk, group.NewBasePoint(), curve.ScalarFromUint64(group, 5))

		data, err := c.MarshalBinary()
		require.NoError(t, err)
		assert.Len(t, data, 2*group.PointBytes())

		c2 := Empty(group)
		require.NoError(t, c2.UnmarshalBinary(data))
		assert.True(t, c.Equal(c2))

		assert.Error(t, Empty(group).UnmarshalBinary(data[1:]))
		assert.Error(t, (&Ciphertext{}).UnmarshalBinary(data))

		out, err := cbor.Marshal(c)
		require.NoError(t, err)
		c3 := Empty(group)
		require.NoError(t, cbor.Unmarshal(out, c3))
		assert.True(t, c.Equal(c3))
	}
}
