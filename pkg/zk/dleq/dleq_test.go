package zkdleq

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

func newStatement(t *testing.T, group curve.Curve) (Public, Private) {
	x, err := sample.NonZeroScalar(rand.Reader, group)
	require.NoError(t, err)
	G := group.NewBasePoint()
	H := group.HashToPoint("test", []byte("H"))
	return Public{
		BaseG: G,
		BaseH: H,
		X:     x.Act(G),
		Y:     x.Act(H),
	}, Private{X: x}
}

func TestDleq(t *testing.T) {
	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ristretto255{}} {
		public, private := newStatement(t, group)

		proof, err := NewProof(rand.Reader, group, hash.New(), public, private)
		require.NoError(t, err)
		assert.True(t, proof.Verify(hash.New(), public), group.Name())

		out, err := cbor.Marshal(proof)
		require.NoError(t, err, "failed to marshal proof")
		proof2 := Empty(group)
		require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
		assert.True(t, proof2.Verify(hash.New(), public))

		data, err := proof.MarshalBinary()
		require.NoError(t, err)
		assert.Len(t, data, Size(group))
		proof3 := Empty(group)
		require.NoError(t, proof3.UnmarshalBinary(data))
		assert.True(t, proof3.Verify(hash.New(), public))
	}
}

func TestDleqWrongWitness(t *testing.T) {
	group := curve.Secp256k1{}
	public, _ := newStatement(t, group)
	y, err := sample.NonZeroScalar(rand.Reader, group)
	require.NoError(t, err)

	proof, err := NewProof(rand.Reader, group, hash.New(), public, Private{X: y})
	require.NoError(t, err)
	assert.False(t, proof.Verify(hash.New(), public))
}

func TestDleqUnequalLogs(t *testing.T) {
	group := curve.Ristretto255{}
	public, private := newStatement(t, group)
	public.Y = public.Y.Add(group.NewBasePoint())

	proof, err := NewProof(rand.Reader, group, hash.New(), public, private)
	require.NoError(t, err)
	assert.False(t, proof.Verify(hash.New(), public))
}

func TestDleqContext(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newStatement(t, group)
	h := hash.New(hash.BytesWithDomain{TheDomain: "ctx", Bytes: []byte("mask")})
	proof, err := NewProof(rand.Reader, group, h, public, private)
	require.NoError(t, err)

	assert.True(t, proof.Verify(hash.New(hash.BytesWithDomain{TheDomain: "ctx", Bytes: []byte("mask")}), public))
	assert.False(t, proof.Verify(hash.New(hash.BytesWithDomain{TheDomain: "ctx", Bytes: []byte("reveal")}), public))
	assert.False(t, proof.Verify(hash.New(), public))
}

func TestDleqTamper(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newStatement(t, group)
	proof, err := NewProof(rand.Reader, group, hash.New(), public, private)
	require.NoError(t, err)
	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	for i := range data {
		data[i] ^= 0x40
		tampered := Empty(group)
		if tampered.UnmarshalBinary(data) == nil {
			assert.False(t, tampered.Verify(hash.New(), public), "byte %d", i)
		}
		data[i] ^= 0x40
	}

	var nilProof *Proof
	assert.False(t, nilProof.Verify(hash.New(), public))
}
