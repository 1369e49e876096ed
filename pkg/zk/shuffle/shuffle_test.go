package zkshuffle

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mental-poker/pkg/elgamal"
	"github.com/taurusgroup/mental-poker/pkg/hash"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/permutation"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
	"github.com/taurusgroup/mental-poker/pkg/pool"
)

func newShuffle(t *testing.T, group curve.Curve, n int) (Public, Private) {
	_, pk, err := sample.ScalarPointPair(rand.Reader, group)
	require.NoError(t, err)

	input := make([]*elgamal.Ciphertext, n)
	for i := range input {
		nonce, err := sample.Scalar(rand.Reader, group)
		require.NoError(t, err)
		m := curve.ScalarFromUint64(group, uint64(i+1)).ActOnBase()
		input[i] = elgamal.Encrypt(pk, m, nonce)
	}

	psi, err := permutation.Sample(rand.Reader, n)
	require.NoError(t, err)
	randomness, err := sample.Scalars(rand.Reader, group, n)
	require.NoError(t, err)

	output := make([]*elgamal.Ciphertext, n)
	for i := range output {
		output[i] = input[psi[i]].Reencrypt(pk, randomness[psi[i]])
	}

	return Public{
			Generators: NewGenerators(group, n),
			PublicKey:  pk,
			Input:      input,
			Output:     output,
		}, Private{
			Permutation: psi,
			Randomness:  randomness,
		}
}

func prove(t *testing.T, group curve.Curve, public Public, private Private, pl *pool.Pool) *Proof {
	proof, err := NewProof(rand.Reader, group, hash.New(), public, private, pl)
	require.NoError(t, err)
	return proof
}

func TestShuffle(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ristretto255{}} {
		for _, n := range []int{1, 2, 7} {
			public, private := newShuffle(t, group, n)
			proof := prove(t, group, public, private, pl)
			assert.True(t, proof.Verify(hash.New(), public, pl), "%s n=%d", group.Name(), n)
			assert.True(t, proof.Verify(hash.New(), public, nil), "%s n=%d without pool", group.Name(), n)
		}
	}
}

func TestShuffleIdentityPermutation(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newShuffle(t, group, 5)
	private.Permutation = permutation.Identity(5)
	for i := range public.Output {
		public.Output[i] = public.Input[i].Reencrypt(public.PublicKey, private.Randomness[i])
	}
	proof := prove(t, group, public, private, nil)
	assert.True(t, proof.Verify(hash.New(), public, nil))
}

func TestShuffleRejectsAlteredOutput(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newShuffle(t, group, 6)
	proof := prove(t, group, public, private, nil)

	altered := public
	altered.Output = append([]*elgamal.Ciphertext{}, public.Output...)
	altered.Output[2] = &elgamal.Ciphertext{
		C1: altered.Output[2].C1,
		C2: altered.Output[2].C2.Add(group.NewBasePoint()),
	}
	assert.False(t, proof.Verify(hash.New(), altered, nil))
}

func TestShuffleRejectsSwappedOutputs(t *testing.T) {
	group := curve.Ristretto255{}
	public, private := newShuffle(t, group, 6)
	proof := prove(t, group, public, private, nil)

	swapped := public
	swapped.Output = append([]*elgamal.Ciphertext{}, public.Output...)
	swapped.Output[0], swapped.Output[1] = swapped.Output[1], swapped.Output[0]
	assert.False(t, proof.Verify(hash.New(), swapped, nil))
}

func TestShuffleRejectsDuplicatedCard(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newShuffle(t, group, 5)

	// the prover duplicates input 0 instead of outputting input 1
	private.Permutation = permutation.Permutation{0, 0, 2, 3, 4}
	_, err := NewProof(rand.Reader, group, hash.New(), public, private, nil)
	assert.Error(t, err, "an invalid permutation cannot be proven")

	honest, honestPrivate := newShuffle(t, group, 5)
	proof := prove(t, group, honest, honestPrivate, nil)
	duplicated := honest
	duplicated.Output = append([]*elgamal.Ciphertext{}, honest.Output...)
	duplicated.Output[1] = duplicated.Output[0].Reencrypt(honest.PublicKey, curve.ScalarFromUint64(group, 3))
	assert.False(t, proof.Verify(hash.New(), duplicated, nil))
}

func TestShuffleRejectsDroppedCard(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newShuffle(t, group, 5)
	proof := prove(t, group, public, private, nil)

	dropped := public
	dropped.Output = public.Output[:4]
	assert.False(t, proof.Verify(hash.New(), dropped, nil))

	dropped.Input = public.Input[:4]
	dropped.Generators = NewGenerators(group, 4)
	assert.False(t, proof.Verify(hash.New(), dropped, nil))
}

func TestShuffleRejectsWrongWitness(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newShuffle(t, group, 5)

	wrongRandomness := private
	wrongRandomness.Randomness = append([]curve.Scalar{}, private.Randomness...)
	wrongRandomness.Randomness[3] = curve.ScalarFromUint64(group, 1234)
	proof := prove(t, group, public, wrongRandomness, nil)
	assert.False(t, proof.Verify(hash.New(), public, nil), "inconsistent randomness")

	wrongPermutation := private
	wrongPermutation.Permutation = append(permutation.Permutation{}, private.Permutation...)
	wrongPermutation.Permutation[0], wrongPermutation.Permutation[1] = wrongPermutation.Permutation[1], wrongPermutation.Permutation[0]
	proof = prove(t, group, public, wrongPermutation, nil)
	assert.False(t, proof.Verify(hash.New(), public, nil), "substituted permutation")
}

func TestShuffleRejectsWrongContext(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newShuffle(t, group, 4)
	proof := prove(t, group, public, private, nil)

	assert.False(t, proof.Verify(hash.New(hash.BytesWithDomain{TheDomain: "x", Bytes: []byte{1}}), public, nil))

	_, otherKey, err := sample.ScalarPointPair(rand.Reader, group)
	require.NoError(t, err)
	other := public
	other.PublicKey = otherKey
	assert.False(t, proof.Verify(hash.New(), other, nil))
}

func TestShuffleMarshal(t *testing.T) {
	for _, group := range []curve.Curve{curve.Secp256k1{}, curve.Ristretto255{}} {
		public, private := newShuffle(t, group, 4)
		proof := prove(t, group, public, private, nil)

		data, err := proof.MarshalBinary()
		require.NoError(t, err)
		assert.Len(t, data, EncodedSize(group, 4))

		proof2 := Empty(group)
		require.NoError(t, proof2.UnmarshalBinary(data))
		assert.True(t, proof2.Verify(hash.New(), public, nil))

		out, err := cbor.Marshal(proof)
		require.NoError(t, err)
		proof3 := Empty(group)
		require.NoError(t, cbor.Unmarshal(out, proof3))
		assert.True(t, proof3.Verify(hash.New(), public, nil))

		assert.Error(t, Empty(group).UnmarshalBinary(data[:len(data)-1]))
		assert.Error(t, Empty(group).UnmarshalBinary(nil))
	}
}

func TestShuffleByteFlip(t *testing.T) {
	group := curve.Secp256k1{}
	public, private := newShuffle(t, group, 3)
	proof := prove(t, group, public, private, nil)
	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	for i := range data {
		data[i] ^= 0x01
		tampered := Empty(group)
		if tampered.UnmarshalBinary(data) == nil {
			assert.False(t, tampered.Verify(hash.New(), public, nil), "flip at byte %d", i)
		}
		data[i] ^= 0x01
	}
}

func TestGenerators(t *testing.T) {
	group := curve.Ristretto255{}
	a := NewGenerators(group, 5)
	b := NewGenerators(group, 5)
	assert.True(t, a.Equal(b))
	assert.Equal(t, 5, a.Size())
	assert.False(t, a.Equal(NewGenerators(group, 6)))
	for i := range a.Hs {
		assert.False(t, a.Hs[i].Equal(a.H))
		for j := i + 1; j < len(a.Hs); j++ {
			assert.False(t, a.Hs[i].Equal(a.Hs[j]))
		}
	}
}
