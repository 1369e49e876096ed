package dlcards

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/permutation"
)

func shuffledGame(t *testing.T, group curve.Curve, n int) (*game, []*MaskedCard, []*MaskedCard, *ShuffleProof) {
	g := newGame(t, group, n, 2)
	deck, err := OpenDeck(g.params, g.jointKey)
	require.NoError(t, err)
	factors, perm, err := SampleShuffle(rand.Reader, g.params)
	require.NoError(t, err)
	shuffled, proof, err := ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, factors, perm)
	require.NoError(t, err)
	return g, deck, shuffled, proof
}

func TestShuffleAndRemask(t *testing.T) {
	for _, group := range groups {
		g, deck, shuffled, proof := shuffledGame(t, group, 10)
		assert.True(t, VerifyShuffle(g.params, g.jointKey, deck, shuffled, proof))
		assert.False(t, VerifyShuffle(g.params, g.players[0].pk, deck, shuffled, proof), "wrong joint key")
		assert.False(t, VerifyShuffle(g.params, g.jointKey, shuffled, deck, proof), "reversed decks")
		assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, shuffled, nil))
	}
}

func TestShuffleRejectsTampering(t *testing.T) {
	g, deck, shuffled, proof := shuffledGame(t, curve.Secp256k1{}, 8)
	G := g.params.Group().NewBasePoint()

	altered := append([]*MaskedCard{}, shuffled...)
	altered[5] = &MaskedCard{C1: altered[5].C1, C2: altered[5].C2.Add(G)}
	assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, altered, proof), "altered card")

	duplicated := append([]*MaskedCard{}, shuffled...)
	duplicated[1] = duplicated[0]
	assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, duplicated, proof), "duplicated card")

	swapped := append([]*MaskedCard{}, shuffled...)
	swapped[2], swapped[3] = swapped[3], swapped[2]
	assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, swapped, proof), "swapped cards")

	assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, shuffled[:7], proof), "dropped card")
}

func TestShuffleRejectsSubstitutedWitness(t *testing.T) {
	g := newGame(t, curve.Ristretto255{}, 6, 2)
	deck, err := OpenDeck(g.params, g.jointKey)
	require.NoError(t, err)
	factors, perm, err := SampleShuffle(rand.Reader, g.params)
	require.NoError(t, err)
	shuffled, _, err := ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, factors, perm)
	require.NoError(t, err)

	// a proof made with other randomness or another permutation does not
	// match the deck actually produced
	otherFactors, otherPerm, err := SampleShuffle(rand.Reader, g.params)
	require.NoError(t, err)
	_, proof, err := ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, otherFactors, perm)
	require.NoError(t, err)
	assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, shuffled, proof), "substituted randomness")

	if !otherPerm.Equal(perm) {
		_, proof, err = ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, factors, otherPerm)
		require.NoError(t, err)
		assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, shuffled, proof), "substituted permutation")
	}
}

func TestShuffleMalformed(t *testing.T) {
	g := newGame(t, curve.Secp256k1{}, 5, 2)
	deck, err := OpenDeck(g.params, g.jointKey)
	require.NoError(t, err)
	factors, perm, err := SampleShuffle(rand.Reader, g.params)
	require.NoError(t, err)

	_, _, err = ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck[:4], factors, perm)
	assert.ErrorIs(t, err, ErrMalformed, "short deck")
	_, _, err = ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, factors[:4], perm)
	assert.ErrorIs(t, err, ErrMalformed, "missing factor")
	_, _, err = ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, factors, permutation.Identity(4))
	assert.ErrorIs(t, err, ErrMalformed, "short permutation")
	_, _, err = ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, factors, permutation.Permutation{0, 1, 2, 3, 3})
	assert.ErrorIs(t, err, ErrMalformed, "not a permutation")
}

func TestShuffleRejectsZeroFactor(t *testing.T) {
	g := newGame(t, curve.Ristretto255{}, 5, 2)
	deck, err := OpenDeck(g.params, g.jointKey)
	require.NoError(t, err)
	factors, perm, err := SampleShuffle(rand.Reader, g.params)
	require.NoError(t, err)
	for _, f := range factors {
		assert.False(t, f.IsZero())
	}

	factors[3] = g.params.Group().NewScalar()
	_, _, err = ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, factors, perm)
	assert.ErrorIs(t, err, ErrMalformed)

	zeros := make([]curve.Scalar, 5)
	for i := range zeros {
		zeros[i] = g.params.Group().NewScalar()
	}
	_, _, err = ShuffleAndRemask(rand.Reader, g.params, g.jointKey, deck, zeros, perm)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestShuffleProofByteFlip(t *testing.T) {
	g, deck, shuffled, proof := shuffledGame(t, curve.Secp256k1{}, 4)
	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	decoded, err := g.params.DecodeShuffleProof(data)
	require.NoError(t, err)
	require.True(t, VerifyShuffle(g.params, g.jointKey, deck, shuffled, decoded))

	for i := range data {
		data[i] ^= 0x80
		tampered, err := g.params.DecodeShuffleProof(data)
		if err == nil {
			assert.False(t, VerifyShuffle(g.params, g.jointKey, deck, shuffled, tampered), "flip at byte %d", i)
		} else {
			assert.ErrorIs(t, err, ErrMalformed)
		}
		data[i] ^= 0x80
	}
}
