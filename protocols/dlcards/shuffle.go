package dlcards

import (
	"io"

	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/permutation"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
	zkshuffle "github.com/taurusgroup/mental-poker/pkg/zk/shuffle"
)

const shuffleKind = "shuffle"

// ShuffleProof shows that a deck is a permuted remasking of another deck,
// without revealing the permutation or the masking factors.
type ShuffleProof struct {
	proof *zkshuffle.Proof
}

// SampleShuffle draws N non-zero masking factors and a uniform permutation of N cards.
func SampleShuffle(rand io.Reader, params *Parameters) ([]curve.Scalar, permutation.Permutation, error) {
	factors := make([]curve.Scalar, params.n)
	for i := range factors {
		f, err := sample.NonZeroScalar(rand, params.group)
		if err != nil {
			return nil, nil, err
		}
		factors[i] = f
	}
	perm, err := permutation.Sample(rand, params.n)
	if err != nil {
		return nil, nil, err
	}
	return factors, perm, nil
}

// ShuffleAndRemask remasks deck[i] with maskingFactors[i], then sets
// output[i] = remasked[perm[i]], and proves it. Every factor must be non-zero,
// otherwise the card would come out unchanged.
func ShuffleAndRemask(rand io.Reader, params *Parameters, jointKey PublicKey, deck []*MaskedCard,
	maskingFactors []curve.Scalar, perm permutation.Permutation) ([]*MaskedCard, *ShuffleProof, error) {
	if err := params.checkKey("joint key", jointKey); err != nil {
		return nil, nil, err
	}
	if err := params.checkDeck("deck", deck); err != nil {
		return nil, nil, err
	}
	if len(maskingFactors) != params.n {
		return nil, nil, malformed("%d masking factors for %d cards", len(maskingFactors), params.n)
	}
	for i, f := range maskingFactors {
		if err := params.checkScalar("masking factor", f); err != nil {
			return nil, nil, malformed("masking factor %d: %v", i, err)
		}
		if f.IsZero() {
			return nil, nil, malformed("masking factor %d is zero", i)
		}
	}
	if perm.Size() != params.n {
		return nil, nil, malformed("permutation of %d cards for %d cards", perm.Size(), params.n)
	}
	if _, err := permutation.New(perm); err != nil {
		return nil, nil, malformedErr("permutation", err)
	}

	remasked := make([]*MaskedCard, params.n)
	for i, c := range deck {
		remasked[i] = c.Reencrypt(jointKey, maskingFactors[i])
	}
	shuffled, err := permutation.Apply(perm, remasked)
	if err != nil {
		return nil, nil, malformedErr("permutation", err)
	}

	h, err := params.transcript(shuffleKind)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkshuffle.NewProof(rand, params.group, h, shuffleStatement(params, jointKey, deck, shuffled), zkshuffle.Private{
		Permutation: perm,
		Randomness:  maskingFactors,
	}, params.pl)
	if err != nil {
		return nil, nil, err
	}
	return shuffled, &ShuffleProof{proof: proof}, nil
}

// VerifyShuffle checks that after is a permuted remasking of before under jointKey.
func VerifyShuffle(params *Parameters, jointKey PublicKey, before, after []*MaskedCard, proof *ShuffleProof) bool {
	if proof == nil || params.checkKey("joint key", jointKey) != nil ||
		params.checkDeck("before", before) != nil || params.checkDeck("after", after) != nil {
		return false
	}
	h, err := params.transcript(shuffleKind)
	if err != nil {
		return false
	}
	return proof.proof.Verify(h, shuffleStatement(params, jointKey, before, after), params.pl)
}

func shuffleStatement(params *Parameters, jointKey PublicKey, before, after []*MaskedCard) zkshuffle.Public {
	return zkshuffle.Public{
		Generators: params.generators,
		PublicKey:  jointKey,
		Input:      before,
		Output:     after,
	}
}
