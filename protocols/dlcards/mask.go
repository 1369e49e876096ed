package dlcards

import (
	"io"

	"github.com/taurusgroup/mental-poker/pkg/elgamal"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
	zkdleq "github.com/taurusgroup/mental-poker/pkg/zk/dleq"
)

const (
	maskingKind   = "masking"
	remaskingKind = "remasking"
)

// MaskingProof shows that (C1, C2 - card) = r⋅(G, jointKey) for some r.
type MaskingProof struct {
	proof *zkdleq.Proof
}

// RemaskingProof shows that (C1' - C1, C2' - C2) = δ⋅(G, jointKey) for some δ.
type RemaskingProof struct {
	proof *zkdleq.Proof
}

// Mask encrypts card under jointKey with fresh randomness from rand.
func Mask(rand io.Reader, params *Parameters, jointKey PublicKey, card Card) (*MaskedCard, *MaskingProof, error) {
	r, err := sample.NonZeroScalar(rand, params.group)
	if err != nil {
		return nil, nil, err
	}
	return MaskWith(rand, params, jointKey, card, r)
}

// MaskWith is Mask with an explicit non-zero r.
//
// r = 1 is only meant for the initial deal of an unshuffled deck, where
// everyone can recompute the result. See OpenDeck.
func MaskWith(rand io.Reader, params *Parameters, jointKey PublicKey, card Card, r curve.Scalar) (*MaskedCard, *MaskingProof, error) {
	if err := params.checkKey("joint key", jointKey); err != nil {
		return nil, nil, err
	}
	if err := params.checkScalar("masking factor", r); err != nil {
		return nil, nil, err
	}
	if r.IsZero() {
		return nil, nil, malformed("masking factor is zero")
	}
	if err := params.checkCard(card); err != nil {
		return nil, nil, err
	}

	masked := elgamal.Encrypt(jointKey, card.Point, r)
	h, err := params.transcript(maskingKind)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkdleq.NewProof(rand, params.group, h, maskingStatement(params, jointKey, card, masked), zkdleq.Private{X: r})
	if err != nil {
		return nil, nil, err
	}
	return masked, &MaskingProof{proof: proof}, nil
}

// VerifyMask checks that masked is an encryption of card under jointKey.
func VerifyMask(params *Parameters, jointKey PublicKey, card Card, masked *MaskedCard, proof *MaskingProof) bool {
	if proof == nil || params.checkKey("joint key", jointKey) != nil ||
		params.checkCard(card) != nil || params.checkMasked("masked card", masked) != nil {
		return false
	}
	h, err := params.transcript(maskingKind)
	if err != nil {
		return false
	}
	return proof.proof.Verify(h, maskingStatement(params, jointKey, card, masked))
}

func maskingStatement(params *Parameters, jointKey PublicKey, card Card, masked *MaskedCard) zkdleq.Public {
	return zkdleq.Public{
		BaseG: params.group.NewBasePoint(),
		BaseH: jointKey,
		X:     masked.C1,
		Y:     masked.C2.Sub(card.Point),
	}
}

// Remask rerandomizes masked with fresh randomness, keeping its plaintext.
func Remask(rand io.Reader, params *Parameters, jointKey PublicKey, masked *MaskedCard) (*MaskedCard, *RemaskingProof, error) {
	delta, err := sample.NonZeroScalar(rand, params.group)
	if err != nil {
		return nil, nil, err
	}
	return RemaskWith(rand, params, jointKey, masked, delta)
}

// RemaskWith is Remask with an explicit non-zero δ.
func RemaskWith(rand io.Reader, params *Parameters, jointKey PublicKey, masked *MaskedCard, delta curve.Scalar) (*MaskedCard, *RemaskingProof, error) {
	if err := params.checkKey("joint key", jointKey); err != nil {
		return nil, nil, err
	}
	if err := params.checkMasked("masked card", masked); err != nil {
		return nil, nil, err
	}
	if err := params.checkScalar("remasking factor", delta); err != nil {
		return nil, nil, err
	}
	if delta.IsZero() {
		return nil, nil, malformed("remasking factor is zero")
	}

	remasked := masked.Reencrypt(jointKey, delta)
	h, err := params.transcript(remaskingKind)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkdleq.NewProof(rand, params.group, h, remaskingStatement(params, jointKey, masked, remasked), zkdleq.Private{X: delta})
	if err != nil {
		return nil, nil, err
	}
	return remasked, &RemaskingProof{proof: proof}, nil
}

// VerifyRemask checks that remasked decrypts to the same card as original.
func VerifyRemask(params *Parameters, jointKey PublicKey, original, remasked *MaskedCard, proof *RemaskingProof) bool {
	if proof == nil || params.checkKey("joint key", jointKey) != nil ||
		params.checkMasked("original", original) != nil || params.checkMasked("remasked", remasked) != nil {
		return false
	}
	h, err := params.transcript(remaskingKind)
	if err != nil {
		return false
	}
	return proof.proof.Verify(h, remaskingStatement(params, jointKey, original, remasked))
}

func remaskingStatement(params *Parameters, jointKey PublicKey, original, remasked *MaskedCard) zkdleq.Public {
	diff := remasked.Sub(original)
	return zkdleq.Public{
		BaseG: params.group.NewBasePoint(),
		BaseH: jointKey,
		X:     diff.C1,
		Y:     diff.C2,
	}
}

func (p *Parameters) checkCard(card Card) error {
	if err := p.checkPoint("card", card.Point); err != nil {
		return err
	}
	if _, err := p.CardIndex(card.Point); err != nil {
		return malformed("point is not in the card table")
	}
	return nil
}
