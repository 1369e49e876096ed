package dlcards

import (
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	zkdleq "github.com/taurusgroup/mental-poker/pkg/zk/dleq"
)

const revealKind = "reveal"

// RevealProof shows that (pk, token) = sk⋅(G, C1).
type RevealProof struct {
	proof *zkdleq.Proof
}

// RevealShare is the contribution of one player to opening a MaskedCard.
type RevealShare struct {
	PublicKey PublicKey
	Token     RevealToken
	Proof     *RevealProof
}

// ComputeRevealToken returns token = sk⋅C1 and a proof that it is consistent with pk.
func ComputeRevealToken(rand io.Reader, params *Parameters, sk SecretKey, pk PublicKey, masked *MaskedCard) (RevealToken, *RevealProof, error) {
	if err := params.checkKey("public key", pk); err != nil {
		return RevealToken{}, nil, err
	}
	if err := params.checkScalar("secret key", sk); err != nil {
		return RevealToken{}, nil, err
	}
	if err := params.checkMasked("masked card", masked); err != nil {
		return RevealToken{}, nil, err
	}
	if !sk.ActOnBase().Equal(pk) {
		return RevealToken{}, nil, malformed("secret key does not match public key")
	}

	token := RevealToken{Point: sk.Act(masked.C1)}
	h, err := params.transcript(revealKind)
	if err != nil {
		return RevealToken{}, nil, err
	}
	proof, err := zkdleq.NewProof(rand, params.group, h, revealStatement(params, pk, masked, token), zkdleq.Private{X: sk})
	if err != nil {
		return RevealToken{}, nil, err
	}
	return token, &RevealProof{proof: proof}, nil
}

// VerifyRevealToken checks that token = sk⋅C1 for the sk behind pk.
func VerifyRevealToken(params *Parameters, pk PublicKey, masked *MaskedCard, token RevealToken, proof *RevealProof) bool {
	return verifyShare(params, RevealShare{PublicKey: pk, Token: token, Proof: proof}, masked) == nil
}

func verifyShare(params *Parameters, share RevealShare, masked *MaskedCard) error {
	if err := params.checkKey("public key", share.PublicKey); err != nil {
		return err
	}
	if err := params.checkPoint("reveal token", share.Token.Point); err != nil {
		return err
	}
	if err := params.checkMasked("masked card", masked); err != nil {
		return err
	}
	if share.Proof == nil {
		return malformed("reveal proof is missing")
	}
	h, err := params.transcript(revealKind)
	if err != nil {
		return err
	}
	if !share.Proof.proof.Verify(h, revealStatement(params, share.PublicKey, masked, share.Token)) {
		return fmt.Errorf("%w: reveal token proof", ErrVerification)
	}
	return nil
}

func revealStatement(params *Parameters, pk PublicKey, masked *MaskedCard, token RevealToken) zkdleq.Public {
	return zkdleq.Public{
		BaseG: params.group.NewBasePoint(),
		BaseH: masked.C1,
		X:     pk,
		Y:     token.Point,
	}
}

// Unmask verifies every share, removes the tokens from C2, and looks the
// result up in the card table.
//
// The first share that fails is reported as a *ShareError. Two shares with the
// same public key are rejected. When requireUnanimous is set, the public keys of
// the shares must add up to jointKey, otherwise ErrIncompleteShares is returned;
// without it the caller vouches for the set of shares, and a missing share
// shows up as ErrUnknownCard. A point outside the table is never mapped to a card.
func Unmask(params *Parameters, jointKey PublicKey, shares []RevealShare, masked *MaskedCard, requireUnanimous bool) (Card, int, error) {
	if err := params.checkMasked("masked card", masked); err != nil {
		return Card{}, 0, err
	}
	if requireUnanimous {
		if err := params.checkKey("joint key", jointKey); err != nil {
			return Card{}, 0, err
		}
	}
	if len(shares) == 0 {
		return Card{}, 0, fmt.Errorf("%w: no shares", ErrIncompleteShares)
	}

	seen := make(map[string]struct{}, len(shares))
	tokens := make([]curve.Point, len(shares))
	keys := make([]curve.Point, len(shares))
	for i, share := range shares {
		if err := verifyShare(params, share, masked); err != nil {
			return Card{}, 0, &ShareError{Index: i, PublicKey: share.PublicKey, Err: err}
		}
		data, err := share.PublicKey.MarshalBinary()
		if err != nil {
			return Card{}, 0, &ShareError{Index: i, PublicKey: share.PublicKey, Err: malformedErr("public key", err)}
		}
		if _, ok := seen[string(data)]; ok {
			return Card{}, 0, &ShareError{Index: i, PublicKey: share.PublicKey, Err: malformed("duplicate share")}
		}
		seen[string(data)] = struct{}{}
		tokens[i] = share.Token.Point
		keys[i] = share.PublicKey
	}

	if requireUnanimous && !curve.Sum(params.group, keys...).Equal(jointKey) {
		return Card{}, 0, ErrIncompleteShares
	}

	point := masked.Open(tokens...)
	index, err := params.CardIndex(point)
	if err != nil {
		return Card{}, 0, err
	}
	return Card{Point: params.cards[index]}, index, nil
}
