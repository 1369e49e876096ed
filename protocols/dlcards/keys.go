package dlcards

import (
	"io"

	"github.com/taurusgroup/mental-poker/pkg/elgamal"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
	"github.com/taurusgroup/mental-poker/pkg/party"
	zksch "github.com/taurusgroup/mental-poker/pkg/zk/sch"
)

type (
	// PublicKey is a player's key pk = sk⋅G, or the sum of every player's key.
	PublicKey = curve.Point
	// SecretKey is a player's scalar sk. It must never leave the player.
	SecretKey = curve.Scalar
	// MaskedCard is an ElGamal encryption (C1, C2) of a Card under a joint key.
	MaskedCard = elgamal.Ciphertext
)

// Card is a plaintext card, one of the points of the encoding table.
type Card struct {
	Point curve.Point
}

// Equal compares the points of both cards.
func (c Card) Equal(other Card) bool {
	return c.Point != nil && other.Point != nil && c.Point.Equal(other.Point)
}

// RevealToken is one player's share sk⋅C1 of the decryption of a MaskedCard.
type RevealToken struct {
	Point curve.Point
}

// KeyOwnershipProof is a Schnorr proof of knowledge of a player's secret key,
// bound to the player's ID.
type KeyOwnershipProof struct {
	proof *zksch.Proof
}

const keyOwnershipKind = "key ownership"

// PlayerKeygen samples a non-zero secret key and its public key.
//
// It only fails if rand does.
func PlayerKeygen(rand io.Reader, params *Parameters) (PublicKey, SecretKey, error) {
	sk, pk, err := sample.ScalarPointPair(rand, params.group)
	if err != nil {
		return nil, nil, err
	}
	return pk, sk, nil
}

// ProveKeyOwnership proves knowledge of sk for pk, binding playerID into the challenge.
func ProveKeyOwnership(rand io.Reader, params *Parameters, pk PublicKey, sk SecretKey, playerID party.ID) (*KeyOwnershipProof, error) {
	if err := params.checkKey("public key", pk); err != nil {
		return nil, err
	}
	if err := params.checkScalar("secret key", sk); err != nil {
		return nil, err
	}
	if err := playerID.Validate(); err != nil {
		return nil, malformedErr("player ID", err)
	}
	if !sk.ActOnBase().Equal(pk) {
		return nil, malformed("secret key does not match public key")
	}
	h, err := params.transcript(keyOwnershipKind, playerID)
	if err != nil {
		return nil, err
	}
	proof, err := zksch.NewProof(rand, h, pk, sk)
	if err != nil {
		return nil, err
	}
	return &KeyOwnershipProof{proof: proof}, nil
}

// VerifyKeyOwnership checks a proof made by ProveKeyOwnership for pk and playerID.
func VerifyKeyOwnership(params *Parameters, pk PublicKey, proof *KeyOwnershipProof, playerID party.ID) bool {
	if proof == nil || params.checkKey("public key", pk) != nil || playerID.Validate() != nil {
		return false
	}
	h, err := params.transcript(keyOwnershipKind, playerID)
	if err != nil {
		return false
	}
	return proof.proof.Verify(h, pk)
}

// JointKey returns the sum of the given public keys, which should all have been
// checked with VerifyKeyOwnership.
//
// The result does not depend on the order of the keys. An empty list, a
// repeated key, or a sum equal to the identity is rejected.
func JointKey(keys ...PublicKey) (PublicKey, error) {
	if len(keys) == 0 {
		return nil, malformed("no keys to combine")
	}
	for i, key := range keys {
		if key == nil {
			return nil, malformed("key %d is missing", i)
		}
	}
	group := keys[0].Curve()
	seen := make(map[string]struct{}, len(keys))
	for i, key := range keys {
		if key.Curve().Name() != group.Name() {
			return nil, malformed("key %d is from another group", i)
		}
		if key.IsIdentity() {
			return nil, malformed("key %d is the identity", i)
		}
		data, err := key.MarshalBinary()
		if err != nil {
			return nil, malformedErr("key", err)
		}
		if _, ok := seen[string(data)]; ok {
			return nil, malformed("key %d appears twice", i)
		}
		seen[string(data)] = struct{}{}
	}
	joint := curve.Sum(group, keys...)
	if joint.IsIdentity() {
		return nil, malformed("keys add up to the identity")
	}
	return joint, nil
}
