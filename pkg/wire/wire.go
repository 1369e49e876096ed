// Package wire exposes the card protocol over byte encodings, for callers that
// cannot hold curve values directly: other languages, browsers, network peers.
//
// An Adapter fixes the group, secp256k1 unless another one is chosen. Points
// and scalars use the canonical fixed size encodings of the group, proofs use
// their MarshalBinary encodings, and composite results are the records of this
// package, encoded with Marshal.
//
// Every function that needs randomness takes a seed of at least 32 bytes, which
// is expanded with entropy.NewSeed. Decoding failures wrap dlcards.ErrMalformed;
// a proof which does not verify is reported by returning false.
package wire

import (
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/entropy"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/party"
	"github.com/taurusgroup/mental-poker/pkg/pool"
	"github.com/taurusgroup/mental-poker/protocols/dlcards"
)

// DefaultGroup is the group used by New when none is given.
var DefaultGroup curve.Curve = curve.Secp256k1{}

// Adapter runs the card protocol for one set of Parameters.
type Adapter struct {
	params *dlcards.Parameters
}

// New creates the Parameters for a deck of n cards over group, or DefaultGroup when group is nil.
func New(group curve.Curve, n int) (*Adapter, error) {
	if group == nil {
		group = DefaultGroup
	}
	params, err := dlcards.Setup(group, n)
	if err != nil {
		return nil, err
	}
	return &Adapter{params: params}, nil
}

// FromParameters creates an Adapter from encoded Parameters, as returned by Adapter.Parameters.
func FromParameters(data []byte) (*Adapter, error) {
	params, err := dlcards.UnmarshalParameters(data)
	if err != nil {
		return nil, err
	}
	return &Adapter{params: params}, nil
}

// WithPool returns an Adapter which runs shuffle proofs on pl.
func (a *Adapter) WithPool(pl *pool.Pool) *Adapter {
	return &Adapter{params: a.params.WithPool(pl)}
}

// Parameters returns the encoding of the Parameters, to be shared with every player.
func (a *Adapter) Parameters() ([]byte, error) {
	return a.params.MarshalBinary()
}

// Engine returns the underlying Parameters.
func (a *Adapter) Engine() *dlcards.Parameters {
	return a.params
}

// Cards returns the encoding of every card, in index order.
func (a *Adapter) Cards() ([][]byte, error) {
	cards := a.params.Cards()
	out := make([][]byte, len(cards))
	for i, c := range cards {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

// PlayerKeygen generates a key pair.
func (a *Adapter) PlayerKeygen(seed []byte) (*KeyPair, error) {
	rand, err := reader(seed)
	if err != nil {
		return nil, err
	}
	pk, sk, err := dlcards.PlayerKeygen(rand, a.params)
	if err != nil {
		return nil, err
	}
	pkData, err := pk.MarshalBinary()
	if err != nil {
		return nil, err
	}
	skData, err := sk.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &KeyPair{PK: pkData, SK: skData}, nil
}

// ProveKeyOwnership proves that the player playerID knows the secret key of pk.
func (a *Adapter) ProveKeyOwnership(seed, pk, sk []byte, playerID string) ([]byte, error) {
	rand, err := reader(seed)
	if err != nil {
		return nil, err
	}
	publicKey, err := a.params.DecodePublicKey(pk)
	if err != nil {
		return nil, err
	}
	secretKey, err := a.params.DecodeSecretKey(sk)
	if err != nil {
		return nil, err
	}
	proof, err := dlcards.ProveKeyOwnership(rand, a.params, publicKey, secretKey, party.ID(playerID))
	if err != nil {
		return nil, err
	}
	return proof.MarshalBinary()
}

// VerifyKeyOwnership checks a proof made by ProveKeyOwnership.
func (a *Adapter) VerifyKeyOwnership(pk, proof []byte, playerID string) bool {
	publicKey, err := a.params.DecodePublicKey(pk)
	if err != nil {
		return false
	}
	p, err := a.params.DecodeKeyOwnershipProof(proof)
	if err != nil {
		return false
	}
	return dlcards.VerifyKeyOwnership(a.params, publicKey, p, party.ID(playerID))
}

// JointKey adds up the public keys of all players.
func (a *Adapter) JointKey(keys ...[]byte) ([]byte, error) {
	points := make([]dlcards.PublicKey, len(keys))
	for i, k := range keys {
		pk, err := a.params.DecodePublicKey(k)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		points[i] = pk
	}
	jointKey, err := dlcards.JointKey(points...)
	if err != nil {
		return nil, err
	}
	return jointKey.MarshalBinary()
}

// InitMask masks card with r = 1, as done for the first deck of a game.
//
// The seed is only used for the proof; the masked card is the same for everyone.
func (a *Adapter) InitMask(seed, jointKey, card []byte) (*MaskingOutput, error) {
	return a.mask(seed, jointKey, card, true)
}

// OpenDeck returns every card masked with r = 1, in index order.
//
// It needs no randomness: every player computes the same deck, and checks it
// with VerifyOpenDeck instead of proofs.
func (a *Adapter) OpenDeck(jointKey []byte) ([][]byte, error) {
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return nil, err
	}
	deck, err := dlcards.OpenDeck(a.params, jk)
	if err != nil {
		return nil, err
	}
	return dlcards.EncodeDeckEntries(deck)
}

// VerifyOpenDeck checks that deck is the deck returned by OpenDeck.
func (a *Adapter) VerifyOpenDeck(jointKey []byte, deck [][]byte) bool {
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return false
	}
	cards, err := a.DecodeDeck(deck)
	if err != nil {
		return false
	}
	return dlcards.VerifyOpenDeck(a.params, jk, cards)
}

// Mask masks card with a fresh masking factor.
func (a *Adapter) Mask(seed, jointKey, card []byte) (*MaskingOutput, error) {
	return a.mask(seed, jointKey, card, false)
}

func (a *Adapter) mask(seed, jointKey, card []byte, open bool) (*MaskingOutput, error) {
	rand, err := reader(seed)
	if err != nil {
		return nil, err
	}
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return nil, err
	}
	c, err := a.params.DecodeCard(card)
	if err != nil {
		return nil, err
	}

	var (
		masked *dlcards.MaskedCard
		proof  *dlcards.MaskingProof
	)
	if open {
		masked, proof, err = dlcards.MaskWith(rand, a.params, jk, c, curve.ScalarFromUint64(a.params.Group(), 1))
	} else {
		masked, proof, err = dlcards.Mask(rand, a.params, jk, c)
	}
	if err != nil {
		return nil, err
	}

	out := &MaskingOutput{}
	if out.MaskedCard, err = masked.MarshalBinary(); err != nil {
		return nil, err
	}
	if out.Proof, err = proof.MarshalBinary(); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyMask checks that out masks card under jointKey.
func (a *Adapter) VerifyMask(jointKey, card []byte, out *MaskingOutput) bool {
	if out == nil {
		return false
	}
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return false
	}
	c, err := a.params.DecodeCard(card)
	if err != nil {
		return false
	}
	masked, err := a.params.DecodeMaskedCard(out.MaskedCard)
	if err != nil {
		return false
	}
	proof, err := a.params.DecodeMaskingProof(out.Proof)
	if err != nil {
		return false
	}
	return dlcards.VerifyMask(a.params, jk, c, masked, proof)
}

// Remask rerandomizes a masked card.
func (a *Adapter) Remask(seed, jointKey, masked []byte) (*RemaskingOutput, error) {
	rand, err := reader(seed)
	if err != nil {
		return nil, err
	}
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return nil, err
	}
	original, err := a.params.DecodeMaskedCard(masked)
	if err != nil {
		return nil, err
	}
	remasked, proof, err := dlcards.Remask(rand, a.params, jk, original)
	if err != nil {
		return nil, err
	}

	out := &RemaskingOutput{}
	if out.MaskedCard, err = remasked.MarshalBinary(); err != nil {
		return nil, err
	}
	if out.Proof, err = proof.MarshalBinary(); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyRemask checks that out hides the same card as original.
func (a *Adapter) VerifyRemask(jointKey, original []byte, out *RemaskingOutput) bool {
	if out == nil {
		return false
	}
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return false
	}
	before, err := a.params.DecodeMaskedCard(original)
	if err != nil {
		return false
	}
	after, err := a.params.DecodeMaskedCard(out.MaskedCard)
	if err != nil {
		return false
	}
	proof, err := a.params.DecodeRemaskingProof(out.Proof)
	if err != nil {
		return false
	}
	return dlcards.VerifyRemask(a.params, jk, before, after, proof)
}

// ShuffleAndRemask shuffles and remasks deck, with a permutation and masking
// factors drawn from seed.
//
// The deck must hold exactly N masked cards.
func (a *Adapter) ShuffleAndRemask(seed, jointKey []byte, deck [][]byte) (*ShuffleOutput, error) {
	s, err := newSeed(seed)
	if err != nil {
		return nil, err
	}
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return nil, err
	}
	before, err := a.DecodeDeck(deck)
	if err != nil {
		return nil, err
	}

	factors, perm, err := dlcards.SampleShuffle(s.Fork("shuffle witness").Reader(), a.params)
	if err != nil {
		return nil, err
	}
	after, proof, err := dlcards.ShuffleAndRemask(s.Fork("shuffle proof").Reader(), a.params, jk, before, factors, perm)
	if err != nil {
		return nil, err
	}

	out := &ShuffleOutput{}
	if out.ShuffledDeck, err = dlcards.EncodeDeckEntries(after); err != nil {
		return nil, err
	}
	if out.Proof, err = proof.MarshalBinary(); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyShuffle checks that out is a shuffle of deck.
func (a *Adapter) VerifyShuffle(jointKey []byte, deck [][]byte, out *ShuffleOutput) bool {
	if out == nil {
		return false
	}
	jk, err := a.params.DecodePublicKey(jointKey)
	if err != nil {
		return false
	}
	before, err := a.DecodeDeck(deck)
	if err != nil {
		return false
	}
	after, err := a.DecodeDeck(out.ShuffledDeck)
	if err != nil {
		return false
	}
	proof, err := a.params.DecodeShuffleProof(out.Proof)
	if err != nil {
		return false
	}
	return dlcards.VerifyShuffle(a.params, jk, before, after, proof)
}

// ComputeRevealToken computes the reveal token of the player owning sk for a masked card.
func (a *Adapter) ComputeRevealToken(seed, sk, pk, masked []byte) (*RevealTokenWithProof, error) {
	rand, err := reader(seed)
	if err != nil {
		return nil, err
	}
	secretKey, err := a.params.DecodeSecretKey(sk)
	if err != nil {
		return nil, err
	}
	publicKey, err := a.params.DecodePublicKey(pk)
	if err != nil {
		return nil, err
	}
	c, err := a.params.DecodeMaskedCard(masked)
	if err != nil {
		return nil, err
	}
	token, proof, err := dlcards.ComputeRevealToken(rand, a.params, secretKey, publicKey, c)
	if err != nil {
		return nil, err
	}

	out := &RevealTokenWithProof{}
	if out.RevealToken, err = token.MarshalBinary(); err != nil {
		return nil, err
	}
	if out.Proof, err = proof.MarshalBinary(); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyRevealToken checks a reveal token made by the owner of pk.
func (a *Adapter) VerifyRevealToken(pk, masked []byte, token *RevealTokenWithProof) bool {
	if token == nil {
		return false
	}
	share, err := a.DecodeShare(RevealShare{PK: pk, RevealToken: token.RevealToken, Proof: token.Proof})
	if err != nil {
		return false
	}
	c, err := a.params.DecodeMaskedCard(masked)
	if err != nil {
		return false
	}
	return dlcards.VerifyRevealToken(a.params, share.PublicKey, c, share.Token, share.Proof)
}

// Unmask opens a masked card with the reveal shares of the players.
//
// requireUnanimous has the same meaning as for dlcards.Unmask: when set, the
// keys of the shares must add up to jointKey. Unlike the Verify functions,
// a share which does not verify is an error, a *dlcards.ShareError naming it.
func (a *Adapter) Unmask(jointKey []byte, shares []RevealShare, masked []byte, requireUnanimous bool) (*UnmaskOutput, error) {
	var jk dlcards.PublicKey
	if requireUnanimous || len(jointKey) > 0 {
		var err error
		if jk, err = a.params.DecodePublicKey(jointKey); err != nil {
			return nil, err
		}
	}
	c, err := a.params.DecodeMaskedCard(masked)
	if err != nil {
		return nil, err
	}
	decoded := make([]dlcards.RevealShare, len(shares))
	for i, s := range shares {
		if decoded[i], err = a.DecodeShare(s); err != nil {
			return nil, &dlcards.ShareError{Index: i, PublicKey: decoded[i].PublicKey, Err: err}
		}
	}

	card, index, err := dlcards.Unmask(a.params, jk, decoded, c, requireUnanimous)
	if err != nil {
		return nil, err
	}
	data, err := card.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &UnmaskOutput{Card: data, Index: index}, nil
}

// DecodeDeck decodes a deck of exactly N masked cards.
func (a *Adapter) DecodeDeck(deck [][]byte) ([]*dlcards.MaskedCard, error) {
	if len(deck) != a.params.Size() {
		return nil, fmt.Errorf("%w: deck has %d cards, parameters have %d", dlcards.ErrMalformed, len(deck), a.params.Size())
	}
	out := make([]*dlcards.MaskedCard, len(deck))
	for i, data := range deck {
		c, err := a.params.DecodeMaskedCard(data)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// DecodeShare decodes a share for use with dlcards.Reveal.
//
// On error, the fields decoded so far are returned as well, so that the public
// key can be reported.
func (a *Adapter) DecodeShare(s RevealShare) (dlcards.RevealShare, error) {
	var (
		out dlcards.RevealShare
		err error
	)
	if out.PublicKey, err = a.params.DecodePublicKey(s.PK); err != nil {
		return out, err
	}
	if out.Token, err = a.params.DecodeRevealToken(s.RevealToken); err != nil {
		return out, err
	}
	if out.Proof, err = a.params.DecodeRevealProof(s.Proof); err != nil {
		return out, err
	}
	return out, nil
}

func newSeed(seed []byte) (entropy.Seed, error) {
	s, err := entropy.NewSeed(seed)
	if err != nil {
		return entropy.Seed{}, fmt.Errorf("%w: %w", dlcards.ErrMalformed, err)
	}
	return s, nil
}

func reader(seed []byte) (io.Reader, error) {
	s, err := newSeed(seed)
	if err != nil {
		return nil, err
	}
	return s.Reader(), nil
}
