package dlcards

import (
	"fmt"
	"runtime"

	"github.com/taurusgroup/mental-poker/pkg/elgamal"
	"github.com/taurusgroup/mental-poker/pkg/entropy"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"golang.org/x/sync/errgroup"
)

// OpenDeck returns every card masked with r = 1, in index order.
//
// Anyone can recompute this deck from the joint key, so it hides nothing.
// It is the starting point of the first shuffle.
func OpenDeck(params *Parameters, jointKey PublicKey) ([]*MaskedCard, error) {
	if err := params.checkKey("joint key", jointKey); err != nil {
		return nil, err
	}
	one := curve.ScalarFromUint64(params.group, 1)
	deck := make([]*MaskedCard, params.n)
	for i, card := range params.cards {
		deck[i] = elgamal.Encrypt(jointKey, card, one)
	}
	return deck, nil
}

// VerifyOpenDeck checks that deck is exactly OpenDeck(params, jointKey).
func VerifyOpenDeck(params *Parameters, jointKey PublicKey, deck []*MaskedCard) bool {
	if params.checkDeck("deck", deck) != nil {
		return false
	}
	expected, err := OpenDeck(params, jointKey)
	if err != nil {
		return false
	}
	for i := range deck {
		if !deck[i].Equal(expected[i]) {
			return false
		}
	}
	return true
}

// MaskDeck masks every card with fresh randomness, in index order.
//
// Card i draws its randomness from seed.ForkIndex("mask", i), so the result
// only depends on the seed, even though cards are masked concurrently.
func MaskDeck(seed entropy.Seed, params *Parameters, jointKey PublicKey) ([]*MaskedCard, []*MaskingProof, error) {
	if err := params.checkKey("joint key", jointKey); err != nil {
		return nil, nil, err
	}
	deck := make([]*MaskedCard, params.n)
	proofs := make([]*MaskingProof, params.n)

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := 0; i < params.n; i++ {
		i := i
		eg.Go(func() error {
			masked, proof, err := Mask(seed.ForkIndex("mask", i).Reader(), params, jointKey, Card{Point: params.cards[i]})
			if err != nil {
				return fmt.Errorf("card %d: %w", i, err)
			}
			deck[i], proofs[i] = masked, proof
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return deck, proofs, nil
}

// VerifyMaskedDeck checks that deck[i] masks card i, for every i.
//
// The returned error wraps ErrVerification and names the first failing card
// found, or wraps ErrMalformed if the deck does not match the Parameters.
func VerifyMaskedDeck(params *Parameters, jointKey PublicKey, deck []*MaskedCard, proofs []*MaskingProof) error {
	if err := params.checkKey("joint key", jointKey); err != nil {
		return err
	}
	if err := params.checkDeck("deck", deck); err != nil {
		return err
	}
	if len(proofs) != params.n {
		return malformed("%d masking proofs for %d cards", len(proofs), params.n)
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := 0; i < params.n; i++ {
		i := i
		eg.Go(func() error {
			if !VerifyMask(params, jointKey, Card{Point: params.cards[i]}, deck[i], proofs[i]) {
				return fmt.Errorf("%w: masking proof of card %d", ErrVerification, i)
			}
			return nil
		})
	}
	return eg.Wait()
}
