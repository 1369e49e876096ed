// Package dlcards implements a discrete-log mental poker protocol: players
// jointly shuffle, deal and reveal a deck of cards without a trusted dealer.
//
// A hand goes as follows:
//
//  1. Every player runs PlayerKeygen and publishes its key with
//     ProveKeyOwnership. Each player checks every other key with
//     VerifyKeyOwnership, and everyone computes the same JointKey.
//  2. The deck starts as OpenDeck, where every card is masked with r = 1.
//  3. Each player in turn calls ShuffleAndRemask on the current deck, and every
//     other player checks the result with VerifyShuffle.
//  4. To open a card, the players whose keys make up the joint key each send
//     ComputeRevealToken to whoever should learn the card, who combines them
//     with Unmask, or with a Reveal.
//
// All functions are pure: they read their inputs, draw randomness from the
// given io.Reader, and return new values. Each call must use its own
// randomness, since reusing it across two proofs can leak secret keys.
//
// Unmask uses the same contract everywhere for partial reveals: with
// requireUnanimous, the public keys of the shares must add up to the joint
// key. Without it, the caller vouches for the set of shares, and any missing
// share results in ErrUnknownCard.
package dlcards
