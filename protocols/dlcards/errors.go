package dlcards

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for input rejected before any cryptographic work:
	// bad encodings, deck sizes which do not match the Parameters, invalid permutations.
	ErrMalformed = errors.New("dlcards: malformed input")

	// ErrVerification is returned when a proof does not verify.
	// It may indicate an actively cheating player.
	ErrVerification = errors.New("dlcards: verification failed")

	// ErrUnknownCard is returned when a decrypted point is not in the card table.
	// This means the ciphertext was forged, the wrong joint key was used,
	// or some reveal tokens are missing.
	ErrUnknownCard = errors.New("dlcards: decrypted point is not a card")

	// ErrIncompleteShares is returned by a unanimous reveal when the supplied
	// public keys do not add up to the joint key.
	ErrIncompleteShares = errors.New("dlcards: reveal shares do not cover the joint key")

	// ErrRevealClosed is returned when adding a share to a finished Reveal.
	ErrRevealClosed = errors.New("dlcards: reveal already finished")
)

// ShareError identifies the reveal share responsible for a failure.
type ShareError struct {
	// Index of the share in the list given to Unmask, or the order of Reveal.Add calls.
	Index int
	// PublicKey the share claims to be from.
	PublicKey PublicKey
	// Err is the underlying error
	Err error
}

func (e *ShareError) Error() string {
	return fmt.Sprintf("dlcards: share %d: %s", e.Index, e.Err)
}

func (e *ShareError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func malformedErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
}
