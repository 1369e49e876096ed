// Package entropy turns caller supplied byte seeds into deterministic
// randomness streams.
//
// A Seed is the only way entropy enters the wire adapter. Two calls using the
// same Seed consume the same stream, so a Seed must never be used for more than
// one operation; use Fork to derive independent seeds.
package entropy

import (
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
)

// MinSeedBytes is the shortest seed accepted by NewSeed.
const MinSeedBytes = 32

const (
	seedContext = "mental-poker 2026 entropy seed"
	forkContext = "mental-poker 2026 entropy fork"
)

// ErrShortSeed is returned by NewSeed when given fewer than MinSeedBytes bytes.
var ErrShortSeed = errors.New("entropy: seed shorter than 32 bytes")

// Seed holds a 32 byte key derived from the caller's seed bytes.
type Seed struct {
	key [32]byte
}

// NewSeed derives a Seed from data.
//
// Every byte of data contributes to the Seed, not only the first 32.
// Short seeds are rejected, never padded.
func NewSeed(data []byte) (Seed, error) {
	if len(data) < MinSeedBytes {
		return Seed{}, fmt.Errorf("%w: got %d", ErrShortSeed, len(data))
	}
	var s Seed
	h := blake3.NewDeriveKey(seedContext)
	_, _ = h.Write(data)
	copy(s.key[:], h.Sum(nil))
	return s, nil
}

// Reader returns the ChaCha20 key stream of s, starting from its beginning.
func (s Seed) Reader() io.Reader {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(s.key[:], nonce[:])
	if err != nil {
		// only possible with a wrong key or nonce size
		panic(fmt.Sprintf("entropy: %v", err))
	}
	return &stream{cipher: c}
}

// Fork derives a child seed, independent from s and from forks with other labels.
func (s Seed) Fork(label string) Seed {
	var child Seed
	h := blake3.NewDeriveKey(forkContext)
	_, _ = h.Write(s.key[:])
	_, _ = h.Write([]byte(label))
	copy(child.key[:], h.Sum(nil))
	return child
}

// ForkIndex is Fork with a label made of prefix and i.
func (s Seed) ForkIndex(prefix string, i int) Seed {
	return s.Fork(fmt.Sprintf("%s/%d", prefix, i))
}

type stream struct {
	cipher *chacha20.Cipher
}

func (r *stream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}
