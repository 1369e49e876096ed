package hash

import (
	"encoding"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of the output of Sum.
const DigestLengthBytes = 64

// Hash is the hash function we use for Fiat-Shamir transcripts.
//
// Internally, this is a wrapper around blake3.Hasher, whose extendable output
// is used to derive challenges.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash, writing each initialData element to the fresh state.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - curve.Scalar
//   - curve.Point
//   - *saferith.Nat
//   - hash.WriterToWithDomain
//   - encoding.BinaryMarshaler
//
// This function will apply its own domain separation for the first five types.
// A WriterToWithDomain already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var err error
		switch t := d.(type) {
		case []byte:
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "[]byte", Bytes: t})
		case string:
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "string", Bytes: []byte(t)})
		case curve.Scalar:
			err = writeMarshaller(hash.h, "Scalar/"+t.Curve().Name(), t)
		case curve.Point:
			err = writeMarshaller(hash.h, "Point/"+t.Curve().Name(), t)
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "saferith.Nat", Bytes: t.Bytes()})
		case WriterToWithDomain:
			err = writeWithDomain(hash.h, t)
		case encoding.BinaryMarshaler:
			err = writeMarshaller(hash.h, fmt.Sprintf("%T", t), t)
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		if err != nil {
			return fmt.Errorf("hash.Hash: write %T: %w", d, err)
		}
	}
	return nil
}

func writeMarshaller(w io.Writer, domain string, m encoding.BinaryMarshaler) error {
	if m == nil {
		return fmt.Errorf("nil value")
	}
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return writeWithDomain(w, BytesWithDomain{TheDomain: domain, Bytes: data})
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork returns a copy of the Hash in its current state, with the given values
// written to the copy.
func (hash *Hash) Fork(data ...interface{}) (*Hash, error) {
	h := hash.Clone()
	if err := h.WriteAny(data...); err != nil {
		return nil, err
	}
	return h, nil
}
