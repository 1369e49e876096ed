package party

import (
	"errors"
	"io"
	"unicode/utf8"
)

// MaxIDLength bounds the length of an ID in bytes.
const MaxIDLength = 255

// ID represents the identity a player claims at the table.
//
// It is bound into key ownership proofs, so a proof made for one ID is
// rejected under any other.
type ID string

// ErrInvalidID is returned by Validate.
var ErrInvalidID = errors.New("party: invalid ID")

// Validate checks that the ID is non-empty valid UTF-8 of at most MaxIDLength bytes.
func (id ID) Validate() error {
	if len(id) == 0 || len(id) > MaxIDLength || !utf8.ValidString(string(id)) {
		return ErrInvalidID
	}
	return nil
}

// WriteTo makes ID implement the io.WriterTo interface.
//
// This writes out the content of this ID, in a domain separated way.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	if id == "" {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write([]byte(id))
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (ID) Domain() string {
	return "ID"
}
