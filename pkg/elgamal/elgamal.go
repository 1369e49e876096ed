package elgamal

import (
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

type (
	PublicKey = curve.Point
	Nonce     = curve.Scalar
)

// Ciphertext is an ElGamal encryption of a point.
type Ciphertext struct {
	// C1 = nonce⋅G
	C1 curve.Point
	// C2 = message + nonce⋅public
	C2 curve.Point
}

// Empty returns a ciphertext of the identity with nonce 0, ready to be unmarshalled into.
func Empty(group curve.Curve) *Ciphertext {
	return &Ciphertext{
		C1: group.NewPoint(),
		C2: group.NewPoint(),
	}
}

// Encrypt returns the encryption of message under public, using nonce.
func Encrypt(public PublicKey, message curve.Point, nonce Nonce) *Ciphertext {
	return &Ciphertext{
		C1: nonce.ActOnBase(),
		C2: message.Add(nonce.Act(public)),
	}
}

// Reencrypt returns c + Enc(0; delta), which decrypts to the same message as c.
func (c *Ciphertext) Reencrypt(public PublicKey, delta Nonce) *Ciphertext {
	return &Ciphertext{
		C1: c.C1.Add(delta.ActOnBase()),
		C2: c.C2.Add(delta.Act(public)),
	}
}

// Sub returns the component-wise difference c - other.
func (c *Ciphertext) Sub(other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: c.C1.Sub(other.C1),
		C2: c.C2.Sub(other.C2),
	}
}

// Open removes the combined decryption shares ∑ᵢ skᵢ⋅C1 from C2.
func (c *Ciphertext) Open(shares ...curve.Point) curve.Point {
	return c.C2.Sub(curve.Sum(c.C1.Curve(), shares...))
}

// Decrypt returns C2 - secret⋅C1.
func (c *Ciphertext) Decrypt(secret curve.Scalar) curve.Point {
	return c.Open(secret.Act(c.C1))
}

// Equal checks both components.
func (c *Ciphertext) Equal(other *Ciphertext) bool {
	if !c.Valid() || !other.Valid() {
		return false
	}
	return c.C1.Equal(other.C1) && c.C2.Equal(other.C2)
}

// Valid checks that both components are set.
func (c *Ciphertext) Valid() bool {
	return c != nil && c.C1 != nil && c.C2 != nil
}

func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	var (
		total int64
		n     int
	)

	for _, p := range []curve.Point{c.C1, c.C2} {
		buf, err := p.MarshalBinary()
		if err != nil {
			return total, err
		}
		n, err = w.Write(buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func (Ciphertext) Domain() string {
	return "ElGamal Ciphertext"
}

// MarshalBinary returns the encoding of C1 followed by the encoding of C2.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	c1, err := c.C1.MarshalBinary()
	if err != nil {
		return nil, err
	}
	c2, err := c.C2.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(c1, c2...), nil
}

// UnmarshalBinary expects c to have been created with Empty, so that the group is known.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	if !c.Valid() {
		return fmt.Errorf("elgamal: unmarshal into ciphertext with unknown group")
	}
	group := c.C1.Curve()
	size := group.PointBytes()
	if len(data) != 2*size {
		return fmt.Errorf("elgamal: invalid ciphertext length %d", len(data))
	}
	c1, err := curve.DecodePoint(group, data[:size])
	if err != nil {
		return fmt.Errorf("elgamal: C1: %w", err)
	}
	c2, err := curve.DecodePoint(group, data[size:])
	if err != nil {
		return fmt.Errorf("elgamal: C2: %w", err)
	}
	c.C1, c.C2 = c1, c2
	return nil
}
