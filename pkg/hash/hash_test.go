package hash

import (
	"bytes"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

func TestHash_WriteAny(t *testing.T) {
	var err error

	testFunc := func(vs ...interface{}) error {
		h := New()
		for _, v := range vs {
			err = h.WriteAny(v)
			if err != nil {
				return err
			}
		}
		return nil
	}

	group := curve.Secp256k1{}
	assert.NoError(t, testFunc(new(saferith.Nat).SetUint64(35)))
	assert.NoError(t, testFunc(curve.ScalarFromUint64(group, 35)))
	assert.NoError(t, testFunc(group.NewBasePoint()))
	assert.NoError(t, testFunc(curve.Ristretto255{}.NewBasePoint()))
	assert.NoError(t, testFunc([]byte{1, 4, 6}))
	assert.NoError(t, testFunc("label"))
	assert.NoError(t, testFunc(BytesWithDomain{TheDomain: "test", Bytes: []byte{1}}))

	var i *saferith.Nat
	assert.Error(t, testFunc(i))
	assert.Error(t, testFunc(3.14))

	assert.NoError(t, testFunc(new(saferith.Nat).SetUint64(35), []byte{1, 4, 6}))
}

func TestHash_Framing(t *testing.T) {
	a := New()
	require.NoError(t, a.WriteAny([]byte{1, 2}, []byte{3}))
	b := New()
	require.NoError(t, b.WriteAny([]byte{1}, []byte{2, 3}))
	assert.False(t, bytes.Equal(a.Sum(), b.Sum()), "different splits must hash differently")

	c := New()
	require.NoError(t, c.WriteAny(BytesWithDomain{TheDomain: "x", Bytes: []byte{1}}))
	d := New()
	require.NoError(t, d.WriteAny(BytesWithDomain{TheDomain: "y", Bytes: []byte{1}}))
	assert.False(t, bytes.Equal(c.Sum(), d.Sum()), "domains must separate")
}

func TestHash_Clone(t *testing.T) {
	h := New(BytesWithDomain{TheDomain: "init", Bytes: []byte("data")})
	h2 := h.Clone()
	assert.Equal(t, h.Sum(), h2.Sum())

	require.NoError(t, h2.WriteAny([]byte("more")))
	assert.NotEqual(t, h.Sum(), h2.Sum(), "writing to a clone must not affect the original")

	h3, err := h.Fork([]byte("more"))
	require.NoError(t, err)
	assert.Equal(t, h2.Sum(), h3.Sum())
	assert.Len(t, h.Sum(), DigestLengthBytes)
}
