package entropy

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, r io.Reader, n int) []byte {
	out := make([]byte, n)
	_, err := io.ReadFull(r, out)
	require.NoError(t, err)
	return out
}

func TestNewSeed(t *testing.T) {
	_, err := NewSeed(make([]byte, 31))
	assert.ErrorIs(t, err, ErrShortSeed)
	_, err = NewSeed(nil)
	assert.ErrorIs(t, err, ErrShortSeed)

	_, err = NewSeed(make([]byte, 32))
	assert.NoError(t, err)
}

func TestReaderDeterministic(t *testing.T) {
	s, err := NewSeed(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	a := read(t, s.Reader(), 100)
	b := read(t, s.Reader(), 100)
	assert.Equal(t, a, b)
	assert.NotEqual(t, make([]byte, 100), a)

	// reading in pieces gives the same stream
	r := s.Reader()
	c := append(read(t, r, 37), read(t, r, 63)...)
	assert.Equal(t, a, c)
}

func TestAllBytesCount(t *testing.T) {
	long := bytes.Repeat([]byte{1}, 64)
	other := bytes.Repeat([]byte{1}, 64)
	other[63] = 2
	s1, err := NewSeed(long)
	require.NoError(t, err)
	s2, err := NewSeed(other)
	require.NoError(t, err)
	assert.NotEqual(t, read(t, s1.Reader(), 32), read(t, s2.Reader(), 32))
}

func TestFork(t *testing.T) {
	s, err := NewSeed(bytes.Repeat([]byte{9}, 40))
	require.NoError(t, err)
	a := s.Fork("a")
	b := s.Fork("b")
	assert.Equal(t, read(t, a.Reader(), 32), read(t, s.Fork("a").Reader(), 32))
	assert.NotEqual(t, read(t, a.Reader(), 32), read(t, b.Reader(), 32))
	assert.NotEqual(t, read(t, a.Reader(), 32), read(t, s.Reader(), 32))
	assert.NotEqual(t, read(t, s.ForkIndex("card", 1).Reader(), 32), read(t, s.ForkIndex("card", 2).Reader(), 32))
}
