package party

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSlice_GetIndex(t *testing.T) {
	tests := []struct {
		name        string
		partyIDs    IDSlice
		requestedID ID
		want        int
	}{
		{"empty", IDSlice{}, "a", -1},
		{"first", IDSlice{"a", "b", "c"}, "a", 0},
		{"last", IDSlice{"a", "b", "c"}, "c", 2},
		{"missing", IDSlice{"a", "c"}, "b", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.partyIDs.GetIndex(tt.requestedID))
		})
	}
}

func TestNewIDSlice(t *testing.T) {
	ids, err := NewIDSlice([]ID{"carol", "alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, IDSlice{"alice", "bob", "carol"}, ids)
	assert.True(t, ids.Contains("bob"))
	assert.Equal(t, IDSlice{"alice", "carol"}, ids.Remove("bob"))

	_, err = NewIDSlice([]ID{"alice", "alice"})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = NewIDSlice([]ID{""})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = NewIDSlice([]ID{ID(strings.Repeat("x", MaxIDLength+1))})
	assert.ErrorIs(t, err, ErrInvalidID)
}
