package party

import (
	"fmt"
	"sort"
)

type IDSlice []ID

// NewIDSlice returns a sorted copy of ids, rejecting duplicates and invalid IDs.
func NewIDSlice(ids []ID) (IDSlice, error) {
	out := make(IDSlice, len(ids))
	copy(out, ids)
	out.Sort()
	for i, id := range out {
		if err := id.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %q", err, id)
		}
		if i > 0 && out[i-1] == id {
			return nil, fmt.Errorf("%w: %q appears twice", ErrInvalidID, id)
		}
	}
	return out, nil
}

func (partyIDs IDSlice) Len() int           { return len(partyIDs) }
func (partyIDs IDSlice) Less(i, j int) bool { return partyIDs[i] < partyIDs[j] }
func (partyIDs IDSlice) Swap(i, j int)      { partyIDs[i], partyIDs[j] = partyIDs[j], partyIDs[i] }

// Sort is a convenience method: x.Sort() calls Sort(x).
func (partyIDs IDSlice) Sort() { sort.Sort(partyIDs) }

// Contains returns true if partyIDs contains id.
// Assumes that partyIDs is sorted.
func (partyIDs IDSlice) Contains(id ID) bool {
	_, ok := partyIDs.Search(id)
	return ok
}

// GetIndex returns the index of id in partyIDs.
// If no index was found, return -1.
// Assumes that partyIDs is sorted.
func (partyIDs IDSlice) GetIndex(id ID) int {
	if idx, ok := partyIDs.Search(id); ok {
		return idx
	}
	return -1
}

// Search returns the result of applying sort.Search to the receiver and x.
func (partyIDs IDSlice) Search(x ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= x })
	if index >= 0 && index < len(partyIDs) && partyIDs[index] == x {
		return index, true
	}
	return 0, false
}

// Remove returns a copy of partyIDs without id.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(partyIDs))
	for _, p := range partyIDs {
		if p != id {
			out = append(out, p)
		}
	}
	return out
}
