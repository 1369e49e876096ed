package zkshuffle

import (
	"encoding/binary"
	"fmt"

	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

const generatorsDomain = "mental-poker/shuffle/generators"

// Generators are the Pedersen commitment bases used by the shuffle argument.
//
// H starts the commitment chain and Hs[i] commits to position i. Their
// discrete logarithms are unknown to everyone, since they are hashed to the group.
type Generators struct {
	H  curve.Point
	Hs []curve.Point
}

// NewGenerators derives the generators for shuffles of n ciphertexts.
//
// The derivation is deterministic, so that every party obtains the same points.
func NewGenerators(group curve.Curve, n int) *Generators {
	label := func(kind string, i int) []byte {
		out := make([]byte, 0, len(kind)+16)
		out = append(out, kind...)
		out = binary.BigEndian.AppendUint64(out, uint64(n))
		out = binary.BigEndian.AppendUint64(out, uint64(i))
		return out
	}
	g := &Generators{
		H:  group.HashToPoint(generatorsDomain, label("H", 0)),
		Hs: make([]curve.Point, n),
	}
	for i := range g.Hs {
		g.Hs[i] = group.HashToPoint(generatorsDomain, label("Hi", i))
	}
	return g
}

// Size returns the number of ciphertexts these generators can commit to.
func (g *Generators) Size() int {
	return len(g.Hs)
}

// Equal returns true when both sets of generators are identical.
func (g *Generators) Equal(other *Generators) bool {
	if g == nil || other == nil || len(g.Hs) != len(other.Hs) || !g.H.Equal(other.H) {
		return false
	}
	for i := range g.Hs {
		if !g.Hs[i].Equal(other.Hs[i]) {
			return false
		}
	}
	return true
}

func (g *Generators) validate(group curve.Curve, n int) error {
	if g == nil || g.H == nil || len(g.Hs) != n {
		return fmt.Errorf("zkshuffle: generators for %d ciphertexts required", n)
	}
	if g.H.Curve().Name() != group.Name() {
		return fmt.Errorf("zkshuffle: generators belong to %s, not %s", g.H.Curve().Name(), group.Name())
	}
	return nil
}
