package dlcards

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/hash"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/pool"
	zkshuffle "github.com/taurusgroup/mental-poker/pkg/zk/shuffle"
)

const (
	// MinCards is the smallest deck supported.
	MinCards = 2
	// MaxCards is the largest deck supported.
	MaxCards = 1024
)

// Parameters fix the group, the deck size N, the shuffle generators and the
// card encoding table for a game.
//
// Parameters are immutable and safe to share between goroutines.
type Parameters struct {
	group      curve.Curve
	n          int
	generators *zkshuffle.Generators

	// cards[i] = 2ⁱ⋅G
	cards []curve.Point
	// index maps the encoding of cards[i] to i
	index map[string]int

	pl *pool.Pool
}

// Setup creates the Parameters for a deck of n cards over group.
//
// Card i is encoded as 2ⁱ⋅G. All generators are derived by hashing to the group,
// so two calls with the same arguments produce identical Parameters.
func Setup(group curve.Curve, n int) (*Parameters, error) {
	if group == nil {
		return nil, malformed("no group")
	}
	if n < MinCards || n > MaxCards {
		return nil, malformed("deck size %d outside [%d, %d]", n, MinCards, MaxCards)
	}
	p := &Parameters{
		group:      group,
		n:          n,
		generators: zkshuffle.NewGenerators(group, n),
		cards:      make([]curve.Point, n),
		index:      make(map[string]int, n),
	}
	card := group.NewBasePoint()
	for i := 0; i < n; i++ {
		data, err := card.MarshalBinary()
		if err != nil {
			return nil, err
		}
		p.cards[i] = card
		p.index[string(data)] = i
		card = card.Add(card)
	}
	return p, nil
}

// WithPool returns a copy of p which runs shuffle proofs on pl.
//
// The pool is not part of the Parameters' identity, and is never serialized.
func (p *Parameters) WithPool(pl *pool.Pool) *Parameters {
	out := *p
	out.pl = pl
	return &out
}

// Group returns the group the game is played over.
func (p *Parameters) Group() curve.Curve {
	return p.group
}

// Size returns the number of cards N.
func (p *Parameters) Size() int {
	return p.n
}

// Generators returns the commitment generators used by shuffle proofs.
func (p *Parameters) Generators() *zkshuffle.Generators {
	return p.generators
}

// Card returns the card with index i.
func (p *Parameters) Card(i int) (Card, error) {
	if i < 0 || i >= p.n {
		return Card{}, malformed("card index %d outside [0, %d)", i, p.n)
	}
	return Card{Point: p.cards[i]}, nil
}

// Cards returns every card, in index order.
func (p *Parameters) Cards() []Card {
	out := make([]Card, p.n)
	for i, c := range p.cards {
		out[i] = Card{Point: c}
	}
	return out
}

// CardIndex looks up the index of a point in the encoding table.
//
// A point outside the table returns ErrUnknownCard.
func (p *Parameters) CardIndex(point curve.Point) (int, error) {
	if point == nil {
		return 0, ErrUnknownCard
	}
	data, err := point.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnknownCard, err)
	}
	i, ok := p.index[string(data)]
	if !ok {
		return 0, ErrUnknownCard
	}
	return i, nil
}

// Equal returns true when both Parameters describe the same game setup.
func (p *Parameters) Equal(other *Parameters) bool {
	return p != nil && other != nil && p.group.Name() == other.group.Name() &&
		p.n == other.n && p.generators.Equal(other.generators)
}

// WriteTo implements io.WriterTo, so that Parameters can be bound into proof transcripts.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Parameters) Domain() string {
	return "dlcards.Parameters"
}

// MarshalBinary encodes the group name, N and the chain generator H.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	name := p.group.Name()
	h, err := p.generators.H.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(name)+4+len(h))
	out = append(out, byte(len(name)))
	out = append(out, name...)
	out = binary.BigEndian.AppendUint32(out, uint32(p.n))
	return append(out, h...), nil
}

// UnmarshalParameters decodes Parameters, deriving them again from the group
// and N, and checking that the encoded generator matches the derived one.
func UnmarshalParameters(data []byte) (*Parameters, error) {
	if len(data) < 1 || len(data) < 1+int(data[0])+4 {
		return nil, malformed("parameters too short")
	}
	nameLen := int(data[0])
	group := curve.FromName(string(data[1 : 1+nameLen]))
	if group == nil {
		return nil, malformed("unknown group %q", data[1:1+nameLen])
	}
	rest := data[1+nameLen:]
	n := int(binary.BigEndian.Uint32(rest))
	p, err := Setup(group, n)
	if err != nil {
		return nil, err
	}
	h, err := curve.DecodePoint(group, rest[4:])
	if err != nil {
		return nil, malformedErr("parameters generator", err)
	}
	if !h.Equal(p.generators.H) {
		return nil, malformed("parameters generator does not match derivation")
	}
	return p, nil
}

// transcript returns the hash used for a proof of the given kind, bound to the Parameters.
func (p *Parameters) transcript(kind string, data ...interface{}) (*hash.Hash, error) {
	h := hash.New(
		hash.BytesWithDomain{TheDomain: "protocol", Bytes: []byte("mental-poker/dlcards/v1")},
		hash.BytesWithDomain{TheDomain: "proof kind", Bytes: []byte(kind)},
		p,
	)
	if err := h.WriteAny(data...); err != nil {
		return nil, err
	}
	return h, nil
}

func (p *Parameters) checkPoint(what string, point curve.Point) error {
	if point == nil {
		return malformed("%s is missing", what)
	}
	if point.Curve().Name() != p.group.Name() {
		return malformed("%s belongs to %s, not %s", what, point.Curve().Name(), p.group.Name())
	}
	return nil
}

func (p *Parameters) checkScalar(what string, s curve.Scalar) error {
	if s == nil {
		return malformed("%s is missing", what)
	}
	if s.Curve().Name() != p.group.Name() {
		return malformed("%s belongs to %s, not %s", what, s.Curve().Name(), p.group.Name())
	}
	return nil
}

func (p *Parameters) checkKey(what string, key PublicKey) error {
	if err := p.checkPoint(what, key); err != nil {
		return err
	}
	if key.IsIdentity() {
		return malformed("%s is the identity", what)
	}
	return nil
}

func (p *Parameters) checkMasked(what string, c *MaskedCard) error {
	if !c.Valid() {
		return malformed("%s is missing", what)
	}
	if err := p.checkPoint(what, c.C1); err != nil {
		return err
	}
	return p.checkPoint(what, c.C2)
}

func (p *Parameters) checkDeck(what string, deck []*MaskedCard) error {
	if len(deck) != p.n {
		return malformed("%s has %d cards, parameters have %d", what, len(deck), p.n)
	}
	for i, c := range deck {
		if err := p.checkMasked(fmt.Sprintf("%s[%d]", what, i), c); err != nil {
			return err
		}
	}
	return nil
}
