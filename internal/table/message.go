package table

import (
	"fmt"

	"github.com/taurusgroup/mental-poker/pkg/party"
	"github.com/taurusgroup/mental-poker/pkg/wire"
)

// Kind identifies what a Message carries.
type Kind uint8

const (
	// KindKey carries a KeyAnnouncement.
	KindKey Kind = iota + 1
	// KindShuffle carries a wire.ShuffleOutput.
	KindShuffle
	// KindReveal carries a wire.RevealTokenWithProof for the card at Message.Position.
	KindReveal
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindShuffle:
		return "shuffle"
	case KindReveal:
		return "reveal"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Message is sent between players. Its Content is a record encoded with wire.Marshal.
type Message struct {
	From party.ID `cbor:"from"`
	// To is empty for broadcast messages.
	To       party.ID `cbor:"to"`
	Kind     Kind     `cbor:"kind"`
	Position int      `cbor:"position"`
	Content  []byte   `cbor:"content"`
}

// KeyAnnouncement publishes a player's key with a proof of ownership bound to its ID.
type KeyAnnouncement struct {
	PK    []byte `cbor:"pk"`
	Proof []byte `cbor:"proof"`
}

// Broadcast returns true if the message is for every other player.
func (m *Message) Broadcast() bool {
	return m.To == ""
}

// IsFor returns true if id should receive the message.
func (m *Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.Broadcast() || m.To == id
}

func (m *Message) String() string {
	return fmt.Sprintf("message: %s from %s to %q, position %d", m.Kind, m.From, m.To, m.Position)
}

func newMessage(from, to party.ID, kind Kind, position int, content interface{}) (*Message, error) {
	data, err := wire.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("table: encoding %s: %w", kind, err)
	}
	return &Message{From: from, To: to, Kind: kind, Position: position, Content: data}, nil
}

type messageKey struct {
	from     party.ID
	kind     Kind
	position int
}

func (m *Message) key() messageKey {
	return messageKey{from: m.From, kind: m.Kind, position: m.Position}
}
