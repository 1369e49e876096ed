// Package transcript stores the public messages of played hands, so that
// anyone can check a hand after the fact.
//
// Records are encoded with wire.Marshal and kept in a cosmos-db database,
// under keys prefixed by the hand's UUID.
package transcript

import (
	"encoding/binary"
	"errors"
	"fmt"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/google/uuid"

	"github.com/taurusgroup/mental-poker/pkg/wire"
)

// ErrUnknownHand is returned when a hand has no header in the store.
var ErrUnknownHand = errors.New("transcript: unknown hand")

const (
	prefixHand  = 'h'
	keyHeader   = 'H'
	keyMessages = 'm'
)

// Header describes how a hand was set up.
type Header struct {
	Parameters []byte   `cbor:"parameters"`
	Players    []string `cbor:"players"`
	HoleCards  int      `cbor:"hole_cards"`
	Board      int      `cbor:"board"`
}

// Entry is one broadcast message.
type Entry struct {
	From     string `cbor:"from"`
	Kind     uint8  `cbor:"kind"`
	Position int    `cbor:"position"`
	Content  []byte `cbor:"content"`
}

// Store keeps transcripts in a database. It is safe for concurrent use as long
// as the database is.
type Store struct {
	db dbm.DB
}

// Open opens or creates a store in dir, with a cosmos-db backend such as "goleveldb".
func Open(backend, dir string) (*Store, error) {
	db, err := dbm.NewDB("transcripts", dbm.BackendType(backend), dir)
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	return &Store{db: db}, nil
}

// NewMemStore returns a store which only lives in memory.
func NewMemStore() *Store {
	return &Store{db: dbm.NewMemDB()}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin records the header of a new hand.
func (s *Store) Begin(hand uuid.UUID, header *Header) error {
	data, err := wire.Marshal(header)
	if err != nil {
		return err
	}
	return s.db.SetSync(handKey(hand, keyHeader), data)
}

// Header returns the header of hand.
func (s *Store) Header(hand uuid.UUID) (*Header, error) {
	data, err := s.db.Get(handKey(hand, keyHeader))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHand, hand)
	}
	var header Header
	if err = wire.Unmarshal(data, &header); err != nil {
		return nil, err
	}
	return &header, nil
}

// Append records the seq-th message of hand.
func (s *Store) Append(hand uuid.UUID, seq uint32, entry *Entry) error {
	data, err := wire.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Set(binary.BigEndian.AppendUint32(handKey(hand, keyMessages), seq), data)
}

// Entries returns the messages of hand, in the order they were sent.
func (s *Store) Entries(hand uuid.UUID) ([]Entry, error) {
	if _, err := s.Header(hand); err != nil {
		return nil, err
	}
	start := handKey(hand, keyMessages)
	it, err := s.db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []Entry
	for ; it.Valid(); it.Next() {
		var e Entry
		if err = wire.Unmarshal(it.Value(), &e); err != nil {
			return nil, fmt.Errorf("transcript: entry %x: %w", it.Key(), err)
		}
		out = append(out, e)
	}
	return out, it.Error()
}

// Hands lists every hand with a header, in UUID order.
func (s *Store) Hands() ([]uuid.UUID, error) {
	start := []byte{prefixHand}
	it, err := s.db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []uuid.UUID
	for ; it.Valid(); it.Next() {
		key := it.Key()
		if len(key) != 1+16+1 || key[17] != keyHeader {
			continue
		}
		id, err := uuid.FromBytes(key[1:17])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, it.Error()
}

func handKey(hand uuid.UUID, kind byte) []byte {
	key := make([]byte, 0, 1+16+1+4)
	key = append(key, prefixHand)
	key = append(key, hand[:]...)
	return append(key, kind)
}

// prefixEnd returns the smallest key greater than every key starting with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
