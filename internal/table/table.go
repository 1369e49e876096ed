// Package table plays a hand of mental poker between in-process players.
//
// Every player runs in its own goroutine and only talks to the others through
// a Network, exchanging the wire records of the card protocol: key
// announcements, shuffles and reveal tokens. Each player checks every proof it
// receives and stops the hand at the first invalid one.
package table

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"slices"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taurusgroup/mental-poker/internal/transcript"
	"github.com/taurusgroup/mental-poker/pkg/entropy"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/party"
	"github.com/taurusgroup/mental-poker/pkg/pool"
	"github.com/taurusgroup/mental-poker/pkg/wire"
)

// ErrDisagreement is returned when two players open the same card differently.
var ErrDisagreement = errors.New("table: players disagree on the board")

// Config describes a hand.
type Config struct {
	// Group defaults to wire.DefaultGroup.
	Group curve.Curve
	// Cards is the deck size.
	Cards int
	// Players sit in the order of their IDs, which is also the shuffle order.
	Players []party.ID
	// HoleCards are dealt face down to every player from the top of the deck.
	HoleCards int
	// Board cards are opened to everyone after the hole cards.
	Board int
	// Seed makes the hand reproducible. Without it, players use crypto/rand.
	Seed []byte
	// Workers is the size of each player's worker pool, 0 for one per CPU.
	Workers int
	// Logger defaults to a no-op logger.
	Logger log.Logger
	// Transcript, if set, receives the header and every broadcast message of the hand.
	Transcript *transcript.Store

	// tamper lets a player alter its outgoing messages.
	tamper map[party.ID]func(*Message)
}

// Result is the outcome of a hand, as card indices.
type Result struct {
	// Hand identifies the hand in the transcript store.
	Hand  uuid.UUID
	Hands map[party.ID][]int
	Board []int
}

// layout maps the top of the deck to hole cards and board.
type layout struct {
	players, holeCards, boardCards int
}

func (l layout) hand(seat int) []int {
	out := make([]int, l.holeCards)
	for i := range out {
		out[i] = seat*l.holeCards + i
	}
	return out
}

func (l layout) board() []int {
	out := make([]int, l.boardCards)
	for i := range out {
		out[i] = l.players*l.holeCards + i
	}
	return out
}

func (l layout) messages() int {
	return 2 + l.holeCards + l.boardCards
}

// Run plays one hand and returns what every player saw.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	ids, err := party.NewIDSlice(cfg.Players)
	if err != nil {
		return nil, err
	}
	if len(ids) < 2 {
		return nil, fmt.Errorf("table: need at least 2 players, got %d", len(ids))
	}
	if cfg.HoleCards < 0 || cfg.Board < 0 || len(ids)*cfg.HoleCards+cfg.Board > cfg.Cards {
		return nil, fmt.Errorf("table: cannot deal %d hole cards to %d players and %d on the board from %d cards",
			cfg.HoleCards, len(ids), cfg.Board, cfg.Cards)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	adapter, err := wire.New(cfg.Group, cfg.Cards)
	if err != nil {
		return nil, err
	}

	var master *entropy.Seed
	if cfg.Seed != nil {
		s, err := entropy.NewSeed(cfg.Seed)
		if err != nil {
			return nil, err
		}
		master = &s
	}

	l := layout{players: len(ids), holeCards: cfg.HoleCards, boardCards: cfg.Board}
	network := NewNetwork(ids, (len(ids)-1)*l.messages())
	views := make([]*view, len(ids))

	hand := uuid.New()
	if cfg.Transcript != nil {
		if err = record(cfg.Transcript, hand, adapter, ids, l, network); err != nil {
			return nil, err
		}
	}

	logger = logger.With("hand", hand.String())
	logger.Info("hand started", "players", len(ids), "cards", cfg.Cards, "group", adapter.Engine().Group().Name())
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		var random io.Reader = rand.Reader
		if master != nil {
			random = master.Fork("player/" + string(id)).Reader()
		}
		g.Go(func() error {
			pl := pool.NewPool(cfg.Workers)
			defer pl.TearDown()
			p := &player{
				id:      id,
				ids:     ids,
				layout:  l,
				adapter: adapter.WithPool(pl),
				network: network,
				rand:    random,
				log:     logger.With("player", string(id)),
				tamper:  cfg.tamper[id],
			}
			v, err := p.play(ctx)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Hand: hand, Hands: make(map[party.ID][]int, len(ids)), Board: views[0].board}
	seen := make(map[int]party.ID)
	for i, id := range ids {
		if !slices.Equal(views[i].board, res.Board) {
			return nil, fmt.Errorf("%w: %s and %s", ErrDisagreement, ids[0], id)
		}
		res.Hands[id] = views[i].hand
		for _, c := range views[i].hand {
			if other, ok := seen[c]; ok {
				return nil, fmt.Errorf("table: card %s dealt to %s and %s", Label(cfg.Cards, c), other, id)
			}
			seen[c] = id
		}
	}
	for _, c := range res.Board {
		if other, ok := seen[c]; ok {
			return nil, fmt.Errorf("table: card %s dealt to %s and on the board", Label(cfg.Cards, c), other)
		}
	}
	logger.Info("hand finished", "board", labels(cfg.Cards, res.Board))
	return res, nil
}

// record writes the header of hand to store, and makes network append every
// broadcast message to it.
func record(store *transcript.Store, hand uuid.UUID, adapter *wire.Adapter, ids party.IDSlice, l layout, network *Network) error {
	params, err := adapter.Parameters()
	if err != nil {
		return err
	}
	players := make([]string, len(ids))
	for i, id := range ids {
		players[i] = string(id)
	}
	header := &transcript.Header{Parameters: params, Players: players, HoleCards: l.holeCards, Board: l.boardCards}
	if err = store.Begin(hand, header); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	network.Record(func(seq uint32, msg *Message) error {
		return store.Append(hand, seq, &transcript.Entry{
			From:     string(msg.From),
			Kind:     uint8(msg.Kind),
			Position: msg.Position,
			Content:  msg.Content,
		})
	})
	return nil
}
