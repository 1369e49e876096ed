package table

import (
	"context"
	"fmt"
	"io"

	"cosmossdk.io/log"
	"github.com/taurusgroup/mental-poker/pkg/party"
	"github.com/taurusgroup/mental-poker/pkg/wire"
	"github.com/taurusgroup/mental-poker/protocols/dlcards"
)

const (
	stepKeys    = "keys"
	stepShuffle = "shuffle"
	stepReveal  = "reveal"
)

// view is what one player learns during a hand.
type view struct {
	hand  []int
	board []int
}

type player struct {
	id      party.ID
	ids     party.IDSlice
	layout  layout
	adapter *wire.Adapter
	network *Network
	rand    io.Reader
	log     log.Logger
	tamper  func(*Message)

	pending map[messageKey]*Message

	keys     *wire.KeyPair
	pks      map[party.ID][]byte
	jointKey []byte
	deck     [][]byte
}

func (p *player) play(ctx context.Context) (*view, error) {
	defer p.network.Done(p.id)
	p.pending = make(map[messageKey]*Message)
	if err := ctx.Err(); err != nil {
		return nil, p.fail(stepKeys, "", err)
	}

	if err := p.exchangeKeys(ctx); err != nil {
		return nil, err
	}
	deck, err := p.adapter.OpenDeck(p.jointKey)
	if err != nil {
		return nil, p.fail(stepShuffle, "", err)
	}
	p.deck = deck
	for _, shuffler := range p.ids {
		if err = p.shuffle(ctx, shuffler); err != nil {
			return nil, err
		}
	}
	return p.reveal(ctx)
}

func (p *player) exchangeKeys(ctx context.Context) error {
	keys, err := p.adapter.PlayerKeygen(p.seed())
	if err != nil {
		return p.fail(stepKeys, "", err)
	}
	proof, err := p.adapter.ProveKeyOwnership(p.seed(), keys.PK, keys.SK, string(p.id))
	if err != nil {
		return p.fail(stepKeys, "", err)
	}
	p.keys = keys
	if err = p.broadcast(ctx, KindKey, 0, &KeyAnnouncement{PK: keys.PK, Proof: proof}); err != nil {
		return p.fail(stepKeys, "", err)
	}

	p.pks = map[party.ID][]byte{p.id: keys.PK}
	all := make([][]byte, 0, len(p.ids))
	for _, id := range p.ids {
		if id == p.id {
			all = append(all, keys.PK)
			continue
		}
		var announcement KeyAnnouncement
		if err = p.receive(ctx, id, KindKey, 0, &announcement); err != nil {
			return p.fail(stepKeys, id, err)
		}
		if !p.adapter.VerifyKeyOwnership(announcement.PK, announcement.Proof, string(id)) {
			return p.fail(stepKeys, id, dlcards.ErrVerification)
		}
		p.pks[id] = announcement.PK
		all = append(all, announcement.PK)
	}

	if p.jointKey, err = p.adapter.JointKey(all...); err != nil {
		return p.fail(stepKeys, "", err)
	}
	p.log.Debug("keys verified", "players", len(p.ids))
	return nil
}

func (p *player) shuffle(ctx context.Context, shuffler party.ID) error {
	if shuffler == p.id {
		out, err := p.adapter.ShuffleAndRemask(p.seed(), p.jointKey, p.deck)
		if err != nil {
			return p.fail(stepShuffle, "", err)
		}
		if err = p.broadcast(ctx, KindShuffle, 0, out); err != nil {
			return p.fail(stepShuffle, "", err)
		}
		p.deck = out.ShuffledDeck
		p.log.Debug("deck shuffled")
		return nil
	}

	var out wire.ShuffleOutput
	if err := p.receive(ctx, shuffler, KindShuffle, 0, &out); err != nil {
		return p.fail(stepShuffle, shuffler, err)
	}
	if !p.adapter.VerifyShuffle(p.jointKey, p.deck, &out) {
		return p.fail(stepShuffle, shuffler, dlcards.ErrVerification)
	}
	p.deck = out.ShuffledDeck
	p.log.Debug("shuffle verified", "shuffler", shuffler)
	return nil
}

// reveal sends this player's tokens for every card it may help open, then
// opens its own hole cards and the board.
func (p *player) reveal(ctx context.Context) (*view, error) {
	for _, id := range p.ids {
		for _, position := range p.layout.hand(p.ids.GetIndex(id)) {
			if id == p.id {
				continue
			}
			token, err := p.token(position)
			if err != nil {
				return nil, p.fail(stepReveal, "", err)
			}
			msg, err := newMessage(p.id, id, KindReveal, position, token)
			if err != nil {
				return nil, p.fail(stepReveal, "", err)
			}
			if err = p.send(ctx, msg); err != nil {
				return nil, p.fail(stepReveal, "", err)
			}
		}
	}
	for _, position := range p.layout.board() {
		token, err := p.token(position)
		if err != nil {
			return nil, p.fail(stepReveal, "", err)
		}
		if err = p.broadcast(ctx, KindReveal, position, token); err != nil {
			return nil, p.fail(stepReveal, "", err)
		}
	}

	v := &view{}
	for _, position := range p.layout.hand(p.ids.GetIndex(p.id)) {
		index, err := p.open(ctx, position)
		if err != nil {
			return nil, err
		}
		v.hand = append(v.hand, index)
	}
	for _, position := range p.layout.board() {
		index, err := p.open(ctx, position)
		if err != nil {
			return nil, err
		}
		v.board = append(v.board, index)
	}
	p.log.Info("hand revealed", "hand", labels(p.adapter.Engine().Size(), v.hand), "board", labels(p.adapter.Engine().Size(), v.board))
	return v, nil
}

// open collects a token from every player for the card at position, and decrypts it.
func (p *player) open(ctx context.Context, position int) (int, error) {
	params := p.adapter.Engine()
	contributors := make([]dlcards.PublicKey, 0, len(p.ids))
	for _, id := range p.ids {
		pk, err := params.DecodePublicKey(p.pks[id])
		if err != nil {
			return 0, p.fail(stepReveal, id, err)
		}
		contributors = append(contributors, pk)
	}
	masked, err := params.DecodeMaskedCard(p.deck[position])
	if err != nil {
		return 0, p.fail(stepReveal, "", err)
	}
	r, err := dlcards.NewReveal(params, contributors, masked)
	if err != nil {
		return 0, p.fail(stepReveal, "", err)
	}

	for _, id := range p.ids {
		var token wire.RevealTokenWithProof
		if id == p.id {
			own, err := p.token(position)
			if err != nil {
				return 0, p.fail(stepReveal, "", err)
			}
			token = *own
		} else if err = p.receive(ctx, id, KindReveal, position, &token); err != nil {
			return 0, p.fail(stepReveal, id, err)
		}
		share, err := p.adapter.DecodeShare(wire.RevealShare{PK: p.pks[id], RevealToken: token.RevealToken, Proof: token.Proof})
		if err != nil {
			return 0, p.fail(stepReveal, id, err)
		}
		if err = r.Add(share); err != nil {
			return 0, p.fail(stepReveal, id, err)
		}
	}

	_, index, ok := r.Card()
	if !ok {
		_, _, err = r.Finish()
		return 0, p.fail(stepReveal, "", fmt.Errorf("position %d: %w", position, err))
	}
	p.log.Debug("card opened", "position", position, "card", Label(params.Size(), index))
	return index, nil
}

func (p *player) token(position int) (*wire.RevealTokenWithProof, error) {
	return p.adapter.ComputeRevealToken(p.seed(), p.keys.SK, p.keys.PK, p.deck[position])
}

func (p *player) broadcast(ctx context.Context, kind Kind, position int, content interface{}) error {
	msg, err := newMessage(p.id, "", kind, position, content)
	if err != nil {
		return err
	}
	return p.send(ctx, msg)
}

func (p *player) send(ctx context.Context, msg *Message) error {
	if p.tamper != nil {
		p.tamper(msg)
	}
	return p.network.Send(ctx, msg)
}

// receive waits for the message of the given kind from a player, keeping any
// other message for later.
func (p *player) receive(ctx context.Context, from party.ID, kind Kind, position int, content interface{}) error {
	key := messageKey{from: from, kind: kind, position: position}
	msg, ok := p.pending[key]
	if ok {
		delete(p.pending, key)
		return wire.Unmarshal(msg.Content, content)
	}
	for {
		select {
		case msg, ok = <-p.network.Next(p.id):
			if !ok {
				return fmt.Errorf("waiting for %s: network closed", kind)
			}
			if msg.key() == key {
				return wire.Unmarshal(msg.Content, content)
			}
			if _, ok = p.pending[msg.key()]; ok {
				return fmt.Errorf("%w: %s sent twice", dlcards.ErrMalformed, msg)
			}
			p.pending[msg.key()] = msg
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// seed returns fresh seed bytes for one operation.
func (p *player) seed() []byte {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(p.rand, buf); err != nil {
		// the entropy streams used here never fail; an error leaves a short
		// seed which the adapter rejects
		return nil
	}
	return buf
}

func (p *player) fail(step string, culprit party.ID, err error) error {
	p.log.Error("hand stopped", "step", step, "culprit", culprit, "err", err)
	return Error{Player: p.id, Step: step, Culprit: culprit, Err: err}
}
