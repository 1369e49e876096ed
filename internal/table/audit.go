package table

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/taurusgroup/mental-poker/internal/transcript"
	"github.com/taurusgroup/mental-poker/pkg/party"
	"github.com/taurusgroup/mental-poker/pkg/wire"
	"github.com/taurusgroup/mental-poker/protocols/dlcards"
)

const auditor party.ID = "audit"

// Audit replays the transcript of hand from the outside: it checks every key,
// the open deck and every shuffle, then opens the board from the recorded
// reveal tokens. Hole cards cannot be checked, their tokens are never broadcast.
//
// It returns the board as card indices. A failed check is an Error whose
// Player is "audit".
func Audit(store *transcript.Store, hand uuid.UUID) ([]int, error) {
	header, err := store.Header(hand)
	if err != nil {
		return nil, err
	}
	adapter, err := wire.FromParameters(header.Parameters)
	if err != nil {
		return nil, auditError(stepKeys, "", err)
	}
	players := make([]party.ID, len(header.Players))
	for i, id := range header.Players {
		players[i] = party.ID(id)
	}
	ids, err := party.NewIDSlice(players)
	if err != nil {
		return nil, auditError(stepKeys, "", err)
	}
	l := layout{players: len(ids), holeCards: header.HoleCards, boardCards: header.Board}
	if l.holeCards < 0 || l.boardCards < 0 || l.players*l.holeCards+l.boardCards > adapter.Engine().Size() {
		return nil, auditError(stepKeys, "", fmt.Errorf("%w: deal does not fit in the deck", dlcards.ErrMalformed))
	}

	entries, err := store.Entries(hand)
	if err != nil {
		return nil, err
	}
	messages := make(map[messageKey][]byte, len(entries))
	for _, e := range entries {
		key := messageKey{from: party.ID(e.From), kind: Kind(e.Kind), position: e.Position}
		if !ids.Contains(key.from) {
			return nil, auditError(stepKeys, key.from, fmt.Errorf("%w: message from a player not at the table", dlcards.ErrMalformed))
		}
		if _, ok := messages[key]; ok {
			return nil, auditError(stepKeys, key.from, fmt.Errorf("%w: %s sent twice", dlcards.ErrMalformed, key.kind))
		}
		messages[key] = e.Content
	}
	get := func(step string, from party.ID, kind Kind, position int, content interface{}) error {
		data, ok := messages[messageKey{from: from, kind: kind, position: position}]
		if !ok {
			return auditError(step, from, fmt.Errorf("%w: no %s message at position %d", dlcards.ErrMalformed, kind, position))
		}
		if err := wire.Unmarshal(data, content); err != nil {
			return auditError(step, from, err)
		}
		return nil
	}

	pks := make([][]byte, len(ids))
	for i, id := range ids {
		var announcement KeyAnnouncement
		if err = get(stepKeys, id, KindKey, 0, &announcement); err != nil {
			return nil, err
		}
		if !adapter.VerifyKeyOwnership(announcement.PK, announcement.Proof, string(id)) {
			return nil, auditError(stepKeys, id, dlcards.ErrVerification)
		}
		pks[i] = announcement.PK
	}
	jointKey, err := adapter.JointKey(pks...)
	if err != nil {
		return nil, auditError(stepKeys, "", err)
	}

	deck, err := adapter.OpenDeck(jointKey)
	if err != nil {
		return nil, auditError(stepShuffle, "", err)
	}
	for _, id := range ids {
		var out wire.ShuffleOutput
		if err = get(stepShuffle, id, KindShuffle, 0, &out); err != nil {
			return nil, err
		}
		if !adapter.VerifyShuffle(jointKey, deck, &out) {
			return nil, auditError(stepShuffle, id, dlcards.ErrVerification)
		}
		deck = out.ShuffledDeck
	}

	board := make([]int, 0, l.boardCards)
	for _, position := range l.board() {
		shares := make([]wire.RevealShare, len(ids))
		for i, id := range ids {
			var token wire.RevealTokenWithProof
			if err = get(stepReveal, id, KindReveal, position, &token); err != nil {
				return nil, err
			}
			shares[i] = wire.RevealShare{PK: pks[i], RevealToken: token.RevealToken, Proof: token.Proof}
		}
		out, err := adapter.Unmask(jointKey, shares, deck[position], true)
		if err != nil {
			return nil, auditError(stepReveal, shareCulprit(ids, err), fmt.Errorf("position %d: %w", position, err))
		}
		board = append(board, out.Index)
	}
	return board, nil
}

// shareCulprit returns the player whose share caused err, if any.
func shareCulprit(ids party.IDSlice, err error) party.ID {
	var shareErr *dlcards.ShareError
	if !errors.As(err, &shareErr) || shareErr.Index < 0 || shareErr.Index >= len(ids) {
		return ""
	}
	return ids[shareErr.Index]
}

func auditError(step string, culprit party.ID, err error) error {
	return Error{Player: auditor, Step: step, Culprit: culprit, Err: err}
}
