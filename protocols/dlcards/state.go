package dlcards

// RevealState is the stage a masked card is in.
type RevealState int

const (
	// Dealt means no share has been collected yet.
	Dealt RevealState = iota
	// Revealing means some, but not all, shares were collected.
	Revealing
	// Revealed means the card is known.
	Revealed
	// Aborted means a bad share was received, or the shares did not decrypt to a card.
	Aborted
)

func (s RevealState) String() string {
	switch s {
	case Dealt:
		return "dealt"
	case Revealing:
		return "revealing"
	case Revealed:
		return "revealed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Reveal collects reveal shares for one masked card from the players whose
// keys make up the joint key, until every one of them has contributed.
//
// Every share is verified before the state changes. A share that is malformed,
// fails verification, or comes from a key outside the joint key aborts the
// reveal for good. A second share from the same key is rejected without
// changing the state. A Reveal is not safe for concurrent use.
type Reveal struct {
	params       *Parameters
	jointKey     PublicKey
	masked       *MaskedCard
	contributors map[string]struct{}

	state  RevealState
	shares []RevealShare
	seen   map[string]struct{}

	card  Card
	index int
	err   error
}

// NewReveal starts collecting shares for masked, encrypted under the joint key
// of contributors.
func NewReveal(params *Parameters, contributors []PublicKey, masked *MaskedCard) (*Reveal, error) {
	jointKey, err := JointKey(contributors...)
	if err != nil {
		return nil, err
	}
	if err = params.checkKey("joint key", jointKey); err != nil {
		return nil, err
	}
	if err = params.checkMasked("masked card", masked); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(contributors))
	for _, pk := range contributors {
		data, err := pk.MarshalBinary()
		if err != nil {
			return nil, malformedErr("contributor key", err)
		}
		keys[string(data)] = struct{}{}
	}
	return &Reveal{
		params:       params,
		jointKey:     jointKey,
		masked:       masked,
		contributors: keys,
		state:        Dealt,
		seen:         map[string]struct{}{},
	}, nil
}

// Add verifies share and records it.
//
// Once every contributor has sent a share, the card is decrypted and the state
// becomes Revealed. A rejected share is returned as a *ShareError.
func (r *Reveal) Add(share RevealShare) error {
	if r.state == Revealed || r.state == Aborted {
		return ErrRevealClosed
	}
	index := len(r.shares)
	if err := verifyShare(r.params, share, r.masked); err != nil {
		r.abort(&ShareError{Index: index, PublicKey: share.PublicKey, Err: err})
		return r.err
	}
	data, err := share.PublicKey.MarshalBinary()
	if err != nil {
		r.abort(&ShareError{Index: index, PublicKey: share.PublicKey, Err: malformedErr("public key", err)})
		return r.err
	}
	if _, ok := r.contributors[string(data)]; !ok {
		r.abort(&ShareError{Index: index, PublicKey: share.PublicKey, Err: malformed("key is not part of the joint key")})
		return r.err
	}
	if _, ok := r.seen[string(data)]; ok {
		return &ShareError{Index: index, PublicKey: share.PublicKey, Err: malformed("duplicate share")}
	}

	r.seen[string(data)] = struct{}{}
	r.shares = append(r.shares, share)
	r.state = Revealing

	if len(r.shares) == len(r.contributors) {
		r.finish(true)
	}
	return r.err
}

// Finish decrypts with the shares collected so far, without requiring them to
// cover the joint key.
//
// This is meant for callers who know the card was masked under the keys they
// collected. Missing shares end in ErrUnknownCard and abort the reveal.
func (r *Reveal) Finish() (Card, int, error) {
	switch r.state {
	case Revealed:
		return r.card, r.index, nil
	case Aborted:
		return Card{}, 0, r.err
	}
	r.finish(false)
	return r.card, r.index, r.err
}

func (r *Reveal) finish(requireUnanimous bool) {
	card, index, err := Unmask(r.params, r.jointKey, r.shares, r.masked, requireUnanimous)
	if err != nil {
		r.abort(err)
		return
	}
	r.state = Revealed
	r.card, r.index = card, index
}

func (r *Reveal) abort(err error) {
	r.state = Aborted
	r.err = err
}

// State returns the current stage of the reveal.
func (r *Reveal) State() RevealState {
	return r.state
}

// Err returns the reason the reveal was aborted, if it was.
func (r *Reveal) Err() error {
	return r.err
}

// Shares returns the number of shares collected.
func (r *Reveal) Shares() int {
	return len(r.shares)
}

// Card returns the revealed card and its index, once the state is Revealed.
func (r *Reveal) Card() (Card, int, bool) {
	if r.state != Revealed {
		return Card{}, 0, false
	}
	return r.card, r.index, true
}
