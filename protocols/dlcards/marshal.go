package dlcards

import (
	"github.com/taurusgroup/mental-poker/pkg/elgamal"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	zkdleq "github.com/taurusgroup/mental-poker/pkg/zk/dleq"
	zksch "github.com/taurusgroup/mental-poker/pkg/zk/sch"
	zkshuffle "github.com/taurusgroup/mental-poker/pkg/zk/shuffle"
)

func (c Card) MarshalBinary() ([]byte, error) {
	return c.Point.MarshalBinary()
}

func (t RevealToken) MarshalBinary() ([]byte, error) {
	return t.Point.MarshalBinary()
}

func (p *KeyOwnershipProof) MarshalBinary() ([]byte, error) {
	return p.proof.MarshalBinary()
}

func (p *MaskingProof) MarshalBinary() ([]byte, error) {
	return p.proof.MarshalBinary()
}

func (p *RemaskingProof) MarshalBinary() ([]byte, error) {
	return p.proof.MarshalBinary()
}

func (p *RevealProof) MarshalBinary() ([]byte, error) {
	return p.proof.MarshalBinary()
}

func (p *ShuffleProof) MarshalBinary() ([]byte, error) {
	return p.proof.MarshalBinary()
}

// DecodePublicKey parses a canonical point encoding, rejecting the identity.
func (p *Parameters) DecodePublicKey(data []byte) (PublicKey, error) {
	pk, err := curve.DecodePoint(p.group, data)
	if err != nil {
		return nil, malformedErr("public key", err)
	}
	if pk.IsIdentity() {
		return nil, malformed("public key is the identity")
	}
	return pk, nil
}

// DecodeSecretKey parses a canonical scalar encoding, rejecting zero.
func (p *Parameters) DecodeSecretKey(data []byte) (SecretKey, error) {
	sk, err := curve.DecodeScalar(p.group, data)
	if err != nil {
		return nil, malformedErr("secret key", err)
	}
	if sk.IsZero() {
		return nil, malformed("secret key is zero")
	}
	return sk, nil
}

// DecodeScalar parses a canonical scalar encoding, such as a masking factor.
func (p *Parameters) DecodeScalar(data []byte) (curve.Scalar, error) {
	s, err := curve.DecodeScalar(p.group, data)
	if err != nil {
		return nil, malformedErr("scalar", err)
	}
	return s, nil
}

// DecodeCard parses a point, which must be in the card table.
func (p *Parameters) DecodeCard(data []byte) (Card, error) {
	point, err := curve.DecodePoint(p.group, data)
	if err != nil {
		return Card{}, malformedErr("card", err)
	}
	card := Card{Point: point}
	if err = p.checkCard(card); err != nil {
		return Card{}, err
	}
	return card, nil
}

// DecodeMaskedCard parses C1‖C2.
func (p *Parameters) DecodeMaskedCard(data []byte) (*MaskedCard, error) {
	c := elgamal.Empty(p.group)
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, malformedErr("masked card", err)
	}
	return c, nil
}

// DecodeDeck parses N masked cards, concatenated.
func (p *Parameters) DecodeDeck(data []byte) ([]*MaskedCard, error) {
	size := 2 * p.group.PointBytes()
	if len(data) != p.n*size {
		return nil, malformed("deck encoding has %d bytes, expected %d", len(data), p.n*size)
	}
	deck := make([]*MaskedCard, p.n)
	for i := range deck {
		c, err := p.DecodeMaskedCard(data[i*size : (i+1)*size])
		if err != nil {
			return nil, err
		}
		deck[i] = c
	}
	return deck, nil
}

// EncodeDeck concatenates the encodings of every masked card.
func EncodeDeck(deck []*MaskedCard) ([]byte, error) {
	var out []byte
	for _, c := range deck {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// EncodeDeckEntries returns the encoding of every masked card, one entry per card.
func EncodeDeckEntries(deck []*MaskedCard) ([][]byte, error) {
	out := make([][]byte, len(deck))
	for i, c := range deck {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

// DecodeRevealToken parses a canonical point encoding.
func (p *Parameters) DecodeRevealToken(data []byte) (RevealToken, error) {
	point, err := curve.DecodePoint(p.group, data)
	if err != nil {
		return RevealToken{}, malformedErr("reveal token", err)
	}
	return RevealToken{Point: point}, nil
}

func (p *Parameters) DecodeKeyOwnershipProof(data []byte) (*KeyOwnershipProof, error) {
	proof := zksch.Empty(p.group)
	if err := proof.UnmarshalBinary(data); err != nil {
		return nil, malformedErr("key ownership proof", err)
	}
	return &KeyOwnershipProof{proof: proof}, nil
}

func (p *Parameters) DecodeMaskingProof(data []byte) (*MaskingProof, error) {
	proof, err := p.decodeDleq("masking proof", data)
	if err != nil {
		return nil, err
	}
	return &MaskingProof{proof: proof}, nil
}

func (p *Parameters) DecodeRemaskingProof(data []byte) (*RemaskingProof, error) {
	proof, err := p.decodeDleq("remasking proof", data)
	if err != nil {
		return nil, err
	}
	return &RemaskingProof{proof: proof}, nil
}

func (p *Parameters) DecodeRevealProof(data []byte) (*RevealProof, error) {
	proof, err := p.decodeDleq("reveal proof", data)
	if err != nil {
		return nil, err
	}
	return &RevealProof{proof: proof}, nil
}

// DecodeShuffleProof parses a shuffle proof, which must be about N cards.
func (p *Parameters) DecodeShuffleProof(data []byte) (*ShuffleProof, error) {
	proof := zkshuffle.Empty(p.group)
	if err := proof.UnmarshalBinary(data); err != nil {
		return nil, malformedErr("shuffle proof", err)
	}
	if proof.Size() != p.n {
		return nil, malformed("shuffle proof about %d cards, parameters have %d", proof.Size(), p.n)
	}
	return &ShuffleProof{proof: proof}, nil
}

func (p *Parameters) decodeDleq(what string, data []byte) (*zkdleq.Proof, error) {
	proof := zkdleq.Empty(p.group)
	if err := proof.UnmarshalBinary(data); err != nil {
		return nil, malformedErr(what, err)
	}
	return proof, nil
}
