package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/mental-poker/protocols/dlcards"
)

// KeyPair is the output of PlayerKeygen.
type KeyPair struct {
	PK []byte `cbor:"pk"`
	SK []byte `cbor:"sk"`
}

// MaskingOutput is a masked card and the proof that it hides a given card.
type MaskingOutput struct {
	MaskedCard []byte `cbor:"masked_card"`
	Proof      []byte `cbor:"proof"`
}

// RemaskingOutput is a remasked card and the proof that it hides the same card.
type RemaskingOutput struct {
	MaskedCard []byte `cbor:"masked_card"`
	Proof      []byte `cbor:"proof"`
}

// ShuffleOutput is a shuffled deck, one masked card per entry, and its proof.
type ShuffleOutput struct {
	ShuffledDeck [][]byte `cbor:"shuffled_deck"`
	Proof        []byte   `cbor:"proof"`
}

// RevealTokenWithProof is one player's reveal token for a masked card.
type RevealTokenWithProof struct {
	RevealToken []byte `cbor:"reveal_token"`
	Proof       []byte `cbor:"proof"`
}

// RevealShare is a RevealTokenWithProof together with the key of the player who made it.
type RevealShare struct {
	PK          []byte `cbor:"pk"`
	RevealToken []byte `cbor:"reveal_token"`
	Proof       []byte `cbor:"proof"`
}

// UnmaskOutput is an opened card and its index in the encoding table.
type UnmaskOutput struct {
	Card  []byte `cbor:"card"`
	Index int    `cbor:"index"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(fmt.Sprintf("wire: cbor encoding options: %v", err))
	}
	decOptions := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 2 * dlcards.MaxCards,
	}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic(fmt.Sprintf("wire: cbor decoding options: %v", err))
	}
}

// Marshal encodes a record with deterministic CBOR, so that equal records
// always have equal encodings.
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes a record produced by Marshal.
//
// Duplicate map keys are rejected.
func Unmarshal(data []byte, v interface{}) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", dlcards.ErrMalformed, err)
	}
	return nil
}
