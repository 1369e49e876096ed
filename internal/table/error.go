package table

import (
	"fmt"

	"github.com/taurusgroup/mental-poker/pkg/party"
)

// Error is returned when a player stops the hand.
type Error struct {
	// Player that detected the error
	Player party.ID
	// Step at which the error occurred
	Step string
	// Culprit is empty if the identity of the misbehaving player cannot be known
	Culprit party.ID
	// Err is the underlying error
	Err error
}

func (e Error) Error() string {
	if e.Culprit == "" {
		return fmt.Sprintf("table: %s: %s: %s", e.Player, e.Step, e.Err)
	}
	return fmt.Sprintf("table: %s: %s: player %s: %s", e.Player, e.Step, e.Culprit, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
