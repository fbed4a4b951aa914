package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCardNotFound is returned when a card id resolves to nothing.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardDisabled is returned when a mutation is attempted on a frozen
	// or read-only card.
	ErrCardDisabled = errors.New("card is frozen or read-only")

	// ErrCardBusy is returned when a move is already in flight for the card
	// in this session.
	ErrCardBusy = errors.New("a move is already in progress for this card")

	// ErrNoNextStep is returned when a forward move is requested from the
	// last step or from an unresolved position.
	ErrNoNextStep = errors.New("no next step to move to")

	// ErrNoPreviousStep is returned when a backward move is requested from
	// the first step or from an unresolved position.
	ErrNoPreviousStep = errors.New("no previous step to move to")

	// ErrStepNotInFlow is returned when a target step belongs to another
	// flow.
	ErrStepNotInFlow = errors.New("step does not belong to the card's flow")
)

// MoveBlockedError reports a forward transition refused by the requirement
// check. It is advisory: the card and form are untouched and the user retries
// after finishing the named fields.
type MoveBlockedError struct {
	Unmet []string
}

func (e *MoveBlockedError) Error() string {
	return fmt.Sprintf("move blocked by unmet requirements: %s", strings.Join(e.Unmet, "; "))
}
