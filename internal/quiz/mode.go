// Package quiz implements the three geography quiz modes (path building,
// name-all and find-the-place), their scoring, and the session that switches
// between them.
package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrNoPair       = errors.New("quiz: no start/end pair available")
	ErrUnknownGroup = errors.New("quiz: unknown region group")
	ErrNoPlaces     = errors.New("quiz: no places available")
	ErrWrongState   = errors.New("quiz: operation not valid in current state")
)

func wrongState(op string, state fmt.Stringer) error {
	return fmt.Errorf("%w: %s while %s", ErrWrongState, op, state)
}

// Mode identifies the active quiz mode.
type Mode uint8

const (
	ModeNone Mode = iota
	ModePath
	ModeNameAll
	ModePin
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePath:
		return "path"
	case ModeNameAll:
		return "name_all"
	case ModePin:
		return "pin"
	}
	return "unknown"
}

// Reason classifies a rejected submission.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNotFound
	ReasonAlreadyUsed
	ReasonNotAdjacent
	ReasonNotInGroup
	ReasonAlreadyNamed
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotFound:
		return "not-found"
	case ReasonAlreadyUsed:
		return "already-used"
	case ReasonNotAdjacent:
		return "not-adjacent"
	case ReasonNotInGroup:
		return "not-in-region"
	case ReasonAlreadyNamed:
		return "already-named"
	}
	return "unknown"
}

// Message is the player-facing text for a rejection.
func (r Reason) Message() string {
	switch r {
	case ReasonNotFound:
		return "Country not found"
	case ReasonAlreadyUsed:
		return "Already in path"
	case ReasonNotAdjacent:
		return "Not adjacent"
	case ReasonNotInGroup:
		return "Not in this region"
	case ReasonAlreadyNamed:
		return "Already named"
	}
	return ""
}

// Outcome is the result of one text submission.
type Outcome struct {
	Accepted bool
	Region   string // canonical name when resolved
	Reason   Reason
	Won      bool
}
