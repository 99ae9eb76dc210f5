// internal/game/errors.go
package game

import "fmt"

// ActionError is a validation failure for a player action. Every
// rejection carries a machine-readable code and a short human-readable
// reason that is relayed verbatim to the initiating client. Rejected
// actions never leave partial state behind.
type ActionError struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// Rejection codes.
const (
	ErrCardNotFound    = "card_not_found"
	ErrWrongZone       = "wrong_zone"
	ErrNotEnoughMana   = "not_enough_mana"
	ErrBadPayment      = "bad_payment"
	ErrAlreadyTapped   = "already_tapped"
	ErrNotALand        = "not_a_land"
	ErrLibraryEmpty    = "library_empty"
	ErrMulliganCapped  = "mulligan_capped"
	ErrInvalidArgument = "invalid_argument"
	ErrUnknownAction   = "unknown_action"
	ErrNotStarted      = "not_started"
	ErrAlreadyStarted  = "already_started"
	ErrPlayerNotFound  = "player_not_found"
)

func reject(code, format string, args ...interface{}) *ActionError {
	return &ActionError{Code: code, Reason: fmt.Sprintf(format, args...)}
}
