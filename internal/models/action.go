// internal/models/action.go
package models

// GameAction captures a player's in-game move as received over the wire.
// Type selects the operation; the remaining fields are interpreted per
// type and unused ones are left at their zero values.
type GameAction struct {
	Type        string `json:"action"`
	InstanceID  string `json:"instance_id,omitempty"`
	ToZone      string `json:"to_zone,omitempty"`
	Color       string `json:"color,omitempty"`
	Amount      int    `json:"amount,omitempty"`
	Count       int    `json:"count,omitempty"`
	Change      int    `json:"change,omitempty"`
	CounterType string `json:"counter_type,omitempty"`
	Phase       string `json:"phase,omitempty"`
	TargetID    string `json:"target_id,omitempty"` // attach target / commander damage source
	Details     string `json:"details,omitempty"`

	// GenericPayment is an explicit color -> count allocation for the
	// generic portion of a mana cost (play_card_with_mana).
	GenericPayment map[string]int `json:"generic_payment,omitempty"`
}
