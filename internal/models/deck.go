// internal/models/deck.go
package models

import "github.com/google/uuid"

// Deck is a stored, constructed deck belonging to a user.
type Deck struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Format string    `json:"format"`
}

// DeckCard is one entry of a deck list: a card definition plus how many
// physical copies the deck runs and where the builder filed it.
type DeckCard struct {
	Definition  CardDefinition `json:"card"`
	Quantity    int            `json:"quantity"`
	Zone        string         `json:"zone"` // deckbuild-time zone, e.g. "mainboard", "sideboard"
	IsCommander bool           `json:"is_commander"`
}
