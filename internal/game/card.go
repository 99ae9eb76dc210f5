// internal/game/card.go
package game

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tolaria/playtable/internal/mana"
	"github.com/tolaria/playtable/internal/models"
)

// Zone names one of the per-player card containers. The library is
// ordered; the rest are sets as far as game semantics are concerned.
type Zone string

const (
	ZoneLibrary     Zone = "library"
	ZoneHand        Zone = "hand"
	ZoneBattlefield Zone = "battlefield"
	ZoneGraveyard   Zone = "graveyard"
	ZoneExile       Zone = "exile"
	ZoneCommand     Zone = "command"
)

// Zones lists every card container in serialization order.
var Zones = []Zone{ZoneLibrary, ZoneHand, ZoneBattlefield, ZoneGraveyard, ZoneExile, ZoneCommand}

// ParseZone validates a wire zone name.
func ParseZone(s string) (Zone, bool) {
	for _, z := range Zones {
		if string(z) == s {
			return z, true
		}
	}
	return "", false
}

// Card is one physical copy of a card inside a running game: an instance
// with mutable state, distinct from its immutable catalog definition.
// Instance identity is stable for the whole session; moving zones
// mutates Zone, it never destroys and recreates the instance.
type Card struct {
	InstanceID uuid.UUID `json:"instanceId"`
	CardID     string    `json:"cardId"`

	Name       string   `json:"name"`
	ManaCost   string   `json:"mana_cost,omitempty"`
	CMC        float64  `json:"cmc"`
	TypeLine   string   `json:"type_line"`
	OracleText string   `json:"oracle_text,omitempty"`
	Power      string   `json:"power,omitempty"`
	Toughness  string   `json:"toughness,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Rarity     string   `json:"rarity,omitempty"`
	ImageURI   string   `json:"image_uri,omitempty"`

	Faces      []models.CardFace `json:"card_faces,omitempty"`
	ActiveFace int               `json:"activeFace"`

	Zone       Zone           `json:"zone"`
	Tapped     bool           `json:"isTapped"`
	Counters   map[string]int `json:"counters,omitempty"`
	AttachedTo uuid.UUID      `json:"attachedTo,omitempty"` // weak reference, never implies lifetime

	FaceDown    bool `json:"faceDown"`
	IsCommander bool `json:"isCommander"`
}

// newCard builds a fresh instance of def in the given zone.
func newCard(def models.CardDefinition, zone Zone, isCommander bool) *Card {
	return &Card{
		InstanceID:  uuid.New(),
		CardID:      def.ID,
		Name:        def.Name,
		ManaCost:    def.ManaCost,
		CMC:         def.CMC,
		TypeLine:    def.TypeLine,
		OracleText:  def.OracleText,
		Power:       def.Power,
		Toughness:   def.Toughness,
		Colors:      def.Colors,
		Rarity:      def.Rarity,
		ImageURI:    def.ImageURI,
		Faces:       def.Faces,
		Zone:        zone,
		Counters:    map[string]int{},
		IsCommander: isCommander,
	}
}

// InstantiateDeck expands a deck list into individually addressable game
// cards: one instance per physical copy, each with a fresh unique ID,
// defaulted untapped with no counters. Commanders go to the command
// zone; everything else starts in the library.
func InstantiateDeck(deckCards []models.DeckCard) (library, command []*Card) {
	for _, dc := range deckCards {
		qty := dc.Quantity
		if qty < 1 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			if dc.IsCommander {
				command = append(command, newCard(dc.Definition, ZoneCommand, true))
			} else {
				library = append(library, newCard(dc.Definition, ZoneLibrary, false))
			}
		}
	}
	return library, command
}

// IsLand reports whether the card's active face is a land.
func (c *Card) IsLand() bool {
	return strings.Contains(strings.ToLower(c.activeTypeLine()), "land")
}

func (c *Card) activeTypeLine() string {
	if c.ActiveFace >= 0 && c.ActiveFace < len(c.Faces) {
		return c.Faces[c.ActiveFace].TypeLine
	}
	return c.TypeLine
}

func (c *Card) activeOracleText() string {
	if c.ActiveFace >= 0 && c.ActiveFace < len(c.Faces) {
		return c.Faces[c.ActiveFace].OracleText
	}
	return c.OracleText
}

// anyColorPhrases mark lands that can produce all five colors.
var anyColorPhrases = []string{
	"add one mana of any color",
	"adds one mana of any color",
	"add mana of any color",
	"any one color",
	"mana of any type",
}

// ProducedColors infers which colors of mana a land can produce: basic
// land types in the type line first, then "add {x}" statements in the
// oracle text, defaulting to colorless. Multiple colors mean the player
// chooses at tap time.
func (c *Card) ProducedColors() []mana.Color {
	typeLine := strings.ToLower(c.activeTypeLine())

	var colors []mana.Color
	basics := []struct {
		landType string
		color    mana.Color
	}{
		{"plains", mana.White},
		{"island", mana.Blue},
		{"swamp", mana.Black},
		{"mountain", mana.Red},
		{"forest", mana.Green},
	}
	for _, b := range basics {
		if strings.Contains(typeLine, b.landType) {
			colors = append(colors, b.color)
		}
	}
	if len(colors) > 0 {
		return colors
	}

	text := strings.ToLower(c.activeOracleText())
	for _, phrase := range anyColorPhrases {
		if strings.Contains(text, phrase) {
			return []mana.Color{mana.White, mana.Blue, mana.Black, mana.Red, mana.Green}
		}
	}

	// Mana symbols near an "add"/"produce" verb indicate production;
	// symbols elsewhere (activation costs etc.) do not.
	seen := map[mana.Color]bool{}
	for i := 0; i+2 < len(text); i++ {
		if text[i] != '{' || text[i+2] != '}' {
			continue
		}
		sym := strings.ToUpper(text[i+1 : i+2])
		if !mana.IsValidColor(sym) {
			continue
		}
		ctxStart := i - 20
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctx := text[ctxStart:i]
		if strings.Contains(ctx, "add") || strings.Contains(ctx, "produce") {
			col := mana.Color(sym)
			if !seen[col] {
				seen[col] = true
				colors = append(colors, col)
			}
		}
	}
	if len(colors) > 0 {
		return colors
	}
	return []mana.Color{mana.Colorless}
}
