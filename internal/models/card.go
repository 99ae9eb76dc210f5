// internal/models/card.go
package models

// CardFace holds the printable attributes of a single face of a card.
// Single-faced cards have exactly one face; double-faced, split, and
// adventure cards carry one entry per face.
type CardFace struct {
	Name       string   `json:"name"`
	ManaCost   string   `json:"mana_cost,omitempty"`
	TypeLine   string   `json:"type_line"`
	OracleText string   `json:"oracle_text,omitempty"`
	Power      string   `json:"power,omitempty"`
	Toughness  string   `json:"toughness,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	ImageURI   string   `json:"image_uri,omitempty"`
}

// CardDefinition is the immutable catalog record for one named card.
// The engine reads it but never mutates it; mutable per-copy state lives
// on game.Card instances.
type CardDefinition struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ManaCost string  `json:"mana_cost,omitempty"`
	CMC      float64 `json:"cmc"`
	TypeLine string  `json:"type_line"`

	OracleText string   `json:"oracle_text,omitempty"`
	Power      string   `json:"power,omitempty"`
	Toughness  string   `json:"toughness,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Rarity     string   `json:"rarity,omitempty"`
	ImageURI   string   `json:"image_uri,omitempty"`

	// Faces is populated only for multi-faced layouts. When empty the
	// top-level fields above describe the card's single face.
	Faces []CardFace `json:"card_faces,omitempty"`
}

// MultiFaced reports whether the definition carries more than one face.
func (d *CardDefinition) MultiFaced() bool {
	return len(d.Faces) > 1
}

// Face returns the face at idx, falling back to a face synthesized from
// the top-level fields for single-faced cards or out-of-range indexes.
func (d *CardDefinition) Face(idx int) CardFace {
	if idx >= 0 && idx < len(d.Faces) {
		return d.Faces[idx]
	}
	return CardFace{
		Name:       d.Name,
		ManaCost:   d.ManaCost,
		TypeLine:   d.TypeLine,
		OracleText: d.OracleText,
		Power:      d.Power,
		Toughness:  d.Toughness,
		Colors:     d.Colors,
		ImageURI:   d.ImageURI,
	}
}
