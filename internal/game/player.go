// internal/game/player.go
package game

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/tolaria/playtable/internal/mana"
)

// Player is the per-participant aggregate: life totals, the six card
// zones, and the turn-scoped mana pool. The union of all zones is
// exactly the instance set created from the player's deck; an instance
// lives in exactly one zone at a time.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	DeckID   string    `json:"deck_id,omitempty"`
	DeckName string    `json:"deck_name,omitempty"`

	Life            int            `json:"life"`
	Poison          int            `json:"poison"`
	CommanderDamage map[string]int `json:"commanderDamage"`
	ManaPool        mana.Pool      `json:"manaPool"`

	Library     []*Card `json:"library"`
	Hand        []*Card `json:"hand"`
	Battlefield []*Card `json:"battlefield"`
	Graveyard   []*Card `json:"graveyard"`
	Exile       []*Card `json:"exile"`
	Command     []*Card `json:"command"`

	MulliganCount   int  `json:"mulliganCount"`
	HasDrawnOpening bool `json:"hasDrawnOpening"`
	Ready           bool `json:"ready"`

	// Connected tracks the player's live channel in multiplayer games.
	// Solo sessions leave it true.
	Connected bool `json:"connected"`
}

// NewPlayer builds a player around an instantiated deck. Commander games
// start at 40 life; the caller can override for other formats.
func NewPlayer(id uuid.UUID, name string, library, command []*Card) *Player {
	return &Player{
		ID:              id,
		Name:            name,
		Life:            40,
		CommanderDamage: map[string]int{},
		Library:         library,
		Command:         command,
		Connected:       true,
	}
}

// zone returns the container slice for z.
func (p *Player) zone(z Zone) *[]*Card {
	switch z {
	case ZoneLibrary:
		return &p.Library
	case ZoneHand:
		return &p.Hand
	case ZoneBattlefield:
		return &p.Battlefield
	case ZoneGraveyard:
		return &p.Graveyard
	case ZoneExile:
		return &p.Exile
	case ZoneCommand:
		return &p.Command
	}
	return nil
}

// FindCard locates an instance across every zone.
func (p *Player) FindCard(instanceID uuid.UUID) (*Card, Zone, bool) {
	for _, z := range Zones {
		for _, c := range *p.zone(z) {
			if c.InstanceID == instanceID {
				return c, z, true
			}
		}
	}
	return nil, "", false
}

// findInZone locates an instance inside one specific zone.
func (p *Player) findInZone(instanceID uuid.UUID, z Zone) (*Card, int) {
	for i, c := range *p.zone(z) {
		if c.InstanceID == instanceID {
			return c, i
		}
	}
	return nil, -1
}

// removeFromZone detaches the card at idx from z, preserving order.
func (p *Player) removeFromZone(z Zone, idx int) *Card {
	zs := p.zone(z)
	c := (*zs)[idx]
	*zs = append((*zs)[:idx], (*zs)[idx+1:]...)
	return c
}

// MoveCard moves an instance from one zone to another, appending to the
// destination. Tap state is cleared entering hand or library; counters,
// attachments, and face-down state are additionally cleared entering the
// library (the card is shuffled back in as a fresh copy). Battlefield to
// battlefield moves preserve everything. Fails if the instance is not
// currently in fromZone.
func (p *Player) MoveCard(instanceID uuid.UUID, from, to Zone) *ActionError {
	c, idx := p.findInZone(instanceID, from)
	if c == nil {
		return reject(ErrWrongZone, "card is not in %s", from)
	}
	if from == to {
		return nil
	}
	p.removeFromZone(from, idx)

	switch to {
	case ZoneLibrary:
		c.Tapped = false
		c.Counters = map[string]int{}
		c.AttachedTo = uuid.Nil
		c.FaceDown = false
	case ZoneHand:
		c.Tapped = false
	}
	c.Zone = to
	dst := p.zone(to)
	*dst = append(*dst, c)
	return nil
}

// Draw moves the top n library cards to hand in library order. If the
// library runs short it draws what remains and reports deckOut; the loss
// condition is left to the caller.
func (p *Player) Draw(n int) (drawn int, deckOut bool) {
	for i := 0; i < n; i++ {
		if len(p.Library) == 0 {
			return drawn, true
		}
		c := p.Library[0]
		p.Library = p.Library[1:]
		c.Zone = ZoneHand
		c.Tapped = false
		p.Hand = append(p.Hand, c)
		drawn++
	}
	return drawn, false
}

// Mill moves the top n library cards to the graveyard, with the same
// under-count behavior as Draw.
func (p *Player) Mill(n int) (milled int, deckOut bool) {
	for i := 0; i < n; i++ {
		if len(p.Library) == 0 {
			return milled, true
		}
		c := p.Library[0]
		p.Library = p.Library[1:]
		c.Zone = ZoneGraveyard
		p.Graveyard = append(p.Graveyard, c)
		milled++
	}
	return milled, false
}

// ShuffleLibrary randomizes library order with a uniform permutation.
func (p *Player) ShuffleLibrary() {
	rand.Shuffle(len(p.Library), func(i, j int) {
		p.Library[i], p.Library[j] = p.Library[j], p.Library[i]
	})
}

// DrawOpeningHand draws the opening hand, one card smaller per mulligan
// already taken.
func (p *Player) DrawOpeningHand() {
	size := 7 - p.MulliganCount
	if size < 0 {
		size = 0
	}
	p.Draw(size)
	p.HasDrawnOpening = true
}

// Mulligan returns the hand to the library, reshuffles, and deals a
// fresh hand one card smaller per cumulative mulligan. Capped at 6.
func (p *Player) Mulligan() *ActionError {
	if p.MulliganCount >= 6 {
		return reject(ErrMulliganCapped, "cannot mulligan further")
	}
	for _, c := range p.Hand {
		c.Zone = ZoneLibrary
	}
	p.Library = append(p.Library, p.Hand...)
	p.Hand = nil
	p.ShuffleLibrary()
	p.MulliganCount++
	p.DrawOpeningHand()
	return nil
}

// ToggleTap flips the tapped flag on any existing instance.
func (p *Player) ToggleTap(instanceID uuid.UUID) *ActionError {
	c, _, ok := p.FindCard(instanceID)
	if !ok {
		return reject(ErrCardNotFound, "card not found")
	}
	c.Tapped = !c.Tapped
	return nil
}

// UntapAll untaps every battlefield instance.
func (p *Player) UntapAll() {
	for _, c := range p.Battlefield {
		c.Tapped = false
	}
}

// AddCounter adjusts a counter kind on a battlefield instance by delta,
// clamping at zero and dropping emptied kinds.
func (p *Player) AddCounter(instanceID uuid.UUID, kind string, delta int) *ActionError {
	c, idx := p.findInZone(instanceID, ZoneBattlefield)
	if idx < 0 {
		return reject(ErrCardNotFound, "card not found on battlefield")
	}
	if c.Counters == nil {
		c.Counters = map[string]int{}
	}
	n := c.Counters[kind] + delta
	if n <= 0 {
		delete(c.Counters, kind)
		return nil
	}
	c.Counters[kind] = n
	return nil
}

// Attach records a weak attachment (aura, equipment) between two
// battlefield instances. A nil target detaches.
func (p *Player) Attach(instanceID, targetID uuid.UUID) *ActionError {
	c, idx := p.findInZone(instanceID, ZoneBattlefield)
	if idx < 0 {
		return reject(ErrCardNotFound, "card not found on battlefield")
	}
	if targetID != uuid.Nil {
		if _, tIdx := p.findInZone(targetID, ZoneBattlefield); tIdx < 0 {
			return reject(ErrCardNotFound, "attachment target not on battlefield")
		}
	}
	c.AttachedTo = targetID
	return nil
}

// FlipFaceDown toggles the face-down flag on a battlefield instance.
func (p *Player) FlipFaceDown(instanceID uuid.UUID) *ActionError {
	c, idx := p.findInZone(instanceID, ZoneBattlefield)
	if idx < 0 {
		return reject(ErrCardNotFound, "card not found on battlefield")
	}
	c.FaceDown = !c.FaceDown
	return nil
}

// AllCards returns every instance across all zones (diagnostics, tests).
func (p *Player) AllCards() []*Card {
	var all []*Card
	for _, z := range Zones {
		all = append(all, *p.zone(z)...)
	}
	return all
}
