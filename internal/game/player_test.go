// internal/game/player_test.go
package game

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolaria/playtable/internal/mana"
	"github.com/tolaria/playtable/internal/models"
)

func landDef(name, typeLine string) models.CardDefinition {
	return models.CardDefinition{
		ID:       "def-" + name,
		Name:     name,
		TypeLine: typeLine,
	}
}

func spellDef(name, cost string, cmc float64, colors ...string) models.CardDefinition {
	return models.CardDefinition{
		ID:       "def-" + name,
		Name:     name,
		ManaCost: cost,
		CMC:      cmc,
		TypeLine: "Creature — Test",
		Colors:   colors,
	}
}

// fortyCardDeck builds the 17-land / 23-spell list used across tests.
func fortyCardDeck() []models.DeckCard {
	return []models.DeckCard{
		{Definition: landDef("Forest", "Basic Land — Forest"), Quantity: 9, Zone: "library"},
		{Definition: landDef("Island", "Basic Land — Island"), Quantity: 8, Zone: "library"},
		{Definition: spellDef("Llanowar Elves", "{G}", 1, "G"), Quantity: 8, Zone: "library"},
		{Definition: spellDef("Counterspell", "{U}{U}", 2, "U"), Quantity: 8, Zone: "library"},
		{Definition: spellDef("Mulldrifter", "{4}{U}", 5, "U"), Quantity: 7, Zone: "library"},
	}
}

func newTestPlayer(t *testing.T, deck []models.DeckCard) *Player {
	t.Helper()
	library, command := InstantiateDeck(deck)
	return NewPlayer(uuid.New(), "tester", library, command)
}

func TestInstantiateDeckExpandsQuantities(t *testing.T) {
	library, command := InstantiateDeck(fortyCardDeck())
	require.Len(t, library, 40)
	require.Empty(t, command)

	seen := map[uuid.UUID]bool{}
	for _, c := range library {
		assert.False(t, seen[c.InstanceID], "instance ids must be unique")
		seen[c.InstanceID] = true
		assert.Equal(t, ZoneLibrary, c.Zone)
		assert.False(t, c.Tapped)
		assert.Empty(t, c.Counters)
	}
}

func TestInstantiateDeckCommanderGoesToCommandZone(t *testing.T) {
	deck := append(fortyCardDeck(), models.DeckCard{
		Definition:  spellDef("Omnath", "{3}{G}", 4, "G"),
		Quantity:    1,
		IsCommander: true,
	})
	library, command := InstantiateDeck(deck)
	assert.Len(t, library, 40)
	require.Len(t, command, 1)
	assert.True(t, command[0].IsCommander)
	assert.Equal(t, ZoneCommand, command[0].Zone)
}

func TestZoneUnionInvariant(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	original := map[uuid.UUID]bool{}
	for _, c := range p.AllCards() {
		original[c.InstanceID] = true
	}

	p.Draw(7)
	milled, _ := p.Mill(3)
	require.Equal(t, 3, milled)
	first := p.Hand[0].InstanceID
	require.Nil(t, p.MoveCard(first, ZoneHand, ZoneBattlefield))
	require.Nil(t, p.MoveCard(first, ZoneBattlefield, ZoneExile))

	all := p.AllCards()
	assert.Len(t, all, 40)
	for _, c := range all {
		assert.True(t, original[c.InstanceID], "no instance may be created or destroyed")
	}
}

func TestInstanceIdentityStableAcrossMoves(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.Draw(1)
	id := p.Hand[0].InstanceID

	require.Nil(t, p.MoveCard(id, ZoneHand, ZoneBattlefield))
	require.Nil(t, p.MoveCard(id, ZoneBattlefield, ZoneGraveyard))
	require.Nil(t, p.MoveCard(id, ZoneGraveyard, ZoneLibrary))

	c, zone, found := p.FindCard(id)
	require.True(t, found)
	assert.Equal(t, ZoneLibrary, zone)
	assert.Equal(t, id, c.InstanceID)
}

func TestMoveCardWrongZoneFails(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.Draw(1)
	id := p.Hand[0].InstanceID

	err := p.MoveCard(id, ZoneBattlefield, ZoneGraveyard)
	require.NotNil(t, err)
	assert.Equal(t, ErrWrongZone, err.Code)
	_, zone, _ := p.FindCard(id)
	assert.Equal(t, ZoneHand, zone, "failed move must not change state")
}

func TestMoveToLibraryResetsCardState(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.Draw(2)
	id := p.Hand[0].InstanceID
	other := p.Hand[1].InstanceID
	require.Nil(t, p.MoveCard(id, ZoneHand, ZoneBattlefield))
	require.Nil(t, p.MoveCard(other, ZoneHand, ZoneBattlefield))

	require.Nil(t, p.ToggleTap(id))
	require.Nil(t, p.AddCounter(id, "+1/+1", 2))
	require.Nil(t, p.Attach(id, other))
	require.Nil(t, p.FlipFaceDown(id))

	require.Nil(t, p.MoveCard(id, ZoneBattlefield, ZoneLibrary))
	c, _, _ := p.FindCard(id)
	assert.False(t, c.Tapped)
	assert.Empty(t, c.Counters)
	assert.Equal(t, uuid.Nil, c.AttachedTo)
	assert.False(t, c.FaceDown)
}

func TestMoveToHandUntaps(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.Draw(1)
	id := p.Hand[0].InstanceID
	require.Nil(t, p.MoveCard(id, ZoneHand, ZoneBattlefield))
	require.Nil(t, p.ToggleTap(id))
	require.Nil(t, p.AddCounter(id, "charge", 1))

	require.Nil(t, p.MoveCard(id, ZoneBattlefield, ZoneHand))
	c, _, _ := p.FindCard(id)
	assert.False(t, c.Tapped)
	assert.Equal(t, 1, c.Counters["charge"], "counters survive a return to hand")
}

func TestDrawDeckOut(t *testing.T) {
	p := newTestPlayer(t, []models.DeckCard{
		{Definition: landDef("Forest", "Basic Land — Forest"), Quantity: 3},
	})
	drawn, deckOut := p.Draw(5)
	assert.Equal(t, 3, drawn)
	assert.True(t, deckOut)
	assert.Len(t, p.Hand, 3)
	assert.Empty(t, p.Library)
}

func TestShufflePreservesContents(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	before := map[uuid.UUID]bool{}
	order := make([]uuid.UUID, len(p.Library))
	for i, c := range p.Library {
		before[c.InstanceID] = true
		order[i] = c.InstanceID
	}

	p.ShuffleLibrary()

	require.Len(t, p.Library, 40)
	moved := false
	for i, c := range p.Library {
		assert.True(t, before[c.InstanceID])
		if c.InstanceID != order[i] {
			moved = true
		}
	}
	assert.True(t, moved, "a 40-card shuffle should not be the identity permutation")
}

func TestShuffleFairness(t *testing.T) {
	entries := make([]models.DeckCard, 8)
	for i := range entries {
		entries[i] = models.DeckCard{
			Definition: landDef(fmt.Sprintf("Plains %d", i), "Basic Land — Plains"),
			Quantity:   1,
		}
	}
	p := newTestPlayer(t, entries)
	tracked := p.Library[0].InstanceID

	const trials = 4000
	counts := make([]int, len(p.Library))
	for i := 0; i < trials; i++ {
		p.ShuffleLibrary()
		for pos, c := range p.Library {
			if c.InstanceID == tracked {
				counts[pos]++
				break
			}
		}
	}

	// Chi-square over the tracked card's landing positions. With 7
	// degrees of freedom the 0.9999 quantile is 27.9, so 30 keeps the
	// flake rate around one in ten thousand.
	expected := float64(trials) / float64(len(counts))
	chi2 := 0.0
	for _, n := range counts {
		d := float64(n) - expected
		chi2 += d * d / expected
	}
	assert.Less(t, chi2, 30.0, "positional frequencies should be near uniform, chi2=%.2f counts=%v", chi2, counts)
}

func TestMulliganDrawsOneFewer(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.DrawOpeningHand()
	require.Len(t, p.Hand, 7)

	require.Nil(t, p.Mulligan())
	assert.Len(t, p.Hand, 6)
	assert.Len(t, p.Library, 34)

	require.Nil(t, p.Mulligan())
	assert.Len(t, p.Hand, 5)
}

func TestMulliganCap(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.DrawOpeningHand()
	for i := 0; i < 6; i++ {
		require.Nil(t, p.Mulligan())
	}
	assert.Len(t, p.Hand, 1)

	err := p.Mulligan()
	require.NotNil(t, err)
	assert.Equal(t, ErrMulliganCapped, err.Code)
	assert.Len(t, p.Hand, 1)
}

func TestCounterClampAtZero(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.Draw(1)
	id := p.Hand[0].InstanceID
	require.Nil(t, p.MoveCard(id, ZoneHand, ZoneBattlefield))

	require.Nil(t, p.AddCounter(id, "+1/+1", 2))
	require.Nil(t, p.AddCounter(id, "+1/+1", -5))
	c, _, _ := p.FindCard(id)
	_, exists := c.Counters["+1/+1"]
	assert.False(t, exists, "emptied counter kinds are dropped, never negative")
}

func TestAttachRequiresBattlefieldTarget(t *testing.T) {
	p := newTestPlayer(t, fortyCardDeck())
	p.Draw(2)
	aura := p.Hand[0].InstanceID
	target := p.Hand[1].InstanceID
	require.Nil(t, p.MoveCard(aura, ZoneHand, ZoneBattlefield))

	err := p.Attach(aura, target)
	require.NotNil(t, err)
	assert.Equal(t, ErrCardNotFound, err.Code)

	require.Nil(t, p.MoveCard(target, ZoneHand, ZoneBattlefield))
	require.Nil(t, p.Attach(aura, target))
	c, _, _ := p.FindCard(aura)
	assert.Equal(t, target, c.AttachedTo)

	require.Nil(t, p.Attach(aura, uuid.Nil))
	assert.Equal(t, uuid.Nil, c.AttachedTo)
}

func TestProducedColors(t *testing.T) {
	forest := newCard(landDef("Forest", "Basic Land — Forest"), ZoneBattlefield, false)
	assert.Equal(t, []string{"G"}, colorsToStrings(forest.ProducedColors()))

	tundra := newCard(landDef("Tundra", "Land — Plains Island"), ZoneBattlefield, false)
	assert.ElementsMatch(t, []string{"W", "U"}, colorsToStrings(tundra.ProducedColors()))

	command := models.CardDefinition{
		Name:       "Command Tower",
		TypeLine:   "Land",
		OracleText: "{T}: Add one mana of any color in your commander's color identity.",
	}
	tower := newCard(command, ZoneBattlefield, false)
	assert.Len(t, tower.ProducedColors(), 5)

	wastes := models.CardDefinition{
		Name:       "Wastes",
		TypeLine:   "Basic Land",
		OracleText: "{T}: Add {C}.",
	}
	w := newCard(wastes, ZoneBattlefield, false)
	assert.Equal(t, []string{"C"}, colorsToStrings(w.ProducedColors()))
}

func colorsToStrings(cs []mana.Color) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
