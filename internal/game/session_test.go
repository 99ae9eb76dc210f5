// internal/game/session_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolaria/playtable/internal/mana"
	"github.com/tolaria/playtable/internal/models"
)

// startedSession seats n players with the standard deck, settles opening
// hands, and starts the game.
func startedSession(t *testing.T, n int, mode Mode) (*Session, []*Player) {
	t.Helper()
	s := NewSession(mode)
	players := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		p := newTestPlayer(t, fortyCardDeck())
		require.Nil(t, s.AddPlayer(p))
		require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "draw_opening_hand"}))
		require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "keep_hand"}))
		players = append(players, p)
	}
	require.Nil(t, s.Start())
	return s, players
}

// putOnBattlefield drops a named card onto the battlefield directly.
func putOnBattlefield(p *Player, def models.CardDefinition) *Card {
	c := newCard(def, ZoneBattlefield, false)
	p.Battlefield = append(p.Battlefield, c)
	return c
}

// putInHand places a fresh instance of def into the player's hand.
func putInHand(p *Player, def models.CardDefinition) *Card {
	c := newCard(def, ZoneHand, false)
	p.Hand = append(p.Hand, c)
	return c
}

func TestApplyRejectsUnknownPlayer(t *testing.T) {
	s, _ := startedSession(t, 1, ModeSolo)
	err := s.Apply(uuid.New(), models.GameAction{Type: "draw_card"})
	require.NotNil(t, err)
	assert.Equal(t, ErrPlayerNotFound, err.Code)
}

func TestPreStartOnlyAllowsMulliganFlow(t *testing.T) {
	s := NewSession(ModeMultiplayer)
	p := newTestPlayer(t, fortyCardDeck())
	require.Nil(t, s.AddPlayer(p))

	err := s.Apply(p.ID, models.GameAction{Type: "draw_card"})
	require.NotNil(t, err)
	assert.Equal(t, ErrNotStarted, err.Code)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "draw_opening_hand"}))
	assert.Len(t, p.Hand, 7)

	err = s.Apply(p.ID, models.GameAction{Type: "draw_opening_hand"})
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidArgument, err.Code)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "mulligan"}))
	assert.Len(t, p.Hand, 6)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "keep_hand"}))
	assert.True(t, p.Ready)
}

func TestStartSetsTurnOneMainPhase(t *testing.T) {
	s, _ := startedSession(t, 3, ModeMultiplayer)
	assert.True(t, s.Started)
	assert.Equal(t, 1, s.TurnNumber)
	assert.Equal(t, PhaseMain1, s.Phase)
	require.Len(t, s.TurnOrder, 3)
	assert.Equal(t, s.TurnOrder[0], s.ActivePlayerID)

	err := s.Start()
	require.NotNil(t, err)
	assert.Equal(t, ErrAlreadyStarted, err.Code)
}

func TestPlayCardFreeForLands(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	land := putInHand(p, landDef("Forest", "Basic Land — Forest"))

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "play_card", InstanceID: land.InstanceID.String()}))
	_, zone, _ := p.FindCard(land.InstanceID)
	assert.Equal(t, ZoneBattlefield, zone)
	assert.False(t, land.Tapped)
}

func TestPlayCardRejectsCostedSpell(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	spell := putInHand(p, spellDef("Counterspell", "{U}{U}", 2, "U"))

	err := s.Apply(p.ID, models.GameAction{Type: "play_card", InstanceID: spell.InstanceID.String()})
	require.NotNil(t, err)
	assert.Equal(t, ErrNotEnoughMana, err.Code)
	_, zone, _ := p.FindCard(spell.InstanceID)
	assert.Equal(t, ZoneHand, zone)
}

func TestPlayCardWithManaAtomic(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	spell := putInHand(p, spellDef("Mulldrifter", "{4}{U}", 5, "U"))

	// Affordability check fails before any payment: pool untouched.
	p.ManaPool = mana.Pool{U: 1, C: 2}
	err := s.Apply(p.ID, models.GameAction{Type: "play_card_with_mana", InstanceID: spell.InstanceID.String()})
	require.NotNil(t, err)
	assert.Equal(t, ErrNotEnoughMana, err.Code)
	assert.Equal(t, mana.Pool{U: 1, C: 2}, p.ManaPool)
	_, zone, _ := p.FindCard(spell.InstanceID)
	assert.Equal(t, ZoneHand, zone)

	// Exact-total pool resolves generic automatically.
	p.ManaPool = mana.Pool{U: 2, C: 3}
	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "play_card_with_mana", InstanceID: spell.InstanceID.String()}))
	assert.Equal(t, mana.Pool{}, p.ManaPool)
	_, zone, _ = p.FindCard(spell.InstanceID)
	assert.Equal(t, ZoneBattlefield, zone)
}

func TestPlayCardWithManaAmbiguousNeedsAllocation(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	spell := putInHand(p, spellDef("Mind Stone Golem", "{2}{U}", 3, "U"))
	p.ManaPool = mana.Pool{U: 1, G: 3, R: 3}

	err := s.Apply(p.ID, models.GameAction{Type: "play_card_with_mana", InstanceID: spell.InstanceID.String()})
	require.NotNil(t, err)
	assert.Equal(t, ErrBadPayment, err.Code)
	assert.Equal(t, mana.Pool{U: 1, G: 3, R: 3}, p.ManaPool)

	require.Nil(t, s.Apply(p.ID, models.GameAction{
		Type:           "play_card_with_mana",
		InstanceID:     spell.InstanceID.String(),
		GenericPayment: map[string]int{"G": 2},
	}))
	assert.Equal(t, mana.Pool{G: 1, R: 3}, p.ManaPool)
}

func TestTapForManaNoOpCases(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	land := putOnBattlefield(p, landDef("Island", "Basic Land — Island"))
	creature := putOnBattlefield(p, spellDef("Bear", "{1}{G}", 2, "G"))

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "tap_for_mana", InstanceID: land.InstanceID.String(), Color: "U"}))
	assert.True(t, land.Tapped)
	assert.Equal(t, 1, p.ManaPool.U)

	// Tapping an already-tapped land is a silent no-op.
	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "tap_for_mana", InstanceID: land.InstanceID.String(), Color: "U"}))
	assert.Equal(t, 1, p.ManaPool.U)

	// So is a non-land.
	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "tap_for_mana", InstanceID: creature.InstanceID.String(), Color: "G"}))
	assert.False(t, creature.Tapped)
	assert.Equal(t, 0, p.ManaPool.G)
}

func TestManaPoolActions(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "add_mana", Color: "R", Amount: 3}))
	assert.Equal(t, 3, p.ManaPool.R)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "remove_mana", Color: "R"}))
	assert.Equal(t, 2, p.ManaPool.R)

	err := s.Apply(p.ID, models.GameAction{Type: "add_mana", Color: "Z"})
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidArgument, err.Code)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "clear_mana_pool"}))
	assert.Equal(t, mana.Pool{}, p.ManaPool)
}

func TestLifePoisonCommanderDamage(t *testing.T) {
	s, players := startedSession(t, 2, ModeMultiplayer)
	p := players[0]

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "update_life", Change: -7}))
	assert.Equal(t, 33, p.Life)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "update_poison", Change: -2}))
	assert.Equal(t, 0, p.Poison, "poison clamps at zero")

	src := players[1].ID.String()
	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "commander_damage", TargetID: src, Change: 5}))
	assert.Equal(t, 5, p.CommanderDamage[src])
}

func TestNextTurnRoundRobin(t *testing.T) {
	s, _ := startedSession(t, 3, ModeMultiplayer)
	first := s.ActivePlayerID
	active := s.Players[first]
	land := putOnBattlefield(active, landDef("Swamp", "Basic Land — Swamp"))
	land.Tapped = true
	active.ManaPool = mana.Pool{B: 2}
	handBefore := len(active.Hand)

	require.Nil(t, s.Apply(first, models.GameAction{Type: "next_turn"}))

	assert.Equal(t, 2, s.TurnNumber)
	assert.Equal(t, PhaseUntap, s.Phase)
	assert.Equal(t, s.TurnOrder[1], s.ActivePlayerID)
	assert.False(t, land.Tapped, "rollover untaps the previous active player")
	assert.Equal(t, mana.Pool{}, active.ManaPool)
	assert.Len(t, active.Hand, handBefore, "multiplayer rollover never auto-draws")

	// Wrapping back around to the first player.
	require.Nil(t, s.Apply(first, models.GameAction{Type: "next_turn"}))
	require.Nil(t, s.Apply(first, models.GameAction{Type: "next_turn"}))
	assert.Equal(t, first, s.ActivePlayerID)
	assert.Equal(t, 4, s.TurnNumber)
}

func TestNextTurnSoloAutoDraws(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	handBefore := len(p.Hand)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "next_turn"}))
	assert.Len(t, p.Hand, handBefore+1)
	assert.Equal(t, p.ID, s.ActivePlayerID)
}

func TestSetPhase(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "set_phase", Phase: "combat_damage"}))
	assert.Equal(t, PhaseCombatDamage, s.Phase)

	err := s.Apply(p.ID, models.GameAction{Type: "set_phase", Phase: "teatime"})
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidArgument, err.Code)
}

func TestDrawFromEmptyLibraryRejected(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	p.Library = nil

	err := s.Apply(p.ID, models.GameAction{Type: "draw_card"})
	require.NotNil(t, err)
	assert.Equal(t, ErrLibraryEmpty, err.Code)
}

func TestUnknownActionRejected(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	err := s.Apply(players[0].ID, models.GameAction{Type: "cast_fireball"})
	require.NotNil(t, err)
	assert.Equal(t, ErrUnknownAction, err.Code)
}

func TestHistoryRecordsAcceptedActionsOnly(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	var published []ActionRecord
	s.PublishFn = func(rec ActionRecord) { published = append(published, rec) }
	base := len(s.History)

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "draw_card"}))
	s.Apply(p.ID, models.GameAction{Type: "cast_fireball"})

	require.Len(t, s.History, base+1)
	rec := s.History[len(s.History)-1]
	assert.Equal(t, "draw_card", rec.ActionType)
	assert.Equal(t, p.ID, rec.PlayerID)
	assert.NotZero(t, rec.Timestamp)
	require.Len(t, published, 1)
	assert.Equal(t, rec.ID, published[0].ID)
}

func TestFullGoldfishOpening(t *testing.T) {
	// End to end: instantiate, shuffle, draw seven, play a land, tap it,
	// pass the turn. The invariants from the unit tests hold throughout.
	s := NewSession(ModeSolo)
	p := newTestPlayer(t, fortyCardDeck())
	p.ShuffleLibrary()
	require.Nil(t, s.AddPlayer(p))
	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "draw_opening_hand"}))
	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "keep_hand"}))
	require.Nil(t, s.Start())

	require.Len(t, p.Hand, 7)
	require.Len(t, p.Library, 33)

	var land *Card
	for _, c := range p.Hand {
		if c.IsLand() {
			land = c
			break
		}
	}
	total := 40
	if land == nil {
		land = putInHand(p, landDef("Forest", "Basic Land — Forest"))
		total++
	}

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "play_card", InstanceID: land.InstanceID.String()}))
	color := string(land.ProducedColors()[0])
	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "tap_for_mana", InstanceID: land.InstanceID.String(), Color: color}))
	assert.Equal(t, 1, p.ManaPool.Total())

	require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "next_turn"}))
	assert.Equal(t, 2, s.TurnNumber)
	assert.False(t, land.Tapped)
	assert.Equal(t, 0, p.ManaPool.Total())
	assert.Len(t, p.AllCards(), total)
}
