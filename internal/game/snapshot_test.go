// internal/game/snapshot_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolaria/playtable/internal/models"
)

func TestSnapshotRedactsOpponentHiddenZones(t *testing.T) {
	s, players := startedSession(t, 2, ModeMultiplayer)
	viewer, opponent := players[0], players[1]

	snap := s.SnapshotFor(viewer.ID)
	require.Len(t, snap.Players, 2)

	for _, ps := range snap.Players {
		assert.Equal(t, len(s.Players[ps.ID].Hand), ps.HandCount)
		assert.Equal(t, len(s.Players[ps.ID].Library), ps.LibraryCount)
		if ps.ID == viewer.ID {
			assert.Len(t, ps.Hand, len(viewer.Hand))
			assert.Len(t, ps.Library, len(viewer.Library))
		} else {
			assert.NotNil(t, ps.Hand)
			assert.Empty(t, ps.Hand, "opponent hands are redacted to counts")
			assert.NotNil(t, ps.Library)
			assert.Empty(t, ps.Library)
		}
	}

	// The opponent's own view shows their cards and hides the viewer's.
	snap = s.SnapshotFor(opponent.ID)
	for _, ps := range snap.Players {
		if ps.ID == opponent.ID {
			assert.Len(t, ps.Hand, len(opponent.Hand))
		} else {
			assert.Empty(t, ps.Hand)
		}
	}
}

func TestSnapshotPublicZonesVisibleToAll(t *testing.T) {
	s, players := startedSession(t, 2, ModeMultiplayer)
	owner, viewer := players[0], players[1]
	c := putOnBattlefield(owner, spellDef("Bear", "{1}{G}", 2, "G"))
	c.Tapped = true
	c.Counters["+1/+1"] = 2

	snap := s.SnapshotFor(viewer.ID)
	var ownerView *PlayerSnapshot
	for i := range snap.Players {
		if snap.Players[i].ID == owner.ID {
			ownerView = &snap.Players[i]
		}
	}
	require.NotNil(t, ownerView)
	require.Len(t, ownerView.Battlefield, 1)
	assert.True(t, ownerView.Battlefield[0].Tapped)
	assert.Equal(t, 2, ownerView.Battlefield[0].Counters["+1/+1"])
}

func TestSnapshotHistoryTail(t *testing.T) {
	s, players := startedSession(t, 1, ModeSolo)
	p := players[0]
	for i := 0; i < 30; i++ {
		require.Nil(t, s.Apply(p.ID, models.GameAction{Type: "update_life", Change: -1}))
	}

	snap := s.SnapshotFor(p.ID)
	assert.Len(t, snap.History, snapshotHistoryTail)
	last := s.History[len(s.History)-1]
	assert.Equal(t, last.ID, snap.History[len(snap.History)-1].ID)
}

func TestSnapshotStablePlayerOrder(t *testing.T) {
	s, _ := startedSession(t, 3, ModeMultiplayer)
	for _, pl := range s.Players {
		snap := s.SnapshotFor(pl.ID)
		require.Len(t, snap.Players, 3)
		for i, id := range s.TurnOrder {
			assert.Equal(t, id, snap.Players[i].ID, "players render in turn order for every viewer")
		}
	}
}
