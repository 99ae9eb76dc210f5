// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"github.com/tolaria/playtable/internal/mana"
)

// PlayerSnapshot is one player's state as seen by a specific viewer.
// Hidden zones (hand, library) are present in full only for the owner;
// everyone else gets empty arrays plus counts. Public zones go out in
// full for all players, including tap state and counters.
type PlayerSnapshot struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Life            int            `json:"life"`
	Poison          int            `json:"poison"`
	CommanderDamage map[string]int `json:"commanderDamage"`
	ManaPool        mana.Pool      `json:"manaPool"`
	Connected       bool           `json:"connected"`

	Battlefield []*Card `json:"battlefield"`
	Graveyard   []*Card `json:"graveyard"`
	Exile       []*Card `json:"exile"`
	Command     []*Card `json:"command"`

	Hand    []*Card `json:"hand"`
	Library []*Card `json:"library"`

	HandCount    int `json:"hand_count"`
	LibraryCount int `json:"library_count"`
}

// Snapshot is the full authoritative state rendered for one viewer. It
// is what the server pushes after every accepted action; clients replace
// their local view wholesale with the latest one received.
type Snapshot struct {
	ID             uuid.UUID        `json:"id"`
	GameCode       string           `json:"game_code,omitempty"`
	Format         string           `json:"format"`
	Players        []PlayerSnapshot `json:"players"`
	TurnOrder      []uuid.UUID      `json:"turn_order"`
	ActivePlayerID uuid.UUID        `json:"active_player_id"`
	TurnNumber     int              `json:"turn_number"`
	Phase          Phase            `json:"phase"`
	Started        bool             `json:"started"`
	History        []ActionRecord   `json:"history"`
}

const snapshotHistoryTail = 20

// SnapshotFor renders the session for one viewer, redacting every other
// player's hidden zones down to counts.
func (s *Session) SnapshotFor(viewerID uuid.UUID) Snapshot {
	snap := Snapshot{
		ID:             s.ID,
		Format:         "Commander",
		TurnOrder:      s.TurnOrder,
		ActivePlayerID: s.ActivePlayerID,
		TurnNumber:     s.TurnNumber,
		Phase:          s.Phase,
		Started:        s.Started,
	}

	tail := len(s.History) - snapshotHistoryTail
	if tail < 0 {
		tail = 0
	}
	snap.History = append([]ActionRecord{}, s.History[tail:]...)

	// Iterate in turn order when set so every viewer sees a stable
	// ordering; fall back to map order pre-start.
	ids := s.TurnOrder
	if len(ids) == 0 {
		for id := range s.Players {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		p, ok := s.Players[id]
		if !ok {
			continue
		}
		snap.Players = append(snap.Players, redactPlayer(p, p.ID == viewerID))
	}
	return snap
}

func redactPlayer(p *Player, isOwner bool) PlayerSnapshot {
	ps := PlayerSnapshot{
		ID:              p.ID,
		Name:            p.Name,
		Life:            p.Life,
		Poison:          p.Poison,
		CommanderDamage: p.CommanderDamage,
		ManaPool:        p.ManaPool,
		Connected:       p.Connected,
		Battlefield:     p.Battlefield,
		Graveyard:       p.Graveyard,
		Exile:           p.Exile,
		Command:         p.Command,
		HandCount:       len(p.Hand),
		LibraryCount:    len(p.Library),
	}
	if isOwner {
		ps.Hand = p.Hand
		ps.Library = p.Library
	} else {
		ps.Hand = []*Card{}
		ps.Library = []*Card{}
	}
	return ps
}
