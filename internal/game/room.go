// internal/game/room.go
package game

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tolaria/playtable/internal/models"
)

// Room is one multiplayer game: the authoritative Session plus the
// pre-game lobby state (roster, readiness, join policy) and the
// shareable game code. The server process exclusively owns and mutates
// the room; clients only ever hold redacted snapshot copies. All access
// goes through Mu, which serializes every player's actions into a total
// order.
type Room struct {
	ID     uuid.UUID
	Code   string
	HostID uuid.UUID

	MinPlayers int
	MaxPlayers int

	Session *Session

	Mu sync.Mutex
}

// NewRoom creates a room hosted by hostID with the given shareable code.
func NewRoom(code string, hostID uuid.UUID, maxPlayers int) *Room {
	if maxPlayers < 2 {
		maxPlayers = 4
	}
	return &Room{
		ID:         uuid.New(),
		Code:       code,
		HostID:     hostID,
		MinPlayers: 2,
		MaxPlayers: maxPlayers,
		Session:    NewSession(ModeMultiplayer),
	}
}

// AddPlayer instantiates the joining player's deck and seats them.
// Assumes Mu is held.
func (r *Room) AddPlayer(userID uuid.UUID, username, deckID, deckName string, deckCards []models.DeckCard) *ActionError {
	if r.Session.Started {
		return reject(ErrAlreadyStarted, "game already started")
	}
	if len(r.Session.Players) >= r.MaxPlayers {
		return reject(ErrInvalidArgument, "game is full")
	}
	if _, exists := r.Session.Players[userID]; exists {
		return reject(ErrInvalidArgument, "already in this game")
	}

	library, command := InstantiateDeck(deckCards)
	p := NewPlayer(userID, username, library, command)
	p.DeckID = deckID
	p.DeckName = deckName
	p.ShuffleLibrary()
	return r.Session.AddPlayer(p)
}

// RemovePlayer drops a player from the roster. Returns true when the
// room is now empty and can be discarded. Assumes Mu is held.
func (r *Room) RemovePlayer(userID uuid.UUID) (empty bool) {
	delete(r.Session.Players, userID)
	order := r.Session.TurnOrder[:0]
	for _, id := range r.Session.TurnOrder {
		if id != userID {
			order = append(order, id)
		}
	}
	r.Session.TurnOrder = order
	if r.Session.ActivePlayerID == userID && len(order) > 0 {
		r.Session.ActivePlayerID = order[0]
	}
	return len(r.Session.Players) == 0
}

// HandleAction runs one player action through the session and, when a
// kept hand completes the roster, starts the game. Returns started=true
// on the action that triggered the start. Assumes Mu is held.
func (r *Room) HandleAction(userID uuid.UUID, action models.GameAction) (started bool, err *ActionError) {
	if err := r.Session.Apply(userID, action); err != nil {
		return false, err
	}
	if !r.Session.Started && action.Type == "keep_hand" &&
		len(r.Session.Players) >= r.MinPlayers && r.Session.AllReady() {
		if err := r.Session.Start(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// SetConnected flags a player's live-channel status for snapshots.
// Assumes Mu is held.
func (r *Room) SetConnected(userID uuid.UUID, connected bool) {
	if p, ok := r.Session.Players[userID]; ok {
		p.Connected = connected
	}
}

// Joinable reports whether new players may still enter. Assumes Mu is held.
func (r *Room) Joinable() bool {
	return !r.Session.Started && len(r.Session.Players) < r.MaxPlayers
}

// LobbyPlayer is the pre-game roster entry shown in lobby listings.
type LobbyPlayer struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	DeckName string    `json:"deck_name"`
	Ready    bool      `json:"ready"`
}

// LobbyInfo summarizes the room for game lists and join notifications.
type LobbyInfo struct {
	GameCode   string        `json:"game_code"`
	Host       uuid.UUID     `json:"host"`
	Players    []LobbyPlayer `json:"players"`
	MaxPlayers int           `json:"max_players"`
	Started    bool          `json:"started"`
}

// Lobby renders the current roster. Assumes Mu is held.
func (r *Room) Lobby() LobbyInfo {
	info := LobbyInfo{
		GameCode:   r.Code,
		Host:       r.HostID,
		Players:    []LobbyPlayer{},
		MaxPlayers: r.MaxPlayers,
		Started:    r.Session.Started,
	}
	for _, p := range r.Session.Players {
		info.Players = append(info.Players, LobbyPlayer{
			ID:       p.ID,
			Username: p.Name,
			DeckName: p.DeckName,
			Ready:    p.Ready,
		})
	}
	return info
}
