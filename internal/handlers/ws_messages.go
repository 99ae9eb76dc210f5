// internal/handlers/ws_messages.go
package handlers

import (
	"github.com/tolaria/playtable/internal/game"
	"github.com/tolaria/playtable/internal/models"
)

// ClientMessage is the envelope for everything a client sends over the
// game WebSocket. Type selects the operation; Action is populated only
// for game_action messages.
type ClientMessage struct {
	Type string `json:"type"`

	GameCode   string `json:"game_code,omitempty"`
	DeckID     string `json:"deck_id,omitempty"`
	MaxPlayers int    `json:"max_players,omitempty"`

	Action *models.GameAction `json:"action,omitempty"`
}

// ServerMessage is the envelope for everything the server pushes back.
// State carries the viewer-specific redacted snapshot on updates; Code
// and Reason are set only on action_rejected and error messages.
type ServerMessage struct {
	Type string `json:"type"`

	GameCode string `json:"game_code,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Username string `json:"username,omitempty"`

	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`

	State *game.Snapshot  `json:"state,omitempty"`
	Lobby *game.LobbyInfo `json:"lobby,omitempty"`
}

// Server message types.
const (
	MsgGameCreated     = "game_created"
	MsgPlayerJoined    = "player_joined"
	MsgPlayerLeft      = "player_left"
	MsgGameStarted     = "game_started"
	MsgGameStateUpdate = "game_state_update"
	MsgActionRejected  = "action_rejected"
	MsgLeftGame        = "left_game"
	MsgGameOver        = "game_over"
	MsgError           = "error"
)
