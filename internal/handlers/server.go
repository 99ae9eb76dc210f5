// internal/handlers/server.go
package handlers

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tolaria/playtable/internal/game"
)

// GameServer holds the room store plus the live WebSocket connection for
// each authenticated user. Rooms own game state; the server owns the
// transport, so a player can reconnect on a fresh socket without the
// room noticing anything beyond the connected flag.
type GameServer struct {
	Mu        sync.Mutex
	RoomStore *game.RoomStore

	conns map[uuid.UUID]*websocket.Conn
}

func NewGameServer() *GameServer {
	return &GameServer{
		RoomStore: game.NewRoomStore(),
		conns:     make(map[uuid.UUID]*websocket.Conn),
	}
}

// registerConn binds a user's live socket, replacing any stale one.
func (gs *GameServer) registerConn(userID uuid.UUID, c *websocket.Conn) {
	gs.Mu.Lock()
	defer gs.Mu.Unlock()
	gs.conns[userID] = c
}

// unregisterConn drops the user's socket, but only if it is still the
// one being closed; a reconnect may already have replaced it.
func (gs *GameServer) unregisterConn(userID uuid.UUID, c *websocket.Conn) {
	gs.Mu.Lock()
	defer gs.Mu.Unlock()
	if gs.conns[userID] == c {
		delete(gs.conns, userID)
	}
}

// releaseConn drops the socket and, only when no replacement socket has
// taken over, marks the seat disconnected and resyncs the room. A fast
// reconnect registers its conn before the old handler exits; flagging
// the player disconnected then would flap the roster.
func (gs *GameServer) releaseConn(userID uuid.UUID, c *websocket.Conn, logger *logrus.Logger) {
	gs.unregisterConn(userID, c)
	if _, ok := gs.connFor(userID); ok {
		return
	}
	room, ok := gs.RoomStore.RoomForPlayer(userID)
	if !ok {
		return
	}
	room.Mu.Lock()
	room.SetConnected(userID, false)
	room.Mu.Unlock()
	gs.broadcastState(room, logger)
}

// connFor returns the user's current socket, if any.
func (gs *GameServer) connFor(userID uuid.UUID) (*websocket.Conn, bool) {
	gs.Mu.Lock()
	defer gs.Mu.Unlock()
	c, ok := gs.conns[userID]
	return c, ok
}
