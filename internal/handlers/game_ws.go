// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tolaria/playtable/internal/cache"
	"github.com/tolaria/playtable/internal/database"
	"github.com/tolaria/playtable/internal/game"
	"github.com/tolaria/playtable/internal/middleware"
	"github.com/tolaria/playtable/internal/models"
)

// GameWSHandler upgrades the HTTP connection to a WebSocket and runs the
// client's message loop. One socket serves the whole lifecycle: creating
// or joining a game, pre-game mulligans, and in-game actions. If the
// user is already seated in a room (a reconnect), the current state is
// pushed immediately after the upgrade.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"playtable"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "playtable" {
			logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'playtable' subprotocol.")
			return
		}

		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("User authentication failed: %v", err)
			c.Close(websocket.StatusPolicyViolation, "Authentication failed.")
			return
		}
		middleware.LogWebSocketConnect(logger, userID.String(), r.RemoteAddr)

		gs.registerConn(userID, c)

		// Reconnect path: the user still occupies a seat from a previous
		// socket, so flip them back to connected and resync.
		if room, ok := gs.RoomStore.RoomForPlayer(userID); ok {
			room.Mu.Lock()
			room.SetConnected(userID, true)
			room.Mu.Unlock()
			gs.broadcastState(room, logger)
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readClientMessages(ctx, c, gs, userID, logger)

		middleware.LogWebSocketDisconnect(logger, userID.String(), nil)
		gs.releaseConn(userID, c, logger)
	}
}

// readClientMessages reads, validates, and routes client messages until
// the socket closes or the context is cancelled.
func readClientMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, userID uuid.UUID, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for user %s.", userID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for user %s.", userID)
			} else {
				logger.Warnf("Error reading from WebSocket for user %s: %v (Status: %d)", userID, err, status)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from user %s. Ignoring.", msgType, userID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from user %s: %v. Data: %s", userID, err, string(data))
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		logger.Debugf("Received message '%s' from user %s.", msg.Type, userID)

		switch msg.Type {
		case "create_game":
			gs.handleCreateGame(ctx, c, userID, msg, logger)
		case "join_game":
			gs.handleJoinGame(ctx, c, userID, msg, logger)
		case "leave_game":
			gs.handleLeaveGame(ctx, c, userID, logger)
		case "game_action":
			gs.handleGameAction(ctx, c, userID, msg, logger)
		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
		default:
			logger.Warnf("Unknown message type '%s' from user %s.", msg.Type, userID)
			sendWsError(ctx, c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// loadPlayerDeck fetches the deck and its list, verifying ownership.
func loadPlayerDeck(ctx context.Context, userID uuid.UUID, deckID string) (*models.Deck, []models.DeckCard, error) {
	id, err := uuid.Parse(deckID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid deck id: %w", err)
	}
	deck, err := database.GetDeck(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("deck not found: %w", err)
	}
	if deck.UserID != userID {
		return nil, nil, fmt.Errorf("deck %s does not belong to user %s", deckID, userID)
	}
	cards, err := database.GetDeckCards(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load deck list: %w", err)
	}
	return deck, cards, nil
}

func (gs *GameServer) handleCreateGame(ctx context.Context, c *websocket.Conn, userID uuid.UUID, msg ClientMessage, logger *logrus.Logger) {
	if _, ok := gs.RoomStore.RoomForPlayer(userID); ok {
		sendWsError(ctx, c, "Already in a game; leave it first.")
		return
	}
	user, err := database.GetUserByID(ctx, userID)
	if err != nil {
		sendWsError(ctx, c, "User lookup failed.")
		return
	}
	deck, cards, err := loadPlayerDeck(ctx, userID, msg.DeckID)
	if err != nil {
		logger.Warnf("create_game deck load failed for user %s: %v", userID, err)
		sendWsError(ctx, c, "Could not load deck.")
		return
	}

	room := gs.RoomStore.CreateRoom(userID, msg.MaxPlayers)
	room.Mu.Lock()
	room.Session.PublishFn = publishActionFn(room.Session.ID, logger)
	aerr := room.AddPlayer(userID, user.Username, deck.ID.String(), deck.Name, cards)
	lobby := room.Lobby()
	room.Mu.Unlock()
	if aerr != nil {
		gs.RoomStore.ReleasePlayer(userID)
		gs.RoomStore.DeleteRoom(room.Code)
		sendWsError(ctx, c, aerr.Reason)
		return
	}

	logger.Infof("User %s created game %s", userID, room.Code)
	sendWsMessage(ctx, c, ServerMessage{
		Type:     MsgGameCreated,
		GameCode: room.Code,
		Lobby:    &lobby,
	})
	gs.broadcastState(room, logger)
}

func (gs *GameServer) handleJoinGame(ctx context.Context, c *websocket.Conn, userID uuid.UUID, msg ClientMessage, logger *logrus.Logger) {
	if _, ok := gs.RoomStore.RoomForPlayer(userID); ok {
		sendWsError(ctx, c, "Already in a game; leave it first.")
		return
	}
	room, ok := gs.RoomStore.GetRoom(strings.ToUpper(msg.GameCode))
	if !ok {
		sendWsError(ctx, c, "Game not found.")
		return
	}
	user, err := database.GetUserByID(ctx, userID)
	if err != nil {
		sendWsError(ctx, c, "User lookup failed.")
		return
	}
	deck, cards, err := loadPlayerDeck(ctx, userID, msg.DeckID)
	if err != nil {
		logger.Warnf("join_game deck load failed for user %s: %v", userID, err)
		sendWsError(ctx, c, "Could not load deck.")
		return
	}

	room.Mu.Lock()
	aerr := room.AddPlayer(userID, user.Username, deck.ID.String(), deck.Name, cards)
	lobby := room.Lobby()
	room.Mu.Unlock()
	if aerr != nil {
		sendWsError(ctx, c, aerr.Reason)
		return
	}
	gs.RoomStore.TrackPlayer(userID, room.Code)

	logger.Infof("User %s joined game %s", userID, room.Code)
	gs.broadcastToRoom(room, ServerMessage{
		Type:     MsgPlayerJoined,
		GameCode: room.Code,
		PlayerID: userID.String(),
		Username: user.Username,
		Lobby:    &lobby,
	}, logger)
	gs.broadcastState(room, logger)
}

func (gs *GameServer) handleLeaveGame(ctx context.Context, c *websocket.Conn, userID uuid.UUID, logger *logrus.Logger) {
	room, ok := gs.RoomStore.RoomForPlayer(userID)
	if !ok {
		sendWsError(ctx, c, "Not in a game.")
		return
	}
	gs.RoomStore.ReleasePlayer(userID)

	room.Mu.Lock()
	empty := room.RemovePlayer(userID)
	lastStanding := room.Session.Started && len(room.Session.Players) == 1
	lobby := room.Lobby()
	room.Mu.Unlock()

	sendWsMessage(ctx, c, ServerMessage{Type: MsgLeftGame, GameCode: room.Code})
	logger.Infof("User %s left game %s", userID, room.Code)

	if empty {
		gs.RoomStore.DeleteRoom(room.Code)
		return
	}
	gs.broadcastToRoom(room, ServerMessage{
		Type:     MsgPlayerLeft,
		GameCode: room.Code,
		PlayerID: userID.String(),
		Lobby:    &lobby,
	}, logger)
	if lastStanding {
		gs.broadcastToRoom(room, ServerMessage{Type: MsgGameOver, GameCode: room.Code}, logger)
	}
	gs.broadcastState(room, logger)
}

func (gs *GameServer) handleGameAction(ctx context.Context, c *websocket.Conn, userID uuid.UUID, msg ClientMessage, logger *logrus.Logger) {
	room, ok := gs.RoomStore.RoomForPlayer(userID)
	if !ok {
		sendWsError(ctx, c, "Not in a game.")
		return
	}
	if msg.Action == nil {
		sendWsError(ctx, c, "game_action requires an action object.")
		return
	}

	room.Mu.Lock()
	started, aerr := room.HandleAction(userID, *msg.Action)
	room.Mu.Unlock()

	if aerr != nil {
		logger.Debugf("Action '%s' from user %s rejected: %s", msg.Action.Type, userID, aerr.Reason)
		sendWsMessage(ctx, c, ServerMessage{
			Type:   MsgActionRejected,
			Code:   aerr.Code,
			Reason: aerr.Reason,
		})
		return
	}

	if started {
		logger.Infof("Game %s started", room.Code)
		gs.broadcastToRoom(room, ServerMessage{Type: MsgGameStarted, GameCode: room.Code}, logger)
	}
	gs.broadcastState(room, logger)
}

// publishActionFn wires a session's accepted actions onto the historian
// queue. No-op when Redis is not connected.
func publishActionFn(gameID uuid.UUID, logger *logrus.Logger) func(rec game.ActionRecord) {
	return func(rec game.ActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishAction(ctx, gameID, rec); err != nil {
			logger.Warnf("Failed to publish action for game %s: %v", gameID, err)
		}
	}
}

// broadcastState renders and sends each seated player their own redacted
// snapshot. Snapshots are built under the room lock; the writes happen
// asynchronously so a slow client cannot stall game logic.
func (gs *GameServer) broadcastState(room *game.Room, logger *logrus.Logger) {
	type outbound struct {
		conn *websocket.Conn
		data []byte
	}

	room.Mu.Lock()
	var sends []outbound
	for id := range room.Session.Players {
		conn, ok := gs.connFor(id)
		if !ok {
			continue
		}
		snap := room.Session.SnapshotFor(id)
		snap.GameCode = room.Code
		data, err := json.Marshal(ServerMessage{Type: MsgGameStateUpdate, State: &snap})
		if err != nil {
			logger.Errorf("Failed to marshal snapshot for player %s in game %s: %v", id, room.Code, err)
			continue
		}
		sends = append(sends, outbound{conn: conn, data: data})
	}
	room.Mu.Unlock()

	go func(code string) {
		for _, s := range sends {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := s.conn.Write(ctx, websocket.MessageText, s.data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write state update in game %s: %v", code, err)
			}
		}
	}(room.Code)
}

// broadcastToRoom sends the same message to every connected player.
func (gs *GameServer) broadcastToRoom(room *game.Room, msg ServerMessage, logger *logrus.Logger) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Errorf("Failed to marshal broadcast (%s) for game %s: %v", msg.Type, room.Code, err)
		return
	}

	room.Mu.Lock()
	var conns []*websocket.Conn
	for id := range room.Session.Players {
		if conn, ok := gs.connFor(id); ok {
			conns = append(conns, conn)
		}
	}
	room.Mu.Unlock()

	go func(code string) {
		for _, conn := range conns {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write broadcast (%s) in game %s: %v", msg.Type, code, err)
			}
		}
	}(room.Code)
}

// sendWsMessage marshals a message and writes it with a timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	if c == nil {
		log.Println("Error: Attempted to send WebSocket message on nil connection.")
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.Write(writeCtx, websocket.MessageText, msgBytes)
	if err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !strings.Contains(err.Error(), "context deadline exceeded") {
			log.Printf("Error writing WebSocket message: %v (Status: %d)", err, status)
		} else if strings.Contains(err.Error(), "context deadline exceeded") {
			log.Printf("Timeout writing WebSocket message: %v", err)
		}
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, ServerMessage{Type: MsgError, Reason: errorMsg})
}
