// internal/game/room_store.go
package game

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// RoomStore indexes active rooms by game code and tracks which room each
// player currently occupies.
type RoomStore struct {
	mu         sync.Mutex
	rooms      map[string]*Room     // game code -> room
	playerRoom map[uuid.UUID]string // user -> game code
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:      make(map[string]*Room),
		playerRoom: make(map[uuid.UUID]string),
	}
}

// generateCode allocates a short shareable code unique among live rooms.
// Assumes mu is held.
func (s *RoomStore) generateCode() string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}

// CreateRoom allocates a code and registers a new room for the host.
func (s *RoomStore) CreateRoom(hostID uuid.UUID, maxPlayers int) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.generateCode()
	r := NewRoom(code, hostID, maxPlayers)
	s.rooms[code] = r
	s.playerRoom[hostID] = code
	return r
}

// GetRoom looks up a room by its game code.
func (s *RoomStore) GetRoom(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// RoomForPlayer returns the room the player is currently in, if any.
func (s *RoomStore) RoomForPlayer(userID uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.playerRoom[userID]
	if !ok {
		return nil, false
	}
	r, ok := s.rooms[code]
	return r, ok
}

// TrackPlayer records which room a player joined.
func (s *RoomStore) TrackPlayer(userID uuid.UUID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerRoom[userID] = code
}

// ReleasePlayer forgets a player's room membership and returns the code
// they were in.
func (s *RoomStore) ReleasePlayer(userID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.playerRoom[userID]
	if ok {
		delete(s.playerRoom, userID)
	}
	return code, ok
}

// DeleteRoom removes an (empty or finished) room.
func (s *RoomStore) DeleteRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// OpenRooms lists every room still accepting players.
func (s *RoomStore) OpenRooms() []LobbyInfo {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	open := []LobbyInfo{}
	for _, r := range rooms {
		r.Mu.Lock()
		if r.Joinable() {
			open = append(open, r.Lobby())
		}
		r.Mu.Unlock()
	}
	return open
}
