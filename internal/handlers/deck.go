// internal/handlers/deck.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tolaria/playtable/internal/auth"
	"github.com/tolaria/playtable/internal/database"
	"github.com/tolaria/playtable/internal/models"
)

// requireUser resolves the authenticated user or writes a 403.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token := auth.TokenFromRequest(r)
	userIDStr, err := auth.AuthenticateJWT(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusForbidden)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user id in token", http.StatusForbidden)
		return uuid.Nil, false
	}
	return userID, true
}

// ListDecksHandler returns the caller's decks.
func ListDecksHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	decks, err := database.ListDecks(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list decks", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decks)
}

type deckResponse struct {
	models.Deck
	Cards []models.DeckCard `json:"cards"`
}

// GetDeckHandler returns one deck with its full list. Path: /decks/{id}.
func GetDeckHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/decks/")
	deckID, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid deck id", http.StatusBadRequest)
		return
	}

	deck, err := database.GetDeck(r.Context(), deckID)
	if err != nil {
		http.Error(w, "deck not found", http.StatusNotFound)
		return
	}
	if deck.UserID != userID {
		http.Error(w, "deck does not belong to you", http.StatusForbidden)
		return
	}
	cards, err := database.GetDeckCards(r.Context(), deckID)
	if err != nil {
		http.Error(w, "failed to load deck list", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deckResponse{Deck: *deck, Cards: cards})
}

type createDeckRequest struct {
	Name   string            `json:"name"`
	Format string            `json:"format"`
	Cards  []models.DeckCard `json:"cards"`
}

// CreateDeckHandler stores a new deck for the caller.
func CreateDeckHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" || len(req.Cards) == 0 {
		http.Error(w, "deck needs a name and at least one card", http.StatusBadRequest)
		return
	}

	deck := models.Deck{UserID: userID, Name: req.Name, Format: req.Format}
	if deck.Format == "" {
		deck.Format = "Commander"
	}
	if err := database.CreateDeck(r.Context(), &deck, req.Cards); err != nil {
		http.Error(w, "failed to create deck", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deck)
}

// ListGamesHandler returns every joinable game for the lobby browser.
func ListGamesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gs.RoomStore.OpenRooms())
	}
}
