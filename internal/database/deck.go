package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tolaria/playtable/internal/models"
)

// Card definitions live denormalized as JSONB on each deck entry, so
// loading a deck needs no join against a card catalog table.

func GetDeck(ctx context.Context, deckID uuid.UUID) (*models.Deck, error) {
	var d models.Deck
	q := `SELECT id, user_id, name, format FROM decks WHERE id=$1`
	err := DB.QueryRow(ctx, q, deckID).Scan(&d.ID, &d.UserID, &d.Name, &d.Format)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDeckCards loads the deck list with each entry's card definition
// decoded from its JSONB column.
func GetDeckCards(ctx context.Context, deckID uuid.UUID) ([]models.DeckCard, error) {
	q := `
	SELECT card_data, quantity, zone, is_commander
	FROM deck_cards
	WHERE deck_id=$1
	ORDER BY is_commander DESC, zone
	`
	rows, err := DB.Query(ctx, q, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.DeckCard
	for rows.Next() {
		var raw []byte
		var dc models.DeckCard
		if err := rows.Scan(&raw, &dc.Quantity, &dc.Zone, &dc.IsCommander); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &dc.Definition); err != nil {
			return nil, fmt.Errorf("invalid card_data for deck %s: %w", deckID, err)
		}
		cards = append(cards, dc)
	}
	return cards, rows.Err()
}

func ListDecks(ctx context.Context, userID uuid.UUID) ([]models.Deck, error) {
	q := `SELECT id, user_id, name, format FROM decks WHERE user_id=$1 ORDER BY name`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decks := []models.Deck{}
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Format); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// CreateDeck stores a deck and its full list in one transaction.
func CreateDeck(ctx context.Context, deck *models.Deck, cards []models.DeckCard) error {
	if deck.ID == uuid.Nil {
		deck.ID = uuid.New()
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO decks (id, user_id, name, format) VALUES ($1, $2, $3, $4)`,
			deck.ID, deck.UserID, deck.Name, deck.Format,
		)
		if err != nil {
			return err
		}
		for _, dc := range cards {
			raw, err := json.Marshal(dc.Definition)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO deck_cards (deck_id, card_data, quantity, zone, is_commander)
				 VALUES ($1, $2, $3, $4, $5)`,
				deck.ID, raw, dc.Quantity, dc.Zone, dc.IsCommander,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
