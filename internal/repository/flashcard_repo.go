package repository

import (
	"deckdrill/internal/database"
	"deckdrill/internal/models"
)

// FlashcardRepository is the engine's read-only view of the deck catalog.
// Deck and flashcard maintenance belongs to an external collaborator; the
// engine only checks existence and reads active cards in deck order.
type FlashcardRepository struct {
	db database.DBTX
}

// NewFlashcardRepository creates a new flashcard repository
func NewFlashcardRepository(db database.DBTX) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *FlashcardRepository) WithTx(tx *database.Tx) *FlashcardRepository {
	return &FlashcardRepository{db: tx}
}

// DeckExists reports whether a deck exists
func (r *FlashcardRepository) DeckExists(deckID string) (bool, error) {
	query := "SELECT COUNT(*) FROM decks WHERE id = ?"

	var count int
	if err := r.db.QueryRow(query, deckID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetActiveFlashcardsByDeck retrieves a deck's active flashcards in deck order
func (r *FlashcardRepository) GetActiveFlashcardsByDeck(deckID string) ([]models.Flashcard, error) {
	query := `
		SELECT id, deck_id, front_text, back_text, position, is_active, created_at
		FROM flashcards
		WHERE deck_id = ? AND is_active = ?
		ORDER BY position ASC, id ASC
	`

	rows, err := r.db.Query(query, deckID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		var card models.Flashcard
		err := rows.Scan(
			&card.ID,
			&card.DeckID,
			&card.FrontText,
			&card.BackText,
			&card.Position,
			&card.IsActive,
			&card.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}
