package repository

import (
	"deckdrill/internal/database"
	"deckdrill/internal/models"
)

// ItemRepository handles session item snapshots for the linear modes
type ItemRepository struct {
	db database.DBTX
}

// NewItemRepository creates a new item repository
func NewItemRepository(db database.DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *ItemRepository) WithTx(tx *database.Tx) *ItemRepository {
	return &ItemRepository{db: tx}
}

// InsertAll persists a freshly built snapshot
func (r *ItemRepository) InsertAll(items []models.SessionItem) error {
	query := `
		INSERT INTO session_items (session_id, mode, flashcard_id, position, front_text, back_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, item := range items {
		_, err := r.db.Exec(query,
			item.SessionID,
			string(item.Mode),
			item.FlashcardID,
			item.Position,
			item.FrontText,
			item.BackText,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListBySessionMode retrieves a mode's items in navigation order
func (r *ItemRepository) ListBySessionMode(sessionID string, mode models.StudyMode) ([]models.SessionItem, error) {
	query := `
		SELECT id, session_id, mode, flashcard_id, position, front_text, back_text
		FROM session_items
		WHERE session_id = ? AND mode = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, sessionID, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.SessionItem
	for rows.Next() {
		var item models.SessionItem
		var itemMode string
		err := rows.Scan(
			&item.ID,
			&item.SessionID,
			&itemMode,
			&item.FlashcardID,
			&item.Position,
			&item.FrontText,
			&item.BackText,
		)
		if err != nil {
			return nil, err
		}
		item.Mode = models.StudyMode(itemMode)
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteBySessionMode clears a mode's snapshot before a rebuild
func (r *ItemRepository) DeleteBySessionMode(sessionID string, mode models.StudyMode) error {
	query := "DELETE FROM session_items WHERE session_id = ? AND mode = ?"
	_, err := r.db.Exec(query, sessionID, string(mode))
	return err
}
