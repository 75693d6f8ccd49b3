package repository

import (
	"database/sql"
	"errors"
	"time"

	"deckdrill/internal/database"
	"deckdrill/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// AttemptRepository handles the immutable event audit log. The unique
// (session_id, client_event_id) index is the idempotency backstop.
type AttemptRepository struct {
	db database.DBTX
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db database.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *AttemptRepository) WithTx(tx *database.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

const attemptColumns = `
	id, session_id, client_event_id, client_sequence, event_type,
	target_index, target_tile_id, left_tile_id, right_tile_id, is_correct, created_at
`

// Insert persists a new attempt, assigning its id
func (r *AttemptRepository) Insert(attempt *models.Attempt) error {
	if attempt.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		attempt.ID = id
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO attempts (` + attemptColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		attempt.ID,
		attempt.SessionID,
		attempt.ClientEventID,
		attempt.ClientSequence,
		string(attempt.Type),
		nullInt(attempt.TargetIndex),
		nullString(attempt.TargetTileID),
		nullString(attempt.LeftTileID),
		nullString(attempt.RightTileID),
		nullBool(attempt.IsCorrect),
		attempt.CreatedAt,
	)
	return err
}

// GetByClientEventID retrieves the attempt for an idempotency key, or nil
func (r *AttemptRepository) GetByClientEventID(sessionID, clientEventID string) (*models.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE session_id = ? AND client_event_id = ?
	`

	attempt, err := scanAttempt(r.db.QueryRow(query, sessionID, clientEventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// ListBySession retrieves a session's attempts in application order
func (r *AttemptRepository) ListBySession(sessionID string) ([]models.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *attempt)
	}

	return attempts, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(row rowScanner) (*models.Attempt, error) {
	attempt := &models.Attempt{}
	var eventType string
	var targetIndex sql.NullInt64
	var targetTile, leftTile, rightTile sql.NullString
	var isCorrect sql.NullBool

	err := row.Scan(
		&attempt.ID,
		&attempt.SessionID,
		&attempt.ClientEventID,
		&attempt.ClientSequence,
		&eventType,
		&targetIndex,
		&targetTile,
		&leftTile,
		&rightTile,
		&isCorrect,
		&attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	attempt.Type = models.EventType(eventType)
	if targetIndex.Valid {
		idx := int(targetIndex.Int64)
		attempt.TargetIndex = &idx
	}
	if targetTile.Valid {
		attempt.TargetTileID = &targetTile.String
	}
	if leftTile.Valid {
		attempt.LeftTileID = &leftTile.String
	}
	if rightTile.Valid {
		attempt.RightTileID = &rightTile.String
	}
	if isCorrect.Valid {
		attempt.IsCorrect = &isCorrect.Bool
	}
	return attempt, nil
}
