package repository

import (
	"database/sql"
	"errors"
	"time"

	"deckdrill/internal/database"
	"deckdrill/internal/models"
)

// SessionRepository handles study session database operations
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *SessionRepository) WithTx(tx *database.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

const sessionColumns = `
	id, deck_id, owner_id, mode, status, seed,
	current_index, total_units, correct_count, wrong_count,
	started_at, completed_at, archived_at
`

// Create inserts a new study session
func (r *SessionRepository) Create(session *models.StudySession) error {
	query := `
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		session.ID,
		session.DeckID,
		session.OwnerID,
		string(session.Mode),
		string(session.Status),
		session.Seed,
		session.CurrentIndex,
		session.TotalUnits,
		session.CorrectCount,
		session.WrongCount,
		session.StartedAt,
		nullTime(session.CompletedAt),
		nullTime(session.ArchivedAt),
	)
	return err
}

// GetByID retrieves a non-archived session by id. Returns nil when absent.
func (r *SessionRepository) GetByID(sessionID string) (*models.StudySession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE id = ? AND archived_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, sessionID))
}

// GetCurrentByDeckAndOwner retrieves the learner's non-archived session for a
// deck, if one exists. At most one exists at a time.
func (r *SessionRepository) GetCurrentByDeckAndOwner(deckID, ownerID string) (*models.StudySession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE deck_id = ? AND owner_id = ? AND archived_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, deckID, ownerID))
}

// Update persists a session's mutable fields
func (r *SessionRepository) Update(session *models.StudySession) error {
	query := `
		UPDATE study_sessions
		SET mode = ?, status = ?, current_index = ?, total_units = ?,
		    correct_count = ?, wrong_count = ?, completed_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		string(session.Mode),
		string(session.Status),
		session.CurrentIndex,
		session.TotalUnits,
		session.CorrectCount,
		session.WrongCount,
		nullTime(session.CompletedAt),
		session.ID,
	)
	return err
}

// Archive soft-deletes a session. Archived sessions disappear from every
// lookup; rows are never hard-deleted here.
func (r *SessionRepository) Archive(sessionID string, when time.Time) error {
	query := "UPDATE study_sessions SET archived_at = ? WHERE id = ?"
	_, err := r.db.Exec(query, when, sessionID)
	return err
}

func (r *SessionRepository) scanOne(row *sql.Row) (*models.StudySession, error) {
	session := &models.StudySession{}
	var mode, status string
	var completedAt, archivedAt sql.NullTime

	err := row.Scan(
		&session.ID,
		&session.DeckID,
		&session.OwnerID,
		&mode,
		&status,
		&session.Seed,
		&session.CurrentIndex,
		&session.TotalUnits,
		&session.CorrectCount,
		&session.WrongCount,
		&session.StartedAt,
		&completedAt,
		&archivedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session.Mode = models.StudyMode(mode)
	session.Status = models.SessionStatus(status)
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	if archivedAt.Valid {
		session.ArchivedAt = &archivedAt.Time
	}
	return session, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
