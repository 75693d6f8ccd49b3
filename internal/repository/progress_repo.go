package repository

import (
	"database/sql"
	"errors"
	"time"

	"deckdrill/internal/database"
	"deckdrill/internal/models"
)

// ProgressRepository handles the per-session-per-mode completion ledger
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *ProgressRepository) WithTx(tx *database.Tx) *ProgressRepository {
	return &ProgressRepository{db: tx}
}

const progressColumns = `
	session_id, mode, completed, total_units, correct_count,
	wrong_count, current_index, completed_at
`

// Upsert creates or replaces a ledger row. Plain delete+insert keeps the
// statement identical across all three dialects.
func (r *ProgressRepository) Upsert(progress *models.ModeProgress) error {
	deleteQuery := "DELETE FROM mode_progress WHERE session_id = ? AND mode = ?"
	if _, err := r.db.Exec(deleteQuery, progress.SessionID, string(progress.Mode)); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO mode_progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(insertQuery,
		progress.SessionID,
		string(progress.Mode),
		progress.Completed,
		progress.TotalUnits,
		progress.CorrectCount,
		progress.WrongCount,
		progress.CurrentIndex,
		nullTime(progress.CompletedAt),
	)
	return err
}

// Get retrieves one ledger row, or nil
func (r *ProgressRepository) Get(sessionID string, mode models.StudyMode) (*models.ModeProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM mode_progress
		WHERE session_id = ? AND mode = ?
	`

	progress := &models.ModeProgress{}
	var modeStr string
	var completedAt sql.NullTime

	err := r.db.QueryRow(query, sessionID, string(mode)).Scan(
		&progress.SessionID,
		&modeStr,
		&progress.Completed,
		&progress.TotalUnits,
		&progress.CorrectCount,
		&progress.WrongCount,
		&progress.CurrentIndex,
		&completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	progress.Mode = models.StudyMode(modeStr)
	if completedAt.Valid {
		progress.CompletedAt = &completedAt.Time
	}
	return progress, nil
}

// ListBySession retrieves a session's full ledger
func (r *ProgressRepository) ListBySession(sessionID string) ([]models.ModeProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM mode_progress
		WHERE session_id = ?
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledger []models.ModeProgress
	for rows.Next() {
		var progress models.ModeProgress
		var modeStr string
		var completedAt sql.NullTime
		err := rows.Scan(
			&progress.SessionID,
			&modeStr,
			&progress.Completed,
			&progress.TotalUnits,
			&progress.CorrectCount,
			&progress.WrongCount,
			&progress.CurrentIndex,
			&completedAt,
		)
		if err != nil {
			return nil, err
		}
		progress.Mode = models.StudyMode(modeStr)
		if completedAt.Valid {
			progress.CompletedAt = &completedAt.Time
		}
		ledger = append(ledger, progress)
	}

	return ledger, rows.Err()
}

// MarkCompleted closes out a mode with its final counters
func (r *ProgressRepository) MarkCompleted(sessionID string, mode models.StudyMode, session *models.StudySession, when time.Time) error {
	query := `
		UPDATE mode_progress
		SET completed = ?, total_units = ?, correct_count = ?,
		    wrong_count = ?, current_index = ?, completed_at = ?
		WHERE session_id = ? AND mode = ?
	`

	_, err := r.db.Exec(query,
		true,
		session.TotalUnits,
		session.CorrectCount,
		session.WrongCount,
		session.CurrentIndex,
		when,
		sessionID,
		string(mode),
	)
	return err
}

// CountCompleted returns the number of completed modes for a session
func (r *ProgressRepository) CountCompleted(sessionID string) (int, error) {
	query := "SELECT COUNT(*) FROM mode_progress WHERE session_id = ? AND completed = ?"

	var count int
	err := r.db.QueryRow(query, sessionID, true).Scan(&count)
	return count, err
}
