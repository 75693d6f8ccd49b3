package repository

import (
	"database/sql"
	"errors"

	"deckdrill/internal/database"
	"deckdrill/internal/models"
)

// MatchStateRepository handles the singleton interaction state per match session
type MatchStateRepository struct {
	db database.DBTX
}

// NewMatchStateRepository creates a new match state repository
func NewMatchStateRepository(db database.DBTX) *MatchStateRepository {
	return &MatchStateRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *MatchStateRepository) WithTx(tx *database.Tx) *MatchStateRepository {
	return &MatchStateRepository{db: tx}
}

const matchStateColumns = `
	session_id, selected_left_id, selected_right_id, locked,
	feedback, feedback_left_id, feedback_right_id, feedback_until, version
`

// Create inserts a fresh interaction state
func (r *MatchStateRepository) Create(state *models.MatchState) error {
	query := `
		INSERT INTO match_states (` + matchStateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		state.SessionID,
		nullString(state.SelectedLeftID),
		nullString(state.SelectedRightID),
		state.Locked,
		string(state.Feedback),
		nullString(state.FeedbackLeftID),
		nullString(state.FeedbackRightID),
		nullTime(state.FeedbackUntil),
		state.Version,
	)
	return err
}

// Get retrieves a session's interaction state. Returns nil when absent.
func (r *MatchStateRepository) Get(sessionID string) (*models.MatchState, error) {
	query := `
		SELECT ` + matchStateColumns + `
		FROM match_states
		WHERE session_id = ?
	`

	state := &models.MatchState{}
	var selectedLeft, selectedRight, feedbackLeft, feedbackRight sql.NullString
	var feedback string
	var feedbackUntil sql.NullTime

	err := r.db.QueryRow(query, sessionID).Scan(
		&state.SessionID,
		&selectedLeft,
		&selectedRight,
		&state.Locked,
		&feedback,
		&feedbackLeft,
		&feedbackRight,
		&feedbackUntil,
		&state.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state.Feedback = models.FeedbackStatus(feedback)
	if selectedLeft.Valid {
		state.SelectedLeftID = &selectedLeft.String
	}
	if selectedRight.Valid {
		state.SelectedRightID = &selectedRight.String
	}
	if feedbackLeft.Valid {
		state.FeedbackLeftID = &feedbackLeft.String
	}
	if feedbackRight.Valid {
		state.FeedbackRightID = &feedbackRight.String
	}
	if feedbackUntil.Valid {
		state.FeedbackUntil = &feedbackUntil.Time
	}
	return state, nil
}

// Update persists the interaction state
func (r *MatchStateRepository) Update(state *models.MatchState) error {
	query := `
		UPDATE match_states
		SET selected_left_id = ?, selected_right_id = ?, locked = ?,
		    feedback = ?, feedback_left_id = ?, feedback_right_id = ?,
		    feedback_until = ?, version = ?
		WHERE session_id = ?
	`

	_, err := r.db.Exec(query,
		nullString(state.SelectedLeftID),
		nullString(state.SelectedRightID),
		state.Locked,
		string(state.Feedback),
		nullString(state.FeedbackLeftID),
		nullString(state.FeedbackRightID),
		nullTime(state.FeedbackUntil),
		state.Version,
		state.SessionID,
	)
	return err
}

// DeleteBySession clears a session's interaction state before a rebuild
func (r *MatchStateRepository) DeleteBySession(sessionID string) error {
	query := "DELETE FROM match_states WHERE session_id = ?"
	_, err := r.db.Exec(query, sessionID)
	return err
}
