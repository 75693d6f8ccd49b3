// Package engine implements the per-mode study state machines. Each mode
// registers one Engine; the orchestrator resolves the active one through the
// Registry and delegates initialization, rendering and event application.
package engine

import (
	"errors"
	"time"

	"deckdrill/internal/apperr"
	"deckdrill/internal/database"
	"deckdrill/internal/models"
	"deckdrill/internal/repository"
)

// Engine is the behavior contract for one study mode
type Engine interface {
	// Mode returns the stable mode identifier
	Mode() models.StudyMode

	// Initialize populates mode-specific records for a session, sets
	// TotalUnits and resets the counters. Runs inside the caller's
	// transaction.
	Initialize(tx *database.Tx, session *models.StudySession, cards []models.Flashcard) error

	// BuildResponse renders the normalized session view. Pure read.
	BuildResponse(session *models.StudySession, now time.Time) (*models.SessionView, error)

	// HandleEvent applies one client event inside the caller's transaction.
	// Returns false without error when the event was a duplicate and nothing
	// was reapplied.
	HandleEvent(tx *database.Tx, session *models.StudySession, cmd *models.EventCommand, now time.Time) (bool, error)
}

// Repos bundles the storage the engines share
type Repos struct {
	Sessions   *repository.SessionRepository
	Items      *repository.ItemRepository
	Tiles      *repository.TileRepository
	MatchState *repository.MatchStateRepository
	Attempts   *repository.AttemptRepository
	Progress   *repository.ProgressRepository
}

// NewRepos builds the bundle over one DBTX
func NewRepos(db database.DBTX) Repos {
	return Repos{
		Sessions:   repository.NewSessionRepository(db),
		Items:      repository.NewItemRepository(db),
		Tiles:      repository.NewTileRepository(db),
		MatchState: repository.NewMatchStateRepository(db),
		Attempts:   repository.NewAttemptRepository(db),
		Progress:   repository.NewProgressRepository(db),
	}
}

// WithTx rebinds every repository to a transaction
func (r Repos) WithTx(tx *database.Tx) Repos {
	return Repos{
		Sessions:   r.Sessions.WithTx(tx),
		Items:      r.Items.WithTx(tx),
		Tiles:      r.Tiles.WithTx(tx),
		MatchState: r.MatchState.WithTx(tx),
		Attempts:   r.Attempts.WithTx(tx),
		Progress:   r.Progress.WithTx(tx),
	}
}

// errDuplicateEvent signals the idempotency no-op path inside runEvent
var errDuplicateEvent = errors.New("duplicate client event")

// core carries the pipeline every engine's HandleEvent runs through. The
// ordering is load-bearing: the active-session and supported-event checks
// come before the idempotency lookup, so a retried event against a finished
// session still fails fast; the idempotency lookup comes before any
// mutation, so a replay never reapplies an effect.
type core struct {
	repos Repos
}

func (c *core) runEvent(
	tx *database.Tx,
	session *models.StudySession,
	cmd *models.EventCommand,
	supported map[models.EventType]bool,
	apply func(r Repos, attempt *models.Attempt) error,
) (bool, error) {
	if session.Status != models.StatusActive {
		return false, apperr.Conflictf("session %s is not active", session.ID)
	}
	if !supported[cmd.Type] {
		return false, apperr.Conflictf("event %s is not supported in mode %s", cmd.Type, session.Mode)
	}

	r := c.repos.WithTx(tx)

	existing, err := r.Attempts.GetByClientEventID(session.ID, cmd.ClientEventID)
	if err != nil {
		return false, apperr.Internal("failed to check attempt log", err)
	}
	if existing != nil {
		return false, errDuplicateEvent
	}

	attempt := &models.Attempt{
		SessionID:      session.ID,
		ClientEventID:  cmd.ClientEventID,
		ClientSequence: cmd.ClientSequence,
		Type:           cmd.Type,
		TargetIndex:    cmd.TargetIndex,
		TargetTileID:   cmd.TargetTileID,
	}

	if err := apply(r, attempt); err != nil {
		return false, err
	}

	if err := r.Attempts.Insert(attempt); err != nil {
		return false, apperr.Internal("failed to record attempt", err)
	}
	if err := r.Sessions.Update(session); err != nil {
		return false, apperr.Internal("failed to persist session", err)
	}
	return true, nil
}

// baseView fills the mode-independent half of a session view. The ledger
// counters are stamped by the orchestrator.
func baseView(session *models.StudySession) *models.SessionView {
	return &models.SessionView{
		SessionID:    session.ID,
		DeckID:       session.DeckID,
		Mode:         session.Mode,
		Status:       session.Status,
		CurrentIndex: session.CurrentIndex,
		TotalUnits:   session.TotalUnits,
		CorrectCount: session.CorrectCount,
		WrongCount:   session.WrongCount,
		Completed:    session.Status == models.StatusCompleted,
		StartedAt:    session.StartedAt,
		CompletedAt:  session.CompletedAt,
		ReviewItems:  []models.ItemView{},
		LeftTiles:    []models.TileView{},
		RightTiles:   []models.TileView{},
	}
}
