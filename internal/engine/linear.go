package engine

import (
	"time"

	"deckdrill/internal/apperr"
	"deckdrill/internal/database"
	"deckdrill/internal/models"
	"deckdrill/internal/shuffle"
)

// linearEvents are the events every linear mode accepts
var linearEvents = map[models.EventType]bool{
	models.EventNext:      true,
	models.EventPrevious:  true,
	models.EventGotoIndex: true,
}

// LinearEngine drives the review-style modes: an ordered snapshot of the
// deck and a clamped position in it. REVIEW, GUESS, RECALL and FILL share
// this implementation and differ only in identity.
type LinearEngine struct {
	core
	mode models.StudyMode
}

// NewLinearEngine creates the engine for one linear mode
func NewLinearEngine(mode models.StudyMode, repos Repos) *LinearEngine {
	return &LinearEngine{core: core{repos: repos}, mode: mode}
}

// Mode returns the engine's mode identifier
func (e *LinearEngine) Mode() models.StudyMode {
	return e.mode
}

// Initialize snapshots the deck into session items in shuffled order
func (e *LinearEngine) Initialize(tx *database.Tx, session *models.StudySession, cards []models.Flashcard) error {
	items, err := shuffle.BuildItems(session, e.mode, cards)
	if err != nil {
		return err
	}

	r := e.repos.WithTx(tx)

	// Re-entering a mode rebuilds its snapshot from the session seed, so the
	// order is identical unless deck membership changed.
	if err := r.Items.DeleteBySessionMode(session.ID, e.mode); err != nil {
		return apperr.Internal("failed to clear session items", err)
	}
	if err := r.Items.InsertAll(items); err != nil {
		return apperr.Internal("failed to snapshot session items", err)
	}

	session.TotalUnits = len(items)
	session.CurrentIndex = 0
	session.CorrectCount = 0
	session.WrongCount = 0

	if err := r.Sessions.Update(session); err != nil {
		return apperr.Internal("failed to persist session", err)
	}
	return e.upsertProgress(r, session)
}

// BuildResponse renders the linear view: the item snapshot plus position
func (e *LinearEngine) BuildResponse(session *models.StudySession, _ time.Time) (*models.SessionView, error) {
	items, err := e.repos.Items.ListBySessionMode(session.ID, e.mode)
	if err != nil {
		return nil, apperr.Internal("failed to load session items", err)
	}

	view := baseView(session)
	for _, item := range items {
		view.ReviewItems = append(view.ReviewItems, models.ItemView{
			FlashcardID: item.FlashcardID,
			Position:    item.Position,
			FrontText:   item.FrontText,
			BackText:    item.BackText,
		})
	}
	return view, nil
}

// HandleEvent applies one navigation event
func (e *LinearEngine) HandleEvent(tx *database.Tx, session *models.StudySession, cmd *models.EventCommand, now time.Time) (bool, error) {
	applied, err := e.runEvent(tx, session, cmd, linearEvents, func(r Repos, attempt *models.Attempt) error {
		if err := e.navigate(session, cmd); err != nil {
			return err
		}
		return e.upsertProgress(r, session)
	})
	if err == errDuplicateEvent {
		return false, nil
	}
	return applied, err
}

// navigate clamps the index into [0, totalUnits) with no wraparound
func (e *LinearEngine) navigate(session *models.StudySession, cmd *models.EventCommand) error {
	switch cmd.Type {
	case models.EventNext:
		if session.CurrentIndex < session.TotalUnits-1 {
			session.CurrentIndex++
		}
	case models.EventPrevious:
		if session.CurrentIndex > 0 {
			session.CurrentIndex--
		}
	case models.EventGotoIndex:
		if cmd.TargetIndex == nil {
			return apperr.Validationf("target index invalid")
		}
		target := *cmd.TargetIndex
		if session.TotalUnits == 0 {
			if target != 0 {
				return apperr.Validationf("target index invalid")
			}
			session.CurrentIndex = 0
			return nil
		}
		if target < 0 || target >= session.TotalUnits {
			return apperr.Validationf("target index invalid")
		}
		session.CurrentIndex = target
	}
	return nil
}

// upsertProgress mirrors the live counters into the mode's ledger row
func (e *LinearEngine) upsertProgress(r Repos, session *models.StudySession) error {
	err := r.Progress.Upsert(&models.ModeProgress{
		SessionID:    session.ID,
		Mode:         e.mode,
		TotalUnits:   session.TotalUnits,
		CorrectCount: session.CorrectCount,
		WrongCount:   session.WrongCount,
		CurrentIndex: session.CurrentIndex,
	})
	if err != nil {
		return apperr.Internal("failed to persist mode progress", err)
	}
	return nil
}
