package engine

import (
	"time"

	"deckdrill/internal/apperr"
	"deckdrill/internal/database"
	"deckdrill/internal/models"
	"deckdrill/internal/shuffle"
)

// FeedbackWindow is how long input stays locked after a pair evaluation
// while the outcome is shown.
const FeedbackWindow = 2250 * time.Millisecond

var matchEvents = map[models.EventType]bool{
	models.EventSelectLeft:  true,
	models.EventSelectRight: true,
}

// MatchEngine drives the tile-pairing mini-game. Interaction follows a small
// state machine: no selection, one side selected, pair evaluated (locked
// behind the feedback window), back to no selection once the window expires.
// Expiry is lazy: it is evaluated against the wall clock on access, never by
// a scheduled timer.
type MatchEngine struct {
	core
}

// NewMatchEngine creates the match mode engine
func NewMatchEngine(repos Repos) *MatchEngine {
	return &MatchEngine{core: core{repos: repos}}
}

// Mode returns the engine's mode identifier
func (e *MatchEngine) Mode() models.StudyMode {
	return models.ModeMatch
}

// Initialize builds both tile columns and a fresh interaction state
func (e *MatchEngine) Initialize(tx *database.Tx, session *models.StudySession, cards []models.Flashcard) error {
	tiles, err := shuffle.BuildTiles(session, cards)
	if err != nil {
		return err
	}

	r := e.repos.WithTx(tx)

	if err := r.Tiles.DeleteBySession(session.ID); err != nil {
		return apperr.Internal("failed to clear match tiles", err)
	}
	if err := r.MatchState.DeleteBySession(session.ID); err != nil {
		return apperr.Internal("failed to clear match state", err)
	}
	if err := r.Tiles.InsertAll(tiles); err != nil {
		return apperr.Internal("failed to create match tiles", err)
	}
	if err := r.MatchState.Create(&models.MatchState{SessionID: session.ID}); err != nil {
		return apperr.Internal("failed to create match state", err)
	}

	session.TotalUnits = len(cards)
	session.CurrentIndex = 0
	session.CorrectCount = 0
	session.WrongCount = 0

	if err := r.Sessions.Update(session); err != nil {
		return apperr.Internal("failed to persist session", err)
	}
	if err := r.Progress.Upsert(&models.ModeProgress{
		SessionID:  session.ID,
		Mode:       models.ModeMatch,
		TotalUnits: session.TotalUnits,
	}); err != nil {
		return apperr.Internal("failed to persist mode progress", err)
	}
	return nil
}

// BuildResponse renders the tile columns with per-tile flags derived from
// the interaction state. Nothing here is stored per tile; the derivation is
// recomputed on every read.
func (e *MatchEngine) BuildResponse(session *models.StudySession, now time.Time) (*models.SessionView, error) {
	tiles, err := e.repos.Tiles.ListBySession(session.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load match tiles", err)
	}
	state, err := e.repos.MatchState.Get(session.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load match state", err)
	}
	if state == nil {
		return nil, apperr.NotFoundf("match state for session %s not found", session.ID)
	}

	// The lock is only effective while the feedback window is open; a stale
	// locked row reads as unlocked without being rewritten.
	lockActive := state.Locked && state.FeedbackUntil != nil && now.Before(*state.FeedbackUntil)

	view := baseView(session)
	for _, tile := range tiles {
		successFlash := lockActive && state.Feedback == models.FeedbackSuccess && isFeedbackTile(state, tile.ID)
		errorFlash := lockActive && state.Feedback == models.FeedbackError && isFeedbackTile(state, tile.ID)
		tv := models.TileView{
			TileID:       tile.ID,
			Label:        tile.Label,
			DisplayOrder: tile.DisplayOrder,
			Matched:      tile.Matched,
			Hidden:       tile.Matched && !successFlash,
			Selected:     isSelectedTile(state, tile.ID),
			SuccessFlash: successFlash,
			ErrorFlash:   errorFlash,
		}
		if tile.Side == models.SideLeft {
			view.LeftTiles = append(view.LeftTiles, tv)
		} else {
			view.RightTiles = append(view.RightTiles, tv)
		}
	}

	if lockActive {
		view.LastAttempt = &models.AttemptResultView{
			FeedbackStatus:    state.Feedback,
			LeftTileID:        state.FeedbackLeftID,
			RightTileID:       state.FeedbackRightID,
			InteractionLocked: true,
			FeedbackUntil:     state.FeedbackUntil,
		}
	}
	return view, nil
}

// HandleEvent applies one tile selection
func (e *MatchEngine) HandleEvent(tx *database.Tx, session *models.StudySession, cmd *models.EventCommand, now time.Time) (bool, error) {
	applied, err := e.runEvent(tx, session, cmd, matchEvents, func(r Repos, attempt *models.Attempt) error {
		return e.applySelection(r, session, cmd, attempt, now)
	})
	if err == errDuplicateEvent {
		return false, nil
	}
	return applied, err
}

func (e *MatchEngine) applySelection(r Repos, session *models.StudySession, cmd *models.EventCommand, attempt *models.Attempt, now time.Time) error {
	state, err := r.MatchState.Get(session.ID)
	if err != nil {
		return apperr.Internal("failed to load match state", err)
	}
	if state == nil {
		return apperr.NotFoundf("match state for session %s not found", session.ID)
	}

	// Expire stale feedback before looking at the new event. A locked state
	// without a deadline is treated as stale too.
	if state.Locked && (state.FeedbackUntil == nil || !now.Before(*state.FeedbackUntil)) {
		clearFeedback(state)
		state.Version++
	}

	// Still locked: the feedback hold window is a hard input gate. The event
	// is recorded and otherwise ignored.
	if state.Locked {
		return nil
	}

	if cmd.TargetTileID == nil {
		return apperr.Validationf("target tile id is required for %s", cmd.Type)
	}

	tile, err := r.Tiles.GetByID(session.ID, *cmd.TargetTileID)
	if err != nil {
		return apperr.Internal("failed to load tile", err)
	}
	if tile == nil {
		return apperr.NotFoundf("tile %s not found in session %s", *cmd.TargetTileID, session.ID)
	}

	wantSide := models.SideLeft
	if cmd.Type == models.EventSelectRight {
		wantSide = models.SideRight
	}
	if tile.Side != wantSide {
		return apperr.Conflictf("tile %s is not on side %s", tile.ID, wantSide)
	}

	// Selecting an already matched tile does nothing.
	if tile.Matched {
		return r.MatchState.Update(state)
	}

	if wantSide == models.SideLeft {
		state.SelectedLeftID = &tile.ID
	} else {
		state.SelectedRightID = &tile.ID
	}

	if state.SelectedLeftID != nil && state.SelectedRightID != nil {
		if err := e.evaluatePair(r, session, state, attempt, now); err != nil {
			return err
		}
	}

	if err := r.MatchState.Update(state); err != nil {
		return apperr.Internal("failed to persist match state", err)
	}
	if session.Status == models.StatusActive {
		if err := r.Progress.Upsert(&models.ModeProgress{
			SessionID:    session.ID,
			Mode:         models.ModeMatch,
			TotalUnits:   session.TotalUnits,
			CorrectCount: session.CorrectCount,
			WrongCount:   session.WrongCount,
			CurrentIndex: session.CurrentIndex,
		}); err != nil {
			return apperr.Internal("failed to persist mode progress", err)
		}
	}
	return nil
}

// evaluatePair resolves both selected tiles, scores the outcome and opens
// the feedback window.
func (e *MatchEngine) evaluatePair(r Repos, session *models.StudySession, state *models.MatchState, attempt *models.Attempt, now time.Time) error {
	left, err := r.Tiles.GetByID(session.ID, *state.SelectedLeftID)
	if err != nil {
		return apperr.Internal("failed to load left tile", err)
	}
	right, err := r.Tiles.GetByID(session.ID, *state.SelectedRightID)
	if err != nil {
		return apperr.Internal("failed to load right tile", err)
	}
	if left == nil || right == nil {
		return apperr.NotFoundf("selected tile missing in session %s", session.ID)
	}

	isCorrect := left.PairKey == right.PairKey
	attempt.LeftTileID = &left.ID
	attempt.RightTileID = &right.ID
	attempt.IsCorrect = &isCorrect

	if isCorrect {
		if err := r.Tiles.MarkMatched(session.ID, left.ID, right.ID); err != nil {
			return apperr.Internal("failed to mark tiles matched", err)
		}
		session.CorrectCount++
		session.CurrentIndex = session.CorrectCount
		state.Feedback = models.FeedbackSuccess
	} else {
		session.WrongCount++
		state.Feedback = models.FeedbackError
	}

	state.FeedbackLeftID = &left.ID
	state.FeedbackRightID = &right.ID
	state.SelectedLeftID = nil
	state.SelectedRightID = nil
	state.Locked = true
	until := now.Add(FeedbackWindow)
	state.FeedbackUntil = &until
	state.Version++

	// The last correct pair ends this match pass.
	if isCorrect && session.CorrectCount == session.TotalUnits {
		completedAt := now
		session.Status = models.StatusCompleted
		session.CompletedAt = &completedAt
		if err := r.Progress.MarkCompleted(session.ID, models.ModeMatch, session, now); err != nil {
			return apperr.Internal("failed to close out match progress", err)
		}
	}
	return nil
}

func clearFeedback(state *models.MatchState) {
	state.Locked = false
	state.Feedback = models.FeedbackNone
	state.FeedbackLeftID = nil
	state.FeedbackRightID = nil
	state.FeedbackUntil = nil
}

func isFeedbackTile(state *models.MatchState, tileID string) bool {
	return (state.FeedbackLeftID != nil && *state.FeedbackLeftID == tileID) ||
		(state.FeedbackRightID != nil && *state.FeedbackRightID == tileID)
}

func isSelectedTile(state *models.MatchState, tileID string) bool {
	return (state.SelectedLeftID != nil && *state.SelectedLeftID == tileID) ||
		(state.SelectedRightID != nil && *state.SelectedRightID == tileID)
}
