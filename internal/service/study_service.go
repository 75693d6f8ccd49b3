package service

import (
	"sync"
	"time"

	"deckdrill/internal/apperr"
	"deckdrill/internal/database"
	"deckdrill/internal/engine"
	"deckdrill/internal/models"
	"deckdrill/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSeed is used when the caller omits the shuffle seed
const DefaultSeed int64 = 7919

// StudyService is the session orchestrator: it owns the lifecycle across
// modes, routes fetch/event/complete calls to the active mode engine and
// advances the required-mode cycle.
//
// Every mutating call for one session runs under that session's lock and
// inside one transaction; different sessions proceed fully in parallel.
type StudyService struct {
	db         *database.DB
	repos      engine.Repos
	flashcards *repository.FlashcardRepository
	registry   *engine.Registry
	log        *zap.Logger

	// now is swappable so the feedback window is deterministic under test
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStudyService creates the orchestrator
func NewStudyService(db *database.DB, registry *engine.Registry, log *zap.Logger) *StudyService {
	return &StudyService{
		db:         db,
		repos:      engine.NewRepos(db),
		flashcards: repository.NewFlashcardRepository(db),
		registry:   registry,
		log:        log,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing writers for one session id
func (s *StudyService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// StartSession starts or resumes the learner's session for a deck.
//
// A fresh deck gets a new ACTIVE session initialized by the requested mode's
// engine. An existing session resumes: mid-mode it is returned as is; with
// its current mode finished, the next mode of the cycle is activated — the
// requested mode is honored only if it has no completion record, otherwise
// the first uncompleted mode in cycle order wins. forceReset archives the
// old session and starts over.
func (s *StudyService) StartSession(ownerID, deckID string, mode models.StudyMode, seed *int64, forceReset bool) (*models.SessionView, error) {
	effectiveSeed := DefaultSeed
	if seed != nil {
		if *seed < 0 {
			return nil, apperr.Validationf("seed must be >= 0")
		}
		effectiveSeed = *seed
	}
	if _, err := s.registry.Resolve(mode); err != nil {
		return nil, err
	}

	exists, err := s.flashcards.DeckExists(deckID)
	if err != nil {
		return nil, apperr.Internal("failed to check deck", err)
	}
	if !exists {
		return nil, apperr.NotFoundf("deck %s not found", deckID)
	}

	cards, err := s.flashcards.GetActiveFlashcardsByDeck(deckID)
	if err != nil {
		return nil, apperr.Internal("failed to load flashcards", err)
	}
	if len(cards) == 0 {
		return nil, apperr.Conflictf("deck has no flashcards")
	}

	session, err := s.repos.Sessions.GetCurrentByDeckAndOwner(deckID, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to load session", err)
	}

	if session != nil && forceReset {
		if err := s.repos.Sessions.Archive(session.ID, s.now()); err != nil {
			return nil, apperr.Internal("failed to archive session", err)
		}
		session = nil
	}

	if session == nil {
		return s.createSession(ownerID, deckID, mode, effectiveSeed, cards)
	}
	return s.resumeSession(session, mode, cards)
}

func (s *StudyService) createSession(ownerID, deckID string, mode models.StudyMode, seed int64, cards []models.Flashcard) (*models.SessionView, error) {
	session := &models.StudySession{
		ID:        uuid.New().String(),
		DeckID:    deckID,
		OwnerID:   ownerID,
		Mode:      mode,
		Status:    models.StatusActive,
		Seed:      seed,
		StartedAt: s.now(),
	}

	eng, err := s.registry.Resolve(mode)
	if err != nil {
		return nil, err
	}

	err = s.inTx(func(tx *database.Tx) error {
		if err := s.repos.Sessions.WithTx(tx).Create(session); err != nil {
			return apperr.Internal("failed to create session", err)
		}
		return eng.Initialize(tx, session, cards)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("session started",
		zap.String("session_id", session.ID),
		zap.String("deck_id", deckID),
		zap.String("mode", string(mode)))

	return s.buildView(eng, session)
}

func (s *StudyService) resumeSession(session *models.StudySession, requested models.StudyMode, cards []models.Flashcard) (*models.SessionView, error) {
	lock := s.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := s.repos.Progress.ListBySession(session.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load mode progress", err)
	}
	completed := make(map[models.StudyMode]bool)
	for _, row := range ledger {
		if row.Completed {
			completed[row.Mode] = true
		}
	}

	// Mid-mode, or nothing left to cycle into: render as is.
	if session.Status == models.StatusActive || len(completed) >= len(models.RequiredModes) {
		eng, err := s.registry.Resolve(session.Mode)
		if err != nil {
			return nil, err
		}
		return s.buildView(eng, session)
	}

	next := requested
	if completed[next] {
		for _, mode := range models.RequiredModes {
			if !completed[mode] {
				next = mode
				break
			}
		}
	}

	eng, err := s.registry.Resolve(next)
	if err != nil {
		return nil, err
	}

	session.Mode = next
	session.Status = models.StatusActive
	session.CompletedAt = nil

	err = s.inTx(func(tx *database.Tx) error {
		return eng.Initialize(tx, session, cards)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("session resumed into next mode",
		zap.String("session_id", session.ID),
		zap.String("mode", string(next)))

	return s.buildView(eng, session)
}

// GetSession renders a session for its owner
func (s *StudyService) GetSession(ownerID, sessionID string) (*models.SessionView, error) {
	session, eng, err := s.loadOwned(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(eng, session)
}

// SubmitEvent applies one client event to a session. Retries with the same
// clientEventId are safe: the duplicate is suppressed and current state is
// re-rendered.
func (s *StudyService) SubmitEvent(ownerID, sessionID string, cmd *models.EventCommand) (*models.SessionView, error) {
	if cmd.ClientEventID == "" {
		return nil, apperr.Validationf("client event id is required")
	}
	if cmd.ClientSequence < 0 {
		return nil, apperr.Validationf("client sequence must be >= 0")
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, eng, err := s.loadOwned(ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	err = s.inTx(func(tx *database.Tx) error {
		_, err := eng.HandleEvent(tx, session, cmd, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.buildView(eng, session)
}

// CompleteSession closes out the session's current mode. On an already
// completed session it is a no-op that just re-renders.
func (s *StudyService) CompleteSession(ownerID, sessionID string) (*models.SessionView, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, eng, err := s.loadOwned(ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == models.StatusCompleted {
		return s.buildView(eng, session)
	}

	now := s.now()
	session.Status = models.StatusCompleted
	session.CompletedAt = &now

	err = s.inTx(func(tx *database.Tx) error {
		r := s.repos.WithTx(tx)
		if err := r.Progress.MarkCompleted(session.ID, session.Mode, session, now); err != nil {
			return apperr.Internal("failed to close out mode progress", err)
		}
		if err := r.Sessions.Update(session); err != nil {
			return apperr.Internal("failed to persist session", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("mode completed",
		zap.String("session_id", session.ID),
		zap.String("mode", string(session.Mode)))

	return s.buildView(eng, session)
}

// loadOwned fetches a session and resolves its engine, hiding other owners'
// sessions behind not-found.
func (s *StudyService) loadOwned(ownerID, sessionID string) (*models.StudySession, engine.Engine, error) {
	session, err := s.repos.Sessions.GetByID(sessionID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to load session", err)
	}
	if session == nil || session.OwnerID != ownerID {
		return nil, nil, apperr.NotFoundf("session %s not found", sessionID)
	}
	eng, err := s.registry.Resolve(session.Mode)
	if err != nil {
		return nil, nil, err
	}
	return session, eng, nil
}

// buildView renders the engine's view and stamps the cycle counters
func (s *StudyService) buildView(eng engine.Engine, session *models.StudySession) (*models.SessionView, error) {
	view, err := eng.BuildResponse(session, s.now())
	if err != nil {
		return nil, err
	}

	completedCount, err := s.repos.Progress.CountCompleted(session.ID)
	if err != nil {
		return nil, apperr.Internal("failed to count completed modes", err)
	}
	view.CompletedModeCount = completedCount
	view.RequiredModeCount = len(models.RequiredModes)
	view.SessionCompleted = completedCount >= len(models.RequiredModes)
	return view, nil
}

// inTx runs fn inside one transaction
func (s *StudyService) inTx(fn func(tx *database.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return apperr.Internal("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Internal("failed to commit transaction", err)
	}
	return nil
}
