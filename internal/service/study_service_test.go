package service

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"deckdrill/internal/apperr"
	"deckdrill/internal/database"
	"deckdrill/internal/engine"
	"deckdrill/internal/models"

	"go.uber.org/zap"
)

// testClock is a controllable replacement for time.Now
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*StudyService, *database.DB, *testClock) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repos := engine.NewRepos(db)
	registry, err := engine.NewRegistry(
		engine.NewLinearEngine(models.ModeReview, repos),
		engine.NewLinearEngine(models.ModeGuess, repos),
		engine.NewLinearEngine(models.ModeRecall, repos),
		engine.NewLinearEngine(models.ModeFill, repos),
		engine.NewMatchEngine(repos),
	)
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	svc := NewStudyService(db, registry, zap.NewNop())
	clock := &testClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	svc.now = clock.Now

	return svc, db, clock
}

// seedDeck inserts a deck with the given front/back pairs in position order
func seedDeck(t *testing.T, db *database.DB, deckID, ownerID string, pairs [][2]string) {
	t.Helper()

	_, err := db.Exec("INSERT INTO decks (id, name, owner_id) VALUES (?, ?, ?)", deckID, "test deck", ownerID)
	if err != nil {
		t.Fatalf("Failed to insert deck: %v", err)
	}
	for i, pair := range pairs {
		_, err := db.Exec(
			"INSERT INTO flashcards (id, deck_id, front_text, back_text, position) VALUES (?, ?, ?, ?, ?)",
			fmt.Sprintf("%s-card-%d", deckID, i), deckID, pair[0], pair[1], i,
		)
		if err != nil {
			t.Fatalf("Failed to insert flashcard: %v", err)
		}
	}
}

func attemptCount(t *testing.T, db *database.DB, sessionID string) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM attempts WHERE session_id = ?", sessionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count attempts: %v", err)
	}
	return count
}

func tileIDFor(t *testing.T, db *database.DB, sessionID string, pairKey int, side models.TileSide) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		"SELECT id FROM match_tiles WHERE session_id = ? AND pair_key = ? AND side = ?",
		sessionID, pairKey, string(side),
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to find tile (pair %d, side %s): %v", pairKey, side, err)
	}
	return id
}

func selectTile(sequence int64, eventType models.EventType, tileID string) *models.EventCommand {
	return &models.EventCommand{
		ClientEventID:  fmt.Sprintf("evt-%d", sequence),
		ClientSequence: sequence,
		Type:           eventType,
		TargetTileID:   &tileID,
	}
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestStartSessionReview(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{
		{"apple", "tao"}, {"banana", "chuoi"}, {"cat", "meo"},
	})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, int64Ptr(11), false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if view.Mode != models.ModeReview {
		t.Errorf("Mode = %v, want REVIEW", view.Mode)
	}
	if view.Status != models.StatusActive {
		t.Errorf("Status = %v, want ACTIVE", view.Status)
	}
	if view.TotalUnits != 3 {
		t.Errorf("TotalUnits = %d, want 3", view.TotalUnits)
	}
	if view.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", view.CurrentIndex)
	}
	if len(view.ReviewItems) != 3 {
		t.Fatalf("len(ReviewItems) = %d, want 3", len(view.ReviewItems))
	}
	if len(view.LeftTiles) != 0 || len(view.RightTiles) != 0 {
		t.Error("linear mode should render no tiles")
	}
	if view.RequiredModeCount != 5 || view.CompletedModeCount != 0 {
		t.Errorf("mode counters = %d/%d, want 0/5", view.CompletedModeCount, view.RequiredModeCount)
	}
	if view.SessionCompleted {
		t.Error("fresh session should not be complete")
	}

	// Items must be a permutation of the deck with contiguous positions.
	seen := make(map[string]bool)
	for i, item := range view.ReviewItems {
		if item.Position != i {
			t.Errorf("item %d has position %d", i, item.Position)
		}
		seen[item.FlashcardID] = true
	}
	if len(seen) != 3 {
		t.Errorf("items cover %d distinct cards, want 3", len(seen))
	}
}

func TestStartSessionShuffleIsSeedDeterministic(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{
		{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"},
		{"e", "5"}, {"f", "6"}, {"g", "7"}, {"h", "8"},
	})

	first, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, int64Ptr(42), false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	second, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, int64Ptr(42), true)
	if err != nil {
		t.Fatalf("StartSession() with forceReset error = %v", err)
	}

	if first.SessionID == second.SessionID {
		t.Error("forceReset should have created a new session")
	}
	for i := range first.ReviewItems {
		if first.ReviewItems[i].FlashcardID != second.ReviewItems[i].FlashcardID {
			t.Fatalf("item %d differs across sessions with the same seed", i)
		}
	}
}

func TestStartSessionValidation(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}})
	seedDeck(t, db, "deck-empty", "owner-1", nil)

	tests := []struct {
		name     string
		deckID   string
		seed     *int64
		wantKind apperr.Kind
	}{
		{name: "negative seed", deckID: "deck-1", seed: int64Ptr(-1), wantKind: apperr.KindValidation},
		{name: "unknown deck", deckID: "deck-missing", wantKind: apperr.KindNotFound},
		{name: "empty deck", deckID: "deck-empty", wantKind: apperr.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.StartSession("owner-1", tt.deckID, models.ModeReview, tt.seed, false)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", apperr.KindOf(err), tt.wantKind)
			}
		})
	}
}

func TestStartSessionResumesActiveInPlace(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}, {"b", "2"}})

	first, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = svc.SubmitEvent("owner-1", first.SessionID, &models.EventCommand{
		ClientEventID: "nav-1", Type: models.EventNext,
	})
	if err != nil {
		t.Fatalf("SubmitEvent() error = %v", err)
	}

	// Re-requesting any mode mid-pass returns the session as is.
	resumed, err := svc.StartSession("owner-1", "deck-1", models.ModeMatch, nil, false)
	if err != nil {
		t.Fatalf("StartSession() resume error = %v", err)
	}
	if resumed.SessionID != first.SessionID {
		t.Error("resume should return the existing session")
	}
	if resumed.Mode != models.ModeReview {
		t.Errorf("Mode = %v, want REVIEW (active pass keeps its mode)", resumed.Mode)
	}
	if resumed.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1 (progress preserved)", resumed.CurrentIndex)
	}
}

func TestSubmitEventIdempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	cmd := &models.EventCommand{ClientEventID: "nav-1", ClientSequence: 1, Type: models.EventNext}

	after, err := svc.SubmitEvent("owner-1", view.SessionID, cmd)
	if err != nil {
		t.Fatalf("SubmitEvent() error = %v", err)
	}
	if after.CurrentIndex != 1 {
		t.Fatalf("CurrentIndex = %d, want 1", after.CurrentIndex)
	}

	// Exact retry: no error, no movement, no second attempt row.
	replay, err := svc.SubmitEvent("owner-1", view.SessionID, cmd)
	if err != nil {
		t.Fatalf("SubmitEvent() replay error = %v", err)
	}
	if replay.CurrentIndex != 1 {
		t.Errorf("CurrentIndex after replay = %d, want 1", replay.CurrentIndex)
	}
	if n := attemptCount(t, db, view.SessionID); n != 1 {
		t.Errorf("attempt count = %d, want 1", n)
	}
}

func TestSubmitEventRejectsInvalidInput(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}, {"b", "2"}})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	tests := []struct {
		name     string
		cmd      *models.EventCommand
		wantKind apperr.Kind
	}{
		{
			name:     "missing client event id",
			cmd:      &models.EventCommand{Type: models.EventNext},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "negative client sequence",
			cmd:      &models.EventCommand{ClientEventID: "e1", ClientSequence: -1, Type: models.EventNext},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "goto out of range",
			cmd:      &models.EventCommand{ClientEventID: "e2", Type: models.EventGotoIndex, TargetIndex: intPtr(99)},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "tile event in linear mode",
			cmd:      &models.EventCommand{ClientEventID: "e3", Type: models.EventSelectLeft},
			wantKind: apperr.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitEvent("owner-1", view.SessionID, tt.cmd)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", apperr.KindOf(err), tt.wantKind)
			}
		})
	}

	// Rejected events leave no trace in the attempt log.
	if n := attemptCount(t, db, view.SessionID); n != 0 {
		t.Errorf("attempt count = %d, want 0 after rejected events", n)
	}
}

func TestSessionHiddenFromOtherOwners(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = svc.GetSession("owner-2", view.SessionID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("GetSession() as other owner: KindOf() = %v, want KindNotFound", apperr.KindOf(err))
	}
	_, err = svc.SubmitEvent("owner-2", view.SessionID, &models.EventCommand{
		ClientEventID: "e1", Type: models.EventNext,
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("SubmitEvent() as other owner: KindOf() = %v, want KindNotFound", apperr.KindOf(err))
	}
}

func TestCompleteSessionAndModeCycle(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}, {"b", "2"}})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	done, err := svc.CompleteSession("owner-1", view.SessionID)
	if err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if done.Status != models.StatusCompleted || !done.Completed {
		t.Error("session should be completed after CompleteSession")
	}
	if done.CompletedModeCount != 1 {
		t.Errorf("CompletedModeCount = %d, want 1", done.CompletedModeCount)
	}

	// Completing again is a plain re-render.
	again, err := svc.CompleteSession("owner-1", view.SessionID)
	if err != nil {
		t.Fatalf("CompleteSession() repeat error = %v", err)
	}
	if again.CompletedModeCount != 1 {
		t.Errorf("CompletedModeCount after repeat = %d, want 1", again.CompletedModeCount)
	}

	// Requesting the finished mode resumes into the next uncompleted one.
	next, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
	if err != nil {
		t.Fatalf("StartSession() after complete error = %v", err)
	}
	if next.SessionID != view.SessionID {
		t.Error("cycle should continue on the same session")
	}
	if next.Mode != models.ModeGuess {
		t.Errorf("Mode = %v, want GUESS", next.Mode)
	}
	if next.Status != models.StatusActive {
		t.Errorf("Status = %v, want ACTIVE", next.Status)
	}
	if next.CompletedModeCount != 1 {
		t.Errorf("CompletedModeCount = %d, want 1", next.CompletedModeCount)
	}
}

func TestFullModeCycleCompletesSession(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	sessionID := view.SessionID

	for i, wantMode := range models.RequiredModes {
		if view.Mode != wantMode {
			t.Fatalf("pass %d: Mode = %v, want %v", i, view.Mode, wantMode)
		}
		if _, err := svc.CompleteSession("owner-1", sessionID); err != nil {
			t.Fatalf("CompleteSession() in mode %v error = %v", wantMode, err)
		}
		view, err = svc.StartSession("owner-1", "deck-1", models.ModeReview, nil, false)
		if err != nil {
			t.Fatalf("StartSession() after mode %v error = %v", wantMode, err)
		}
	}

	if !view.SessionCompleted {
		t.Error("SessionCompleted should be true after the full cycle")
	}
	if view.CompletedModeCount != len(models.RequiredModes) {
		t.Errorf("CompletedModeCount = %d, want %d", view.CompletedModeCount, len(models.RequiredModes))
	}
	if view.Status != models.StatusCompleted {
		t.Errorf("Status = %v, want COMPLETED", view.Status)
	}
}

func TestMatchPairingAndFeedbackWindow(t *testing.T) {
	svc, db, clock := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{
		{"apple", "tao"}, {"banana", "chuoi"}, {"cat", "meo"},
	})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeMatch, int64Ptr(5), false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	sessionID := view.SessionID

	if len(view.LeftTiles) != 3 || len(view.RightTiles) != 3 {
		t.Fatalf("tiles = %d/%d, want 3/3", len(view.LeftTiles), len(view.RightTiles))
	}
	if len(view.ReviewItems) != 0 {
		t.Error("match mode should render no review items")
	}

	left0 := tileIDFor(t, db, sessionID, 0, models.SideLeft)
	right0 := tileIDFor(t, db, sessionID, 0, models.SideRight)
	right1 := tileIDFor(t, db, sessionID, 1, models.SideRight)

	// A single selection marks the tile, no evaluation yet.
	view, err = svc.SubmitEvent("owner-1", sessionID, selectTile(1, models.EventSelectLeft, left0))
	if err != nil {
		t.Fatalf("SubmitEvent() error = %v", err)
	}
	if view.LastAttempt != nil {
		t.Error("no feedback expected after one selection")
	}
	var selected bool
	for _, tile := range view.LeftTiles {
		if tile.TileID == left0 && tile.Selected {
			selected = true
		}
	}
	if !selected {
		t.Error("selected left tile should render as selected")
	}

	// Completing the pair with a mismatched right tile opens an error window.
	view, err = svc.SubmitEvent("owner-1", sessionID, selectTile(2, models.EventSelectRight, right1))
	if err != nil {
		t.Fatalf("SubmitEvent() error = %v", err)
	}
	if view.WrongCount != 1 {
		t.Errorf("WrongCount = %d, want 1", view.WrongCount)
	}
	if view.LastAttempt == nil {
		t.Fatal("feedback expected after pair evaluation")
	}
	if view.LastAttempt.FeedbackStatus != models.FeedbackError {
		t.Errorf("FeedbackStatus = %v, want ERROR", view.LastAttempt.FeedbackStatus)
	}
	if !view.LastAttempt.InteractionLocked {
		t.Error("interaction should be locked during the feedback window")
	}

	// Exactly the two submitted tiles carry the error flash.
	var flashing []string
	for _, tile := range append(view.LeftTiles, view.RightTiles...) {
		if tile.ErrorFlash {
			flashing = append(flashing, tile.TileID)
		}
	}
	if len(flashing) != 2 {
		t.Fatalf("error flash on %d tiles, want 2", len(flashing))
	}
	for _, id := range flashing {
		if id != left0 && id != right1 {
			t.Errorf("unexpected tile %s flagged for flashing", id)
		}
	}

	// Events inside the window are absorbed: recorded, nothing applied.
	before := attemptCount(t, db, sessionID)
	view, err = svc.SubmitEvent("owner-1", sessionID, selectTile(3, models.EventSelectLeft, left0))
	if err != nil {
		t.Fatalf("SubmitEvent() during lock error = %v", err)
	}
	if view.WrongCount != 1 || view.CorrectCount != 0 {
		t.Error("locked event must not change the score")
	}
	if n := attemptCount(t, db, sessionID); n != before+1 {
		t.Errorf("attempt count = %d, want %d (locked events still logged)", n, before+1)
	}

	// Past the window the lock reads as released without any timer firing.
	clock.Advance(engine.FeedbackWindow + time.Millisecond)
	view, err = svc.GetSession("owner-1", sessionID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if view.LastAttempt != nil {
		t.Error("feedback should be gone after the window expires")
	}

	// Now a correct pair scores and flashes success.
	view, err = svc.SubmitEvent("owner-1", sessionID, selectTile(4, models.EventSelectLeft, left0))
	if err != nil {
		t.Fatalf("SubmitEvent() error = %v", err)
	}
	view, err = svc.SubmitEvent("owner-1", sessionID, selectTile(5, models.EventSelectRight, right0))
	if err != nil {
		t.Fatalf("SubmitEvent() error = %v", err)
	}
	if view.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", view.CorrectCount)
	}
	if view.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1 (tracks matched pairs)", view.CurrentIndex)
	}
	if view.LastAttempt == nil || view.LastAttempt.FeedbackStatus != models.FeedbackSuccess {
		t.Fatal("success feedback expected")
	}
	for _, tile := range view.LeftTiles {
		if tile.TileID == left0 {
			if !tile.Matched || !tile.SuccessFlash || tile.Hidden {
				t.Error("matched tile should flash success and stay visible during the window")
			}
		}
	}

	// After the flash the matched tiles disappear.
	clock.Advance(engine.FeedbackWindow + time.Millisecond)
	view, err = svc.GetSession("owner-1", sessionID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	for _, tile := range view.LeftTiles {
		if tile.TileID == left0 && !tile.Hidden {
			t.Error("matched tile should be hidden once the window closes")
		}
	}
}

func TestMatchSelectionErrors(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}, {"b", "2"}})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeMatch, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	sessionID := view.SessionID
	left0 := tileIDFor(t, db, sessionID, 0, models.SideLeft)

	tests := []struct {
		name     string
		cmd      *models.EventCommand
		wantKind apperr.Kind
	}{
		{
			name:     "missing target tile",
			cmd:      &models.EventCommand{ClientEventID: "m1", Type: models.EventSelectLeft},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "unknown tile",
			cmd:      selectTileID("m2", models.EventSelectLeft, "no-such-tile"),
			wantKind: apperr.KindNotFound,
		},
		{
			name:     "wrong side",
			cmd:      selectTileID("m3", models.EventSelectRight, left0),
			wantKind: apperr.KindConflict,
		},
		{
			name:     "navigation event in match mode",
			cmd:      &models.EventCommand{ClientEventID: "m4", Type: models.EventNext},
			wantKind: apperr.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitEvent("owner-1", sessionID, tt.cmd)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", apperr.KindOf(err), tt.wantKind)
			}
		})
	}
}

func selectTileID(eventID string, eventType models.EventType, tileID string) *models.EventCommand {
	return &models.EventCommand{
		ClientEventID: eventID,
		Type:          eventType,
		TargetTileID:  &tileID,
	}
}

func TestMatchCompletingAllPairsEndsMode(t *testing.T) {
	svc, db, clock := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"a", "1"}, {"b", "2"}})

	view, err := svc.StartSession("owner-1", "deck-1", models.ModeMatch, nil, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	sessionID := view.SessionID

	var sequence int64
	for pair := 0; pair < 2; pair++ {
		left := tileIDFor(t, db, sessionID, pair, models.SideLeft)
		right := tileIDFor(t, db, sessionID, pair, models.SideRight)

		sequence++
		if _, err := svc.SubmitEvent("owner-1", sessionID, selectTile(sequence, models.EventSelectLeft, left)); err != nil {
			t.Fatalf("SubmitEvent() left pair %d error = %v", pair, err)
		}
		sequence++
		view, err = svc.SubmitEvent("owner-1", sessionID, selectTile(sequence, models.EventSelectRight, right))
		if err != nil {
			t.Fatalf("SubmitEvent() right pair %d error = %v", pair, err)
		}
		clock.Advance(engine.FeedbackWindow + time.Millisecond)
	}

	if view.CorrectCount != 2 {
		t.Errorf("CorrectCount = %d, want 2", view.CorrectCount)
	}
	if view.Status != models.StatusCompleted || !view.Completed {
		t.Error("matching every pair should complete the mode")
	}
	if view.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
	if view.CompletedModeCount != 1 {
		t.Errorf("CompletedModeCount = %d, want 1", view.CompletedModeCount)
	}
	if view.SessionCompleted {
		t.Error("one finished mode must not complete the whole session")
	}

	// Events against a finished pass are rejected.
	left := tileIDFor(t, db, sessionID, 0, models.SideLeft)
	_, err = svc.SubmitEvent("owner-1", sessionID, selectTileID("late-1", models.EventSelectLeft, left))
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("KindOf() = %v, want KindConflict for event on finished session", apperr.KindOf(err))
	}
}

func TestMatchRequiresTwoPairs(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedDeck(t, db, "deck-1", "owner-1", [][2]string{{"only", "card"}})

	_, err := svc.StartSession("owner-1", "deck-1", models.ModeMatch, nil, false)
	if err == nil {
		t.Fatal("expected error for a one-card match session, got nil")
	}
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("KindOf() = %v, want KindConflict", apperr.KindOf(err))
	}
}
