package models

import (
	"fmt"
	"time"
)

// StudyMode identifies one study activity variant
type StudyMode string

const (
	ModeReview StudyMode = "REVIEW"
	ModeGuess  StudyMode = "GUESS"
	ModeRecall StudyMode = "RECALL"
	ModeFill   StudyMode = "FILL"
	ModeMatch  StudyMode = "MATCH"
)

// RequiredModes is the fixed cycle a learner works through before a
// deck-study session counts as fully complete. Order matters: resume picks
// the first mode without a completion record.
var RequiredModes = []StudyMode{ModeReview, ModeGuess, ModeRecall, ModeFill, ModeMatch}

// ParseMode validates a caller-supplied mode string
func ParseMode(s string) (StudyMode, error) {
	switch StudyMode(s) {
	case ModeReview, ModeGuess, ModeRecall, ModeFill, ModeMatch:
		return StudyMode(s), nil
	}
	return "", fmt.Errorf("unknown study mode %q", s)
}

// SessionStatus is the lifecycle state of one study pass
type SessionStatus string

const (
	StatusActive    SessionStatus = "ACTIVE"
	StatusCompleted SessionStatus = "COMPLETED"
)

// StudySession represents one learner's study pass over one deck.
// CurrentIndex and the counters always describe the mode currently active;
// finished modes keep their final numbers in ModeProgress rows.
type StudySession struct {
	ID           string
	DeckID       string
	OwnerID      string
	Mode         StudyMode
	Status       SessionStatus
	Seed         int64
	CurrentIndex int
	TotalUnits   int
	CorrectCount int
	WrongCount   int
	StartedAt    time.Time
	CompletedAt  *time.Time
	ArchivedAt   *time.Time
}

// ModeProgress is the per-session-per-mode completion ledger entry. One row
// exists per mode the session has initialized; Completed flips true at most
// once and the counters are the final numbers for that mode.
type ModeProgress struct {
	SessionID    string
	Mode         StudyMode
	Completed    bool
	TotalUnits   int
	CorrectCount int
	WrongCount   int
	CurrentIndex int
	CompletedAt  *time.Time
}

// SessionItem is an immutable snapshot of one flashcard for a linear mode.
// Position defines the navigation sequence and never changes after creation.
type SessionItem struct {
	ID          int64
	SessionID   string
	Mode        StudyMode
	FlashcardID string
	Position    int
	FrontText   string
	BackText    string
}
