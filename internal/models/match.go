package models

import "time"

// TileSide says which column a match tile belongs to
type TileSide string

const (
	SideLeft  TileSide = "LEFT"
	SideRight TileSide = "RIGHT"
)

// FeedbackStatus is the outcome shown during the feedback window
type FeedbackStatus string

const (
	FeedbackNone    FeedbackStatus = ""
	FeedbackSuccess FeedbackStatus = "SUCCESS"
	FeedbackError   FeedbackStatus = "ERROR"
)

// MatchTile is one half of a pair in the matching mini-game. PairKey is the
// original flashcard index before either side was shuffled, so a LEFT and a
// RIGHT tile match exactly when their PairKeys are equal. Matched flips to
// true once and never back.
type MatchTile struct {
	ID           string
	SessionID    string
	PairKey      int
	Side         TileSide
	Label        string
	DisplayOrder int
	Matched      bool
}

// MatchState is the singleton interaction state for a match session. While
// the feedback window is open, Locked is true and FeedbackUntil holds the
// wall-clock instant the lock self-expires; expiry is evaluated lazily on
// access, never by a timer.
type MatchState struct {
	SessionID       string
	SelectedLeftID  *string
	SelectedRightID *string
	Locked          bool
	Feedback        FeedbackStatus
	FeedbackLeftID  *string
	FeedbackRightID *string
	FeedbackUntil   *time.Time
	Version         int64
}
