package models

import "time"

// SessionView is the normalized read model returned by every session
// operation. Linear modes populate ReviewItems; the match mode populates the
// tile lists and LastAttempt.
type SessionView struct {
	SessionID          string             `json:"sessionId"`
	DeckID             string             `json:"deckId"`
	Mode               StudyMode          `json:"mode"`
	Status             SessionStatus      `json:"status"`
	CurrentIndex       int                `json:"currentIndex"`
	TotalUnits         int                `json:"totalUnits"`
	CorrectCount       int                `json:"correctCount"`
	WrongCount         int                `json:"wrongCount"`
	Completed          bool               `json:"completed"`
	StartedAt          time.Time          `json:"startedAt"`
	CompletedAt        *time.Time         `json:"completedAt,omitempty"`
	ReviewItems        []ItemView         `json:"reviewItems"`
	LeftTiles          []TileView         `json:"leftTiles"`
	RightTiles         []TileView         `json:"rightTiles"`
	LastAttempt        *AttemptResultView `json:"lastAttemptResult,omitempty"`
	CompletedModeCount int                `json:"completedModeCount"`
	RequiredModeCount  int                `json:"requiredModeCount"`
	SessionCompleted   bool               `json:"sessionCompleted"`
}

// ItemView is one review item in shuffled order
type ItemView struct {
	FlashcardID string `json:"flashcardId"`
	Position    int    `json:"position"`
	FrontText   string `json:"frontText"`
	BackText    string `json:"backText"`
}

// TileView is the rendered state of one match tile. The pair key is
// deliberately absent so clients cannot infer pairings. The flash and hidden
// flags are derived from interaction state on every read, never stored.
type TileView struct {
	TileID       string `json:"tileId"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"displayOrder"`
	Matched      bool   `json:"matched"`
	Hidden       bool   `json:"hidden"`
	Selected     bool   `json:"selected"`
	SuccessFlash bool   `json:"successFlash"`
	ErrorFlash   bool   `json:"errorFlash"`
}

// AttemptResultView describes the active feedback window, if any
type AttemptResultView struct {
	FeedbackStatus    FeedbackStatus `json:"feedbackStatus"`
	LeftTileID        *string        `json:"leftTileId,omitempty"`
	RightTileID       *string        `json:"rightTileId,omitempty"`
	InteractionLocked bool           `json:"interactionLocked"`
	FeedbackUntil     *time.Time     `json:"feedbackUntil,omitempty"`
}
