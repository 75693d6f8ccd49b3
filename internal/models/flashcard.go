package models

import "time"

// Deck is a named collection of flashcards. Decks are owned and maintained by
// an external collaborator; the engine only reads them.
type Deck struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Flashcard is one front/back card belonging to a deck
type Flashcard struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deckId"`
	FrontText string    `json:"frontText"`
	BackText  string    `json:"backText"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
