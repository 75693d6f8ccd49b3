// Package shuffle turns a deck's flashcards into per-session snapshots:
// ordered review items for the linear modes and independently shuffled tile
// columns for the match mode.
//
// The permutation must be identical for the same seed, input order and length
// every time, on every platform, across Go releases, because sessions resume
// against previously persisted snapshots. math/rand makes no such guarantee,
// so the generator is a fixed linear congruential generator with the
// Numerical Recipes constants (a=1664525, c=1013904223, mod 2^32) driving a
// Fisher-Yates shuffle.
package shuffle

import (
	"deckdrill/internal/apperr"
	"deckdrill/internal/models"

	"github.com/google/uuid"
)

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// MinMatchPairs is the smallest deck the match mode accepts
const MinMatchPairs = 2

// lcg is the fixed-sequence generator behind every shuffle
type lcg struct {
	state uint64
}

func newLCG(seed int64) *lcg {
	return &lcg{state: uint64(seed) % lcgModulus}
}

// next advances the generator and returns a value in [0, 2^32)
func (g *lcg) next() uint64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return g.state
}

// intn returns a value in [0, n)
func (g *lcg) intn(n int) int {
	return int(g.next() % uint64(n))
}

// Permutation returns the deterministic order of n elements for a seed
func Permutation(n int, seed int64) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	g := newLCG(seed)
	for i := n - 1; i > 0; i-- {
		j := g.intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// BuildItems snapshots the deck into ordered session items for a linear
// mode, positions assigned from 0 in shuffled order.
func BuildItems(session *models.StudySession, mode models.StudyMode, cards []models.Flashcard) ([]models.SessionItem, error) {
	if len(cards) == 0 {
		return nil, apperr.Conflictf("deck has no flashcards")
	}

	perm := Permutation(len(cards), session.Seed)

	items := make([]models.SessionItem, len(cards))
	for pos, src := range perm {
		card := cards[src]
		items[pos] = models.SessionItem{
			SessionID:   session.ID,
			Mode:        mode,
			FlashcardID: card.ID,
			Position:    pos,
			FrontText:   card.FrontText,
			BackText:    card.BackText,
		}
	}
	return items, nil
}

// BuildTiles snapshots the deck into the two tile columns for the match
// mode. Each flashcard yields one LEFT tile (front text) and one RIGHT tile
// (back text) sharing the card's original index as pair key. The columns are
// shuffled with seed+1 and seed+2 so display order reveals nothing about the
// pairing.
func BuildTiles(session *models.StudySession, cards []models.Flashcard) ([]models.MatchTile, error) {
	if len(cards) == 0 {
		return nil, apperr.Conflictf("deck has no flashcards")
	}
	if len(cards) < MinMatchPairs {
		return nil, apperr.Conflictf("match mode requires at least %d flashcards", MinMatchPairs)
	}

	leftPerm := Permutation(len(cards), session.Seed+1)
	rightPerm := Permutation(len(cards), session.Seed+2)

	tiles := make([]models.MatchTile, 0, 2*len(cards))
	for pos, src := range leftPerm {
		tiles = append(tiles, models.MatchTile{
			ID:           uuid.New().String(),
			SessionID:    session.ID,
			PairKey:      src,
			Side:         models.SideLeft,
			Label:        cards[src].FrontText,
			DisplayOrder: pos,
		})
	}
	for pos, src := range rightPerm {
		tiles = append(tiles, models.MatchTile{
			ID:           uuid.New().String(),
			SessionID:    session.ID,
			PairKey:      src,
			Side:         models.SideRight,
			Label:        cards[src].BackText,
			DisplayOrder: pos,
		})
	}
	return tiles, nil
}
