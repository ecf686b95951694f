package shoe

import "github.com/lox/blackjacktrainer/blackjack"

// Shoe is a draw stack. Cards come off the end of the slice. The discard
// count is derived from the total and the cards left, so the remaining
// length is the only source of truth.
type Shoe struct {
	cards   []blackjack.Card
	total   int
	cut     int
	running int
}

// New wraps an ordered card sequence. The cut card position is fixed here
// as floor(total * penetrationPct / 100).
func New(cards []blackjack.Card, penetrationPct int) *Shoe {
	total := len(cards)
	return &Shoe{
		cards: cards,
		total: total,
		cut:   total * penetrationPct / 100,
	}
}

// Restore rebuilds a shoe from persisted fields
func Restore(cards []blackjack.Card, total, cutCardPosition, running int) *Shoe {
	if total < len(cards) {
		total = len(cards)
	}
	return &Shoe{
		cards:   cards,
		total:   total,
		cut:     cutCardPosition,
		running: running,
	}
}

// Draw pops the next card. It returns false when the shoe is empty.
func (s *Shoe) Draw() (blackjack.Card, bool) {
	if len(s.cards) == 0 {
		return blackjack.Card{}, false
	}
	c := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return c, true
}

// Observe folds a card that became visible into the running count
func (s *Shoe) Observe(c blackjack.Card) {
	s.running = blackjack.UpdateRunningCount(s.running, c)
}

// Running returns the running count since the shoe was built
func (s *Shoe) Running() int { return s.running }

// Remaining returns the number of undrawn cards
func (s *Shoe) Remaining() int { return len(s.cards) }

// Total returns the size of the shoe when it was built
func (s *Shoe) Total() int { return s.total }

// Discard returns how many cards have been drawn
func (s *Shoe) Discard() int { return s.total - len(s.cards) }

// CutCardPosition returns the number of cards dealt before a rebuild
func (s *Shoe) CutCardPosition() int { return s.cut }

// NeedsReshuffle reports whether the cut card has been reached
func (s *Shoe) NeedsReshuffle() bool {
	return len(s.cards) <= s.total-s.cut
}

// RemainingDecks estimates the decks left for true-count purposes
func (s *Shoe) RemainingDecks() float64 {
	return blackjack.EstimateRemainingDecks(len(s.cards))
}

// TrueCount returns the running count normalized by remaining decks
func (s *Shoe) TrueCount() float64 {
	return blackjack.TrueCount(s.running, s.RemainingDecks())
}

// Cards returns a copy of the undrawn cards in stack order
func (s *Shoe) Cards() []blackjack.Card {
	out := make([]blackjack.Card, len(s.cards))
	copy(out, s.cards)
	return out
}
