package blackjack

import "math"

// HiLoValue returns the Hi-Lo tag of a rank: +1 for 2-6, 0 for 7-9 and -1
// for tens and aces.
func HiLoValue(r Rank) int {
	switch {
	case r >= Two && r <= Six:
		return 1
	case r >= Seven && r <= Nine:
		return 0
	case r == Ace || r.IsTenValue():
		return -1
	default:
		return 0
	}
}

// UpdateRunningCount folds one card into a running count
func UpdateRunningCount(running int, c Card) int {
	return running + HiLoValue(c.Rank)
}

// RunningCount sums the Hi-Lo tags of a sequence of cards
func RunningCount(cards []Card) int {
	running := 0
	for _, c := range cards {
		running = UpdateRunningCount(running, c)
	}
	return running
}

// EstimateRemainingDecks converts a card count into decks, rounded to one
// decimal and floored at 0.1.
func EstimateRemainingDecks(remainingCards int) float64 {
	return math.Max(0.1, round1(float64(remainingCards)/52))
}

// TrueCount normalizes a running count by the remaining decks, rounded to one
// decimal. It is zero when no decks remain.
func TrueCount(running int, remainingDecks float64) float64 {
	if remainingDecks <= 0 {
		return 0
	}
	return round1(float64(running) / remainingDecks)
}

func round1(x float64) float64 {
	// halves round up
	return math.Floor(x*10+0.5) / 10
}
