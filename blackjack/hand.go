package blackjack

import "fmt"

// Total is the best total of a hand
type Total struct {
	Value int
	// Soft is true while at least one ace still counts as 11
	Soft bool
}

// HandValue computes the best total, counting aces as 11 and demoting them
// to 1 one at a time while the hand is over 21.
func HandValue(cards []Card) Total {
	value := 0
	aces := 0
	for _, c := range cards {
		if c.IsAce() {
			aces++
		}
		value += c.Rank.Value()
	}

	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}

	return Total{Value: value, Soft: aces > 0 && value <= 21}
}

// IsBlackjack reports a two-card 21
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && HandValue(cards).Value == 21
}

// IsBusted reports a total over 21
func IsBusted(cards []Card) bool {
	return HandValue(cards).Value > 21
}

// CanDouble reports whether a hand may double: exactly two cards and not
// finished. Double rule variants are not applied here.
func CanDouble(cards []Card, finished bool) bool {
	return len(cards) == 2 && !finished
}

// CanSplit reports two cards of equal blackjack value (T, J, Q and K all
// count as ten).
func CanSplit(cards []Card) bool {
	return len(cards) == 2 && cards[0].Rank.Value() == cards[1].Rank.Value()
}

// IsPair reports two cards of the same rank
func IsPair(cards []Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}

// Totals holds the hard total and, when an ace can count as 11 without
// busting, the soft total. Soft is zero when there is no soft total.
type Totals struct {
	Hard int
	Soft int
}

// HandTotals computes the hard and soft totals used for display
func HandTotals(cards []Card) Totals {
	hard := 0
	hasAce := false
	for _, c := range cards {
		if c.IsAce() {
			hasAce = true
			hard++
			continue
		}
		hard += c.Rank.Value()
	}

	t := Totals{Hard: hard}
	if hasAce && hard+10 <= 21 {
		t.Soft = hard + 10
	}
	return t
}

// Label formats a hand total for the event log ("12 (dur)", "8 / 18 (souple)")
func Label(cards []Card) string {
	if IsBusted(cards) {
		return fmt.Sprintf("%d (Bust)", HandValue(cards).Value)
	}
	if IsBlackjack(cards) {
		return "Blackjack"
	}
	t := HandTotals(cards)
	if t.Soft != 0 {
		return fmt.Sprintf("%d / %d (souple)", t.Hard, t.Soft)
	}
	return fmt.Sprintf("%d (dur)", t.Hard)
}
