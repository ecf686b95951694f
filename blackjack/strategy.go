package blackjack

import "slices"

// Action is a player decision during the player phase
type Action string

const (
	ActionHit    Action = "hit"
	ActionStand  Action = "stand"
	ActionDouble Action = "double"
	ActionSplit  Action = "split"
)

// String returns the action name
func (a Action) String() string {
	return string(a)
}

// HandSnapshot is the read-only view the advisor needs from a hand
type HandSnapshot struct {
	Total int
	Soft  bool
	Pair  bool
	// PairValue is the blackjack value of one card of the pair (aces are 11)
	PairValue int
	CanDouble bool
	CanSplit  bool
}

// SnapshotOf builds an advisor snapshot from a hand's cards and its current
// eligibility flags.
func SnapshotOf(cards []Card, canDouble, canSplit bool) HandSnapshot {
	t := HandValue(cards)
	s := HandSnapshot{
		Total:     t.Value,
		Soft:      t.Soft,
		Pair:      IsPair(cards),
		CanDouble: canDouble,
		CanSplit:  canSplit,
	}
	if s.Pair {
		s.PairValue = cards[0].Rank.Value()
	}
	return s
}

// DealerUpValue returns the value the advisor uses for the dealer's up card
func DealerUpValue(up Rank) int {
	return up.Value()
}

// RecommendActions returns the acceptable basic-strategy actions, primary
// first. Pairs are checked before soft totals, soft totals before hard ones.
// Pairs without a split rule (threes and fives) play as their hard total.
// The result is advisory and may contain actions that are not legal.
func RecommendActions(s HandSnapshot, dealerUp Rank) []Action {
	d := DealerUpValue(dealerUp)

	if s.Pair && s.CanSplit {
		if a, ok := pairAdvice(s.PairValue, d); ok {
			return a
		}
	}

	if s.Soft {
		if a, ok := softAdvice(s.Total, d, s.CanDouble); ok {
			return a
		}
	}

	return hardAdvice(s.Total, d, s.CanDouble)
}

func pairAdvice(pair, d int) ([]Action, bool) {
	switch pair {
	case 11, 8:
		return []Action{ActionSplit}, true
	case 10:
		return []Action{ActionStand}, true
	case 9:
		if d != 7 && d != 10 && d != 11 {
			return []Action{ActionSplit}, true
		}
	case 7, 2:
		if d <= 7 {
			return []Action{ActionSplit}, true
		}
	case 6:
		if d <= 6 {
			return []Action{ActionSplit}, true
		}
	case 4:
		if d == 5 || d == 6 {
			return []Action{ActionSplit}, true
		}
	}
	return nil, false
}

func softAdvice(total, d int, canDouble bool) ([]Action, bool) {
	switch {
	case total >= 19:
		return []Action{ActionStand}, true
	case total == 18:
		if canDouble && d >= 3 && d <= 6 {
			return []Action{ActionDouble, ActionStand}, true
		}
		if d >= 9 {
			return []Action{ActionHit}, true
		}
		return []Action{ActionStand}, true
	case total == 17 || total == 16:
		if canDouble && d >= 3 && d <= 6 {
			return []Action{ActionDouble, ActionHit}, true
		}
		return []Action{ActionHit}, true
	case total == 15 || total == 14:
		if canDouble && d >= 4 && d <= 6 {
			return []Action{ActionDouble, ActionHit}, true
		}
		return []Action{ActionHit}, true
	case total == 13 || total == 12:
		if canDouble && d >= 5 && d <= 6 {
			return []Action{ActionDouble, ActionHit}, true
		}
		return []Action{ActionHit}, true
	}
	return nil, false
}

func hardAdvice(t, d int, canDouble bool) []Action {
	switch {
	case t >= 17:
		return []Action{ActionStand}
	case t >= 13:
		if d <= 6 {
			return []Action{ActionStand}
		}
		return []Action{ActionHit}
	case t == 12:
		if d >= 4 && d <= 6 {
			return []Action{ActionStand}
		}
		return []Action{ActionHit}
	case t == 11 && canDouble:
		return []Action{ActionDouble}
	case t == 10 && canDouble && d <= 9:
		return []Action{ActionDouble, ActionHit}
	case t == 9 && canDouble && d >= 3 && d <= 6:
		return []Action{ActionDouble, ActionHit}
	}
	return []Action{ActionHit}
}

// FilterLegal keeps the recommended actions that are in legal, preserving
// order. When nothing survives and standing is legal, stand is returned.
func FilterLegal(recommended, legal []Action) []Action {
	allowed := make(map[Action]bool, len(legal))
	for _, a := range legal {
		allowed[a] = true
	}

	var out []Action
	for _, a := range recommended {
		if allowed[a] {
			out = append(out, a)
		}
	}
	if len(out) == 0 && allowed[ActionHit] && slices.Contains(recommended, ActionDouble) {
		out = append(out, ActionHit)
	}
	if len(out) == 0 && allowed[ActionStand] {
		out = append(out, ActionStand)
	}
	return out
}
