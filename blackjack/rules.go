package blackjack

import (
	"errors"
	"fmt"
)

// Payout is the blackjack payout ratio
type Payout string

const (
	Payout3To2 Payout = "3:2"
	Payout6To5 Payout = "6:5"
)

// Ratio returns the multiple of the stake won on a natural blackjack
func (p Payout) Ratio() float64 {
	if p == Payout6To5 {
		return 1.2
	}
	return 1.5
}

// DoubleRule restricts which totals may be doubled. It is informational only:
// the round machine lets any two-card hand double.
type DoubleRule string

const (
	DoubleNineToEleven DoubleRule = "9-11"
	DoubleTenToEleven  DoubleRule = "10-11"
	DoubleAny          DoubleRule = "any"
)

// Surrender is the surrender variant offered by the table
type Surrender string

const (
	SurrenderNone  Surrender = "none"
	SurrenderLate  Surrender = "late"
	SurrenderEarly Surrender = "early"
)

const (
	MinSeats = 1
	MaxSeats = 4
	MinDecks = 1
	MaxDecks = 8

	MinPenetration = 50
	MaxPenetration = 95
)

var ErrInvalidRules = errors.New("invalid rules")

// Rules is a snapshot of the table configuration. It is immutable while a
// round is in progress.
type Rules struct {
	Decks                int        `json:"decks"`
	Seats                int        `json:"seats"`
	PenetrationPct       int        `json:"penetrationPct"`
	BlackjackPayout      Payout     `json:"blackjackPayout"`
	DealerStandsOnSoft17 bool       `json:"dealerStandsOnSoft17"`
	HoleCardUSPeek       bool       `json:"holeCardUSPeek"`
	DoubleRule           DoubleRule `json:"doubleRule"`
	AllowDAS             bool       `json:"allowDAS"`
	AllowResplit         bool       `json:"allowResplit"`
	MaxHandsAfterSplit   int        `json:"maxHandsAfterSplit"`
	SplitAcesOneCardOnly bool       `json:"splitAcesOneCardOnly"`
	InsuranceAllowed     bool       `json:"insuranceAllowed"`
	Surrender            Surrender  `json:"surrender"`
}

// DefaultRules returns the standard six-deck table
func DefaultRules() Rules {
	return Rules{
		Decks:                6,
		Seats:                3,
		PenetrationPct:       75,
		BlackjackPayout:      Payout3To2,
		DealerStandsOnSoft17: true,
		HoleCardUSPeek:       false,
		DoubleRule:           DoubleNineToEleven,
		AllowDAS:             false,
		AllowResplit:         true,
		MaxHandsAfterSplit:   4,
		SplitAcesOneCardOnly: true,
		InsuranceAllowed:     true,
		Surrender:            SurrenderNone,
	}
}

// Normalize clamps the seat count into [MinSeats, MaxSeats] and reports
// whether a clamp happened.
func (r *Rules) Normalize() bool {
	switch {
	case r.Seats > MaxSeats:
		r.Seats = MaxSeats
		return true
	case r.Seats < MinSeats:
		r.Seats = MinSeats
		return true
	}
	return false
}

// Validate checks every field is in range. Seats must already be normalized.
func (r Rules) Validate() error {
	if r.Decks < MinDecks || r.Decks > MaxDecks {
		return fmt.Errorf("%w: decks must be %d-%d, got %d", ErrInvalidRules, MinDecks, MaxDecks, r.Decks)
	}
	if r.Seats < MinSeats || r.Seats > MaxSeats {
		return fmt.Errorf("%w: seats must be %d-%d, got %d", ErrInvalidRules, MinSeats, MaxSeats, r.Seats)
	}
	if r.PenetrationPct < MinPenetration || r.PenetrationPct > MaxPenetration {
		return fmt.Errorf("%w: penetration must be %d-%d%%, got %d", ErrInvalidRules, MinPenetration, MaxPenetration, r.PenetrationPct)
	}
	switch r.BlackjackPayout {
	case Payout3To2, Payout6To5:
	default:
		return fmt.Errorf("%w: blackjack payout must be 3:2 or 6:5, got %q", ErrInvalidRules, r.BlackjackPayout)
	}
	switch r.DoubleRule {
	case DoubleNineToEleven, DoubleTenToEleven, DoubleAny:
	default:
		return fmt.Errorf("%w: unknown double rule %q", ErrInvalidRules, r.DoubleRule)
	}
	switch r.Surrender {
	case SurrenderNone, SurrenderLate, SurrenderEarly:
	default:
		return fmt.Errorf("%w: unknown surrender mode %q", ErrInvalidRules, r.Surrender)
	}
	if r.MaxHandsAfterSplit < 2 || r.MaxHandsAfterSplit > 4 {
		return fmt.Errorf("%w: max hands after split must be 2-4, got %d", ErrInvalidRules, r.MaxHandsAfterSplit)
	}
	return nil
}

// TotalCards is the number of cards in a full shoe
func (r Rules) TotalCards() int {
	return r.Decks * 52
}

// CutCardPosition is the number of cards dealt before the shoe must be rebuilt
func (r Rules) CutCardPosition() int {
	return r.TotalCards() * r.PenetrationPct / 100
}
