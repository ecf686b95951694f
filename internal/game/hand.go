package game

import (
	"fmt"

	"github.com/lox/blackjacktrainer/blackjack"
)

// Result is the settlement label written on a hand at RESOLVE
type Result string

const (
	ResultDealerBlackjack Result = "Croupier Blackjack"
	ResultLoss            Result = "Perdu"
	ResultWin             Result = "Gagné"
	ResultBlackjack       Result = "Blackjack gagne"
	ResultPush            Result = "Égalité"
)

// Hand is one player hand. Bet only grows during a round (double, split)
// and InsuranceBet is tracked apart from the main wager.
type Hand struct {
	ID           string           `json:"id"`
	Cards        []blackjack.Card `json:"cards"`
	Bet          float64          `json:"bet"`
	Finished     bool             `json:"finished"`
	Busted       bool             `json:"busted"`
	Blackjack    bool             `json:"blackjack"`
	CanDouble    bool             `json:"canDouble"`
	CanSplit     bool             `json:"canSplit"`
	IsSplitAce   bool             `json:"isSplitAce,omitempty"`
	FromSplit    bool             `json:"fromSplit,omitempty"`
	InsuranceBet float64          `json:"insuranceBet,omitempty"`
	Result       Result           `json:"result,omitempty"`
	// Payout is the amount credited back at settlement, stake included
	Payout float64 `json:"payout,omitempty"`

	insuranceSettled bool
}

func newHand(seat, index int) *Hand {
	return &Hand{ID: handID(seat, index)}
}

func handID(seat, index int) string {
	return fmt.Sprintf("seat-%d-hand-%d", seat, index)
}

// Total returns the best total of the hand
func (h *Hand) Total() blackjack.Total {
	return blackjack.HandValue(h.Cards)
}

// Playable reports whether the hand still needs a decision
func (h *Hand) Playable() bool {
	return !h.Finished && !h.Blackjack
}

func (h *Hand) clone() *Hand {
	c := *h
	c.Cards = append([]blackjack.Card(nil), h.Cards...)
	return &c
}

// Seat holds a player's hands. A seat that could not cover the base bet
// sits the round out with no hands.
type Seat struct {
	ID         int     `json:"id"`
	Hands      []*Hand `json:"hands"`
	SittingOut bool    `json:"sittingOut,omitempty"`
}

// Name is the display name of the seat
func (s *Seat) Name() string {
	return fmt.Sprintf("Siège %d", s.ID+1)
}

func (s *Seat) clone() *Seat {
	c := &Seat{ID: s.ID, SittingOut: s.SittingOut, Hands: make([]*Hand, len(s.Hands))}
	for i, h := range s.Hands {
		c.Hands[i] = h.clone()
	}
	return c
}

// Dealer is the house hand. The second card stays hidden until the dealer
// phase.
type Dealer struct {
	Cards      []blackjack.Card
	HoleHidden bool
	Finished   bool
	Busted     bool
	Blackjack  bool
}

// UpCard returns the dealer's first card
func (d *Dealer) UpCard() (blackjack.Card, bool) {
	if len(d.Cards) == 0 {
		return blackjack.Card{}, false
	}
	return d.Cards[0], true
}

// Visible returns the cards a player can see
func (d *Dealer) Visible() []blackjack.Card {
	if d.HoleHidden && len(d.Cards) > 1 {
		return append([]blackjack.Card{d.Cards[0]}, d.Cards[2:]...)
	}
	return append([]blackjack.Card(nil), d.Cards...)
}

// Total returns the dealer's full total, hole card included
func (d *Dealer) Total() blackjack.Total {
	return blackjack.HandValue(d.Cards)
}
