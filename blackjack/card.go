package blackjack

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists the suits in base deck order.
var Suits = [4]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the suit symbol
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Code returns the single-letter code used on the wire (S, H, D, C)
func (s Suit) Code() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	default:
		return "?"
	}
}

// IsRed returns true for hearts and diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// ParseSuit parses a suit code
func ParseSuit(s string) (Suit, error) {
	switch strings.ToUpper(s) {
	case "S":
		return Spades, nil
	case "H":
		return Hearts, nil
	case "D":
		return Diamonds, nil
	case "C":
		return Clubs, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Code())
}

func (s *Suit) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, err := ParseSuit(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank represents a card rank. Ace is 1, face cards are 11-13.
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists the ranks in base deck order.
var Ranks = [13]Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the rank code (A, 2-9, T, J, Q, K)
func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r >= Two && r <= Nine:
		return string(rune('0' + r))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	default:
		return "?"
	}
}

// Value returns the blackjack value of the rank, counting an ace as 11.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r)
	}
}

// IsTenValue reports whether the rank counts as ten (T, J, Q, K)
func (r Rank) IsTenValue() bool {
	return r >= Ten && r <= King
}

// ParseRank parses a rank code. "10" is accepted as an alias for "T".
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "A":
		return Ace, nil
	case "T", "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	}
	if len(s) == 1 && s[0] >= '2' && s[0] <= '9' {
		return Rank(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, err := ParseRank(code)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card is an immutable playing card. Multi-deck shoes hold duplicates.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the display form of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Code returns the two-letter wire form of a card (e.g., "AS")
func (c Card) Code() string {
	return c.Rank.String() + c.Suit.Code()
}

// IsAce returns true if the card is an ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// ParseCard parses a card code such as "AS", "TD" or "10H"
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rank, err := ParseRank(s[:len(s)-1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	suit, err := ParseSuit(s[len(s)-1:])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return NewCard(rank, suit), nil
}

// MustParseCards parses space separated card codes and panics on error.
// It is intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}
