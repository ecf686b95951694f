// Package shoe builds multi-deck shoes and tracks a shoe's draw stack, cut
// card and running count.
package shoe

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/prng"
)

// NewDeck returns the 52 cards of one deck in base order: suits S, H, D, C,
// each holding ranks A through K.
func NewDeck() []blackjack.Card {
	cards := make([]blackjack.Card, 0, 52)
	for _, suit := range blackjack.Suits {
		for _, rank := range blackjack.Ranks {
			cards = append(cards, blackjack.NewCard(rank, suit))
		}
	}
	return cards
}

// Build concatenates decks unshuffled decks
func Build(decks int) []blackjack.Card {
	cards := make([]blackjack.Card, 0, decks*52)
	for range decks {
		cards = append(cards, NewDeck()...)
	}
	return cards
}

// Shuffle runs Fisher-Yates in place: for i from len-1 down to 1 it swaps
// cards[i] with cards[floor(next()*(i+1))].
func Shuffle(cards []blackjack.Card, next func() float64) {
	for i := len(cards) - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// NewCasualOrder builds and shuffles decks with a non-reproducible source
func NewCasualOrder(decks int, rng *rand.Rand) []blackjack.Card {
	cards := Build(decks)
	Shuffle(cards, rng.Float64)
	return cards
}

// CombinedSeed joins the fair-play inputs into the string that is hashed to
// seed the shuffle.
func CombinedSeed(seedClient, seedSystem string, nonce int) string {
	return fmt.Sprintf("%s:%s:%d", seedClient, seedSystem, nonce)
}

// NewProvablyFairOrder builds decks in base order and shuffles them with
// Mulberry32 seeded from Hash32 of the combined seed. Identical inputs always
// return the identical order.
func NewProvablyFairOrder(decks int, seedClient, seedSystem string, nonce int) []blackjack.Card {
	cards := Build(decks)
	seed := prng.Hash32(CombinedSeed(seedClient, seedSystem, nonce))
	Shuffle(cards, prng.NewMulberry32(seed).Func())
	return cards
}
