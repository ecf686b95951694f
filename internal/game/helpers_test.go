package game

import (
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/randutil"
)

// stacked returns a shoe that deals draws in order, with filler cards
// underneath so the cut card is not reached.
func stacked(draws string) []blackjack.Card {
	cards := blackjack.MustParseCards(strings.Repeat("9C ", 40) + draws)
	slices.Reverse(cards[40:])
	return cards
}

// exact returns a shoe holding only draws, dealt in order
func exact(draws string) []blackjack.Card {
	cards := blackjack.MustParseCards(draws)
	slices.Reverse(cards)
	return cards
}

func oneSeatRules() blackjack.Rules {
	r := blackjack.DefaultRules()
	r.Seats = 1
	return r
}

func newTestMachine(t *testing.T, draws string, opts ...Option) (*Machine, *quartz.Mock) {
	t.Helper()

	clock := quartz.NewMock(t)
	base := []Option{
		WithClock(clock),
		WithRNG(randutil.New(42)),
		WithLogger(log.New(io.Discard)),
		WithRules(oneSeatRules()),
	}
	if draws != "" {
		base = append(base, WithShoe(stacked(draws)))
	}
	m, err := NewMachine(append(base, opts...)...)
	require.NoError(t, err)
	return m, clock
}

// playOut deals a round and stands every hand, declining insurance
func playOut(t *testing.T, m *Machine) {
	t.Helper()

	require.NoError(t, m.StartRound())
	if m.Phase() == PhaseInsurance {
		for _, seat := range m.Snapshot().Seats {
			if !seat.SittingOut {
				require.NoError(t, m.HandleInsuranceDecision(seat.ID, false))
			}
		}
	}
	for m.Phase() == PhasePlayer {
		require.NoError(t, m.Stand())
	}
	require.Equal(t, PhaseEnd, m.Phase())
}

func hasEvent(events []Event, substr string) bool {
	for _, e := range events {
		if strings.Contains(e.Label, substr) {
			return true
		}
	}
	return false
}
