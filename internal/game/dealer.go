package game

import (
	"fmt"

	"github.com/lox/blackjacktrainer/blackjack"
)

// playDealer reveals the hole card, draws to the house rule and settles.
// It runs synchronously inside the action that finished the last hand.
func (m *Machine) playDealer() {
	m.phase = PhaseDealer
	m.events.Add("Tour du croupier")
	m.revealHole()

	for m.dealerMustHit() {
		c, ok := m.draw()
		if !ok {
			m.logger.Warn("Shoe ran out during dealer play")
			break
		}
		m.dealer.Cards = append(m.dealer.Cards, c)
		m.shoe.Observe(c)
		m.events.Add(fmt.Sprintf("Croupier tire %s (Total: %d)", c, m.dealer.Total().Value))
		m.pause(PauseDealerDraw)
	}

	total := m.dealer.Total()
	if total.Value > 21 {
		m.dealer.Busted = true
		m.events.Add(fmt.Sprintf("Croupier dépasse (%d)", total.Value))
	} else {
		m.events.Add(fmt.Sprintf("Croupier reste sur %d", total.Value))
	}
	m.dealer.Finished = true

	m.phase = PhaseResolve
	m.resolve()
}

// dealerMustHit draws below 17, and on soft 17 when the dealer hits it
func (m *Machine) dealerMustHit() bool {
	t := m.dealer.Total()
	return t.Value < 17 || (t.Value == 17 && t.Soft && !m.rules.DealerStandsOnSoft17)
}

// revealHole turns the hole card face up, counting it, and pays insurance
// at once if the dealer holds a blackjack.
func (m *Machine) revealHole() {
	switch {
	case len(m.dealer.Cards) == 1:
		// the deal ran out of cards before the hole card
		if c, ok := m.draw(); ok {
			m.dealer.Cards = append(m.dealer.Cards, c)
			m.shoe.Observe(c)
			m.events.Add(fmt.Sprintf("Croupier reçoit sa 2e carte: %s", c))
			m.pause(PauseReveal)
		}
	case m.dealer.HoleHidden:
		m.dealer.HoleHidden = false
		hole := m.dealer.Cards[1]
		m.shoe.Observe(hole)
		m.events.Add(fmt.Sprintf("Croupier révèle %s", hole))
		m.pause(PauseReveal)
	}

	if blackjack.IsBlackjack(m.dealer.Cards) {
		m.dealer.Blackjack = true
		m.events.Add("Le croupier a un Blackjack !")
		m.settleInsurance(true)
	}
}
