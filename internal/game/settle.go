package game

import "fmt"

// outcome applies the settlement order: dealer blackjack, player bust,
// dealer bust, player blackjack, then totals.
func outcome(hand *Hand, dealer *Dealer) Result {
	switch {
	case dealer.Blackjack && !hand.Blackjack:
		return ResultDealerBlackjack
	case hand.Busted:
		return ResultLoss
	case dealer.Busted:
		if hand.Blackjack {
			return ResultBlackjack
		}
		return ResultWin
	case hand.Blackjack && !dealer.Blackjack:
		return ResultBlackjack
	}

	player, house := hand.Total().Value, dealer.Total().Value
	switch {
	case player > house:
		return ResultWin
	case player < house:
		return ResultLoss
	}
	return ResultPush
}

// resolve settles every hand in seat then hand order and moves to END
func (m *Machine) resolve() {
	for _, seat := range m.activeSeats() {
		for i, hand := range seat.Hands {
			result := outcome(hand, &m.dealer)
			m.settle(hand, result)

			name := seat.Name()
			if len(seat.Hands) > 1 {
				name = fmt.Sprintf("%s main %d", name, i+1)
			}
			m.events.Add(fmt.Sprintf("%s: %s", name, result))
		}
	}
	m.settleInsurance(m.dealer.Blackjack)

	m.phase = PhaseEnd
	m.logger.Info("Round settled",
		"dealer", m.dealer.Total().Value,
		"bankroll", m.wallet.Bankroll,
		"exposure", m.wallet.Exposure,
		"running", m.shoe.Running())
}

// settle credits the hand's winnings and releases its stake. Every engaged
// main bet passes through here exactly once.
func (m *Machine) settle(hand *Hand, result Result) {
	var credit float64
	switch result {
	case ResultWin:
		credit = hand.Bet * 2
	case ResultBlackjack:
		credit = hand.Bet * (1 + m.rules.BlackjackPayout.Ratio())
	case ResultPush:
		credit = hand.Bet
	}

	credit = roundCents(credit)
	if credit > 0 {
		m.wallet.Credit(credit)
	}
	m.wallet.Release(hand.Bet)
	hand.Result = result
	hand.Payout = credit
}

// settleInsurance pays 2:1 on every open insurance bet when the dealer has a
// blackjack, otherwise forfeits them. Each bet settles once.
func (m *Machine) settleInsurance(dealerBlackjack bool) {
	for _, seat := range m.activeSeats() {
		hand := seat.Hands[0]
		if hand.InsuranceBet <= 0 || hand.insuranceSettled {
			continue
		}
		if dealerBlackjack {
			win := roundCents(hand.InsuranceBet * 2)
			m.wallet.Credit(win)
			m.events.Add(fmt.Sprintf("%s - Assurance payée: +%s€", seat.Name(), money(win)))
		} else {
			m.events.Add(fmt.Sprintf("%s - Assurance perdue", seat.Name()))
		}
		m.wallet.Release(hand.InsuranceBet)
		hand.insuranceSettled = true
	}
}
