package game

import (
	"fmt"
	"time"

	"github.com/lox/blackjacktrainer/blackjack"
)

// StartRound engages the base bet for every seat that can cover it and deals
// two cards to each seat and to the dealer, the dealer's second face down.
// The shoe is rebuilt first when the cut card was reached or the deck count
// changed.
func (m *Machine) StartRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.Idle() {
		return fmt.Errorf("%w: round already in %s", ErrWrongPhase, m.phase)
	}
	bet := m.settings.BaseBet
	if !m.wallet.CanAfford(bet) {
		return fmt.Errorf("%w: base bet %.2f, available %.2f", ErrInsufficientFunds, bet, m.wallet.Available())
	}

	if m.phase == PhaseEnd {
		m.resetRound()
	}
	if m.shoeStale || m.shoe.NeedsReshuffle() {
		if err := m.buildShoe(); err != nil {
			return err
		}
	}

	m.phase = PhaseDeal
	m.events.Add("Distribution des cartes...")

	for _, seat := range m.seats {
		if !m.wallet.Engage(bet) {
			seat.SittingOut = true
			seat.Hands = nil
			m.events.Add(fmt.Sprintf("%s ne peut pas miser et passe la main", seat.Name()))
			continue
		}
		seat.Hands[0].Bet = bet
		m.events.Add(fmt.Sprintf("%s mise: -%s€", seat.Name(), money(bet)))
	}

	active := m.activeSeats()
	for pass := range 2 {
		for _, seat := range active {
			c, ok := m.draw()
			if !ok {
				break
			}
			hand := seat.Hands[0]
			hand.Cards = append(hand.Cards, c)
			m.shoe.Observe(c)
			m.logger.Debug("Card dealt", "seat", seat.ID, "card", c, "running", m.shoe.Running())
			m.pause(PauseDeal)
		}

		c, ok := m.draw()
		if !ok {
			continue
		}
		m.dealer.Cards = append(m.dealer.Cards, c)
		if pass == 0 {
			m.shoe.Observe(c)
		} else {
			m.dealer.HoleHidden = true
		}
		m.pause(PauseDeal)
	}

	for _, seat := range active {
		hand := seat.Hands[0]
		hand.Blackjack = blackjack.IsBlackjack(hand.Cards)
		m.refreshFlags(seat, hand)
		if hand.Blackjack {
			m.events.Add(fmt.Sprintf("%s a un Blackjack naturel !", seat.Name()))
		}
	}
	m.handsDealt++

	up, _ := m.dealer.UpCard()
	m.logger.Info("Round dealt",
		"hand", m.handsDealt,
		"seats", len(active),
		"up", up,
		"running", m.shoe.Running(),
		"remaining", m.shoe.Remaining())

	if m.offerInsurance() {
		m.phase = PhaseInsurance
		m.insurance = make(map[int]bool)
		m.events.Add("Assurance proposée à tous les sièges")
		return nil
	}
	m.beginPlayerPhase()
	return nil
}

func (m *Machine) offerInsurance() bool {
	up, ok := m.dealer.UpCard()
	return ok && m.rules.InsuranceAllowed && up.IsAce()
}

// HandleInsuranceDecision records one seat's insurance answer. Taking
// insurance engages half of the seat's first hand bet immediately; a seat
// that cannot cover it is recorded as declined with nothing engaged. The
// player phase starts once every playing seat has answered.
func (m *Machine) HandleInsuranceDecision(seatIndex int, take bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseInsurance {
		return fmt.Errorf("%w: phase %s", ErrWrongPhase, m.phase)
	}
	if seatIndex < 0 || seatIndex >= len(m.seats) || m.seats[seatIndex].SittingOut {
		return fmt.Errorf("%w: no playing seat %d", ErrIllegalAction, seatIndex)
	}
	if _, done := m.insurance[seatIndex]; done {
		return fmt.Errorf("%w: seat %d already decided", ErrIllegalAction, seatIndex)
	}

	seat := m.seats[seatIndex]
	hand := seat.Hands[0]
	if take {
		cost := roundCents(hand.Bet * 0.5)
		if m.wallet.Engage(cost) {
			hand.InsuranceBet = cost
			m.events.Add(fmt.Sprintf("%s prend l'assurance (%s€)", seat.Name(), money(cost)))
		} else {
			take = false
			m.logger.Debug("Insurance not affordable", "seat", seatIndex, "cost", cost, "available", m.wallet.Available())
			m.events.Add(fmt.Sprintf("%s: fonds insuffisants pour l'assurance (%s€)", seat.Name(), money(cost)))
		}
	} else {
		m.events.Add(fmt.Sprintf("%s refuse l'assurance", seat.Name()))
	}
	m.insurance[seatIndex] = take

	if len(m.insurance) < len(m.activeSeats()) {
		return nil
	}
	m.events.Add("Phase d'assurance terminée - Tour des joueurs")
	m.beginPlayerPhase()
	return nil
}

// beginPlayerPhase hands the turn to the first playable hand, or goes
// straight to the dealer on a peeked blackjack.
func (m *Machine) beginPlayerPhase() {
	if m.rules.HoleCardUSPeek && m.dealerPeeksBlackjack() {
		m.events.Add("Le croupier vérifie sa carte cachée: Blackjack")
		m.playDealer()
		return
	}
	m.phase = PhasePlayer
	m.moveTurn(0, 0)
}

func (m *Machine) dealerPeeksBlackjack() bool {
	up, ok := m.dealer.UpCard()
	if !ok || !(up.IsAce() || up.Rank.IsTenValue()) {
		return false
	}
	return blackjack.IsBlackjack(m.dealer.Cards)
}

// moveTurn scans from (seatIndex, handIndex) inclusive for the next hand
// that needs a decision, finishing naturals on the way. With none left the
// dealer plays.
func (m *Machine) moveTurn(seatIndex, handIndex int) {
	for s := seatIndex; s < len(m.seats); s++ {
		seat := m.seats[s]
		start := 0
		if s == seatIndex {
			start = handIndex
		}
		for h := start; h < len(seat.Hands); h++ {
			hand := seat.Hands[h]
			if hand.Blackjack && !hand.Finished {
				hand.Finished = true
				hand.CanDouble, hand.CanSplit = false, false
				m.events.Add(fmt.Sprintf("%s: Blackjack, main terminée", seat.Name()))
			}
			if hand.Playable() {
				m.setTurn(s, h)
				return
			}
		}
	}

	m.turn = nil
	m.deadline = time.Time{}
	m.playDealer()
}

func (m *Machine) advanceTurn() {
	if m.turn == nil {
		m.moveTurn(0, 0)
		return
	}
	m.moveTurn(m.turn.SeatIndex, m.turn.HandIndex+1)
}

func (m *Machine) setTurn(seatIndex, handIndex int) {
	m.turn = &Turn{SeatIndex: seatIndex, HandIndex: handIndex}
	m.deadline = m.clock.Now().Add(time.Duration(m.settings.TurnSeconds) * time.Second)
	m.logger.Debug("Turn", "seat", seatIndex, "hand", handIndex, "deadline", m.deadline)
}

// refreshFlags recomputes double and split eligibility after a hand changed
func (m *Machine) refreshFlags(seat *Seat, h *Hand) {
	if h.Finished || h.Blackjack {
		h.CanDouble, h.CanSplit = false, false
		return
	}
	h.CanDouble = blackjack.CanDouble(h.Cards, h.Finished) && (!h.FromSplit || m.rules.AllowDAS)
	h.CanSplit = blackjack.CanSplit(h.Cards) &&
		(!h.FromSplit || m.rules.AllowResplit) &&
		len(seat.Hands) < m.rules.MaxHandsAfterSplit
}

func money(x float64) string {
	if x == float64(int64(x)) {
		return fmt.Sprintf("%d", int64(x))
	}
	return fmt.Sprintf("%.2f", x)
}
