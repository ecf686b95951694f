package game

import (
	"fmt"
	"time"

	"github.com/lox/blackjacktrainer/blackjack"
)

// Hit draws one card to the hand on turn
func (m *Machine) Hit() error { return m.Act(blackjack.ActionHit, "") }

// Stand finishes the hand on turn
func (m *Machine) Stand() error { return m.Act(blackjack.ActionStand, "") }

// DoubleDown doubles the bet, draws exactly one card and finishes the hand
func (m *Machine) DoubleDown() error { return m.Act(blackjack.ActionDouble, "") }

// Split moves the second card of a pair into a new hand with a matching bet
func (m *Machine) Split() error { return m.Act(blackjack.ActionSplit, "") }

// Act applies a player action to the hand on turn. When handID is set the
// action is rejected unless that hand is the one on turn, so a repeated
// client request cannot land on the next seat.
func (m *Machine) Act(action blackjack.Action, handID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handID != "" {
		_, hand, err := m.currentHand()
		if err != nil {
			return err
		}
		if hand.ID != handID {
			return fmt.Errorf("%w: %s is not on turn", ErrIllegalAction, handID)
		}
	}

	switch action {
	case blackjack.ActionHit:
		return m.hit()
	case blackjack.ActionStand:
		return m.stand()
	case blackjack.ActionDouble:
		return m.doubleDown()
	case blackjack.ActionSplit:
		return m.split()
	default:
		return fmt.Errorf("%w: unknown action %q", ErrIllegalAction, action)
	}
}

func (m *Machine) currentHand() (*Seat, *Hand, error) {
	if m.phase != PhasePlayer {
		return nil, nil, fmt.Errorf("%w: phase %s", ErrWrongPhase, m.phase)
	}
	if m.turn == nil {
		return nil, nil, fmt.Errorf("%w: no hand on turn", ErrIllegalAction)
	}
	seat := m.seats[m.turn.SeatIndex]
	return seat, seat.Hands[m.turn.HandIndex], nil
}

func (m *Machine) checkHit(hand *Hand) error {
	if !hand.Playable() {
		return fmt.Errorf("%w: hand %s is finished", ErrIllegalAction, hand.ID)
	}
	if m.shoe.Remaining() == 0 {
		return ErrShoeEmpty
	}
	return nil
}

func (m *Machine) checkDouble(hand *Hand) error {
	if !hand.Playable() || !hand.CanDouble {
		return fmt.Errorf("%w: hand %s cannot double", ErrIllegalAction, hand.ID)
	}
	if m.shoe.Remaining() == 0 {
		return ErrShoeEmpty
	}
	if !m.wallet.CanAfford(hand.Bet) {
		return fmt.Errorf("%w: double needs %.2f", ErrInsufficientFunds, hand.Bet)
	}
	return nil
}

func (m *Machine) checkSplit(seat *Seat, hand *Hand) error {
	if !hand.Playable() || !hand.CanSplit {
		return fmt.Errorf("%w: hand %s cannot split", ErrIllegalAction, hand.ID)
	}
	if len(seat.Hands) >= m.rules.MaxHandsAfterSplit {
		return fmt.Errorf("%w: seat already has %d hands", ErrIllegalAction, len(seat.Hands))
	}
	if m.shoe.Remaining() < 2 {
		return ErrShoeEmpty
	}
	if !m.wallet.CanAfford(hand.Bet) {
		return fmt.Errorf("%w: split needs %.2f", ErrInsufficientFunds, hand.Bet)
	}
	return nil
}

func handKey(kind string, hand *Hand) string {
	return fmt.Sprintf("%s-%s-%d", kind, hand.ID, len(hand.Cards))
}

func (m *Machine) hit() error {
	seat, hand, err := m.currentHand()
	if err != nil {
		return err
	}
	if err := m.checkHit(hand); err != nil {
		return err
	}

	c, _ := m.draw()
	hand.Cards = append(hand.Cards, c)
	m.shoe.Observe(c)
	hand.CanDouble, hand.CanSplit = false, false

	total := hand.Total()
	m.events.AddOnce(handKey("hit", hand), fmt.Sprintf("%s tire %s (Total: %d)", seat.Name(), c, total.Value))
	switch {
	case total.Value > 21:
		hand.Busted = true
		hand.Finished = true
		m.events.AddOnce(handKey("bust", hand), fmt.Sprintf("%s dépasse (%d)", seat.Name(), total.Value))
	case total.Value == 21:
		hand.Finished = true
		m.events.AddOnce(handKey("21", hand), fmt.Sprintf("%s fait 21", seat.Name()))
	}
	m.logger.Debug("Hit", "hand", hand.ID, "card", c, "total", total.Value)

	m.pause(PauseHit)
	if hand.Finished {
		m.advanceTurn()
	}
	return nil
}

func (m *Machine) stand() error {
	seat, hand, err := m.currentHand()
	if err != nil {
		return err
	}
	if hand.Finished {
		return fmt.Errorf("%w: hand %s is finished", ErrIllegalAction, hand.ID)
	}

	hand.Finished = true
	hand.CanDouble, hand.CanSplit = false, false
	m.events.AddOnce(handKey("stand", hand), fmt.Sprintf("%s reste sur %s", seat.Name(), blackjack.Label(hand.Cards)))
	m.advanceTurn()
	return nil
}

func (m *Machine) doubleDown() error {
	seat, hand, err := m.currentHand()
	if err != nil {
		return err
	}
	if err := m.checkDouble(hand); err != nil {
		return err
	}

	amount := hand.Bet
	m.wallet.Engage(amount)
	hand.Bet = roundCents(hand.Bet + amount)
	m.deadline = time.Time{}
	m.events.AddOnce(handKey("double", hand), fmt.Sprintf("%s double (mise: %s€)", seat.Name(), money(hand.Bet)))

	c, _ := m.draw()
	hand.Cards = append(hand.Cards, c)
	m.shoe.Observe(c)
	hand.Finished = true
	hand.CanDouble, hand.CanSplit = false, false

	total := hand.Total()
	if total.Value > 21 {
		hand.Busted = true
		m.events.AddOnce(handKey("double-bust", hand), fmt.Sprintf("%s dépasse après double (%d)", seat.Name(), total.Value))
	}
	m.logger.Debug("Double", "hand", hand.ID, "card", c, "total", total.Value, "bet", hand.Bet)

	m.pause(PauseDouble)
	m.advanceTurn()
	return nil
}

func (m *Machine) split() error {
	seat, hand, err := m.currentHand()
	if err != nil {
		return err
	}
	if err := m.checkSplit(seat, hand); err != nil {
		return err
	}

	m.wallet.Engage(hand.Bet)

	second := hand.Cards[1]
	hand.Cards = hand.Cards[:1]
	sibling := newHand(seat.ID, len(seat.Hands))
	sibling.Cards = []blackjack.Card{second}
	sibling.Bet = hand.Bet
	seat.Hands = append(seat.Hands, sibling)

	aces := second.IsAce()
	for _, h := range []*Hand{hand, sibling} {
		h.FromSplit = true
		h.IsSplitAce = aces
	}
	m.events.Add(fmt.Sprintf("%s sépare (%d mains)", seat.Name(), len(seat.Hands)))

	for _, h := range []*Hand{hand, sibling} {
		c, _ := m.draw()
		h.Cards = append(h.Cards, c)
		m.shoe.Observe(c)
		m.pause(PauseSplit)
	}

	for _, h := range []*Hand{hand, sibling} {
		if (aces && m.rules.SplitAcesOneCardOnly) || h.Total().Value == 21 {
			h.Finished = true
		}
		m.refreshFlags(seat, h)
	}
	if aces && m.rules.SplitAcesOneCardOnly {
		m.events.Add(fmt.Sprintf("%s: as séparés, une carte par main", seat.Name()))
	}
	m.logger.Debug("Split", "seat", seat.ID, "hands", len(seat.Hands))

	if hand.Finished {
		m.advanceTurn()
	}
	return nil
}

// LegalActions returns the actions the hand on turn may take now
func (m *Machine) LegalActions() []blackjack.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.legalActions()
}

func (m *Machine) legalActions() []blackjack.Action {
	seat, hand, err := m.currentHand()
	if err != nil || hand.Finished {
		return nil
	}

	var out []blackjack.Action
	if m.checkHit(hand) == nil {
		out = append(out, blackjack.ActionHit)
	}
	out = append(out, blackjack.ActionStand)
	if m.checkDouble(hand) == nil {
		out = append(out, blackjack.ActionDouble)
	}
	if m.checkSplit(seat, hand) == nil {
		out = append(out, blackjack.ActionSplit)
	}
	return out
}

// Advice returns the basic-strategy recommendation for the hand on turn,
// restricted to legal actions.
func (m *Machine) Advice() []blackjack.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advice()
}

func (m *Machine) advice() []blackjack.Action {
	seat, hand, err := m.currentHand()
	up, ok := m.dealer.UpCard()
	if err != nil || !ok || hand.Finished {
		return nil
	}
	canSplit := hand.CanSplit && len(seat.Hands) < m.rules.MaxHandsAfterSplit
	snap := blackjack.SnapshotOf(hand.Cards, hand.CanDouble, canSplit)
	return blackjack.FilterLegal(blackjack.RecommendActions(snap, up.Rank), m.legalActions())
}
