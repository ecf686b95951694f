package game

import (
	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/fair"
	"github.com/lox/blackjacktrainer/internal/shoe"
)

// PersistedState is the part of the machine that survives a reload. Seats,
// dealer, turn and insurance decisions are round-scoped and never stored.
type PersistedState struct {
	Shoe            []blackjack.Card `json:"shoe"`
	Discard         int              `json:"discard"`
	RunningCount    int              `json:"running"`
	HandsDealt      int              `json:"handsDealt"`
	CutCardPosition int              `json:"cutCardPosition"`
	TotalCards      int              `json:"totalCards"`
	ShoeStale       bool             `json:"shoeStale,omitempty"`
	Rules           blackjack.Rules  `json:"rules"`
	Settings        Settings         `json:"ui"`
	Fair            fair.Proof       `json:"fair"`
	Proofs          []fair.Export    `json:"proofs,omitempty"`
	MyRunning       *int             `json:"myRunning,omitempty"`
	MyTrue          *float64         `json:"myTrue,omitempty"`
	Bankroll        float64          `json:"bankroll"`
	Exposure        float64          `json:"exposure"`
	Events          []Event          `json:"queue"`
	QuizResults     []QuizResult     `json:"quizResults"`
	EventKeys       []DedupEntry     `json:"eventKeys"`
}

// Persist captures the persistent state
func (m *Machine) Persist() PersistedState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return PersistedState{
		Shoe:            m.shoe.Cards(),
		Discard:         m.shoe.Discard(),
		RunningCount:    m.shoe.Running(),
		HandsDealt:      m.handsDealt,
		CutCardPosition: m.shoe.CutCardPosition(),
		TotalCards:      m.shoe.Total(),
		ShoeStale:       m.shoeStale,
		Rules:           m.rules,
		Settings:        m.settings,
		Fair:            cloneProof(m.fair),
		Proofs:          append([]fair.Export(nil), m.proofs...),
		MyRunning:       clonePtr(m.myRunning),
		MyTrue:          clonePtr(m.myTrue),
		Bankroll:        m.wallet.Bankroll,
		Exposure:        m.wallet.Exposure,
		Events:          m.events.Events(),
		QuizResults:     append([]QuizResult(nil), m.quiz...),
		EventKeys:       m.events.DedupEntries(),
	}
}

// Restore loads persisted state. The machine always lands in INIT; stakes
// engaged in a round that was interrupted are refunded.
func (m *Machine) Restore(st PersistedState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st.Rules.Normalize()
	if err := st.Rules.Validate(); err != nil {
		return err
	}
	if err := st.Settings.Validate(); err != nil {
		return err
	}

	m.rules = st.Rules
	m.settings = st.Settings
	m.fair = cloneProof(st.Fair)
	m.proofs = append([]fair.Export(nil), st.Proofs...)
	m.handsDealt = st.HandsDealt
	m.quiz = append([]QuizResult(nil), st.QuizResults...)
	m.wallet = Wallet{Bankroll: st.Bankroll, Exposure: st.Exposure}

	m.resetRound()
	m.events.Restore(st.Events, st.EventKeys)
	m.myRunning = clonePtr(st.MyRunning)
	m.myTrue = clonePtr(st.MyTrue)

	if m.wallet.Exposure > 0 {
		m.logger.Warn("Refunding stakes of an interrupted round", "exposure", m.wallet.Exposure)
		m.wallet.Refund()
		m.events.Add("Main interrompue: mises remboursées")
	}

	if len(st.Shoe) == 0 {
		return m.buildShoe()
	}
	m.shoe = shoe.Restore(append([]blackjack.Card(nil), st.Shoe...), st.TotalCards, st.CutCardPosition, st.RunningCount)
	m.shoeStale = st.ShoeStale
	m.logger.Info("State restored", "remaining", m.shoe.Remaining(), "handsDealt", m.handsDealt, "bankroll", m.wallet.Bankroll)
	return nil
}
