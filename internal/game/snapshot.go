package game

import "github.com/lox/blackjacktrainer/blackjack"

// DealerView is the dealer as players see it
type DealerView struct {
	Cards      []blackjack.Card `json:"cards"`
	HoleHidden bool             `json:"holeHidden"`
	Total      int              `json:"total"`
	Soft       bool             `json:"soft"`
	Finished   bool             `json:"finished"`
	Busted     bool             `json:"busted"`
	Blackjack  bool             `json:"blackjack"`
}

// FairView is the public fairness state. The system seed is withheld until
// the shoe is revealed.
type FairView struct {
	SeedClient       string `json:"seedClient"`
	SeedSystem       string `json:"seedSystem,omitempty"`
	Nonce            int    `json:"nonce"`
	SHA256Commitment string `json:"sha256Commitment,omitempty"`
	Revealed         bool   `json:"revealed"`
	TSCreated        int64  `json:"tsCreated,omitempty"`
}

// Snapshot is an immutable copy of the machine state for observers
type Snapshot struct {
	Phase           Phase              `json:"phase"`
	Rules           blackjack.Rules    `json:"rules"`
	Settings        Settings           `json:"settings"`
	Seats           []*Seat            `json:"seats"`
	Dealer          DealerView         `json:"dealer"`
	Turn            *Turn              `json:"currentTurn,omitempty"`
	TurnDeadlineAt  int64              `json:"turnDeadlineAt,omitempty"`
	Bankroll        float64            `json:"bankroll"`
	Exposure        float64            `json:"exposure"`
	Available       float64            `json:"available"`
	RunningCount    int                `json:"running"`
	TrueCount       float64            `json:"trueCount"`
	RemainingCards  int                `json:"remainingCards"`
	RemainingDecks  float64            `json:"remainingDecks"`
	Discard         int                `json:"discard"`
	CutCardPosition int                `json:"cutCardPosition"`
	TotalCards      int                `json:"totalCards"`
	HandsDealt      int                `json:"handsDealt"`
	ShouldQuiz      bool               `json:"shouldQuiz"`
	MyRunning       *int               `json:"myRunning,omitempty"`
	MyTrue          *float64           `json:"myTrue,omitempty"`
	Fair            FairView           `json:"fair"`
	LegalActions    []blackjack.Action `json:"legalActions,omitempty"`
	Advice          []blackjack.Action `json:"advice,omitempty"`
	Events          []Event            `json:"queue"`
}

// Snapshot returns a deep copy of the current state
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Machine) snapshot() Snapshot {
	seats := make([]*Seat, len(m.seats))
	for i, s := range m.seats {
		seats[i] = s.clone()
	}

	visible := m.dealer.Visible()
	dt := blackjack.HandValue(visible)

	s := Snapshot{
		Phase:    m.phase,
		Rules:    m.rules,
		Settings: m.settings,
		Seats:    seats,
		Dealer: DealerView{
			Cards:      visible,
			HoleHidden: m.dealer.HoleHidden,
			Total:      dt.Value,
			Soft:       dt.Soft,
			Finished:   m.dealer.Finished,
			Busted:     m.dealer.Busted,
			Blackjack:  m.dealer.Blackjack,
		},
		Bankroll:        m.wallet.Bankroll,
		Exposure:        m.wallet.Exposure,
		Available:       m.wallet.Available(),
		RunningCount:    m.shoe.Running(),
		TrueCount:       m.shoe.TrueCount(),
		RemainingCards:  m.shoe.Remaining(),
		RemainingDecks:  m.shoe.RemainingDecks(),
		Discard:         m.shoe.Discard(),
		CutCardPosition: m.shoe.CutCardPosition(),
		TotalCards:      m.shoe.Total(),
		HandsDealt:      m.handsDealt,
		ShouldQuiz:      m.shouldQuiz(),
		MyRunning:       clonePtr(m.myRunning),
		MyTrue:          clonePtr(m.myTrue),
		Fair: FairView{
			SeedClient:       m.fair.SeedClient,
			Nonce:            m.fair.Nonce,
			SHA256Commitment: m.fair.SHA256Commitment,
			Revealed:         m.fair.Revealed,
			TSCreated:        m.fair.TSCreated,
		},
		LegalActions: m.legalActions(),
		Advice:       m.advice(),
		Events:       m.events.Events(),
	}
	if m.fair.Revealed {
		s.Fair.SeedSystem = m.fair.SeedSystem
	}
	if m.turn != nil {
		t := *m.turn
		s.Turn = &t
	}
	if !m.deadline.IsZero() {
		s.TurnDeadlineAt = m.deadline.UnixMilli()
	}
	return s
}
