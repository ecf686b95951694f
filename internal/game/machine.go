package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/fair"
	"github.com/lox/blackjacktrainer/internal/prng"
	"github.com/lox/blackjacktrainer/internal/randutil"
	"github.com/lox/blackjacktrainer/internal/shoe"
)

var (
	ErrWrongPhase        = errors.New("action not allowed in this phase")
	ErrIllegalAction     = errors.New("illegal action")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrShoeEmpty         = errors.New("shoe is empty")
	ErrRoundActive       = errors.New("a round is in progress")
)

// Machine owns all round state. Every exported method takes the same lock
// and runs to completion before the next one starts.
type Machine struct {
	mu sync.Mutex

	clock  quartz.Clock
	logger *log.Logger
	rng    *rand.Rand
	seeds  *prng.SeedGenerator
	pacer  Pacer

	rules     blackjack.Rules
	settings  Settings
	shoe      *shoe.Shoe
	shoeStale bool
	fair      fair.Proof
	proofs    []fair.Export

	seats     []*Seat
	dealer    Dealer
	phase     Phase
	turn      *Turn
	deadline  time.Time
	insurance map[int]bool

	wallet     Wallet
	handsDealt int
	events     *EventLog
	quiz       []QuizResult
	myRunning  *int
	myTrue     *float64
}

// NewMachine creates a machine in phase INIT with a fresh shoe
func NewMachine(opts ...Option) (*Machine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	cfg.rules.Normalize()
	if err := cfg.rules.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.settings.Validate(); err != nil {
		return nil, err
	}
	if cfg.rng == nil {
		cfg.rng = randutil.FromTime(cfg.clock.Now())
	}

	m := &Machine{
		clock:     cfg.clock,
		logger:    cfg.logger.WithPrefix("machine"),
		rng:       cfg.rng,
		seeds:     prng.NewSeedGenerator(cfg.seedSource),
		pacer:     cfg.pacer,
		rules:     cfg.rules,
		settings:  cfg.settings,
		phase:     PhaseInit,
		insurance: make(map[int]bool),
		wallet:    Wallet{Bankroll: cfg.settings.Bankroll},
		events:    NewEventLog(cfg.clock, cfg.dedupWindow),
	}
	m.resetSeats()

	if cfg.shoe != nil {
		m.shoe = shoe.New(cfg.shoe, m.rules.PenetrationPct)
	} else if err := m.buildShoe(); err != nil {
		return nil, err
	}

	m.logger.Debug("Machine created",
		"decks", m.rules.Decks,
		"seats", m.rules.Seats,
		"cards", m.shoe.Remaining())
	return m, nil
}

func (m *Machine) resetSeats() {
	m.seats = make([]*Seat, m.rules.Seats)
	for i := range m.seats {
		m.seats[i] = &Seat{ID: i, Hands: []*Hand{newHand(i, 0)}}
	}
}

// resetRound clears the round-scoped state. Shoe, counts and wallet persist.
func (m *Machine) resetRound() {
	m.resetSeats()
	m.dealer = Dealer{}
	m.phase = PhaseInit
	m.turn = nil
	m.deadline = time.Time{}
	m.insurance = make(map[int]bool)
	m.myRunning = nil
	m.myTrue = nil
	m.events.ResetDedup()
}

// buildShoe retires the current shoe and deals a new one from the rules,
// committing it first when provably-fair play is on.
func (m *Machine) buildShoe() error {
	m.retireCommitment()

	if m.settings.ProvablyFair {
		order, err := m.fair.CommitShoe(m.rules, m.seeds, m.clock.Now())
		if err != nil {
			return fmt.Errorf("commit shoe: %w", err)
		}
		m.shoe = shoe.New(order, m.rules.PenetrationPct)
		m.events.Add("Engagement cryptographique créé")
	} else {
		m.shoe = shoe.New(shoe.NewCasualOrder(m.rules.Decks, m.rng), m.rules.PenetrationPct)
	}
	m.shoeStale = false

	m.events.Add(fmt.Sprintf("Nouveau sabot: %d paquet(s), coupe à %d cartes", m.rules.Decks, m.shoe.CutCardPosition()))
	m.logger.Info("New shoe",
		"decks", m.rules.Decks,
		"cut", m.shoe.CutCardPosition(),
		"fair", m.settings.ProvablyFair)
	return nil
}

// retireCommitment publishes the proof of a committed shoe that is being
// consumed and frees the seeds for the next one.
func (m *Machine) retireCommitment() {
	if !m.fair.Committed() {
		return
	}
	if !m.fair.Revealed {
		export, err := m.fair.Reveal()
		if err == nil {
			m.proofs = append(m.proofs, export)
			m.events.Add("Sabot révélé automatiquement - preuve disponible")
		}
	}
	m.fair.Retire()
}

func (m *Machine) draw() (blackjack.Card, bool) {
	return m.shoe.Draw()
}

func (m *Machine) pause(kind PauseKind) {
	if m.pacer == nil {
		return
	}
	m.pacer.Pause(kind, m.snapshot())
}

func (m *Machine) activeSeats() []*Seat {
	out := make([]*Seat, 0, len(m.seats))
	for _, s := range m.seats {
		if !s.SittingOut {
			out = append(out, s)
		}
	}
	return out
}

// Tick forces a stand when the current turn's deadline has passed. It
// reports whether a stand was forced.
func (m *Machine) Tick(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhasePlayer || m.turn == nil || m.deadline.IsZero() || now.Before(m.deadline) {
		return false
	}

	seat := m.seats[m.turn.SeatIndex]
	m.events.Add(fmt.Sprintf("Temps écoulé - %s reste automatiquement", seat.Name()))
	m.logger.Info("Turn timed out", "seat", seat.ID, "hand", m.turn.HandIndex)
	return m.stand() == nil
}

// NewHand clears the finished round and returns to INIT
func (m *Machine) NewHand() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.Idle() {
		return fmt.Errorf("%w: phase %s", ErrRoundActive, m.phase)
	}
	m.resetRound()
	return nil
}

// NewShoeSame builds a fresh shoe with the current rules and resets the
// shoe-scoped counters.
func (m *Machine) NewShoeSame() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.Idle() {
		return fmt.Errorf("%w: phase %s", ErrRoundActive, m.phase)
	}
	return m.reinitShoe()
}

func (m *Machine) reinitShoe() error {
	m.events.Clear()
	m.resetRound()
	m.handsDealt = 0
	return m.buildShoe()
}

// ResetAll restores default rules and settings, clears the quiz history and
// builds a new shoe. Live stakes of an abandoned round are refunded.
func (m *Machine) ResetAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.wallet.Exposure > 0 {
		m.wallet.Refund()
	}
	m.rules = blackjack.DefaultRules()
	m.settings = DefaultSettings()
	m.quiz = nil
	m.logger.Info("Trainer reset")
	return m.reinitShoe()
}

// UpdateRules replaces the table rules between rounds. Seat counts are
// clamped to 1-4. A deck change takes effect with the next shoe, which is
// built at the next StartRound.
func (m *Machine) UpdateRules(r blackjack.Rules) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.Idle() {
		m.events.Add("Changement impossible: modifiez les règles entre deux mains")
		return fmt.Errorf("%w: phase %s", ErrRoundActive, m.phase)
	}
	if r.Normalize() {
		m.events.Add(fmt.Sprintf("Limite de sièges: %d à %d sièges", blackjack.MinSeats, blackjack.MaxSeats))
	}
	if err := r.Validate(); err != nil {
		return err
	}

	seatsChanged := r.Seats != m.rules.Seats
	decksChanged := r.Decks != m.rules.Decks
	m.rules = r

	if seatsChanged {
		m.resetRound()
	}
	if decksChanged {
		m.shoeStale = true
		m.events.Add("Nouveau sabot au prochain tour")
	}
	m.events.Add("Règles mises à jour")
	m.logger.Info("Rules updated", "decks", r.Decks, "seats", r.Seats, "s17", r.DealerStandsOnSoft17)
	return nil
}

// UpdateSettings replaces the trainer settings
func (m *Machine) UpdateSettings(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.Validate(); err != nil {
		return err
	}
	m.settings = s
	return nil
}

// SetPacer installs or removes the presentation pacer
func (m *Machine) SetPacer(p Pacer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pacer = p
}

// Phase returns the current phase
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Rules returns the current rules
func (m *Machine) Rules() blackjack.Rules {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules
}

// Settings returns the current settings
func (m *Machine) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// RemainingCards returns the undrawn cards in the shoe
func (m *Machine) RemainingCards() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shoe.Remaining()
}

// RemainingDecks estimates the decks left in the shoe
func (m *Machine) RemainingDecks() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shoe.RemainingDecks()
}

// RunningCount returns the Hi-Lo count of every card seen this shoe
func (m *Machine) RunningCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shoe.Running()
}

// TrueCount returns the running count per remaining deck
func (m *Machine) TrueCount() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shoe.TrueCount()
}

// Available returns the capital that can still be engaged
func (m *Machine) Available() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wallet.Available()
}

// Wallet returns the wallet balances
func (m *Machine) Wallet() Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wallet
}

// HandsDealt returns the number of initial deals completed on this shoe
func (m *Machine) HandsDealt() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handsDealt
}

// Events returns the event log, oldest first
func (m *Machine) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events.Events()
}
