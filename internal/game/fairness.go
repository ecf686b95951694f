package game

import (
	"fmt"

	"github.com/lox/blackjacktrainer/internal/fair"
	"github.com/lox/blackjacktrainer/internal/shoe"
)

// NewFairSeeds sets the seeds of the next committed shoe. An empty client
// seed is generated. Seeds are locked while a commitment is active.
func (m *Machine) NewFairSeeds(seedClient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seedClient == "" {
		seedClient = m.seeds.Generate()
	}
	if err := m.fair.SetSeeds(seedClient, m.seeds.Generate()); err != nil {
		return err
	}
	m.fair.Nonce = 0
	return nil
}

// CommitShoe replaces the current shoe with a provably-fair one built from
// the seeds and returns its SHA-256 commitment. Only allowed between rounds.
func (m *Machine) CommitShoe() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.Idle() {
		return "", fmt.Errorf("%w: phase %s", ErrRoundActive, m.phase)
	}
	order, err := m.fair.CommitShoe(m.rules, m.seeds, m.clock.Now())
	if err != nil {
		return "", err
	}

	m.shoe = shoe.New(order, m.rules.PenetrationPct)
	m.shoeStale = false
	m.events.Add("Engagement cryptographique créé")
	m.logger.Info("Shoe committed", "commitment", m.fair.SHA256Commitment, "nonce", m.fair.Nonce)
	return m.fair.SHA256Commitment, nil
}

// RevealShoe publishes the proof of the committed shoe. It fails with
// fair.ErrNoCommitment when nothing was committed.
func (m *Machine) RevealShoe() (fair.Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := !m.fair.Revealed
	export, err := m.fair.Reveal()
	if err != nil {
		return fair.Export{}, err
	}
	if first {
		m.proofs = append(m.proofs, export)
		m.events.Add("Sabot révélé - Preuve d'équité disponible")
	}
	return export, nil
}

// FairProof returns the fairness state of the current shoe
func (m *Machine) FairProof() fair.Proof {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneProof(m.fair)
}

func cloneProof(p fair.Proof) fair.Proof {
	p.ShoeOrder = append(p.ShoeOrder[:0:0], p.ShoeOrder...)
	p.RulesSnapshot = clonePtr(p.RulesSnapshot)
	return p
}

// Proofs returns every proof revealed so far, oldest first
func (m *Machine) Proofs() []fair.Export {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fair.Export(nil), m.proofs...)
}
