// Package fair binds a shoe order to a SHA-256 commitment before play and
// exports the proof that lets anyone recompute it afterwards.
package fair

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/prng"
	"github.com/lox/blackjacktrainer/internal/shoe"
)

var (
	ErrNoCommitment = errors.New("no shoe commitment to reveal")
	ErrCommitted    = errors.New("seeds are locked by an active commitment")
	ErrMismatch     = errors.New("proof does not match its commitment")
)

// Verification is the human-readable recipe bundled with every export
const Verification = "Recalculer Fisher-Yates avec Mulberry32(hash32(seedClient:seedSystem:nonce)) " +
	"(hash32: h = h*31 + code UTF-16 en int32, puis valeur absolue) " +
	"sur les paquets dans l'ordre de base, puis SHA-256 sur {shoeOrder, nonce, rulesSnapshot} " +
	"et comparer avec sha256Commitment."

// Proof is the fairness state of the current shoe. Once SHA256Commitment is
// set the seeds, nonce and captured order are frozen until the shoe retires.
type Proof struct {
	SeedClient       string           `json:"seedClient"`
	SeedSystem       string           `json:"seedSystem"`
	Nonce            int              `json:"nonce"`
	SHA256Commitment string           `json:"sha256Commitment,omitempty"`
	Revealed         bool             `json:"revealed"`
	ShoeOrder        []blackjack.Card `json:"shoeOrder,omitempty"`
	RulesSnapshot    *blackjack.Rules `json:"rulesSnapshot,omitempty"`
	TSCreated        int64            `json:"tsCreated"`
}

// Export is the published proof of a committed shoe
type Export struct {
	ShoeOrder        []blackjack.Card `json:"shoeOrder"`
	SeedClient       string           `json:"seedClient"`
	SeedSystem       string           `json:"seedSystem"`
	Nonce            int              `json:"nonce"`
	SHA256Commitment string           `json:"sha256Commitment"`
	RulesSnapshot    blackjack.Rules  `json:"rulesSnapshot"`
	TSCreated        int64            `json:"tsCreated"`
	Verification     string           `json:"verification"`
}

type commitmentPayload struct {
	ShoeOrder     []blackjack.Card `json:"shoeOrder"`
	Nonce         int              `json:"nonce"`
	RulesSnapshot blackjack.Rules  `json:"rulesSnapshot"`
}

// Commitment hashes the JSON encoding of {shoeOrder, nonce, rulesSnapshot}
func Commitment(order []blackjack.Card, nonce int, rules blackjack.Rules) (string, error) {
	data, err := json.Marshal(commitmentPayload{ShoeOrder: order, Nonce: nonce, RulesSnapshot: rules})
	if err != nil {
		return "", fmt.Errorf("encode commitment: %w", err)
	}
	return prng.SHA256Hex(string(data)), nil
}

// Committed reports whether a commitment is active
func (p Proof) Committed() bool {
	return p.SHA256Commitment != ""
}

// SetSeeds replaces the seeds. It fails while a commitment is active.
func (p *Proof) SetSeeds(seedClient, seedSystem string) error {
	if p.Committed() {
		return ErrCommitted
	}
	p.SeedClient = seedClient
	p.SeedSystem = seedSystem
	return nil
}

// EnsureSeeds fills any missing seed from gen
func (p *Proof) EnsureSeeds(gen *prng.SeedGenerator) {
	if p.SeedClient == "" {
		p.SeedClient = gen.Generate()
	}
	if p.SeedSystem == "" {
		p.SeedSystem = gen.Generate()
	}
}

// CommitShoe generates missing seeds, builds the provably-fair order for
// rules.Decks and commits to it. The returned order is the caller's to deal.
func (p *Proof) CommitShoe(rules blackjack.Rules, gen *prng.SeedGenerator, now time.Time) ([]blackjack.Card, error) {
	if p.Committed() {
		return nil, ErrCommitted
	}
	p.EnsureSeeds(gen)

	order := shoe.NewProvablyFairOrder(rules.Decks, p.SeedClient, p.SeedSystem, p.Nonce)
	hash, err := Commitment(order, p.Nonce, rules)
	if err != nil {
		return nil, err
	}

	snapshot := rules
	p.SHA256Commitment = hash
	p.Revealed = false
	p.ShoeOrder = append([]blackjack.Card(nil), order...)
	p.RulesSnapshot = &snapshot
	p.TSCreated = now.UnixMilli()
	return order, nil
}

// Reveal flips Revealed and returns the export. Revealing an already
// revealed proof returns the same export again.
func (p *Proof) Reveal() (Export, error) {
	if !p.Committed() || p.RulesSnapshot == nil {
		return Export{}, ErrNoCommitment
	}
	p.Revealed = true
	return p.Export(), nil
}

// Export builds the export document without changing state
func (p *Proof) Export() Export {
	e := Export{
		ShoeOrder:        append([]blackjack.Card(nil), p.ShoeOrder...),
		SeedClient:       p.SeedClient,
		SeedSystem:       p.SeedSystem,
		Nonce:            p.Nonce,
		SHA256Commitment: p.SHA256Commitment,
		TSCreated:        p.TSCreated,
		Verification:     Verification,
	}
	if p.RulesSnapshot != nil {
		e.RulesSnapshot = *p.RulesSnapshot
	}
	return e
}

// Retire releases the commitment of a consumed shoe and advances the nonce
// so the next shoe from the same seeds differs.
func (p *Proof) Retire() {
	p.SHA256Commitment = ""
	p.Revealed = false
	p.ShoeOrder = nil
	p.RulesSnapshot = nil
	p.TSCreated = 0
	p.Nonce++
}

// Verify recomputes the shoe order from the seeds and the commitment from the
// revealed fields.
func Verify(e Export) error {
	expected := shoe.NewProvablyFairOrder(e.RulesSnapshot.Decks, e.SeedClient, e.SeedSystem, e.Nonce)
	if len(expected) != len(e.ShoeOrder) {
		return fmt.Errorf("%w: shoe has %d cards, seeds give %d", ErrMismatch, len(e.ShoeOrder), len(expected))
	}
	for i := range expected {
		if expected[i] != e.ShoeOrder[i] {
			return fmt.Errorf("%w: card %d is %s, seeds give %s", ErrMismatch, i, e.ShoeOrder[i].Code(), expected[i].Code())
		}
	}

	hash, err := Commitment(e.ShoeOrder, e.Nonce, e.RulesSnapshot)
	if err != nil {
		return err
	}
	if hash != e.SHA256Commitment {
		return fmt.Errorf("%w: computed %s, committed %s", ErrMismatch, hash, e.SHA256Commitment)
	}
	return nil
}
