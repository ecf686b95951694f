package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/config"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/randutil"
	"github.com/lox/blackjacktrainer/internal/statistics"
	"github.com/lox/blackjacktrainer/internal/store"
)

func testSimulation(fair bool) simulation {
	return simulation{
		rules:    blackjack.DefaultRules(),
		settings: game.DefaultSettings(),
		hands:    200,
		seed:     7,
		fair:     fair,
		logger:   log.New(io.Discard),
	}
}

func TestSimulationIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := testSimulation(false).run(context.Background(), 3)
	require.NoError(t, err)
	second, err := testSimulation(false).run(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for _, r := range first {
		assert.Equal(t, 200, r.Hands)
		// three seats play every hand, splits add more
		assert.GreaterOrEqual(t, r.Stats.Hands, 600)
		assert.Greater(t, r.Shoes, 1)
		require.NoError(t, r.Stats.Validate())
		assert.InDelta(t, r.Delta, r.Stats.Sum*10, 1e-6, "results are in base bets of 10")
	}
	outcome := func(r runResult) [5]float64 {
		return [5]float64{r.Delta, float64(r.Stats.Wins), float64(r.Stats.Losses), float64(r.Stats.Pushes), float64(r.Running)}
	}
	assert.NotEqual(t, outcome(first[0]), outcome(first[1]), "runs use independent streams")
}

func TestSimulationCommitsEveryFairShoe(t *testing.T) {
	t.Parallel()

	results, err := testSimulation(true).run(context.Background(), 1)
	require.NoError(t, err)

	r := results[0]
	assert.Len(t, r.Commitments, r.Shoes)
	for _, c := range r.Commitments {
		assert.Len(t, c, 64)
	}
}

func TestPrintResults(t *testing.T) {
	t.Parallel()

	stats := &statistics.Statistics{}
	stats.Add(statistics.RoundResult{Net: -1, TrueCount: 2, Hands: 1, Losses: 1})
	stats.Add(statistics.RoundResult{Net: -0.5, TrueCount: -7, Hands: 2, Wins: 1, Losses: 1})

	var buf bytes.Buffer
	printResults(&buf, []runResult{{Run: 0, Hands: 2, Delta: -15, Stats: stats, OutOfFunds: true}})

	out := buf.String()
	assert.Contains(t, out, "Run 0")
	assert.Contains(t, out, "1 / 2 / 0")
	assert.Contains(t, out, "out of funds")
	assert.Contains(t, out, "-0.7500")
	assert.Contains(t, out, "-5 or less")
}

func revealedProof(t *testing.T) []byte {
	t.Helper()

	settings := game.DefaultSettings()
	settings.ProvablyFair = true
	m, err := game.NewMachine(game.WithSettings(settings), game.WithSeedSource(randutil.New(1)))
	require.NoError(t, err)

	export, err := m.RevealShoe()
	require.NoError(t, err)
	data, err := json.Marshal(export)
	require.NoError(t, err)
	return data
}

func TestVerifyProof(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, verifyProof(&buf, revealedProof(t)))
	assert.Contains(t, buf.String(), "verified")
}

func TestVerifyProofRejectsTampering(t *testing.T) {
	t.Parallel()

	var proof map[string]any
	require.NoError(t, json.Unmarshal(revealedProof(t), &proof))
	proof["nonce"] = 99
	data, err := json.Marshal(proof)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, verifyProof(&buf, data))
	assert.Error(t, verifyProof(&buf, []byte("not json")))
}

func TestPrintRules(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printRules(&buf, config.Default())

	out := buf.String()
	assert.Contains(t, out, "cut at 234 cards")
	assert.Contains(t, out, "stands (S17)")
	assert.Contains(t, out, "3:2")
}

func TestNewMachineAppliesSeedClient(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Fair.SeedClient = "table-seed"

	m, err := newMachine(context.Background(), cfg, store.NewMemoryStore(), quartz.NewMock(t), log.New(io.Discard))
	require.NoError(t, err)

	proof := m.FairProof()
	assert.False(t, proof.Committed())
	assert.Equal(t, "table-seed", proof.SeedClient)
	assert.NotEmpty(t, proof.SeedSystem)
}

func TestNewMachineKeepsCommittedSeeds(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Settings.ProvablyFair = true
	cfg.Fair.SeedClient = "table-seed"

	m, err := newMachine(context.Background(), cfg, store.NewMemoryStore(), quartz.NewMock(t), log.New(io.Discard))
	require.NoError(t, err)

	proof := m.FairProof()
	require.True(t, proof.Committed())
	assert.NotEqual(t, "table-seed", proof.SeedClient)
}

func TestNewMachineRestoresSavedState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.Default()
	st := store.NewMemoryStore()

	saved, err := game.NewMachine(game.WithSettings(cfg.Settings), game.WithRules(cfg.Rules))
	require.NoError(t, err)
	state := saved.Persist()
	state.Bankroll = 1234
	require.NoError(t, store.SaveState(ctx, st, state))

	m, err := newMachine(ctx, cfg, st, quartz.NewMock(t), log.New(io.Discard))
	require.NoError(t, err)
	assert.InDelta(t, 1234, m.Wallet().Bankroll, 1e-9)
}
