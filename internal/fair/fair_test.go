package fair

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/prng"
	"github.com/lox/blackjacktrainer/internal/randutil"
	"github.com/lox/blackjacktrainer/internal/shoe"
)

func oneDeckRules() blackjack.Rules {
	r := blackjack.DefaultRules()
	r.Decks = 1
	return r
}

func TestCommitmentDeterministic(t *testing.T) {
	t.Parallel()

	order := shoe.NewProvablyFairOrder(1, "client-seed-123", "system-seed-456", 0)
	a, err := Commitment(order, 0, oneDeckRules())
	require.NoError(t, err)
	b, err := Commitment(order, 0, oneDeckRules())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	other := shoe.NewProvablyFairOrder(1, "seed1", "system1", 0)
	c, err := Commitment(other, 0, oneDeckRules())
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestCommitRevealVerify(t *testing.T) {
	t.Parallel()

	var p Proof
	now := time.UnixMilli(1_700_000_000_000)
	order, err := p.CommitShoe(oneDeckRules(), prng.NewSeedGenerator(randutil.New(1)), now)
	require.NoError(t, err)
	require.True(t, p.Committed())
	assert.Len(t, p.SeedClient, prng.SeedLength)
	assert.Len(t, order, 52)
	assert.Equal(t, now.UnixMilli(), p.TSCreated)
	assert.False(t, p.Revealed)

	assert.ErrorIs(t, p.SetSeeds("x", "y"), ErrCommitted)
	_, err = p.CommitShoe(oneDeckRules(), prng.NewSeedGenerator(nil), now)
	assert.ErrorIs(t, err, ErrCommitted)

	e, err := p.Reveal()
	require.NoError(t, err)
	assert.True(t, p.Revealed)
	assert.Equal(t, order, e.ShoeOrder)
	assert.Equal(t, Verification, e.Verification)
	require.NoError(t, Verify(e))

	again, err := p.Reveal()
	require.NoError(t, err)
	assert.Equal(t, e, again)
}

func TestRevealWithoutCommitment(t *testing.T) {
	t.Parallel()

	var p Proof
	_, err := p.Reveal()
	assert.ErrorIs(t, err, ErrNoCommitment)
}

func TestVerifyDetectsTampering(t *testing.T) {
	t.Parallel()

	var p Proof
	require.NoError(t, p.SetSeeds("client", "system"))
	_, err := p.CommitShoe(oneDeckRules(), prng.NewSeedGenerator(nil), time.Now())
	require.NoError(t, err)
	e, err := p.Reveal()
	require.NoError(t, err)

	swapped := e
	swapped.ShoeOrder = append([]blackjack.Card(nil), e.ShoeOrder...)
	swapped.ShoeOrder[0], swapped.ShoeOrder[1] = swapped.ShoeOrder[1], swapped.ShoeOrder[0]
	assert.ErrorIs(t, Verify(swapped), ErrMismatch)

	wrongHash := e
	wrongHash.SHA256Commitment = prng.SHA256Hex("nope")
	assert.ErrorIs(t, Verify(wrongHash), ErrMismatch)

	wrongNonce := e
	wrongNonce.Nonce++
	assert.ErrorIs(t, Verify(wrongNonce), ErrMismatch)
}

func TestRetireAdvancesNonce(t *testing.T) {
	t.Parallel()

	var p Proof
	require.NoError(t, p.SetSeeds("client", "system"))
	first, err := p.CommitShoe(oneDeckRules(), prng.NewSeedGenerator(nil), time.Now())
	require.NoError(t, err)

	p.Retire()
	assert.False(t, p.Committed())
	// callable on copies returned by accessors
	assert.False(t, Proof{}.Committed())
	assert.Equal(t, 1, p.Nonce)
	assert.Equal(t, "client", p.SeedClient)

	second, err := p.CommitShoe(oneDeckRules(), prng.NewSeedGenerator(nil), time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestExportJSONShape(t *testing.T) {
	t.Parallel()

	var p Proof
	require.NoError(t, p.SetSeeds("c", "s"))
	_, err := p.CommitShoe(oneDeckRules(), prng.NewSeedGenerator(nil), time.UnixMilli(42))
	require.NoError(t, err)
	e, err := p.Reveal()
	require.NoError(t, err)

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, k := range []string{"shoeOrder", "seedClient", "seedSystem", "nonce", "sha256Commitment", "rulesSnapshot", "tsCreated", "verification"} {
		assert.Contains(t, fields, k)
	}

	var decoded Export
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NoError(t, Verify(decoded))
}
