package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/randutil"
	"github.com/lox/blackjacktrainer/internal/store"
)

type testServer struct {
	srv     *Server
	machine *game.Machine
	store   *store.MemoryStore
	clock   *quartz.Mock
	url     string
}

// stackedShoe deals draws in order on top of filler cards
func stackedShoe(draws string) []blackjack.Card {
	cards := blackjack.MustParseCards(strings.Repeat("9C ", 40) + draws)
	slices.Reverse(cards[40:])
	return cards
}

func newTestServer(t *testing.T, draws string) *testServer {
	t.Helper()

	clock := quartz.NewMock(t)
	logger := log.New(io.Discard)
	rules := blackjack.DefaultRules()
	rules.Seats = 1

	opts := []game.Option{
		game.WithClock(clock),
		game.WithLogger(logger),
		game.WithRNG(randutil.New(42)),
		game.WithRules(rules),
	}
	if draws != "" {
		opts = append(opts, game.WithShoe(stackedShoe(draws)))
	}
	m, err := game.NewMachine(opts...)
	require.NoError(t, err)

	st := store.NewMemoryStore()
	srv := NewServer(m, WithClock(clock), WithLogger(logger), WithStore(st))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testServer{
		srv:     srv,
		machine: m,
		store:   st,
		clock:   clock,
		url:     "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
	}
}

// dial connects and consumes the initial state message
func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	readState(t, conn)
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, typ MessageType, data any) {
	t.Helper()

	msg := map[string]any{"type": typ}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// readMessage returns the next message of type want, skipping others
func readMessage(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return &msg
		}
	}
}

func readState(t *testing.T, conn *websocket.Conn) game.Snapshot {
	t.Helper()

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(readMessage(t, conn, MessageTypeState).Data, &snap))
	return snap
}

func readError(t *testing.T, conn *websocket.Conn) ErrorData {
	t.Helper()

	var data ErrorData
	require.NoError(t, json.Unmarshal(readMessage(t, conn, MessageTypeError).Data, &data))
	return data
}

func TestServerHealth(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	ts.srv.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestConnectSendsState(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "")
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	require.NoError(t, err)
	defer conn.Close()

	snap := readState(t, conn)
	assert.Equal(t, game.PhaseInit, snap.Phase)
	assert.Equal(t, 312, snap.RemainingCards)
	assert.Equal(t, 25000.0, snap.Available)
}

func TestPlayRoundOverWebSocket(t *testing.T) {
	t.Parallel()

	// seat T 6 vs dealer 9 7, dealer draws K and busts
	ts := newTestServer(t, "TS 9H 6D 7C KD")
	conn := ts.dial(t)

	sendMessage(t, conn, MessageTypeStartRound, nil)
	snap := readState(t, conn)
	require.Equal(t, game.PhasePlayer, snap.Phase)
	assert.True(t, snap.Dealer.HoleHidden)
	assert.Equal(t, []blackjack.Action{blackjack.ActionHit}, snap.Advice)

	sendMessage(t, conn, MessageTypeStand, ActionData{HandID: "seat-0-hand-0"})
	snap = readState(t, conn)
	require.Equal(t, game.PhaseEnd, snap.Phase)
	assert.Equal(t, game.ResultWin, snap.Seats[0].Hands[0].Result)
	assert.Equal(t, 25010.0, snap.Bankroll)

	saved, err := store.LoadState(context.Background(), ts.store)
	require.NoError(t, err)
	assert.Equal(t, 25010.0, saved.Bankroll)
	assert.Equal(t, 1, saved.HandsDealt)
}

func TestErrorsGoToSender(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "")
	conn := ts.dial(t)

	sendMessage(t, conn, MessageTypeHit, nil)
	assert.Equal(t, "wrong_phase", readError(t, conn).Code)

	sendMessage(t, conn, MessageType("fold"), nil)
	assert.Equal(t, "unknown_message_type", readError(t, conn).Code)

	sendMessage(t, conn, MessageTypeInsurance, "yes please")
	assert.Equal(t, "invalid_message", readError(t, conn).Code)

	sendMessage(t, conn, MessageTypeRevealShoe, nil)
	assert.Equal(t, "no_commitment", readError(t, conn).Code)

	_, err := store.LoadState(context.Background(), ts.store)
	assert.ErrorIs(t, err, store.ErrNotFound, "rejected commands are not saved")
}

func TestRulesChangeDuringRoundIsRejected(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "TS 9H 6D 7C KD")
	conn := ts.dial(t)

	sendMessage(t, conn, MessageTypeStartRound, nil)
	readState(t, conn)

	rules := blackjack.DefaultRules()
	sendMessage(t, conn, MessageTypeUpdateRules, UpdateRulesData{Rules: rules})
	assert.Equal(t, "round_active", readError(t, conn).Code)

	snap := readState(t, conn)
	assert.Equal(t, 1, snap.Rules.Seats)
	assert.Contains(t, snap.Events[len(snap.Events)-1].Label, "entre deux mains")
}

func TestCommitRevealBroadcastsProof(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "")
	conn := ts.dial(t)

	sendMessage(t, conn, MessageTypeFairSeeds, FairSeedsData{SeedClient: "browser-seed"})
	readState(t, conn)

	sendMessage(t, conn, MessageTypeCommitShoe, nil)
	snap := readState(t, conn)
	require.Len(t, snap.Fair.SHA256Commitment, 64)
	assert.Empty(t, snap.Fair.SeedSystem)

	sendMessage(t, conn, MessageTypeRevealShoe, nil)
	var proof ProofData
	require.NoError(t, json.Unmarshal(readMessage(t, conn, MessageTypeProof).Data, &proof))
	assert.Equal(t, snap.Fair.SHA256Commitment, proof.Proof.SHA256Commitment)
	assert.Equal(t, "browser-seed", proof.Proof.SeedClient)
	assert.Len(t, proof.Proof.ShoeOrder, 312)
}

func TestQuizResult(t *testing.T) {
	t.Parallel()

	// visible 2 5 3: running 3
	ts := newTestServer(t, "2S 5H 3D KC")
	conn := ts.dial(t)

	sendMessage(t, conn, MessageTypeStartRound, nil)
	readState(t, conn)

	sendMessage(t, conn, MessageTypeQuiz, QuizData{Running: 3, True: 0})
	var result QuizResultData
	require.NoError(t, json.Unmarshal(readMessage(t, conn, MessageTypeQuizResult).Data, &result))
	assert.True(t, result.RunningCorrect)
	assert.Equal(t, 3, result.Running)
	assert.Len(t, ts.machine.QuizResults(), 1)
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "TS 9H 6D 7C KD")
	player := ts.dial(t)
	watcher := ts.dial(t)

	sendMessage(t, player, MessageTypeStartRound, nil)
	assert.Equal(t, game.PhasePlayer, readState(t, watcher).Phase)
}

func TestCheckDeadlineForcesStand(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "TS 9H 6D 7C KD")
	require.NoError(t, ts.machine.StartRound())
	ctx := context.Background()

	assert.False(t, ts.srv.checkDeadline(ctx, ts.clock.Now()))
	assert.True(t, ts.srv.checkDeadline(ctx, ts.clock.Now().Add(30*time.Second)))
	assert.Equal(t, game.PhaseEnd, ts.machine.Phase())

	saved, err := store.LoadState(ctx, ts.store)
	require.NoError(t, err)
	assert.Equal(t, 25010.0, saved.Bankroll)
}

func TestPacingPublishesEachCard(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, "TS 9H 6D 7C KD")
	ts.srv.EnablePacing(nil)
	conn := ts.dial(t)

	sendMessage(t, conn, MessageTypeStartRound, nil)
	for cards := 1; cards <= 4; cards++ {
		snap := readState(t, conn)
		assert.Equal(t, game.PhaseDeal, snap.Phase)
		assert.Equal(t, 45-cards, snap.RemainingCards)
	}
	assert.Equal(t, game.PhasePlayer, readState(t, conn).Phase)
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "insufficient_funds", errorCode(game.ErrInsufficientFunds))
	assert.Equal(t, "invalid_config", errorCode(blackjack.ErrInvalidRules))
	assert.Equal(t, "internal", errorCode(io.EOF))
}
