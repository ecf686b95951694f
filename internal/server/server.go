// Package server exposes a trainer table to browsers over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/fair"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/store"
)

// Server shares one machine between every connected browser. The machine
// serializes callers itself.
type Server struct {
	machine  *game.Machine
	store    store.Store
	clock    quartz.Clock
	logger   *log.Logger
	tick     time.Duration
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	connections map[*Connection]bool
}

// Option configures a Server
type Option func(*Server)

// WithClock sets the clock for the tick loop and message timestamps
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStore persists state after every action
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithTick sets how often turn deadlines are checked. Default is 1s.
func WithTick(d time.Duration) Option {
	return func(s *Server) {
		s.tick = d
	}
}

// NewServer creates a server around machine
func NewServer(machine *game.Machine, opts ...Option) *Server {
	s := &Server{
		machine: machine,
		clock:   quartz.NewReal(),
		logger:  log.Default(),
		tick:    time.Second,
		upgrader: websocket.Upgrader{
			// the table is served to local browsers
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("server")
	return s
}

// EnablePacing makes the machine broadcast every dealt card and wait the
// given delays before continuing.
func (s *Server) EnablePacing(delays map[game.PauseKind]time.Duration) {
	s.machine.SetPacer(&game.ClockPacer{
		Clock:   s.clock,
		Delays:  delays,
		Publish: s.broadcastSnapshot,
	})
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run serves addr and checks turn deadlines until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.tickLoop(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		s.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) tickLoop(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.tick, "server", "tick")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.checkDeadline(ctx, now)
		}
	}
}

// checkDeadline forces a stand on an expired turn and publishes the result
func (s *Server) checkDeadline(ctx context.Context, now time.Time) bool {
	if !s.machine.Tick(now) {
		return false
	}
	s.broadcastState()
	s.persist(ctx)
	return true
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(r.Context(), conn, s.logger, s.handleMessage)
	s.register(client)
	defer s.unregister(client)

	s.send(client, MessageTypeState, s.machine.Snapshot())
	if err := client.Run(); err != nil {
		s.logger.Debug("Connection ended", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) register(c *Connection) {
	s.mu.Lock()
	s.connections[c] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	delete(s.connections, c)
	total := len(s.connections)
	s.mu.Unlock()
	c.Close()
	s.logger.Info("Client disconnected", "total", total)
}

func (s *Server) closeAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.connections {
		c.Close()
	}
}

// handleMessage runs one client command against the machine. Every command
// that can change state is followed by a state broadcast and a save.
func (s *Server) handleMessage(c *Connection, msg *Message) {
	ctx := c.ctx

	switch msg.Type {
	case MessageTypeStartRound:
		s.apply(c, s.machine.StartRound())

	case MessageTypeHit, MessageTypeStand, MessageTypeDouble, MessageTypeSplit:
		var data ActionData
		if !s.decode(c, msg, &data) {
			return
		}
		s.apply(c, s.machine.Act(actionFor(msg.Type), data.HandID))

	case MessageTypeInsurance:
		var data InsuranceData
		if !s.decode(c, msg, &data) {
			return
		}
		s.apply(c, s.machine.HandleInsuranceDecision(data.Seat, data.Take))

	case MessageTypeNewHand:
		s.apply(c, s.machine.NewHand())

	case MessageTypeNewShoe:
		s.apply(c, s.machine.NewShoeSame())

	case MessageTypeResetAll:
		s.apply(c, s.machine.ResetAll())

	case MessageTypeUpdateRules:
		var data UpdateRulesData
		if !s.decode(c, msg, &data) {
			return
		}
		s.apply(c, s.machine.UpdateRules(data.Rules))

	case MessageTypeUpdateSettings:
		var data UpdateSettingsData
		if !s.decode(c, msg, &data) {
			return
		}
		s.apply(c, s.machine.UpdateSettings(data.Settings))

	case MessageTypeFairSeeds:
		var data FairSeedsData
		if !s.decode(c, msg, &data) {
			return
		}
		s.apply(c, s.machine.NewFairSeeds(data.SeedClient))

	case MessageTypeCommitShoe:
		_, err := s.machine.CommitShoe()
		s.apply(c, err)

	case MessageTypeRevealShoe:
		export, err := s.machine.RevealShoe()
		if err != nil {
			s.sendError(c, err)
			return
		}
		s.broadcast(MessageTypeProof, ProofData{Proof: export})
		s.broadcastState()
		s.persist(ctx)

	case MessageTypeQuiz:
		var data QuizData
		if !s.decode(c, msg, &data) {
			return
		}
		acc := s.machine.RecordQuiz(data.Running, data.True)
		s.send(c, MessageTypeQuizResult, QuizResultData{
			CountAccuracy: acc,
			Running:       s.machine.RunningCount(),
			TrueCount:     s.machine.TrueCount(),
		})
		s.persist(ctx)

	case MessageTypeMyCount:
		var data MyCountData
		if !s.decode(c, msg, &data) {
			return
		}
		s.machine.SetMyCount(data.Running, data.True)
		s.apply(c, nil)

	default:
		s.sendErrorCode(c, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func actionFor(t MessageType) blackjack.Action {
	switch t {
	case MessageTypeHit:
		return blackjack.ActionHit
	case MessageTypeDouble:
		return blackjack.ActionDouble
	case MessageTypeSplit:
		return blackjack.ActionSplit
	default:
		return blackjack.ActionStand
	}
}

func (s *Server) decode(c *Connection, msg *Message, v any) bool {
	if len(msg.Data) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		s.sendErrorCode(c, "invalid_message", fmt.Sprintf("Failed to parse %s data", msg.Type))
		return false
	}
	return true
}

// apply reports err to the sender and publishes the resulting state. State
// is broadcast even on error: rejected rule changes leave a notice in the log.
func (s *Server) apply(c *Connection, err error) {
	if err != nil {
		s.sendError(c, err)
	}
	s.broadcastState()
	if err == nil {
		s.persist(c.ctx)
	}
}

func (s *Server) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := store.SaveState(ctx, s.store, s.machine.Persist()); err != nil {
		s.logger.Error("Failed to save state", "error", err)
	}
}

func (s *Server) broadcastState() {
	s.broadcastSnapshot(s.machine.Snapshot())
}

func (s *Server) broadcastSnapshot(snap game.Snapshot) {
	s.broadcast(MessageTypeState, snap)
}

func (s *Server) broadcast(t MessageType, data any) {
	msg, err := NewMessage(t, data, s.clock.Now())
	if err != nil {
		s.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for c := range s.connections {
		if err := c.SendMessage(msg); err == nil {
			count++
		}
	}
	s.logger.Debug("Broadcast", "type", t, "recipients", count)
}

func (s *Server) send(c *Connection, t MessageType, data any) {
	msg, err := NewMessage(t, data, s.clock.Now())
	if err != nil {
		s.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (s *Server) sendError(c *Connection, err error) {
	s.sendErrorCode(c, errorCode(err), err.Error())
}

func (s *Server) sendErrorCode(c *Connection, code, message string) {
	s.logger.Debug("Rejected request", "code", code, "message", message)
	s.send(c, MessageTypeError, ErrorData{Code: code, Message: message})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrIllegalAction):
		return "illegal_action"
	case errors.Is(err, game.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, game.ErrShoeEmpty):
		return "shoe_empty"
	case errors.Is(err, game.ErrRoundActive):
		return "round_active"
	case errors.Is(err, blackjack.ErrInvalidRules), errors.Is(err, game.ErrInvalidSettings):
		return "invalid_config"
	case errors.Is(err, fair.ErrNoCommitment):
		return "no_commitment"
	case errors.Is(err, fair.ErrCommitted):
		return "committed"
	default:
		return "internal"
	}
}
