package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjacktrainer/internal/config"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/server"
	"github.com/lox/blackjacktrainer/internal/store"
)

// ServeCmd runs the WebSocket table
type ServeCmd struct {
	Config   string `short:"c" default:"blackjack-trainer.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	Debug    bool   `help:"Enable debug logging"`
	NoPacing bool   `help:"Deal cards without presentation delays"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Level()
	if c.Debug {
		level = log.DebugLevel
	}
	logger := setupLogger(level)

	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := setupSignalHandler(logger)
	clock := quartz.NewReal()

	machine, err := newMachine(ctx, cfg, st, clock, logger)
	if err != nil {
		return err
	}

	srv := server.NewServer(machine,
		server.WithClock(clock),
		server.WithLogger(logger),
		server.WithStore(st),
		server.WithTick(cfg.Server.Tick))
	if cfg.Server.Pacing && !c.NoPacing {
		srv.EnablePacing(game.DefaultDelays())
	}

	logger.Info("Starting blackjack trainer",
		"addr", addr,
		"decks", cfg.Rules.Decks,
		"seats", cfg.Rules.Seats,
		"store", cfg.Store.Driver,
		"fair", cfg.Settings.ProvablyFair)
	return srv.Run(ctx, addr)
}

// newMachine builds the machine from config and restores saved state
func newMachine(ctx context.Context, cfg *config.Config, st store.Store, clock quartz.Clock, logger *log.Logger) (*game.Machine, error) {
	machine, err := game.NewMachine(
		game.WithClock(clock),
		game.WithLogger(logger),
		game.WithRules(cfg.Rules),
		game.WithSettings(cfg.Settings),
	)
	if err != nil {
		return nil, err
	}

	saved, err := store.LoadState(ctx, st)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Info("No saved state, starting fresh")
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	default:
		if err := machine.Restore(saved); err != nil {
			logger.Warn("Ignoring saved state", "error", err)
		}
	}

	if cfg.Fair.SeedClient != "" && !machine.FairProof().Committed() {
		if err := machine.NewFairSeeds(cfg.Fair.SeedClient); err != nil {
			return nil, err
		}
	}
	return machine, nil
}
