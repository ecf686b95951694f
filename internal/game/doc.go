// Package game implements the blackjack round state machine.
//
// The main type is Machine, which owns the shoe, the seats and the dealer,
// the wallet and the event log, and moves a round through its phases:
//
//	INIT -> DEAL -> (INSURANCE) -> PLAYER -> DEALER -> RESOLVE -> END
//
// # Basic Usage
//
//	m, err := game.NewMachine(
//	    game.WithRules(blackjack.DefaultRules()),
//	    game.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := m.StartRound(); err != nil {
//	    return err
//	}
//	_ = m.Hit()
//	_ = m.Stand()
//	snap := m.Snapshot()
//
// Every method runs to completion under one mutex, so callers on several
// goroutines observe the same sequential behaviour as a single caller.
// Illegal actions return a sentinel error and leave the state untouched.
//
// # Deterministic Testing
//
// Inject a seeded RNG, a mock clock, or a pre-stacked shoe:
//
//	clock := quartz.NewMock(t)
//	m, _ := game.NewMachine(
//	    game.WithClock(clock),
//	    game.WithRNG(randutil.New(42)),
//	    game.WithShoe(cards),
//	)
//
// # Pacing
//
// The machine never sleeps. A Pacer installed with WithPacer is called after
// each dealt card with the intermediate snapshot; presentation layers use it
// to add delays between cards.
package game
