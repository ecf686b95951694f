package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/config"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/randutil"
	"github.com/lox/blackjacktrainer/internal/statistics"
)

// SimulateCmd plays hands with the advisor making every decision
type SimulateCmd struct {
	Config string `short:"c" default:"blackjack-trainer.hcl" help:"Path to HCL configuration file for rules and settings"`
	Hands  int    `short:"n" default:"1000" help:"Hands to play per run"`
	Seeds  int    `short:"k" default:"4" help:"Independent runs played in parallel"`
	Seed   int64  `short:"s" default:"1" help:"Base seed; runs derive their own streams from it"`
	Fair   bool   `help:"Play provably-fair shoes"`
	Debug  bool   `help:"Enable debug logging"`
}

// runResult summarizes one simulated run
type runResult struct {
	Run         int
	Hands       int
	Delta       float64
	Stats       *statistics.Statistics
	Shoes       int
	Running     int
	TrueCount   float64
	OutOfFunds  bool
	Commitments []string
}

type simulation struct {
	rules    blackjack.Rules
	settings game.Settings
	hands    int
	seed     int64
	fair     bool
	logger   *log.Logger
}

func (c *SimulateCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Hands < 1 || c.Seeds < 1 {
		return errors.New("hands and seeds must be positive")
	}

	level := log.WarnLevel
	if c.Debug {
		level = log.DebugLevel
	}

	sim := simulation{
		rules:    cfg.Rules,
		settings: cfg.Settings,
		hands:    c.Hands,
		seed:     c.Seed,
		fair:     c.Fair,
		logger:   setupLogger(level),
	}
	results, err := sim.run(context.Background(), c.Seeds)
	if err != nil {
		return err
	}
	printResults(os.Stdout, results)
	return nil
}

// run plays n independent runs in parallel. Results are ordered by run.
func (s simulation) run(ctx context.Context, n int) ([]runResult, error) {
	results := make([]runResult, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			res, err := s.play(ctx, i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s simulation) play(ctx context.Context, run int) (runResult, error) {
	settings := s.settings
	settings.ProvablyFair = s.fair

	m, err := game.NewMachine(
		game.WithClock(quartz.NewReal()),
		game.WithLogger(s.logger.With("run", run)),
		game.WithRNG(randutil.Stream(s.seed, run)),
		game.WithSeedSource(randutil.Stream(^s.seed, run)),
		game.WithRules(s.rules),
		game.WithSettings(settings),
	)
	if err != nil {
		return runResult{}, err
	}

	res := runResult{Run: run, Shoes: 1, Stats: &statistics.Statistics{}}
	start := m.Wallet().Bankroll
	commitment := m.FairProof().SHA256Commitment
	if commitment != "" {
		res.Commitments = append(res.Commitments, commitment)
	}

	for range s.hands {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		remaining := m.RemainingCards()
		before := m.Wallet().Bankroll
		trueCount := m.TrueCount()
		if err := m.StartRound(); err != nil {
			if errors.Is(err, game.ErrInsufficientFunds) {
				res.OutOfFunds = true
				break
			}
			return res, err
		}
		// dealing always draws, so a larger stack is a fresh shoe
		if m.RemainingCards() > remaining {
			res.Shoes++
		}
		if c := m.FairProof().SHA256Commitment; c != commitment {
			commitment = c
			res.Commitments = append(res.Commitments, c)
		}

		if err := playRound(m); err != nil {
			return res, err
		}
		round := tally(m.Snapshot())
		round.Net = (m.Wallet().Bankroll - before) / settings.BaseBet
		round.TrueCount = trueCount
		res.Stats.Add(round)
		res.Hands++

		if err := m.NewHand(); err != nil {
			return res, err
		}
	}

	res.Delta = m.Wallet().Bankroll - start
	res.Running = m.RunningCount()
	res.TrueCount = m.TrueCount()
	return res, nil
}

// playRound declines insurance and follows the advisor until the round ends
func playRound(m *game.Machine) error {
	if m.Phase() == game.PhaseInsurance {
		for _, seat := range m.Snapshot().Seats {
			if seat.SittingOut {
				continue
			}
			if err := m.HandleInsuranceDecision(seat.ID, false); err != nil {
				return err
			}
		}
	}

	for m.Phase() == game.PhasePlayer {
		action := blackjack.ActionStand
		if advice := m.Advice(); len(advice) > 0 {
			action = advice[0]
		}
		if err := m.Act(action, ""); err != nil {
			return err
		}
	}
	return nil
}

func tally(snap game.Snapshot) statistics.RoundResult {
	var r statistics.RoundResult
	for _, seat := range snap.Seats {
		for _, h := range seat.Hands {
			r.Hands++
			switch h.Result {
			case game.ResultWin:
				r.Wins++
			case game.ResultBlackjack:
				r.Wins++
				r.Blackjack++
			case game.ResultPush:
				r.Pushes++
			default:
				r.Losses++
			}
		}
	}
	return r
}

func printResults(w io.Writer, results []runResult) {
	fmt.Fprintln(w, headerStyle.Render("Simulation"))

	var total float64
	all := &statistics.Statistics{}
	for _, r := range results {
		total += r.Delta
		all.Merge(r.Stats)

		delta := gainStyle.Render(fmt.Sprintf("%+.2f", r.Delta))
		if r.Delta < 0 {
			delta = lossStyle.Render(fmt.Sprintf("%+.2f", r.Delta))
		}
		s := r.Stats
		line := []string{
			row(fmt.Sprintf("Run %d", r.Run), delta),
			row("  rounds", r.Hands),
			row("  won / lost / push", fmt.Sprintf("%d / %d / %d", s.Wins, s.Losses, s.Pushes)),
			row("  blackjacks", s.Blackjacks),
			row("  shoes", r.Shoes),
			row("  final count", fmt.Sprintf("%d (true %.1f)", r.Running, r.TrueCount)),
		}
		if r.OutOfFunds {
			line = append(line, row("  stopped", failStyle.Render("out of funds")))
		}
		fmt.Fprintln(w, strings.Join(line, "\n"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, row("Total rounds", all.Rounds))
	fmt.Fprintln(w, row("Total delta", fmt.Sprintf("%+.2f", total)))
	if all.Rounds == 0 {
		return
	}
	lo, hi := all.ConfidenceInterval95()
	fmt.Fprintln(w, row("Per round (bets)", fmt.Sprintf("%+.4f ± %.4f", all.Mean(), all.StdError())))
	fmt.Fprintln(w, row("95% interval", fmt.Sprintf("[%+.4f, %+.4f]", lo, hi)))

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("By true count"))
	for i, b := range all.Buckets {
		if b.Rounds == 0 {
			continue
		}
		label := fmt.Sprintf("  %+d", i+statistics.MinBucket)
		switch i + statistics.MinBucket {
		case statistics.MinBucket:
			label += " or less"
		case statistics.MaxBucket:
			label += " or more"
		}
		fmt.Fprintln(w, row(label, fmt.Sprintf("%6d rounds  %+.4f", b.Rounds, b.Mean())))
	}
}
