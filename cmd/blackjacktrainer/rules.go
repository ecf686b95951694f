package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/config"
)

// RulesCmd prints the rules a server would start with
type RulesCmd struct {
	Config string `short:"c" default:"blackjack-trainer.hcl" help:"Path to HCL configuration file"`
}

func (c *RulesCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	printRules(os.Stdout, cfg)
	return nil
}

func printRules(w io.Writer, cfg *config.Config) {
	r := cfg.Rules
	fmt.Fprintln(w, headerStyle.Render("Table rules"))
	fmt.Fprintln(w, row("Decks", r.Decks))
	fmt.Fprintln(w, row("Seats", r.Seats))
	fmt.Fprintln(w, row("Penetration", fmt.Sprintf("%d%% (cut at %d cards)", r.PenetrationPct, r.CutCardPosition())))
	fmt.Fprintln(w, row("Blackjack pays", r.BlackjackPayout))
	fmt.Fprintln(w, row("Dealer soft 17", soft17(r)))
	fmt.Fprintln(w, row("Hole card peek", yesNo(r.HoleCardUSPeek)))
	fmt.Fprintln(w, row("Double", r.DoubleRule))
	fmt.Fprintln(w, row("Double after split", yesNo(r.AllowDAS)))
	fmt.Fprintln(w, row("Resplit", fmt.Sprintf("%s (max %d hands)", yesNo(r.AllowResplit), r.MaxHandsAfterSplit)))
	fmt.Fprintln(w, row("Split aces one card", yesNo(r.SplitAcesOneCardOnly)))
	fmt.Fprintln(w, row("Insurance", yesNo(r.InsuranceAllowed)))
	fmt.Fprintln(w, row("Surrender", r.Surrender))

	s := cfg.Settings
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Trainer"))
	fmt.Fprintln(w, row("Base bet", fmt.Sprintf("%.2f", s.BaseBet)))
	fmt.Fprintln(w, row("Bankroll", fmt.Sprintf("%.2f", s.Bankroll)))
	fmt.Fprintln(w, row("Turn timer", fmt.Sprintf("%ds", s.TurnSeconds)))
	fmt.Fprintln(w, row("Quiz every", fmt.Sprintf("%d hands", s.QuizEveryXHands)))
	fmt.Fprintln(w, row("Provably fair", yesNo(s.ProvablyFair)))
}

func soft17(r blackjack.Rules) string {
	if r.DealerStandsOnSoft17 {
		return "stands (S17)"
	}
	return "hits (H17)"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
