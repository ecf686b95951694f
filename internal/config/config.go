// Package config loads the trainer configuration from an HCL file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/game"
)

// Config is the effective configuration after defaults and overrides
type Config struct {
	Server   ServerSettings
	Rules    blackjack.Rules
	Settings game.Settings
	Fair     FairSettings
	Store    StoreSettings
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string
	Port     int
	LogLevel string
	// Tick is how often turn deadlines are checked
	Tick time.Duration
	// Pacing enables card-by-card delays for the browser table
	Pacing bool
}

// FairSettings configures provably-fair play
type FairSettings struct {
	SeedClient string
}

// StoreSettings selects where state is persisted
type StoreSettings struct {
	Driver string
	Path   string
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			Tick:     time.Second,
			Pacing:   true,
		},
		Rules:    blackjack.DefaultRules(),
		Settings: game.DefaultSettings(),
		Store: StoreSettings{
			Driver: "file",
			Path:   "blackjack-trainer-state",
		},
	}
}

// file mirrors the HCL layout. Every attribute is optional; pointers tell
// an absent value apart from a zero one.
type file struct {
	Server   *serverBlock   `hcl:"server,block"`
	Rules    *rulesBlock    `hcl:"rules,block"`
	Settings *settingsBlock `hcl:"settings,block"`
	Fair     *fairBlock     `hcl:"fair,block"`
	Store    *storeBlock    `hcl:"store,block"`
}

type serverBlock struct {
	Address  *string `hcl:"address,optional"`
	Port     *int    `hcl:"port,optional"`
	LogLevel *string `hcl:"log_level,optional"`
	Tick     *string `hcl:"tick,optional"`
	Pacing   *bool   `hcl:"pacing,optional"`
}

type rulesBlock struct {
	Decks                *int    `hcl:"decks,optional"`
	Seats                *int    `hcl:"seats,optional"`
	Penetration          *int    `hcl:"penetration,optional"`
	BlackjackPayout      *string `hcl:"blackjack_payout,optional"`
	DealerStandsOnSoft17 *bool   `hcl:"dealer_stands_soft_17,optional"`
	HoleCardPeek         *bool   `hcl:"hole_card_peek,optional"`
	DoubleRule           *string `hcl:"double_rule,optional"`
	AllowDAS             *bool   `hcl:"allow_das,optional"`
	AllowResplit         *bool   `hcl:"allow_resplit,optional"`
	MaxHandsAfterSplit   *int    `hcl:"max_hands_after_split,optional"`
	SplitAcesOneCard     *bool   `hcl:"split_aces_one_card,optional"`
	Insurance            *bool   `hcl:"insurance,optional"`
	Surrender            *string `hcl:"surrender,optional"`
}

type settingsBlock struct {
	ShowRunning   *bool    `hcl:"show_running,optional"`
	ShowTrue      *bool    `hcl:"show_true,optional"`
	ShowRemaining *bool    `hcl:"show_remaining,optional"`
	ShowMyCount   *bool    `hcl:"show_my_count,optional"`
	QuizEvery     *int     `hcl:"quiz_every,optional"`
	BasicAdvice   *bool    `hcl:"basic_advice,optional"`
	TutorialMode  *bool    `hcl:"tutorial_mode,optional"`
	TurnSeconds   *int     `hcl:"turn_seconds,optional"`
	BaseBet       *float64 `hcl:"base_bet,optional"`
	Bankroll      *float64 `hcl:"bankroll,optional"`
	PlayerName    *string  `hcl:"player_name,optional"`
	ProvablyFair  *bool    `hcl:"provably_fair,optional"`
}

type fairBlock struct {
	SeedClient *string `hcl:"seed_client,optional"`
}

type storeBlock struct {
	Driver *string `hcl:"driver,optional"`
	Path   *string `hcl:"path,optional"`
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if err := raw.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *file) apply(cfg *Config) error {
	if s := f.Server; s != nil {
		set(&cfg.Server.Address, s.Address)
		set(&cfg.Server.Port, s.Port)
		set(&cfg.Server.LogLevel, s.LogLevel)
		set(&cfg.Server.Pacing, s.Pacing)
		if s.Tick != nil {
			d, err := time.ParseDuration(*s.Tick)
			if err != nil {
				return fmt.Errorf("server.tick: %w", err)
			}
			cfg.Server.Tick = d
		}
	}

	if r := f.Rules; r != nil {
		rules := &cfg.Rules
		set(&rules.Decks, r.Decks)
		set(&rules.Seats, r.Seats)
		set(&rules.PenetrationPct, r.Penetration)
		if r.BlackjackPayout != nil {
			rules.BlackjackPayout = blackjack.Payout(*r.BlackjackPayout)
		}
		set(&rules.DealerStandsOnSoft17, r.DealerStandsOnSoft17)
		set(&rules.HoleCardUSPeek, r.HoleCardPeek)
		if r.DoubleRule != nil {
			rules.DoubleRule = blackjack.DoubleRule(*r.DoubleRule)
		}
		set(&rules.AllowDAS, r.AllowDAS)
		set(&rules.AllowResplit, r.AllowResplit)
		set(&rules.MaxHandsAfterSplit, r.MaxHandsAfterSplit)
		set(&rules.SplitAcesOneCardOnly, r.SplitAcesOneCard)
		set(&rules.InsuranceAllowed, r.Insurance)
		if r.Surrender != nil {
			rules.Surrender = blackjack.Surrender(*r.Surrender)
		}
	}

	if s := f.Settings; s != nil {
		st := &cfg.Settings
		set(&st.ShowRunning, s.ShowRunning)
		set(&st.ShowTrue, s.ShowTrue)
		set(&st.ShowRemaining, s.ShowRemaining)
		set(&st.ShowMyCount, s.ShowMyCount)
		set(&st.QuizEveryXHands, s.QuizEvery)
		set(&st.BasicAdvice, s.BasicAdvice)
		set(&st.TutorialMode, s.TutorialMode)
		set(&st.TurnSeconds, s.TurnSeconds)
		set(&st.BaseBet, s.BaseBet)
		set(&st.Bankroll, s.Bankroll)
		set(&st.PlayerName, s.PlayerName)
		set(&st.ProvablyFair, s.ProvablyFair)
	}

	if fb := f.Fair; fb != nil {
		set(&cfg.Fair.SeedClient, fb.SeedClient)
	}
	if sb := f.Store; sb != nil {
		set(&cfg.Store.Driver, sb.Driver)
		set(&cfg.Store.Path, sb.Path)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the configuration. Seat counts are clamped first.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.Tick <= 0 {
		return fmt.Errorf("server tick must be positive, got %s", c.Server.Tick)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}

	c.Rules.Normalize()
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	switch c.Store.Driver {
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store %s needs a path", c.Store.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Level returns the parsed log level, defaulting to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
