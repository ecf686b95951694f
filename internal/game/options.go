package game

import (
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/prng"
)

// Option configures a Machine during creation
type Option func(*machineConfig)

type machineConfig struct {
	clock       quartz.Clock
	rng         *rand.Rand
	logger      *log.Logger
	pacer       Pacer
	rules       blackjack.Rules
	settings    Settings
	seedSource  prng.RandSource
	shoe        []blackjack.Card
	dedupWindow time.Duration
}

func defaultConfig() *machineConfig {
	return &machineConfig{
		clock:       quartz.NewReal(),
		logger:      log.New(io.Discard),
		rules:       blackjack.DefaultRules(),
		settings:    DefaultSettings(),
		dedupWindow: DefaultDedupWindow,
	}
}

// WithClock sets the clock used for deadlines and event timestamps.
// Default is the real clock.
func WithClock(clock quartz.Clock) Option {
	return func(c *machineConfig) {
		c.clock = clock
	}
}

// WithRNG sets the generator that shuffles casual shoes. Default is seeded
// from the clock.
func WithRNG(rng *rand.Rand) Option {
	return func(c *machineConfig) {
		c.rng = rng
	}
}

// WithLogger sets the logger. Default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(c *machineConfig) {
		c.logger = logger
	}
}

// WithPacer installs a presentation pacer called after every dealt card
func WithPacer(p Pacer) Option {
	return func(c *machineConfig) {
		c.pacer = p
	}
}

// WithRules sets the table rules
func WithRules(r blackjack.Rules) Option {
	return func(c *machineConfig) {
		c.rules = r
	}
}

// WithSettings sets the trainer settings. The wallet starts at
// Settings.Bankroll.
func WithSettings(s Settings) Option {
	return func(c *machineConfig) {
		c.settings = s
	}
}

// WithSeedSource makes fair-play seed generation deterministic
func WithSeedSource(src prng.RandSource) Option {
	return func(c *machineConfig) {
		c.seedSource = src
	}
}

// WithShoe sets a pre-ordered first shoe. Cards are drawn from the end of
// the slice. Later shoes are built from the rules as usual.
func WithShoe(cards []blackjack.Card) Option {
	return func(c *machineConfig) {
		c.shoe = append([]blackjack.Card(nil), cards...)
	}
}

// WithDedupWindow overrides the event dedup window
func WithDedupWindow(d time.Duration) Option {
	return func(c *machineConfig) {
		c.dedupWindow = d
	}
}
