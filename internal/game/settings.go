package game

import (
	"errors"
	"fmt"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the trainer preferences. Unlike rules they may change at
// any time.
type Settings struct {
	ShowRunning     bool    `json:"showRunning"`
	ShowTrue        bool    `json:"showTrue"`
	ShowRemaining   bool    `json:"showRemaining"`
	ShowMyCount     bool    `json:"showMyCount"`
	QuizEveryXHands int     `json:"quizEveryXHands"`
	BasicAdvice     bool    `json:"basicAdvice"`
	TutorialMode    bool    `json:"tutorialMode"`
	TurnSeconds     int     `json:"turnSeconds"`
	BaseBet         float64 `json:"baseBet"`
	Bankroll        float64 `json:"bankroll"`
	PlayerName      string  `json:"playerName"`
	// ProvablyFair commits every new shoe automatically
	ProvablyFair bool `json:"provablyFair"`
}

// DefaultSettings returns the settings of a fresh trainer
func DefaultSettings() Settings {
	return Settings{
		QuizEveryXHands: 5,
		TurnSeconds:     30,
		BaseBet:         10,
		Bankroll:        25000,
	}
}

// Validate checks the numeric settings
func (s Settings) Validate() error {
	if s.QuizEveryXHands < 0 {
		return fmt.Errorf("%w: quiz interval cannot be negative", ErrInvalidSettings)
	}
	if s.TurnSeconds < 1 {
		return fmt.Errorf("%w: turn seconds must be positive, got %d", ErrInvalidSettings, s.TurnSeconds)
	}
	if s.BaseBet <= 0 {
		return fmt.Errorf("%w: base bet must be positive", ErrInvalidSettings)
	}
	if s.Bankroll < 0 {
		return fmt.Errorf("%w: bankroll cannot be negative", ErrInvalidSettings)
	}
	return nil
}
