package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/fair"
	"github.com/lox/blackjacktrainer/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: now,
	}, nil
}

// Client → Server Messages

// ActionData targets a hand. An empty HandID means the hand whose turn it is.
type ActionData struct {
	HandID string `json:"handId,omitempty"`
}

type InsuranceData struct {
	Seat int  `json:"seat"`
	Take bool `json:"take"`
}

type UpdateRulesData struct {
	Rules blackjack.Rules `json:"rules"`
}

type UpdateSettingsData struct {
	Settings game.Settings `json:"settings"`
}

type FairSeedsData struct {
	SeedClient string `json:"seedClient,omitempty"`
}

type QuizData struct {
	Running int     `json:"running"`
	True    float64 `json:"true"`
}

type MyCountData struct {
	Running *int     `json:"running,omitempty"`
	True    *float64 `json:"true,omitempty"`
}

// Server → Client Messages

type StateData = game.Snapshot

type ProofData struct {
	Proof fair.Export `json:"proof"`
}

type QuizResultData struct {
	game.CountAccuracy
	Running   int     `json:"running"`
	TrueCount float64 `json:"trueCount"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
