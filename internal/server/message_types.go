package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeStartRound     MessageType = "start_round"
	MessageTypeHit            MessageType = "hit"
	MessageTypeStand          MessageType = "stand"
	MessageTypeDouble         MessageType = "double"
	MessageTypeSplit          MessageType = "split"
	MessageTypeInsurance      MessageType = "insurance"
	MessageTypeNewHand        MessageType = "new_hand"
	MessageTypeNewShoe        MessageType = "new_shoe"
	MessageTypeResetAll       MessageType = "reset_all"
	MessageTypeUpdateRules    MessageType = "update_rules"
	MessageTypeUpdateSettings MessageType = "update_settings"
	MessageTypeFairSeeds      MessageType = "fair_seeds"
	MessageTypeCommitShoe     MessageType = "commit_shoe"
	MessageTypeRevealShoe     MessageType = "reveal_shoe"
	MessageTypeQuiz           MessageType = "quiz"
	MessageTypeMyCount        MessageType = "my_count"

	// Server to client messages
	MessageTypeState      MessageType = "state"
	MessageTypeProof      MessageType = "proof"
	MessageTypeQuizResult MessageType = "quiz_result"
	MessageTypeError      MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
