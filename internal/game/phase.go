package game

// Phase is the round state
type Phase string

const (
	PhaseInit      Phase = "INIT"
	PhaseDeal      Phase = "DEAL"
	PhaseInsurance Phase = "INSURANCE"
	PhasePlayer    Phase = "PLAYER"
	PhaseDealer    Phase = "DEALER"
	PhaseResolve   Phase = "RESOLVE"
	PhaseEnd       Phase = "END"
)

// String returns the phase name
func (p Phase) String() string {
	return string(p)
}

// Idle reports whether no round is in progress, the only phases in which
// rules may change.
func (p Phase) Idle() bool {
	return p == PhaseInit || p == PhaseEnd
}

// Turn points at the hand whose player must act
type Turn struct {
	SeatIndex int `json:"seatIndex"`
	HandIndex int `json:"handIndex"`
}
