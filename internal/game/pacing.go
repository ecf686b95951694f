package game

import (
	"time"

	"github.com/coder/quartz"
)

// PauseKind names the moment a pacer is called at
type PauseKind string

const (
	PauseDeal       PauseKind = "deal"
	PauseHit        PauseKind = "hit"
	PauseDouble     PauseKind = "double"
	PauseSplit      PauseKind = "split"
	PauseReveal     PauseKind = "reveal"
	PauseDealerDraw PauseKind = "dealer_draw"
)

// Pacer is called after each dealt card with the intermediate snapshot.
// It runs while the machine is locked and must not call back into it.
type Pacer interface {
	Pause(kind PauseKind, snap Snapshot)
}

// PacerFunc adapts a function to Pacer
type PacerFunc func(kind PauseKind, snap Snapshot)

// Pause calls f
func (f PacerFunc) Pause(kind PauseKind, snap Snapshot) {
	f(kind, snap)
}

// DefaultDelays are the card visibility delays used by the browser table
func DefaultDelays() map[PauseKind]time.Duration {
	return map[PauseKind]time.Duration{
		PauseDeal:       800 * time.Millisecond,
		PauseHit:        600 * time.Millisecond,
		PauseDouble:     250 * time.Millisecond,
		PauseSplit:      350 * time.Millisecond,
		PauseReveal:     450 * time.Millisecond,
		PauseDealerDraw: 450 * time.Millisecond,
	}
}

// ClockPacer publishes each intermediate snapshot and then waits the delay
// for its kind on the clock.
type ClockPacer struct {
	Clock   quartz.Clock
	Delays  map[PauseKind]time.Duration
	Publish func(Snapshot)
}

// Pause implements Pacer
func (p *ClockPacer) Pause(kind PauseKind, snap Snapshot) {
	if p.Publish != nil {
		p.Publish(snap)
	}
	d := p.Delays[kind]
	if d <= 0 {
		return
	}
	t := p.Clock.NewTimer(d, "pacer", string(kind))
	defer t.Stop()
	<-t.C
}
