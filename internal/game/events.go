package game

import (
	"time"

	"github.com/coder/quartz"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	maxEvents = 200
	dedupSize = 100

	// DefaultDedupWindow collapses identical triggers fired within it
	DefaultDedupWindow = 300 * time.Millisecond
)

// Event is one entry of the table log
type Event struct {
	TS    int64  `json:"ts"`
	Label string `json:"label"`
	Key   string `json:"key,omitempty"`
}

// DedupEntry is a persisted dedup key and the epoch-ms it last fired
type DedupEntry struct {
	Key string `json:"key"`
	At  int64  `json:"at"`
}

// EventLog is a bounded FIFO of events with a keyed rate limit. The dedup
// window is tracked apart from the FIFO: trimming the log never resets it.
type EventLog struct {
	clock  quartz.Clock
	window time.Duration
	events []Event
	seen   *lru.Cache[string, time.Time]
}

// NewEventLog creates an empty log using clock for timestamps
func NewEventLog(clock quartz.Clock, window time.Duration) *EventLog {
	seen, err := lru.New[string, time.Time](dedupSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &EventLog{clock: clock, window: window, seen: seen}
}

// Add appends an event, dropping the oldest beyond 200 entries
func (l *EventLog) Add(label string) {
	l.append(Event{TS: l.clock.Now().UnixMilli(), Label: label})
}

// AddOnce appends an event unless the same key fired within the window.
// It reports whether the event was recorded.
func (l *EventLog) AddOnce(key, label string) bool {
	now := l.clock.Now()
	if last, ok := l.seen.Peek(key); ok && now.Sub(last) < l.window {
		return false
	}
	l.seen.Add(key, now)
	l.append(Event{TS: now.UnixMilli(), Label: label, Key: key})
	return true
}

func (l *EventLog) append(e Event) {
	l.events = append(l.events, e)
	if over := len(l.events) - maxEvents; over > 0 {
		l.events = append(l.events[:0:0], l.events[over:]...)
	}
}

// Events returns a copy of the log, oldest first
func (l *EventLog) Events() []Event {
	return append([]Event(nil), l.events...)
}

// Len returns the number of events held
func (l *EventLog) Len() int {
	return len(l.events)
}

// Clear drops every event
func (l *EventLog) Clear() {
	l.events = nil
}

// ResetDedup forgets every dedup key
func (l *EventLog) ResetDedup() {
	l.seen.Purge()
}

// DedupEntries returns the dedup keys, least recently used first
func (l *EventLog) DedupEntries() []DedupEntry {
	keys := l.seen.Keys()
	out := make([]DedupEntry, 0, len(keys))
	for _, k := range keys {
		if at, ok := l.seen.Peek(k); ok {
			out = append(out, DedupEntry{Key: k, At: at.UnixMilli()})
		}
	}
	return out
}

// Restore replaces the log and dedup keys with persisted ones
func (l *EventLog) Restore(events []Event, dedup []DedupEntry) {
	l.events = nil
	for _, e := range events {
		l.append(e)
	}
	l.seen.Purge()
	for _, d := range dedup {
		l.seen.Add(d.Key, time.UnixMilli(d.At))
	}
}
