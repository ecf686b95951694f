package game

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogIsBounded(t *testing.T) {
	t.Parallel()

	l := NewEventLog(quartz.NewMock(t), DefaultDedupWindow)
	for i := range 205 {
		l.Add(fmt.Sprintf("event %d", i))
	}

	events := l.Events()
	require.Len(t, events, 200)
	assert.Equal(t, "event 5", events[0].Label)
	assert.Equal(t, "event 204", events[199].Label)
}

func TestEventLogDedupWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clock := quartz.NewMock(t)
	l := NewEventLog(clock, DefaultDedupWindow)

	assert.True(t, l.AddOnce("hit-seat-0-hand-0-3", "Siège 1 tire"))
	assert.False(t, l.AddOnce("hit-seat-0-hand-0-3", "Siège 1 tire"))
	assert.True(t, l.AddOnce("hit-seat-0-hand-0-4", "Siège 1 tire"), "other keys are independent")

	clock.Advance(299 * time.Millisecond).MustWait(ctx)
	assert.False(t, l.AddOnce("hit-seat-0-hand-0-3", "Siège 1 tire"))

	clock.Advance(time.Millisecond).MustWait(ctx)
	assert.True(t, l.AddOnce("hit-seat-0-hand-0-3", "Siège 1 tire"))
	assert.Equal(t, 3, l.Len())
}

func TestEventLogResetDedup(t *testing.T) {
	t.Parallel()

	l := NewEventLog(quartz.NewMock(t), DefaultDedupWindow)
	require.True(t, l.AddOnce("k", "a"))
	l.ResetDedup()
	assert.True(t, l.AddOnce("k", "a"))
	assert.Equal(t, 2, l.Len())
}

func TestEventLogRestore(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	l := NewEventLog(clock, DefaultDedupWindow)
	l.Add("one")
	l.AddOnce("k", "two")

	events := l.Events()
	dedup := l.DedupEntries()
	require.Len(t, dedup, 1)
	assert.Equal(t, "k", dedup[0].Key)
	assert.Equal(t, clock.Now().UnixMilli(), dedup[0].At)

	restored := NewEventLog(clock, DefaultDedupWindow)
	restored.Restore(events, dedup)
	assert.Equal(t, events, restored.Events())
	assert.False(t, restored.AddOnce("k", "two"), "restored keys keep their window")

	l.Clear()
	assert.Zero(t, l.Len())
}
