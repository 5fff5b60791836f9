package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestTimer_FullSession(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock.Now)

	timer.Start()
	require.True(t, timer.IsOpen())

	for i := 0; i < 108; i++ {
		timer.Tick()
	}
	for i := 0; i < 4; i++ {
		timer.RecordSwitch()
	}
	clock.Advance(120 * time.Second)

	assert.Equal(t, 120*time.Second, timer.Elapsed())

	raw, ok := timer.Stop()
	require.True(t, ok)
	assert.Equal(t, RawSession{ElapsedSeconds: 120, SwitchCount: 4, ActiveTicks: 108}, raw)
	assert.False(t, timer.IsOpen())
}

func TestTimer_StartResetsCounters(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock.Now)

	timer.Start()
	timer.Tick()
	timer.RecordSwitch()
	clock.Advance(5 * time.Second)

	timer.Start()
	assert.Equal(t, 0, timer.SwitchCount())
	assert.Equal(t, 0, timer.ActiveTicks())
	assert.Equal(t, time.Duration(0), timer.Elapsed())
}

func TestTimer_ClosedSessionIsTolerated(t *testing.T) {
	timer := NewTimer(newFakeClock().Now)

	t.Run("switch without session is a no-op", func(t *testing.T) {
		timer.RecordSwitch()
		assert.Equal(t, 0, timer.SwitchCount())
	})

	t.Run("tick without session is ignored", func(t *testing.T) {
		timer.Tick()
		assert.Equal(t, 0, timer.ActiveTicks())
	})

	t.Run("stop without session returns zero tuple", func(t *testing.T) {
		raw, ok := timer.Stop()
		assert.False(t, ok)
		assert.Equal(t, RawSession{}, raw)
	})

	t.Run("second stop after a real one returns zero tuple", func(t *testing.T) {
		timer.Start()
		_, ok := timer.Stop()
		require.True(t, ok)

		raw, ok := timer.Stop()
		assert.False(t, ok)
		assert.Equal(t, RawSession{}, raw)
	})
}

func TestTimer_ClockGoingBackwardsClampsElapsed(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock.Now)

	timer.Start()
	clock.Advance(-3 * time.Second)

	raw, ok := timer.Stop()
	require.True(t, ok)
	assert.Equal(t, 0.0, raw.ElapsedSeconds)
}

func TestNewTimer_DefaultsToWallClock(t *testing.T) {
	timer := NewTimer(nil)
	timer.Start()
	assert.GreaterOrEqual(t, timer.Elapsed(), time.Duration(0))
}
