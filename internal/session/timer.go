package session

import "time"

// RawSession is the counter tuple a Timer hands over when a session stops.
type RawSession struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	SwitchCount    int     `json:"switch_count"`
	ActiveTicks    int     `json:"active_ticks"`
}

// Timer is the client-side session state machine. It is driven from a single
// goroutine (the UI loop delivers Tick once per second), so it holds no lock.
type Timer struct {
	now         func() time.Time
	open        bool
	startedAt   time.Time
	switchCount int
	activeTicks int
}

func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Start opens a new session, discarding any counters of a previous one.
func (t *Timer) Start() {
	t.open = true
	t.startedAt = t.now()
	t.switchCount = 0
	t.activeTicks = 0
}

// Tick records one active second. Ticks delivered after Stop are ignored.
func (t *Timer) Tick() {
	if !t.open {
		return
	}
	t.activeTicks++
}

// RecordSwitch counts a task switch; it is a no-op when no session is open.
func (t *Timer) RecordSwitch() {
	if !t.open {
		return
	}
	t.switchCount++
}

// Stop closes the session and returns its counters. Without an open session it
// returns a zeroed tuple and false.
func (t *Timer) Stop() (RawSession, bool) {
	if !t.open {
		return RawSession{}, false
	}

	elapsed := t.now().Sub(t.startedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	t.open = false
	return RawSession{
		ElapsedSeconds: elapsed,
		SwitchCount:    t.switchCount,
		ActiveTicks:    t.activeTicks,
	}, true
}

func (t *Timer) IsOpen() bool {
	return t.open
}

// Elapsed is the wall-clock time since Start, or zero when closed.
func (t *Timer) Elapsed() time.Duration {
	if !t.open {
		return 0
	}
	return t.now().Sub(t.startedAt)
}

func (t *Timer) SwitchCount() int {
	return t.switchCount
}

func (t *Timer) ActiveTicks() int {
	return t.activeTicks
}
