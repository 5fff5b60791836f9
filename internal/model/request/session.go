package request

import (
	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/internal/session"
)

// SessionInput carries either raw timer counters (elapsed_seconds,
// switch_count, active_ticks) or client-computed metrics (duration_seconds,
// switch_count, switch_rate, active_ratio).
type SessionInput struct {
	ElapsedSeconds  *float64 `json:"elapsed_seconds"`
	ActiveTicks     *int     `json:"active_ticks"`
	DurationSeconds *float64 `json:"duration_seconds"`
	SwitchCount     int      `json:"switch_count"`
	SwitchRate      float64  `json:"switch_rate"`
	ActiveRatio     *float64 `json:"active_ratio"`
}

func (in SessionInput) IsRaw() bool {
	return in.ElapsedSeconds != nil
}

func (in SessionInput) IsMetrics() bool {
	return in.DurationSeconds != nil && in.ActiveRatio != nil
}

func (in SessionInput) Raw() session.RawSession {
	raw := session.RawSession{SwitchCount: in.SwitchCount}
	if in.ElapsedSeconds != nil {
		raw.ElapsedSeconds = *in.ElapsedSeconds
	}
	if in.ActiveTicks != nil {
		raw.ActiveTicks = *in.ActiveTicks
	}
	return raw
}

func (in SessionInput) Metrics() entity.SessionMetrics {
	m := entity.SessionMetrics{SwitchCount: in.SwitchCount, SwitchRate: in.SwitchRate}
	if in.DurationSeconds != nil {
		m.DurationSeconds = *in.DurationSeconds
	}
	if in.ActiveRatio != nil {
		m.ActiveRatio = *in.ActiveRatio
	}
	return m
}

type Advice struct {
	Status           entity.Status `json:"status" binding:"required,oneof=Focused Distracted"`
	IntensityPercent int           `json:"intensity_percent" binding:"min=0,max=100"`
}

type Event struct {
	EventType string `json:"event_type" binding:"required,oneof=start switch stop tick"`
}
