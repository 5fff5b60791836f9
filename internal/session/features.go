package session

import (
	"fmt"
	"math"

	"github.com/dinerozz/focus-session-backend/internal/entity"
)

// MinDurationSeconds is the floor applied to every session duration so that
// rate math never divides by a near-zero value.
const MinDurationSeconds = 2.0

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid session input: %s %s", e.Field, e.Reason)
}

// Extract turns the raw counters of a stopped session into its feature vector.
// It is pure: the same input always yields the same metrics.
func Extract(raw RawSession) (entity.SessionMetrics, error) {
	if raw.SwitchCount < 0 {
		return entity.SessionMetrics{}, &InvalidInputError{Field: "switch_count", Reason: "must not be negative"}
	}
	if raw.ActiveTicks < 0 {
		return entity.SessionMetrics{}, &InvalidInputError{Field: "active_ticks", Reason: "must not be negative"}
	}
	if !isFinite(raw.ElapsedSeconds) || raw.ElapsedSeconds < 0 {
		return entity.SessionMetrics{}, &InvalidInputError{Field: "elapsed_seconds", Reason: "must be a finite non-negative number"}
	}

	duration := math.Max(raw.ElapsedSeconds, MinDurationSeconds)

	return entity.SessionMetrics{
		DurationSeconds: duration,
		SwitchCount:     raw.SwitchCount,
		SwitchRate:      switchRate(raw.SwitchCount, duration),
		ActiveRatio:     clamp(float64(raw.ActiveTicks)/duration, 0, 1),
	}, nil
}

// Normalize validates metrics computed elsewhere (e.g. by a browser client) and
// re-derives the duration floor and switch rate so they obey the same rules as
// Extract. The active ratio must already be a fraction.
func Normalize(m entity.SessionMetrics) (entity.SessionMetrics, error) {
	if m.SwitchCount < 0 {
		return entity.SessionMetrics{}, &InvalidInputError{Field: "switch_count", Reason: "must not be negative"}
	}
	if !isFinite(m.DurationSeconds) || m.DurationSeconds < 0 {
		return entity.SessionMetrics{}, &InvalidInputError{Field: "duration_seconds", Reason: "must be a finite non-negative number"}
	}
	if !isFinite(m.ActiveRatio) || m.ActiveRatio < 0 || m.ActiveRatio > 1 {
		return entity.SessionMetrics{}, &InvalidInputError{Field: "active_ratio", Reason: "must be a fraction between 0 and 1"}
	}

	duration := math.Max(m.DurationSeconds, MinDurationSeconds)

	return entity.SessionMetrics{
		DurationSeconds: duration,
		SwitchCount:     m.SwitchCount,
		SwitchRate:      switchRate(m.SwitchCount, duration),
		ActiveRatio:     m.ActiveRatio,
	}, nil
}

func switchRate(count int, durationSeconds float64) float64 {
	minutes := durationSeconds / 60
	if minutes <= 0 {
		return 0
	}
	return float64(count) / minutes
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
