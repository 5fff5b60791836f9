package session

import (
	"errors"
	"math"
	"testing"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		raw          RawSession
		wantDuration float64
		wantRate     float64
		wantRatio    float64
		wantStatus   entity.Status
	}{
		{
			name:         "steady two-minute session",
			raw:          RawSession{ElapsedSeconds: 120, SwitchCount: 4, ActiveTicks: 108},
			wantDuration: 120,
			wantRate:     2.0,
			wantRatio:    0.9,
			wantStatus:   entity.StatusFocused,
		},
		{
			name:         "accidental instant stop is clamped",
			raw:          RawSession{ElapsedSeconds: 1, SwitchCount: 0, ActiveTicks: 0},
			wantDuration: 2.0,
			wantRate:     0,
			wantRatio:    0,
			wantStatus:   entity.StatusDistracted,
		},
		{
			name:         "half active is focused",
			raw:          RawSession{ElapsedSeconds: 60, SwitchCount: 1, ActiveTicks: 30},
			wantDuration: 60,
			wantRate:     1.0,
			wantRatio:    0.5,
			wantStatus:   entity.StatusFocused,
		},
		{
			name:         "more ticks than seconds is capped",
			raw:          RawSession{ElapsedSeconds: 10, SwitchCount: 0, ActiveTicks: 11},
			wantDuration: 10,
			wantRate:     0,
			wantRatio:    1,
			wantStatus:   entity.StatusFocused,
		},
		{
			name:         "zero elapsed",
			raw:          RawSession{ElapsedSeconds: 0, SwitchCount: 3, ActiveTicks: 1},
			wantDuration: 2.0,
			wantRate:     90,
			wantRatio:    0.5,
			wantStatus:   entity.StatusFocused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Extract(tt.raw)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantDuration, m.DurationSeconds, 1e-9)
			assert.Equal(t, tt.raw.SwitchCount, m.SwitchCount)
			assert.InDelta(t, tt.wantRate, m.SwitchRate, 1e-9)
			assert.InDelta(t, tt.wantRatio, m.ActiveRatio, 1e-9)
			assert.Equal(t, tt.wantStatus, entity.StatusFromRatio(m.ActiveRatio))
		})
	}
}

func TestExtract_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawSession
		field string
	}{
		{"negative switch count", RawSession{ElapsedSeconds: 10, SwitchCount: -1}, "switch_count"},
		{"negative ticks", RawSession{ElapsedSeconds: 10, ActiveTicks: -5}, "active_ticks"},
		{"negative elapsed", RawSession{ElapsedSeconds: -1}, "elapsed_seconds"},
		{"NaN elapsed", RawSession{ElapsedSeconds: math.NaN()}, "elapsed_seconds"},
		{"infinite elapsed", RawSession{ElapsedSeconds: math.Inf(1)}, "elapsed_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.raw)
			require.Error(t, err)

			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestExtract_BoundsHoldAcrossInputs(t *testing.T) {
	for elapsed := 0.0; elapsed <= 400; elapsed += 7.5 {
		for ticks := 0; ticks <= 450; ticks += 13 {
			m, err := Extract(RawSession{ElapsedSeconds: elapsed, SwitchCount: ticks % 9, ActiveTicks: ticks})
			require.NoError(t, err)

			assert.GreaterOrEqual(t, m.DurationSeconds, MinDurationSeconds)
			assert.GreaterOrEqual(t, m.ActiveRatio, 0.0)
			assert.LessOrEqual(t, m.ActiveRatio, 1.0)
		}
	}
}

func TestExtract_IsIdempotent(t *testing.T) {
	raw := RawSession{ElapsedSeconds: 731.337, SwitchCount: 17, ActiveTicks: 512}

	first, err := Extract(raw)
	require.NoError(t, err)
	second, err := Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.DurationSeconds), math.Float64bits(second.DurationSeconds))
	assert.Equal(t, math.Float64bits(first.SwitchRate), math.Float64bits(second.SwitchRate))
	assert.Equal(t, math.Float64bits(first.ActiveRatio), math.Float64bits(second.ActiveRatio))
	assert.Equal(t, first, second)
}

func TestNormalize(t *testing.T) {
	t.Run("re-derives rate and floors duration", func(t *testing.T) {
		m, err := Normalize(entity.SessionMetrics{DurationSeconds: 0.5, SwitchCount: 1, SwitchRate: 999, ActiveRatio: 0.25})
		require.NoError(t, err)

		assert.Equal(t, MinDurationSeconds, m.DurationSeconds)
		assert.InDelta(t, 30.0, m.SwitchRate, 1e-9)
		assert.Equal(t, 0.25, m.ActiveRatio)
	})

	t.Run("rejects percentages", func(t *testing.T) {
		_, err := Normalize(entity.SessionMetrics{DurationSeconds: 60, ActiveRatio: 85})

		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "active_ratio", invalid.Field)
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		_, err := Normalize(entity.SessionMetrics{DurationSeconds: 60, SwitchCount: -2})

		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "switch_count", invalid.Field)
	})
}
