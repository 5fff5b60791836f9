package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusFocused    Status = "Focused"
	StatusDistracted Status = "Distracted"
)

// FocusThreshold is the inclusive active-ratio boundary between Distracted and Focused.
const FocusThreshold = 0.5

// StatusFromRatio is the authoritative focus rule: a session is Focused iff
// its active ratio is at least FocusThreshold. Remote labels never override it.
func StatusFromRatio(activeRatio float64) Status {
	if activeRatio >= FocusThreshold {
		return StatusFocused
	}
	return StatusDistracted
}

func (s Status) Valid() bool {
	return s == StatusFocused || s == StatusDistracted
}

// SessionMetrics is the feature vector of one closed session. ActiveRatio is
// always a fraction in [0,1].
type SessionMetrics struct {
	DurationSeconds float64 `json:"duration_seconds" db:"duration_seconds"`
	SwitchCount     int     `json:"switch_count" db:"switch_count"`
	SwitchRate      float64 `json:"switch_rate" db:"switch_rate"`
	ActiveRatio     float64 `json:"active_ratio" db:"active_ratio"`
}

func (m SessionMetrics) DurationMinutes() float64 {
	return m.DurationSeconds / 60
}

type ClassificationResult struct {
	RawLabel          *int    `json:"raw_label"`
	Confidence        float64 `json:"confidence"`
	ResolvedStatus    Status  `json:"status"`
	RemoteUnavailable bool    `json:"remote_unavailable"`
	Attempts          int     `json:"attempts"`
}

type SessionRecord struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	SessionMetrics
	Status            Status    `json:"status" db:"status"`
	Confidence        float64   `json:"confidence" db:"confidence"`
	RawLabel          *int      `json:"raw_label" db:"raw_label"`
	RemoteUnavailable bool      `json:"remote_unavailable" db:"remote_unavailable"`
	AdviceText        string    `json:"advice" db:"advice_text"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// TrendPoint is one point of the dashboard focus chart.
type TrendPoint struct {
	SessionID        uuid.UUID `json:"session_id"`
	CreatedAt        time.Time `json:"created_at"`
	IntensityPercent int       `json:"intensity_percent"`
	Status           Status    `json:"status"`
}

type HistoryStats struct {
	Sessions          int     `json:"sessions" yaml:"sessions"`
	FocusedSessions   int     `json:"focused_sessions" yaml:"focused_sessions"`
	FocusedShare      float64 `json:"focused_share" yaml:"focused_share"`
	AverageIntensity  float64 `json:"average_intensity_percent" yaml:"average_intensity_percent"`
	TotalMinutes      float64 `json:"total_minutes" yaml:"total_minutes"`
	TotalSwitches     int     `json:"total_switches" yaml:"total_switches"`
	AverageSwitchRate float64 `json:"average_switch_rate" yaml:"average_switch_rate"`
}
