package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

// Prediction is the audit row written for every /api/predict call.
type Prediction struct {
	ID uuid.UUID `json:"id" db:"id"`
	SessionMetrics
	RawLabel          *int      `json:"raw_label" db:"raw_label"`
	Status            Status    `json:"status" db:"status"`
	Confidence        float64   `json:"confidence" db:"confidence"`
	RemoteUnavailable bool      `json:"remote_unavailable" db:"remote_unavailable"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
