package response

import "github.com/dinerozz/focus-session-backend/internal/entity"

// SessionOutcome is what the dashboard shows after a session is stopped.
type SessionOutcome struct {
	Record           entity.SessionRecord        `json:"record"`
	Classification   entity.ClassificationResult `json:"classification"`
	IntensityPercent int                         `json:"intensity_percent"`
	Saved            bool                        `json:"saved"`
	SaveError        string                      `json:"save_error,omitempty"`
}

type Prediction struct {
	Metrics          entity.SessionMetrics       `json:"metrics"`
	Classification   entity.ClassificationResult `json:"classification"`
	IntensityPercent int                         `json:"intensity_percent"`
}
