package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/pkg/utils"
	"gopkg.in/yaml.v3"
)

type exportRecord struct {
	ID                string  `json:"id" yaml:"id"`
	CreatedAt         string  `json:"created_at" yaml:"created_at"`
	DurationSeconds   float64 `json:"duration_seconds" yaml:"duration_seconds"`
	SwitchCount       int     `json:"switch_count" yaml:"switch_count"`
	SwitchRate        float64 `json:"switch_rate" yaml:"switch_rate"`
	IntensityPercent  int     `json:"intensity_percent" yaml:"intensity_percent"`
	Status            string  `json:"status" yaml:"status"`
	Confidence        float64 `json:"confidence" yaml:"confidence"`
	RemoteUnavailable bool    `json:"remote_unavailable" yaml:"remote_unavailable"`
	Advice            string  `json:"advice,omitempty" yaml:"advice,omitempty"`
}

type exportDocument struct {
	Stats    entity.HistoryStats `json:"stats" yaml:"stats"`
	Sessions []exportRecord      `json:"sessions" yaml:"sessions"`
}

// Export writes the sessions and their summary as json or yaml.
func Export(w io.Writer, records []entity.SessionRecord, format string) error {
	doc := exportDocument{
		Stats:    Summarize(records),
		Sessions: make([]exportRecord, 0, len(records)),
	}
	for _, r := range records {
		doc.Sessions = append(doc.Sessions, exportRecord{
			ID:                r.ID.String(),
			CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
			DurationSeconds:   r.DurationSeconds,
			SwitchCount:       r.SwitchCount,
			SwitchRate:        r.SwitchRate,
			IntensityPercent:  utils.RatioToPercent(r.ActiveRatio),
			Status:            string(r.Status),
			Confidence:        r.Confidence,
			RemoteUnavailable: r.RemoteUnavailable,
			Advice:            r.AdviceText,
		})
	}

	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}
