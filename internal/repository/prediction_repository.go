package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PredictionRepository interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
}

type predictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) Create(ctx context.Context, prediction *entity.Prediction) error {
	prediction.ID = uuid2.UUID(uuid.New())
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = time.Now()
	}
	prediction.CreatedAt = prediction.CreatedAt.UTC()

	query := `
		INSERT INTO predictions (id, duration_seconds, switch_count, switch_rate, active_ratio,
			raw_label, status, confidence, remote_unavailable, created_at)
		VALUES (:id, :duration_seconds, :switch_count, :switch_rate, :active_ratio,
			:raw_label, :status, :confidence, :remote_unavailable, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, prediction); err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}
