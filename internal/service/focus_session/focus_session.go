package focus_session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/internal/model/response"
	"github.com/dinerozz/focus-session-backend/internal/service/advisor"
	"github.com/dinerozz/focus-session-backend/internal/session"
	"github.com/dinerozz/focus-session-backend/pkg/utils"
	"github.com/gofrs/uuid"
)

type Classifier interface {
	Classify(ctx context.Context, metrics entity.SessionMetrics) entity.ClassificationResult
}

type Advisor interface {
	Advise(ctx context.Context, status entity.Status, intensityPercent int) advisor.Advice
}

type Store interface {
	Append(ctx context.Context, record *entity.SessionRecord) error
}

type PredictionLog interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
}

// PersistenceError means the session was analysed but could not be stored.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save session: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type Service struct {
	classifier  Classifier
	advisor     Advisor
	store       Store
	predictions PredictionLog
	now         func() time.Time
	logger      *slog.Logger
}

// NewService wires the session pipeline. predictions may be nil.
func NewService(classifier Classifier, advisor Advisor, store Store, predictions PredictionLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		classifier:  classifier,
		advisor:     advisor,
		store:       store,
		predictions: predictions,
		now:         time.Now,
		logger:      logger,
	}
}

// Complete runs a stopped session's counters through the whole pipeline.
func (s *Service) Complete(ctx context.Context, userID uuid.UUID, raw session.RawSession) (*response.SessionOutcome, error) {
	metrics, err := session.Extract(raw)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, userID, metrics)
}

// Analyze runs metrics computed by a client through the pipeline.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, metrics entity.SessionMetrics) (*response.SessionOutcome, error) {
	metrics, err := session.Normalize(metrics)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, userID, metrics)
}

func (s *Service) analyze(ctx context.Context, userID uuid.UUID, metrics entity.SessionMetrics) (*response.SessionOutcome, error) {
	result := s.classifier.Classify(ctx, metrics)
	intensity := utils.RatioToPercent(metrics.ActiveRatio)
	advice := s.advisor.Advise(ctx, result.ResolvedStatus, intensity)

	record := entity.SessionRecord{
		UserID:            userID,
		SessionMetrics:    metrics,
		Status:            result.ResolvedStatus,
		Confidence:        result.Confidence,
		RawLabel:          result.RawLabel,
		RemoteUnavailable: result.RemoteUnavailable,
		AdviceText:        advice.Text,
		CreatedAt:         s.now().UTC(),
	}

	outcome := &response.SessionOutcome{
		Classification:   result,
		IntensityPercent: intensity,
	}

	if err := s.store.Append(ctx, &record); err != nil {
		s.logger.Error("failed to save session",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		outcome.Record = record
		outcome.SaveError = err.Error()
		return outcome, &PersistenceError{Err: err}
	}

	s.logger.Info("session recorded",
		slog.String("session_id", record.ID.String()),
		slog.String("status", string(record.Status)),
		slog.Int("intensity_percent", intensity),
		slog.Bool("remote_unavailable", record.RemoteUnavailable))

	outcome.Record = record
	outcome.Saved = true
	return outcome, nil
}

// Predict classifies metrics without an owner and records an audit row.
func (s *Service) Predict(ctx context.Context, metrics entity.SessionMetrics) (*response.Prediction, error) {
	metrics, err := session.Normalize(metrics)
	if err != nil {
		return nil, err
	}

	result := s.classifier.Classify(ctx, metrics)

	if s.predictions != nil {
		audit := &entity.Prediction{
			SessionMetrics:    metrics,
			RawLabel:          result.RawLabel,
			Status:            result.ResolvedStatus,
			Confidence:        result.Confidence,
			RemoteUnavailable: result.RemoteUnavailable,
			CreatedAt:         s.now().UTC(),
		}
		if err := s.predictions.Create(ctx, audit); err != nil {
			s.logger.Warn("failed to record prediction", slog.String("error", err.Error()))
		}
	}

	return &response.Prediction{
		Metrics:          metrics,
		Classification:   result,
		IntensityPercent: utils.RatioToPercent(metrics.ActiveRatio),
	}, nil
}

// PredictRaw is Predict for raw timer counters.
func (s *Service) PredictRaw(ctx context.Context, raw session.RawSession) (*response.Prediction, error) {
	metrics, err := session.Extract(raw)
	if err != nil {
		return nil, err
	}
	return s.Predict(ctx, metrics)
}
