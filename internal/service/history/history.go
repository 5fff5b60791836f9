package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dinerozz/focus-session-backend/config"
	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/internal/model/response"
	"github.com/dinerozz/focus-session-backend/internal/repository"
	"github.com/dinerozz/focus-session-backend/internal/service/redis"
	"github.com/dinerozz/focus-session-backend/pkg/utils"
	"github.com/gofrs/uuid"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	// MaxTrendPoints is the length of the cached series; shorter trends are its tail.
	MaxTrendPoints = 100
)

type Service struct {
	repo       repository.SessionRepository
	cache      redis.Cache
	cacheTTL   time.Duration
	trendLimit int
	logger     *slog.Logger
}

// NewService builds the history service. cache may be nil.
func NewService(repo repository.SessionRepository, cache redis.Cache, cfg config.HistoryConfig, logger *slog.Logger) *Service {
	if cfg.TrendLimit <= 0 || cfg.TrendLimit > MaxTrendPoints {
		cfg.TrendLimit = DefaultPerPage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		trendLimit: cfg.TrendLimit,
		logger:     logger,
	}
}

// Append stores a finished session and moves the user's trend cache to a new
// version. A trend read that loaded rows before the insert writes under the old
// version and is never served again.
func (s *Service) Append(ctx context.Context, record *entity.SessionRecord) error {
	if err := s.repo.Append(ctx, record); err != nil {
		return err
	}

	if s.cache == nil {
		return nil
	}

	version, err := s.cache.Incr(ctx, trendVersionKey(record.UserID))
	if err != nil {
		s.logger.Warn("failed to invalidate trend cache",
			slog.String("user_id", record.UserID.String()),
			slog.String("error", err.Error()))
		return nil
	}

	if err := s.cache.Delete(ctx, trendKey(record.UserID, version-1)); err != nil {
		s.logger.Warn("failed to drop stale trend cache",
			slog.String("user_id", record.UserID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// List returns one page of sessions, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]entity.SessionRecord, response.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	records, err := s.repo.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	return records, response.NewPaginationMeta(page, perPage, total), nil
}

// Trend returns up to n chart points ordered oldest to newest. n <= 0 uses
// the configured limit.
func (s *Service) Trend(ctx context.Context, userID uuid.UUID, n int) ([]entity.TrendPoint, error) {
	if n <= 0 {
		n = s.trendLimit
	}
	if n > MaxTrendPoints {
		n = MaxTrendPoints
	}

	points, err := s.trendSeries(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(points) > n {
		points = points[len(points)-n:]
	}
	return points, nil
}

func (s *Service) trendSeries(ctx context.Context, userID uuid.UUID) ([]entity.TrendPoint, error) {
	var key string
	if s.cache != nil {
		version, err := s.trendVersion(ctx, userID)
		if err != nil {
			s.logger.Warn("trend cache version read failed", slog.String("error", err.Error()))
		} else {
			key = trendKey(userID, version)
		}
	}

	if key != "" {
		var cached []entity.TrendPoint
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("trend cache read failed", slog.String("error", err.Error()))
		}
	}

	records, err := s.repo.ListByUser(ctx, userID, MaxTrendPoints, 0)
	if err != nil {
		return nil, err
	}

	points := make([]entity.TrendPoint, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		points = append(points, entity.TrendPoint{
			SessionID:        records[i].ID,
			CreatedAt:        records[i].CreatedAt,
			IntensityPercent: utils.RatioToPercent(records[i].ActiveRatio),
			Status:           records[i].Status,
		})
	}

	if key != "" && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, points, s.cacheTTL); err != nil {
			s.logger.Warn("trend cache write failed", slog.String("error", err.Error()))
		}
	}

	return points, nil
}

// Stats summarises every session of the user.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (entity.HistoryStats, error) {
	records, err := s.repo.ListByUser(ctx, userID, 0, 0)
	if err != nil {
		return entity.HistoryStats{}, err
	}
	return Summarize(records), nil
}

// All returns every session of the user, newest first.
func (s *Service) All(ctx context.Context, userID uuid.UUID) ([]entity.SessionRecord, error) {
	records, err := s.repo.ListByUser(ctx, userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

func Summarize(records []entity.SessionRecord) entity.HistoryStats {
	stats := entity.HistoryStats{Sessions: len(records)}
	if len(records) == 0 {
		return stats
	}

	var ratioSum, rateSum, seconds float64
	for _, r := range records {
		if r.Status == entity.StatusFocused {
			stats.FocusedSessions++
		}
		ratioSum += r.ActiveRatio
		rateSum += r.SwitchRate
		seconds += r.DurationSeconds
		stats.TotalSwitches += r.SwitchCount
	}

	n := float64(len(records))
	stats.FocusedShare = utils.RoundToTwoDecimals(float64(stats.FocusedSessions) / n)
	stats.AverageIntensity = utils.RoundToTwoDecimals(utils.RatioToPercentFloat(ratioSum / n))
	stats.TotalMinutes = utils.RoundToTwoDecimals(seconds / 60)
	stats.AverageSwitchRate = utils.RoundToTwoDecimals(rateSum / n)
	return stats
}

func (s *Service) trendVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	var version int64
	err := s.cache.Get(ctx, trendVersionKey(userID), &version)
	if errors.Is(err, redis.ErrCacheMiss) {
		return 0, nil
	}
	return version, err
}

func trendKey(userID uuid.UUID, version int64) string {
	return fmt.Sprintf("history:trend:%s:v%d", userID, version)
}

func trendVersionKey(userID uuid.UUID) string {
	return fmt.Sprintf("history:trend:%s:version", userID)
}
