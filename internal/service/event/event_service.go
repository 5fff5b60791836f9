package event

import (
	"context"
	"errors"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/internal/repository"
	"github.com/gofrs/uuid"
)

const (
	TypeStart  = "start"
	TypeSwitch = "switch"
	TypeStop   = "stop"
	TypeTick   = "tick"

	defaultLimit = 500
)

var ErrUnknownEventType = errors.New("event_type must be one of start, switch, stop, tick")

type Service struct {
	repo repository.EventRepository
	now  func() time.Time
}

func NewService(repo repository.EventRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Record(ctx context.Context, userID uuid.UUID, eventType string) (*entity.Event, error) {
	if !ValidType(eventType) {
		return nil, ErrUnknownEventType
	}

	event := &entity.Event{
		UserID:    userID,
		EventType: eventType,
		Timestamp: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) List(ctx context.Context, filter entity.EventFilter) ([]entity.Event, error) {
	if filter.EventType != nil && !ValidType(*filter.EventType) {
		return nil, ErrUnknownEventType
	}
	if filter.Limit <= 0 || filter.Limit > defaultLimit {
		filter.Limit = defaultLimit
	}
	return s.repo.List(ctx, filter)
}

func ValidType(eventType string) bool {
	switch eventType {
	case TypeStart, TypeSwitch, TypeStop, TypeTick:
		return true
	}
	return false
}
