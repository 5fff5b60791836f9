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

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	List(ctx context.Context, filter entity.EventFilter) ([]entity.Event, error)
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	event.ID = uuid2.UUID(uuid.New())
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC()

	query := `INSERT INTO events (id, user_id, event_type, timestamp) VALUES (:id, :user_id, :event_type, :timestamp)`

	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// List returns a user's events oldest first. A limit without start_time keeps
// the newest events; with start_time it pages forward from that instant.
func (r *eventRepository) List(ctx context.Context, filter entity.EventFilter) ([]entity.Event, error) {
	query := "SELECT id, user_id, event_type, timestamp FROM events WHERE user_id = ?"
	args := []interface{}{filter.UserID}

	if filter.EventType != nil {
		query += " AND event_type = ?"
		args = append(args, *filter.EventType)
	}

	if filter.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime.UTC())
	}

	if filter.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime.UTC())
	}

	switch {
	case filter.Limit > 0 && filter.StartTime == nil:
		// Without a lower bound the limit keeps the most recent events.
		query += " ORDER BY timestamp DESC LIMIT ?"
		args = append(args, filter.Limit)
		query = "SELECT id, user_id, event_type, timestamp FROM (" + query + ") AS recent ORDER BY timestamp ASC"
	case filter.Limit > 0:
		query += " ORDER BY timestamp ASC LIMIT ?"
		args = append(args, filter.Limit)
	default:
		query += " ORDER BY timestamp ASC"
	}

	events := []entity.Event{}
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
