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

// SessionRepository is the append-only history store of finished sessions.
type SessionRepository interface {
	Append(ctx context.Context, record *entity.SessionRecord) error
	ListByUser(ctx context.Context, userID uuid2.UUID, limit, offset int) ([]entity.SessionRecord, error)
	CountByUser(ctx context.Context, userID uuid2.UUID) (int, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Append assigns the record ID and inserts it. Records are never updated.
func (r *sessionRepository) Append(ctx context.Context, record *entity.SessionRecord) error {
	record.ID = uuid2.UUID(uuid.New())
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = record.CreatedAt.UTC()

	query := `
		INSERT INTO focus_sessions (id, user_id, duration_seconds, switch_count, switch_rate, active_ratio,
			status, confidence, raw_label, remote_unavailable, advice_text, created_at)
		VALUES (:id, :user_id, :duration_seconds, :switch_count, :switch_rate, :active_ratio,
			:status, :confidence, :raw_label, :remote_unavailable, :advice_text, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		record.ID = uuid2.Nil
		return fmt.Errorf("failed to append session: %w", err)
	}

	return nil
}

// ListByUser returns the newest sessions first. A non-positive limit returns all.
func (r *sessionRepository) ListByUser(ctx context.Context, userID uuid2.UUID, limit, offset int) ([]entity.SessionRecord, error) {
	query := `
		SELECT id, user_id, duration_seconds, switch_count, switch_rate, active_ratio,
			status, confidence, raw_label, remote_unavailable, advice_text, created_at
		FROM focus_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC`
	args := []interface{}{userID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)

		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	records := []entity.SessionRecord{}
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return records, nil
}

func (r *sessionRepository) CountByUser(ctx context.Context, userID uuid2.UUID) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM focus_sessions WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
