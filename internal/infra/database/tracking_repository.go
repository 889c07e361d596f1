package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/atlasai/outbound/internal/entity"
)

type TrackingEventRepository struct {
	db *sql.DB
}

func NewTrackingEventRepository(db *sql.DB) *TrackingEventRepository {
	return &TrackingEventRepository{db: db}
}

// Append writes one event row. The log is append-only; there is no update
// path.
func (r *TrackingEventRepository) Append(ctx context.Context, ev *entity.TrackingEvent) error {
	query := `
		INSERT INTO tracking_events (message_id, lead_id, event_type, payload, user_agent, ip_address, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		ev.MessageID, ev.LeadID, ev.EventType, ev.Payload,
		ev.UserAgent, ev.IPAddress, ev.Timestamp,
	)
	return err
}

func (r *TrackingEventRepository) Exists(ctx context.Context, messageID string, eventType entity.EventType) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tracking_events WHERE message_id = $1 AND event_type = $2)`,
		messageID, eventType).Scan(&exists)
	return exists, err
}

func (r *TrackingEventRepository) CountRecentByLead(ctx context.Context, leadID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tracking_events WHERE lead_id = $1 AND timestamp >= $2`,
		leadID, since).Scan(&count)
	return count, err
}
