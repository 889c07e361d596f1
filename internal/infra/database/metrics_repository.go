package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/atlasai/outbound/internal/entity"
)

type MetricRepository struct {
	db *sql.DB
}

func NewMetricRepository(db *sql.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// IncrementSent bumps the per-day, per-channel send counter. The row is
// created on first send of the day.
func (r *MetricRepository) IncrementSent(ctx context.Context, day time.Time, channel entity.Channel) error {
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	query := `
		INSERT INTO send_metrics (date, channel, sent_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (date, channel) DO UPDATE SET sent_count = send_metrics.sent_count + 1`

	_, err := r.db.ExecContext(ctx, query, date, channel)
	return err
}

func (r *MetricRepository) UpsertCampaignPerformance(ctx context.Context, perf *entity.CampaignPerformance) error {
	query := `
		INSERT INTO campaign_performance (campaign, date, sent, delivered, opened, clicked, replied, bounced)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (campaign, date) DO UPDATE SET
			sent = EXCLUDED.sent,
			delivered = EXCLUDED.delivered,
			opened = EXCLUDED.opened,
			clicked = EXCLUDED.clicked,
			replied = EXCLUDED.replied,
			bounced = EXCLUDED.bounced`

	_, err := r.db.ExecContext(ctx, query,
		perf.Campaign, perf.Date, perf.Sent, perf.Delivered,
		perf.Opened, perf.Clicked, perf.Replied, perf.Bounced,
	)
	return err
}
