package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/atlasai/outbound/internal/entity"
	"github.com/atlasai/outbound/internal/usecase"
)

const messageColumns = `id, lead_id, subject, body, tone, campaign, message_type,
	personalization_score, status, delivery_status, channel, tracking_id,
	error_message, generated_at, sent_at, opened_at, clicked_at, replied_at`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *entity.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.LeadID, msg.Subject, msg.Body, msg.Tone, msg.Campaign,
		msg.MessageType, msg.PersonalizationScore, msg.Status,
		msg.DeliveryStatus, msg.Channel, msg.TrackingID, msg.ErrorMessage,
		msg.GeneratedAt, msg.SentAt, msg.OpenedAt, msg.ClickedAt, msg.RepliedAt,
	)
	return err
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *MessageRepository) FindByTrackingID(ctx context.Context, trackingID string) (*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE tracking_id = $1`
	return r.findOne(ctx, query, trackingID)
}

// DraftQueue returns drafts joined with their leads, best scored first.
// Drafts for invalidated leads are excluded; they stay in draft until the
// operator requeues or purges them.
func (r *MessageRepository) DraftQueue(ctx context.Context, limit int) ([]usecase.DraftItem, error) {
	query := `
		SELECT ` + prefixColumns("m", messageColumns) + `, ` + prefixColumns("l", leadColumns) + `
		FROM messages m
		JOIN leads l ON l.id = m.lead_id
		WHERE m.status = 'draft' AND l.status <> 'invalid'
		ORDER BY l.score DESC, m.generated_at
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []usecase.DraftItem
	for rows.Next() {
		msg, lead, err := scanDraftItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, usecase.DraftItem{Message: msg, Lead: lead})
	}
	return items, rows.Err()
}

func (r *MessageRepository) MarkSent(ctx context.Context, id string, channel entity.Channel, trackingID string, at time.Time) error {
	query := `
		UPDATE messages
		SET status = 'sent', channel = $2, tracking_id = $3, sent_at = $4,
		    delivery_status = 'pending', error_message = ''
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, channel, trackingID, at)
	return err
}

func (r *MessageRepository) MarkFailed(ctx context.Context, id string, channel entity.Channel, errMsg string) error {
	query := `
		UPDATE messages
		SET status = 'failed', channel = $2, delivery_status = 'failed', error_message = $3
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, channel, errMsg)
	return err
}

// SetOpenedAt writes the open timestamp only if none exists. The boolean
// reports whether this call was the first.
func (r *MessageRepository) SetOpenedAt(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.setOnce(ctx, "opened_at", id, at)
}

func (r *MessageRepository) SetClickedAt(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.setOnce(ctx, "clicked_at", id, at)
}

func (r *MessageRepository) SetRepliedAt(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.setOnce(ctx, "replied_at", id, at)
}

func (r *MessageRepository) setOnce(ctx context.Context, column, id string, at time.Time) (bool, error) {
	query := `UPDATE messages SET ` + column + ` = $2 WHERE id = $1 AND ` + column + ` IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MessageRepository) SetDeliveryStatus(ctx context.Context, id string, status entity.DeliveryStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET delivery_status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *MessageRepository) HasMessageSince(ctx context.Context, leadID string, since time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE lead_id = $1 AND generated_at >= $2)`,
		leadID, since).Scan(&exists)
	return exists, err
}

func (r *MessageRepository) SentTimestampsSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sent_at FROM messages WHERE status = 'sent' AND sent_at >= $1 ORDER BY sent_at`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		stamps = append(stamps, t)
	}
	return stamps, rows.Err()
}

func (r *MessageRepository) LeadStats(ctx context.Context, leadID string) (usecase.MessageStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(opened_at),
		       COUNT(clicked_at),
		       COUNT(replied_at)
		FROM messages
		WHERE lead_id = $1 AND status = 'sent'`

	var s usecase.MessageStats
	err := r.db.QueryRowContext(ctx, query, leadID).Scan(&s.Total, &s.Opens, &s.Clicks, &s.Replies)
	return s, err
}

// CampaignStats counts sent outcomes since the cutoff. Delivered means not
// bounced and not failed; pending counts as delivered until a bounce says
// otherwise.
func (r *MessageRepository) CampaignStats(ctx context.Context, campaign string, since time.Time) (usecase.CampaignStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE delivery_status NOT IN ('bounced', 'failed')),
		       COUNT(opened_at),
		       COUNT(clicked_at),
		       COUNT(replied_at),
		       COUNT(*) FILTER (WHERE delivery_status = 'bounced')
		FROM messages
		WHERE campaign = $1 AND status = 'sent' AND sent_at >= $2`

	var s usecase.CampaignStats
	err := r.db.QueryRowContext(ctx, query, campaign, since).Scan(
		&s.Sent, &s.Delivered, &s.Opened, &s.Clicked, &s.Replied, &s.Bounced)
	return s, err
}

func (r *MessageRepository) CampaignDaily(ctx context.Context, campaign string, day time.Time) (*entity.CampaignPerformance, error) {
	query := `
		SELECT campaign, date, sent, delivered, opened, clicked, replied, bounced
		FROM campaign_performance
		WHERE campaign = $1 AND date = $2`

	var p entity.CampaignPerformance
	err := r.db.QueryRowContext(ctx, query, campaign, day).Scan(
		&p.Campaign, &p.Date, &p.Sent, &p.Delivered, &p.Opened,
		&p.Clicked, &p.Replied, &p.Bounced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MessageRepository) HourlyRollup(ctx context.Context, since time.Time) ([]usecase.TimeBucket, error) {
	query := `
		SELECT EXTRACT(HOUR FROM sent_at)::int,
		       COUNT(*),
		       COUNT(opened_at),
		       COUNT(clicked_at)
		FROM messages
		WHERE status = 'sent' AND sent_at >= $1
		GROUP BY 1
		ORDER BY 1`
	return r.rollup(ctx, query, since)
}

func (r *MessageRepository) WeekdayRollup(ctx context.Context, since time.Time) ([]usecase.TimeBucket, error) {
	query := `
		SELECT EXTRACT(DOW FROM sent_at)::int,
		       COUNT(*),
		       COUNT(opened_at),
		       COUNT(clicked_at)
		FROM messages
		WHERE status = 'sent' AND sent_at >= $1
		GROUP BY 1
		ORDER BY 1`
	return r.rollup(ctx, query, since)
}

func (r *MessageRepository) rollup(ctx context.Context, query string, since time.Time) ([]usecase.TimeBucket, error) {
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []usecase.TimeBucket
	for rows.Next() {
		var b usecase.TimeBucket
		if err := rows.Scan(&b.Bucket, &b.Sent, &b.Opened, &b.Clicked); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *MessageRepository) TopEngagedLeads(ctx context.Context, since time.Time, limit int) ([]usecase.EngagedLead, error) {
	query := `
		SELECT l.name, l.company, l.email, l.response_status,
		       COUNT(*),
		       COUNT(m.opened_at),
		       COUNT(m.clicked_at),
		       COUNT(m.replied_at)
		FROM messages m
		JOIN leads l ON l.id = m.lead_id
		WHERE m.status = 'sent' AND m.sent_at >= $1
		GROUP BY l.id, l.name, l.company, l.email, l.response_status
		HAVING COUNT(m.opened_at) + COUNT(m.clicked_at) + COUNT(m.replied_at) > 0
		ORDER BY COUNT(m.replied_at) * 3 + COUNT(m.clicked_at) * 2 + COUNT(m.opened_at) DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []usecase.EngagedLead
	for rows.Next() {
		var e usecase.EngagedLead
		err := rows.Scan(&e.Name, &e.Company, &e.Email, &e.ResponseStatus,
			&e.MessagesSent, &e.Opens, &e.Clicks, &e.Replies)
		if err != nil {
			return nil, err
		}
		leads = append(leads, e)
	}
	return leads, rows.Err()
}

func (r *MessageRepository) RequeueFailed(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET status = 'draft', delivery_status = 'pending', error_message = ''
		WHERE status = 'failed'`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *MessageRepository) findOne(ctx context.Context, query string, arg any) (*entity.Message, error) {
	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	return msg, err
}

func scanMessage(row rowScanner) (*entity.Message, error) {
	var msg entity.Message
	var sentAt, openedAt, clickedAt, repliedAt sql.NullTime
	err := row.Scan(
		&msg.ID, &msg.LeadID, &msg.Subject, &msg.Body, &msg.Tone,
		&msg.Campaign, &msg.MessageType, &msg.PersonalizationScore,
		&msg.Status, &msg.DeliveryStatus, &msg.Channel, &msg.TrackingID,
		&msg.ErrorMessage, &msg.GeneratedAt,
		&sentAt, &openedAt, &clickedAt, &repliedAt,
	)
	if err != nil {
		return nil, err
	}
	msg.SentAt = nullableTime(sentAt)
	msg.OpenedAt = nullableTime(openedAt)
	msg.ClickedAt = nullableTime(clickedAt)
	msg.RepliedAt = nullableTime(repliedAt)
	return &msg, nil
}

func scanDraftItem(rows *sql.Rows) (*entity.Message, *entity.Lead, error) {
	var msg entity.Message
	var lead entity.Lead
	var sentAt, openedAt, clickedAt, repliedAt, lastContacted sql.NullTime
	err := rows.Scan(
		&msg.ID, &msg.LeadID, &msg.Subject, &msg.Body, &msg.Tone,
		&msg.Campaign, &msg.MessageType, &msg.PersonalizationScore,
		&msg.Status, &msg.DeliveryStatus, &msg.Channel, &msg.TrackingID,
		&msg.ErrorMessage, &msg.GeneratedAt,
		&sentAt, &openedAt, &clickedAt, &repliedAt,
		&lead.ID, &lead.Name, &lead.Email, &lead.Company, &lead.Position,
		&lead.Industry, &lead.Location, &lead.LinkedInURL, &lead.CompanyWebsite,
		&lead.Phone, &lead.Employees, &lead.BuyingSignals, &lead.Notes,
		&lead.Source, &lead.Score, &lead.Status, &lead.ResponseStatus,
		&lead.FoundAt, &lastContacted,
	)
	if err != nil {
		return nil, nil, err
	}
	msg.SentAt = nullableTime(sentAt)
	msg.OpenedAt = nullableTime(openedAt)
	msg.ClickedAt = nullableTime(clickedAt)
	msg.RepliedAt = nullableTime(repliedAt)
	lead.LastContacted = nullableTime(lastContacted)
	return &msg, &lead, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
