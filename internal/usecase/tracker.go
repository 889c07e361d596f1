package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/entity"
	"github.com/atlasai/outbound/internal/infra/metrics"
)

// CampaignMetrics are derived engagement rates for one campaign window.
// Rates are percentages. Open, reply and bounce rates are relative to
// delivered; click rate is relative to opened. A zero denominator yields 0.
type CampaignMetrics struct {
	Campaign   string  `json:"campaign"`
	Sent       int     `json:"sent"`
	Delivered  int     `json:"delivered"`
	Opened     int     `json:"opened"`
	Clicked    int     `json:"clicked"`
	Replied    int     `json:"replied"`
	Bounced    int     `json:"bounced"`
	OpenRate   float64 `json:"open_rate"`
	ClickRate  float64 `json:"click_rate"`
	ReplyRate  float64 `json:"reply_rate"`
	BounceRate float64 `json:"bounce_rate"`
}

// BucketPerformance is the scored rollup of one hour-of-day or day-of-week.
type BucketPerformance struct {
	Bucket    int     `json:"bucket"`
	Label     string  `json:"label,omitempty"`
	Sent      int     `json:"sent"`
	OpenRate  float64 `json:"open_rate"`
	ClickRate float64 `json:"click_rate"`
	Score     float64 `json:"score"`
}

// SendTimeAnalysis ranks send windows by observed engagement.
type SendTimeAnalysis struct {
	BestHours []BucketPerformance `json:"best_hours"`
	BestDays  []BucketPerformance `json:"best_days"`
}

// MessageMetrics is the engagement timeline of a single message.
type MessageMetrics struct {
	MessageID      string                `json:"message_id"`
	LeadID         string                `json:"lead_id"`
	Campaign       string                `json:"campaign"`
	DeliveryStatus entity.DeliveryStatus `json:"delivery_status"`
	SentAt         *time.Time            `json:"sent_at,omitempty"`
	OpenedAt       *time.Time            `json:"opened_at,omitempty"`
	ClickedAt      *time.Time            `json:"clicked_at,omitempty"`
	RepliedAt      *time.Time            `json:"replied_at,omitempty"`
}

// Tracker ingests engagement signals and serves derived metrics. Every
// signal is appended to the event log; message timestamps are first-write
// wins, so replays and duplicate pixel loads cannot move them.
type Tracker struct {
	events   TrackingEventRepository
	messages MessageRepository
	leads    LeadRepository
	rollups  MetricRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewTracker(events TrackingEventRepository, messages MessageRepository, leads LeadRepository, rollups MetricRepository, log *zap.Logger) *Tracker {
	return &Tracker{
		events:   events,
		messages: messages,
		leads:    leads,
		rollups:  rollups,
		log:      log,
		now:      time.Now,
	}
}

// RecordOpen registers a pixel load. Unknown tracking ids are logged and
// dropped so probes against the pixel endpoint cannot fish for valid ids.
func (t *Tracker) RecordOpen(ctx context.Context, trackingID string, meta EventMeta) error {
	msg, err := t.messages.FindByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.log.Warn("open for unknown tracking id", zap.String("tracking_id", trackingID))
			return nil
		}
		return err
	}

	now := t.now()
	if err := t.appendEvent(ctx, msg, entity.EventOpen, "", meta, now); err != nil {
		return err
	}

	first, err := t.messages.SetOpenedAt(ctx, msg.ID, now)
	if err != nil {
		return err
	}
	if first {
		if err := t.leads.MarkOpened(ctx, msg.LeadID); err != nil {
			return err
		}
		t.log.Info("message opened",
			zap.String("message_id", msg.ID),
			zap.String("lead_id", msg.LeadID),
		)
	}
	metrics.RecordEngagementEvent(string(entity.EventOpen))
	return nil
}

// RecordClick registers a tracked-link hit. The event is always appended,
// including repeat clicks; only the first moves clicked_at and the lead.
func (t *Tracker) RecordClick(ctx context.Context, trackingID, url string, meta EventMeta) error {
	msg, err := t.messages.FindByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.log.Warn("click for unknown tracking id", zap.String("tracking_id", trackingID))
			return nil
		}
		return err
	}

	now := t.now()
	if err := t.appendEvent(ctx, msg, entity.EventClick, url, meta, now); err != nil {
		return err
	}

	first, err := t.messages.SetClickedAt(ctx, msg.ID, now)
	if err != nil {
		return err
	}
	if first {
		if err := t.leads.MarkClicked(ctx, msg.LeadID); err != nil {
			return err
		}
		t.log.Info("link clicked",
			zap.String("message_id", msg.ID),
			zap.String("lead_id", msg.LeadID),
			zap.String("url", url),
		)
	}
	metrics.RecordEngagementEvent(string(entity.EventClick))
	return nil
}

// RecordReply marks the lead engaged. Replies arrive keyed by message id
// from the inbound webhook, not by tracking id.
func (t *Tracker) RecordReply(ctx context.Context, messageID, content string) error {
	msg, err := t.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.log.Warn("reply for unknown message", zap.String("message_id", messageID))
			return nil
		}
		return err
	}

	now := t.now()
	if err := t.appendEvent(ctx, msg, entity.EventReply, content, EventMeta{}, now); err != nil {
		return err
	}

	first, err := t.messages.SetRepliedAt(ctx, msg.ID, now)
	if err != nil {
		return err
	}
	if first {
		if err := t.leads.MarkReplied(ctx, msg.LeadID); err != nil {
			return err
		}
		t.log.Info("lead replied",
			zap.String("message_id", msg.ID),
			zap.String("lead_id", msg.LeadID),
		)
	}
	metrics.RecordEngagementEvent(string(entity.EventReply))
	return nil
}

// RecordBounce sets delivery status to bounced. A hard bounce additionally
// invalidates the lead so no further messages are composed for it.
func (t *Tracker) RecordBounce(ctx context.Context, messageID, bounceType string) error {
	msg, err := t.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.log.Warn("bounce for unknown message", zap.String("message_id", messageID))
			return nil
		}
		return err
	}

	now := t.now()
	if err := t.appendEvent(ctx, msg, entity.EventBounce, bounceType, EventMeta{}, now); err != nil {
		return err
	}
	if err := t.messages.SetDeliveryStatus(ctx, msg.ID, entity.DeliveryBounced); err != nil {
		return err
	}
	if bounceType == "hard" {
		if err := t.leads.MarkInvalid(ctx, msg.LeadID); err != nil {
			return err
		}
		t.log.Warn("hard bounce, lead invalidated",
			zap.String("message_id", msg.ID),
			zap.String("lead_id", msg.LeadID),
		)
	}
	metrics.RecordEngagementEvent(string(entity.EventBounce))
	return nil
}

// RecordDelivered confirms provider acceptance of a message.
func (t *Tracker) RecordDelivered(ctx context.Context, messageID string) error {
	msg, err := t.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.log.Warn("delivery receipt for unknown message", zap.String("message_id", messageID))
			return nil
		}
		return err
	}

	if err := t.appendEvent(ctx, msg, entity.EventDelivered, "", EventMeta{}, t.now()); err != nil {
		return err
	}
	if err := t.messages.SetDeliveryStatus(ctx, msg.ID, entity.DeliverySent); err != nil {
		return err
	}
	metrics.RecordEngagementEvent(string(entity.EventDelivered))
	return nil
}

// appendEvent writes one row to the audit log, flagging repeats of the same
// event type so replays and duplicate pixel loads are visible in the logs.
func (t *Tracker) appendEvent(ctx context.Context, msg *entity.Message, eventType entity.EventType, payload string, meta EventMeta, at time.Time) error {
	repeat, err := t.events.Exists(ctx, msg.ID, eventType)
	if err != nil {
		return err
	}
	if repeat {
		t.log.Debug("repeat engagement event",
			zap.String("message_id", msg.ID),
			zap.String("event_type", string(eventType)),
		)
	}
	return t.events.Append(ctx, &entity.TrackingEvent{
		MessageID: msg.ID,
		LeadID:    msg.LeadID,
		EventType: eventType,
		Payload:   payload,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		Timestamp: at,
	})
}

// EngagementScore grades a lead 0-100 from its message history: rate terms
// weighted toward replies, flat bonuses for repeat opens and clicks and for
// any reply, and a recency term for events in the last seven days.
func (t *Tracker) EngagementScore(ctx context.Context, leadID string) (float64, error) {
	stats, err := t.messages.LeadStats(ctx, leadID)
	if err != nil {
		return 0, err
	}
	if stats.Total == 0 {
		return 0, nil
	}

	total := float64(stats.Total)
	score := float64(stats.Opens)/total*30 +
		float64(stats.Clicks)/total*50 +
		float64(stats.Replies)/total*100

	if stats.Opens > 1 {
		score += 10
	}
	if stats.Clicks > 1 {
		score += 20
	}
	if stats.Replies > 0 {
		score += 50
	}

	recent, err := t.events.CountRecentByLead(ctx, leadID, t.now().AddDate(0, 0, -7))
	if err != nil {
		return 0, err
	}
	score += float64(recent) * 5

	if score > 100 {
		score = 100
	}
	return score, nil
}

// CampaignMetrics computes the rate view of one campaign since the cutoff.
func (t *Tracker) CampaignMetrics(ctx context.Context, campaign string, since time.Time) (*CampaignMetrics, error) {
	stats, err := t.messages.CampaignStats(ctx, campaign, since)
	if err != nil {
		return nil, err
	}

	m := &CampaignMetrics{
		Campaign:  campaign,
		Sent:      stats.Sent,
		Delivered: stats.Delivered,
		Opened:    stats.Opened,
		Clicked:   stats.Clicked,
		Replied:   stats.Replied,
		Bounced:   stats.Bounced,
	}
	m.OpenRate = rate(stats.Opened, stats.Delivered)
	m.ClickRate = rate(stats.Clicked, stats.Opened)
	m.ReplyRate = rate(stats.Replied, stats.Delivered)
	m.BounceRate = rate(stats.Bounced, stats.Sent)
	return m, nil
}

// OptimalSendTimes ranks hours of day and days of week by engagement. The
// bucket score is open rate plus twice the click rate; ties break toward
// the bucket with more volume behind it.
func (t *Tracker) OptimalSendTimes(ctx context.Context, since time.Time) (*SendTimeAnalysis, error) {
	hours, err := t.messages.HourlyRollup(ctx, since)
	if err != nil {
		return nil, err
	}
	days, err := t.messages.WeekdayRollup(ctx, since)
	if err != nil {
		return nil, err
	}

	analysis := &SendTimeAnalysis{
		BestHours: rankBuckets(hours, 5, nil),
		BestDays:  rankBuckets(days, 3, weekdayLabel),
	}
	return analysis, nil
}

func rankBuckets(buckets []TimeBucket, top int, label func(int) string) []BucketPerformance {
	ranked := make([]BucketPerformance, 0, len(buckets))
	for _, b := range buckets {
		if b.Sent == 0 {
			continue
		}
		p := BucketPerformance{
			Bucket:    b.Bucket,
			Sent:      b.Sent,
			OpenRate:  rate(b.Opened, b.Sent),
			ClickRate: rate(b.Clicked, b.Sent),
		}
		p.Score = p.OpenRate + 2*p.ClickRate
		if label != nil {
			p.Label = label(b.Bucket)
		}
		ranked = append(ranked, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Sent > ranked[j].Sent
	})

	if len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}

func weekdayLabel(d int) string {
	return time.Weekday(d).String()
}

// MessageMetrics returns the engagement timeline of one message.
func (t *Tracker) MessageMetrics(ctx context.Context, messageID string) (*MessageMetrics, error) {
	msg, err := t.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return &MessageMetrics{
		MessageID:      msg.ID,
		LeadID:         msg.LeadID,
		Campaign:       msg.Campaign,
		DeliveryStatus: msg.DeliveryStatus,
		SentAt:         msg.SentAt,
		OpenedAt:       msg.OpenedAt,
		ClickedAt:      msg.ClickedAt,
		RepliedAt:      msg.RepliedAt,
	}, nil
}

// RebuildCampaignPerformance refreshes the per-day campaign rollup rows
// for the given day from the message table.
func (t *Tracker) RebuildCampaignPerformance(ctx context.Context, campaigns []string, day time.Time) error {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	for _, campaign := range campaigns {
		stats, err := t.messages.CampaignStats(ctx, campaign, dayStart)
		if err != nil {
			return err
		}
		perf := &entity.CampaignPerformance{
			Campaign:  campaign,
			Date:      dayStart,
			Sent:      stats.Sent,
			Delivered: stats.Delivered,
			Opened:    stats.Opened,
			Clicked:   stats.Clicked,
			Replied:   stats.Replied,
			Bounced:   stats.Bounced,
		}
		if err := t.rollups.UpsertCampaignPerformance(ctx, perf); err != nil {
			return err
		}
	}
	return nil
}

func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// SinkAdapter feeds engagement signals straight into the Tracker. Used when
// no broker is configured and ingestion is synchronous with the HTTP layer.
type SinkAdapter struct {
	Tracker *Tracker
}

func (s *SinkAdapter) Open(ctx context.Context, trackingID string, meta EventMeta) error {
	return s.Tracker.RecordOpen(ctx, trackingID, meta)
}

func (s *SinkAdapter) Click(ctx context.Context, trackingID, url string, meta EventMeta) error {
	return s.Tracker.RecordClick(ctx, trackingID, url, meta)
}

func (s *SinkAdapter) Reply(ctx context.Context, messageID, content string) error {
	return s.Tracker.RecordReply(ctx, messageID, content)
}

func (s *SinkAdapter) Bounce(ctx context.Context, messageID, bounceType string) error {
	return s.Tracker.RecordBounce(ctx, messageID, bounceType)
}

func (s *SinkAdapter) Delivered(ctx context.Context, messageID string) error {
	return s.Tracker.RecordDelivered(ctx, messageID)
}
