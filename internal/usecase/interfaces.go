package usecase

import (
	"context"
	"time"

	"github.com/atlasai/outbound/internal/entity"
)

// LeadRepository owns all reads and writes of the leads table. Each mark
// method applies the lifecycle rules in one statement so concurrent event
// ingestion cannot interleave a downgrade (e.g. an open arriving after a
// reply never overwrites response_status).
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)

	Unscored(ctx context.Context) ([]*entity.Lead, error)
	TopLeads(ctx context.Context, limit, minScore int) ([]*entity.Lead, error)
	UpdateScore(ctx context.Context, id string, score int) error

	MarkContacted(ctx context.Context, id string, at time.Time) error
	MarkOpened(ctx context.Context, id string) error
	MarkClicked(ctx context.Context, id string) error
	MarkReplied(ctx context.Context, id string) error
	MarkInvalid(ctx context.Context, id string) error

	CountFoundSince(ctx context.Context, since time.Time) (int, error)
	QualitySummary(ctx context.Context) (*LeadQuality, error)
}

// LeadQuality is an aggregate view over the whole lead table.
type LeadQuality struct {
	Total        int            `json:"total_leads"`
	AverageScore float64        `json:"average_score"`
	MaxScore     int            `json:"max_score"`
	MinScore     int            `json:"min_score"`
	Distribution map[string]int `json:"score_distribution"`
}

// DraftItem pairs a draft message with its lead for queue processing.
type DraftItem struct {
	Message *entity.Message
	Lead    *entity.Lead
}

// MessageStats are per-lead engagement counts over all messages.
type MessageStats struct {
	Total   int
	Opens   int
	Clicks  int
	Replies int
}

// CampaignStats are raw outcome counters for a campaign window.
type CampaignStats struct {
	Sent      int
	Delivered int
	Opened    int
	Clicked   int
	Replied   int
	Bounced   int
}

// TimeBucket is an hour-of-day or day-of-week rollup of send outcomes.
type TimeBucket struct {
	Bucket  int
	Sent    int
	Opened  int
	Clicked int
}

// EngagedLead is a report row for the most responsive leads.
type EngagedLead struct {
	Name           string                `json:"name"`
	Company        string                `json:"company"`
	Email          string                `json:"email"`
	ResponseStatus entity.ResponseStatus `json:"status"`
	MessagesSent   int                   `json:"messages_sent"`
	Opens          int                   `json:"opens"`
	Clicks         int                   `json:"clicks"`
	Replies        int                   `json:"replies"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	FindByID(ctx context.Context, id string) (*entity.Message, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*entity.Message, error)

	// DraftQueue returns draft messages joined with their leads, ordered by
	// lead score descending.
	DraftQueue(ctx context.Context, limit int) ([]DraftItem, error)

	MarkSent(ctx context.Context, id string, channel entity.Channel, trackingID string, at time.Time) error
	MarkFailed(ctx context.Context, id string, channel entity.Channel, errMsg string) error

	// SetOpenedAt and friends are first-write-wins: they report false when
	// the timestamp was already set.
	SetOpenedAt(ctx context.Context, id string, at time.Time) (bool, error)
	SetClickedAt(ctx context.Context, id string, at time.Time) (bool, error)
	SetRepliedAt(ctx context.Context, id string, at time.Time) (bool, error)
	SetDeliveryStatus(ctx context.Context, id string, status entity.DeliveryStatus) error

	HasMessageSince(ctx context.Context, leadID string, since time.Time) (bool, error)
	SentTimestampsSince(ctx context.Context, since time.Time) ([]time.Time, error)

	LeadStats(ctx context.Context, leadID string) (MessageStats, error)
	CampaignStats(ctx context.Context, campaign string, since time.Time) (CampaignStats, error)
	CampaignDaily(ctx context.Context, campaign string, day time.Time) (*entity.CampaignPerformance, error)
	HourlyRollup(ctx context.Context, since time.Time) ([]TimeBucket, error)
	WeekdayRollup(ctx context.Context, since time.Time) ([]TimeBucket, error)
	TopEngagedLeads(ctx context.Context, since time.Time, limit int) ([]EngagedLead, error)

	// RequeueFailed promotes failed messages back to draft. Never called by
	// the pipeline itself; exposed for explicit operator action.
	RequeueFailed(ctx context.Context) (int, error)
}

type TrackingEventRepository interface {
	Append(ctx context.Context, ev *entity.TrackingEvent) error
	Exists(ctx context.Context, messageID string, eventType entity.EventType) (bool, error)
	CountRecentByLead(ctx context.Context, leadID string, since time.Time) (int, error)
}

type MetricRepository interface {
	IncrementSent(ctx context.Context, day time.Time, channel entity.Channel) error
	UpsertCampaignPerformance(ctx context.Context, perf *entity.CampaignPerformance) error
}

// EmailProvider delivers one email. Implementations: SendGrid, Mailgun,
// direct SMTP.
type EmailProvider interface {
	Name() string
	Send(ctx context.Context, to, subject, htmlBody, textBody string) (providerMessageID string, err error)
}

type SocialProvider interface {
	Name() string
	SendMessage(ctx context.Context, profileURL, subject, body string) (providerMessageID string, err error)
}

type MessagingProvider interface {
	Name() string
	SendText(ctx context.Context, phone, body string) (providerMessageID string, err error)
}

// LeadCandidate is a raw discovery result before persistence.
type LeadCandidate struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Company        string `json:"company,omitempty"`
	Position       string `json:"position,omitempty"`
	Industry       string `json:"industry,omitempty"`
	Location       string `json:"location,omitempty"`
	LinkedInURL    string `json:"linkedin_url,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Employees      string `json:"employees,omitempty"`
	BuyingSignals  string `json:"buying_signals,omitempty"`
	Source         string `json:"source,omitempty"`
}

// DiscoverySource is the external lead-acquisition collaborator.
type DiscoverySource interface {
	Discover(ctx context.Context, industries, locations []string, limitPerQuery int) ([]LeadCandidate, error)
}

// ReportWriter persists a daily report and returns its location.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) (string, error)
}

// EventMeta carries transport metadata on inbound engagement signals.
type EventMeta struct {
	UserAgent string
	IPAddress string
}

// EventSink receives engagement signals from HTTP handlers. Implemented by
// the queue producer (async path) and by SinkAdapter over the Tracker
// (direct path when no broker is configured).
type EventSink interface {
	Open(ctx context.Context, trackingID string, meta EventMeta) error
	Click(ctx context.Context, trackingID, url string, meta EventMeta) error
	Reply(ctx context.Context, messageID, content string) error
	Bounce(ctx context.Context, messageID, bounceType string) error
	Delivered(ctx context.Context, messageID string) error
}
