package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/config"
)

// Report is the daily performance snapshot handed to the report writer.
type Report struct {
	GeneratedAt time.Time          `json:"generated_at"`
	PeriodDays  int                `json:"period_days"`
	Totals      CampaignMetrics    `json:"totals"`
	Campaigns   []*CampaignMetrics `json:"campaigns"`
	SendTimes   *SendTimeAnalysis  `json:"send_times"`
	TopLeads    []EngagedLead      `json:"top_engaged_leads"`
	LeadQuality *LeadQuality       `json:"lead_quality"`
	Insights    []string           `json:"insights"`
}

// Reporter assembles the daily report from the tracker's derived metrics
// and writes it through the configured writer.
type Reporter struct {
	tracker   *Tracker
	leads     LeadRepository
	messages  MessageRepository
	writer    ReportWriter
	campaigns []string
	days      int
	floors    config.Optimization
	log       *zap.Logger
	now       func() time.Time
}

func NewReporter(tracker *Tracker, leads LeadRepository, messages MessageRepository, writer ReportWriter, campaigns []string, days int, floors config.Optimization, log *zap.Logger) *Reporter {
	if days <= 0 {
		days = 7
	}
	return &Reporter{
		tracker:   tracker,
		leads:     leads,
		messages:  messages,
		writer:    writer,
		campaigns: campaigns,
		days:      days,
		floors:    floors,
		log:       log,
		now:       time.Now,
	}
}

// GenerateDaily builds and persists the report for the trailing window.
// It returns the report and the location the writer stored it at.
func (r *Reporter) GenerateDaily(ctx context.Context) (*Report, string, error) {
	now := r.now()
	since := now.AddDate(0, 0, -r.days)

	report := &Report{
		GeneratedAt: now,
		PeriodDays:  r.days,
	}

	for _, campaign := range r.campaigns {
		m, err := r.tracker.CampaignMetrics(ctx, campaign, since)
		if err != nil {
			return nil, "", fmt.Errorf("campaign metrics for %s: %w", campaign, err)
		}
		report.Campaigns = append(report.Campaigns, m)
		report.Totals.Sent += m.Sent
		report.Totals.Delivered += m.Delivered
		report.Totals.Opened += m.Opened
		report.Totals.Clicked += m.Clicked
		report.Totals.Replied += m.Replied
		report.Totals.Bounced += m.Bounced
	}
	report.Totals.Campaign = "all"
	report.Totals.OpenRate = rate(report.Totals.Opened, report.Totals.Delivered)
	report.Totals.ClickRate = rate(report.Totals.Clicked, report.Totals.Opened)
	report.Totals.ReplyRate = rate(report.Totals.Replied, report.Totals.Delivered)
	report.Totals.BounceRate = rate(report.Totals.Bounced, report.Totals.Sent)

	sendTimes, err := r.tracker.OptimalSendTimes(ctx, since)
	if err != nil {
		return nil, "", fmt.Errorf("send time analysis: %w", err)
	}
	report.SendTimes = sendTimes

	topLeads, err := r.messages.TopEngagedLeads(ctx, since, 10)
	if err != nil {
		return nil, "", fmt.Errorf("top engaged leads: %w", err)
	}
	report.TopLeads = topLeads

	quality, err := r.leads.QualitySummary(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("lead quality: %w", err)
	}
	report.LeadQuality = quality

	report.Insights = r.insights(report)

	location, err := r.writer.Write(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("write report: %w", err)
	}

	r.log.Info("daily report generated",
		zap.String("location", location),
		zap.Int("sent", report.Totals.Sent),
		zap.Float64("open_rate", report.Totals.OpenRate),
	)
	return report, location, nil
}

// insights turns the aggregates into operator-facing recommendations. Only
// windows with actual sends produce rate insights.
func (r *Reporter) insights(report *Report) []string {
	var out []string
	t := report.Totals

	if t.Sent == 0 {
		out = append(out, "No messages sent in this period. Check dispatcher configuration and send limits.")
		return out
	}

	if t.Delivered > 0 && t.OpenRate < r.floors.OpenRateFloor {
		out = append(out, fmt.Sprintf(
			"Open rate %.1f%% is below the %.1f%% target. Consider testing new subject lines.",
			t.OpenRate, r.floors.OpenRateFloor))
	}
	if t.Opened > 0 && t.ClickRate < r.floors.ClickRateFloor {
		out = append(out, fmt.Sprintf(
			"Click rate %.1f%% is below the %.1f%% target. Consider stronger calls to action.",
			t.ClickRate, r.floors.ClickRateFloor))
	}
	if t.Delivered > 0 && t.ReplyRate < r.floors.ReplyRateFloor {
		out = append(out, fmt.Sprintf(
			"Reply rate %.1f%% is below the %.1f%% target. Consider deeper personalization.",
			t.ReplyRate, r.floors.ReplyRateFloor))
	}
	if t.BounceRate > 5 {
		out = append(out, fmt.Sprintf(
			"Bounce rate %.1f%% is high. Review lead email quality before sending more.",
			t.BounceRate))
	}

	if report.SendTimes != nil && len(report.SendTimes.BestHours) > 0 {
		best := report.SendTimes.BestHours[0]
		out = append(out, fmt.Sprintf(
			"Best performing send hour is %02d:00 (score %.1f). Schedule dispatch accordingly.",
			best.Bucket, best.Score))
	}

	if report.LeadQuality != nil && report.LeadQuality.Total > 0 && report.LeadQuality.AverageScore < 200 {
		out = append(out, fmt.Sprintf(
			"Average lead score %.0f is low. Tighten discovery targeting toward higher-value industries.",
			report.LeadQuality.AverageScore))
	}

	if len(out) == 0 {
		out = append(out, "All engagement metrics are within targets.")
	}
	return out
}
