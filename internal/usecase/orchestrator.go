package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atlasai/outbound/internal/config"
	"github.com/atlasai/outbound/internal/infra/metrics"
)

// Orchestrator supervises the pipeline's background jobs. Each job runs on
// its own schedule; a failing run is logged and counted, never fatal to the
// other jobs. Runtime thresholds adjusted by the nightly optimization pass
// are guarded by a mutex because job goroutines read them concurrently.
type Orchestrator struct {
	finder     *Finder
	scorer     *Scorer
	composer   *Composer
	dispatcher *Dispatcher
	tracker    *Tracker
	reporter   *Reporter
	leads      LeadRepository
	messages   MessageRepository
	cfg        *config.Config
	log        *zap.Logger

	mu                       sync.Mutex
	minScore                 int
	personalizationThreshold int
	campaignIdx              int

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewOrchestrator(
	finder *Finder,
	scorer *Scorer,
	composer *Composer,
	dispatcher *Dispatcher,
	tracker *Tracker,
	reporter *Reporter,
	leads LeadRepository,
	messages MessageRepository,
	cfg *config.Config,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		finder:                   finder,
		scorer:                   scorer,
		composer:                 composer,
		dispatcher:               dispatcher,
		tracker:                  tracker,
		reporter:                 reporter,
		leads:                    leads,
		messages:                 messages,
		cfg:                      cfg,
		log:                      log,
		minScore:                 cfg.Scoring.MinScoreThreshold,
		personalizationThreshold: cfg.Composer.PersonalizationThreshold,
	}
}

// Start launches the job schedules and returns. Jobs stop when Stop is
// called or the parent context is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	o.group = g

	// Initial pass so a fresh deployment has scored leads, a drained draft
	// backlog and a baseline report before the first ticks.
	o.runJob(gctx, "assessment", o.assessmentJob)
	o.runJob(gctx, "scoring", o.scoringJob)
	o.runJob(gctx, "dispatch", func(ctx context.Context) error {
		_, err := o.dispatcher.ProcessQueue(ctx, 5)
		return err
	})
	o.runJob(gctx, "report", o.reportJob)

	if o.cfg.Discovery.Enabled {
		if o.cfg.Discovery.Schedule == "hourly" {
			o.every(g, gctx, "discovery", time.Hour, o.discoveryJob)
		} else {
			o.dailyAt(g, gctx, "discovery", o.cfg.Discovery.Time, o.discoveryJob)
		}
	}
	if o.cfg.Scoring.Enabled {
		o.every(g, gctx, "scoring", minutes(o.cfg.Scoring.IntervalMinutes, 30), o.scoringJob)
	}
	if o.cfg.Composer.Enabled {
		o.every(g, gctx, "composition", minutes(o.cfg.Composer.IntervalMinutes, 15), o.compositionJob)
	}
	if o.cfg.Dispatcher.Enabled {
		o.every(g, gctx, "dispatch", minutes(o.cfg.Dispatcher.IntervalMinutes, 60), o.dispatchJob)
	}
	if o.cfg.Tracking.Enabled {
		o.every(g, gctx, "aggregation", minutes(o.cfg.Tracking.AggregateIntervalMinutes, 10), o.aggregationJob)
		o.dailyAt(g, gctx, "report", o.cfg.Tracking.ReportTime, o.reportJob)
	}
	if o.cfg.Optimization.Enabled {
		o.dailyAt(g, gctx, "optimization", o.cfg.Optimization.Time, o.optimizationJob)
	}

	o.log.Info("orchestrator started")
}

// Stop cancels all jobs and waits for in-flight runs to return.
func (o *Orchestrator) Stop() {
	if o.cancel == nil {
		return
	}
	o.cancel()
	_ = o.group.Wait()
	o.log.Info("orchestrator stopped")
}

func (o *Orchestrator) every(g *errgroup.Group, ctx context.Context, name string, interval time.Duration, job func(context.Context) error) {
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				o.runJob(ctx, name, job)
			}
		}
	})
}

func (o *Orchestrator) dailyAt(g *errgroup.Group, ctx context.Context, name, clock string, job func(context.Context) error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		o.log.Warn("invalid schedule time, defaulting to 09:00",
			zap.String("job", name), zap.String("time", clock))
		hour, minute = 9, 0
	}

	g.Go(func() error {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
				o.runJob(ctx, name, job)
			}
		}
	})
}

func (o *Orchestrator) runJob(ctx context.Context, name string, job func(context.Context) error) {
	start := time.Now()
	err := job(ctx)
	metrics.RecordJobRun(name, err)
	if err != nil {
		o.log.Error("job failed",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	o.log.Debug("job complete",
		zap.String("job", name),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// assessmentJob surveys the last day's discovery volume at startup so the
// first log lines show whether the pipeline has fresh leads to work with.
func (o *Orchestrator) assessmentJob(ctx context.Context) error {
	recent, err := o.leads.CountFoundSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return err
	}
	o.log.Info("startup assessment", zap.Int("leads_found_last_24h", recent))
	return nil
}

func (o *Orchestrator) discoveryJob(ctx context.Context) error {
	_, err := o.finder.Run(ctx)
	return err
}

func (o *Orchestrator) scoringJob(ctx context.Context) error {
	_, err := o.scorer.ScoreAll(ctx)
	return err
}

// compositionJob drafts messages for the current campaign from the highest
// scoring uncontacted leads. Campaigns rotate one per tick. Leads messaged
// within the last week and leads whose profiles cannot support the
// personalization threshold are skipped.
func (o *Orchestrator) compositionJob(ctx context.Context) error {
	o.mu.Lock()
	minScore := o.minScore
	threshold := o.personalizationThreshold
	campaign := o.cfg.Composer.Campaigns[o.campaignIdx%len(o.cfg.Composer.Campaigns)]
	o.campaignIdx++
	o.mu.Unlock()

	leads, err := o.scorer.TopLeads(ctx, o.cfg.Composer.BatchSize, minScore)
	if err != nil {
		return err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	composed := 0
	for _, lead := range leads {
		if !lead.Contactable() {
			continue
		}
		if PersonalizationScore(lead) < threshold {
			continue
		}
		recent, err := o.messages.HasMessageSince(ctx, lead.ID, weekAgo)
		if err != nil {
			return err
		}
		if recent {
			continue
		}

		if _, err := o.composer.Compose(ctx, lead, campaign, ToneAuto); err != nil {
			o.log.Warn("compose failed",
				zap.String("lead_id", lead.ID), zap.Error(err))
			continue
		}
		metrics.RecordComposed(campaign)
		composed++
	}

	o.log.Info("composition pass complete",
		zap.String("campaign", campaign),
		zap.Int("candidates", len(leads)),
		zap.Int("composed", composed),
	)
	return nil
}

func (o *Orchestrator) dispatchJob(ctx context.Context) error {
	_, err := o.dispatcher.ProcessQueue(ctx, o.cfg.Dispatcher.BatchSize)
	return err
}

func (o *Orchestrator) aggregationJob(ctx context.Context) error {
	return o.tracker.RebuildCampaignPerformance(ctx, o.cfg.Composer.Campaigns, time.Now())
}

func (o *Orchestrator) reportJob(ctx context.Context) error {
	_, _, err := o.reporter.GenerateDaily(ctx)
	return err
}

// optimizationJob nudges the runtime thresholds from the trailing week's
// engagement. Low open rates widen the composition funnel; weak reply
// rates tighten targeting toward higher scored leads.
func (o *Orchestrator) optimizationJob(ctx context.Context) error {
	since := time.Now().AddDate(0, 0, -7)

	var total CampaignMetrics
	for _, campaign := range o.cfg.Composer.Campaigns {
		m, err := o.tracker.CampaignMetrics(ctx, campaign, since)
		if err != nil {
			return err
		}
		total.Sent += m.Sent
		total.Delivered += m.Delivered
		total.Opened += m.Opened
		total.Replied += m.Replied
	}
	if total.Sent == 0 {
		return nil
	}

	openRate := rate(total.Opened, total.Delivered)
	replyRate := rate(total.Replied, total.Delivered)

	o.mu.Lock()
	defer o.mu.Unlock()

	if openRate < o.cfg.Optimization.OpenRateFloor && o.personalizationThreshold > 40 {
		o.personalizationThreshold -= 10
		o.log.Info("lowered personalization threshold",
			zap.Float64("open_rate", openRate),
			zap.Int("threshold", o.personalizationThreshold),
		)
	}
	if replyRate < o.cfg.Optimization.ReplyRateFloor && o.minScore < 500 {
		o.minScore += 25
		o.log.Info("raised minimum score threshold",
			zap.Float64("reply_rate", replyRate),
			zap.Int("min_score", o.minScore),
		)
	}
	return nil
}

// Thresholds reports the current runtime thresholds, for the status
// endpoint.
func (o *Orchestrator) Thresholds() (minScore, personalization int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.minScore, o.personalizationThreshold
}

func minutes(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Minute
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	return hour, minute, nil
}
