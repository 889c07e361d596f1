// Package metrics exposes the pipeline's Prometheus instrumentation. All
// collectors are registered at init through promauto and recorded through
// package-level helpers so callers never hold collector references.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbound_leads_discovered_total",
		Help: "Leads persisted by the discovery job.",
	})

	leadsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbound_leads_scored_total",
		Help: "Leads scored by the scoring job.",
	})

	messagesComposed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_messages_composed_total",
		Help: "Draft messages composed, by campaign.",
	}, []string{"campaign"})

	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_messages_sent_total",
		Help: "Messages delivered, by channel and provider.",
	}, []string{"channel", "provider"})

	sendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_send_failures_total",
		Help: "Transport failures, by channel.",
	}, []string{"channel"})

	rateLimitRefusals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbound_rate_limit_refusals_total",
		Help: "Send attempts refused by the daily or hourly ceiling.",
	})

	engagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_engagement_events_total",
		Help: "Engagement events ingested, by type.",
	}, []string{"type"})

	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_job_runs_total",
		Help: "Background job executions, by job and outcome.",
	}, []string{"job", "outcome"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_http_requests_total",
		Help: "HTTP requests served, by route and status class.",
	}, []string{"route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbound_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

func RecordLeadsDiscovered(n int)  { leadsDiscovered.Add(float64(n)) }
func RecordLeadsScored(n int)      { leadsScored.Add(float64(n)) }
func RecordComposed(campaign string) { messagesComposed.WithLabelValues(campaign).Inc() }

func RecordSend(channel, provider string) { messagesSent.WithLabelValues(channel, provider).Inc() }
func RecordSendFailure(channel string)    { sendFailures.WithLabelValues(channel).Inc() }
func RecordRateLimitRefusal()             { rateLimitRefusals.Inc() }

func RecordEngagementEvent(eventType string) { engagementEvents.WithLabelValues(eventType).Inc() }

func RecordJobRun(job string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	jobRuns.WithLabelValues(job, outcome).Inc()
}

func RecordHTTPRequest(route, status string)          { httpRequests.WithLabelValues(route, status).Inc() }
func ObserveHTTPDuration(route string, seconds float64) { httpDuration.WithLabelValues(route).Observe(seconds) }
