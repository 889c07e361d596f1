package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasai/outbound/internal/config"
)

type captureWriter struct {
	report *Report
}

func (w *captureWriter) Write(ctx context.Context, r *Report) (string, error) {
	w.report = r
	return "reports/daily_report_20260310.json", nil
}

func newReporterFixture(t *testing.T) (*trackerFixture, *Reporter, *captureWriter) {
	t.Helper()
	f := newTrackerFixture(t)
	writer := &captureWriter{}
	reporter := NewReporter(f.tracker, f.leads, f.messages, writer,
		[]string{"general", "growth"}, 7, config.Default().Optimization, testLogger())
	reporter.now = func() time.Time { return f.now }
	return f, reporter, writer
}

func TestGenerateDailyAggregatesCampaigns(t *testing.T) {
	f, reporter, writer := newReporterFixture(t)
	sentAt := f.now.Add(-24 * time.Hour)

	f.addSent(t, "a", "general", sentAt, true, false, false)
	f.addSent(t, "b", "general", sentAt, true, true, false)
	f.addSent(t, "c", "growth", sentAt, false, false, false)

	report, location, err := reporter.GenerateDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "reports/daily_report_20260310.json", location)
	assert.Same(t, report, writer.report)

	assert.Equal(t, 7, report.PeriodDays)
	require.Len(t, report.Campaigns, 2)
	assert.Equal(t, 3, report.Totals.Sent)
	assert.Equal(t, 2, report.Totals.Opened)
	assert.Equal(t, 1, report.Totals.Clicked)

	require.NotNil(t, report.SendTimes)
	require.NotNil(t, report.LeadQuality)
	assert.NotEmpty(t, report.TopLeads)
	assert.NotEmpty(t, report.Insights)
}

func TestInsightsFlagWeakEngagement(t *testing.T) {
	f, reporter, _ := newReporterFixture(t)
	sentAt := f.now.Add(-24 * time.Hour)

	// Ten sends with one open: 10% open rate, under the 15% floor.
	for i := 0; i < 10; i++ {
		f.addSent(t, string(rune('a'+i)), "general", sentAt, i == 0, false, false)
	}

	report, _, err := reporter.GenerateDaily(context.Background())
	require.NoError(t, err)

	joined := strings.Join(report.Insights, "\n")
	assert.Contains(t, joined, "subject lines")
	assert.Contains(t, joined, "personalization")
}

func TestInsightsNoSends(t *testing.T) {
	_, reporter, _ := newReporterFixture(t)

	report, _, err := reporter.GenerateDaily(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Insights, 1)
	assert.Contains(t, report.Insights[0], "No messages sent")
}

func TestInsightsHealthyMetrics(t *testing.T) {
	f, reporter, _ := newReporterFixture(t)
	sentAt := f.now.Add(-24 * time.Hour)

	// Every message opened, clicked and replied: all floors cleared.
	for i := 0; i < 5; i++ {
		f.addSent(t, string(rune('a'+i)), "general", sentAt, true, true, true)
	}

	report, _, err := reporter.GenerateDaily(context.Background())
	require.NoError(t, err)

	joined := strings.Join(report.Insights, "\n")
	assert.NotContains(t, joined, "subject lines")
	assert.NotContains(t, joined, "calls to action")
}
