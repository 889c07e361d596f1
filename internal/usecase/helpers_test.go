package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/entity"
)

func testLogger() *zap.Logger { return zap.NewNop() }

// counterValue reads the current total of a counter family from the default
// registry. Counters are process-global, so callers compare before/after.
func counterValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	return 0
}

type fakeLeadRepo struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[string]*entity.Lead)}
}

func (r *fakeLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.leads {
		if lead.Email != "" && existing.Email == lead.Email {
			return ErrDuplicateLead
		}
	}
	if lead.ResponseStatus == "" {
		// Mirror the schema's DEFAULT 'none' on leads.response_status.
		lead.ResponseStatus = entity.ResponseNone
	}
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeLeadRepo) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return lead, nil
}

func (r *fakeLeadRepo) Unscored(ctx context.Context) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Lead
	for _, l := range r.leads {
		if l.Status == entity.LeadStatusNew {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) TopLeads(ctx context.Context, limit, minScore int) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Lead
	for _, l := range r.leads {
		if (l.Status == entity.LeadStatusNew || l.Status == entity.LeadStatusScored) && l.Score >= minScore {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLeadRepo) UpdateScore(ctx context.Context, id string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		l.Score = score
		l.Status = entity.LeadStatusScored
	}
	return nil
}

func (r *fakeLeadRepo) MarkContacted(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		l.LastContacted = &at
		if l.Status != entity.LeadStatusEngaged && l.Status != entity.LeadStatusInvalid {
			l.Status = entity.LeadStatusContacted
		}
	}
	return nil
}

func (r *fakeLeadRepo) MarkOpened(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok && l.ResponseStatus == entity.ResponseNone {
		l.ResponseStatus = entity.ResponseOpened
	}
	return nil
}

func (r *fakeLeadRepo) MarkClicked(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok &&
		(l.ResponseStatus == entity.ResponseNone || l.ResponseStatus == entity.ResponseOpened) {
		l.ResponseStatus = entity.ResponseClicked
	}
	return nil
}

func (r *fakeLeadRepo) MarkReplied(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		l.ResponseStatus = entity.ResponseReplied
		l.Status = entity.LeadStatusEngaged
	}
	return nil
}

func (r *fakeLeadRepo) MarkInvalid(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		l.Status = entity.LeadStatusInvalid
		l.ResponseStatus = entity.ResponseInvalidEmail
	}
	return nil
}

func (r *fakeLeadRepo) CountFoundSince(ctx context.Context, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, l := range r.leads {
		if !l.FoundAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeLeadRepo) QualitySummary(ctx context.Context) (*LeadQuality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := &LeadQuality{Distribution: map[string]int{}}
	sum := 0
	for _, l := range r.leads {
		if l.Status == entity.LeadStatusInvalid {
			continue
		}
		q.Total++
		sum += l.Score
		if l.Score > q.MaxScore {
			q.MaxScore = l.Score
		}
		switch {
		case l.Score >= 400:
			q.Distribution["high"]++
		case l.Score >= 200:
			q.Distribution["medium"]++
		default:
			q.Distribution["low"]++
		}
	}
	if q.Total > 0 {
		q.AverageScore = float64(sum) / float64(q.Total)
	}
	return q, nil
}

type fakeMessageRepo struct {
	mu    sync.Mutex
	msgs  map[string]*entity.Message
	leads *fakeLeadRepo
}

func newFakeMessageRepo(leads *fakeLeadRepo) *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[string]*entity.Message), leads: leads}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs[msg.ID] = msg
	return nil
}

func (r *fakeMessageRepo) FindByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.msgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return msg, nil
}

func (r *fakeMessageRepo) FindByTrackingID(ctx context.Context, trackingID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.TrackingID == trackingID && trackingID != "" {
			return m, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeMessageRepo) DraftQueue(ctx context.Context, limit int) ([]DraftItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []DraftItem
	for _, m := range r.msgs {
		if m.Status != entity.MessageStatusDraft {
			continue
		}
		lead, ok := r.leads.leads[m.LeadID]
		if !ok || lead.Status == entity.LeadStatusInvalid {
			continue
		}
		items = append(items, DraftItem{Message: m, Lead: lead})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Lead.Score > items[j].Lead.Score })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *fakeMessageRepo) MarkSent(ctx context.Context, id string, channel entity.Channel, trackingID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.msgs[id]; ok {
		m.Status = entity.MessageStatusSent
		m.Channel = channel
		m.TrackingID = trackingID
		m.SentAt = &at
		m.DeliveryStatus = entity.DeliveryPending
		m.ErrorMessage = ""
	}
	return nil
}

func (r *fakeMessageRepo) MarkFailed(ctx context.Context, id string, channel entity.Channel, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.msgs[id]; ok {
		m.Status = entity.MessageStatusFailed
		m.Channel = channel
		m.DeliveryStatus = entity.DeliveryFailed
		m.ErrorMessage = errMsg
	}
	return nil
}

func (r *fakeMessageRepo) SetOpenedAt(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.OpenedAt != nil {
		return false, nil
	}
	m.OpenedAt = &at
	return true, nil
}

func (r *fakeMessageRepo) SetClickedAt(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.ClickedAt != nil {
		return false, nil
	}
	m.ClickedAt = &at
	return true, nil
}

func (r *fakeMessageRepo) SetRepliedAt(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.RepliedAt != nil {
		return false, nil
	}
	m.RepliedAt = &at
	return true, nil
}

func (r *fakeMessageRepo) SetDeliveryStatus(ctx context.Context, id string, status entity.DeliveryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.msgs[id]; ok {
		m.DeliveryStatus = status
	}
	return nil
}

func (r *fakeMessageRepo) HasMessageSince(ctx context.Context, leadID string, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.LeadID == leadID && !m.GeneratedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMessageRepo) SentTimestampsSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, m := range r.msgs {
		if m.Status == entity.MessageStatusSent && m.SentAt != nil && !m.SentAt.Before(since) {
			out = append(out, *m.SentAt)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) LeadStats(ctx context.Context, leadID string) (MessageStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s MessageStats
	for _, m := range r.msgs {
		if m.LeadID != leadID || m.Status != entity.MessageStatusSent {
			continue
		}
		s.Total++
		if m.OpenedAt != nil {
			s.Opens++
		}
		if m.ClickedAt != nil {
			s.Clicks++
		}
		if m.RepliedAt != nil {
			s.Replies++
		}
	}
	return s, nil
}

func (r *fakeMessageRepo) CampaignStats(ctx context.Context, campaign string, since time.Time) (CampaignStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s CampaignStats
	for _, m := range r.msgs {
		if m.Campaign != campaign || m.Status != entity.MessageStatusSent ||
			m.SentAt == nil || m.SentAt.Before(since) {
			continue
		}
		s.Sent++
		if m.DeliveryStatus != entity.DeliveryBounced && m.DeliveryStatus != entity.DeliveryFailed {
			s.Delivered++
		}
		if m.OpenedAt != nil {
			s.Opened++
		}
		if m.ClickedAt != nil {
			s.Clicked++
		}
		if m.RepliedAt != nil {
			s.Replied++
		}
		if m.DeliveryStatus == entity.DeliveryBounced {
			s.Bounced++
		}
	}
	return s, nil
}

func (r *fakeMessageRepo) CampaignDaily(ctx context.Context, campaign string, day time.Time) (*entity.CampaignPerformance, error) {
	return nil, ErrNotFound
}

func (r *fakeMessageRepo) HourlyRollup(ctx context.Context, since time.Time) ([]TimeBucket, error) {
	return r.rollup(since, func(t time.Time) int { return t.Hour() })
}

func (r *fakeMessageRepo) WeekdayRollup(ctx context.Context, since time.Time) ([]TimeBucket, error) {
	return r.rollup(since, func(t time.Time) int { return int(t.Weekday()) })
}

func (r *fakeMessageRepo) rollup(since time.Time, bucket func(time.Time) int) ([]TimeBucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byBucket := map[int]*TimeBucket{}
	for _, m := range r.msgs {
		if m.Status != entity.MessageStatusSent || m.SentAt == nil || m.SentAt.Before(since) {
			continue
		}
		b := bucket(*m.SentAt)
		tb, ok := byBucket[b]
		if !ok {
			tb = &TimeBucket{Bucket: b}
			byBucket[b] = tb
		}
		tb.Sent++
		if m.OpenedAt != nil {
			tb.Opened++
		}
		if m.ClickedAt != nil {
			tb.Clicked++
		}
	}
	var out []TimeBucket
	for _, tb := range byBucket {
		out = append(out, *tb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}

func (r *fakeMessageRepo) TopEngagedLeads(ctx context.Context, since time.Time, limit int) ([]EngagedLead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byLead := map[string]*EngagedLead{}
	for _, m := range r.msgs {
		if m.Status != entity.MessageStatusSent || m.SentAt == nil || m.SentAt.Before(since) {
			continue
		}
		lead, ok := r.leads.leads[m.LeadID]
		if !ok {
			continue
		}
		e, ok := byLead[m.LeadID]
		if !ok {
			e = &EngagedLead{Name: lead.Name, Company: lead.Company, Email: lead.Email, ResponseStatus: lead.ResponseStatus}
			byLead[m.LeadID] = e
		}
		e.MessagesSent++
		if m.OpenedAt != nil {
			e.Opens++
		}
		if m.ClickedAt != nil {
			e.Clicks++
		}
		if m.RepliedAt != nil {
			e.Replies++
		}
	}
	var out []EngagedLead
	for _, e := range byLead {
		if e.Opens+e.Clicks+e.Replies > 0 {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Replies*3+out[i].Clicks*2+out[i].Opens > out[j].Replies*3+out[j].Clicks*2+out[j].Opens
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) RequeueFailed(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Status == entity.MessageStatusFailed {
			m.Status = entity.MessageStatusDraft
			m.DeliveryStatus = entity.DeliveryPending
			m.ErrorMessage = ""
			n++
		}
	}
	return n, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*entity.TrackingEvent
}

func newFakeEventRepo() *fakeEventRepo { return &fakeEventRepo{} }

func (r *fakeEventRepo) Append(ctx context.Context, ev *entity.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeEventRepo) Exists(ctx context.Context, messageID string, eventType entity.EventType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.MessageID == messageID && ev.EventType == eventType {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEventRepo) CountRecentByLead(ctx context.Context, leadID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, ev := range r.events {
		if ev.LeadID == leadID && !ev.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeEventRepo) byType(eventType entity.EventType) []*entity.TrackingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.TrackingEvent
	for _, ev := range r.events {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type fakeMetricRepo struct {
	mu       sync.Mutex
	sent     map[string]int
	upserted []*entity.CampaignPerformance
}

func newFakeMetricRepo() *fakeMetricRepo {
	return &fakeMetricRepo{sent: make(map[string]int)}
}

func (r *fakeMetricRepo) IncrementSent(ctx context.Context, day time.Time, channel entity.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[day.Format("2006-01-02")+"/"+string(channel)]++
	return nil
}

func (r *fakeMetricRepo) UpsertCampaignPerformance(ctx context.Context, perf *entity.CampaignPerformance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, perf)
	return nil
}

type mockEmailProvider struct {
	mock.Mock
	name string
}

func (m *mockEmailProvider) Name() string {
	if m.name == "" {
		return "mockmail"
	}
	return m.name
}

func (m *mockEmailProvider) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	args := m.Called(ctx, to, subject, htmlBody, textBody)
	return args.String(0), args.Error(1)
}

type mockSocialProvider struct {
	mock.Mock
}

func (m *mockSocialProvider) Name() string { return "mocksocial" }

func (m *mockSocialProvider) SendMessage(ctx context.Context, profileURL, subject, body string) (string, error) {
	args := m.Called(ctx, profileURL, subject, body)
	return args.String(0), args.Error(1)
}
