package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/config"
	"github.com/atlasai/outbound/internal/entity"
	"github.com/atlasai/outbound/internal/infra/metrics"
)

// ChannelAuto asks the dispatcher to pick the best channel for the lead.
const ChannelAuto entity.Channel = "auto"

var linkRe = regexp.MustCompile(`https?://[^\s<>"]+`)

// DeliveryResult is the outcome of one send attempt.
type DeliveryResult struct {
	Success           bool           `json:"success"`
	Channel           entity.Channel `json:"channel"`
	Provider          string         `json:"provider,omitempty"`
	ProviderMessageID string         `json:"provider_message_id,omitempty"`
	TrackingID        string         `json:"tracking_id,omitempty"`
	Error             string         `json:"error,omitempty"`
}

// Dispatcher selects a channel, enforces the send ceilings, delivers via the
// first configured provider for that channel, and records the outcome.
// There is no provider fallback within a single attempt: a failed message
// stays failed until the operator requeues it.
type Dispatcher struct {
	messages MessageRepository
	leads    LeadRepository
	sendlog  MetricRepository

	email  []EmailProvider
	social SocialProvider
	sms    MessagingProvider

	gate         *SendGate
	cfg          config.Dispatcher
	trackingBase string
	log          *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewDispatcher(
	messages MessageRepository,
	leads LeadRepository,
	sendlog MetricRepository,
	email []EmailProvider,
	social SocialProvider,
	sms MessagingProvider,
	gate *SendGate,
	cfg config.Dispatcher,
	trackingBase string,
	rnd *rand.Rand,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		messages:     messages,
		leads:        leads,
		sendlog:      sendlog,
		email:        email,
		social:       social,
		sms:          sms,
		gate:         gate,
		cfg:          cfg,
		trackingBase: strings.TrimRight(trackingBase, "/"),
		rnd:          rnd,
		log:          log,
		now:          time.Now,
	}
}

// Send delivers one message to one lead. Rate-limit refusals are reported
// with ErrRateLimitExceeded before any transport is contacted and leave both
// the message and the counters untouched.
func (d *Dispatcher) Send(ctx context.Context, lead *entity.Lead, msg *entity.Message, channel entity.Channel) (*DeliveryResult, error) {
	resolved, err := resolveChannel(lead, channel)
	if err != nil {
		result := &DeliveryResult{Channel: resolved, Error: "no contact handle available for lead"}
		d.markFailed(ctx, msg, resolved, result.Error)
		return result, err
	}

	if !d.gate.TryAcquire() {
		metrics.RecordRateLimitRefusal()
		return &DeliveryResult{Channel: resolved, Error: "daily or hourly send limit reached"}, ErrRateLimitExceeded
	}

	now := d.now()
	trackingID := fmt.Sprintf("atlas_%s_%d", lead.ID, now.Unix())

	callCtx := ctx
	if d.cfg.TransportTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(d.cfg.TransportTimeoutSeconds)*time.Second)
		defer cancel()
	}

	provider, providerID, sendErr := d.deliver(callCtx, resolved, lead, msg, trackingID)

	result := &DeliveryResult{
		Channel:    resolved,
		Provider:   provider,
		TrackingID: trackingID,
	}

	if sendErr != nil {
		d.gate.Release()
		result.Error = sendErr.Error()
		d.markFailed(ctx, msg, resolved, result.Error)
		metrics.RecordSendFailure(string(resolved))
		d.pace(ctx)
		return result, &TransportError{Provider: provider, Err: sendErr}
	}

	result.Success = true
	result.ProviderMessageID = providerID

	if err := d.messages.MarkSent(ctx, msg.ID, resolved, trackingID, now); err != nil {
		d.log.Error("send succeeded but message update failed",
			zap.String("message_id", msg.ID), zap.Error(err))
	}
	if err := d.leads.MarkContacted(ctx, lead.ID, now); err != nil {
		d.log.Error("send succeeded but lead update failed",
			zap.String("lead_id", lead.ID), zap.Error(err))
	}
	if err := d.sendlog.IncrementSent(ctx, now, resolved); err != nil {
		d.log.Warn("failed to increment send metric", zap.Error(err))
	}
	metrics.RecordSend(string(resolved), provider)

	d.log.Info("message sent",
		zap.String("message_id", msg.ID),
		zap.String("lead_id", lead.ID),
		zap.String("channel", string(resolved)),
		zap.String("provider", provider),
	)

	d.pace(ctx)
	return result, nil
}

// ProcessQueue dispatches draft messages in lead-score order. A rate-limit
// refusal stops the pass; the blocking message is not skipped.
func (d *Dispatcher) ProcessQueue(ctx context.Context, limit int) ([]*DeliveryResult, error) {
	items, err := d.messages.DraftQueue(ctx, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*DeliveryResult, 0, len(items))
	for _, item := range items {
		res, err := d.Send(ctx, item.Lead, item.Message, ChannelAuto)
		results = append(results, res)

		if errors.Is(err, ErrRateLimitExceeded) {
			d.log.Warn("send limits reached, stopping queue pass",
				zap.Int("processed", len(results)-1))
			break
		}
		if err != nil {
			d.log.Warn("dispatch failed",
				zap.String("message_id", item.Message.ID),
				zap.Error(err),
			)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return results, nil
}

func (d *Dispatcher) deliver(ctx context.Context, channel entity.Channel, lead *entity.Lead, msg *entity.Message, trackingID string) (provider, providerID string, err error) {
	switch channel {
	case entity.ChannelEmail:
		if len(d.email) == 0 {
			return "", "", ErrChannelUnavailable
		}
		p := d.email[0]
		html, text := d.instrument(msg.Body, trackingID)
		id, err := p.Send(ctx, lead.Email, msg.Subject, html, text)
		return p.Name(), id, err

	case entity.ChannelLinkedIn:
		if d.social == nil {
			return "", "", ErrChannelUnavailable
		}
		id, err := d.social.SendMessage(ctx, lead.LinkedInURL, msg.Subject, msg.Body)
		return d.social.Name(), id, err

	case entity.ChannelWhatsApp:
		if d.sms == nil {
			return "", "", ErrChannelUnavailable
		}
		id, err := d.sms.SendText(ctx, lead.Phone, msg.Body)
		return d.sms.Name(), id, err

	default:
		return "", "", ErrChannelUnavailable
	}
}

// instrument embeds the invisible open pixel and routes outbound links
// through the click redirect, correlating inbound events to this message.
func (d *Dispatcher) instrument(body, trackingID string) (html, text string) {
	html = linkRe.ReplaceAllStringFunc(body, func(u string) string {
		return fmt.Sprintf("%s/t/c/%s?u=%s", d.trackingBase, trackingID, url.QueryEscape(u))
	})
	html = strings.ReplaceAll(html, "\n", "<br>")
	html += fmt.Sprintf(`<img src="%s/t/o/%s" width="1" height="1" style="display:none;">`, d.trackingBase, trackingID)
	return html, body
}

func (d *Dispatcher) markFailed(ctx context.Context, msg *entity.Message, channel entity.Channel, errMsg string) {
	if err := d.messages.MarkFailed(ctx, msg.ID, channel, errMsg); err != nil {
		d.log.Error("failed to mark message failed",
			zap.String("message_id", msg.ID), zap.Error(err))
	}
}

// pace sleeps a jittered interval around the configured mean so consecutive
// sends from this worker don't burst. Concurrent workers coordinate through
// the shared gate, not this delay.
func (d *Dispatcher) pace(ctx context.Context) {
	if d.cfg.SendDelaySeconds <= 0 {
		return
	}

	d.mu.Lock()
	factor := 0.5 + d.rnd.Float64()
	d.mu.Unlock()

	delay := time.Duration(float64(d.cfg.SendDelaySeconds) * factor * float64(time.Second))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func resolveChannel(lead *entity.Lead, requested entity.Channel) (entity.Channel, error) {
	if requested != ChannelAuto && requested != "" {
		if !channelReachable(lead, requested) {
			return requested, ErrChannelUnavailable
		}
		return requested, nil
	}

	switch {
	case lead.Email != "":
		return entity.ChannelEmail, nil
	case lead.LinkedInURL != "":
		return entity.ChannelLinkedIn, nil
	case lead.Phone != "":
		return entity.ChannelWhatsApp, nil
	default:
		// Default to email so the failure is recorded against a channel.
		return entity.ChannelEmail, ErrChannelUnavailable
	}
}

func channelReachable(lead *entity.Lead, ch entity.Channel) bool {
	switch ch {
	case entity.ChannelEmail:
		return lead.Email != ""
	case entity.ChannelLinkedIn:
		return lead.LinkedInURL != ""
	case entity.ChannelWhatsApp:
		return lead.Phone != ""
	default:
		return false
	}
}
