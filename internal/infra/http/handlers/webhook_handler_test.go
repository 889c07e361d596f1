package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func postWebhook(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/email", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleEmail(rec, req)
	return rec
}

func TestHandleEmailReply(t *testing.T) {
	sink := &fakeSink{}
	h := NewWebhookHandler(sink, zap.NewNop())

	rec := postWebhook(h, `{"event":"reply","message_id":"msg-1","content":"sounds interesting"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "reply", sink.events[0].kind)
	assert.Equal(t, "msg-1", sink.events[0].messageID)
	assert.Equal(t, "sounds interesting", sink.events[0].content)
}

func TestHandleEmailBounceDefaultsSoft(t *testing.T) {
	sink := &fakeSink{}
	h := NewWebhookHandler(sink, zap.NewNop())

	rec := postWebhook(h, `{"event":"bounce","message_id":"msg-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "bounce", sink.events[0].kind)
	assert.Equal(t, "soft", sink.events[0].bounceType)
}

func TestHandleEmailHardBounce(t *testing.T) {
	sink := &fakeSink{}
	h := NewWebhookHandler(sink, zap.NewNop())

	rec := postWebhook(h, `{"event":"bounce","message_id":"msg-1","bounce_type":"hard"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "hard", sink.events[0].bounceType)
}

func TestHandleEmailDelivered(t *testing.T) {
	sink := &fakeSink{}
	h := NewWebhookHandler(sink, zap.NewNop())

	rec := postWebhook(h, `{"event":"delivered","message_id":"msg-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "delivered", sink.events[0].kind)
}

func TestHandleEmailIgnoresUnknownEvents(t *testing.T) {
	sink := &fakeSink{}
	h := NewWebhookHandler(sink, zap.NewNop())

	rec := postWebhook(h, `{"event":"processed","message_id":"msg-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sink.events)
}

func TestHandleEmailValidation(t *testing.T) {
	h := NewWebhookHandler(&fakeSink{}, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, postWebhook(h, `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postWebhook(h, `{"event":"reply"}`).Code)
}

func TestHandleEmailSinkFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("db down")}
	h := NewWebhookHandler(sink, zap.NewNop())

	rec := postWebhook(h, `{"event":"reply","message_id":"msg-1","content":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
