package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/usecase"
)

type capturedEvent struct {
	kind       string
	trackingID string
	messageID  string
	url        string
	content    string
	bounceType string
	meta       usecase.EventMeta
}

type fakeSink struct {
	events []capturedEvent
	err    error
}

func (s *fakeSink) Open(_ context.Context, trackingID string, meta usecase.EventMeta) error {
	s.events = append(s.events, capturedEvent{kind: "open", trackingID: trackingID, meta: meta})
	return s.err
}

func (s *fakeSink) Click(_ context.Context, trackingID, target string, meta usecase.EventMeta) error {
	s.events = append(s.events, capturedEvent{kind: "click", trackingID: trackingID, url: target, meta: meta})
	return s.err
}

func (s *fakeSink) Reply(_ context.Context, messageID, content string) error {
	s.events = append(s.events, capturedEvent{kind: "reply", messageID: messageID, content: content})
	return s.err
}

func (s *fakeSink) Bounce(_ context.Context, messageID, bounceType string) error {
	s.events = append(s.events, capturedEvent{kind: "bounce", messageID: messageID, bounceType: bounceType})
	return s.err
}

func (s *fakeSink) Delivered(_ context.Context, messageID string) error {
	s.events = append(s.events, capturedEvent{kind: "delivered", messageID: messageID})
	return s.err
}

func trackingRouter(sink usecase.EventSink) http.Handler {
	h := NewTrackingHandler(sink, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/t/o/{trackingID}", h.HandleOpen)
	r.Get("/t/c/{trackingID}", h.HandleClick)
	return r
}

func TestHandleOpenServesPixel(t *testing.T) {
	sink := &fakeSink{}
	router := trackingRouter(sink)

	req := httptest.NewRequest(http.MethodGet, "/t/o/atlas_ld-1_1700000000", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, pixel, rec.Body.Bytes())

	require.Len(t, sink.events, 1)
	assert.Equal(t, "open", sink.events[0].kind)
	assert.Equal(t, "atlas_ld-1_1700000000", sink.events[0].trackingID)
	assert.Equal(t, "Mozilla/5.0", sink.events[0].meta.UserAgent)
	assert.Equal(t, "203.0.113.9", sink.events[0].meta.IPAddress)
}

func TestHandleOpenServesPixelWhenSinkFails(t *testing.T) {
	sink := &fakeSink{err: errors.New("queue down")}
	router := trackingRouter(sink)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t/o/atlas_ld-1_1700000000", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pixel, rec.Body.Bytes())
}

func TestHandleClickRedirects(t *testing.T) {
	sink := &fakeSink{}
	router := trackingRouter(sink)

	target := "https://example.com/demo?ref=1"
	req := httptest.NewRequest(http.MethodGet,
		"/t/c/atlas_ld-1_1700000000?u="+url.QueryEscape(target), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, target, rec.Header().Get("Location"))

	require.Len(t, sink.events, 1)
	assert.Equal(t, "click", sink.events[0].kind)
	assert.Equal(t, target, sink.events[0].url)
}

func TestHandleClickRejectsBadTarget(t *testing.T) {
	for _, target := range []string{"", "javascript:alert(1)", "ftp://example.com"} {
		sink := &fakeSink{}
		router := trackingRouter(sink)

		req := httptest.NewRequest(http.MethodGet,
			"/t/c/atlas_ld-1_1700000000?u="+url.QueryEscape(target), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %q", target)
		assert.Empty(t, sink.events)
	}
}

func TestHandleClickRedirectsWhenSinkFails(t *testing.T) {
	sink := &fakeSink{err: errors.New("queue down")}
	router := trackingRouter(sink)

	req := httptest.NewRequest(http.MethodGet,
		"/t/c/atlas_ld-1_1700000000?u="+url.QueryEscape("https://example.com"), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Location"))
}
