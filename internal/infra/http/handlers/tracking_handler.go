package handlers

import (
	"net"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/usecase"
)

// transparent 1x1 GIF served by the open pixel.
var pixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackingHandler serves the open pixel and the click redirect. Both always
// respond to the client regardless of sink errors: a broken pixel or a dead
// redirect would be visible to the lead.
type TrackingHandler struct {
	Sink usecase.EventSink
	Log  *zap.Logger
}

func NewTrackingHandler(sink usecase.EventSink, log *zap.Logger) *TrackingHandler {
	return &TrackingHandler{Sink: sink, Log: log}
}

func (h *TrackingHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")

	if err := h.Sink.Open(r.Context(), trackingID, eventMeta(r)); err != nil {
		h.Log.Error("open event not ingested",
			zap.String("tracking_id", trackingID), zap.Error(err))
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Write(pixel)
}

func (h *TrackingHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")
	target := r.URL.Query().Get("u")

	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		http.Error(w, "invalid redirect target", http.StatusBadRequest)
		return
	}

	if err := h.Sink.Click(r.Context(), trackingID, target, eventMeta(r)); err != nil {
		h.Log.Error("click event not ingested",
			zap.String("tracking_id", trackingID), zap.Error(err))
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func eventMeta(r *http.Request) usecase.EventMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip, _, _ = net.SplitHostPort(r.RemoteAddr)
	}
	return usecase.EventMeta{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}
