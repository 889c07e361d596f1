package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/usecase"
)

// WebhookHandler ingests provider callbacks: replies, bounces and delivery
// receipts keyed by our message id.
type WebhookHandler struct {
	Sink usecase.EventSink
	Log  *zap.Logger
}

func NewWebhookHandler(sink usecase.EventSink, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Sink: sink, Log: log}
}

func (h *WebhookHandler) HandleEmail(w http.ResponseWriter, r *http.Request) {
	var event struct {
		Event      string `json:"event"`
		MessageID  string `json:"message_id"`
		BounceType string `json:"bounce_type"`
		Content    string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if event.MessageID == "" {
		http.Error(w, "message_id is required", http.StatusBadRequest)
		return
	}

	var err error
	switch event.Event {
	case "reply":
		err = h.Sink.Reply(r.Context(), event.MessageID, event.Content)
	case "bounce":
		bounceType := event.BounceType
		if bounceType == "" {
			bounceType = "soft"
		}
		err = h.Sink.Bounce(r.Context(), event.MessageID, bounceType)
	case "delivered":
		err = h.Sink.Delivered(r.Context(), event.MessageID)
	default:
		// Providers send event types we don't track. Acknowledge so they
		// stop retrying.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err != nil {
		h.Log.Error("webhook event not ingested",
			zap.String("event", event.Event),
			zap.String("message_id", event.MessageID),
			zap.Error(err),
		)
		http.Error(w, "ingestion failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
