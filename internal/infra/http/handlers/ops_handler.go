package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/usecase"
)

// OpsHandler exposes operator actions: pipeline status, requeueing failed
// messages and generating a report outside the nightly schedule.
type OpsHandler struct {
	Messages     usecase.MessageRepository
	Gate         *usecase.SendGate
	Orchestrator *usecase.Orchestrator
	Reporter     *usecase.Reporter
	Log          *zap.Logger
}

func NewOpsHandler(messages usecase.MessageRepository, gate *usecase.SendGate, orchestrator *usecase.Orchestrator, reporter *usecase.Reporter, log *zap.Logger) *OpsHandler {
	return &OpsHandler{
		Messages:     messages,
		Gate:         gate,
		Orchestrator: orchestrator,
		Reporter:     reporter,
		Log:          log,
	}
}

func (h *OpsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	daily, hourly := h.Gate.Counts()
	minScore, personalization := h.Orchestrator.Thresholds()

	writeJSON(w, http.StatusOK, map[string]any{
		"sent_today":                daily,
		"sent_last_hour":            hourly,
		"min_score_threshold":       minScore,
		"personalization_threshold": personalization,
	})
}

// HandleRequeue promotes all failed messages back to draft. Failed sends
// are never retried automatically, so this is the recovery path after a
// provider outage.
func (h *OpsHandler) HandleRequeue(w http.ResponseWriter, r *http.Request) {
	n, err := h.Messages.RequeueFailed(r.Context())
	if err != nil {
		h.Log.Error("requeue failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("failed messages requeued", zap.Int("count", n))
	writeJSON(w, http.StatusOK, map[string]any{"requeued": n})
}

func (h *OpsHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	report, location, err := h.Reporter.GenerateDaily(r.Context())
	if err != nil {
		h.Log.Error("report generation failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location": location,
		"report":   report,
	})
}
