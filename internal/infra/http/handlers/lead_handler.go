package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/entity"
	"github.com/atlasai/outbound/internal/usecase"
)

type LeadHandler struct {
	Leads   usecase.LeadRepository
	Tracker *usecase.Tracker
	Log     *zap.Logger
}

func NewLeadHandler(leads usecase.LeadRepository, tracker *usecase.Tracker, log *zap.Logger) *LeadHandler {
	return &LeadHandler{Leads: leads, Tracker: tracker, Log: log}
}

// HandleCreate registers a lead manually, outside the discovery job.
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Company        string `json:"company"`
		Position       string `json:"position"`
		Industry       string `json:"industry"`
		Location       string `json:"location"`
		LinkedInURL    string `json:"linkedin_url"`
		CompanyWebsite string `json:"company_website"`
		Phone          string `json:"phone"`
		Employees      string `json:"employees"`
		BuyingSignals  string `json:"buying_signals"`
		Source         string `json:"source"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	source := input.Source
	if source == "" {
		source = "manual"
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Company,
		input.Position, input.Industry, input.Location, source)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	lead.LinkedInURL = input.LinkedInURL
	lead.CompanyWebsite = input.CompanyWebsite
	lead.Phone = input.Phone
	lead.Employees = input.Employees
	lead.BuyingSignals = input.BuyingSignals

	if err := h.Leads.Create(r.Context(), lead); err != nil {
		if errors.Is(err, usecase.ErrDuplicateLead) {
			http.Error(w, "lead already exists", http.StatusConflict)
			return
		}
		h.Log.Error("lead create failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")

	lead, err := h.Leads.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.Log.Error("lead lookup failed", zap.String("lead_id", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleEngagement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")

	score, err := h.Tracker.EngagementScore(r.Context(), id)
	if err != nil {
		h.Log.Error("engagement score failed", zap.String("lead_id", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lead_id":          id,
		"engagement_score": score,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
