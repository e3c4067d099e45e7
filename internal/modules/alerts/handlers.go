package alerts

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles alert HTTP requests
type Handler struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandler creates a new alert handler
func NewHandler(service *Service, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "alerts").Logger(),
	}
}

// Routes mounts the alert routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleListActive)
	r.Get("/summary", h.HandleSummary)
	r.Post("/run-checks", h.HandleRunChecks)
	r.Post("/{alertID}/acknowledge", h.HandleAcknowledge)
	r.Get("/company/{companyID}", h.HandleListForCompany)
}

// HandleListActive returns all unacknowledged alerts
func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.repo.GetActive()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": active})
}

// HandleListForCompany returns all alerts for one company
func (h *Handler) HandleListForCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	alerts, err := h.repo.GetForCompany(companyID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// HandleSummary returns unacknowledged alert counts by severity and type
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleRunChecks executes every check for every company and returns the
// newly triggered alerts
func (h *Handler) HandleRunChecks(w http.ResponseWriter, r *http.Request) {
	triggered, err := h.service.RunAllChecks()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"triggered": triggered,
		"count":     len(triggered),
	})
}

// HandleAcknowledge marks an alert as acknowledged
func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	alertID, err := strconv.ParseInt(chi.URLParam(r, "alertID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid alert id")
		return
	}
	if err := h.service.Acknowledge(alertID); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
