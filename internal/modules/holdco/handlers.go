package holdco

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles portfolio-level HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new holdco handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "holdco").Logger(),
	}
}

// Routes mounts the portfolio routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/nav", h.HandleNAV)
	r.Post("/nav/snapshot", h.HandleNAVSnapshot)
	r.Get("/summary", h.HandleSummary)
	r.Get("/concentration", h.HandleConcentration)
	r.Get("/history", h.HandleHistory)
}

type navRequest struct {
	HoldCoCash        *float64 `json:"holdco_cash,omitempty"`
	HoldCoDebt        *float64 `json:"holdco_debt,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
}

// HandleNAV computes NAV without persisting a snapshot
func (h *Handler) HandleNAV(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CalculateNAV(nil, nil, nil, false)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleNAVSnapshot computes NAV and persists it as a dated snapshot
func (h *Handler) HandleNAVSnapshot(w http.ResponseWriter, r *http.Request) {
	var req navRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	result, err := h.service.CalculateNAV(req.HoldCoCash, req.HoldCoDebt, req.SharesOutstanding, true)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleSummary returns the portfolio summary view
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleConcentration returns the descending concentration ranking
func (h *Handler) HandleConcentration(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Concentration()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"concentration": entries})
}

// HandleHistory returns the NAV time series, oldest first
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	periods, _ := strconv.Atoi(r.URL.Query().Get("periods"))
	snapshots, err := h.service.TimeSeries(periods)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": snapshots})
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
