package valuation

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

// Handler handles valuation HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "valuation").Logger(),
	}
}

// Routes mounts the valuation routes
func (h *Handler) Routes(r chi.Router) {
	r.Post("/run-all", h.HandleRunAll)
	r.Post("/{companyID}/run", h.HandleRun)
	r.Get("/{companyID}/history", h.HandleHistory)
	r.Get("/{companyID}/sensitivity", h.HandleSensitivity)
}

type runRequest struct {
	Weights *domain.Weights `json:"weights,omitempty"`
	Persist *bool           `json:"persist,omitempty"`
	Notes   string          `json:"notes,omitempty"`
}

// validWeights requires overridden weights to be non-negative and sum to 1,
// which keeps the blend's weight redistribution mass-conserving
func validWeights(w *domain.Weights) bool {
	if w == nil {
		return true
	}
	if w.EVRevenue < 0 || w.EVEBITDA < 0 || w.GrowthAdjusted < 0 {
		return false
	}
	return math.Abs(w.Sum()-1.0) < 1e-6
}

// HandleRun runs the valuation pipeline for one company
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	var req runRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if !validWeights(req.Weights) {
		h.writeError(w, http.StatusBadRequest, "weights must be non-negative and sum to 1")
		return
	}
	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}

	result, err := h.service.Run(companyID, req.Weights, persist, req.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleRunAll runs valuations for every tracked company. Per-company
// failures appear in the response alongside successful results.
func (h *Handler) HandleRunAll(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if !validWeights(req.Weights) {
		h.writeError(w, http.StatusBadRequest, "weights must be non-negative and sum to 1")
		return
	}
	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}

	items, err := h.service.RunAll(req.Weights, persist)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"results": items})
}

// HandleHistory returns persisted valuation snapshots, newest first
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	snapshots, err := h.service.History(companyID, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": snapshots})
}

// HandleSensitivity runs the base/upside/downside scenario analysis
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	var stdDevs *float64
	if raw := r.URL.Query().Get("stddevs"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			h.writeError(w, http.StatusBadRequest, "stddevs must be a non-negative number")
			return
		}
		stdDevs = &value
	}

	result, err := h.service.Sensitivity(companyID, stdDevs, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid company id")
		return 0, false
	}
	return id, true
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
