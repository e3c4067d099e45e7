package comps

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

// Handler handles comp set and observation HTTP requests
type Handler struct {
	repo    *Repository
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new comps handler
func NewHandler(repo *Repository, service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		log:     log.With().Str("handler", "comps").Logger(),
	}
}

// CompanyRoutes mounts the per-company comp routes
func (h *Handler) CompanyRoutes(r chi.Router) {
	r.Get("/", h.HandleListForCompany)
	r.Post("/", h.HandleAdd)
	r.Get("/summary", h.HandleSummary)
	r.Post("/refresh", h.HandleRefreshCompany)
}

// Routes mounts the comp-level routes
func (h *Handler) Routes(r chi.Router) {
	r.Post("/refresh", h.HandleRefreshAll)
	r.Delete("/{compID}", h.HandleDelete)
	r.Get("/{compID}/observations", h.HandleHistory)
	r.Post("/{compID}/observations", h.HandleManualObservation)
}

// HandleListForCompany returns a company's comp set
func (h *Handler) HandleListForCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	comps, err := h.repo.GetForCompany(companyID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"comps": comps})
}

// HandleAdd registers a ticker in a company's comp set
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	var req struct {
		Ticker      string `json:"ticker"`
		CompanyName string `json:"company_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		h.writeError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	id, err := h.repo.AddComp(companyID, req.Ticker, req.CompanyName, "manual")
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// HandleSummary returns the company's current comp summary statistics
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	summary, err := h.service.Summary(companyID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleRefreshCompany refreshes comp data for one company
func (h *Handler) HandleRefreshCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	result, err := h.service.RefreshCompany(companyID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleRefreshAll refreshes comp data for every tracked company
func (h *Handler) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.RefreshAll()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// HandleDelete removes a comp from its company's comp set
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	compID, ok := h.pathID(w, r, "compID")
	if !ok {
		return
	}
	if err := h.repo.DeleteComp(compID); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// HandleHistory returns a comp's observation history, newest first
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	compID, ok := h.pathID(w, r, "compID")
	if !ok {
		return
	}
	observations, err := h.repo.GetObservationHistory(compID,
		r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"observations": observations})
}

// HandleManualObservation records a hand-entered observation
func (h *Handler) HandleManualObservation(w http.ResponseWriter, r *http.Request) {
	compID, ok := h.pathID(w, r, "compID")
	if !ok {
		return
	}
	var req domain.CompObservation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CompID = compID
	id, err := h.service.AddManualObservation(req)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid "+param)
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
