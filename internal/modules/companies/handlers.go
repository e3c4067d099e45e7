package companies

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

// Handler handles company HTTP requests
type Handler struct {
	repo     *Repository
	importer *Importer
	log      zerolog.Logger
}

// NewHandler creates a new company handler
func NewHandler(repo *Repository, importer *Importer, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		importer: importer,
		log:      log.With().Str("handler", "companies").Logger(),
	}
}

// Routes mounts the company routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Post("/import", h.HandleImport)
	r.Post("/import-comps", h.HandleImportComps)
	r.Get("/export", h.HandleExport)
	r.Get("/{companyID}", h.HandleGet)
	r.Put("/{companyID}", h.HandleUpdate)
	r.Delete("/{companyID}", h.HandleDelete)
}

// HandleList returns all companies ordered by name
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"companies": all})
}

// HandleGet returns a single company
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}
	company, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company == nil {
		h.writeError(w, http.StatusNotFound, "company not found")
		return
	}
	h.writeJSON(w, http.StatusOK, company)
}

// HandleCreate adds a new company
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.Company
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}
	if req.OwnershipPct < 0 || req.OwnershipPct > 1 || req.DilutionPct < 0 || req.DilutionPct > 1 {
		h.writeError(w, http.StatusBadRequest, "ownership_pct and dilution_pct must be between 0 and 1")
		return
	}

	id, err := h.repo.Insert(req)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// HandleUpdate overwrites a company's editable fields
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}
	var req domain.Company
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OwnershipPct < 0 || req.OwnershipPct > 1 || req.DilutionPct < 0 || req.DilutionPct > 1 {
		h.writeError(w, http.StatusBadRequest, "ownership_pct and dilution_pct must be between 0 and 1")
		return
	}
	if err := h.repo.UpdateFundamentals(id, req); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

// HandleDelete removes a company and its dependent records
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(id); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// HandleImport bulk-imports companies from an uploaded CSV
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	result, err := h.importer.ImportCompanies(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleImportComps bulk-imports comp tickers from an uploaded CSV
func (h *Handler) HandleImportComps(w http.ResponseWriter, r *http.Request) {
	result, err := h.importer.ImportComps(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleExport streams all companies as CSV
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="companies.csv"`)
	if err := h.importer.ExportCompanies(w); err != nil {
		h.log.Error().Err(err).Msg("Company export failed")
	}
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
