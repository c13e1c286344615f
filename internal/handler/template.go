package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tdyer/loadshare/internal/model"
	"github.com/tdyer/loadshare/internal/store"
)

type TemplateHandler struct {
	templates *store.TemplateStore
	logger    *slog.Logger
}

func NewTemplateHandler(templates *store.TemplateStore, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// ListCatalog returns the full active template catalog.
func (h *TemplateHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.ListActive()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.TaskTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// ListForHousehold returns the catalog minus templates the household
// has disabled.
func (h *TemplateHandler) ListForHousehold(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	templates, err := h.templates.ListEnabledForHousehold(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.TaskTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// SetEnabled turns one catalog template on or off for a household.
func (h *TemplateHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	templateID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	tmpl, err := h.templates.GetByID(templateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tmpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.templates.SetHouseholdEnabled(householdID, templateID, req.Enabled); err != nil {
		h.logger.Error("set template enabled", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update template setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
