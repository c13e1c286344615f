package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tdyer/loadshare/internal/model"
	"github.com/tdyer/loadshare/internal/store"
)

type ChildHandler struct {
	children *store.ChildStore
	logger   *slog.Logger
}

func NewChildHandler(children *store.ChildStore, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{children: children, logger: logger}
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	children, err := h.children.List(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list children")
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	var req struct {
		Name      string `json:"name"`
		Birthdate string `json:"birthdate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	birthdate, err := parseDate(req.Birthdate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "birthdate must be a date (YYYY-MM-DD)")
		return
	}
	if birthdate.After(time.Now()) {
		writeError(w, http.StatusBadRequest, "birthdate cannot be in the future")
		return
	}

	child, err := h.children.Create(householdID, req.Name, birthdate)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create child")
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	existing, err := h.children.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get child")
		return
	}
	if existing == nil || existing.HouseholdID != householdID {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	var req struct {
		Name      string `json:"name"`
		Birthdate string `json:"birthdate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = existing.Name
	}
	birthdate := existing.Birthdate
	if req.Birthdate != "" {
		birthdate, err = parseDate(req.Birthdate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "birthdate must be a date (YYYY-MM-DD)")
			return
		}
	}

	child, err := h.children.Update(id, householdID, req.Name, birthdate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update child")
		return
	}
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.children.SetActive(id, householdID, req.Active); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update child")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
