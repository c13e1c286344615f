package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tdyer/loadshare/internal/exclusion"
	"github.com/tdyer/loadshare/internal/model"
	"github.com/tdyer/loadshare/internal/store"
	ws "github.com/tdyer/loadshare/internal/websocket"
)

type ExclusionHandler struct {
	manager *exclusion.Manager
	store   *store.ExclusionStore
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewExclusionHandler(manager *exclusion.Manager, st *store.ExclusionStore, hub *ws.Hub, logger *slog.Logger) *ExclusionHandler {
	return &ExclusionHandler{manager: manager, store: st, hub: hub, logger: logger}
}

func (h *ExclusionHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	exclusions, err := h.store.ListByHousehold(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list exclusions")
		return
	}
	if exclusions == nil {
		exclusions = []model.MemberExclusion{}
	}
	writeJSON(w, http.StatusOK, exclusions)
}

// Create opens an exclusion window. Range and overlap violations are
// client errors, not server failures.
func (h *ExclusionHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	memberID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req struct {
		From   string `json:"from"`
		Until  string `json:"until"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	from, err := parseDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be a date (YYYY-MM-DD)")
		return
	}
	until, err := parseDate(req.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, "until must be a date (YYYY-MM-DD)")
		return
	}

	excl, err := h.manager.Create(memberID, householdID, from, until, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, exclusion.ErrInvalidRange), errors.Is(err, exclusion.ErrOverlap):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("create exclusion", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create exclusion")
		}
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("exclusion", "created", excl.ID, nil))
	writeJSON(w, http.StatusCreated, excl)
}

func (h *ExclusionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exclusion id")
		return
	}

	if err := h.manager.Delete(id, householdID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete exclusion")
		return
	}
	h.hub.Broadcast(householdID, ws.NewMessage("exclusion", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
