package handler

import (
	"log/slog"
	"net/http"

	"github.com/tdyer/loadshare/internal/assign"
	"github.com/tdyer/loadshare/internal/engine"
	"github.com/tdyer/loadshare/internal/model"
	"github.com/tdyer/loadshare/internal/store"
	ws "github.com/tdyer/loadshare/internal/websocket"
)

type GenerationHandler struct {
	orch     *engine.Orchestrator
	records  *store.GeneratedStore
	assigner *assign.Engine
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewGenerationHandler(orch *engine.Orchestrator, records *store.GeneratedStore, assigner *assign.Engine, hub *ws.Hub, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{orch: orch, records: records, assigner: assigner, hub: hub, logger: logger}
}

// Trigger runs generation for one household on demand and assigns what
// it produced. Re-running is safe; already-generated pairs are skipped.
func (h *GenerationHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	res, err := h.orch.GenerateForHousehold(householdID, engine.Config{})
	if err != nil {
		h.logger.Error("generation run", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "generation run failed")
		return
	}

	assigned := 0
	if res.Generated > 0 {
		assigned, err = h.assigner.AutoAssignUnassigned(householdID)
		if err != nil {
			h.logger.Error("auto-assign after generation", "household_id", householdID, "error", err)
		}
		h.hub.Broadcast(householdID, ws.NewMessage("generation", "completed", 0, map[string]any{
			"generated": res.Generated,
			"assigned":  assigned,
		}))
	}

	errMsgs := make([]string, 0, len(res.Errors))
	for _, pe := range res.Errors {
		errMsgs = append(errMsgs, pe.Error())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"generated": res.Generated,
		"skipped":   res.Skipped,
		"assigned":  assigned,
		"errors":    errMsgs,
	})
}

// ListRecords returns the household's generation ledger.
func (h *GenerationHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	records, err := h.records.ListByHousehold(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list generation records")
		return
	}
	if records == nil {
		records = []model.GeneratedTask{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Acknowledge marks a generated record as seen.
func (h *GenerationHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := h.records.Acknowledge(id, householdID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to acknowledge record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
