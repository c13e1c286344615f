package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tdyer/loadshare/internal/assign"
	"github.com/tdyer/loadshare/internal/model"
	"github.com/tdyer/loadshare/internal/store"
	ws "github.com/tdyer/loadshare/internal/websocket"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	assigner *assign.Engine
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, assigner *assign.Engine, hub *ws.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, assigner: assigner, hub: hub, logger: logger}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	tasks, err := h.tasks.ListByHousehold(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create adds a manual task. Without an explicit assignee the
// assignment engine picks one; a task every member is excluded from
// stays unassigned.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	var req struct {
		Title      string `json:"title"`
		Category   string `json:"category"`
		ChildID    *int64 `json:"child_id"`
		AssignedTo *int64 `json:"assigned_to"`
		Deadline   string `json:"deadline"`
		Weight     int    `json:"weight"`
		Priority   int    `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Weight <= 0 {
		req.Weight = 1
	}

	var deadline *time.Time
	if req.Deadline != "" {
		d, err := parseDate(req.Deadline)
		if err != nil {
			writeError(w, http.StatusBadRequest, "deadline must be a date (YYYY-MM-DD)")
			return
		}
		deadline = &d
	}

	task, err := h.tasks.Create(householdID, req.Title, req.ChildID, req.Category, req.AssignedTo, deadline, req.Weight, req.Priority, model.TaskPending, model.SourceManual)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	if task.AssignedTo == nil {
		d, err := h.assigner.AssignTask(*task)
		if err != nil {
			h.logger.Error("assign new task", "task_id", task.ID, "error", err)
		} else if d.AssignedTo != nil {
			task, err = h.tasks.GetByID(task.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to reload task")
				return
			}
		}
	}

	h.hub.Broadcast(householdID, ws.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	householdID, task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if task.Status == model.TaskDone {
		writeError(w, http.StatusConflict, "task is already done")
		return
	}

	if err := h.tasks.Complete(task.ID, time.Now()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	updated, err := h.tasks.GetByID(task.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload task")
		return
	}
	h.hub.Broadcast(householdID, ws.NewMessage("task", "completed", task.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	householdID, task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req struct {
		Deadline string `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "deadline must be a date (YYYY-MM-DD)")
		return
	}

	if err := h.tasks.Postpone(task.ID, deadline); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to postpone task")
		return
	}

	updated, err := h.tasks.GetByID(task.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload task")
		return
	}
	h.hub.Broadcast(householdID, ws.NewMessage("task", "postponed", task.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	householdID, task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if err := h.tasks.UpdateStatus(task.ID, model.TaskCancelled); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cancel task")
		return
	}
	h.hub.Broadcast(householdID, ws.NewMessage("task", "cancelled", task.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Assign sets a task's owner. With a member_id the assignment is
// manual; without one the engine decides.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	householdID, task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req struct {
		MemberID *int64 `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.MemberID != nil {
		if err := h.tasks.Assign(task.ID, *req.MemberID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to assign task")
			return
		}
		h.hub.Broadcast(householdID, ws.NewMessage("task", "assigned", task.ID, nil))
		writeJSON(w, http.StatusOK, map[string]any{"assigned_to": *req.MemberID, "reason": "manual"})
		return
	}

	// No member given: let the engine decide (re-decide if already set).
	task.AssignedTo = nil
	decision, err := h.assigner.AssignTask(*task)
	if err != nil {
		h.logger.Error("assign task", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign task")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("task", "assigned", task.ID, nil))
	writeJSON(w, http.StatusOK, decision)
}

// AutoAssign runs batch assignment over every pending unassigned task.
func (h *TaskHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	assigned, err := h.assigner.AutoAssignUnassigned(householdID)
	if err != nil {
		h.logger.Error("auto-assign", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to auto-assign tasks")
		return
	}

	if assigned > 0 {
		h.hub.Broadcast(householdID, ws.NewMessage("task", "assigned", 0, map[string]any{"count": assigned}))
	}
	writeJSON(w, http.StatusOK, map[string]int{"assigned": assigned})
}

// loadTask resolves the task in the URL and checks household ownership.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (int64, *model.Task, bool) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return 0, nil, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return 0, nil, false
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return 0, nil, false
	}
	if task == nil || task.HouseholdID != householdID {
		writeError(w, http.StatusNotFound, "task not found")
		return 0, nil, false
	}
	return householdID, task, true
}
