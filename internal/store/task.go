package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tdyer/loadshare/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, household_id, title, child_id, category, assigned_to, deadline, weight, priority, status, source, completed_at, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var childID, assignedTo sql.NullInt64
	var deadline, completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &childID, &t.Category, &assignedTo,
		&deadline, &t.Weight, &t.Priority, &t.Status, &t.Source,
		&completedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if childID.Valid {
		t.ChildID = &childID.Int64
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if deadline.Valid {
		t.Deadline = &deadline.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

func (s *TaskStore) Create(householdID int64, title string, childID *int64, category string, assignedTo *int64, deadline *time.Time, weight, priority int, status model.TaskStatus, source model.TaskSource) (*model.Task, error) {
	var cID, aTo sql.NullInt64
	if childID != nil {
		cID = sql.NullInt64{Int64: *childID, Valid: true}
	}
	if assignedTo != nil {
		aTo = sql.NullInt64{Int64: *assignedTo, Valid: true}
	}
	var dl sql.NullTime
	if deadline != nil {
		dl = sql.NullTime{Time: deadline.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, child_id, category, assigned_to, deadline, weight, priority, status, source) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, title, cID, category, aTo, dl, weight, priority, status, source,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByHousehold(householdID int64) ([]model.Task, error) {
	return s.list(`SELECT `+taskCols+` FROM tasks WHERE household_id = ? ORDER BY created_at DESC, id DESC`, householdID)
}

// ListUnassignedPending returns assignment candidates in creation
// order; batch assignment walks them oldest first.
func (s *TaskStore) ListUnassignedPending(householdID int64) ([]model.Task, error) {
	return s.list(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? AND status = ? AND assigned_to IS NULL ORDER BY created_at ASC, id ASC`,
		householdID, model.TaskPending,
	)
}

// ListForBalance returns the tasks that can contribute load in a
// period: done tasks completed inside it and pending tasks due by its
// end. Final filtering happens in the balance package.
func (s *TaskStore) ListForBalance(householdID int64, periodStart, periodEnd time.Time) ([]model.Task, error) {
	return s.list(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ?
		   AND ((status = ? AND completed_at >= ?) OR (status = ? AND deadline IS NOT NULL AND deadline <= ?))`,
		householdID, model.TaskDone, periodStart.UTC(), model.TaskPending, periodEnd.UTC(),
	)
}

func (s *TaskStore) list(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Assign(taskID, memberID int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET assigned_to = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		memberID, taskID,
	)
	if err != nil {
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

func (s *TaskStore) Complete(taskID int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.TaskDone, at.UTC(), taskID,
	)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

func (s *TaskStore) Postpone(taskID int64, newDeadline time.Time) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, deadline = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.TaskPostponed, newDeadline.UTC(), taskID,
	)
	if err != nil {
		return fmt.Errorf("postpone task: %w", err)
	}
	return nil
}

func (s *TaskStore) UpdateStatus(taskID int64, status model.TaskStatus) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, taskID,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

// LastAssignedMember returns the assignee of the most recently created
// task that has one, or nil when the household has no assignment
// history. Drives the rotation tie-break.
func (s *TaskStore) LastAssignedMember(householdID int64) (*int64, error) {
	row := s.db.QueryRow(
		`SELECT assigned_to FROM tasks WHERE household_id = ? AND assigned_to IS NOT NULL ORDER BY created_at DESC, id DESC LIMIT 1`,
		householdID,
	)
	var memberID int64
	err := row.Scan(&memberID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last assigned member: %w", err)
	}
	return &memberID, nil
}
