package model

import "time"

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskDone      TaskStatus = "done"
	TaskCancelled TaskStatus = "cancelled"
	TaskPostponed TaskStatus = "postponed"
)

type TaskSource string

const (
	SourceManual   TaskSource = "manual"
	SourceAuto     TaskSource = "auto"
	SourceTemplate TaskSource = "template"
)

type Task struct {
	ID          int64      `json:"id"`
	HouseholdID int64      `json:"household_id"`
	Title       string     `json:"title"`
	ChildID     *int64     `json:"child_id"`
	Category    string     `json:"category"`
	AssignedTo  *int64     `json:"assigned_to"`
	Deadline    *time.Time `json:"deadline"`
	Weight      int        `json:"weight"`
	Priority    int        `json:"priority"`
	Status      TaskStatus `json:"status"`
	Source      TaskSource `json:"source"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
