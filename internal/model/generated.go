package model

import "time"

type GenerationStatus string

const (
	GenerationPending GenerationStatus = "pending"
	GenerationCreated GenerationStatus = "created"
	GenerationSkipped GenerationStatus = "skipped"
)

// GeneratedTask is the idempotency ledger entry for one materialized
// (template, child, deadline) instance. At most one row may exist per
// generation key per household.
type GeneratedTask struct {
	ID            int64            `json:"id"`
	TemplateID    int64            `json:"template_id"`
	ChildID       int64            `json:"child_id"`
	HouseholdID   int64            `json:"household_id"`
	TaskID        *int64           `json:"task_id"`
	Deadline      time.Time        `json:"deadline"`
	GenerationKey string           `json:"generation_key"`
	Status        GenerationStatus `json:"status"`
	Acknowledged  bool             `json:"acknowledged"`
	CreatedAt     time.Time        `json:"created_at"`
}
