package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tdyer/loadshare/internal/model"
)

type GeneratedStore struct {
	db *sql.DB
}

func NewGeneratedStore(db *sql.DB) *GeneratedStore {
	return &GeneratedStore{db: db}
}

const generatedCols = `id, template_id, child_id, household_id, task_id, deadline, generation_key, status, acknowledged, created_at`

func scanGenerated(scanner interface{ Scan(...any) error }) (*model.GeneratedTask, error) {
	var g model.GeneratedTask
	var taskID sql.NullInt64

	err := scanner.Scan(
		&g.ID, &g.TemplateID, &g.ChildID, &g.HouseholdID, &taskID,
		&g.Deadline, &g.GenerationKey, &g.Status, &g.Acknowledged, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if taskID.Valid {
		g.TaskID = &taskID.Int64
	}
	return &g, nil
}

// ListKeys returns every generation key already recorded for the
// household. Loaded once per generation run.
func (s *GeneratedStore) ListKeys(householdID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT generation_key FROM generated_tasks WHERE household_id = ?`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list generation keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan generation key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Insert records one generation. The unique (household_id,
// generation_key) index makes a concurrent duplicate fail with
// ErrDuplicateKey; callers treat that as "already generated".
func (s *GeneratedStore) Insert(templateID, childID, householdID int64, deadline time.Time, key string) (*model.GeneratedTask, error) {
	result, err := s.db.Exec(
		`INSERT INTO generated_tasks (template_id, child_id, household_id, deadline, generation_key, status) VALUES (?, ?, ?, ?, ?, ?)`,
		templateID, childID, householdID, deadline.UTC(), key, model.GenerationPending,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("generation key %q: %w", key, ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("insert generated task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GeneratedStore) GetByID(id int64) (*model.GeneratedTask, error) {
	row := s.db.QueryRow(`SELECT `+generatedCols+` FROM generated_tasks WHERE id = ?`, id)
	g, err := scanGenerated(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get generated task: %w", err)
	}
	return g, nil
}

// MarkCreated links the ledger record to its materialized task.
func (s *GeneratedStore) MarkCreated(id, taskID int64) error {
	_, err := s.db.Exec(
		`UPDATE generated_tasks SET status = ?, task_id = ? WHERE id = ?`,
		model.GenerationCreated, taskID, id,
	)
	if err != nil {
		return fmt.Errorf("mark generation created: %w", err)
	}
	return nil
}

func (s *GeneratedStore) ListByHousehold(householdID int64) ([]model.GeneratedTask, error) {
	rows, err := s.db.Query(
		`SELECT `+generatedCols+` FROM generated_tasks WHERE household_id = ? ORDER BY deadline ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list generated tasks: %w", err)
	}
	defer rows.Close()

	var records []model.GeneratedTask
	for rows.Next() {
		g, err := scanGenerated(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generated task: %w", err)
		}
		records = append(records, *g)
	}
	return records, rows.Err()
}

// Acknowledge marks a record as seen by a parent in the UI.
func (s *GeneratedStore) Acknowledge(id, householdID int64) error {
	_, err := s.db.Exec(
		`UPDATE generated_tasks SET acknowledged = 1 WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	if err != nil {
		return fmt.Errorf("acknowledge generated task: %w", err)
	}
	return nil
}
