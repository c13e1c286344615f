package store

import (
	"database/sql"
	"fmt"

	"github.com/tdyer/loadshare/internal/model"
)

type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateCols = `id, country, age_min, age_max, category, title, description, schedule_rule, weight, days_before_deadline, is_active, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.TaskTemplate, error) {
	var t model.TaskTemplate
	err := scanner.Scan(
		&t.ID, &t.Country, &t.AgeMin, &t.AgeMax, &t.Category, &t.Title,
		&t.Description, &t.ScheduleRule, &t.Weight, &t.DaysBeforeDeadline,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TemplateStore) Create(country string, ageMin, ageMax int, category, title, description, scheduleRule string, weight, daysBeforeDeadline int) (*model.TaskTemplate, error) {
	result, err := s.db.Exec(
		`INSERT INTO task_templates (country, age_min, age_max, category, title, description, schedule_rule, weight, days_before_deadline) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		country, ageMin, ageMax, category, title, description, scheduleRule, weight, daysBeforeDeadline,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) GetByID(id int64) (*model.TaskTemplate, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM task_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *TemplateStore) ListActive() ([]model.TaskTemplate, error) {
	return s.list(`SELECT ` + templateCols + ` FROM task_templates WHERE is_active = 1 ORDER BY id ASC`)
}

// ListEnabledForHousehold returns active templates minus any the
// household has disabled. Household settings override without mutating
// the shared catalog.
func (s *TemplateStore) ListEnabledForHousehold(householdID int64) ([]model.TaskTemplate, error) {
	query := `SELECT t.id, t.country, t.age_min, t.age_max, t.category, t.title, t.description, t.schedule_rule, t.weight, t.days_before_deadline, t.is_active, t.created_at, t.updated_at
		FROM task_templates t
		LEFT JOIN household_template_settings hts
			ON hts.template_id = t.id AND hts.household_id = ?
		WHERE t.is_active = 1 AND (hts.enabled IS NULL OR hts.enabled = 1)
		ORDER BY t.id ASC`
	return s.list(query, householdID)
}

func (s *TemplateStore) list(query string, args ...any) ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.TaskTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// SetHouseholdEnabled records a per-household override for a template.
func (s *TemplateStore) SetHouseholdEnabled(householdID, templateID int64, enabled bool) error {
	_, err := s.db.Exec(
		`INSERT INTO household_template_settings (household_id, template_id, enabled) VALUES (?, ?, ?)
		 ON CONFLICT (household_id, template_id) DO UPDATE SET enabled = excluded.enabled`,
		householdID, templateID, enabled,
	)
	if err != nil {
		return fmt.Errorf("set template enabled: %w", err)
	}
	return nil
}
