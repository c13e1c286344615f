package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tdyer/loadshare/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

const childCols = `id, household_id, name, birthdate, active, created_at, updated_at`

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	err := scanner.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.Birthdate, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChildStore) Create(householdID int64, name string, birthdate time.Time) (*model.Child, error) {
	result, err := s.db.Exec(
		`INSERT INTO children (household_id, name, birthdate) VALUES (?, ?, ?)`,
		householdID, name, birthdate.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) List(householdID int64) ([]model.Child, error) {
	return s.list(`SELECT `+childCols+` FROM children WHERE household_id = ? ORDER BY birthdate ASC`, householdID)
}

func (s *ChildStore) ListActive(householdID int64) ([]model.Child, error) {
	return s.list(`SELECT `+childCols+` FROM children WHERE household_id = ? AND active = 1 ORDER BY birthdate ASC`, householdID)
}

func (s *ChildStore) list(query string, args ...any) ([]model.Child, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) Update(id, householdID int64, name string, birthdate time.Time) (*model.Child, error) {
	_, err := s.db.Exec(
		`UPDATE children SET name = ?, birthdate = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND household_id = ?`,
		name, birthdate.UTC(), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) SetActive(id, householdID int64, active bool) error {
	_, err := s.db.Exec(
		`UPDATE children SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND household_id = ?`,
		active, id, householdID,
	)
	if err != nil {
		return fmt.Errorf("set child active: %w", err)
	}
	return nil
}
