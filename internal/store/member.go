package store

import (
	"database/sql"
	"fmt"

	"github.com/tdyer/loadshare/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, household_id, name, role, active, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.Name, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MemberStore) Create(householdID int64, name, role string) (*model.HouseholdMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO household_members (household_id, name, role) VALUES (?, ?, ?)`,
		householdID, name, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM household_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) List(householdID int64) ([]model.HouseholdMember, error) {
	return s.list(`SELECT `+memberCols+` FROM household_members WHERE household_id = ? ORDER BY id ASC`, householdID)
}

// ListActive returns the members eligible for generation and
// assignment. Inactive members are out entirely, stronger than a
// temporary exclusion.
func (s *MemberStore) ListActive(householdID int64) ([]model.HouseholdMember, error) {
	return s.list(`SELECT `+memberCols+` FROM household_members WHERE household_id = ? AND active = 1 ORDER BY id ASC`, householdID)
}

func (s *MemberStore) list(query string, args ...any) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) SetActive(id, householdID int64, active bool) error {
	_, err := s.db.Exec(
		`UPDATE household_members SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND household_id = ?`,
		active, id, householdID,
	)
	if err != nil {
		return fmt.Errorf("set member active: %w", err)
	}
	return nil
}
