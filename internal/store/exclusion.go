package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tdyer/loadshare/internal/model"
)

type ExclusionStore struct {
	db *sql.DB
}

func NewExclusionStore(db *sql.DB) *ExclusionStore {
	return &ExclusionStore{db: db}
}

const exclusionCols = `id, member_id, household_id, exclude_from, exclude_until, reason, created_at`

func scanExclusion(scanner interface{ Scan(...any) error }) (*model.MemberExclusion, error) {
	var e model.MemberExclusion
	err := scanner.Scan(&e.ID, &e.MemberID, &e.HouseholdID, &e.ExcludeFrom, &e.ExcludeUntil, &e.Reason, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *ExclusionStore) ListByMember(memberID, householdID int64) ([]model.MemberExclusion, error) {
	return s.list(
		`SELECT `+exclusionCols+` FROM member_exclusions WHERE member_id = ? AND household_id = ? ORDER BY exclude_from ASC`,
		memberID, householdID,
	)
}

func (s *ExclusionStore) ListByHousehold(householdID int64) ([]model.MemberExclusion, error) {
	return s.list(
		`SELECT `+exclusionCols+` FROM member_exclusions WHERE household_id = ? ORDER BY exclude_from ASC`,
		householdID,
	)
}

func (s *ExclusionStore) list(query string, args ...any) ([]model.MemberExclusion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	defer rows.Close()

	var exclusions []model.MemberExclusion
	for rows.Next() {
		e, err := scanExclusion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		exclusions = append(exclusions, *e)
	}
	return exclusions, rows.Err()
}

func (s *ExclusionStore) Insert(memberID, householdID int64, from, until time.Time, reason string) (*model.MemberExclusion, error) {
	result, err := s.db.Exec(
		`INSERT INTO member_exclusions (member_id, household_id, exclude_from, exclude_until, reason) VALUES (?, ?, ?, ?, ?)`,
		memberID, householdID, from.UTC(), until.UTC(), reason,
	)
	if err != nil {
		return nil, fmt.Errorf("insert exclusion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+exclusionCols+` FROM member_exclusions WHERE id = ?`, id)
	return scanExclusion(row)
}

func (s *ExclusionStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM member_exclusions WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete exclusion: %w", err)
	}
	return nil
}
