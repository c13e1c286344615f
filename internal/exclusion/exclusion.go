// Package exclusion tracks time windows during which a member must not
// receive new task assignments (travel, illness, leave).
package exclusion

import (
	"errors"
	"fmt"
	"time"

	"github.com/tdyer/loadshare/internal/model"
)

// Validation failures are returned, not raised; callers decide the
// messaging.
var (
	ErrInvalidRange = errors.New("exclusion end must be after start")
	ErrOverlap      = errors.New("exclusion overlaps an existing window")
)

type Store interface {
	ListByMember(memberID, householdID int64) ([]model.MemberExclusion, error)
	Insert(memberID, householdID int64, from, until time.Time, reason string) (*model.MemberExclusion, error)
	Delete(id, householdID int64) error
}

type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// IsExcluded reports whether any window for the member covers the
// given instant.
func (m *Manager) IsExcluded(memberID, householdID int64, at time.Time) (bool, error) {
	windows, err := m.store.ListByMember(memberID, householdID)
	if err != nil {
		return false, fmt.Errorf("list exclusions: %w", err)
	}
	for _, w := range windows {
		if w.Covers(at) {
			return true, nil
		}
	}
	return false, nil
}

// Create validates and inserts a new exclusion window. Windows for the
// same member must not overlap, which also makes a retried create with
// identical arguments a rejection rather than a duplicate.
func (m *Manager) Create(memberID, householdID int64, from, until time.Time, reason string) (*model.MemberExclusion, error) {
	if !until.After(from) {
		return nil, ErrInvalidRange
	}

	existing, err := m.store.ListByMember(memberID, householdID)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	for _, w := range existing {
		if w.Overlaps(from, until) {
			return nil, fmt.Errorf("window %s to %s: %w",
				w.ExcludeFrom.Format("2006-01-02"), w.ExcludeUntil.Format("2006-01-02"), ErrOverlap)
		}
	}

	return m.store.Insert(memberID, householdID, from, until, reason)
}

// Delete removes a window by id. Ownership is the only rule: the
// household must match.
func (m *Manager) Delete(id, householdID int64) error {
	return m.store.Delete(id, householdID)
}
