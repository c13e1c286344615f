package model

import "time"

// MemberExclusion marks a member ineligible for new assignments within
// [ExcludeFrom, ExcludeUntil]. Windows for the same member never overlap.
type MemberExclusion struct {
	ID           int64     `json:"id"`
	MemberID     int64     `json:"member_id"`
	HouseholdID  int64     `json:"household_id"`
	ExcludeFrom  time.Time `json:"exclude_from"`
	ExcludeUntil time.Time `json:"exclude_until"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// Covers reports whether the window contains the given instant.
func (e MemberExclusion) Covers(at time.Time) bool {
	return !at.Before(e.ExcludeFrom) && !at.After(e.ExcludeUntil)
}

// Overlaps reports whether the window intersects [from, until].
func (e MemberExclusion) Overlaps(from, until time.Time) bool {
	return !(e.ExcludeUntil.Before(from) || e.ExcludeFrom.After(until))
}
