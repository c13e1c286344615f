package model

import "time"

// TaskTemplate is a catalog entry describing an auto-generated task.
// ScheduleRule is empty for one-time (milestone) templates; see the
// schedule package for the rule grammar.
type TaskTemplate struct {
	ID                 int64     `json:"id"`
	Country            string    `json:"country"`
	AgeMin             int       `json:"age_min"`
	AgeMax             int       `json:"age_max"`
	Category           string    `json:"category"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	ScheduleRule       string    `json:"schedule_rule"`
	Weight             int       `json:"weight"`
	DaysBeforeDeadline int       `json:"days_before_deadline"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsRecurring reports whether the template carries a schedule rule.
func (t TaskTemplate) IsRecurring() bool {
	return t.ScheduleRule != ""
}
