// Package balance aggregates weighted task load per household member
// over a rolling period and classifies how evenly it is shared.
package balance

import (
	"time"

	"github.com/tdyer/loadshare/internal/model"
)

// AlertLevel classifies how lopsided a household's load is.
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// Default thresholds: the share of total load one member may carry
// before the household is flagged. Carried over from the product's
// tuning; override via Config rather than editing call sites.
const (
	DefaultWarningPercent  = 55.0
	DefaultCriticalPercent = 65.0
)

// DefaultPeriodDays is the rolling window for load aggregation.
const DefaultPeriodDays = 30

type Config struct {
	WarningPercent  float64
	CriticalPercent float64
}

func (c Config) warning() float64 {
	if c.WarningPercent <= 0 {
		return DefaultWarningPercent
	}
	return c.WarningPercent
}

func (c Config) critical() float64 {
	if c.CriticalPercent <= 0 {
		return DefaultCriticalPercent
	}
	return c.CriticalPercent
}

// MemberLoad is one member's share of the household load.
type MemberLoad struct {
	MemberID   int64   `json:"member_id"`
	Name       string  `json:"name"`
	TotalLoad  int     `json:"total_load"`
	TasksCount int     `json:"tasks_count"`
	Percentage float64 `json:"percentage"`
}

// Report is the household-level load picture for one period.
type Report struct {
	Members    []MemberLoad `json:"members"`
	TotalLoad  int          `json:"total_load"`
	IsBalanced bool         `json:"is_balanced"`
	AlertLevel AlertLevel   `json:"alert_level"`
}

// countsTowardLoad reports whether a task contributes to the rolling
// period ending at now. Done tasks count when completed inside the
// period; pending tasks count while their deadline is due within it
// (overdue obligations are still open load). Pending tasks without a
// deadline carry no weight.
func countsTowardLoad(t model.Task, now time.Time, periodDays int) bool {
	switch t.Status {
	case model.TaskDone:
		if t.CompletedAt == nil {
			return false
		}
		periodStart := now.AddDate(0, 0, -periodDays)
		return !t.CompletedAt.Before(periodStart) && !t.CompletedAt.After(now)
	case model.TaskPending:
		if t.Deadline == nil {
			return false
		}
		periodEnd := now.AddDate(0, 0, periodDays)
		return !t.Deadline.After(periodEnd)
	default:
		return false
	}
}

// Compute aggregates load from tasks already loaded in memory. Members
// with no tasks still appear with zero load. Tasks without an assignee
// are ignored; they have no one to weigh on yet.
func Compute(tasks []model.Task, members []model.HouseholdMember, now time.Time, periodDays int, cfg Config) Report {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}

	byMember := make(map[int64]*MemberLoad, len(members))
	report := Report{Members: make([]MemberLoad, 0, len(members))}
	for _, m := range members {
		report.Members = append(report.Members, MemberLoad{MemberID: m.ID, Name: m.Name})
		byMember[m.ID] = &report.Members[len(report.Members)-1]
	}

	for _, t := range tasks {
		if t.AssignedTo == nil {
			continue
		}
		ml, ok := byMember[*t.AssignedTo]
		if !ok {
			continue
		}
		if !countsTowardLoad(t, now, periodDays) {
			continue
		}
		ml.TotalLoad += t.Weight
		ml.TasksCount++
		report.TotalLoad += t.Weight
	}

	var maxPercent float64
	for i := range report.Members {
		if report.TotalLoad > 0 {
			report.Members[i].Percentage = float64(report.Members[i].TotalLoad) / float64(report.TotalLoad) * 100
		}
		if report.Members[i].Percentage > maxPercent {
			maxPercent = report.Members[i].Percentage
		}
	}

	switch {
	case maxPercent > cfg.critical():
		report.AlertLevel = AlertCritical
	case maxPercent > cfg.warning():
		report.AlertLevel = AlertWarning
	default:
		report.AlertLevel = AlertNone
	}
	report.IsBalanced = maxPercent <= cfg.warning()

	return report
}

// Loads flattens a report into a member→load map for the assignment
// engine.
func (r Report) Loads() map[int64]int {
	loads := make(map[int64]int, len(r.Members))
	for _, m := range r.Members {
		loads[m.MemberID] = m.TotalLoad
	}
	return loads
}

type TaskSource interface {
	ListForBalance(householdID int64, periodStart, periodEnd time.Time) ([]model.Task, error)
}

type MemberSource interface {
	ListActive(householdID int64) ([]model.HouseholdMember, error)
}

// Calculator wires Compute to the store.
type Calculator struct {
	tasks   TaskSource
	members MemberSource
	cfg     Config
}

func NewCalculator(tasks TaskSource, members MemberSource, cfg Config) *Calculator {
	return &Calculator{tasks: tasks, members: members, cfg: cfg}
}

// LoadByMember computes the household report for a trailing period of
// periodDays (and the same distance ahead for pending deadlines).
func (c *Calculator) LoadByMember(householdID int64, periodDays int) (Report, error) {
	return c.loadByMemberAt(householdID, periodDays, time.Now())
}

func (c *Calculator) loadByMemberAt(householdID int64, periodDays int, now time.Time) (Report, error) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}

	members, err := c.members.ListActive(householdID)
	if err != nil {
		return Report{}, err
	}
	tasks, err := c.tasks.ListForBalance(householdID, now.AddDate(0, 0, -periodDays), now.AddDate(0, 0, periodDays))
	if err != nil {
		return Report{}, err
	}

	return Compute(tasks, members, now, periodDays, c.cfg), nil
}
