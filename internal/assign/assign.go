// Package assign decides who an unassigned task goes to: near-tied
// loads rotate through the members, larger spreads go to the least
// loaded, and excluded members are passed over while any alternative
// exists.
package assign

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tdyer/loadshare/internal/balance"
	"github.com/tdyer/loadshare/internal/model"
)

// Reason explains an assignment decision.
type Reason string

const (
	ReasonAlreadyAssigned Reason = "already_assigned"
	ReasonOnlyMember      Reason = "only_member"
	ReasonExcluded        Reason = "excluded"
	ReasonRotation        Reason = "rotation"
	ReasonLeastLoaded     Reason = "least_loaded"
)

// DefaultNearTieThreshold is the load-point spread under which members
// are considered tied and assignment rotates instead of comparing
// loads. Carried over from the product's tuning.
const DefaultNearTieThreshold = 2

type Config struct {
	NearTieThreshold int
	// PeriodDays is the load-aggregation window; zero means
	// balance.DefaultPeriodDays.
	PeriodDays int
}

func (c Config) nearTie() int {
	if c.NearTieThreshold <= 0 {
		return DefaultNearTieThreshold
	}
	return c.NearTieThreshold
}

func (c Config) periodDays() int {
	if c.PeriodDays <= 0 {
		return balance.DefaultPeriodDays
	}
	return c.PeriodDays
}

// Decision is the outcome for one task. AssignedTo is nil only with
// ReasonExcluded: a legitimate "needs manual assignment" outcome, not
// an error.
type Decision struct {
	AssignedTo *int64 `json:"assigned_to"`
	Reason     Reason `json:"reason"`
}

// Decide is the pure decision core. All inputs are values: the active
// members, which of them are currently excluded, their period loads,
// and the most recently assigned member (nil when the household has no
// assignment history). Batch callers mutate loads and lastAssigned
// between calls instead of re-querying the store.
func Decide(task model.Task, members []model.HouseholdMember, excluded map[int64]bool, loads map[int64]int, lastAssigned *int64, cfg Config) Decision {
	if task.AssignedTo != nil {
		return Decision{AssignedTo: task.AssignedTo, Reason: ReasonAlreadyAssigned}
	}

	if len(members) == 0 {
		return Decision{Reason: ReasonExcluded}
	}

	// A single-parent household is always assignable; an exclusion
	// cannot leave the task with no possible owner.
	if len(members) == 1 {
		id := members[0].ID
		return Decision{AssignedTo: &id, Reason: ReasonOnlyMember}
	}

	var filtered []model.HouseholdMember
	for _, m := range members {
		if !excluded[m.ID] {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return Decision{Reason: ReasonExcluded}
	}
	if len(filtered) == 1 {
		id := filtered[0].ID
		return Decision{AssignedTo: &id, Reason: ReasonOnlyMember}
	}

	minLoad, maxLoad := loads[filtered[0].ID], loads[filtered[0].ID]
	for _, m := range filtered[1:] {
		l := loads[m.ID]
		if l < minLoad {
			minLoad = l
		}
		if l > maxLoad {
			maxLoad = l
		}
	}

	if maxLoad-minLoad <= cfg.nearTie() {
		id := rotate(filtered, lastAssigned)
		return Decision{AssignedTo: &id, Reason: ReasonRotation}
	}

	least := filtered[0]
	for _, m := range filtered[1:] {
		if loads[m.ID] < loads[least.ID] {
			least = m
		}
	}
	id := least.ID
	return Decision{AssignedTo: &id, Reason: ReasonLeastLoaded}
}

// rotate picks the member after the last assignee, wrapping circularly.
// When the last assignee is unknown or no longer in the filtered list,
// rotation starts from the first member.
func rotate(filtered []model.HouseholdMember, lastAssigned *int64) int64 {
	if lastAssigned == nil {
		return filtered[0].ID
	}
	for i, m := range filtered {
		if m.ID == *lastAssigned {
			return filtered[(i+1)%len(filtered)].ID
		}
	}
	return filtered[0].ID
}

type MemberSource interface {
	ListActive(householdID int64) ([]model.HouseholdMember, error)
}

type TaskStore interface {
	ListUnassignedPending(householdID int64) ([]model.Task, error)
	Assign(taskID, memberID int64) error
	LastAssignedMember(householdID int64) (*int64, error)
}

type Excluder interface {
	IsExcluded(memberID, householdID int64, at time.Time) (bool, error)
}

type LoadSource interface {
	LoadByMember(householdID int64, periodDays int) (balance.Report, error)
}

// Engine gathers the decision inputs from the store and persists the
// outcome.
type Engine struct {
	members MemberSource
	tasks   TaskStore
	excl    Excluder
	loads   LoadSource
	cfg     Config
	logger  *slog.Logger
}

func NewEngine(members MemberSource, tasks TaskStore, excl Excluder, loads LoadSource, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{members: members, tasks: tasks, excl: excl, loads: loads, cfg: cfg, logger: logger}
}

type decisionInputs struct {
	members      []model.HouseholdMember
	excluded     map[int64]bool
	loads        map[int64]int
	lastAssigned *int64
}

func (e *Engine) gather(householdID int64) (decisionInputs, error) {
	var in decisionInputs

	members, err := e.members.ListActive(householdID)
	if err != nil {
		return in, fmt.Errorf("list members: %w", err)
	}
	in.members = members

	now := time.Now()
	in.excluded = make(map[int64]bool, len(members))
	for _, m := range members {
		ex, err := e.excl.IsExcluded(m.ID, householdID, now)
		if err != nil {
			return in, fmt.Errorf("check exclusion for member %d: %w", m.ID, err)
		}
		in.excluded[m.ID] = ex
	}

	report, err := e.loads.LoadByMember(householdID, e.cfg.periodDays())
	if err != nil {
		return in, fmt.Errorf("load report: %w", err)
	}
	in.loads = report.Loads()

	last, err := e.tasks.LastAssignedMember(householdID)
	if err != nil {
		return in, fmt.Errorf("last assigned member: %w", err)
	}
	in.lastAssigned = last

	return in, nil
}

// DetermineAssignment decides the owner for a single task without
// persisting anything.
func (e *Engine) DetermineAssignment(task model.Task) (Decision, error) {
	in, err := e.gather(task.HouseholdID)
	if err != nil {
		return Decision{}, err
	}
	return Decide(task, in.members, in.excluded, in.loads, in.lastAssigned, e.cfg), nil
}

// AssignTask decides and persists the owner for a single task. Tasks
// left unassigned (all members excluded) are not an error.
func (e *Engine) AssignTask(task model.Task) (Decision, error) {
	d, err := e.DetermineAssignment(task)
	if err != nil {
		return Decision{}, err
	}
	if d.AssignedTo == nil || d.Reason == ReasonAlreadyAssigned {
		return d, nil
	}
	if err := e.tasks.Assign(task.ID, *d.AssignedTo); err != nil {
		return Decision{}, fmt.Errorf("persist assignment: %w", err)
	}
	return d, nil
}

// AutoAssignUnassigned assigns every pending unassigned task of a
// household in creation order. The decision inputs are gathered once;
// each persisted assignment updates the in-memory load map and rotation
// cursor so decision N+1 reflects decision N. Must not be parallelized
// within a household.
func (e *Engine) AutoAssignUnassigned(householdID int64) (int, error) {
	in, err := e.gather(householdID)
	if err != nil {
		return 0, err
	}

	tasks, err := e.tasks.ListUnassignedPending(householdID)
	if err != nil {
		return 0, fmt.Errorf("list unassigned tasks: %w", err)
	}

	assigned := 0
	for _, task := range tasks {
		d := Decide(task, in.members, in.excluded, in.loads, in.lastAssigned, e.cfg)
		if d.AssignedTo == nil {
			e.logger.Info("task needs manual assignment",
				"household_id", householdID, "task_id", task.ID)
			continue
		}
		if err := e.tasks.Assign(task.ID, *d.AssignedTo); err != nil {
			return assigned, fmt.Errorf("assign task %d: %w", task.ID, err)
		}
		in.loads[*d.AssignedTo] += task.Weight
		in.lastAssigned = d.AssignedTo
		assigned++
	}

	return assigned, nil
}
