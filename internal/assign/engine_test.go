package assign

import (
	"log/slog"
	"testing"
	"time"

	"github.com/tdyer/loadshare/internal/balance"
	"github.com/tdyer/loadshare/internal/model"
)

type fakeMembers struct {
	members []model.HouseholdMember
}

func (f *fakeMembers) ListActive(householdID int64) ([]model.HouseholdMember, error) {
	return f.members, nil
}

type fakeTasks struct {
	unassigned   []model.Task
	assignments  map[int64]int64 // task id -> member id
	lastAssigned *int64
}

func (f *fakeTasks) ListUnassignedPending(householdID int64) ([]model.Task, error) {
	return f.unassigned, nil
}

func (f *fakeTasks) Assign(taskID, memberID int64) error {
	if f.assignments == nil {
		f.assignments = make(map[int64]int64)
	}
	f.assignments[taskID] = memberID
	return nil
}

func (f *fakeTasks) LastAssignedMember(householdID int64) (*int64, error) {
	return f.lastAssigned, nil
}

type fakeExcluder struct {
	excluded map[int64]bool
}

func (f *fakeExcluder) IsExcluded(memberID, householdID int64, at time.Time) (bool, error) {
	return f.excluded[memberID], nil
}

type fakeLoads struct {
	report balance.Report
}

func (f *fakeLoads) LoadByMember(householdID int64, periodDays int) (balance.Report, error) {
	return f.report, nil
}

func testEngine(tasks *fakeTasks, loads map[int64]int, excluded map[int64]bool) *Engine {
	report := balance.Report{}
	for id, l := range loads {
		report.Members = append(report.Members, balance.MemberLoad{MemberID: id, TotalLoad: l})
	}
	return NewEngine(
		&fakeMembers{members: members(1, 2)},
		tasks,
		&fakeExcluder{excluded: excluded},
		&fakeLoads{report: report},
		Config{},
		slog.Default(),
	)
}

func TestAutoAssignCarriesLoadForward(t *testing.T) {
	// Two members tied at 0. Four tasks should alternate through
	// rotation: each assignment moves the cursor.
	tasks := &fakeTasks{
		unassigned: []model.Task{
			{ID: 10, HouseholdID: 1, Weight: 1, Status: model.TaskPending},
			{ID: 11, HouseholdID: 1, Weight: 1, Status: model.TaskPending},
			{ID: 12, HouseholdID: 1, Weight: 1, Status: model.TaskPending},
			{ID: 13, HouseholdID: 1, Weight: 1, Status: model.TaskPending},
		},
	}
	e := testEngine(tasks, map[int64]int{1: 0, 2: 0}, nil)

	n, err := e.AutoAssignUnassigned(1)
	if err != nil {
		t.Fatalf("AutoAssignUnassigned: %v", err)
	}
	if n != 4 {
		t.Fatalf("assigned = %d, want 4", n)
	}

	want := map[int64]int64{10: 1, 11: 2, 12: 1, 13: 2}
	for taskID, memberID := range want {
		if got := tasks.assignments[taskID]; got != memberID {
			t.Errorf("task %d assigned to %d, want %d", taskID, got, memberID)
		}
	}
}

func TestAutoAssignHeavyTaskShiftsBalance(t *testing.T) {
	// The first task is heavy enough to break the tie, so the second
	// decision must see the updated load and pick the other member.
	tasks := &fakeTasks{
		unassigned: []model.Task{
			{ID: 10, HouseholdID: 1, Weight: 5, Status: model.TaskPending},
			{ID: 11, HouseholdID: 1, Weight: 1, Status: model.TaskPending},
		},
	}
	e := testEngine(tasks, map[int64]int{1: 0, 2: 0}, nil)

	if _, err := e.AutoAssignUnassigned(1); err != nil {
		t.Fatalf("AutoAssignUnassigned: %v", err)
	}

	if got := tasks.assignments[10]; got != 1 {
		t.Fatalf("task 10 assigned to %d, want 1 (rotation from empty history)", got)
	}
	// Member 1 now carries 5, member 2 carries 0: least loaded wins.
	if got := tasks.assignments[11]; got != 2 {
		t.Errorf("task 11 assigned to %d, want 2 (least loaded)", got)
	}
}

func TestAutoAssignSkipsWhenAllExcluded(t *testing.T) {
	tasks := &fakeTasks{
		unassigned: []model.Task{
			{ID: 10, HouseholdID: 1, Weight: 1, Status: model.TaskPending},
		},
	}
	e := testEngine(tasks, map[int64]int{1: 0, 2: 0}, map[int64]bool{1: true, 2: true})

	n, err := e.AutoAssignUnassigned(1)
	if err != nil {
		t.Fatalf("AutoAssignUnassigned: %v", err)
	}
	if n != 0 {
		t.Errorf("assigned = %d, want 0", n)
	}
	if len(tasks.assignments) != 0 {
		t.Errorf("assignments = %v, want none", tasks.assignments)
	}
}

func TestDetermineAssignmentUsesExclusions(t *testing.T) {
	tasks := &fakeTasks{}
	e := testEngine(tasks, map[int64]int{1: 0, 2: 0}, map[int64]bool{1: true})

	d, err := e.DetermineAssignment(model.Task{ID: 5, HouseholdID: 1, Status: model.TaskPending})
	if err != nil {
		t.Fatalf("DetermineAssignment: %v", err)
	}
	if d.Reason != ReasonOnlyMember || d.AssignedTo == nil || *d.AssignedTo != 2 {
		t.Errorf("decision = %+v, want only_member -> 2", d)
	}
}
