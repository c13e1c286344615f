package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tdyer/loadshare/internal/model"
	"github.com/tdyer/loadshare/internal/store"
)

// The orchestrator reads through these narrow interfaces so the run can
// be exercised against fakes; the sqlite stores satisfy them directly.

type HouseholdSource interface {
	ListActive() ([]model.Household, error)
}

type ChildSource interface {
	ListActive(householdID int64) ([]model.Child, error)
}

type TemplateSource interface {
	ListEnabledForHousehold(householdID int64) ([]model.TaskTemplate, error)
}

// Ledger is the generation-record store. Insert must fail with
// store.ErrDuplicateKey when the (household, key) pair already exists.
type Ledger interface {
	ListKeys(householdID int64) ([]string, error)
	Insert(templateID, childID, householdID int64, deadline time.Time, key string) (*model.GeneratedTask, error)
	MarkCreated(id, taskID int64) error
}

type TaskCreator interface {
	Create(householdID int64, title string, childID *int64, category string, assignedTo *int64, deadline *time.Time, weight, priority int, status model.TaskStatus, source model.TaskSource) (*model.Task, error)
}

// PairError records a failure for one (child, template) pair. A failing
// pair never aborts the rest of the run.
type PairError struct {
	TemplateID int64
	ChildID    int64
	Err        error
}

func (e PairError) Error() string {
	return fmt.Sprintf("template %d / child %d: %v", e.TemplateID, e.ChildID, e.Err)
}

// Result summarizes one household's generation run.
type Result struct {
	Generated int
	Skipped   int
	Errors    []PairError
}

// Orchestrator materializes task instances from the template catalog.
type Orchestrator struct {
	households HouseholdSource
	children   ChildSource
	templates  TemplateSource
	ledger     Ledger
	tasks      TaskCreator
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewOrchestrator(households HouseholdSource, children ChildSource, templates TemplateSource, ledger Ledger, tasks TaskCreator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		households: households,
		children:   children,
		templates:  templates,
		ledger:     ledger,
		tasks:      tasks,
		logger:     logger,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// lockFor returns the per-household mutex. Runs for different
// households proceed concurrently; two runs for the same household
// would both pass the key-set check before either inserts, so they are
// serialized here (the unique ledger index backstops other processes).
func (o *Orchestrator) lockFor(householdID int64) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[householdID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[householdID] = l
	}
	return l
}

// GenerateForHousehold runs generation for every (child, template) pair
// of one household. Store failures on a single pair are recorded and
// skipped; failures loading the inputs abort the run.
func (o *Orchestrator) GenerateForHousehold(householdID int64, cfg Config) (Result, error) {
	lock := o.lockFor(householdID)
	lock.Lock()
	defer lock.Unlock()

	var res Result

	children, err := o.children.ListActive(householdID)
	if err != nil {
		return res, fmt.Errorf("list children: %w", err)
	}
	templates, err := o.templates.ListEnabledForHousehold(householdID)
	if err != nil {
		return res, fmt.Errorf("list templates: %w", err)
	}

	// One key read for the whole run; accepted keys are added locally
	// so later pairs in the same run see them.
	keys, err := o.ledger.ListKeys(householdID)
	if err != nil {
		return res, fmt.Errorf("list generation keys: %w", err)
	}
	existing := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		existing[k] = struct{}{}
	}

	for _, child := range children {
		for _, tmpl := range templates {
			d := ShouldGenerate(tmpl, child, existing, cfg)
			if !d.Generate {
				res.Skipped++
				continue
			}

			created, err := o.materialize(householdID, tmpl, child, d)
			if err != nil {
				res.Errors = append(res.Errors, PairError{TemplateID: tmpl.ID, ChildID: child.ID, Err: err})
				o.logger.Error("generation pair failed",
					"household_id", householdID,
					"template_id", tmpl.ID,
					"child_id", child.ID,
					"error", err)
				continue
			}

			existing[d.Key] = struct{}{}
			if created {
				res.Generated++
			} else {
				res.Skipped++
			}
		}
	}

	o.logger.Info("generation run complete",
		"household_id", householdID,
		"generated", res.Generated,
		"skipped", res.Skipped,
		"errors", len(res.Errors))
	return res, nil
}

// materialize inserts the ledger record, creates the task, and links
// the two. The record goes in first: a crash after the insert leaves a
// pending record the next run can complete without duplicating.
func (o *Orchestrator) materialize(householdID int64, tmpl model.TaskTemplate, child model.Child, d Decision) (bool, error) {
	rec, err := o.ledger.Insert(tmpl.ID, child.ID, householdID, *d.Deadline, d.Key)
	if errors.Is(err, store.ErrDuplicateKey) {
		// Another run got there first; not a failure.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert generation record: %w", err)
	}

	task, err := o.tasks.Create(householdID, tmpl.Title, &child.ID, tmpl.Category, nil, d.Deadline, tmpl.Weight, 0, model.TaskPending, model.SourceTemplate)
	if err != nil {
		return false, fmt.Errorf("create task: %w", err)
	}

	if err := o.ledger.MarkCreated(rec.ID, task.ID); err != nil {
		return false, fmt.Errorf("mark generation created: %w", err)
	}
	return true, nil
}

// GenerateAll runs generation for every active household. Each
// household is independent; one failing household is logged and the
// rest still run.
func (o *Orchestrator) GenerateAll(cfg Config) map[int64]Result {
	households, err := o.households.ListActive()
	if err != nil {
		o.logger.Error("list households", "error", err)
		return nil
	}

	results := make(map[int64]Result, len(households))
	for _, h := range households {
		res, err := o.GenerateForHousehold(h.ID, cfg)
		if err != nil {
			o.logger.Error("household generation failed", "household_id", h.ID, "error", err)
			continue
		}
		results[h.ID] = res
	}
	return results
}
