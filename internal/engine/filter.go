package engine

import (
	"time"

	"github.com/tdyer/loadshare/internal/age"
	"github.com/tdyer/loadshare/internal/model"
	"github.com/tdyer/loadshare/internal/schedule"
)

// Reason explains why a (child, template) pair was accepted or skipped.
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonAgeOutOfRange    Reason = "age_out_of_range"
	ReasonTemplateInactive Reason = "template_inactive"
	ReasonAlreadyGenerated Reason = "already_generated"
	ReasonNoDeadline       Reason = "no_deadline"
	ReasonOutsideWindow    Reason = "outside_window"
)

// recurringGraceDays is the trailing window for recurring deadlines;
// look-ahead is bounded by Config.LookAheadDays.
const recurringGraceDays = 7

// DefaultLookAheadDays bounds how far into the future a recurring
// template may generate an instance.
const DefaultLookAheadDays = 30

// Config tunes a generation run.
type Config struct {
	// Now overrides the reference date; zero means time.Now().
	Now time.Time

	// LookAheadDays overrides the recurring look-ahead window;
	// zero means DefaultLookAheadDays.
	LookAheadDays int
}

func (c Config) reference() time.Time {
	if c.Now.IsZero() {
		return startOfDay(time.Now())
	}
	return startOfDay(c.Now)
}

func (c Config) lookAhead() int {
	if c.LookAheadDays <= 0 {
		return DefaultLookAheadDays
	}
	return c.LookAheadDays
}

// Decision is the outcome of evaluating one (child, template) pair.
// Deadline and Key are set only when Generate is true.
type Decision struct {
	Generate bool
	Reason   Reason
	Deadline *time.Time
	Key      string
}

func skip(reason Reason) Decision {
	return Decision{Reason: reason}
}

// ShouldGenerate decides whether a template should materialize a task
// for a child on this run. It is side-effect free: existing holds the
// generation keys loaded once at the start of the run, and nothing here
// touches the store.
func ShouldGenerate(tmpl model.TaskTemplate, child model.Child, existing map[string]struct{}, cfg Config) Decision {
	now := cfg.reference()

	if !tmpl.IsActive {
		return skip(ReasonTemplateInactive)
	}

	years := age.Years(child.Birthdate, now)
	if years < tmpl.AgeMin || years > tmpl.AgeMax {
		return skip(ReasonAgeOutOfRange)
	}

	var deadline *time.Time
	if tmpl.IsRecurring() {
		deadline = schedule.NextDeadline(tmpl.ScheduleRule, now)
		if deadline == nil {
			// Malformed rules never generate.
			return skip(ReasonNoDeadline)
		}
		days := daysUntil(*deadline, now)
		if days < -recurringGraceDays || days > cfg.lookAhead() {
			return skip(ReasonOutsideWindow)
		}
	} else {
		m := ResolveMilestone(tmpl, child.Birthdate, now)
		if !m.Generate || m.Deadline == nil {
			return skip(ReasonOutsideWindow)
		}
		deadline = m.Deadline
	}

	key := GenerationKey(tmpl.ID, *deadline)
	if _, ok := existing[key]; ok {
		return skip(ReasonAlreadyGenerated)
	}

	return Decision{Generate: true, Reason: ReasonOK, Deadline: deadline, Key: key}
}
