package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tdyer/loadshare/internal/age"
	"github.com/tdyer/loadshare/internal/model"
)

const (
	// graceDays is the trailing window during which an already-due
	// milestone may still be generated.
	graceDays = 30

	// yearMilestoneAheadDays bounds look-ahead for milestones anchored
	// to a birthday rather than a month offset.
	yearMilestoneAheadDays = 60

	// rangeDeadlineDays is the soft deadline for range milestones,
	// which have no natural anchor date.
	rangeDeadlineDays = 30
)

// MilestoneDecision is the outcome of resolving a one-time template
// against a child. Deadline is nil whenever Generate is false.
type MilestoneDecision struct {
	Generate bool
	Deadline *time.Time
}

var monthPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:month|mois)`)

// monthTarget extracts a month offset from the template's title or
// description ("2 month checkup", "vaccin 11 mois"). Returns 0 when no
// month figure appears.
func monthTarget(tmpl model.TaskTemplate) int {
	for _, text := range []string{tmpl.Title, tmpl.Description} {
		m := monthPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(m[1])); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// ResolveMilestone decides whether a one-time template is due for a
// child and computes its deadline.
//
// Point milestones (ageMin == ageMax) are anchored to the birthdate:
// targets up to two years resolve by month offset (vaccine-style
// schedules name their month in the title; unresolved titles fall back
// to ageMin*12), older targets resolve by birthday year. Range
// milestones are due whenever the child's age falls inside the range
// and get a soft deadline 30 days out.
func ResolveMilestone(tmpl model.TaskTemplate, birthdate, now time.Time) MilestoneDecision {
	now = startOfDay(now)
	birthdate = startOfDay(birthdate)

	if tmpl.AgeMin != tmpl.AgeMax {
		years := age.Years(birthdate, now)
		if years < tmpl.AgeMin || years > tmpl.AgeMax {
			return MilestoneDecision{}
		}
		deadline := now.AddDate(0, 0, rangeDeadlineDays)
		return MilestoneDecision{Generate: true, Deadline: &deadline}
	}

	target := tmpl.AgeMin

	if target <= 2 {
		months := monthTarget(tmpl)
		if months == 0 {
			months = target * 12
		}
		deadline := birthdate.AddDate(0, months, 0)
		days := daysUntil(deadline, now)
		if days < -graceDays || days > tmpl.DaysBeforeDeadline+graceDays {
			return MilestoneDecision{}
		}
		return MilestoneDecision{Generate: true, Deadline: &deadline}
	}

	deadline := birthdate.AddDate(target, 0, 0)
	days := daysUntil(deadline, now)
	if days < -graceDays || days > yearMilestoneAheadDays {
		return MilestoneDecision{}
	}
	return MilestoneDecision{Generate: true, Deadline: &deadline}
}

// daysUntil counts whole days from now to deadline; negative when the
// deadline has passed. Both arguments are expected at start of day.
func daysUntil(deadline, now time.Time) int {
	return int(deadline.Sub(now).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
