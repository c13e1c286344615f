package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Macro is a named recurrence shorthand. Zero value means the rule uses
// explicit cron-style fields instead.
type Macro int

const (
	MacroNone Macro = iota
	MacroDaily
	MacroWeekly
	MacroMonthly
	MacroYearly
)

var macroNames = map[Macro]string{
	MacroDaily:   "daily",
	MacroWeekly:  "weekly",
	MacroMonthly: "monthly",
	MacroYearly:  "yearly",
}

var macroFromName = map[string]Macro{
	"daily":   MacroDaily,
	"weekly":  MacroWeekly,
	"monthly": MacroMonthly,
	"yearly":  MacroYearly,
}

// Rule is either a macro or a 5-field cron-style expression
// (minute hour day-of-month month day-of-week, "*" = any).
// Only the day-of-month and month fields drive deadline dates; minute,
// hour and day-of-week are accepted for notification-time composition
// and ignored here.
type Rule struct {
	Macro Macro

	Day   int // 1-31; 0 when the field was "*" (defaults to day 1)
	Month int // 1-12; 0 when the field was "*" (monthly anchor)
}

// Parse parses a rule string: one of the macro names, or a 5-field
// cron-style expression like "0 9 15 * *".
func Parse(raw string) (Rule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	if m, ok := macroFromName[strings.ToLower(raw)]; ok {
		return Rule{Macro: m}, nil
	}

	fields := strings.Fields(raw)
	if len(fields) != 5 {
		return Rule{}, fmt.Errorf("expected macro or 5 fields, got %d in %q", len(fields), raw)
	}

	var r Rule

	day, err := parseField(fields[2], 1, 31)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid day-of-month: %w", err)
	}
	r.Day = day

	month, err := parseField(fields[3], 1, 12)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid month: %w", err)
	}
	r.Month = month

	return r, nil
}

func parseField(field string, min, max int) (int, error) {
	if field == "*" {
		return 0, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("%q out of range %d-%d", field, min, max)
	}
	return n, nil
}

// String serializes the rule back to its stored form.
func (r Rule) String() string {
	if r.Macro != MacroNone {
		return macroNames[r.Macro]
	}
	day := "*"
	if r.Day > 0 {
		day = strconv.Itoa(r.Day)
	}
	month := "*"
	if r.Month > 0 {
		month = strconv.Itoa(r.Month)
	}
	return fmt.Sprintf("* * %s %s *", day, month)
}

// Next returns the next occurrence strictly after the reference date.
// The reference is truncated to the start of its day; occurrences land
// at midnight in the reference location.
func (r Rule) Next(ref time.Time) time.Time {
	ref = startOfDay(ref)

	switch r.Macro {
	case MacroDaily:
		return ref.AddDate(0, 0, 1)
	case MacroWeekly:
		// Next Sunday; a Sunday reference still advances a full week.
		days := int(time.Sunday) - int(ref.Weekday())
		if days <= 0 {
			days += 7
		}
		return ref.AddDate(0, 0, days)
	case MacroMonthly:
		return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0)
	case MacroYearly:
		return time.Date(ref.Year()+1, time.January, 1, 0, 0, 0, 0, ref.Location())
	}

	day := r.Day
	if day == 0 {
		day = 1
	}

	if r.Month > 0 {
		// Yearly anchor: this year's date, or next year if already past.
		candidate := dateClamped(ref.Year(), time.Month(r.Month), day, ref.Location())
		if !candidate.After(ref) {
			candidate = dateClamped(ref.Year()+1, time.Month(r.Month), day, ref.Location())
		}
		return candidate
	}

	// Monthly anchor: this month's date, or next month if already past.
	candidate := dateClamped(ref.Year(), ref.Month(), day, ref.Location())
	if !candidate.After(ref) {
		next := ref.AddDate(0, 1, 0)
		candidate = dateClamped(next.Year(), next.Month(), day, ref.Location())
	}
	return candidate
}

// NextDeadline evaluates a stored rule string against a reference date.
// It returns nil when the rule is empty or unparseable; callers must
// treat nil as "do not generate".
func NextDeadline(raw string, ref time.Time) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	rule, err := Parse(raw)
	if err != nil {
		return nil
	}
	next := rule.Next(ref)
	return &next
}

// dateClamped builds a date with the day clamped to the month's length,
// so "day 31" resolves to Feb 28 rather than rolling into March.
func dateClamped(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
