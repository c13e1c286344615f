package engine

import (
	"testing"
	"time"

	"github.com/tdyer/loadshare/internal/model"
)

func noKeys() map[string]struct{} {
	return map[string]struct{}{}
}

func TestShouldGenerateInactiveTemplate(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 1, AgeMin: 0, AgeMax: 18, IsActive: false}
	child := model.Child{ID: 1, Birthdate: time.Date(2019, 3, 10, 0, 0, 0, 0, time.UTC)}
	cfg := Config{Now: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}

	d := ShouldGenerate(tmpl, child, noKeys(), cfg)
	if d.Generate {
		t.Fatal("inactive template must not generate")
	}
	if d.Reason != ReasonTemplateInactive {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonTemplateInactive)
	}
}

func TestShouldGenerateAgeOutOfRange(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 1, AgeMin: 6, AgeMax: 11, ScheduleRule: "weekly", IsActive: true}
	// Two-year-old against a school-age template.
	child := model.Child{ID: 1, Birthdate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	cfg := Config{Now: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}

	d := ShouldGenerate(tmpl, child, noKeys(), cfg)
	if d.Generate {
		t.Fatal("out-of-range age must not generate")
	}
	if d.Reason != ReasonAgeOutOfRange {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonAgeOutOfRange)
	}
}

func TestShouldGenerateWeekly(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 42, AgeMin: 6, AgeMax: 11, ScheduleRule: "weekly", IsActive: true}
	child := model.Child{ID: 1, Birthdate: time.Date(2019, 4, 10, 0, 0, 0, 0, time.UTC)}
	// Saturday; the next occurrence is the following day.
	cfg := Config{Now: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}

	d := ShouldGenerate(tmpl, child, noKeys(), cfg)
	if !d.Generate {
		t.Fatalf("expected generation, got reason %q", d.Reason)
	}
	want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if !d.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want Sunday %v", d.Deadline, want)
	}
	if d.Key != "42:2026-08-30" {
		t.Errorf("key = %q, want %q", d.Key, "42:2026-08-30")
	}
}

func TestShouldGenerateYearlyWithinWindow(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 7, AgeMin: 0, AgeMax: 18, ScheduleRule: "* * 1 9 *", IsActive: true}
	child := model.Child{ID: 1, Birthdate: time.Date(2019, 4, 10, 0, 0, 0, 0, time.UTC)}
	cfg := Config{Now: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)}

	d := ShouldGenerate(tmpl, child, noKeys(), cfg)
	if !d.Generate {
		t.Fatalf("expected generation, got reason %q", d.Reason)
	}
	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !d.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", d.Deadline, want)
	}
}

func TestShouldGenerateOutsideLookAhead(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 7, AgeMin: 0, AgeMax: 18, ScheduleRule: "* * 1 9 *", IsActive: true}
	child := model.Child{ID: 1, Birthdate: time.Date(2019, 4, 10, 0, 0, 0, 0, time.UTC)}
	// September 1 is over seven months out.
	cfg := Config{Now: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)}

	d := ShouldGenerate(tmpl, child, noKeys(), cfg)
	if d.Generate {
		t.Fatal("deadline beyond the look-ahead must not generate")
	}
	if d.Reason != ReasonOutsideWindow {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonOutsideWindow)
	}
}

func TestShouldGenerateLookAheadOverride(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 7, AgeMin: 0, AgeMax: 18, ScheduleRule: "* * 1 9 *", IsActive: true}
	child := model.Child{ID: 1, Birthdate: time.Date(2019, 4, 10, 0, 0, 0, 0, time.UTC)}
	// 43 days out: rejected at the default window, accepted at 60.
	now := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)

	d := ShouldGenerate(tmpl, child, noKeys(), Config{Now: now})
	if d.Generate {
		t.Fatal("43 days out must not pass the default look-ahead")
	}

	d = ShouldGenerate(tmpl, child, noKeys(), Config{Now: now, LookAheadDays: 60})
	if !d.Generate {
		t.Fatalf("expected generation with extended look-ahead, got %q", d.Reason)
	}
}

func TestShouldGenerateMalformedRule(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 7, AgeMin: 0, AgeMax: 18, ScheduleRule: "every other thursday", IsActive: true}
	child := model.Child{ID: 1, Birthdate: time.Date(2019, 4, 10, 0, 0, 0, 0, time.UTC)}
	cfg := Config{Now: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}

	d := ShouldGenerate(tmpl, child, noKeys(), cfg)
	if d.Generate {
		t.Fatal("malformed rule must never generate")
	}
	if d.Reason != ReasonNoDeadline {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonNoDeadline)
	}
}

func TestShouldGenerateAlreadyGenerated(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 42, AgeMin: 6, AgeMax: 11, ScheduleRule: "weekly", IsActive: true}
	child := model.Child{ID: 1, Birthdate: time.Date(2019, 4, 10, 0, 0, 0, 0, time.UTC)}
	cfg := Config{Now: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}

	existing := map[string]struct{}{"42:2026-08-30": {}}
	d := ShouldGenerate(tmpl, child, existing, cfg)
	if d.Generate {
		t.Fatal("existing key must not generate again")
	}
	if d.Reason != ReasonAlreadyGenerated {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonAlreadyGenerated)
	}
}

func TestShouldGenerateMilestoneOutsideWindow(t *testing.T) {
	tmpl := model.TaskTemplate{ID: 5, AgeMin: 0, AgeMax: 0, Title: "Vaccin 2 mois", DaysBeforeDeadline: 14, IsActive: true}
	// Newborn: the two-month mark is still too far out.
	child := model.Child{ID: 1, Birthdate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)}
	cfg := Config{Now: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}

	d := ShouldGenerate(tmpl, child, noKeys(), cfg)
	if d.Generate {
		t.Fatal("milestone outside its window must not generate")
	}
	if d.Reason != ReasonOutsideWindow {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonOutsideWindow)
	}
}
