package store

import (
	"testing"
)

func TestTemplateSeedCatalog(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTemplateStore(db)

	templates, err := ts.ListActive()
	if err != nil {
		t.Fatalf("list active templates: %v", err)
	}
	if len(templates) != 13 {
		t.Fatalf("expected 13 seed templates, got %d", len(templates))
	}
	for _, tmpl := range templates {
		if tmpl.Country != "FR" {
			t.Errorf("template %d country = %q, want FR", tmpl.ID, tmpl.Country)
		}
	}
}

func TestTemplateCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTemplateStore(db)

	tmpl, err := ts.Create("FR", 6, 11, "school", "Inscription cantine", "Renouveler l'inscription", "* * 1 6 *", 2, 21)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if tmpl.Title != "Inscription cantine" {
		t.Errorf("title = %q", tmpl.Title)
	}
	if tmpl.AgeMin != 6 || tmpl.AgeMax != 11 {
		t.Errorf("age range = %d-%d, want 6-11", tmpl.AgeMin, tmpl.AgeMax)
	}
	if !tmpl.IsRecurring() {
		t.Error("template with schedule rule should be recurring")
	}

	got, err := ts.GetByID(tmpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if got == nil || got.ScheduleRule != "* * 1 6 *" {
		t.Fatalf("got = %+v, want schedule rule preserved", got)
	}
}

func TestListEnabledForHousehold(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ts := NewTemplateStore(db)

	h, err := hs.Create("Martin", "FR")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	all, err := ts.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}

	// No overrides: every active template is enabled.
	enabled, err := ts.ListEnabledForHousehold(h.ID)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != len(all) {
		t.Fatalf("enabled = %d, want %d with no overrides", len(enabled), len(all))
	}

	// Disable one for this household.
	if err := ts.SetHouseholdEnabled(h.ID, all[0].ID, false); err != nil {
		t.Fatalf("disable template: %v", err)
	}
	enabled, err = ts.ListEnabledForHousehold(h.ID)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != len(all)-1 {
		t.Fatalf("enabled = %d, want %d after disabling one", len(enabled), len(all)-1)
	}
	for _, tmpl := range enabled {
		if tmpl.ID == all[0].ID {
			t.Errorf("disabled template %d still listed", tmpl.ID)
		}
	}

	// The override is per household.
	other, err := hs.Create("Dupont", "FR")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	otherEnabled, err := ts.ListEnabledForHousehold(other.ID)
	if err != nil {
		t.Fatalf("list enabled other: %v", err)
	}
	if len(otherEnabled) != len(all) {
		t.Errorf("other household enabled = %d, want %d", len(otherEnabled), len(all))
	}

	// Re-enable flips the existing override row.
	if err := ts.SetHouseholdEnabled(h.ID, all[0].ID, true); err != nil {
		t.Fatalf("re-enable template: %v", err)
	}
	enabled, err = ts.ListEnabledForHousehold(h.ID)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != len(all) {
		t.Errorf("enabled = %d, want %d after re-enabling", len(enabled), len(all))
	}
}
