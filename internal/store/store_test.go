package store

import (
	"database/sql"
	"testing"

	"github.com/tdyer/loadshare/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHouseholdCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	h, err := hs.Create("Martin", "FR")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Name != "Martin" {
		t.Errorf("name = %q, want %q", h.Name, "Martin")
	}
	if h.Country != "FR" {
		t.Errorf("country = %q, want %q", h.Country, "FR")
	}
	if !h.Active {
		t.Error("new household should be active")
	}

	got, err := hs.GetByID(h.ID)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if got == nil || got.ID != h.ID {
		t.Fatalf("got = %v, want household %d", got, h.ID)
	}
}

func TestHouseholdGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	got, err := hs.GetByID(9999)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent household")
	}
}

func TestMemberListActive(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ms := NewMemberStore(db)

	h, err := hs.Create("Martin", "FR")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	alice, err := ms.Create(h.ID, "Alice", "parent")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := ms.Create(h.ID, "Bob", "parent"); err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := ms.SetActive(alice.ID, h.ID, false); err != nil {
		t.Fatalf("set member inactive: %v", err)
	}

	active, err := ms.ListActive(h.ID)
	if err != nil {
		t.Fatalf("list active members: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active member, got %d", len(active))
	}
	if active[0].Name != "Bob" {
		t.Errorf("active member = %q, want Bob", active[0].Name)
	}

	all, err := ms.List(h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 members total, got %d", len(all))
	}
}
