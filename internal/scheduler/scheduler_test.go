package scheduler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/tdyer/loadshare/internal/engine"
)

type fakeGenerator struct {
	results map[int64]engine.Result
	runs    int
}

func (f *fakeGenerator) GenerateAll(engine.Config) map[int64]engine.Result {
	f.runs++
	return f.results
}

type fakeAssigner struct {
	calls []int64
}

func (f *fakeAssigner) AutoAssignUnassigned(householdID int64) (int, error) {
	f.calls = append(f.calls, householdID)
	return 1, nil
}

func TestRunAssignsOnlyWhenGenerated(t *testing.T) {
	gen := &fakeGenerator{results: map[int64]engine.Result{
		1: {Generated: 2},
		2: {Generated: 0, Skipped: 5},
	}}
	asn := &fakeAssigner{}
	s := New(gen, asn, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Run()

	if gen.runs != 1 {
		t.Fatalf("generator runs = %d, want 1", gen.runs)
	}
	if len(asn.calls) != 1 || asn.calls[0] != 1 {
		t.Errorf("assigner calls = %v, want [1]", asn.calls)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&fakeGenerator{}, &fakeAssigner{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := s.Start("not a cron spec"); err == nil {
		t.Fatal("expected error for malformed cron spec")
	}
}
