// Package scheduler runs the nightly generation and assignment pass on
// a cron schedule.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tdyer/loadshare/internal/engine"
)

// DefaultSpec runs the pass every night at 03:00, after the day has
// rolled over everywhere the app is used.
const DefaultSpec = "0 3 * * *"

type Generator interface {
	GenerateAll(cfg engine.Config) map[int64]engine.Result
}

type Assigner interface {
	AutoAssignUnassigned(householdID int64) (int, error)
}

// Scheduler triggers generation for all households and then assigns
// whatever the run produced.
type Scheduler struct {
	cron      *cron.Cron
	generator Generator
	assigner  Assigner
	logger    *slog.Logger
}

func New(generator Generator, assigner Assigner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		generator: generator,
		assigner:  assigner,
		logger:    logger,
	}
}

// Start registers the nightly job and starts the cron loop. spec is a
// standard 5-field cron expression; empty means DefaultSpec.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "spec", spec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Run executes one generation-and-assignment pass. Exported so the
// trigger endpoint and tests can invoke the same path the cron job
// takes.
func (s *Scheduler) Run() {
	results := s.generator.GenerateAll(engine.Config{})

	for householdID, res := range results {
		if res.Generated == 0 {
			continue
		}
		assigned, err := s.assigner.AutoAssignUnassigned(householdID)
		if err != nil {
			s.logger.Error("auto-assign failed", "household_id", householdID, "error", err)
			continue
		}
		s.logger.Info("nightly pass complete",
			"household_id", householdID,
			"generated", res.Generated,
			"assigned", assigned)
	}
}
