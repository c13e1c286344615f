package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tdyer/loadshare/internal/assign"
	"github.com/tdyer/loadshare/internal/balance"
	"github.com/tdyer/loadshare/internal/cache"
	"github.com/tdyer/loadshare/internal/engine"
	"github.com/tdyer/loadshare/internal/exclusion"
	"github.com/tdyer/loadshare/internal/handler"
	"github.com/tdyer/loadshare/internal/middleware"
	"github.com/tdyer/loadshare/internal/scheduler"
	"github.com/tdyer/loadshare/internal/store"
	ws "github.com/tdyer/loadshare/internal/websocket"
)

const (
	balanceCacheEntries = 256
	balanceCacheTTL     = 30 * time.Second
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	householdH  *handler.HouseholdHandler
	childH      *handler.ChildHandler
	templateH   *handler.TemplateHandler
	taskH       *handler.TaskHandler
	exclusionH  *handler.ExclusionHandler
	balanceH    *handler.BalanceHandler
	generationH *handler.GenerationHandler
	scheduler   *scheduler.Scheduler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	householdStore := store.NewHouseholdStore(db)
	memberStore := store.NewMemberStore(db)
	childStore := store.NewChildStore(db)
	templateStore := store.NewTemplateStore(db)
	taskStore := store.NewTaskStore(db)
	generatedStore := store.NewGeneratedStore(db)
	exclusionStore := store.NewExclusionStore(db)

	exclusionMgr := exclusion.NewManager(exclusionStore)
	calculator := balance.NewCalculator(taskStore, memberStore, balance.Config{})
	assigner := assign.NewEngine(memberStore, taskStore, exclusionMgr, calculator,
		assign.Config{}, logger.With("component", "assign"))
	orchestrator := engine.NewOrchestrator(householdStore, childStore, templateStore,
		generatedStore, taskStore, logger.With("component", "engine"))

	sched := scheduler.New(orchestrator, assigner, logger.With("component", "scheduler"))
	balanceCache := cache.New(balanceCacheEntries, balanceCacheTTL)

	return &Server{
		db:          db,
		hub:         hub,
		householdH:  handler.NewHouseholdHandler(householdStore, memberStore, logger.With("component", "household")),
		childH:      handler.NewChildHandler(childStore, logger.With("component", "child")),
		templateH:   handler.NewTemplateHandler(templateStore, logger.With("component", "template")),
		taskH:       handler.NewTaskHandler(taskStore, assigner, hub, logger.With("component", "task")),
		exclusionH:  handler.NewExclusionHandler(exclusionMgr, exclusionStore, hub, logger.With("component", "exclusion")),
		balanceH:    handler.NewBalanceHandler(calculator, balanceCache, logger.With("component", "balance")),
		generationH: handler.NewGenerationHandler(orchestrator, generatedStore, assigner, hub, logger.With("component", "generation")),
		scheduler:   sched,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Scheduler returns the nightly generation scheduler for lifecycle
// control by main.
func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/{householdID}", s.householdH.Get)

	mux.HandleFunc("GET /api/households/{householdID}/members", s.householdH.ListMembers)
	mux.HandleFunc("POST /api/households/{householdID}/members", s.householdH.CreateMember)
	mux.HandleFunc("PUT /api/households/{householdID}/members/{id}/active", s.householdH.SetMemberActive)

	mux.HandleFunc("GET /api/households/{householdID}/children", s.childH.List)
	mux.HandleFunc("POST /api/households/{householdID}/children", s.childH.Create)
	mux.HandleFunc("PUT /api/households/{householdID}/children/{id}", s.childH.Update)
	mux.HandleFunc("PUT /api/households/{householdID}/children/{id}/active", s.childH.SetActive)

	mux.HandleFunc("GET /api/templates", s.templateH.ListCatalog)
	mux.HandleFunc("GET /api/households/{householdID}/templates", s.templateH.ListForHousehold)
	mux.HandleFunc("PUT /api/households/{householdID}/templates/{id}/enabled", s.templateH.SetEnabled)

	mux.HandleFunc("GET /api/households/{householdID}/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/households/{householdID}/tasks", s.taskH.Create)
	mux.HandleFunc("POST /api/households/{householdID}/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/households/{householdID}/tasks/{id}/postpone", s.taskH.Postpone)
	mux.HandleFunc("POST /api/households/{householdID}/tasks/{id}/cancel", s.taskH.Cancel)
	mux.HandleFunc("POST /api/households/{householdID}/tasks/{id}/assign", s.taskH.Assign)
	mux.HandleFunc("POST /api/households/{householdID}/tasks/auto-assign", s.taskH.AutoAssign)

	mux.HandleFunc("GET /api/households/{householdID}/exclusions", s.exclusionH.List)
	mux.HandleFunc("POST /api/households/{householdID}/members/{id}/exclusions", s.exclusionH.Create)
	mux.HandleFunc("DELETE /api/households/{householdID}/exclusions/{id}", s.exclusionH.Delete)

	mux.HandleFunc("GET /api/households/{householdID}/balance", s.balanceH.Report)

	// Generation runs hit every (child, template) pair; rate limit the
	// manual trigger.
	mux.HandleFunc("POST /api/households/{householdID}/generate", s.rateLimitedHandler(s.generationH.Trigger))
	mux.HandleFunc("GET /api/households/{householdID}/generated", s.generationH.ListRecords)
	mux.HandleFunc("POST /api/households/{householdID}/generated/{id}/ack", s.generationH.Acknowledge)

	mux.HandleFunc("GET /ws/{householdID}", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
