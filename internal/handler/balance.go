package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tdyer/loadshare/internal/balance"
	"github.com/tdyer/loadshare/internal/cache"
)

type BalanceHandler struct {
	calc   *balance.Calculator
	cache  *cache.Cache
	logger *slog.Logger
}

func NewBalanceHandler(calc *balance.Calculator, c *cache.Cache, logger *slog.Logger) *BalanceHandler {
	return &BalanceHandler{calc: calc, cache: c, logger: logger}
}

// Report returns the household's load distribution for a trailing
// period (?period_days=N, default 30). Reports are cached briefly; a
// slightly stale percentage is acceptable for a dashboard read.
func (h *BalanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	periodDays := balance.DefaultPeriodDays
	if raw := r.URL.Query().Get("period_days"); raw != "" {
		periodDays, err = strconv.Atoi(raw)
		if err != nil || periodDays <= 0 {
			writeError(w, http.StatusBadRequest, "period_days must be a positive integer")
			return
		}
	}

	key := fmt.Sprintf("balance:%d:%d", householdID, periodDays)
	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := h.calc.LoadByMember(householdID, periodDays)
	if err != nil {
		h.logger.Error("balance report", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}

	h.cache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}
