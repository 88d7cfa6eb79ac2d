package handler

import (
	"net/http"

	"queued-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type depStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ledgerStatus struct {
	Accounts int `json:"accounts"`
	Pending  int `json:"pending"`
	Undoable int `json:"undoable"`
	Redoable int `json:"redoable"`
}

// HealthCheck reports engine counters and pings every external dependency.
// Any failed ping turns the response into 503 "degraded". In-memory mode
// has no checkers and is always healthy.
func HealthCheck(ledger ports.LedgerService, checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		deps := make(map[string]depStatus, len(checkers))
		healthy := true
		for _, checker := range checkers {
			if err := checker.Ping(ctx); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				healthy = false
				continue
			}
			deps[checker.Name()] = depStatus{Status: "healthy"}
		}

		done, undone := ledger.HistoryDepth(ctx)
		stats := ledgerStatus{
			Accounts: len(ledger.ListAccounts(ctx)),
			Pending:  len(ledger.PendingTransactions(ctx)),
			Undoable: done,
			Redoable: undone,
		}

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":       status,
			"ledger":       stats,
			"dependencies": deps,
		})
	}
}
