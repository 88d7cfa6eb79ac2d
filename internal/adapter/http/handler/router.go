package handler

import (
	"queued-ledger/internal/adapter/http/middleware"
	"queued-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds every request body. Ledger payloads are tiny.
const maxBodyBytes = 64 << 10

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Ledger           ports.LedgerService
	Persistence      ports.PersistenceService // nil = persistence disabled
	IdempotencyCache ports.IdempotencyCache   // nil = Idempotency-Key ignored
	AuditSvc         ports.AuditService       // nil = audit logging disabled
	HealthCheckers   []ports.HealthChecker
	AdultAge         int
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.Ledger, deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", HealthCheck(deps.Ledger, deps.HealthCheckers...))

	accountHandler := NewAccountHandler(deps.Ledger, deps.Persistence, deps.AdultAge, deps.Logger)
	accounts := v1.Group("/accounts")
	{
		accounts.POST("", accountHandler.Create)
		accounts.GET("", accountHandler.List)
		accounts.GET("/:id", accountHandler.Get)
		accounts.DELETE("/:id", accountHandler.Delete)
		accounts.POST("/:id/deposit", accountHandler.Deposit)
		accounts.POST("/:id/withdraw", accountHandler.Withdraw)
		accounts.GET("/:id/statement", accountHandler.Statement)
		accounts.DELETE("/:id/rate-limit", accountHandler.ResetRateLimit)
	}
	v1.POST("/transfers", accountHandler.Transfer)

	queueHandler := NewQueueHandler(deps.Ledger, deps.IdempotencyCache, deps.Logger)
	queue := v1.Group("/queue")
	{
		queue.POST("", queueHandler.Enqueue)
		queue.GET("", queueHandler.List)
		queue.POST("/process", queueHandler.ProcessNext)
		queue.POST("/process-all", queueHandler.ProcessAll)
	}

	historyHandler := NewHistoryHandler(deps.Ledger)
	history := v1.Group("/history")
	{
		history.GET("", historyHandler.Depth)
		history.POST("/undo", historyHandler.Undo)
		history.POST("/redo", historyHandler.Redo)
	}

	snapshotHandler := NewSnapshotHandler(deps.Ledger, deps.Persistence)
	v1.POST("/snapshot", snapshotHandler.Save)

	return r
}
