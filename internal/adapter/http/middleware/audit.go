package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports"
	"queued-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxResourceID lets a handler name the resource it touched when the route
// has no :id parameter (new accounts, queued transactions).
const CtxResourceID = "audit_resource_id"

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// auditRoutes is keyed by method and gin route template.
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/accounts":                  {domain.AuditActionCreateAccount, "account"},
	"DELETE /api/v1/accounts/:id":            {domain.AuditActionDeleteAccount, "account"},
	"POST /api/v1/accounts/:id/deposit":      {domain.AuditActionDeposit, "account"},
	"POST /api/v1/accounts/:id/withdraw":     {domain.AuditActionWithdraw, "account"},
	"DELETE /api/v1/accounts/:id/rate-limit": {domain.AuditActionResetLimit, "account"},
	"POST /api/v1/transfers":                 {domain.AuditActionTransfer, "account"},
	"POST /api/v1/queue":                     {domain.AuditActionEnqueue, "transaction"},
	"POST /api/v1/queue/process":             {domain.AuditActionProcess, "queue"},
	"POST /api/v1/queue/process-all":         {domain.AuditActionProcess, "queue"},
	"POST /api/v1/history/undo":              {domain.AuditActionUndo, "history"},
	"POST /api/v1/history/redo":              {domain.AuditActionRedo, "history"},
	"POST /api/v1/snapshot":                  {domain.AuditActionSnapshot, "ledger"},
}

// AuditLog creates an audit middleware that logs successful write operations.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		action, resourceType := mapRouteToAction(c.Request.Method, c.FullPath())
		if action == "" {
			return
		}

		resourceID := c.Param("id")
		if id := c.GetString(CtxResourceID); id != "" {
			resourceID = id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(response.RequestIDKey),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func mapRouteToAction(method, route string) (domain.AuditAction, string) {
	r, ok := auditRoutes[method+" "+route]
	if !ok {
		return "", ""
	}
	return r.action, r.resourceType
}
