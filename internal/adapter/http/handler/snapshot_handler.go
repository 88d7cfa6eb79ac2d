package handler

import (
	"time"

	"queued-ledger/internal/adapter/http/dto"
	"queued-ledger/internal/core/ports"
	"queued-ledger/pkg/apperror"
	"queued-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// SnapshotHandler triggers manual saves of the ledger.
type SnapshotHandler struct {
	ledger      ports.LedgerService
	persistence ports.PersistenceService // nil = persistence disabled
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(ledger ports.LedgerService, persistence ports.PersistenceService) *SnapshotHandler {
	return &SnapshotHandler{ledger: ledger, persistence: persistence}
}

// Save handles POST /api/v1/snapshot.
func (h *SnapshotHandler) Save(c *gin.Context) {
	if h.persistence == nil {
		response.Error(c, apperror.ErrPersistenceDisabled())
		return
	}

	ctx := c.Request.Context()
	if err := h.persistence.Save(ctx); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.SnapshotResponse{
		Accounts: len(h.ledger.ListAccounts(ctx)),
		SavedAt:  time.Now().UTC().Format(timeLayout),
	})
}
