package handler

import (
	"queued-ledger/internal/adapter/http/dto"
	"queued-ledger/internal/core/ports"
	"queued-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// HistoryHandler handles undo and redo of processed transactions.
type HistoryHandler struct {
	ledger ports.LedgerService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(ledger ports.LedgerService) *HistoryHandler {
	return &HistoryHandler{ledger: ledger}
}

// Undo handles POST /api/v1/history/undo.
func (h *HistoryHandler) Undo(c *gin.Context) {
	respondOutcome(c, h.ledger.UndoLast(c.Request.Context()))
}

// Redo handles POST /api/v1/history/redo.
func (h *HistoryHandler) Redo(c *gin.Context) {
	respondOutcome(c, h.ledger.RedoLast(c.Request.Context()))
}

// Depth handles GET /api/v1/history.
func (h *HistoryHandler) Depth(c *gin.Context) {
	done, undone := h.ledger.HistoryDepth(c.Request.Context())
	response.OK(c, dto.HistoryResponse{Undoable: done, Redoable: undone})
}
