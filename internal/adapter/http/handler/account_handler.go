package handler

import (
	"context"
	"strconv"

	"queued-ledger/internal/adapter/http/dto"
	"queued-ledger/internal/adapter/http/middleware"
	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports"
	"queued-ledger/pkg/apperror"
	"queued-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account lifecycle, direct balance operations and
// statements.
type AccountHandler struct {
	ledger      ports.LedgerService
	persistence ports.PersistenceService // nil = archived statements unavailable
	adultAge    int
	log         zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger ports.LedgerService, persistence ports.PersistenceService, adultAge int, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{ledger: ledger, persistence: persistence, adultAge: adultAge, log: log}
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	acc, err := h.ledger.CreateAccount(c.Request.Context(), req.Name, req.InitialBalance, *req.Age)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, strconv.FormatInt(acc.ID, 10))
	response.Created(c, toAccountResponse(acc, h.adultAge))
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(c *gin.Context) {
	accounts := h.ledger.ListAccounts(c.Request.Context())

	items := make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toAccountResponse(a, h.adultAge))
	}
	response.OK(c, items)
}

// Get handles GET /api/v1/accounts/:id. The remaining limiter slots are
// omitted when the limiter cannot be reached.
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	acc, err := h.ledger.GetAccount(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toAccountResponse(acc, h.adultAge)
	if remaining, err := h.ledger.RemainingTransactions(ctx, id); err != nil {
		h.log.Warn().Err(err).Int64("account_id", id).Msg("remaining transactions unavailable")
	} else {
		resp.RemainingTransactions = &remaining
	}
	response.OK(c, resp)
}

// Delete handles DELETE /api/v1/accounts/:id.
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !h.ledger.DeleteAccount(c.Request.Context(), id) {
		response.Error(c, apperror.ErrNotFound("account"))
		return
	}
	response.OK(c, gin.H{"deleted": id})
}

// Deposit handles POST /api/v1/accounts/:id/deposit.
func (h *AccountHandler) Deposit(c *gin.Context) {
	h.balanceOp(c, h.ledger.Deposit)
}

// Withdraw handles POST /api/v1/accounts/:id/withdraw.
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.balanceOp(c, h.ledger.Withdraw)
}

func (h *AccountHandler) balanceOp(c *gin.Context, op func(ctx context.Context, id int64, amount decimal.Decimal) error) {
	id, err := accountIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := op(ctx, id, req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	acc, err := h.ledger.GetAccount(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toAccountResponse(acc, h.adultAge))
}

// Transfer handles POST /api/v1/transfers.
func (h *AccountHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := h.ledger.Transfer(ctx, req.From, req.To, req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	from, err := h.ledger.GetAccount(ctx, req.From)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := h.ledger.GetAccount(ctx, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, strconv.FormatInt(req.From, 10))
	response.OK(c, gin.H{
		"from": toAccountResponse(from, h.adultAge),
		"to":   toAccountResponse(to, h.adultAge),
	})
}

// Statement handles GET /api/v1/accounts/:id/statement?limit=N&source=memory|archive.
func (h *AccountHandler) Statement(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			response.Error(c, apperror.Validation("limit must be between 1 and 100"))
			return
		}
	}

	source := c.DefaultQuery("source", "memory")
	ctx := c.Request.Context()

	var entries []domain.StatementEntry
	switch source {
	case "memory":
		entries, err = h.ledger.Statement(ctx, id, limit)
	case "archive":
		if h.persistence == nil {
			response.Error(c, apperror.ErrPersistenceDisabled())
			return
		}
		entries, err = h.persistence.ArchivedStatement(ctx, id, limit)
	default:
		response.Error(c, apperror.Validation("source must be memory or archive"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatementResponse{
		AccountID: id,
		Source:    source,
		Entries:   toStatementEntries(entries),
	})
}

// ResetRateLimit handles DELETE /api/v1/accounts/:id/rate-limit.
func (h *AccountHandler) ResetRateLimit(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.ledger.ResetRateLimit(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"account_id": id, "reset": true})
}
