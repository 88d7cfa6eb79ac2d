package handler

import (
	"encoding/json"
	"time"

	"queued-ledger/internal/adapter/http/dto"
	"queued-ledger/internal/adapter/http/middleware"
	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports"
	"queued-ledger/pkg/apperror"
	"queued-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderIdempotencyKey makes POST /queue safe to retry.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay is set on responses served from the cache.
	HeaderIdempotentReplay = "Idempotent-Replay"

	idempotencyTTL       = 24 * time.Hour
	maxIdempotencyKeyLen = 128
)

// QueueHandler handles the pending-transaction queue.
type QueueHandler struct {
	ledger ports.LedgerService
	cache  ports.IdempotencyCache // nil = Idempotency-Key ignored
	log    zerolog.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(ledger ports.LedgerService, cache ports.IdempotencyCache, log zerolog.Logger) *QueueHandler {
	return &QueueHandler{ledger: ledger, cache: cache, log: log}
}

// Enqueue handles POST /api/v1/queue. A repeated Idempotency-Key returns
// the transaction queued by the first request instead of queuing another.
func (h *QueueHandler) Enqueue(c *gin.Context) {
	key := c.GetHeader(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key is too long"))
		return
	}

	var req dto.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	ctx := c.Request.Context()
	useCache := key != "" && h.cache != nil

	// Layer 1: Redis idempotency check (best-effort)
	if useCache {
		cached, err := h.cache.Get(ctx, key)
		if err != nil {
			h.log.Warn().Err(err).Str("key", key).Msg("idempotency check failed, enqueuing anyway")
		} else if cached != nil {
			var resp dto.TransactionResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				c.Header(HeaderIdempotentReplay, "true")
				c.Set(middleware.CtxResourceID, resp.ID)
				response.OK(c, resp)
				return
			}
			h.log.Warn().Str("key", key).Msg("discarding unreadable idempotency entry")
		}
	}

	t, err := buildTransaction(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	queued := h.ledger.EnqueueTransaction(ctx, t)
	resp := toTransactionResponse(queued)

	if useCache {
		if body, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(ctx, key, body, idempotencyTTL); err != nil {
				h.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency entry")
			}
		}
	}

	c.Set(middleware.CtxResourceID, resp.ID)
	response.Accepted(c, resp)
}

func buildTransaction(req dto.EnqueueRequest) (domain.Transaction, error) {
	kind, _ := domain.ParseTransactionKind(req.Kind)
	switch kind {
	case domain.TransactionKindDeposit:
		return domain.NewDeposit(req.Source, req.Amount), nil
	case domain.TransactionKindWithdraw:
		return domain.NewWithdrawal(req.Source, req.Amount), nil
	case domain.TransactionKindTransfer:
		if req.Target == 0 {
			return domain.Transaction{}, apperror.Validation("target is required for TRANSFER")
		}
		return domain.NewTransfer(req.Source, req.Target, req.Amount), nil
	}
	return domain.Transaction{}, apperror.Validation("unknown transaction kind")
}

// List handles GET /api/v1/queue.
func (h *QueueHandler) List(c *gin.Context) {
	pending := h.ledger.PendingTransactions(c.Request.Context())

	items := make([]dto.TransactionResponse, 0, len(pending))
	for _, t := range pending {
		items = append(items, toTransactionResponse(t))
	}
	response.OK(c, dto.QueueResponse{Pending: len(items), Transactions: items})
}

// ProcessNext handles POST /api/v1/queue/process. A failed transaction is
// reported with the error that rejected it.
func (h *QueueHandler) ProcessNext(c *gin.Context) {
	respondOutcome(c, h.ledger.ProcessNext(c.Request.Context()))
}

// ProcessAll handles POST /api/v1/queue/process-all.
func (h *QueueHandler) ProcessAll(c *gin.Context) {
	outcomes := h.ledger.ProcessAll(c.Request.Context())

	resp := dto.ProcessAllResponse{Outcomes: make([]dto.OutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		if o.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
		resp.Outcomes = append(resp.Outcomes, toOutcomeResponse(o))
	}
	response.OK(c, resp)
}

func respondOutcome(c *gin.Context, o domain.Outcome) {
	if !o.Success {
		response.Error(c, apperror.Describe(o.Err, o.Message))
		return
	}
	response.OK(c, toOutcomeResponse(o))
}
