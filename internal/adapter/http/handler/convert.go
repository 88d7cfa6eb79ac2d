package handler

import (
	"strconv"
	"time"

	"queued-ledger/internal/adapter/http/dto"
	"queued-ledger/internal/core/domain"
	"queued-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const timeLayout = time.RFC3339Nano

// accountIDParam parses the :id route parameter.
func accountIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("account id must be a positive integer")
	}
	return id, nil
}

func toAccountResponse(a domain.Account, adultAge int) dto.AccountResponse {
	return dto.AccountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Balance:          a.Balance.String(),
		Age:              a.Age,
		Minor:            a.IsMinor(adultAge),
		TransactionCount: a.TransactionCount,
		CreatedAt:        a.CreatedAt.Format(timeLayout),
	}
}

func toTransactionResponse(t domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        t.ID.String(),
		Kind:      string(t.Kind),
		Source:    t.Source,
		Target:    t.Target,
		Amount:    t.Amount.String(),
		Timestamp: t.Timestamp.Format(timeLayout),
	}
}

func toOutcomeResponse(o domain.Outcome) dto.OutcomeResponse {
	resp := dto.OutcomeResponse{Success: o.Success, Message: o.Message}
	if o.Transaction != nil {
		tx := toTransactionResponse(*o.Transaction)
		resp.Transaction = &tx
	}
	return resp
}

func toStatementEntries(entries []domain.StatementEntry) []dto.StatementEntryResponse {
	out := make([]dto.StatementEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.StatementEntryResponse{
			TransactionID: e.TransactionID.String(),
			Kind:          string(e.Kind),
			Direction:     string(e.Direction),
			Amount:        e.Amount.String(),
			BalanceAfter:  e.BalanceAfter.String(),
			Counterparty:  e.Counterparty,
			Timestamp:     e.Timestamp.Format(timeLayout),
		})
	}
	return out
}
