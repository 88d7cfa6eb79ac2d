package postgres

import (
	"context"
	"testing"
	"time"

	"queued-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepository(mock)
	details := `{"method":"POST","path":"/api/v1/transfers","status":200}`
	entry := &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionTransfer,
		ResourceType: "account",
		ResourceID:   "1001",
		Details:      details,
		IPAddress:    "10.0.0.1",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, "TRANSFER", "account", "1001", &details, "10.0.0.1", entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Create_NoDetails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepository(mock)
	entry := &domain.AuditLog{ID: uuid.New(), Action: domain.AuditActionUndo, ResourceType: "history"}

	var noDetails *string
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, "UNDO", "history", "", noDetails, "", entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}
