package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	done := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, log *domain.AuditLog) error {
			assert.Equal(t, domain.AuditActionTransfer, log.Action)
			assert.Equal(t, "1001", log.ResourceID)
			close(done)
			return nil
		},
	)

	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionTransfer,
		ResourceType: "account",
		ResourceID:   "1001",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit log not persisted in time")
	}
}

func TestAuditService_Log_RepoErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	done := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.AuditLog) error {
			defer close(done)
			return errors.New("db down")
		},
	)

	svc.Log(context.Background(), &domain.AuditLog{ID: uuid.New(), Action: domain.AuditActionUndo, ResourceType: "history"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit repo not called in time")
	}
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, newTestLogger())

	// Should not panic
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionCreateAccount,
		ResourceType: "account",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	time.Sleep(50 * time.Millisecond) // let goroutine run
}
