package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionCreateAccount AuditAction = "CREATE_ACCOUNT"
	AuditActionDeleteAccount AuditAction = "DELETE_ACCOUNT"
	AuditActionDeposit       AuditAction = "DEPOSIT"
	AuditActionWithdraw      AuditAction = "WITHDRAW"
	AuditActionTransfer      AuditAction = "TRANSFER"
	AuditActionEnqueue       AuditAction = "ENQUEUE"
	AuditActionProcess       AuditAction = "PROCESS"
	AuditActionUndo          AuditAction = "UNDO"
	AuditActionRedo          AuditAction = "REDO"
	AuditActionResetLimit    AuditAction = "RESET_LIMIT"
	AuditActionSnapshot      AuditAction = "SNAPSHOT"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
