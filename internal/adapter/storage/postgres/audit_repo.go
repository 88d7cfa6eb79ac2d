package postgres

import (
	"context"
	"fmt"

	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepository creates a PostgreSQL-backed AuditRepository.
func NewAuditRepository(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	var details *string
	if log.Details != "" {
		details = &log.Details
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, action, resource_type, resource_id, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, string(log.Action), log.ResourceType,
		log.ResourceID, details, log.IPAddress, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
