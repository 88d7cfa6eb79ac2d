package postgres

import (
	"context"
	"fmt"
	"time"
)

const pingTimeout = 2 * time.Second

// HealthCheck reports PostgreSQL as healthy only when the journal table is
// reachable, so a database without the ledger schema reads as unhealthy.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := h.pool.Exec(ctx, "SELECT 1 FROM journal_entries LIMIT 0"); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
