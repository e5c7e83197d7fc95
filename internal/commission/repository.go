// Package commission calculates and records partner payouts for enrolled
// applications.
package commission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Commission is one payout record. There is at most one per application,
// enforced by a unique constraint.
type Commission struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	PartnerID     uuid.UUID
	AmountCents   int64
	Rate          string
	Currency      string
	CreatedAt     time.Time
}

// Repository provides database operations for commissions.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new commissions repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert records a commission. Returns false when a record for the
// application already exists, which keeps the calculation exactly-once even
// if the stage-entry effect is replayed.
func (r *Repository) Insert(ctx context.Context, c *Commission) (bool, error) {
	query := `
		INSERT INTO commissions (id, application_id, partner_id, amount_cents, rate, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (application_id) DO NOTHING`

	result, err := r.pool.Exec(ctx, query,
		c.ID, c.ApplicationID, c.PartnerID, c.AmountCents, c.Rate, c.Currency, c.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert commission: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByApplication returns the commission for an application, or nil when
// none has been calculated yet.
func (r *Repository) GetByApplication(ctx context.Context, applicationID uuid.UUID) (*Commission, error) {
	var c Commission
	query := `SELECT id, application_id, partner_id, amount_cents, rate, currency, created_at
		FROM commissions WHERE application_id = $1`

	err := r.pool.QueryRow(ctx, query, applicationID).Scan(
		&c.ID, &c.ApplicationID, &c.PartnerID, &c.AmountCents, &c.Rate, &c.Currency, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}

	return &c, nil
}
