// Package partners provides read access to recruitment partner records.
// Partners file applications and receive commission payouts; their accounts
// are provisioned out of band.
package partners

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admissions_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tier is the partner's commission tier.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// Partner is one recruitment partner.
type Partner struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Tier      Tier
	CreatedAt time.Time
}

// Repository provides database operations for partners.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new partners repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID retrieves a partner by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Partner, error) {
	var p Partner
	var tier string

	query := `SELECT id, name, email, tier, created_at FROM partners WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email, &tier, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("partner not found")
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	p.Tier = Tier(tier)
	return &p, nil
}
